package devserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// issueTokensLocked mints an HS256 access token plus an opaque refresh
// token for u. Caller holds s.mu.
func (s *Server) issueTokensLocked(u *user) (string, string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatInt(u.ID, 10),
		"username": u.Username,
		"is_staff": u.IsStaff,
		"iat":      jwt.NewNumericDate(now),
		"exp":      jwt.NewNumericDate(now.Add(s.accessTTL)),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", "", err
	}

	refresh := uuid.NewString()
	s.refreshTokens[refresh] = u.ID
	return access, refresh, nil
}

// auth wraps a handler with bearer-token validation. Every failure is a 401;
// the client maps that to its canonical session-expired error.
func (s *Server) auth(next func(http.ResponseWriter, *http.Request, *user)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeDetail(w, http.StatusUnauthorized, "authentication required")
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		parsed, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			return s.secret, nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !parsed.Valid {
			writeDetail(w, http.StatusUnauthorized, "token expired")
			return
		}

		sub, err := parsed.Claims.GetSubject()
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "invalid token")
			return
		}
		id, err := strconv.ParseInt(sub, 10, 64)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "invalid token")
			return
		}

		s.mu.Lock()
		u, ok := s.users[id]
		s.mu.Unlock()
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "unknown user")
			return
		}

		next(w, r, u)
	}
}
