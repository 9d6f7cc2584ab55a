// Package session owns the authenticated-session lifecycle: token
// acquisition, verification, refresh, logout, expiry detection, and
// convergence between concurrently running clients sharing one token store.
//
// The session is the only state shared by every screen. It is mutated here
// and nowhere else; everything downstream subscribes to TopicChanged and
// re-derives its behavior from the current status.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/juju/clock"
	"github.com/juju/pubsub/v2"
	"golang.org/x/sync/singleflight"

	"github.com/ovolkov/pawhub/internal/client/api"
	"github.com/ovolkov/pawhub/internal/client/models"
	"github.com/ovolkov/pawhub/internal/client/repositories/tokens"
	"github.com/ovolkov/pawhub/internal/logging"
)

// Status is the session lifecycle state.
type Status string

const (
	StatusAnonymous     Status = "anonymous"
	StatusVerifying     Status = "verifying"
	StatusAuthenticated Status = "authenticated"
	StatusExpired       Status = "expired"
)

var ErrNotAuthenticated = errors.New("not authenticated")

// Manager drives the session state machine:
//
//	anonymous → verifying → authenticated
//	authenticated → expired → anonymous
//	verifying → anonymous
//
// Invariant: authenticated implies both an access token and a CurrentUser,
// and the user was returned by verifying that exact token.
type Manager struct {
	api    api.Client
	tokens tokens.Repository
	hub    *pubsub.SimpleHub
	clk    clock.Clock
	log    logging.Logger

	mu          sync.Mutex
	status      Status
	user        *models.User
	access      string
	refresh     string
	expiresAt   time.Time
	expiryTimer clock.Timer

	verifyGroup singleflight.Group
	expireGroup singleflight.Group
}

func NewManager(client api.Client, repo tokens.Repository, hub *pubsub.SimpleHub, clk clock.Clock, log logging.Logger) *Manager {
	return &Manager{
		api:    client,
		tokens: repo,
		hub:    hub,
		clk:    clk,
		log:    log,
		status: StatusAnonymous,
	}
}

// Status returns the current lifecycle state.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// CurrentUser returns the verified identity, or nil while not authenticated.
func (m *Manager) CurrentUser() *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}

// AccessToken implements api.TokenSource.
func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.access
}

// ExpiresAt returns the access token deadline, zero when unknown.
func (m *Manager) ExpiresAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expiresAt
}

// Login acquires a token pair, persists it, and verifies it. A verification
// failure here is reported as a failed login, not an expired session.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	pair, err := m.api.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if err := m.storePair(ctx, pair); err != nil {
		return err
	}

	m.mu.Lock()
	m.access, m.refresh = pair.Access, pair.Refresh
	m.status = StatusVerifying
	m.mu.Unlock()

	return m.verify(ctx, true)
}

// Register creates an account; the caller logs in separately.
func (m *Manager) Register(ctx context.Context, username, email, password string) error {
	return m.api.Register(ctx, username, email, password)
}

// Verify re-checks the current access token against the identity endpoint.
// Safe to call repeatedly: concurrent calls collapse into one request, and a
// repeat call with an unchanged valid token yields the same user without
// passing through anonymous.
func (m *Manager) Verify(ctx context.Context) error {
	return m.verify(ctx, false)
}

func (m *Manager) verify(ctx context.Context, freshLogin bool) error {
	token := m.AccessToken()
	if token == "" {
		m.clearSession(ctx, ReasonLogout)
		return nil
	}

	// The flight is keyed by the token under check: concurrent checks of the
	// same token collapse into one request, and a fresh login never joins an
	// in-flight check of an older token.
	_, err, _ := m.verifyGroup.Do(token, func() (any, error) {
		user, err := m.api.UserCheck(ctx, token)

		m.mu.Lock()
		stale := m.access != token
		m.mu.Unlock()
		if stale {
			// Token replaced while the check was in flight; the newer
			// login/logout wins, whatever this check came back with.
			return nil, nil
		}

		if err != nil {
			reason := ReasonExpired
			if freshLogin {
				reason = ReasonLoginFailed
			}
			m.clearSession(ctx, reason)
			return nil, err
		}

		m.mu.Lock()
		if m.access != token {
			m.mu.Unlock()
			return nil, nil
		}
		m.user = user
		m.status = StatusAuthenticated
		m.scheduleExpiryLocked(token)
		m.mu.Unlock()

		reason := ReasonVerified
		if freshLogin {
			reason = ReasonLogin
		}
		m.publish(Event{Status: StatusAuthenticated, Reason: reason, User: user})
		return nil, nil
	})
	return err
}

// Logout wipes the stored tokens and identity and broadcasts the change.
// Other running clients observe the store change and converge to anonymous.
func (m *Manager) Logout(ctx context.Context) error {
	m.clearSession(ctx, ReasonLogout)
	return nil
}

// Refresh exchanges the refresh token for a new pair. On failure the refresh
// token is assumed unusable and the session ends as if by Logout.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	refresh := m.refresh
	m.mu.Unlock()

	if refresh == "" {
		m.clearSession(ctx, ReasonLogout)
		return ErrNotAuthenticated
	}

	pair, err := m.api.RefreshToken(ctx, refresh)
	if err != nil {
		m.clearSession(ctx, ReasonExpired)
		return fmt.Errorf("refresh failed: %w", err)
	}
	if err := m.storePair(ctx, pair); err != nil {
		return err
	}

	m.mu.Lock()
	m.access, m.refresh = pair.Access, pair.Refresh
	m.scheduleExpiryLocked(pair.Access)
	status, user := m.status, m.user
	m.mu.Unlock()

	m.publish(Event{Status: status, Reason: ReasonRefreshed, User: user})
	return nil
}

// Restore loads persisted tokens at startup and verifies them when present.
func (m *Manager) Restore(ctx context.Context) error {
	return m.Resync(ctx)
}

// Resync reloads tokens from the store and re-verifies if they differ from
// the in-memory pair. Called at startup and whenever the store watcher sees
// the token rows change (another client logged in or out).
func (m *Manager) Resync(ctx context.Context) error {
	access, err := m.tokens.Get(ctx, tokens.KeyAccessToken)
	if err != nil {
		return err
	}
	refresh, err := m.tokens.Get(ctx, tokens.KeyRefreshToken)
	if err != nil {
		return err
	}

	m.mu.Lock()
	changed := m.access != string(access) || m.refresh != string(refresh)
	if changed {
		m.access, m.refresh = string(access), string(refresh)
		if m.access != "" {
			m.status = StatusVerifying
		}
	}
	m.mu.Unlock()

	if !changed {
		return nil
	}
	return m.verify(ctx, false)
}

// HandleError applies the global session side effect of a gateway error.
// Any ErrSessionExpired forces a logout exactly once, no matter how many
// concurrent requests fail with it; all other errors are left to the caller.
// Reports whether the error was consumed.
func (m *Manager) HandleError(ctx context.Context, err error) bool {
	if !errors.Is(err, api.ErrSessionExpired) {
		return false
	}
	m.expireGroup.Do("expire", func() (any, error) {
		m.mu.Lock()
		active := m.status == StatusAuthenticated || m.status == StatusVerifying || m.status == StatusExpired
		m.mu.Unlock()
		if active {
			m.clearSession(ctx, ReasonExpired)
		}
		return nil, nil
	})
	return true
}

// clearSession wipes tokens and identity, drops to anonymous, and publishes
// the change with the given reason.
func (m *Manager) clearSession(ctx context.Context, reason Reason) {
	if err := m.tokens.Clear(ctx); err != nil {
		m.log.Error(ctx, "failed to clear token store", "error", err)
	}

	m.mu.Lock()
	wasAnonymous := m.status == StatusAnonymous && m.access == "" && m.user == nil
	m.access, m.refresh = "", ""
	m.user = nil
	m.status = StatusAnonymous
	m.expiresAt = time.Time{}
	if m.expiryTimer != nil {
		m.expiryTimer.Stop()
		m.expiryTimer = nil
	}
	m.mu.Unlock()

	if !wasAnonymous {
		m.publish(Event{Status: StatusAnonymous, Reason: reason})
	}
}

func (m *Manager) storePair(ctx context.Context, pair api.TokenPair) error {
	if err := m.tokens.Set(ctx, tokens.KeyAccessToken, []byte(pair.Access)); err != nil {
		return fmt.Errorf("failed to persist access token: %w", err)
	}
	if err := m.tokens.Set(ctx, tokens.KeyRefreshToken, []byte(pair.Refresh)); err != nil {
		return fmt.Errorf("failed to persist refresh token: %w", err)
	}
	return nil
}

// scheduleExpiryLocked arms a timer at the token's exp claim. The token is
// otherwise opaque; the claim is read without signature verification, and a
// token without one simply never expires locally. Caller holds m.mu.
func (m *Manager) scheduleExpiryLocked(token string) {
	if m.expiryTimer != nil {
		m.expiryTimer.Stop()
		m.expiryTimer = nil
	}
	m.expiresAt = time.Time{}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return
	}
	m.expiresAt = exp.Time

	until := exp.Time.Sub(m.clk.Now())
	if until < 0 {
		until = 0
	}
	m.expiryTimer = m.clk.AfterFunc(until, func() { m.expire(token) })
}

// expire flips authenticated → expired when the armed token is still the
// current one.
func (m *Manager) expire(token string) {
	m.mu.Lock()
	if m.access != token || m.status != StatusAuthenticated {
		m.mu.Unlock()
		return
	}
	m.status = StatusExpired
	user := m.user
	m.mu.Unlock()

	m.publish(Event{Status: StatusExpired, Reason: ReasonExpired, User: user})
}

func (m *Manager) publish(ev Event) {
	if m.hub == nil {
		return
	}
	_ = m.hub.Publish(TopicChanged, ev)
}
