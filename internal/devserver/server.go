// Package devserver is an in-memory implementation of the platform API used
// for local development and integration tests. It implements the wire
// contract the client consumes — the {"data":...} envelope, bearer-token
// auth, the varied error payload shapes, server-side notification creation
// on status transitions — and nothing else: no persistence, no business
// logic beyond the contract.
package devserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/ovolkov/pawhub/internal/client/models"
	"github.com/ovolkov/pawhub/internal/logging"
)

// DefaultAccessTTL keeps dev tokens short so expiry paths get exercised.
const DefaultAccessTTL = 15 * time.Minute

type user struct {
	models.User
	password string
}

// Server holds the whole platform state under one mutex.
type Server struct {
	secret    []byte
	accessTTL time.Duration
	log       logging.Logger

	mu            sync.Mutex
	nextID        int64
	users         map[int64]*user
	pets          map[int64]*models.Pet
	requests      map[int64]*models.AdoptionRequest
	reports       map[int64]*models.PetReport
	notifications map[int64]*models.Notification
	refreshTokens map[string]int64
	now           func() time.Time
}

func New(secret []byte, log logging.Logger) *Server {
	return &Server{
		secret:        secret,
		accessTTL:     DefaultAccessTTL,
		log:           log,
		users:         make(map[int64]*user),
		pets:          make(map[int64]*models.Pet),
		requests:      make(map[int64]*models.AdoptionRequest),
		reports:       make(map[int64]*models.PetReport),
		notifications: make(map[int64]*models.Notification),
		refreshTokens: make(map[string]int64),
		now:           time.Now,
	}
}

// SetAccessTTL overrides the access-token lifetime (tests use very short
// ones to drive expiry).
func (s *Server) SetAccessTTL(ttl time.Duration) { s.accessTTL = ttl }

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/token-refresh", s.handleTokenRefresh).Methods(http.MethodPost)
	r.HandleFunc("/user-check", s.auth(s.handleUserCheck)).Methods(http.MethodGet)

	r.HandleFunc("/pets", s.auth(s.handleListPets)).Methods(http.MethodGet)
	r.HandleFunc("/pets", s.auth(s.handleCreatePet)).Methods(http.MethodPost)
	r.HandleFunc("/pets/{id:[0-9]+}", s.auth(s.handleGetPet)).Methods(http.MethodGet)
	r.HandleFunc("/pets/{id:[0-9]+}", s.auth(s.handlePatchPet)).Methods(http.MethodPatch)
	r.HandleFunc("/pets/{id:[0-9]+}", s.auth(s.handleDeletePet)).Methods(http.MethodDelete)

	r.HandleFunc("/adoption-requests", s.auth(s.handleListRequests)).Methods(http.MethodGet)
	r.HandleFunc("/adoption-requests", s.auth(s.handleCreateRequest)).Methods(http.MethodPost)
	r.HandleFunc("/adoption-requests/{id:[0-9]+}", s.auth(s.handlePatchRequest)).Methods(http.MethodPatch)
	r.HandleFunc("/adoption-requests/{id:[0-9]+}", s.auth(s.handleDeleteRequest)).Methods(http.MethodDelete)

	r.HandleFunc("/reports", s.auth(s.handleListReports)).Methods(http.MethodGet)
	r.HandleFunc("/reports", s.auth(s.handleCreateReport)).Methods(http.MethodPost)
	r.HandleFunc("/reports/{id:[0-9]+}", s.auth(s.handlePatchReport)).Methods(http.MethodPatch)
	r.HandleFunc("/reports/{id:[0-9]+}", s.auth(s.handleDeleteReport)).Methods(http.MethodDelete)

	r.HandleFunc("/notifications", s.auth(s.handleListNotifications)).Methods(http.MethodGet)
	r.HandleFunc("/notifications/{id:[0-9]+}", s.auth(s.handlePatchNotification)).Methods(http.MethodPatch)
	r.HandleFunc("/notifications/{id:[0-9]+}", s.auth(s.handleDeleteNotification)).Methods(http.MethodDelete)

	r.HandleFunc("/match", s.auth(s.handleMatch)).Methods(http.MethodPost)

	return r
}
