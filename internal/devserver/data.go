package devserver

import (
	"encoding/json"
	"net/http"

	"github.com/ovolkov/pawhub/internal/client/models"
)

// SeedUser registers an account directly, bypassing the HTTP surface.
// Returns its id.
func (s *Server) SeedUser(username, email, password string, isStaff bool) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &user{password: password}
	u.ID = s.nextIDLocked()
	u.Username = username
	u.Email = email
	u.IsStaff = isStaff
	u.DateJoined = s.now()
	s.users[u.ID] = u
	return u.ID
}

// SeedPet adds a listing directly. Returns its id.
func (s *Server) SeedPet(owner int64, name, species string, status models.PetStatus) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &models.Pet{
		ID:        s.nextIDLocked(),
		Owner:     owner,
		Name:      name,
		Species:   species,
		Status:    status,
		CreatedAt: s.now(),
	}
	p.ModifiedAt = p.CreatedAt
	s.pets[p.ID] = p
	return p.ID
}

// SeedRequest adds a pending adoption request directly. Returns its id.
func (s *Server) SeedRequest(petID, requester int64, message string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &models.AdoptionRequest{
		ID:        s.nextIDLocked(),
		Pet:       petID,
		Requester: requester,
		Message:   message,
		Status:    models.StatusPending,
		CreatedAt: s.now(),
	}
	if pet, ok := s.pets[petID]; ok {
		r.PetName = pet.Name
	}
	if u, ok := s.users[requester]; ok {
		r.RequesterName = u.Username
	}
	r.ModifiedAt = r.CreatedAt
	s.requests[r.ID] = r
	return r.ID
}

// SeedReport adds a pending report directly. Returns its id.
func (s *Server) SeedReport(reporter int64, petName string, petStatus models.PetStatus) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &models.PetReport{
		ID:        s.nextIDLocked(),
		Reporter:  reporter,
		PetName:   petName,
		Status:    models.StatusPending,
		PetStatus: petStatus,
		CreatedAt: s.now(),
	}
	r.ModifiedAt = r.CreatedAt
	s.reports[r.ID] = r
	return r.ID
}

// Notifications returns a copy of the records addressed to a user.
func (s *Server) Notifications(recipient int64) []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, n := range s.notifications {
		if n.Recipient == recipient {
			out = append(out, *n)
		}
	}
	return out
}

func (s *Server) nextIDLocked() int64 {
	s.nextID++
	return s.nextID
}

// notifyLocked appends a server-side notification record. Caller holds s.mu.
func (s *Server) notifyLocked(recipient int64, verb, message string) {
	n := &models.Notification{
		ID:        s.nextIDLocked(),
		Recipient: recipient,
		Verb:      verb,
		Message:   message,
		CreatedAt: s.now(),
	}
	s.notifications[n.ID] = n
}

// ---- response helpers ----

type dataEnvelope struct {
	Data any `json:"data"`
}

func writeData(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(dataEnvelope{Data: v})
}

func writeDetail(w http.ResponseWriter, code int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

// writeFieldErrors uses the field-keyed validation shape some endpoints of
// the original platform respond with.
func writeFieldErrors(w http.ResponseWriter, code int, fields map[string][]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	_ = json.NewEncoder(w).Encode(out)
}
