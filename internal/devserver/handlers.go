package devserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/ovolkov/pawhub/internal/client/models"
)

func idVar(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

// ---- auth endpoints ----

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == body.Username && u.password == body.Password {
			access, refresh, err := s.issueTokensLocked(u)
			if err != nil {
				writeDetail(w, http.StatusInternalServerError, "failed to issue tokens")
				return
			}
			writeData(w, http.StatusOK, map[string]string{"access": access, "refresh": refresh})
			return
		}
	}
	writeDetail(w, http.StatusBadRequest, "invalid username or password")
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fields := map[string][]string{}
	if body.Username == "" {
		fields["username"] = append(fields["username"], "this field is required")
	}
	if body.Password == "" {
		fields["password"] = append(fields["password"], "this field is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == body.Username {
			fields["username"] = append(fields["username"], "a user with that username already exists")
		}
	}
	if len(fields) > 0 {
		writeFieldErrors(w, http.StatusBadRequest, fields)
		return
	}

	u := &user{password: body.Password}
	u.ID = s.nextIDLocked()
	u.Username = body.Username
	u.Email = body.Email
	u.DateJoined = s.now()
	s.users[u.ID] = u
	writeData(w, http.StatusCreated, u.User)
}

func (s *Server) handleTokenRefresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Refresh string `json:"refresh"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.refreshTokens[body.Refresh]
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "refresh token expired")
		return
	}
	u, ok := s.users[id]
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "unknown user")
		return
	}

	// Rotation: the old refresh token dies with the exchange.
	delete(s.refreshTokens, body.Refresh)
	access, refresh, err := s.issueTokensLocked(u)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to issue tokens")
		return
	}
	writeData(w, http.StatusOK, map[string]string{"access": access, "refresh": refresh})
}

func (s *Server) handleUserCheck(w http.ResponseWriter, r *http.Request, u *user) {
	writeData(w, http.StatusOK, u.User)
}

// ---- pets ----

func (s *Server) handleListPets(w http.ResponseWriter, r *http.Request, u *user) {
	status := r.URL.Query().Get("status")

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Pet, 0, len(s.pets))
	for _, p := range s.pets {
		if status != "" && string(p.Status) != status {
			continue
		}
		out = append(out, *p)
	}
	writeData(w, http.StatusOK, out)
}

func (s *Server) handleCreatePet(w http.ResponseWriter, r *http.Request, u *user) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeDetail(w, http.StatusBadRequest, "expected multipart form")
		return
	}
	if r.FormValue("name") == "" {
		writeFieldErrors(w, http.StatusBadRequest, map[string][]string{"name": {"this field is required"}})
		return
	}
	age, _ := strconv.Atoi(r.FormValue("age"))

	s.mu.Lock()
	defer s.mu.Unlock()
	p := &models.Pet{
		ID:          s.nextIDLocked(),
		Owner:       u.ID,
		Name:        r.FormValue("name"),
		Species:     r.FormValue("species"),
		Breed:       r.FormValue("breed"),
		Age:         age,
		Gender:      r.FormValue("gender"),
		Description: r.FormValue("description"),
		Status:      models.PetStatus(r.FormValue("status")),
		CreatedAt:   s.now(),
	}
	p.ModifiedAt = p.CreatedAt
	if _, _, err := r.FormFile("image"); err == nil {
		p.ImageURL = "/media/" + uuid.NewString()
	}
	s.pets[p.ID] = p
	writeData(w, http.StatusCreated, *p)
}

func (s *Server) handleGetPet(w http.ResponseWriter, r *http.Request, u *user) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pets[idVar(r)]
	if !ok {
		writeDetail(w, http.StatusNotFound, "pet not found")
		return
	}
	writeData(w, http.StatusOK, *p)
}

func (s *Server) handlePatchPet(w http.ResponseWriter, r *http.Request, u *user) {
	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pets[idVar(r)]
	if !ok {
		writeDetail(w, http.StatusNotFound, "pet not found")
		return
	}
	if p.Owner != u.ID && !u.IsStaff {
		writeDetail(w, http.StatusForbidden, "not the owner of this pet")
		return
	}

	if v, ok := patch["name"].(string); ok {
		p.Name = v
	}
	if v, ok := patch["description"].(string); ok {
		p.Description = v
	}
	if v, ok := patch["status"].(string); ok {
		p.Status = models.PetStatus(v)
	}
	if v, ok := patch["age"].(float64); ok {
		p.Age = int(v)
	}
	p.ModifiedAt = s.now()
	writeData(w, http.StatusOK, *p)
}

func (s *Server) handleDeletePet(w http.ResponseWriter, r *http.Request, u *user) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pets[idVar(r)]
	if !ok {
		writeDetail(w, http.StatusNotFound, "pet not found")
		return
	}
	if p.Owner != u.ID && !u.IsStaff {
		writeDetail(w, http.StatusForbidden, "not the owner of this pet")
		return
	}
	delete(s.pets, p.ID)
	w.WriteHeader(http.StatusNoContent)
}

// ---- adoption requests ----

func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request, u *user) {
	status := r.URL.Query().Get("status")

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.AdoptionRequest, 0, len(s.requests))
	for _, req := range s.requests {
		if status != "" && string(req.Status) != status {
			continue
		}
		if !u.IsStaff && req.Requester != u.ID && !s.ownsPetLocked(u.ID, req.Pet) {
			continue
		}
		out = append(out, *req)
	}
	writeData(w, http.StatusOK, out)
}

func (s *Server) ownsPetLocked(userID, petID int64) bool {
	p, ok := s.pets[petID]
	return ok && p.Owner == userID
}

func (s *Server) handleCreateRequest(w http.ResponseWriter, r *http.Request, u *user) {
	var body struct {
		Pet     int64  `json:"pet"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	pet, ok := s.pets[body.Pet]
	if !ok {
		writeFieldErrors(w, http.StatusBadRequest, map[string][]string{"pet": {"unknown pet"}})
		return
	}

	req := &models.AdoptionRequest{
		ID:            s.nextIDLocked(),
		Pet:           pet.ID,
		PetName:       pet.Name,
		Requester:     u.ID,
		RequesterName: u.Username,
		Message:       body.Message,
		Status:        models.StatusPending,
		CreatedAt:     s.now(),
	}
	req.ModifiedAt = req.CreatedAt
	s.requests[req.ID] = req
	writeData(w, http.StatusCreated, *req)
}

func (s *Server) handlePatchRequest(w http.ResponseWriter, r *http.Request, u *user) {
	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[idVar(r)]
	if !ok {
		writeDetail(w, http.StatusNotFound, "request not found")
		return
	}

	if v, ok := patch["status"].(string); ok {
		if !u.IsStaff {
			writeDetail(w, http.StatusForbidden, "staff only")
			return
		}
		to := models.ModerationStatus(v)
		if !models.CanTransition(req.Status, to) {
			// Two admins racing on the same request: the loser gets a
			// conflict and reconciles by refetching.
			writeDetail(w, http.StatusConflict, fmt.Sprintf("request already %s", req.Status))
			return
		}
		req.Status = to
		message, _ := patch["decision_message"].(string)
		if message == "" {
			message = fmt.Sprintf("Your adoption request for %s was %s.", req.PetName, to)
		}
		s.notifyLocked(req.Requester, "request_"+string(to), message)
	}

	if v, ok := patch["owner_decision"].(string); ok {
		if !s.ownsPetLocked(u.ID, req.Pet) {
			writeDetail(w, http.StatusForbidden, "not the owner of this pet")
			return
		}
		if req.OwnerDecision != models.DecisionNone {
			writeDetail(w, http.StatusConflict, "request already decided by owner")
			return
		}
		req.OwnerDecision = models.OwnerDecision(v)
		s.notifyLocked(req.Requester, "owner_"+v,
			fmt.Sprintf("The owner of %s has %s your adoption request.", req.PetName, v))
	}

	req.ModifiedAt = s.now()
	writeData(w, http.StatusOK, *req)
}

func (s *Server) handleDeleteRequest(w http.ResponseWriter, r *http.Request, u *user) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[idVar(r)]
	if !ok {
		writeDetail(w, http.StatusNotFound, "request not found")
		return
	}
	if req.Requester != u.ID && !u.IsStaff {
		writeDetail(w, http.StatusForbidden, "not your request")
		return
	}
	delete(s.requests, req.ID)
	w.WriteHeader(http.StatusNoContent)
}

// ---- reports ----

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request, u *user) {
	status := r.URL.Query().Get("status")

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.PetReport, 0, len(s.reports))
	for _, rep := range s.reports {
		if status != "" && string(rep.Status) != status {
			continue
		}
		// Moderation gates visibility: only staff and the reporter see
		// undecided or rejected reports.
		if !u.IsStaff && rep.Reporter != u.ID && rep.Status != models.StatusApproved {
			continue
		}
		out = append(out, *rep)
	}
	writeData(w, http.StatusOK, out)
}

func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request, u *user) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeDetail(w, http.StatusBadRequest, "expected multipart form")
		return
	}
	if r.FormValue("pet_name") == "" {
		writeFieldErrors(w, http.StatusBadRequest, map[string][]string{"pet_name": {"this field is required"}})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rep := &models.PetReport{
		ID:          s.nextIDLocked(),
		Reporter:    u.ID,
		PetName:     r.FormValue("pet_name"),
		Species:     r.FormValue("species"),
		Breed:       r.FormValue("breed"),
		Description: r.FormValue("description"),
		Location:    r.FormValue("location"),
		Status:      models.StatusPending,
		PetStatus:   models.PetStatus(r.FormValue("pet_status")),
		CreatedAt:   s.now(),
	}
	rep.ModifiedAt = rep.CreatedAt
	if _, _, err := r.FormFile("image"); err == nil {
		rep.ImageURL = "/media/" + uuid.NewString()
	}
	s.reports[rep.ID] = rep
	writeData(w, http.StatusCreated, *rep)
}

func (s *Server) handlePatchReport(w http.ResponseWriter, r *http.Request, u *user) {
	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rep, ok := s.reports[idVar(r)]
	if !ok {
		writeDetail(w, http.StatusNotFound, "report not found")
		return
	}

	if v, ok := patch["status"].(string); ok {
		if !u.IsStaff {
			writeDetail(w, http.StatusForbidden, "staff only")
			return
		}
		to := models.ModerationStatus(v)
		if !models.CanTransition(rep.Status, to) {
			writeDetail(w, http.StatusConflict, fmt.Sprintf("report already %s", rep.Status))
			return
		}
		rep.Status = to
		s.notifyLocked(rep.Reporter, "report_"+string(to),
			fmt.Sprintf("Your report about %s was %s.", rep.PetName, to))
	}

	if v, ok := patch["is_resolved"].(bool); ok {
		if rep.Reporter != u.ID && !u.IsStaff {
			writeDetail(w, http.StatusForbidden, "not your report")
			return
		}
		rep.IsResolved = v
	}

	rep.ModifiedAt = s.now()
	writeData(w, http.StatusOK, *rep)
}

func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request, u *user) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rep, ok := s.reports[idVar(r)]
	if !ok {
		writeDetail(w, http.StatusNotFound, "report not found")
		return
	}
	if rep.Reporter != u.ID && !u.IsStaff {
		writeDetail(w, http.StatusForbidden, "not your report")
		return
	}
	delete(s.reports, rep.ID)
	w.WriteHeader(http.StatusNoContent)
}

// ---- notifications ----

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request, u *user) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Notification, 0)
	for _, n := range s.notifications {
		if n.Recipient == u.ID {
			out = append(out, *n)
		}
	}
	writeData(w, http.StatusOK, out)
}

func (s *Server) handlePatchNotification(w http.ResponseWriter, r *http.Request, u *user) {
	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[idVar(r)]
	if !ok || n.Recipient != u.ID {
		writeDetail(w, http.StatusNotFound, "notification not found")
		return
	}
	if v, ok := patch["is_read"].(bool); ok {
		n.IsRead = v
	}
	writeData(w, http.StatusOK, *n)
}

func (s *Server) handleDeleteNotification(w http.ResponseWriter, r *http.Request, u *user) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[idVar(r)]
	if !ok || n.Recipient != u.ID {
		writeDetail(w, http.StatusNotFound, "notification not found")
		return
	}
	delete(s.notifications, n.ID)
	w.WriteHeader(http.StatusNoContent)
}

// ---- matching ----

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request, u *user) {
	var body struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.pets {
		if p.Status == models.PetAdopt {
			writeData(w, http.StatusOK, map[string]string{
				"suggestion": fmt.Sprintf("Based on your preferences, meet %s the %s.", p.Name, p.Species),
			})
			return
		}
	}
	writeData(w, http.StatusOK, map[string]string{
		"suggestion": "No adoptable pets match your preferences right now.",
	})
}
