// Package services contains the screen-facing application services of the
// pawhub client. Each service owns one resource store and applies the
// optimistic-mutation discipline against the remote API; screens render
// snapshots and subscribe to store events.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/juju/pubsub/v2"

	"github.com/ovolkov/pawhub/internal/client/api"
	"github.com/ovolkov/pawhub/internal/client/models"
	"github.com/ovolkov/pawhub/internal/client/store"
	"github.com/ovolkov/pawhub/internal/common"
	"github.com/ovolkov/pawhub/internal/logging"
)

// ErrAlreadyDecided rejects a second owner decision on the same request.
var ErrAlreadyDecided = errors.New("request already decided by owner")

// AdoptionService is the screen contract for adoption-request lists: the
// requester's own list, the owner's inbox, and the admin moderation queue
// (a status-filtered pending view).
type AdoptionService interface {
	Load(ctx context.Context) error
	Requests() []models.AdoptionRequest
	Busy(id int64) bool

	Request(ctx context.Context, petID int64, message string) (models.AdoptionRequest, error)
	Approve(ctx context.Context, id int64, message string) error
	Reject(ctx context.Context, id int64, message string) error
	Accept(ctx context.Context, id int64) error
	Decline(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error

	Unmount()
}

type adoptionService struct {
	client api.Client
	store  *store.Store[models.AdoptionRequest]
	filter models.ModerationStatus
	log    logging.Logger
}

// NewAdoptionService builds a service over one screen's request collection.
// A non-empty filter makes this a status-filtered view: a mutation that moves
// a request out of the filter removes it from the visible list immediately.
func NewAdoptionService(client api.Client, hub *pubsub.SimpleHub, log logging.Logger, filter models.ModerationStatus) AdoptionService {
	s := &adoptionService{client: client, filter: filter, log: log}
	s.store = store.New(store.Config[models.AdoptionRequest]{
		Name: "adoption-requests",
		ID:   func(r models.AdoptionRequest) int64 { return r.ID },
		Fetch: func(ctx context.Context) ([]models.AdoptionRequest, error) {
			filters := url.Values{}
			if filter != "" {
				filters.Set("status", string(filter))
			}
			return client.ListAdoptionRequests(ctx, filters)
		},
		Hub: hub,
		Log: log,
	})
	return s
}

func (s *adoptionService) Load(ctx context.Context) error { return s.store.Load(ctx) }

func (s *adoptionService) Requests() []models.AdoptionRequest { return s.store.Snapshot() }

func (s *adoptionService) Busy(id int64) bool { return s.store.IsBusy(id) }

func (s *adoptionService) Unmount() { s.store.Unmount() }

// Request creates a new adoption request and refetches so the new row
// appears with its server-assigned id.
func (s *adoptionService) Request(ctx context.Context, petID int64, message string) (models.AdoptionRequest, error) {
	req, err := s.client.CreateAdoptionRequest(ctx, petID, message)
	if err != nil {
		return models.AdoptionRequest{}, err
	}
	// The request exists either way; a failed refetch only leaves the view
	// stale until the next load.
	if err := s.store.Load(ctx); err != nil {
		s.log.Warn(ctx, "refetch after create failed", "resource", "adoption-requests", "error", err)
	}
	return req, nil
}

// Approve performs the admin transition pending → approved. The optional
// message is delivered to the requester as a server-side notification.
func (s *adoptionService) Approve(ctx context.Context, id int64, message string) error {
	return s.moderate(ctx, id, models.StatusApproved, message)
}

// Reject performs the admin transition pending → rejected.
func (s *adoptionService) Reject(ctx context.Context, id int64, message string) error {
	return s.moderate(ctx, id, models.StatusRejected, message)
}

func (s *adoptionService) moderate(ctx context.Context, id int64, to models.ModerationStatus, message string) error {
	cur, ok := s.store.Get(id)
	if !ok {
		return fmt.Errorf("request %d: %w", id, common.ErrorNotFound)
	}
	if err := models.CheckTransition(cur.Status, to); err != nil {
		return fmt.Errorf("request %d: %s → %s: %w", id, cur.Status, to, err)
	}

	patch := api.Patch{"status": string(to)}
	if message != "" {
		patch["decision_message"] = message
	}

	idOf := func(r models.AdoptionRequest) int64 { return r.ID }
	apply := store.UpdateByID(idOf, id, func(r models.AdoptionRequest) models.AdoptionRequest {
		r.Status = to
		return r
	})
	if s.filter != "" && to != s.filter {
		// Status-filtered view: the decided row leaves the list at once,
		// never rendering half in and half out of the filter.
		apply = store.RemoveByID(idOf, id)
	}

	return s.store.Mutate(ctx, id, store.Mutation[models.AdoptionRequest]{
		Apply: apply,
		Call: func(ctx context.Context) error {
			_, err := s.client.UpdateAdoptionRequest(ctx, id, patch)
			return err
		},
	})
}

// Accept records the owner's decision to go ahead with the adoption.
// Independent of moderation: it touches owner_decision only.
func (s *adoptionService) Accept(ctx context.Context, id int64) error {
	return s.decide(ctx, id, models.DecisionAccepted)
}

// Decline records the owner's decision against the adoption.
func (s *adoptionService) Decline(ctx context.Context, id int64) error {
	return s.decide(ctx, id, models.DecisionRejected)
}

func (s *adoptionService) decide(ctx context.Context, id int64, decision models.OwnerDecision) error {
	cur, ok := s.store.Get(id)
	if !ok {
		return fmt.Errorf("request %d: %w", id, common.ErrorNotFound)
	}
	if cur.OwnerDecision != models.DecisionNone {
		return fmt.Errorf("request %d: %w", id, ErrAlreadyDecided)
	}

	idOf := func(r models.AdoptionRequest) int64 { return r.ID }
	return s.store.Mutate(ctx, id, store.Mutation[models.AdoptionRequest]{
		Apply: store.UpdateByID(idOf, id, func(r models.AdoptionRequest) models.AdoptionRequest {
			r.OwnerDecision = decision
			return r
		}),
		Call: func(ctx context.Context) error {
			_, err := s.client.UpdateAdoptionRequest(ctx, id, api.Patch{"owner_decision": string(decision)})
			return err
		},
	})
}

// Delete removes a request. Legal from any status; the row disappears
// optimistically and comes back on failure.
func (s *adoptionService) Delete(ctx context.Context, id int64) error {
	idOf := func(r models.AdoptionRequest) int64 { return r.ID }
	return s.store.Mutate(ctx, id, store.Mutation[models.AdoptionRequest]{
		Apply: store.RemoveByID(idOf, id),
		Call: func(ctx context.Context) error {
			return s.client.DeleteAdoptionRequest(ctx, id)
		},
	})
}
