package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/juju/pubsub/v2"

	"github.com/ovolkov/pawhub/internal/client/api"
	"github.com/ovolkov/pawhub/internal/client/models"
	"github.com/ovolkov/pawhub/internal/client/store"
	"github.com/ovolkov/pawhub/internal/common"
	"github.com/ovolkov/pawhub/internal/logging"
)

// NewReport carries the fields of a report being filed. Image is optional;
// when present the report goes out as a multipart form.
type NewReport struct {
	PetName     string
	Species     string
	Breed       string
	Description string
	Location    string
	PetStatus   models.PetStatus
	ImageName   string
	Image       []byte
}

// ReportService is the screen contract for pet-report lists: the public
// feed, the reporter's own list, and the admin moderation queue.
type ReportService interface {
	Load(ctx context.Context) error
	Reports() []models.PetReport
	Busy(id int64) bool

	File(ctx context.Context, r NewReport) (models.PetReport, error)
	Approve(ctx context.Context, id int64) error
	Reject(ctx context.Context, id int64) error
	Resolve(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error

	Unmount()
}

type reportService struct {
	client api.Client
	store  *store.Store[models.PetReport]
	filter models.ModerationStatus
	log    logging.Logger
}

// NewReportService mounts a report view. filter narrows to one moderation
// status (the admin queue), petStatus to one report type (lost/found/adopt);
// either may be empty.
func NewReportService(client api.Client, hub *pubsub.SimpleHub, log logging.Logger, filter models.ModerationStatus, petStatus models.PetStatus) ReportService {
	s := &reportService{client: client, filter: filter, log: log}
	s.store = store.New(store.Config[models.PetReport]{
		Name: "reports",
		ID:   func(r models.PetReport) int64 { return r.ID },
		Fetch: func(ctx context.Context) ([]models.PetReport, error) {
			return client.ListReports(ctx, reportFilters(filter, petStatus))
		},
		Hub: hub,
		Log: log,
	})
	return s
}

func (s *reportService) Load(ctx context.Context) error { return s.store.Load(ctx) }

func (s *reportService) Reports() []models.PetReport { return s.store.Snapshot() }

func (s *reportService) Busy(id int64) bool { return s.store.IsBusy(id) }

func (s *reportService) Unmount() { s.store.Unmount() }

// File submits a new report, multipart when an image is attached.
func (s *reportService) File(ctx context.Context, r NewReport) (models.PetReport, error) {
	form := &api.Form{
		Fields: map[string]string{
			"pet_name":    r.PetName,
			"species":     r.Species,
			"breed":       r.Breed,
			"description": r.Description,
			"location":    r.Location,
			"pet_status":  string(r.PetStatus),
		},
	}
	if len(r.Image) > 0 {
		form.Files = []api.FilePart{{Field: "image", Name: r.ImageName, Content: r.Image}}
	}

	report, err := s.client.CreateReport(ctx, form)
	if err != nil {
		return models.PetReport{}, err
	}
	if err := s.store.Load(ctx); err != nil {
		s.log.Warn(ctx, "refetch after create failed", "resource", "reports", "error", err)
	}
	return report, nil
}

func (s *reportService) Approve(ctx context.Context, id int64) error {
	return s.moderate(ctx, id, models.StatusApproved)
}

func (s *reportService) Reject(ctx context.Context, id int64) error {
	return s.moderate(ctx, id, models.StatusRejected)
}

func (s *reportService) moderate(ctx context.Context, id int64, to models.ModerationStatus) error {
	cur, ok := s.store.Get(id)
	if !ok {
		return fmt.Errorf("report %d: %w", id, common.ErrorNotFound)
	}
	if err := models.CheckTransition(cur.Status, to); err != nil {
		return fmt.Errorf("report %d: %s → %s: %w", id, cur.Status, to, err)
	}

	idOf := func(r models.PetReport) int64 { return r.ID }
	apply := store.UpdateByID(idOf, id, func(r models.PetReport) models.PetReport {
		r.Status = to
		return r
	})
	if s.filter != "" && to != s.filter {
		apply = store.RemoveByID(idOf, id)
	}

	return s.store.Mutate(ctx, id, store.Mutation[models.PetReport]{
		Apply: apply,
		Call: func(ctx context.Context) error {
			_, err := s.client.UpdateReport(ctx, id, api.Patch{"status": string(to)})
			return err
		},
	})
}

// Resolve marks the real-world outcome. Orthogonal to moderation: no
// transition check, any report can be resolved.
func (s *reportService) Resolve(ctx context.Context, id int64) error {
	if _, ok := s.store.Get(id); !ok {
		return fmt.Errorf("report %d: %w", id, common.ErrorNotFound)
	}

	idOf := func(r models.PetReport) int64 { return r.ID }
	return s.store.Mutate(ctx, id, store.Mutation[models.PetReport]{
		Apply: store.UpdateByID(idOf, id, func(r models.PetReport) models.PetReport {
			r.IsResolved = true
			return r
		}),
		Call: func(ctx context.Context) error {
			_, err := s.client.UpdateReport(ctx, id, api.Patch{"is_resolved": true})
			return err
		},
	})
}

func (s *reportService) Delete(ctx context.Context, id int64) error {
	idOf := func(r models.PetReport) int64 { return r.ID }
	return s.store.Mutate(ctx, id, store.Mutation[models.PetReport]{
		Apply: store.RemoveByID(idOf, id),
		Call: func(ctx context.Context) error {
			return s.client.DeleteReport(ctx, id)
		},
	})
}

// reportFilters builds the feed query. Zero values are omitted, so the
// unfiltered feed sends no query at all.
func reportFilters(status models.ModerationStatus, petStatus models.PetStatus) url.Values {
	filters := url.Values{}
	if status != "" {
		filters.Set("status", string(status))
	}
	if petStatus != "" {
		filters.Set("pet_status", string(petStatus))
	}
	return filters
}
