package services

import (
	"context"
	"net/url"
	"strconv"

	"github.com/juju/pubsub/v2"

	"github.com/ovolkov/pawhub/internal/client/api"
	"github.com/ovolkov/pawhub/internal/client/models"
	"github.com/ovolkov/pawhub/internal/client/store"
	"github.com/ovolkov/pawhub/internal/logging"
)

// NewPet carries the fields of a listing being created. Image is optional;
// when present the listing goes out as a multipart form.
type NewPet struct {
	Name        string
	Species     string
	Breed       string
	Age         int
	Gender      string
	Description string
	Status      models.PetStatus
	ImageName   string
	Image       []byte
}

// PetService is the screen contract for pet listings, plus the single
// opaque call into the matching collaborator.
type PetService interface {
	Load(ctx context.Context) error
	Pets() []models.Pet
	Busy(id int64) bool

	Get(ctx context.Context, id int64) (models.Pet, error)
	Add(ctx context.Context, p NewPet) (models.Pet, error)
	Update(ctx context.Context, id int64, patch api.Patch) error
	Delete(ctx context.Context, id int64) error
	Match(ctx context.Context, query string) (string, error)

	Unmount()
}

type petService struct {
	client api.Client
	store  *store.Store[models.Pet]
	log    logging.Logger
}

func NewPetService(client api.Client, hub *pubsub.SimpleHub, log logging.Logger, status models.PetStatus) PetService {
	s := &petService{client: client, log: log}
	s.store = store.New(store.Config[models.Pet]{
		Name: "pets",
		ID:   func(p models.Pet) int64 { return p.ID },
		Fetch: func(ctx context.Context) ([]models.Pet, error) {
			filters := url.Values{}
			if status != "" {
				filters.Set("status", string(status))
			}
			return client.ListPets(ctx, filters)
		},
		Hub: hub,
		Log: log,
	})
	return s
}

func (s *petService) Load(ctx context.Context) error { return s.store.Load(ctx) }

func (s *petService) Pets() []models.Pet { return s.store.Snapshot() }

func (s *petService) Busy(id int64) bool { return s.store.IsBusy(id) }

func (s *petService) Unmount() { s.store.Unmount() }

// Get fetches one listing directly; detail screens re-read from the server
// rather than trusting a sibling screen's cache.
func (s *petService) Get(ctx context.Context, id int64) (models.Pet, error) {
	return s.client.GetPet(ctx, id)
}

func (s *petService) Add(ctx context.Context, p NewPet) (models.Pet, error) {
	form := &api.Form{
		Fields: map[string]string{
			"name":        p.Name,
			"species":     p.Species,
			"breed":       p.Breed,
			"age":         strconv.Itoa(p.Age),
			"gender":      p.Gender,
			"description": p.Description,
			"status":      string(p.Status),
		},
	}
	if len(p.Image) > 0 {
		form.Files = []api.FilePart{{Field: "image", Name: p.ImageName, Content: p.Image}}
	}

	pet, err := s.client.CreatePet(ctx, form)
	if err != nil {
		return models.Pet{}, err
	}
	if err := s.store.Load(ctx); err != nil {
		s.log.Warn(ctx, "refetch after create failed", "resource", "pets", "error", err)
	}
	return pet, nil
}

// Update patches a listing. The effect of an arbitrary patch is not locally
// derivable, so the collection is refetched on success instead of applied
// optimistically.
func (s *petService) Update(ctx context.Context, id int64, patch api.Patch) error {
	return s.store.Mutate(ctx, id, store.Mutation[models.Pet]{
		Call: func(ctx context.Context) error {
			_, err := s.client.UpdatePet(ctx, id, patch)
			return err
		},
		Refetch: true,
	})
}

func (s *petService) Delete(ctx context.Context, id int64) error {
	idOf := func(p models.Pet) int64 { return p.ID }
	return s.store.Mutate(ctx, id, store.Mutation[models.Pet]{
		Apply: store.RemoveByID(idOf, id),
		Call: func(ctx context.Context) error {
			return s.client.DeletePet(ctx, id)
		},
	})
}

// Match forwards the query to the matching collaborator. One request, one
// response; nothing is cached.
func (s *petService) Match(ctx context.Context, query string) (string, error) {
	return s.client.Match(ctx, query)
}
