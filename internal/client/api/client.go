package api

import (
	"context"
	"net/url"

	"github.com/ovolkov/pawhub/internal/client/models"
)

// TokenPair is the credential pair issued by login and refresh.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Client is the full surface of the platform API as consumed by this
// client. Auth endpoints take their token explicitly (the session manager
// verifies the exact token it stored); resource endpoints pull the current
// token from the configured TokenSource.
type Client interface {
	Login(ctx context.Context, username, password string) (TokenPair, error)
	Register(ctx context.Context, username, email, password string) error
	RefreshToken(ctx context.Context, refreshToken string) (TokenPair, error)
	UserCheck(ctx context.Context, accessToken string) (*models.User, error)

	ListPets(ctx context.Context, filters url.Values) ([]models.Pet, error)
	GetPet(ctx context.Context, id int64) (models.Pet, error)
	CreatePet(ctx context.Context, form *Form) (models.Pet, error)
	UpdatePet(ctx context.Context, id int64, patch Patch) (models.Pet, error)
	DeletePet(ctx context.Context, id int64) error

	ListAdoptionRequests(ctx context.Context, filters url.Values) ([]models.AdoptionRequest, error)
	CreateAdoptionRequest(ctx context.Context, petID int64, message string) (models.AdoptionRequest, error)
	UpdateAdoptionRequest(ctx context.Context, id int64, patch Patch) (models.AdoptionRequest, error)
	DeleteAdoptionRequest(ctx context.Context, id int64) error

	ListReports(ctx context.Context, filters url.Values) ([]models.PetReport, error)
	CreateReport(ctx context.Context, form *Form) (models.PetReport, error)
	UpdateReport(ctx context.Context, id int64, patch Patch) (models.PetReport, error)
	DeleteReport(ctx context.Context, id int64) error

	ListNotifications(ctx context.Context) ([]models.Notification, error)
	UpdateNotification(ctx context.Context, id int64, patch Patch) (models.Notification, error)
	DeleteNotification(ctx context.Context, id int64) error

	// Match forwards a free-form query to the matching collaborator and
	// returns its suggestion. The feature is opaque to this client.
	Match(ctx context.Context, query string) (string, error)
}
