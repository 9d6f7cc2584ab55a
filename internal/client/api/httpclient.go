package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ovolkov/pawhub/internal/client/models"
)

// HTTPClient implements Client over a Gateway.
type HTTPClient struct {
	gw     *Gateway
	tokens TokenSource
}

func NewHTTPClient(gw *Gateway, tokens TokenSource) *HTTPClient {
	return &HTTPClient{gw: gw, tokens: tokens}
}

// SetTokenSource installs the source of access tokens after construction.
// The session manager both consumes this client and supplies its tokens, so
// the binding happens late. Call before any authenticated request is made.
func (c *HTTPClient) SetTokenSource(tokens TokenSource) {
	c.tokens = tokens
}

func (c *HTTPClient) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.AccessToken()
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (TokenPair, error) {
	body := map[string]string{"username": username, "password": password}
	var pair TokenPair
	if err := c.gw.Do(ctx, http.MethodPost, "/login", nil, body, "", &pair); err != nil {
		return TokenPair{}, fmt.Errorf("login: %w", err)
	}
	return pair, nil
}

func (c *HTTPClient) Register(ctx context.Context, username, email, password string) error {
	body := map[string]string{"username": username, "email": email, "password": password}
	if err := c.gw.Do(ctx, http.MethodPost, "/register", nil, body, "", nil); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

func (c *HTTPClient) RefreshToken(ctx context.Context, refreshToken string) (TokenPair, error) {
	body := map[string]string{"refresh": refreshToken}
	var pair TokenPair
	if err := c.gw.Do(ctx, http.MethodPost, "/token-refresh", nil, body, "", &pair); err != nil {
		return TokenPair{}, fmt.Errorf("token refresh: %w", err)
	}
	return pair, nil
}

func (c *HTTPClient) UserCheck(ctx context.Context, accessToken string) (*models.User, error) {
	var user models.User
	if err := c.gw.Do(ctx, http.MethodGet, "/user-check", nil, nil, accessToken, &user); err != nil {
		return nil, fmt.Errorf("user check: %w", err)
	}
	return &user, nil
}

func (c *HTTPClient) ListPets(ctx context.Context, filters url.Values) ([]models.Pet, error) {
	var pets []models.Pet
	if err := c.gw.Do(ctx, http.MethodGet, "/pets", filters, nil, c.token(), &pets); err != nil {
		return nil, err
	}
	return pets, nil
}

func (c *HTTPClient) GetPet(ctx context.Context, id int64) (models.Pet, error) {
	var pet models.Pet
	if err := c.gw.Do(ctx, http.MethodGet, fmt.Sprintf("/pets/%d", id), nil, nil, c.token(), &pet); err != nil {
		return models.Pet{}, err
	}
	return pet, nil
}

func (c *HTTPClient) CreatePet(ctx context.Context, form *Form) (models.Pet, error) {
	var pet models.Pet
	if err := c.gw.Do(ctx, http.MethodPost, "/pets", nil, form, c.token(), &pet); err != nil {
		return models.Pet{}, err
	}
	return pet, nil
}

func (c *HTTPClient) UpdatePet(ctx context.Context, id int64, patch Patch) (models.Pet, error) {
	var pet models.Pet
	if err := c.gw.Do(ctx, http.MethodPatch, fmt.Sprintf("/pets/%d", id), nil, patch, c.token(), &pet); err != nil {
		return models.Pet{}, err
	}
	return pet, nil
}

func (c *HTTPClient) DeletePet(ctx context.Context, id int64) error {
	return c.gw.Do(ctx, http.MethodDelete, fmt.Sprintf("/pets/%d", id), nil, nil, c.token(), nil)
}

func (c *HTTPClient) ListAdoptionRequests(ctx context.Context, filters url.Values) ([]models.AdoptionRequest, error) {
	var reqs []models.AdoptionRequest
	if err := c.gw.Do(ctx, http.MethodGet, "/adoption-requests", filters, nil, c.token(), &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

func (c *HTTPClient) CreateAdoptionRequest(ctx context.Context, petID int64, message string) (models.AdoptionRequest, error) {
	body := map[string]any{"pet": petID, "message": message}
	var req models.AdoptionRequest
	if err := c.gw.Do(ctx, http.MethodPost, "/adoption-requests", nil, body, c.token(), &req); err != nil {
		return models.AdoptionRequest{}, err
	}
	return req, nil
}

func (c *HTTPClient) UpdateAdoptionRequest(ctx context.Context, id int64, patch Patch) (models.AdoptionRequest, error) {
	var req models.AdoptionRequest
	if err := c.gw.Do(ctx, http.MethodPatch, fmt.Sprintf("/adoption-requests/%d", id), nil, patch, c.token(), &req); err != nil {
		return models.AdoptionRequest{}, err
	}
	return req, nil
}

func (c *HTTPClient) DeleteAdoptionRequest(ctx context.Context, id int64) error {
	return c.gw.Do(ctx, http.MethodDelete, fmt.Sprintf("/adoption-requests/%d", id), nil, nil, c.token(), nil)
}

func (c *HTTPClient) ListReports(ctx context.Context, filters url.Values) ([]models.PetReport, error) {
	var reports []models.PetReport
	if err := c.gw.Do(ctx, http.MethodGet, "/reports", filters, nil, c.token(), &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

func (c *HTTPClient) CreateReport(ctx context.Context, form *Form) (models.PetReport, error) {
	var report models.PetReport
	if err := c.gw.Do(ctx, http.MethodPost, "/reports", nil, form, c.token(), &report); err != nil {
		return models.PetReport{}, err
	}
	return report, nil
}

func (c *HTTPClient) UpdateReport(ctx context.Context, id int64, patch Patch) (models.PetReport, error) {
	var report models.PetReport
	if err := c.gw.Do(ctx, http.MethodPatch, fmt.Sprintf("/reports/%d", id), nil, patch, c.token(), &report); err != nil {
		return models.PetReport{}, err
	}
	return report, nil
}

func (c *HTTPClient) DeleteReport(ctx context.Context, id int64) error {
	return c.gw.Do(ctx, http.MethodDelete, fmt.Sprintf("/reports/%d", id), nil, nil, c.token(), nil)
}

func (c *HTTPClient) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	var items []models.Notification
	if err := c.gw.Do(ctx, http.MethodGet, "/notifications", nil, nil, c.token(), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *HTTPClient) UpdateNotification(ctx context.Context, id int64, patch Patch) (models.Notification, error) {
	var item models.Notification
	if err := c.gw.Do(ctx, http.MethodPatch, fmt.Sprintf("/notifications/%d", id), nil, patch, c.token(), &item); err != nil {
		return models.Notification{}, err
	}
	return item, nil
}

func (c *HTTPClient) DeleteNotification(ctx context.Context, id int64) error {
	return c.gw.Do(ctx, http.MethodDelete, fmt.Sprintf("/notifications/%d", id), nil, nil, c.token(), nil)
}

func (c *HTTPClient) Match(ctx context.Context, query string) (string, error) {
	body := map[string]string{"query": query}
	var out struct {
		Suggestion string `json:"suggestion"`
	}
	if err := c.gw.Do(ctx, http.MethodPost, "/match", nil, body, c.token(), &out); err != nil {
		return "", err
	}
	return out.Suggestion, nil
}
