package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"sync"
	"testing"

	"github.com/juju/pubsub/v2"
	"github.com/stretchr/testify/require"

	"github.com/ovolkov/pawhub/internal/client/api"
	"github.com/ovolkov/pawhub/internal/client/models"
	"github.com/ovolkov/pawhub/internal/common"
	"github.com/ovolkov/pawhub/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testHub() *pubsub.SimpleHub {
	return pubsub.NewSimpleHub(nil)
}

// requestsClient overrides the adoption-request surface of the API.
type requestsClient struct {
	api.Client

	listFn   func(ctx context.Context, filters url.Values) ([]models.AdoptionRequest, error)
	createFn func(ctx context.Context, petID int64, message string) (models.AdoptionRequest, error)
	updateFn func(ctx context.Context, id int64, patch api.Patch) (models.AdoptionRequest, error)
	deleteFn func(ctx context.Context, id int64) error

	mu      sync.Mutex
	updates int
}

func (c *requestsClient) ListAdoptionRequests(ctx context.Context, filters url.Values) ([]models.AdoptionRequest, error) {
	return c.listFn(ctx, filters)
}

func (c *requestsClient) CreateAdoptionRequest(ctx context.Context, petID int64, message string) (models.AdoptionRequest, error) {
	return c.createFn(ctx, petID, message)
}

func (c *requestsClient) UpdateAdoptionRequest(ctx context.Context, id int64, patch api.Patch) (models.AdoptionRequest, error) {
	c.mu.Lock()
	c.updates++
	c.mu.Unlock()
	return c.updateFn(ctx, id, patch)
}

func (c *requestsClient) DeleteAdoptionRequest(ctx context.Context, id int64) error {
	return c.deleteFn(ctx, id)
}

func (c *requestsClient) updateCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updates
}

func pendingRequests() []models.AdoptionRequest {
	return []models.AdoptionRequest{
		{ID: 41, PetName: "Rex", RequesterName: "bob", Status: models.StatusPending},
		{ID: 42, PetName: "Whiskers", RequesterName: "carol", Status: models.StatusPending},
	}
}

func TestLoad_FilterReachesQuery(t *testing.T) {
	var gotFilters url.Values
	c := &requestsClient{
		listFn: func(ctx context.Context, filters url.Values) ([]models.AdoptionRequest, error) {
			gotFilters = filters
			return pendingRequests(), nil
		},
	}

	svc := NewAdoptionService(c, testHub(), testLogger(), models.StatusPending)
	require.NoError(t, svc.Load(context.Background()))
	require.Equal(t, "pending", gotFilters.Get("status"))
	require.Len(t, svc.Requests(), 2)
}

func TestApprove_RemovesFromPendingView(t *testing.T) {
	var gotPatch api.Patch
	c := &requestsClient{
		listFn: func(ctx context.Context, filters url.Values) ([]models.AdoptionRequest, error) {
			return pendingRequests(), nil
		},
		updateFn: func(ctx context.Context, id int64, patch api.Patch) (models.AdoptionRequest, error) {
			gotPatch = patch
			return models.AdoptionRequest{ID: id, Status: models.StatusApproved}, nil
		},
	}

	svc := NewAdoptionService(c, testHub(), testLogger(), models.StatusPending)
	require.NoError(t, svc.Load(context.Background()))

	require.NoError(t, svc.Approve(context.Background(), 42, "Congrats!"))

	require.Equal(t, "approved", gotPatch["status"])
	require.Equal(t, "Congrats!", gotPatch["decision_message"])

	left := svc.Requests()
	require.Len(t, left, 1)
	require.Equal(t, int64(41), left[0].ID)
	require.False(t, svc.Busy(42))
}

func TestApprove_RollbackOnConflict(t *testing.T) {
	conflict := &api.DomainError{StatusCode: 409, Detail: "request already rejected"}
	c := &requestsClient{
		listFn: func(ctx context.Context, filters url.Values) ([]models.AdoptionRequest, error) {
			return pendingRequests(), nil
		},
		updateFn: func(ctx context.Context, id int64, patch api.Patch) (models.AdoptionRequest, error) {
			return models.AdoptionRequest{}, conflict
		},
	}

	svc := NewAdoptionService(c, testHub(), testLogger(), models.StatusPending)
	require.NoError(t, svc.Load(context.Background()))

	err := svc.Approve(context.Background(), 41, "")
	require.ErrorIs(t, err, conflict)

	// The row is back at its original position, first in the list.
	left := svc.Requests()
	require.Len(t, left, 2)
	require.Equal(t, int64(41), left[0].ID)
	require.Equal(t, models.StatusPending, left[0].Status)
	require.False(t, svc.Busy(41))
}

func TestApprove_IllegalTransitionNeverReachesNetwork(t *testing.T) {
	c := &requestsClient{
		listFn: func(ctx context.Context, filters url.Values) ([]models.AdoptionRequest, error) {
			return []models.AdoptionRequest{
				{ID: 1, Status: models.StatusApproved},
			}, nil
		},
	}

	svc := NewAdoptionService(c, testHub(), testLogger(), "")
	require.NoError(t, svc.Load(context.Background()))

	err := svc.Approve(context.Background(), 1, "")
	require.ErrorIs(t, err, models.ErrIllegalTransition)
	require.Zero(t, c.updateCalls())
}

func TestApprove_UnknownID(t *testing.T) {
	c := &requestsClient{
		listFn: func(ctx context.Context, filters url.Values) ([]models.AdoptionRequest, error) {
			return nil, nil
		},
	}

	svc := NewAdoptionService(c, testHub(), testLogger(), "")
	require.NoError(t, svc.Load(context.Background()))

	err := svc.Approve(context.Background(), 99, "")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestReject_UnfilteredViewUpdatesInPlace(t *testing.T) {
	c := &requestsClient{
		listFn: func(ctx context.Context, filters url.Values) ([]models.AdoptionRequest, error) {
			return pendingRequests(), nil
		},
		updateFn: func(ctx context.Context, id int64, patch api.Patch) (models.AdoptionRequest, error) {
			return models.AdoptionRequest{ID: id, Status: models.StatusRejected}, nil
		},
	}

	svc := NewAdoptionService(c, testHub(), testLogger(), "")
	require.NoError(t, svc.Load(context.Background()))

	require.NoError(t, svc.Reject(context.Background(), 41, "no longer available"))

	all := svc.Requests()
	require.Len(t, all, 2)
	require.Equal(t, models.StatusRejected, all[0].Status)
}

func TestAccept_SetsOwnerDecision(t *testing.T) {
	var gotPatch api.Patch
	c := &requestsClient{
		listFn: func(ctx context.Context, filters url.Values) ([]models.AdoptionRequest, error) {
			return pendingRequests(), nil
		},
		updateFn: func(ctx context.Context, id int64, patch api.Patch) (models.AdoptionRequest, error) {
			gotPatch = patch
			return models.AdoptionRequest{ID: id, OwnerDecision: models.DecisionAccepted}, nil
		},
	}

	svc := NewAdoptionService(c, testHub(), testLogger(), "")
	require.NoError(t, svc.Load(context.Background()))

	require.NoError(t, svc.Accept(context.Background(), 41))

	require.Equal(t, "accepted", gotPatch["owner_decision"])
	require.NotContains(t, gotPatch, "status")

	got := svc.Requests()[0]
	require.Equal(t, models.DecisionAccepted, got.OwnerDecision)
	// Moderation axis untouched.
	require.Equal(t, models.StatusPending, got.Status)
}

func TestDecline_AlreadyDecided(t *testing.T) {
	c := &requestsClient{
		listFn: func(ctx context.Context, filters url.Values) ([]models.AdoptionRequest, error) {
			return []models.AdoptionRequest{
				{ID: 7, Status: models.StatusApproved, OwnerDecision: models.DecisionAccepted},
			}, nil
		},
	}

	svc := NewAdoptionService(c, testHub(), testLogger(), "")
	require.NoError(t, svc.Load(context.Background()))

	err := svc.Decline(context.Background(), 7)
	require.ErrorIs(t, err, ErrAlreadyDecided)
	require.Zero(t, c.updateCalls())
}

func TestDelete_OptimisticWithRollback(t *testing.T) {
	fail := errors.New("boom")
	shouldFail := true
	c := &requestsClient{
		listFn: func(ctx context.Context, filters url.Values) ([]models.AdoptionRequest, error) {
			return pendingRequests(), nil
		},
		deleteFn: func(ctx context.Context, id int64) error {
			if shouldFail {
				return fail
			}
			return nil
		},
	}

	svc := NewAdoptionService(c, testHub(), testLogger(), "")
	require.NoError(t, svc.Load(context.Background()))

	require.ErrorIs(t, svc.Delete(context.Background(), 41), fail)
	require.Len(t, svc.Requests(), 2)

	shouldFail = false
	require.NoError(t, svc.Delete(context.Background(), 41))
	require.Len(t, svc.Requests(), 1)
}

func TestRequest_RefetchesCollection(t *testing.T) {
	created := models.AdoptionRequest{ID: 50, PetName: "Rex", Status: models.StatusPending}
	listed := false
	c := &requestsClient{
		listFn: func(ctx context.Context, filters url.Values) ([]models.AdoptionRequest, error) {
			if listed {
				return []models.AdoptionRequest{created}, nil
			}
			return nil, nil
		},
		createFn: func(ctx context.Context, petID int64, message string) (models.AdoptionRequest, error) {
			require.Equal(t, int64(9), petID)
			require.Equal(t, "please", message)
			listed = true
			return created, nil
		},
	}

	svc := NewAdoptionService(c, testHub(), testLogger(), "")
	require.NoError(t, svc.Load(context.Background()))

	got, err := svc.Request(context.Background(), 9, "please")
	require.NoError(t, err)
	require.Equal(t, created, got)
	require.Equal(t, []models.AdoptionRequest{created}, svc.Requests())
}

func TestRequest_RefetchFailureDoesNotFailCreate(t *testing.T) {
	created := models.AdoptionRequest{ID: 51, PetName: "Rex", Status: models.StatusPending}
	var loads int
	c := &requestsClient{
		listFn: func(ctx context.Context, filters url.Values) ([]models.AdoptionRequest, error) {
			loads++
			if loads > 1 {
				return nil, errors.New("feed unavailable")
			}
			return nil, nil
		},
		createFn: func(ctx context.Context, petID int64, message string) (models.AdoptionRequest, error) {
			return created, nil
		},
	}

	svc := NewAdoptionService(c, testHub(), testLogger(), "")
	require.NoError(t, svc.Load(context.Background()))

	// The request was created server-side; a failed refetch must not turn
	// that into a create error. The view is merely stale.
	got, err := svc.Request(context.Background(), 9, "please")
	require.NoError(t, err)
	require.Equal(t, created, got)
	require.Equal(t, 2, loads)
}
