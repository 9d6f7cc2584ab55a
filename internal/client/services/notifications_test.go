package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ovolkov/pawhub/internal/client/api"
	"github.com/ovolkov/pawhub/internal/client/models"
)

type notificationsClient struct {
	api.Client

	listFn   func(ctx context.Context) ([]models.Notification, error)
	updateFn func(ctx context.Context, id int64, patch api.Patch) (models.Notification, error)
	deleteFn func(ctx context.Context, id int64) error
}

func (c *notificationsClient) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	return c.listFn(ctx)
}

func (c *notificationsClient) UpdateNotification(ctx context.Context, id int64, patch api.Patch) (models.Notification, error) {
	return c.updateFn(ctx, id, patch)
}

func (c *notificationsClient) DeleteNotification(ctx context.Context, id int64) error {
	return c.deleteFn(ctx, id)
}

func inbox() []models.Notification {
	return []models.Notification{
		{ID: 1, Message: "Your request was approved. Congrats!", IsRead: false},
		{ID: 2, Message: "Your report was rejected", IsRead: true},
		{ID: 3, Message: "New request for Rex", IsRead: false},
	}
}

func TestUnreadCount_DerivedFromSnapshot(t *testing.T) {
	c := &notificationsClient{
		listFn: func(ctx context.Context) ([]models.Notification, error) { return inbox(), nil },
	}

	svc := NewNotificationService(c, testHub(), testLogger())
	require.NoError(t, svc.Load(context.Background()))

	require.Equal(t, 2, svc.UnreadCount())
	unread := svc.Unread()
	require.Len(t, unread, 2)
	require.Equal(t, int64(1), unread[0].ID)
	require.Equal(t, int64(3), unread[1].ID)
}

func TestMarkRead_DropsBadgeImmediately(t *testing.T) {
	var gotPatch api.Patch
	c := &notificationsClient{
		listFn: func(ctx context.Context) ([]models.Notification, error) { return inbox(), nil },
		updateFn: func(ctx context.Context, id int64, patch api.Patch) (models.Notification, error) {
			gotPatch = patch
			return models.Notification{ID: id, IsRead: true}, nil
		},
	}

	svc := NewNotificationService(c, testHub(), testLogger())
	require.NoError(t, svc.Load(context.Background()))

	require.NoError(t, svc.MarkRead(context.Background(), 1))
	require.Equal(t, true, gotPatch["is_read"])
	require.Equal(t, 1, svc.UnreadCount())
}

func TestMarkRead_RestoresBadgeOnFailure(t *testing.T) {
	fail := errors.New("boom")
	c := &notificationsClient{
		listFn: func(ctx context.Context) ([]models.Notification, error) { return inbox(), nil },
		updateFn: func(ctx context.Context, id int64, patch api.Patch) (models.Notification, error) {
			return models.Notification{}, fail
		},
	}

	svc := NewNotificationService(c, testHub(), testLogger())
	require.NoError(t, svc.Load(context.Background()))

	require.ErrorIs(t, svc.MarkRead(context.Background(), 1), fail)
	require.Equal(t, 2, svc.UnreadCount())
	require.False(t, svc.Busy(1))
}

func TestDeleteNotification_Optimistic(t *testing.T) {
	c := &notificationsClient{
		listFn:   func(ctx context.Context) ([]models.Notification, error) { return inbox(), nil },
		deleteFn: func(ctx context.Context, id int64) error { return nil },
	}

	svc := NewNotificationService(c, testHub(), testLogger())
	require.NoError(t, svc.Load(context.Background()))

	require.NoError(t, svc.Delete(context.Background(), 3))
	require.Len(t, svc.Notifications(), 2)
	require.Equal(t, 1, svc.UnreadCount())
}
