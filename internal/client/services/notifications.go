package services

import (
	"context"

	"github.com/juju/pubsub/v2"

	"github.com/ovolkov/pawhub/internal/client/api"
	"github.com/ovolkov/pawhub/internal/client/models"
	"github.com/ovolkov/pawhub/internal/client/store"
	"github.com/ovolkov/pawhub/internal/logging"
)

// NotificationService reconciles the server-side notification records with
// what the user sees. Notifications are created by the server when a request
// or report is decided; the client only renders, marks read, and deletes.
//
// The unread count is always derived from the cached collection, so an
// optimistic read or delete moves the counter before the server confirms.
type NotificationService interface {
	Load(ctx context.Context) error
	Notifications() []models.Notification
	Unread() []models.Notification
	UnreadCount() int
	Busy(id int64) bool

	MarkRead(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error

	Unmount()
}

type notificationService struct {
	client api.Client
	store  *store.Store[models.Notification]
}

func NewNotificationService(client api.Client, hub *pubsub.SimpleHub, log logging.Logger) NotificationService {
	s := &notificationService{client: client}
	s.store = store.New(store.Config[models.Notification]{
		Name: "notifications",
		ID:   func(n models.Notification) int64 { return n.ID },
		Fetch: func(ctx context.Context) ([]models.Notification, error) {
			return client.ListNotifications(ctx)
		},
		Hub: hub,
		Log: log,
	})
	return s
}

func (s *notificationService) Load(ctx context.Context) error { return s.store.Load(ctx) }

func (s *notificationService) Notifications() []models.Notification { return s.store.Snapshot() }

func (s *notificationService) Unread() []models.Notification {
	all := s.store.Snapshot()
	unread := make([]models.Notification, 0, len(all))
	for _, n := range all {
		if !n.IsRead {
			unread = append(unread, n)
		}
	}
	return unread
}

func (s *notificationService) UnreadCount() int { return len(s.Unread()) }

func (s *notificationService) Busy(id int64) bool { return s.store.IsBusy(id) }

func (s *notificationService) Unmount() { s.store.Unmount() }

// MarkRead flips is_read optimistically; the badge count drops immediately
// and comes back on failure.
func (s *notificationService) MarkRead(ctx context.Context, id int64) error {
	idOf := func(n models.Notification) int64 { return n.ID }
	return s.store.Mutate(ctx, id, store.Mutation[models.Notification]{
		Apply: store.UpdateByID(idOf, id, func(n models.Notification) models.Notification {
			n.IsRead = true
			return n
		}),
		Call: func(ctx context.Context) error {
			_, err := s.client.UpdateNotification(ctx, id, api.Patch{"is_read": true})
			return err
		},
	})
}

// Delete removes the record optimistically.
func (s *notificationService) Delete(ctx context.Context, id int64) error {
	idOf := func(n models.Notification) int64 { return n.ID }
	return s.store.Mutate(ctx, id, store.Mutation[models.Notification]{
		Apply: store.RemoveByID(idOf, id),
		Call: func(ctx context.Context) error {
			return s.client.DeleteNotification(ctx, id)
		},
	})
}
