package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ovolkov/pawhub/internal/client/services"
)

// OpenNotifications mounts the notification screen and prints the inbox,
// unread entries first marked with an asterisk.
func (a *App) OpenNotifications(ctx context.Context) {
	if !a.isLoggedIn() {
		printlnFn("Please log in first")
		return
	}

	if a.notifications != nil {
		a.notifications.Unmount()
	}
	a.notifications = services.NewNotificationService(a.client, a.hub, a.log)

	if err := a.notifications.Load(ctx); err != nil {
		a.fail(ctx, err)
		return
	}
	a.printNotifications()
}

func (a *App) printNotifications() {
	items := a.notifications.Notifications()
	if len(items) == 0 {
		printlnFn("No notifications")
		return
	}
	for _, n := range items {
		mark := " "
		if !n.IsRead {
			mark = "*"
		}
		printlnFn(fmt.Sprintf("%s #%d  %s", mark, n.ID, n.Message))
	}
	if unread := a.notifications.UnreadCount(); unread > 0 {
		printlnFn(fmt.Sprintf("%d unread", unread))
	}
}

func (a *App) MarkNotificationRead(ctx context.Context, args []string) {
	if len(args) == 0 {
		printlnFn("Usage: read <id>")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		printlnFn("Usage: read <id>")
		return
	}
	if a.notifications == nil {
		a.OpenNotifications(ctx)
		if a.notifications == nil {
			return
		}
	}
	if err := a.notifications.MarkRead(ctx, id); err != nil {
		a.fail(ctx, err)
		return
	}
	printlnFn(fmt.Sprintf("Notification #%d read", id))
}

func (a *App) DismissNotification(ctx context.Context, args []string) {
	if len(args) == 0 {
		printlnFn("Usage: dismiss <id>")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		printlnFn("Usage: dismiss <id>")
		return
	}
	if a.notifications == nil {
		a.OpenNotifications(ctx)
		if a.notifications == nil {
			return
		}
	}
	if err := a.notifications.Delete(ctx, id); err != nil {
		a.fail(ctx, err)
		return
	}
	printlnFn(fmt.Sprintf("Notification #%d dismissed", id))
}
