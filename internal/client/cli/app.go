package cli

import (
	"bufio"
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/juju/clock"
	"github.com/juju/pubsub/v2"

	"github.com/ovolkov/pawhub/internal/client/api"
	"github.com/ovolkov/pawhub/internal/client/config"
	"github.com/ovolkov/pawhub/internal/client/services"
	"github.com/ovolkov/pawhub/internal/client/session"
	"github.com/ovolkov/pawhub/internal/client/storage"
	"github.com/ovolkov/pawhub/internal/logging"

	_ "modernc.org/sqlite"
)

// App wires the client core together for the terminal UI. Screens map to
// commands: opening a list command mounts a fresh service (and store) for
// it, and the previous screen's store is unmounted so late completions are
// dropped.
type App struct {
	config  *config.Config
	log     logging.Logger
	hub     *pubsub.SimpleHub
	db      *sql.DB
	client  api.Client
	session *session.Manager
	watcher *session.Watcher
	reader  *bufio.Reader

	// Currently mounted screens, nil when closed.
	requests      services.AdoptionService
	reports       services.ReportService
	pets          services.PetService
	notifications services.NotificationService
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	db, repos, err := storage.InitDatabase(ctx, c.DBPath)
	if err != nil {
		return nil, err
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
	hub := pubsub.NewSimpleHub(nil)

	gw := api.NewGateway(c.APIBaseURL, c.RequestTimeout, logger)
	httpClient := api.NewHTTPClient(gw, nil)

	manager := session.NewManager(httpClient, repos.Tokens, hub, clock.WallClock, logger)
	httpClient.SetTokenSource(manager)

	watcher, err := session.NewWatcher(manager, c.DBPath, c.WatchDebounce, clock.WallClock, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	a := &App{
		config:  c,
		log:     logger,
		hub:     hub,
		db:      db,
		client:  httpClient,
		session: manager,
		watcher: watcher,
		reader:  bufio.NewReader(os.Stdin),
	}

	hub.Subscribe(session.TopicChanged, a.onSessionChanged)
	return a, nil
}

// onSessionChanged surfaces the global session notices. A failed login is
// reported by the login command itself; everything here concerns an
// existing session.
func (a *App) onSessionChanged(topic string, data interface{}) {
	ev, ok := data.(session.Event)
	if !ok {
		return
	}
	switch ev.Reason {
	case session.ReasonExpired:
		printlnFn("Session expired, please log in again")
	case session.ReasonVerified:
		if ev.User != nil {
			printlnFn("Logged in as " + ev.User.Username)
		}
	}
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()

	if err := a.session.Restore(ctx); err != nil {
		a.log.Warn(ctx, "session restore failed", "error", err)
	}
	a.Root(ctx)
}

func (a *App) Close() {
	a.closeScreens()
	_ = a.watcher.Close()
	_ = a.db.Close()
}

func (a *App) isLoggedIn() bool {
	return a.session.Status() == session.StatusAuthenticated
}

func (a *App) isStaff() bool {
	u := a.session.CurrentUser()
	return u != nil && u.IsStaff
}

// closeScreens unmounts every open screen, dropping any late responses.
func (a *App) closeScreens() {
	if a.requests != nil {
		a.requests.Unmount()
		a.requests = nil
	}
	if a.reports != nil {
		a.reports.Unmount()
		a.reports = nil
	}
	if a.pets != nil {
		a.pets.Unmount()
		a.pets = nil
	}
	if a.notifications != nil {
		a.notifications.Unmount()
		a.notifications = nil
	}
}

// fail turns an action error into a user-visible notice. A session-expired
// error additionally forces the global logout, exactly once; the hub
// subscriber prints that notice.
func (a *App) fail(ctx context.Context, err error) {
	if err == nil {
		return
	}
	if a.session.HandleError(ctx, err) {
		return
	}
	printlnFn("Error: " + err.Error())
}
