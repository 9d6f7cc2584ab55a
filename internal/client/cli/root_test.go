package cli

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovolkov/pawhub/internal/client/config"
	"github.com/ovolkov/pawhub/internal/devserver"
	"github.com/ovolkov/pawhub/internal/logging"
)

// newTestApp builds a real App against an in-memory dev server, with the
// REPL reading from input and all user-facing output captured.
func newTestApp(t *testing.T, input string) (*App, *devserver.Server, func() string) {
	t.Helper()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := devserver.New([]byte("test-secret"), logger)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	cfg := &config.Config{
		APIBaseURL:     ts.URL,
		RequestTimeout: 5 * time.Second,
		DBPath:         filepath.Join(t.TempDir(), "cli.db"),
		WatchDebounce:  10 * time.Millisecond,
	}

	app, err := NewApp(cfg)
	require.NoError(t, err)
	t.Cleanup(app.Close)
	app.reader = rdr(input)

	var mu sync.Mutex
	var lines []string
	old := printlnFn
	t.Cleanup(func() { printlnFn = old })
	printlnFn = func(s string) {
		mu.Lock()
		lines = append(lines, s)
		mu.Unlock()
	}

	output := func() string {
		mu.Lock()
		defer mu.Unlock()
		return strings.Join(lines, "\n")
	}
	return app, srv, output
}

func TestRoot_HelpAndUnknownCommand(t *testing.T) {
	app, _, output := newTestApp(t, "help\nbogus\nexit\n")

	app.Root(context.Background())

	assert.Contains(t, output(), "approve <id>")
	assert.Contains(t, output(), "Unknown command: bogus")
}

func TestRoot_WhoamiAnonymous(t *testing.T) {
	app, _, output := newTestApp(t, "whoami\nquit\n")

	app.Root(context.Background())

	assert.Contains(t, output(), "Not logged in (status: anonymous)")
}

func TestRoot_LoginWhoamiLogout(t *testing.T) {
	app, srv, output := newTestApp(t, "login\nadmin\nwhoami\nlogout\nexit\n")
	srv.SeedUser("admin", "admin@pawhub.dev", "secret123", true)

	old := readPassword
	t.Cleanup(func() { readPassword = old })
	readPassword = func(int) ([]byte, error) { return []byte("secret123"), nil }

	app.Root(context.Background())

	assert.Contains(t, output(), "Welcome, admin")
	assert.Contains(t, output(), "admin <admin@pawhub.dev> (staff)")
	assert.Contains(t, output(), "Logged out")
}

func TestRoot_LoginWrongPassword(t *testing.T) {
	app, srv, output := newTestApp(t, "login\nadmin\nexit\n")
	srv.SeedUser("admin", "admin@pawhub.dev", "secret123", true)

	old := readPassword
	t.Cleanup(func() { readPassword = old })
	readPassword = func(int) ([]byte, error) { return []byte("wrong"), nil }

	app.Root(context.Background())

	assert.Contains(t, output(), "Login unsuccessful")
}

func TestPrompt_ReflectsSessionState(t *testing.T) {
	app, srv, _ := newTestApp(t, "")
	srv.SeedUser("alice", "alice@pawhub.dev", "pw", false)

	assert.Equal(t, "guest> ", app.prompt())

	require.NoError(t, app.session.Login(context.Background(), "alice", "pw"))
	assert.Equal(t, "alice> ", app.prompt())

	require.NoError(t, app.session.Logout(context.Background()))
	assert.Equal(t, "guest> ", app.prompt())
}
