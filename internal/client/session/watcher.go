package session

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/juju/clock"

	"github.com/ovolkov/pawhub/internal/logging"
)

// resyncTimeout bounds the verify triggered by a store change.
const resyncTimeout = 30 * time.Second

// Watcher is the cross-client convergence mechanism: it watches the token
// store file and asks the Manager to resync whenever another running client
// rewrites or removes the tokens. It replaces direct inter-client messaging;
// every client converges on whatever the store now says.
type Watcher struct {
	fs       *fsnotify.Watcher
	manager  *Manager
	clk      clock.Clock
	log      logging.Logger
	base     string
	debounce time.Duration
	done     chan struct{}
}

// NewWatcher starts watching the directory containing the store at dbPath.
// SQLite writes arrive as bursts touching the main file and its wal/journal
// siblings, so resyncs are debounced.
func NewWatcher(manager *Manager, dbPath string, debounce time.Duration, clk clock.Clock, log logging.Logger) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create store watcher: %w", err)
	}

	dir := filepath.Dir(dbPath)
	if err := fs.Add(dir); err != nil {
		fs.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	w := &Watcher{
		fs:       fs,
		manager:  manager,
		clk:      clk,
		log:      log,
		base:     filepath.Base(dbPath),
		debounce: debounce,
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) Close() error {
	close(w.done)
	return w.fs.Close()
}

func (w *Watcher) loop() {
	var pending clock.Timer
	var pendingCh <-chan time.Time

	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.matches(ev.Name) {
				continue
			}
			if pending == nil {
				pending = w.clk.NewTimer(w.debounce)
				pendingCh = pending.Chan()
			} else {
				pending.Reset(w.debounce)
			}

		case <-pendingCh:
			pending, pendingCh = nil, nil
			ctx, cancel := context.WithTimeout(context.Background(), resyncTimeout)
			if err := w.manager.Resync(ctx); err != nil {
				w.log.Warn(ctx, "resync after store change failed", "error", err)
			}
			cancel()

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn(context.Background(), "store watcher error", "error", err)

		case <-w.done:
			if pending != nil {
				pending.Stop()
			}
			return
		}
	}
}

// matches reports whether an event touches the store file or one of its
// sqlite siblings (wal, shm, journal).
func (w *Watcher) matches(name string) bool {
	return strings.HasPrefix(filepath.Base(name), w.base)
}
