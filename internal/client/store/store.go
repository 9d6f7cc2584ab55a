// Package store implements the optimistic-mutation cache behind every list,
// grid, and table screen. One Store holds one screen's snapshot of a remote
// collection; the server stays the sole authority, and two screens may hold
// divergent snapshots of the same logical resource at the same time.
//
// The mutation discipline per resource id:
//
//  1. mark the id busy (other rows stay interactive),
//  2. optionally apply an optimistic local change with an undo,
//  3. dispatch the remote call,
//  4. on success trust the optimistic state or refetch the collection,
//  5. on failure undo, clear busy, and return the normalized error.
//
// Late completions — a fetch finishing after the screen unmounted or after a
// newer fetch started — are detected by a generation counter and dropped.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/juju/pubsub/v2"

	"github.com/ovolkov/pawhub/internal/logging"
)

// TopicPrefix + the store name is the hub topic a view surface subscribes to.
const TopicPrefix = "store.changed."

var (
	// ErrBusy rejects a second mutation on an id whose first mutation has
	// not settled. Mutations on different ids never block each other.
	ErrBusy = errors.New("resource is busy")

	// ErrUnmounted rejects operations on a store whose screen has been
	// navigated away from.
	ErrUnmounted = errors.New("store is unmounted")
)

// Event is published on every visible change to the cached collection.
type Event struct {
	Name  string
	Count int
}

// Config wires a Store to its resource type.
type Config[T any] struct {
	Name  string
	ID    func(T) int64
	Fetch func(ctx context.Context) ([]T, error)
	Hub   *pubsub.SimpleHub
	Log   logging.Logger
}

// Undo reverts one optimistic change against the current collection. It must
// touch only the rows its change touched, so a rollback never clobbers a
// concurrent mutation on a different id.
type Undo[T any] func(items []T) []T

// Optimistic transforms the collection immediately, before the network
// round-trip, and returns the corresponding Undo.
type Optimistic[T any] func(items []T) ([]T, Undo[T])

// Mutation describes one remote mutation of a single resource.
type Mutation[T any] struct {
	// Apply is the optimistic local change; nil when the effect is not
	// locally derivable and the UI should wait for Refetch.
	Apply Optimistic[T]

	// Call dispatches the mutation through the gateway.
	Call func(ctx context.Context) error

	// Refetch reloads the whole collection after a successful Call, for
	// mutations whose full effect cannot be computed locally.
	Refetch bool
}

// Store caches one collection for one screen.
type Store[T any] struct {
	cfg Config[T]

	mu      sync.Mutex
	items   []T
	busy    map[int64]struct{}
	gen     int
	mounted bool
}

func New[T any](cfg Config[T]) *Store[T] {
	return &Store[T]{
		cfg:     cfg,
		busy:    make(map[int64]struct{}),
		mounted: true,
	}
}

// Load fetches the collection and replaces the cache. A Load that loses to a
// newer Load, or completes after Unmount, is discarded.
func (s *Store[T]) Load(ctx context.Context) error {
	s.mu.Lock()
	if !s.mounted {
		s.mu.Unlock()
		return ErrUnmounted
	}
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	items, err := s.cfg.Fetch(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if !s.mounted || gen != s.gen {
		s.mu.Unlock()
		return nil
	}
	s.items = items
	s.mu.Unlock()

	s.notify()
	return nil
}

// Snapshot returns a copy of the cached collection for rendering.
func (s *Store[T]) Snapshot() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Get returns the cached resource with the given id.
func (s *Store[T]) Get(id int64) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if s.cfg.ID(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// IsBusy reports whether a mutation on id is still in flight.
func (s *Store[T]) IsBusy(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.busy[id]
	return ok
}

// Unmount marks the screen gone. In-flight completions become no-ops.
func (s *Store[T]) Unmount() {
	s.mu.Lock()
	s.mounted = false
	s.items = nil
	s.mu.Unlock()
}

// Mutate runs one mutation under the optimistic discipline described in the
// package comment. A second Mutate on a busy id returns ErrBusy immediately.
func (s *Store[T]) Mutate(ctx context.Context, id int64, m Mutation[T]) error {
	s.mu.Lock()
	if !s.mounted {
		s.mu.Unlock()
		return ErrUnmounted
	}
	if _, inFlight := s.busy[id]; inFlight {
		s.mu.Unlock()
		return ErrBusy
	}
	s.busy[id] = struct{}{}

	var undo Undo[T]
	if m.Apply != nil {
		s.items, undo = m.Apply(s.items)
	}
	s.mu.Unlock()

	if m.Apply != nil {
		s.notify()
	}

	err := m.Call(ctx)
	if err != nil {
		s.mu.Lock()
		if undo != nil && s.mounted {
			s.items = undo(s.items)
		}
		delete(s.busy, id)
		s.mu.Unlock()
		s.notify()
		if s.cfg.Log != nil {
			s.cfg.Log.Warn(ctx, "mutation failed, rolled back", "store", s.cfg.Name, "id", id, "error", err)
		}
		return err
	}

	s.mu.Lock()
	delete(s.busy, id)
	s.mu.Unlock()

	if m.Refetch {
		return s.Load(ctx)
	}
	s.notify()
	return nil
}

func (s *Store[T]) notify() {
	if s.cfg.Hub == nil {
		return
	}
	s.mu.Lock()
	count := len(s.items)
	s.mu.Unlock()
	_ = s.cfg.Hub.Publish(TopicPrefix+s.cfg.Name, Event{Name: s.cfg.Name, Count: count})
}

// RemoveByID is the optimistic change for mutations that move a resource out
// of a status-filtered view: the row disappears immediately and atomically.
// Undo reinserts the row at its original position.
func RemoveByID[T any](idOf func(T) int64, id int64) Optimistic[T] {
	return func(items []T) ([]T, Undo[T]) {
		idx := -1
		for i, item := range items {
			if idOf(item) == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return items, func(cur []T) []T { return cur }
		}
		removed := items[idx]
		next := make([]T, 0, len(items)-1)
		next = append(next, items[:idx]...)
		next = append(next, items[idx+1:]...)

		undo := func(cur []T) []T {
			at := idx
			if at > len(cur) {
				at = len(cur)
			}
			restored := make([]T, 0, len(cur)+1)
			restored = append(restored, cur[:at]...)
			restored = append(restored, removed)
			restored = append(restored, cur[at:]...)
			return restored
		}
		return next, undo
	}
}

// UpdateByID is the optimistic change for in-place field flips. Undo
// restores the original row wherever it currently sits.
func UpdateByID[T any](idOf func(T) int64, id int64, change func(T) T) Optimistic[T] {
	return func(items []T) ([]T, Undo[T]) {
		idx := -1
		for i, item := range items {
			if idOf(item) == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return items, func(cur []T) []T { return cur }
		}
		original := items[idx]
		next := make([]T, len(items))
		copy(next, items)
		next[idx] = change(original)

		undo := func(cur []T) []T {
			restored := make([]T, len(cur))
			copy(restored, cur)
			for i, item := range restored {
				if idOf(item) == id {
					restored[i] = original
					break
				}
			}
			return restored
		}
		return next, undo
	}
}
