package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type row struct {
	ID   int64
	Name string
}

func rowID(r row) int64 { return r.ID }

func newTestStore(fetch func(ctx context.Context) ([]row, error)) *Store[row] {
	return New(Config[row]{Name: "rows", ID: rowID, Fetch: fetch})
}

func TestLoad_ReplacesSnapshot(t *testing.T) {
	s := newTestStore(func(ctx context.Context) ([]row, error) {
		return []row{{1, "a"}, {2, "b"}}, nil
	})

	require.NoError(t, s.Load(context.Background()))
	require.Equal(t, []row{{1, "a"}, {2, "b"}}, s.Snapshot())
}

func TestLoad_FetchErrorKeepsSnapshot(t *testing.T) {
	calls := 0
	s := newTestStore(func(ctx context.Context) ([]row, error) {
		calls++
		if calls == 1 {
			return []row{{1, "a"}}, nil
		}
		return nil, errors.New("boom")
	})

	require.NoError(t, s.Load(context.Background()))
	require.Error(t, s.Load(context.Background()))
	require.Equal(t, []row{{1, "a"}}, s.Snapshot())
}

func TestLoad_AfterUnmountIsDropped(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	s := newTestStore(func(ctx context.Context) ([]row, error) {
		close(started)
		<-release
		return []row{{1, "late"}}, nil
	})

	var wg sync.WaitGroup
	var loadErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		loadErr = s.Load(context.Background())
	}()

	<-started
	s.Unmount()
	close(release)
	wg.Wait()

	require.NoError(t, loadErr)
	require.Empty(t, s.Snapshot())
	require.ErrorIs(t, s.Load(context.Background()), ErrUnmounted)
}

func TestLoad_StaleResponseLosesToNewerLoad(t *testing.T) {
	release := make(chan struct{})
	calls := make(chan int, 2)
	call := 0
	var mu sync.Mutex
	s := newTestStore(func(ctx context.Context) ([]row, error) {
		mu.Lock()
		call++
		n := call
		mu.Unlock()
		calls <- n
		if n == 1 {
			<-release
			return []row{{1, "stale"}}, nil
		}
		return []row{{2, "fresh"}}, nil
	})

	var wg sync.WaitGroup
	var staleErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		staleErr = s.Load(context.Background())
	}()
	<-calls

	require.NoError(t, s.Load(context.Background()))
	<-calls
	close(release)
	wg.Wait()
	require.NoError(t, staleErr)

	require.Equal(t, []row{{2, "fresh"}}, s.Snapshot())
}

func TestMutate_BusyIDRejectsSecondMutation(t *testing.T) {
	s := newTestStore(func(ctx context.Context) ([]row, error) {
		return []row{{1, "a"}, {2, "b"}}, nil
	})
	require.NoError(t, s.Load(context.Background()))

	inCall := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		firstErr = s.Mutate(context.Background(), 1, Mutation[row]{
			Call: func(ctx context.Context) error {
				close(inCall)
				<-release
				return nil
			},
		})
	}()

	<-inCall
	require.True(t, s.IsBusy(1))
	require.False(t, s.IsBusy(2))

	// Same id is rejected, a different id is not.
	err := s.Mutate(context.Background(), 1, Mutation[row]{
		Call: func(ctx context.Context) error { return nil },
	})
	require.ErrorIs(t, err, ErrBusy)

	err = s.Mutate(context.Background(), 2, Mutation[row]{
		Call: func(ctx context.Context) error { return nil },
	})
	require.NoError(t, err)

	close(release)
	wg.Wait()
	require.NoError(t, firstErr)
	require.False(t, s.IsBusy(1))
}

func TestMutate_FailureRollsBackAndClearsBusy(t *testing.T) {
	s := newTestStore(func(ctx context.Context) ([]row, error) {
		return []row{{1, "a"}, {2, "b"}, {3, "c"}}, nil
	})
	require.NoError(t, s.Load(context.Background()))

	serverErr := errors.New("conflict")
	err := s.Mutate(context.Background(), 2, Mutation[row]{
		Apply: RemoveByID(rowID, 2),
		Call:  func(ctx context.Context) error { return serverErr },
	})
	require.ErrorIs(t, err, serverErr)

	// The row is back at its original position and selectable again.
	require.Equal(t, []row{{1, "a"}, {2, "b"}, {3, "c"}}, s.Snapshot())
	require.False(t, s.IsBusy(2))
}

func TestMutate_RollbackPreservesOtherOptimisticChanges(t *testing.T) {
	s := newTestStore(func(ctx context.Context) ([]row, error) {
		return []row{{1, "a"}, {2, "b"}}, nil
	})
	require.NoError(t, s.Load(context.Background()))

	in1 := make(chan struct{})
	fail1 := make(chan struct{})
	var wg sync.WaitGroup
	var mutErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		mutErr = s.Mutate(context.Background(), 1, Mutation[row]{
			Apply: UpdateByID(rowID, 1, func(r row) row { r.Name = "a2"; return r }),
			Call: func(ctx context.Context) error {
				close(in1)
				<-fail1
				return errors.New("boom")
			},
		})
	}()
	<-in1

	// A second mutation on another id lands while the first is in flight.
	require.NoError(t, s.Mutate(context.Background(), 2, Mutation[row]{
		Apply: UpdateByID(rowID, 2, func(r row) row { r.Name = "b2"; return r }),
		Call:  func(ctx context.Context) error { return nil },
	}))

	close(fail1)
	wg.Wait()
	require.Error(t, mutErr)

	// Row 1 rolled back, row 2 kept its committed change.
	require.Equal(t, []row{{1, "a"}, {2, "b2"}}, s.Snapshot())
}

func TestMutate_OptimisticRemovalIsImmediate(t *testing.T) {
	s := newTestStore(func(ctx context.Context) ([]row, error) {
		return []row{{1, "a"}, {2, "b"}}, nil
	})
	require.NoError(t, s.Load(context.Background()))

	inCall := make(chan struct{})
	release := make(chan struct{})
	var wg sync.WaitGroup
	var mutErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		mutErr = s.Mutate(context.Background(), 1, Mutation[row]{
			Apply: RemoveByID(rowID, 1),
			Call: func(ctx context.Context) error {
				close(inCall)
				<-release
				return nil
			},
		})
	}()

	<-inCall
	// Removed before the network call settled; no intermediate state.
	require.Equal(t, []row{{2, "b"}}, s.Snapshot())
	close(release)
	wg.Wait()
	require.NoError(t, mutErr)
	require.Equal(t, []row{{2, "b"}}, s.Snapshot())
}

func TestMutate_RefetchReloadsCollection(t *testing.T) {
	loads := 0
	s := newTestStore(func(ctx context.Context) ([]row, error) {
		loads++
		if loads == 1 {
			return []row{{1, "a"}}, nil
		}
		return []row{{1, "a-updated"}}, nil
	})
	require.NoError(t, s.Load(context.Background()))

	require.NoError(t, s.Mutate(context.Background(), 1, Mutation[row]{
		Call:    func(ctx context.Context) error { return nil },
		Refetch: true,
	}))
	require.Equal(t, []row{{1, "a-updated"}}, s.Snapshot())
}

func TestMutate_OnUnmountedStore(t *testing.T) {
	s := newTestStore(func(ctx context.Context) ([]row, error) { return nil, nil })
	s.Unmount()

	err := s.Mutate(context.Background(), 1, Mutation[row]{
		Call: func(ctx context.Context) error { return nil },
	})
	require.ErrorIs(t, err, ErrUnmounted)
}

func TestGet(t *testing.T) {
	s := newTestStore(func(ctx context.Context) ([]row, error) {
		return []row{{1, "a"}}, nil
	})
	require.NoError(t, s.Load(context.Background()))

	got, ok := s.Get(1)
	require.True(t, ok)
	require.Equal(t, row{1, "a"}, got)

	_, ok = s.Get(99)
	require.False(t, ok)
}

func TestSnapshot_IsACopy(t *testing.T) {
	s := newTestStore(func(ctx context.Context) ([]row, error) {
		return []row{{1, "a"}}, nil
	})
	require.NoError(t, s.Load(context.Background()))

	snap := s.Snapshot()
	snap[0].Name = "mutated"

	fresh := s.Snapshot()
	require.Equal(t, "a", fresh[0].Name)
}
