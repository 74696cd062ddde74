package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"newsroom/internal/db"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce log noise in tests
	}))
}

func TestEnsureReadyRunsInitExactlyOnce(t *testing.T) {
	var calls atomic.Int64
	coord := New(testLogger(), func(ctx context.Context) (*db.DB, error) {
		calls.Add(1)
		time.Sleep(50 * time.Millisecond)
		return nil, nil
	})

	const waiters = 10
	var wg sync.WaitGroup
	errs := make([]error, waiters)

	start := make(chan struct{})
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = coord.EnsureReady(context.Background())
		}(i)
	}
	close(start)
	wg.Wait()

	require.EqualValues(t, 1, calls.Load())
	for i, err := range errs {
		require.NoError(t, err, "waiter %d", i)
	}
	require.True(t, coord.Ready())
}

func TestEnsureReadyShortCircuitsOnceReady(t *testing.T) {
	var calls atomic.Int64
	coord := New(testLogger(), func(ctx context.Context) (*db.DB, error) {
		calls.Add(1)
		return nil, nil
	})

	require.NoError(t, coord.EnsureReady(context.Background()))
	require.NoError(t, coord.EnsureReady(context.Background()))
	require.NoError(t, coord.EnsureReady(context.Background()))

	require.EqualValues(t, 1, calls.Load())
}

func TestFailureDoesNotWedgeTheProcess(t *testing.T) {
	injected := errors.New("connection refused")
	var calls atomic.Int64
	coord := New(testLogger(), func(ctx context.Context) (*db.DB, error) {
		if calls.Add(1) == 1 {
			return nil, injected
		}
		return nil, nil
	})

	err := coord.EnsureReady(context.Background())
	require.Error(t, err)

	var initErr *InitError
	require.ErrorAs(t, err, &initErr)
	require.ErrorIs(t, err, injected)
	require.False(t, coord.Ready())

	// The failure is not cached; the next request retries and succeeds.
	require.NoError(t, coord.EnsureReady(context.Background()))
	require.True(t, coord.Ready())
	require.EqualValues(t, 2, calls.Load())
}

func TestConcurrentWaitersShareFailureOutcome(t *testing.T) {
	injected := errors.New("schema create failed")
	var calls atomic.Int64
	coord := New(testLogger(), func(ctx context.Context) (*db.DB, error) {
		calls.Add(1)
		time.Sleep(50 * time.Millisecond)
		return nil, injected
	})

	const waiters = 5
	var wg sync.WaitGroup
	errs := make([]error, waiters)
	start := make(chan struct{})
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = coord.EnsureReady(context.Background())
		}(i)
	}
	close(start)
	wg.Wait()

	require.EqualValues(t, 1, calls.Load())
	for i, err := range errs {
		require.ErrorIs(t, err, injected, "waiter %d", i)
	}
}

func TestWaiterTimeoutDoesNotCancelAttempt(t *testing.T) {
	var calls atomic.Int64
	coord := New(testLogger(), func(ctx context.Context) (*db.DB, error) {
		calls.Add(1)
		time.Sleep(200 * time.Millisecond)
		return nil, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := coord.EnsureReady(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// The attempt keeps running and completes for everyone else.
	require.Eventually(t, coord.Ready, 2*time.Second, 10*time.Millisecond)
	require.EqualValues(t, 1, calls.Load())
}
