// Package bootstrap brings a cold process to a usable state: connected to the
// database, schema present, reference data seeded. Any number of requests may
// arrive before that has happened; the coordinator collapses them into one
// attempt per process and hands every waiter the same outcome.
package bootstrap

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"newsroom/internal/config"
	"newsroom/internal/db"
	"newsroom/internal/observability"
)

// attemptTimeout bounds one full initialization pass (connect, schema, seed).
const attemptTimeout = 30 * time.Second

// InitError is the typed failure every waiter of a failed attempt receives.
type InitError struct {
	Err error
}

func (e *InitError) Error() string { return "bootstrap: " + e.Err.Error() }

func (e *InitError) Unwrap() error { return e.Err }

// InitFunc performs one full initialization attempt and returns the live
// database handle.
type InitFunc func(ctx context.Context) (*db.DB, error)

// Initializer is the production InitFunc: connect, ensure schema, seed.
func Initializer(cfg config.Config, log *slog.Logger) InitFunc {
	return func(ctx context.Context) (*db.DB, error) {
		d, err := db.New(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		if err := d.EnsureSchema(ctx); err != nil {
			_ = d.Close()
			return nil, err
		}
		if err := d.SeedIfEmpty(ctx, cfg.AdminPassword); err != nil {
			_ = d.Close()
			return nil, err
		}
		return d, nil
	}
}

// Coordinator is the per-process singleton guarding initialization.
//
// State machine: uninitialized -> initializing -> ready, where a failed
// attempt drops back to uninitialized instead of latching. Failures are never
// cached: a transient connection blip on one request must not wedge an
// otherwise healthy long-lived process, so the next request simply starts a
// fresh attempt.
type Coordinator struct {
	log  *slog.Logger
	init InitFunc

	group singleflight.Group
	ready atomic.Bool

	mu sync.RWMutex
	db *db.DB
}

func New(log *slog.Logger, init InitFunc) *Coordinator {
	return &Coordinator{log: log, init: init}
}

// Ready reports whether initialization has completed, with no I/O. Health
// reporting uses this even while an attempt is failing.
func (c *Coordinator) Ready() bool {
	return c.ready.Load()
}

// DB returns the live handle, or nil before the coordinator is ready.
func (c *Coordinator) DB() *db.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

// EnsureReady blocks until this process has a completed initialization.
// Concurrent callers join the same in-flight attempt and observe the same
// outcome; exactly one of them executes the InitFunc. A caller whose context
// expires while waiting gets its context error, but the attempt itself runs
// to completion on a detached context for the remaining waiters.
func (c *Coordinator) EnsureReady(ctx context.Context) error {
	if c.ready.Load() {
		return nil
	}

	ch := c.group.DoChan("bootstrap", func() (any, error) {
		return nil, c.attempt()
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		return res.Err
	}
}

func (c *Coordinator) attempt() error {
	// Re-check under the flight: a previous flight may have completed
	// between the caller's fast path and joining this one.
	if c.ready.Load() {
		return nil
	}

	observability.IncBootstrapAttempts()
	c.log.Info("bootstrap attempt starting")

	// Detached from every caller: one waiter timing out must not cancel
	// the attempt for the others.
	ctx, cancel := context.WithTimeout(context.Background(), attemptTimeout)
	defer cancel()

	handle, err := c.init(ctx)
	if err != nil {
		observability.IncBootstrapFailures()
		c.log.Error("bootstrap attempt failed", "err", err)
		return &InitError{Err: err}
	}

	c.mu.Lock()
	c.db = handle
	c.mu.Unlock()
	c.ready.Store(true)

	c.log.Info("bootstrap complete")
	return nil
}
