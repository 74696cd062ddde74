package handlers

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"newsroom/internal/db"
	"newsroom/internal/observability"
)

// cronSecretHeader carries the shared secret set on the external scheduler.
const cronSecretHeader = "X-Cron-Secret"

// Writer runs a single write statement; satisfied by *db.Gateway.
type Writer interface {
	Exec(ctx context.Context, query string, args ...any) (db.WriteResult, error)
}

// Cron hosts the scheduler-triggered maintenance endpoints. Each handler
// checks the shared secret before anything else: a mismatch causes no
// database access at all, not even the bootstrap attempt.
type Cron struct {
	boot      Readiness
	gateway   func() Writer
	secret    string
	retention time.Duration
	log       *slog.Logger
}

func NewCron(boot Readiness, gateway func() Writer, secret string, retention time.Duration, log *slog.Logger) *Cron {
	return &Cron{
		boot:      boot,
		gateway:   gateway,
		secret:    secret,
		retention: retention,
		log:       log,
	}
}

type AffectedResponse struct {
	Affected int64 `json:"affected"`
}

// PublishScheduled flips every article whose scheduled time has elapsed to
// published. The conditional update makes re-invocation a no-op returning
// zero affected rows.
func (c *Cron) PublishScheduled() http.Handler {
	return c.run("publish_scheduled", `
		UPDATE articles
		SET status = 'published', published_at = now(), updated_at = now()
		WHERE status = 'scheduled' AND scheduled_at <= now()`)
}

// CleanupLogs deletes activity log rows older than the retention window.
func (c *Cron) CleanupLogs() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.serve(w, r, "cleanup_logs", `
			DELETE FROM activity_logs
			WHERE created_at < now() - $1::interval`,
			fmt.Sprintf("%d seconds", int64(c.retention.Seconds())))
	})
}

func (c *Cron) run(name, query string, args ...any) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.serve(w, r, name, query, args...)
	})
}

func (c *Cron) serve(w http.ResponseWriter, r *http.Request, name, query string, args ...any) {
	if !c.authorized(r) {
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid cron secret")
		return
	}

	if err := c.boot.EnsureReady(r.Context()); err != nil {
		c.log.Error("cron task unavailable", "task", name, "err", err)
		writeError(w, http.StatusServiceUnavailable, "unavailable", "service is initializing")
		return
	}

	gw := c.gateway()
	if gw == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "service is initializing")
		return
	}

	res, err := gw.Exec(r.Context(), query, args...)
	if err != nil {
		c.log.Error("cron task failed", "task", name, "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "task failed")
		return
	}

	observability.IncCronRuns()
	c.log.Info("cron task complete", "task", name, "affected", res.RowsAffected)
	writeJSON(w, http.StatusOK, AffectedResponse{Affected: res.RowsAffected})
}

// authorized compares the header secret in constant time. An unconfigured
// secret rejects every request rather than matching the empty string.
func (c *Cron) authorized(r *http.Request) bool {
	if c.secret == "" {
		return false
	}
	got := r.Header.Get(cronSecretHeader)
	return subtle.ConstantTimeCompare([]byte(got), []byte(c.secret)) == 1
}
