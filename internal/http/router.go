package http

import (
	"expvar"
	nhttp "net/http"

	"log/slog"

	"newsroom/internal/bootstrap"
	"newsroom/internal/config"
	"newsroom/internal/http/handlers"
)

func NewRouter(cfg config.Config, log *slog.Logger, coord *bootstrap.Coordinator) nhttp.Handler {
	mux := nhttp.NewServeMux()

	// Health answers even while the database is unreachable.
	mux.HandleFunc("GET /health", handlers.Health(coord))

	// expvar
	mux.Handle("GET /debug/vars", expvar.Handler())

	// Scheduler-triggered maintenance. The gateway is resolved per request
	// because it only exists once bootstrap has completed.
	cron := handlers.NewCron(coord, gatewayFrom(coord), cfg.CronSecret, cfg.LogRetention, log)
	mux.Handle("POST /cron/publish-scheduled", cron.PublishScheduled())
	mux.Handle("POST /cron/cleanup-logs", cron.CleanupLogs())

	// Compose middleware (order matters; first is outermost)
	return chain(mux,
		withRequestID,
		func(h nhttp.Handler) nhttp.Handler { return withRecover(log, h) },
		func(h nhttp.Handler) nhttp.Handler { return withCORS(cfg.AllowedOrigins, h) },
		func(h nhttp.Handler) nhttp.Handler { return withLogging(log, h) },
	)
}

func gatewayFrom(coord *bootstrap.Coordinator) func() handlers.Writer {
	return func() handlers.Writer {
		d := coord.DB()
		if d == nil {
			return nil
		}
		return d.Gateway()
	}
}
