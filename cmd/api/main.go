package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"newsroom/internal/bootstrap"
	"newsroom/internal/config"
	apihttp "newsroom/internal/http"
	"newsroom/internal/observability"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		panic(err)
	}

	log := observability.NewLogger(cfg.LogLevel, cfg.Env)

	// No database work happens here. The coordinator runs the full
	// initialization (connect, schema, seed) lazily on the first request
	// that needs it, so a cold instance with bad database config still
	// starts and answers /health.
	coord := bootstrap.New(log, bootstrap.Initializer(cfg, log))

	router := apihttp.NewRouter(cfg, log, coord)
	server := apihttp.NewServer(cfg, router, log)

	// Run with signal cancellation
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited with error", "err", err)
		os.Exit(1)
	}

	if d := coord.DB(); d != nil {
		if cerr := d.Close(); cerr != nil {
			log.Error("database close error", "err", cerr)
		}
	}

	log.Info("server exited cleanly")
}
