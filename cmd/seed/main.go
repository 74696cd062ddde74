// Command seed forces one full bootstrap pass (connect, ensure schema, seed
// reference data) and exits. Useful for warming a fresh database before any
// traffic arrives; running it against an initialized database is a no-op.
package main

import (
	"context"
	"fmt"
	"os"

	"newsroom/internal/bootstrap"
	"newsroom/internal/config"
	"newsroom/internal/observability"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		panic(err)
	}
	if cfg.DatabaseURL == "" || cfg.DatabaseAuthToken == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL and DATABASE_AUTH_TOKEN are required")
		os.Exit(2)
	}

	log := observability.NewLogger(cfg.LogLevel, cfg.Env)
	log.Info("running bootstrap", "url", cfg.DatabaseURL)

	coord := bootstrap.New(log, bootstrap.Initializer(cfg, log))
	if err := coord.EnsureReady(context.Background()); err != nil {
		log.Error("bootstrap failed", "err", err)
		os.Exit(1)
	}
	defer func() {
		if d := coord.DB(); d != nil {
			if cerr := d.Close(); cerr != nil {
				log.Error("database close error", "err", cerr)
			}
		}
	}()

	log.Info("bootstrap completed")
}
