// Package testutil wires real database handles for the suites that exercise
// schema and seed behavior. Suites calling into it must skip themselves when
// TEST_DATABASE_URL is unset.
package testutil

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"newsroom/internal/config"
	"newsroom/internal/db"
)

// Logger returns a quiet logger for tests.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce log noise in tests
	}))
}

// DatabaseURL returns the configured test database URL, or "" when the
// DB-backed suites should be skipped.
func DatabaseURL() string {
	return os.Getenv("TEST_DATABASE_URL")
}

// Config builds a config pointing at the test database. The auth token is
// taken from TEST_DATABASE_AUTH_TOKEN, falling back to the password embedded
// in the URL so a plain local postgres URL keeps working.
func Config(t *testing.T) config.Config {
	t.Helper()

	raw := DatabaseURL()
	require.NotEmpty(t, raw, "TEST_DATABASE_URL must be set for database-backed tests")

	token := os.Getenv("TEST_DATABASE_AUTH_TOKEN")
	if token == "" {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		if u.User != nil {
			token, _ = u.User.Password()
		}
	}
	require.NotEmpty(t, token, "no auth token: set TEST_DATABASE_AUTH_TOKEN or embed a password in TEST_DATABASE_URL")

	return config.Config{
		Env:               "test",
		LogLevel:          "error",
		RequestTimeout:    30 * time.Second,
		DatabaseURL:       raw,
		DatabaseAuthToken: token,
		CronSecret:        "test-cron-secret",
		AdminPassword:     "test-admin-password",
		LogRetention:      720 * time.Hour,
	}
}

// OpenDatabase connects to the test database and registers cleanup.
func OpenDatabase(t *testing.T) *db.DB {
	t.Helper()

	d, err := db.New(context.Background(), Config(t), Logger())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, d.Close())
	})
	return d
}

// ResetDatabase drops every application table so a test starts from a truly
// cold database. Reverse dependency order plus CASCADE keeps it robust when
// a previous run left a partial schema.
func ResetDatabase(t *testing.T, d *db.DB) {
	t.Helper()

	tables := []string{
		"activity_logs",
		"comments",
		"navigation_items",
		"ads",
		"articles",
		"categories",
		"user_roles",
		"role_permissions",
		"users",
		"permissions",
		"roles",
	}
	for _, table := range tables {
		err := d.Gorm.Exec("DROP TABLE IF EXISTS " + table + " CASCADE").Error
		require.NoError(t, err, "drop table %s", table)
	}
}
