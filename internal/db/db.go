package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"newsroom/internal/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB wraps gorm.DB with the underlying *sql.DB for pooling controls and Close.
type DB struct {
	Gorm *gorm.DB
	SQL  *sql.DB
	gw   *Gateway
	log  *slog.Logger
}

// New opens a connection to the remote database. Both DATABASE_URL and
// DATABASE_AUTH_TOKEN must be present; either missing fails with
// ErrMissingConfig before any connection is attempted. A successful open is
// confirmed with one trivial round-trip query.
func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*DB, error) {
	dsn, err := buildDSN(cfg.DatabaseURL, cfg.DatabaseAuthToken)
	if err != nil {
		return nil, err
	}

	g, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	sqlDB, err := g.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	// Function instances handle few requests at a time; keep the pool small.
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	sqlDB.SetConnMaxLifetime(60 * time.Minute)

	// Liveness round trip before the handle is handed out.
	var one int
	if err := sqlDB.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("connection check: %w", err)
	}

	d := &DB{Gorm: g, SQL: sqlDB, log: log}
	d.gw = &Gateway{sql: sqlDB}
	return d, nil
}

// Gateway returns the raw-SQL access point for this connection.
func (d *DB) Gateway() *Gateway {
	if d == nil {
		return nil
	}
	return d.gw
}

// Close closes the underlying sql.DB.
func (d *DB) Close() error {
	if d == nil || d.SQL == nil {
		return nil
	}
	return d.SQL.Close()
}

// buildDSN injects the auth token as the connection credential. The URL is
// expected without a password; any password it carries is replaced so the
// token stays the single source of the credential.
func buildDSN(rawURL, token string) (string, error) {
	if rawURL == "" {
		return "", fmt.Errorf("DATABASE_URL: %w", ErrMissingConfig)
	}
	if token == "" {
		return "", fmt.Errorf("DATABASE_AUTH_TOKEN: %w", ErrMissingConfig)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse DATABASE_URL: %w", err)
	}

	username := "newsroom"
	if u.User != nil && u.User.Username() != "" {
		username = u.User.Username()
	}
	u.User = url.UserPassword(username, token)

	return u.String(), nil
}
