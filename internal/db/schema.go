package db

import (
	"context"
)

// schemaStatements is the fixed, ordered DDL for every table the application
// needs: the access-control core plus the content tables owned by the CRUD
// surface. Every statement is conditional, so the sequence is safe to run
// any number of times, concurrently, from independent processes; there is no
// application-level locking and no migration history beyond this list.
type schemaStatement struct {
	table string
	ddl   string
}

var schemaStatements = []schemaStatement{
	{"roles", `
		CREATE TABLE IF NOT EXISTS roles (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(64) NOT NULL UNIQUE,
			description TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`},
	{"permissions", `
		CREATE TABLE IF NOT EXISTS permissions (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(128) NOT NULL UNIQUE,
			resource VARCHAR(64) NOT NULL,
			action VARCHAR(32) NOT NULL,
			description TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`},
	{"users", `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			username VARCHAR(64) NOT NULL UNIQUE,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			full_name VARCHAR(128),
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`},
	{"role_permissions", `
		CREATE TABLE IF NOT EXISTS role_permissions (
			role_id BIGINT NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
			permission_id BIGINT NOT NULL REFERENCES permissions(id) ON DELETE CASCADE,
			PRIMARY KEY (role_id, permission_id)
		)`},
	{"user_roles", `
		CREATE TABLE IF NOT EXISTS user_roles (
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			role_id BIGINT NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
			PRIMARY KEY (user_id, role_id)
		)`},
	{"categories", `
		CREATE TABLE IF NOT EXISTS categories (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(128) NOT NULL UNIQUE,
			slug VARCHAR(128) NOT NULL UNIQUE,
			description TEXT,
			sort_order INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`},
	{"articles", `
		CREATE TABLE IF NOT EXISTS articles (
			id UUID PRIMARY KEY,
			category_id BIGINT REFERENCES categories(id),
			author_id UUID REFERENCES users(id),
			title VARCHAR(255) NOT NULL,
			slug VARCHAR(255) NOT NULL UNIQUE,
			summary TEXT,
			body TEXT,
			status VARCHAR(16) NOT NULL DEFAULT 'draft',
			scheduled_at TIMESTAMPTZ,
			published_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`},
	{"ads", `
		CREATE TABLE IF NOT EXISTS ads (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(128) NOT NULL,
			placement VARCHAR(64) NOT NULL,
			image_url TEXT,
			target_url TEXT,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			starts_at TIMESTAMPTZ,
			ends_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`},
	{"navigation_items", `
		CREATE TABLE IF NOT EXISTS navigation_items (
			id BIGSERIAL PRIMARY KEY,
			label VARCHAR(128) NOT NULL,
			url VARCHAR(255) NOT NULL,
			parent_id BIGINT REFERENCES navigation_items(id),
			sort_order INT NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`},
	{"comments", `
		CREATE TABLE IF NOT EXISTS comments (
			id BIGSERIAL PRIMARY KEY,
			article_id UUID NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
			user_id UUID REFERENCES users(id),
			body TEXT NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`},
	{"activity_logs", `
		CREATE TABLE IF NOT EXISTS activity_logs (
			id BIGSERIAL PRIMARY KEY,
			user_id UUID,
			action VARCHAR(64) NOT NULL,
			detail TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`},
	{"articles", `
		CREATE INDEX IF NOT EXISTS idx_articles_status_scheduled_at
		ON articles (status, scheduled_at)`},
	{"comments", `
		CREATE INDEX IF NOT EXISTS idx_comments_article_id
		ON comments (article_id)`},
	{"activity_logs", `
		CREATE INDEX IF NOT EXISTS idx_activity_logs_created_at
		ON activity_logs (created_at)`},
}

// EnsureSchema creates every required table and index if absent. Any failure
// propagates as a SchemaError and the bootstrap attempt must not be marked
// successful.
func (d *DB) EnsureSchema(ctx context.Context) error {
	for _, s := range schemaStatements {
		if _, err := d.gw.Exec(ctx, s.ddl); err != nil {
			return &SchemaError{Table: s.table, Err: err}
		}
	}
	d.log.Info("schema ensured", "statements", len(schemaStatements))
	return nil
}
