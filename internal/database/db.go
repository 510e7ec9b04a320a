package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // Postgres driver
)

// DB wraps the shared connection pool. Opened once at process start.
type DB struct {
	*sql.DB
}

// New opens a Postgres connection pool and applies schema migrations.
func New(databaseURL string) (*DB, error) {
	sqlDB, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		if closeErr := sqlDB.Close(); closeErr != nil {
			_ = closeErr
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{DB: sqlDB}

	if err := db.migrate(ctx); err != nil {
		if closeErr := sqlDB.Close(); closeErr != nil {
			_ = closeErr
		}
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return db, nil
}

// migrate creates the schema if it does not exist. Idempotent.
func (db *DB) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			provider_uid TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL DEFAULT '',
			name TEXT,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS notes (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id),
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_user_created ON notes (user_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS oidc_config (
			id UUID PRIMARY KEY,
			provider TEXT NOT NULL UNIQUE,
			issuer TEXT NOT NULL,
			client_id TEXT NOT NULL DEFAULT '',
			client_secret TEXT,
			redirect_uri TEXT NOT NULL DEFAULT '',
			jwks_url TEXT,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS cors_config (
			config_key TEXT PRIMARY KEY,
			allowed_origins TEXT NOT NULL,
			allow_credentials BOOLEAN NOT NULL DEFAULT TRUE,
			max_age INTEGER NOT NULL DEFAULT 86400,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS ratelimit_config (
			config_key TEXT PRIMARY KEY,
			rate TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	return nil
}
