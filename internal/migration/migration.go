// Package migration creates the database schema on startup.
package migration

import (
	"context"

	"autoficate/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createUsersTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create users table")
	}

	if err := r.createItemSetsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create item_sets table")
	}

	if err := r.createImagesTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create images table")
	}

	if err := r.createSessionsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create sessions table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createUsersTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			username TEXT NOT NULL,
			unique_code VARCHAR(4) NOT NULL UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			is_verified BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createItemSetsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS item_sets (
			id BIGSERIAL PRIMARY KEY,
			user_code VARCHAR(4) NOT NULL,
			heading VARCHAR(255) NOT NULL,
			items JSONB NOT NULL DEFAULT '[]',
			position_x INTEGER NOT NULL DEFAULT 0,
			position_y INTEGER NOT NULL DEFAULT 0,
			font_size INTEGER NOT NULL DEFAULT 12,
			font_name VARCHAR(255) NOT NULL DEFAULT 'arial',
			color VARCHAR(9) NOT NULL DEFAULT '#ffaa33ff',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (user_code, heading)
		)
	`)
	return err
}

func (r *MigrationRunner) createImagesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS images (
			id BIGSERIAL PRIMARY KEY,
			user_code VARCHAR(4) NOT NULL UNIQUE,
			file_name VARCHAR(256) NOT NULL,
			url TEXT NOT NULL,
			preview_url TEXT NOT NULL DEFAULT '',
			exports INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createSessionsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS sessions (
			id UUID PRIMARY KEY,
			user_name TEXT NOT NULL DEFAULT '',
			user_code VARCHAR(4) NOT NULL DEFAULT '',
			new_user BOOLEAN NOT NULL DEFAULT TRUE,
			is_verified SMALLINT NOT NULL DEFAULT 0,
			cookie_consent SMALLINT NOT NULL DEFAULT 0,
			cookie_is_set BOOLEAN NOT NULL DEFAULT FALSE,
			current_header TEXT NOT NULL DEFAULT '',
			excel_file_name TEXT NOT NULL DEFAULT '',
			image_file_name TEXT NOT NULL DEFAULT '',
			image_url TEXT NOT NULL DEFAULT '',
			preview_url TEXT NOT NULL DEFAULT '',
			db_error_basic TEXT NOT NULL DEFAULT '',
			db_error_advanced TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_item_sets_user_code ON item_sets(user_code)`,
		`CREATE INDEX IF NOT EXISTS idx_item_sets_user_created ON item_sets(user_code, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_code ON sessions(user_code)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at)`,
	}

	for _, idx := range indexes {
		if _, err := db.ExecContext(ctx, idx); err != nil {
			return err
		}
	}

	return nil
}
