package database

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/checkoutprobe/checkoutprobe/internal/config"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS runs (
		id UUID PRIMARY KEY,
		reference VARCHAR(255) UNIQUE NOT NULL,
		scenario VARCHAR(255) NOT NULL,
		payment_method VARCHAR(50) NOT NULL DEFAULT '',
		status VARCHAR(50) NOT NULL,
		failure_kind VARCHAR(50) NOT NULL DEFAULT '',
		message TEXT NOT NULL DEFAULT '',
		started_at TIMESTAMPTZ,
		finished_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
	CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);

	CREATE TABLE IF NOT EXISTS run_steps (
		run_id UUID NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		name VARCHAR(255) NOT NULL,
		passed BOOLEAN NOT NULL,
		skipped BOOLEAN NOT NULL DEFAULT FALSE,
		attempts INTEGER NOT NULL,
		duration_ms BIGINT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		screenshot TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (run_id, position)
	);
	`

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		reference TEXT UNIQUE NOT NULL,
		scenario TEXT NOT NULL,
		payment_method TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		failure_kind TEXT NOT NULL DEFAULT '',
		message TEXT NOT NULL DEFAULT '',
		started_at DATETIME,
		finished_at DATETIME,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
	CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);

	CREATE TABLE IF NOT EXISTS run_steps (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		passed BOOLEAN NOT NULL,
		skipped BOOLEAN NOT NULL DEFAULT 0,
		attempts INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		screenshot TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (run_id, position)
	);
	`

// RunMigrations creates the history tables on the connected database
func RunMigrations() error {
	if DB == nil {
		return fmt.Errorf("database connection not initialized")
	}
	if err := Migrate(DB, Driver); err != nil {
		return err
	}
	log.Println("Database migrations completed successfully")
	return nil
}

// Migrate creates the history tables on db
func Migrate(db *sql.DB, driver string) error {
	schema := sqliteSchema
	if driver == config.DriverPostgres {
		schema = postgresSchema
	}
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create history tables: %w", err)
	}
	return nil
}
