// Package testutil opens throwaway history databases for repository tests.
package testutil

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/checkoutprobe/checkoutprobe/internal/config"
	"github.com/checkoutprobe/checkoutprobe/internal/database"
)

// TestDatabase is a migrated postgres history living in its own schema
type TestDatabase struct {
	DB         *sql.DB
	SchemaName string
	admin      *sql.DB
}

// postgresEnv fills the POSTGRES_* variables with local defaults
func postgresEnv(key string) string {
	defaults := map[string]string{
		"POSTGRES_USER":     "postgres",
		"POSTGRES_PASSWORD": "postgres",
		"POSTGRES_DB":       "postgres",
		"POSTGRES_HOSTNAME": "localhost",
	}
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaults[key]
}

// SetupTestDatabase creates a uniquely named schema, connects to it through
// search_path and runs the history migrations there. The schema is dropped
// when the test finishes.
func SetupTestDatabase(t *testing.T) *TestDatabase {
	t.Helper()

	pg, err := config.LoadPostgresConfig(postgresEnv)
	if err != nil {
		t.Fatalf("Failed to load postgres config: %v", err)
	}
	base := pg.ConnectionString()

	admin, err := database.Open(&config.StoreConfig{Driver: config.DriverPostgres, DSN: base})
	if err != nil {
		t.Fatalf("Failed to connect to postgres: %v", err)
	}

	schema := "test_" + strings.ReplaceAll(uuid.New().String(), "-", "")
	if _, err := admin.Exec(fmt.Sprintf("CREATE SCHEMA %s", schema)); err != nil {
		admin.Close()
		t.Fatalf("Failed to create test schema: %v", err)
	}

	td := &TestDatabase{SchemaName: schema, admin: admin}
	t.Cleanup(func() { td.Teardown(t) })

	td.DB, err = database.Open(&config.StoreConfig{
		Driver: config.DriverPostgres,
		DSN:    fmt.Sprintf("%s search_path=%s", base, schema),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test schema: %v", err)
	}

	if err := database.Migrate(td.DB, config.DriverPostgres); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return td
}

// Teardown drops the schema and closes both connections. Safe to call twice.
func (td *TestDatabase) Teardown(t *testing.T) {
	t.Helper()

	if td.DB != nil {
		td.DB.Close()
		td.DB = nil
	}
	if td.admin == nil {
		return
	}
	if _, err := td.admin.Exec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", td.SchemaName)); err != nil {
		t.Logf("Warning: failed to drop test schema %s: %v", td.SchemaName, err)
	}
	td.admin.Close()
	td.admin = nil
}

// SetupSQLiteDatabase opens a migrated sqlite history in a temp dir.
// It needs no server, so repository unit tests run without build tags.
func SetupSQLiteDatabase(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(&config.StoreConfig{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "history.db"),
	})
	if err != nil {
		t.Fatalf("Failed to open sqlite database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db, config.DriverSQLite); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}
