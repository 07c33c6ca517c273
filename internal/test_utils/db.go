package test_utils

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "modernc.org/sqlite"
)

// SetupTestDB opens a private in-memory SQLite database and brings its schema
// up to date. The files under migrations/ stick to the portable subset of SQL
// (TEXT columns, BIGINT millisecond timestamps, numbered parameters), so the
// same migrations run here and against the Postgres container in TestWithDB.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db := NewInMemoryDB(t)

	// SQLite keeps foreign keys off unless asked
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		t.Fatalf("enabling foreign keys: %v", err)
	}

	if err := ApplyMigrations(t, db); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	return db
}

// NewInMemoryDB opens a fresh in-memory SQLite database, isolated per test
// and closed when the test finishes.
func NewInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("opening in-memory database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

// ApplyMigrations runs every migration from the repository's migrations/
// directory against the given SQLite handle.
func ApplyMigrations(t *testing.T, db *sql.DB) error {
	t.Helper()

	migrationsDir, err := locateMigrationsDir()
	if err != nil {
		return err
	}

	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating sqlite migrate driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsDir, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("creating migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// locateMigrationsDir walks up from the working directory until it finds the
// migrations/ directory. Tests run with their package directory as cwd, so
// the repository root is some number of levels up.
func locateMigrationsDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, "migrations")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no migrations directory found above %s", dir)
		}
		dir = parent
	}
}
