package repository

import (
	"path/filepath"
	"testing"

	"github.com/lessonforge/lessonforge-backend/migrations"
)

// setupTestStore opens a fresh SQLite database in a per-test temp dir and
// applies the embedded schema.
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	schema, err := migrations.FS.ReadFile("001_initial_schema.sql")
	if err != nil {
		t.Fatalf("Failed to read embedded schema: %v", err)
	}
	if err := store.RunMigrations(string(schema)); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return store
}

// mustExec applies fixture SQL (e.g. canonical lesson rows, which this
// service never writes through its own API).
func mustExec(t *testing.T, store *Store, sql string) {
	t.Helper()
	if err := store.RunMigrations(sql); err != nil {
		t.Fatalf("Failed to exec fixture SQL: %v", err)
	}
}
