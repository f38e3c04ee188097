package storage

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// NewTestDB creates a fully configured in-memory SQLite database for testing.
//
// The database includes:
//   - Foreign key constraints enabled (CRITICAL for cascade deletes)
//   - Full schema created
//   - Automatic cleanup registered with t.Cleanup()
//
// Example:
//
//	func TestSomething(t *testing.T) {
//	    db := storage.NewTestDB(t)
//	    // ... test code ...
//	    // No need to close - t.Cleanup() handles it
//	}
func NewTestDB(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// Every pooled connection would get its own in-memory database
	db.SetMaxOpenConns(1)

	// Enable foreign key constraints (required for cascade deletes)
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)

	require.NoError(t, CreateSchema(db))

	return db
}

// NewTestStoreFile creates a file-based store in t.TempDir() and returns its
// path. Use it to test persistence across connections.
func NewTestStoreFile(t testing.TB) (*Store, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "patterns.db")
	store, err := Open(dbPath, false)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store, dbPath
}
