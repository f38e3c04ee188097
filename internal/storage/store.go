package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNoSnapshot indicates the store has never been written.
var ErrNoSnapshot = errors.New("no stored snapshot")

// Store owns a SQLite connection holding the latest analysis snapshot.
type Store struct {
	db *sql.DB
	*PatternWriter
	*PatternReader
}

// Open opens or creates the store at dbPath. With readOnly set the file
// must already exist and the schema is not touched.
func Open(dbPath string, readOnly bool) (*Store, error) {
	if readOnly {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: database not found at %s, run 'patterns analyze --store' first", ErrNoSnapshot, dbPath)
		}
	} else if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	// mode=ro is only honored for file: URIs.
	dsn := "file:" + dbPath + "?_foreign_keys=on"
	if readOnly {
		dsn += "&mode=ro"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite serializes writers; one connection keeps pragmas and
	// transactions on the same handle.
	db.SetMaxOpenConns(1)

	if !readOnly {
		if err := CreateSchema(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return NewStore(db), nil
}

// NewStore wraps an already-open database. The schema must exist.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:            db,
		PatternWriter: NewPatternWriter(db),
		PatternReader: NewPatternReader(db),
	}
}

// DB returns the underlying connection.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
