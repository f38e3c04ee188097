package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// SchemaVersion is written to store_metadata when the schema is created.
const SchemaVersion = "1.0"

// CreateSchema creates all tables and indexes of the pattern store. It is
// idempotent, so an existing database is opened without migration.
// Uses a transaction for atomicity - all schema creation succeeds or fails together.
//
// Must be called with SQLite PRAGMA foreign_keys = ON.
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	// Create all tables in dependency order
	tables := []struct {
		name string
		ddl  string
	}{
		{"runs", createRunsTable},
		{"patterns", createPatternsTable},
		{"pattern_exports", createPatternExportsTable},
		{"pattern_dependencies", createPatternDependenciesTable},
		{"parse_errors", createParseErrorsTable},
		{"store_metadata", createStoreMetadataTable},
	}

	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range getAllIndexes() {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	bootstrapSQL := `
		INSERT OR IGNORE INTO store_metadata (key, value, updated_at) VALUES
			('schema_version', ?, ?)
	`
	if _, err := tx.Exec(bootstrapSQL, SchemaVersion, now); err != nil {
		return fmt.Errorf("failed to bootstrap store_metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}

	return nil
}

// GetSchemaVersion retrieves the schema version from store_metadata.
// Returns "0" if the table doesn't exist (new database).
func GetSchemaVersion(db *sql.DB) (string, error) {
	var tableExists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='store_metadata'").Scan(&tableExists)
	if err != nil {
		return "", fmt.Errorf("failed to check store_metadata existence: %w", err)
	}
	if tableExists == 0 {
		return "0", nil // New database
	}

	var version string
	err = db.QueryRow("SELECT value FROM store_metadata WHERE key = 'schema_version'").Scan(&version)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("schema_version key not found in store_metadata")
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}
	return version, nil
}

// Table DDL constants

const createRunsTable = `
CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,                     -- UUID v4
    project_root TEXT NOT NULL,
    generated_at TEXT NOT NULL,                  -- ISO 8601
    total_files INTEGER NOT NULL DEFAULT 0,
    processed_files INTEGER NOT NULL DEFAULT 0,
    skipped_files INTEGER NOT NULL DEFAULT 0,
    total_patterns INTEGER NOT NULL DEFAULT 0,
    processing_time_ms INTEGER NOT NULL DEFAULT 0,
    memory_mb REAL NOT NULL DEFAULT 0,
    overall_quality REAL NOT NULL DEFAULT 0,
    report_json TEXT NOT NULL                    -- Full QualityReport
)
`

const createPatternsTable = `
CREATE TABLE IF NOT EXISTS patterns (
    pattern_id TEXT PRIMARY KEY,                 -- {name}-{hash}
    run_id TEXT NOT NULL,
    name TEXT NOT NULL,
    type TEXT NOT NULL,                          -- component, custom-hook, ...
    file_path TEXT NOT NULL,
    line_number INTEGER NOT NULL,
    column_number INTEGER NOT NULL,
    hash TEXT NOT NULL,
    purpose TEXT NOT NULL DEFAULT '',
    complexity INTEGER NOT NULL DEFAULT 1,
    usage_count INTEGER NOT NULL DEFAULT 0,
    return_type TEXT NOT NULL DEFAULT '',
    is_exported INTEGER NOT NULL DEFAULT 0,      -- Boolean
    pattern_json TEXT NOT NULL,                  -- Full Pattern for lossless reads
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
)
`

const createPatternExportsTable = `
CREATE TABLE IF NOT EXISTS pattern_exports (
    pattern_id TEXT NOT NULL,
    export_type TEXT NOT NULL,                   -- named, default, re-export
    export_name TEXT NOT NULL DEFAULT '',
    source_path TEXT NOT NULL DEFAULT '',        -- Module specifier for re-exports
    is_reexport INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (pattern_id) REFERENCES patterns(pattern_id) ON DELETE CASCADE
)
`

const createPatternDependenciesTable = `
CREATE TABLE IF NOT EXISTS pattern_dependencies (
    pattern_id TEXT NOT NULL,
    module TEXT NOT NULL,                        -- Import specifier
    position INTEGER NOT NULL,                   -- Order within the pattern
    PRIMARY KEY (pattern_id, module),
    FOREIGN KEY (pattern_id) REFERENCES patterns(pattern_id) ON DELETE CASCADE
)
`

const createParseErrorsTable = `
CREATE TABLE IF NOT EXISTS parse_errors (
    run_id TEXT NOT NULL,
    file_path TEXT NOT NULL,
    line_number INTEGER NOT NULL DEFAULT 0,
    message TEXT NOT NULL,
    severity TEXT NOT NULL,                      -- error, warning, info
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
)
`

const createStoreMetadataTable = `
CREATE TABLE IF NOT EXISTS store_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
)
`

func getAllIndexes() []string {
	return []string{
		// patterns table indexes
		"CREATE INDEX IF NOT EXISTS idx_patterns_run ON patterns(run_id)",
		"CREATE INDEX IF NOT EXISTS idx_patterns_name ON patterns(name)",
		"CREATE INDEX IF NOT EXISTS idx_patterns_type ON patterns(type)",
		"CREATE INDEX IF NOT EXISTS idx_patterns_file_path ON patterns(file_path)",
		"CREATE INDEX IF NOT EXISTS idx_patterns_purpose ON patterns(purpose)",

		// pattern_exports table indexes
		"CREATE INDEX IF NOT EXISTS idx_pattern_exports_pattern ON pattern_exports(pattern_id)",
		"CREATE INDEX IF NOT EXISTS idx_pattern_exports_name ON pattern_exports(export_name)",

		// pattern_dependencies table indexes
		"CREATE INDEX IF NOT EXISTS idx_pattern_dependencies_module ON pattern_dependencies(module)",

		// parse_errors table indexes
		"CREATE INDEX IF NOT EXISTS idx_parse_errors_run ON parse_errors(run_id)",
	}
}
