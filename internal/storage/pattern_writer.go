package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/mvp-joe/project-patterns/internal/pattern"
)

// Run describes one stored analysis run.
type Run struct {
	RunID       string
	ProjectRoot string
	GeneratedAt time.Time
	Stats       pattern.ParseStats
	Report      pattern.QualityReport
}

// NewRunID generates a unique UUID v4 run identifier.
func NewRunID() string {
	return uuid.New().String()
}

// PatternWriter writes analysis snapshots to SQLite.
type PatternWriter struct {
	db *sql.DB
}

// NewPatternWriter creates a PatternWriter instance.
// DB must have schema already created via CreateSchema().
func NewPatternWriter(db *sql.DB) *PatternWriter {
	return &PatternWriter{db: db}
}

// SaveResult replaces the stored snapshot with res in a single transaction.
// Only the latest run is kept.
func (w *PatternWriter) SaveResult(run Run, res *pattern.Result) error {
	if run.RunID == "" {
		run.RunID = NewRunID()
	}
	if run.GeneratedAt.IsZero() {
		run.GeneratedAt = time.Now()
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	// Cascades to patterns, exports, dependencies and errors
	if _, err := sq.Delete("runs").RunWith(tx).Exec(); err != nil {
		return fmt.Errorf("failed to clear previous snapshot: %w", err)
	}

	report, err := json.Marshal(res.QualityReport)
	if err != nil {
		return fmt.Errorf("failed to encode quality report: %w", err)
	}

	_, err = sq.Insert("runs").
		Columns(
			"run_id", "project_root", "generated_at",
			"total_files", "processed_files", "skipped_files", "total_patterns",
			"processing_time_ms", "memory_mb", "overall_quality", "report_json",
		).
		Values(
			run.RunID,
			run.ProjectRoot,
			run.GeneratedAt.UTC().Format(time.RFC3339),
			res.Stats.TotalFiles,
			res.Stats.ProcessedFiles,
			res.Stats.SkippedFiles,
			res.Stats.TotalPatterns,
			res.Stats.ProcessingTime,
			res.Stats.MemoryUsage,
			res.QualityReport.Quality.OverallQuality,
			string(report),
		).
		RunWith(tx).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.RunID, err)
	}

	for _, p := range res.Patterns {
		if err := writePattern(tx, run.RunID, p); err != nil {
			return err
		}
	}

	for _, e := range res.Errors {
		_, err := sq.Insert("parse_errors").
			Columns("run_id", "file_path", "line_number", "message", "severity").
			Values(run.RunID, e.FilePath, e.LineNumber, e.Message, string(e.Severity)).
			RunWith(tx).
			Exec()
		if err != nil {
			return fmt.Errorf("failed to insert parse error for %s: %w", e.FilePath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	return nil
}

func writePattern(tx *sql.Tx, runID string, p pattern.Pattern) error {
	encoded, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode pattern %s: %w", p.ID, err)
	}

	_, err = sq.Insert("patterns").
		Columns(
			"pattern_id", "run_id", "name", "type", "file_path",
			"line_number", "column_number", "hash", "purpose",
			"complexity", "usage_count", "return_type", "is_exported", "pattern_json",
		).
		Values(
			p.ID,
			runID,
			p.Name,
			string(p.Type),
			p.FilePath,
			p.LineNumber,
			p.ColumnNumber,
			p.Hash,
			string(p.Metadata.Purpose),
			p.Metadata.Complexity,
			p.Metadata.UsageCount,
			p.Metadata.ReturnType,
			p.IsExported(),
			string(encoded),
		).
		RunWith(tx).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to insert pattern %s: %w", p.ID, err)
	}

	for _, e := range p.Exports {
		_, err := sq.Insert("pattern_exports").
			Columns("pattern_id", "export_type", "export_name", "source_path", "is_reexport").
			Values(p.ID, string(e.Type), e.Name, e.Path, e.IsReExport).
			RunWith(tx).
			Exec()
		if err != nil {
			return fmt.Errorf("failed to insert export for %s: %w", p.ID, err)
		}
	}

	for i, dep := range p.Dependencies {
		_, err := sq.Insert("pattern_dependencies").
			Columns("pattern_id", "module", "position").
			Values(p.ID, dep, i).
			Options("OR IGNORE").
			RunWith(tx).
			Exec()
		if err != nil {
			return fmt.Errorf("failed to insert dependency %s for %s: %w", dep, p.ID, err)
		}
	}

	return nil
}
