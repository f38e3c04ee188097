package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/mvp-joe/project-patterns/internal/pattern"
)

// PatternQuery filters stored patterns. Empty fields match everything.
type PatternQuery struct {
	Name       string
	Type       pattern.Type
	Purpose    pattern.Purpose
	FilePath   string
	ExportName string
	ImportPath string
	// ExportedOnly keeps patterns with at least one export.
	ExportedOnly bool
	// Limit caps the number of results; zero means no limit.
	Limit int
}

// PatternReader reads the stored snapshot.
type PatternReader struct {
	db *sql.DB
}

// NewPatternReader creates a PatternReader instance.
// DB should have schema already created.
func NewPatternReader(db *sql.DB) *PatternReader {
	return &PatternReader{db: db}
}

// LatestRun returns the stored run, or (nil, nil) if nothing was saved yet.
func (r *PatternReader) LatestRun() (*Run, error) {
	run := &Run{}
	var generatedAt, report string

	err := sq.Select(
		"run_id", "project_root", "generated_at",
		"total_files", "processed_files", "skipped_files", "total_patterns",
		"processing_time_ms", "memory_mb", "report_json",
	).
		From("runs").
		OrderBy("generated_at DESC").
		Limit(1).
		RunWith(r.db).
		QueryRow().
		Scan(
			&run.RunID,
			&run.ProjectRoot,
			&generatedAt,
			&run.Stats.TotalFiles,
			&run.Stats.ProcessedFiles,
			&run.Stats.SkippedFiles,
			&run.Stats.TotalPatterns,
			&run.Stats.ProcessingTime,
			&run.Stats.MemoryUsage,
			&report,
		)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read latest run: %w", err)
	}

	run.GeneratedAt, _ = time.Parse(time.RFC3339, generatedAt)
	if err := json.Unmarshal([]byte(report), &run.Report); err != nil {
		return nil, fmt.Errorf("failed to decode quality report for run %s: %w", run.RunID, err)
	}

	return run, nil
}

// FindPatterns returns the stored patterns matching q in file and line order.
func (r *PatternReader) FindPatterns(q PatternQuery) ([]pattern.Pattern, error) {
	query := sq.Select("p.pattern_json").
		From("patterns p").
		OrderBy("p.file_path", "p.line_number", "p.column_number")

	if q.Name != "" {
		query = query.Where(sq.Eq{"p.name": q.Name})
	}
	if q.Type != "" {
		query = query.Where(sq.Eq{"p.type": string(q.Type)})
	}
	if q.Purpose != "" {
		query = query.Where(sq.Eq{"p.purpose": string(q.Purpose)})
	}
	if q.FilePath != "" {
		query = query.Where(sq.Eq{"p.file_path": q.FilePath})
	}
	if q.ExportedOnly {
		query = query.Where(sq.Eq{"p.is_exported": true})
	}
	if q.ExportName != "" {
		query = query.Where(sq.Expr(
			"p.pattern_id IN (SELECT pattern_id FROM pattern_exports WHERE export_name = ?)", q.ExportName))
	}
	if q.ImportPath != "" {
		query = query.Where(sq.Expr(
			"p.pattern_id IN (SELECT pattern_id FROM pattern_dependencies WHERE module = ?)", q.ImportPath))
	}
	if q.Limit > 0 {
		query = query.Limit(uint64(q.Limit))
	}

	rows, err := query.RunWith(r.db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query patterns: %w", err)
	}
	defer rows.Close()

	patterns := []pattern.Pattern{}
	for rows.Next() {
		var encoded string
		if err := rows.Scan(&encoded); err != nil {
			return nil, fmt.Errorf("failed to scan pattern: %w", err)
		}
		var p pattern.Pattern
		if err := json.Unmarshal([]byte(encoded), &p); err != nil {
			return nil, fmt.Errorf("failed to decode pattern: %w", err)
		}
		patterns = append(patterns, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return patterns, nil
}

// GetPattern returns one pattern by ID, or (nil, nil) if not found.
func (r *PatternReader) GetPattern(id string) (*pattern.Pattern, error) {
	var encoded string
	err := sq.Select("pattern_json").
		From("patterns").
		Where(sq.Eq{"pattern_id": id}).
		RunWith(r.db).
		QueryRow().
		Scan(&encoded)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pattern %s: %w", id, err)
	}

	p := &pattern.Pattern{}
	if err := json.Unmarshal([]byte(encoded), p); err != nil {
		return nil, fmt.Errorf("failed to decode pattern %s: %w", id, err)
	}
	return p, nil
}

// CountByType returns the number of stored patterns per type.
func (r *PatternReader) CountByType() (map[pattern.Type]int, error) {
	rows, err := sq.Select("type", "COUNT(*)").
		From("patterns").
		GroupBy("type").
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to count patterns: %w", err)
	}
	defer rows.Close()

	counts := make(map[pattern.Type]int)
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[pattern.Type(typ)] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return counts, nil
}

// Errors returns the parse errors of the stored run in insertion order.
func (r *PatternReader) Errors() ([]pattern.ParseError, error) {
	rows, err := sq.Select("file_path", "line_number", "message", "severity").
		From("parse_errors").
		OrderBy("rowid").
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query parse errors: %w", err)
	}
	defer rows.Close()

	errs := []pattern.ParseError{}
	for rows.Next() {
		var e pattern.ParseError
		var severity string
		if err := rows.Scan(&e.FilePath, &e.LineNumber, &e.Message, &severity); err != nil {
			return nil, fmt.Errorf("failed to scan parse error: %w", err)
		}
		e.Severity = pattern.Severity(severity)
		errs = append(errs, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return errs, nil
}
