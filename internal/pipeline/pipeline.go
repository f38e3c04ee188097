// Package pipeline sequences the extraction stages per file, runs files
// concurrently, and merges their results into one analysis report.
package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/mvp-joe/project-patterns/internal/exports"
	"github.com/mvp-joe/project-patterns/internal/extractor"
	"github.com/mvp-joe/project-patterns/internal/pattern"
	"github.com/mvp-joe/project-patterns/internal/program"
	"github.com/mvp-joe/project-patterns/internal/semantic"
	"github.com/mvp-joe/project-patterns/internal/typeresolver"
)

// Pipeline runs extraction and enrichment for a single file. Every stage is
// read-only after construction, so one Pipeline serves all concurrent tasks
// of a run.
type Pipeline struct {
	extractor    *extractor.Extractor
	resolver     *typeresolver.Resolver
	analyzer     *semantic.Analyzer
	tracker      *exports.Tracker
	allowPartial bool
}

// NewPipeline wires the stages. Stubs are stamped with runStart.
func NewPipeline(types typeresolver.TypeService, cfg semantic.Config, allowPartial bool, runStart time.Time) *Pipeline {
	return &Pipeline{
		extractor:    extractor.New(extractor.WithTimestamp(runStart)),
		resolver:     typeresolver.New(types),
		analyzer:     semantic.New(cfg),
		tracker:      exports.New(),
		allowPartial: allowPartial,
	}
}

// ProcessFile extracts and enriches the patterns of f. It never panics: a
// failing file yields no patterns and exactly one error-severity ParseError.
func (pl *Pipeline) ProcessFile(f *program.SourceFile) (res FileResult) {
	defer func() {
		if r := recover(); r != nil {
			res = fileFailure(f, 0, fmt.Sprintf("analysis failed: %v", r))
		}
	}()

	if f.Err != nil {
		var serr *program.SyntaxError
		isSyntax := errors.As(f.Err, &serr)
		if isSyntax && pl.allowPartial && f.Root() != nil {
			res = pl.process(f)
			res.Errors = append([]pattern.ParseError{{
				FilePath:   f.RelPath,
				LineNumber: serr.Line,
				Message:    serr.Error(),
				Severity:   pattern.SeverityWarning,
			}}, res.Errors...)
			return res
		}
		line := 0
		if isSyntax {
			line = serr.Line
		}
		return fileFailure(f, line, f.Err.Error())
	}

	return pl.process(f)
}

func (pl *Pipeline) process(f *program.SourceFile) FileResult {
	matches := pl.extractor.Matches(f)
	patterns := make([]pattern.Pattern, 0, len(matches))
	for _, m := range matches {
		p := pl.resolver.Enrich(m.Pattern, m.Shape, f)
		p = pl.analyzer.Analyze(p, m.Shape, f)
		p = pl.tracker.Enrich(p, m.Shape, f)
		patterns = append(patterns, p)
	}
	return FileResult{Patterns: patterns, Errors: []pattern.ParseError{}}
}

func fileFailure(f *program.SourceFile, line int, msg string) FileResult {
	return FileResult{
		Patterns: []pattern.Pattern{},
		Errors: []pattern.ParseError{{
			FilePath:   f.RelPath,
			LineNumber: line,
			Message:    msg,
			Severity:   pattern.SeverityError,
		}},
	}
}
