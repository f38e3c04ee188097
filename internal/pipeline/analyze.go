package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/project-patterns/internal/pattern"
	"github.com/mvp-joe/project-patterns/internal/program"
	"github.com/mvp-joe/project-patterns/internal/quality"
)

// Analyze builds the program under root and runs the full pipeline over it.
//
// Invalid options are returned before any work starts. When the program
// cannot be built, Analyze returns an empty but well-formed result carrying
// one top-level ParseError together with an ErrProgramConstruction error.
func Analyze(ctx context.Context, root string, opts Options) (*pattern.Result, error) {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	prog, err := program.Build(ctx, root, opts.programOptions())
	if err != nil {
		opts.Logger.Error("program construction failed", "root", root, "error", err)
		return emptyResult(root, err, opts), fmt.Errorf("%w: %w", ErrProgramConstruction, err)
	}
	defer prog.Close()

	return run(ctx, prog, opts, start)
}

// Run analyzes an already-built program. The caller keeps ownership of prog.
func Run(ctx context.Context, prog *program.Program, opts Options) (*pattern.Result, error) {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return run(ctx, prog, opts, time.Now())
}

func run(ctx context.Context, prog *program.Program, opts Options, start time.Time) (*pattern.Result, error) {
	var memBefore runtime.MemStats
	runtime.ReadMemStats(&memBefore)

	logger := opts.Logger
	files := prog.Files()
	opts.Progress.OnDiscoveryComplete(len(files), prog.SkippedFiles())
	opts.Progress.OnFileProcessingStart(len(files))
	logger.Debug("analyzing files", "root", prog.Root(), "files", len(files), "skipped", prog.SkippedFiles())

	pl := NewPipeline(prog.Checker(), opts.Semantic, opts.AllowPartial, start)

	// Each task writes only its own slot; nothing is shared until the join.
	results := make([]FileResult, len(files))
	cached := make([]bool, len(files))

	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g := new(errgroup.Group)
	g.SetLimit(limit)
	for i, f := range files {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if r, ok := opts.Cache.Get(f); ok {
				results[i], cached[i] = r, true
			} else {
				results[i] = pl.ProcessFile(f)
			}
			opts.Progress.OnFileProcessed(f.RelPath)
			return nil
		})
	}
	// Tasks record failures in their slots and never return errors.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis cancelled: %w", err)
	}

	merged := merge(results)
	for i, f := range files {
		if !cached[i] {
			opts.Cache.Put(f, results[i])
		}
	}

	processed := 0
	for _, r := range results {
		if !r.failed() {
			processed++
		}
	}

	calc := quality.New(opts.Quality)
	patterns := quality.FilterRun(merged.Patterns, opts.QualityFilters, calc.Metrics(merged.Patterns))

	stats := pattern.ParseStats{
		TotalFiles:     len(files),
		ProcessedFiles: processed,
		SkippedFiles:   prog.SkippedFiles(),
		TotalPatterns:  len(patterns),
		ProcessingTime: time.Since(start).Milliseconds(),
		MemoryUsage:    memoryDeltaMB(&memBefore),
	}

	report := calc.CalculateWithStats(merged.Patterns, merged.Errors, stats)

	logger.Debug("analysis complete",
		"patterns", len(merged.Patterns),
		"emitted", len(patterns),
		"errors", len(merged.Errors),
		"overall_quality", report.Quality.OverallQuality,
		"duration_ms", stats.ProcessingTime)
	opts.Progress.OnComplete(stats)

	return &pattern.Result{
		Patterns:      patterns,
		Errors:        merged.Errors,
		Stats:         stats,
		QualityReport: report,
	}, nil
}

// merge concatenates per-file results in file order and drops repeated IDs.
func merge(results []FileResult) FileResult {
	out := FileResult{Patterns: []pattern.Pattern{}, Errors: []pattern.ParseError{}}
	seen := make(map[string]bool)
	for _, r := range results {
		for _, p := range r.Patterns {
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			out.Patterns = append(out.Patterns, p)
		}
		out.Errors = append(out.Errors, r.Errors...)
	}
	return out
}

func emptyResult(root string, cause error, opts Options) *pattern.Result {
	errs := []pattern.ParseError{{
		FilePath: root,
		Message:  cause.Error(),
		Severity: pattern.SeverityError,
	}}
	calc := quality.New(opts.Quality)
	return &pattern.Result{
		Patterns:      []pattern.Pattern{},
		Errors:        errs,
		QualityReport: calc.CalculateWithStats(nil, errs, pattern.ParseStats{}),
	}
}

func memoryDeltaMB(before *runtime.MemStats) float64 {
	var after runtime.MemStats
	runtime.ReadMemStats(&after)
	delta := float64(after.HeapAlloc) - float64(before.HeapAlloc)
	if delta < 0 {
		return 0
	}
	return float64(int64(delta/1024/1024*100)) / 100
}
