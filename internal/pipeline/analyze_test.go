package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-patterns/internal/pattern"
	"github.com/mvp-joe/project-patterns/internal/program"
	"github.com/mvp-joe/project-patterns/internal/quality"
)

// Test Plan for Analyze:
// - Widget, useCounter, Props and connect scenarios produce the documented patterns
// - A file that fails to parse yields one error and does not affect siblings
// - An empty project yields a well-formed result with zero quality
// - A missing root yields an empty result and ErrProgramConstruction
// - Invalid options are rejected before any work
// - Skip patterns and the size limit exclude files; skipped files are counted
// - Two runs over unchanged sources agree on patterns and quality
// - Quality filters trim emitted patterns but not the report; detection and
//   consistency thresholds gate the whole run
// - A zero Compiler uses the defaults; an explicit AllowJS=false is kept
// - AllowPartial turns syntax errors into warnings
// - A shared cache serves unchanged files on the second run
// - Progress callbacks fire once per file

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func findPattern(t *testing.T, patterns []pattern.Pattern, name string) pattern.Pattern {
	t.Helper()
	for _, p := range patterns {
		if p.Name == name {
			return p
		}
	}
	require.Failf(t, "pattern not found", "no pattern named %q", name)
	return pattern.Pattern{}
}

func patternsIn(patterns []pattern.Pattern, file string) []pattern.Pattern {
	var out []pattern.Pattern
	for _, p := range patterns {
		if p.FilePath == file {
			out = append(out, p)
		}
	}
	return out
}

func TestAnalyze_Scenarios(t *testing.T) {
	t.Parallel()

	root := writeProject(t, map[string]string{
		"src/Widget.tsx":    "export const Widget = () => <div/>\n",
		"src/useCounter.ts": "export default function useCounter(init=0){ const [c,setC]=useState(init); return {c,inc:()=>setC(c+1)} }\n",
		"src/types.ts":      "interface Props { name: string; age?: number }\n",
		"src/Connected.tsx": "function BasicComponent() { return <span/> }\nexport default connect(mapState)(BasicComponent)\n",
	})

	res, err := Analyze(context.Background(), root, Options{})
	require.NoError(t, err)
	require.Empty(t, res.Errors)

	t.Run("widget", func(t *testing.T) {
		got := patternsIn(res.Patterns, "src/Widget.tsx")
		require.Len(t, got, 1)
		p := got[0]
		assert.Equal(t, "Widget", p.Name)
		assert.Equal(t, pattern.TypeComponent, p.Type)
		assert.Equal(t, pattern.PurposeUI, p.Metadata.Purpose)
		assert.Equal(t, []pattern.ExportInfo{{Type: pattern.ExportNamed, Name: "Widget"}}, p.Exports)
	})

	t.Run("custom hook", func(t *testing.T) {
		got := patternsIn(res.Patterns, "src/useCounter.ts")
		require.Len(t, got, 1)
		p := got[0]
		assert.Equal(t, "useCounter", p.Name)
		assert.Equal(t, pattern.TypeCustomHook, p.Type)
		assert.Equal(t, pattern.PurposeLogic, p.Metadata.Purpose)
		require.Len(t, p.Exports, 1)
		assert.Equal(t, pattern.ExportDefault, p.Exports[0].Type)
		require.Len(t, p.Metadata.Parameters, 1)
		assert.Equal(t, "init", p.Metadata.Parameters[0].Name)
		assert.Equal(t, "0", p.Metadata.Parameters[0].Default)
	})

	t.Run("interface", func(t *testing.T) {
		got := patternsIn(res.Patterns, "src/types.ts")
		require.Len(t, got, 1)
		p := got[0]
		assert.Equal(t, pattern.TypeInterface, p.Type)
		assert.Equal(t, map[string]string{"name": "string", "age": "number"}, p.Metadata.PropTypes)
		assert.Equal(t, pattern.PurposeData, p.Metadata.Purpose)
	})

	t.Run("connect wrapper", func(t *testing.T) {
		got := patternsIn(res.Patterns, "src/Connected.tsx")
		require.Len(t, got, 2)
		wrapped := got[1]
		assert.Equal(t, "BasicComponent", wrapped.Name)
		assert.Equal(t, pattern.TypeComponent, wrapped.Type)
		assert.Equal(t, []pattern.ExportInfo{{Type: pattern.ExportDefault, Name: "default"}}, wrapped.Exports)
		assert.Empty(t, got[0].Exports)
	})

	t.Run("stats", func(t *testing.T) {
		assert.Equal(t, 4, res.Stats.TotalFiles)
		assert.Equal(t, 4, res.Stats.ProcessedFiles)
		assert.Equal(t, len(res.Patterns), res.Stats.TotalPatterns)
		assert.Equal(t, 100.0, res.QualityReport.Performance.Efficiency)
	})

	t.Run("invariants", func(t *testing.T) {
		ids := make(map[string]bool)
		for _, p := range res.Patterns {
			assert.False(t, ids[p.ID], "duplicate id %s", p.ID)
			ids[p.ID] = true
			assert.GreaterOrEqual(t, p.Metadata.Complexity, 1)
		}
		q := res.QualityReport.Quality
		for _, v := range []float64{q.PatternDetectionRate, q.TypeResolutionAccuracy, q.SemanticAnalysisQuality, q.CrossFileConsistency, q.OverallQuality} {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 100.0)
		}
	})
}

func TestAnalyze_ParseFailureIsIsolated(t *testing.T) {
	t.Parallel()

	root := writeProject(t, map[string]string{
		"a/Good.tsx":  "export function Good() { return <p/> }\n",
		"b/Broken.ts": "export function broken( {\n  return 1 +\n",
	})

	res, err := Analyze(context.Background(), root, Options{})
	require.NoError(t, err)

	assert.Empty(t, patternsIn(res.Patterns, "b/Broken.ts"))
	assert.Len(t, patternsIn(res.Patterns, "a/Good.tsx"), 1)

	require.Len(t, res.Errors, 1)
	assert.Equal(t, "b/Broken.ts", res.Errors[0].FilePath)
	assert.Equal(t, pattern.SeverityError, res.Errors[0].Severity)
	assert.Positive(t, res.Errors[0].LineNumber)

	assert.Equal(t, 2, res.Stats.TotalFiles)
	assert.Equal(t, 1, res.Stats.ProcessedFiles)
	assert.Contains(t, strings.Join(res.QualityReport.Recommendations, "\n"), "1 file-level parse errors")
}

func TestAnalyze_AllowPartial(t *testing.T) {
	t.Parallel()

	root := writeProject(t, map[string]string{
		"Partial.tsx": "export const Ok = () => <div/>\nconst broken = (\n",
	})

	res, err := Analyze(context.Background(), root, Options{AllowPartial: true})
	require.NoError(t, err)

	require.Len(t, res.Errors, 1)
	assert.Equal(t, pattern.SeverityWarning, res.Errors[0].Severity)
	assert.Equal(t, 1, res.Stats.ProcessedFiles)
	findPattern(t, res.Patterns, "Ok")
}

func TestAnalyze_EmptyProject(t *testing.T) {
	t.Parallel()

	res, err := Analyze(context.Background(), t.TempDir(), Options{})
	require.NoError(t, err)

	assert.Empty(t, res.Patterns)
	assert.NotNil(t, res.Patterns)
	assert.Empty(t, res.Errors)
	assert.Equal(t, pattern.QualityMetrics{}, res.QualityReport.Quality)
	assert.Zero(t, res.Stats.TotalFiles)
}

func TestAnalyze_ProgramConstructionFailure(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "does-not-exist")
	res, err := Analyze(context.Background(), missing, Options{})
	require.ErrorIs(t, err, ErrProgramConstruction)

	require.NotNil(t, res)
	assert.Empty(t, res.Patterns)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, pattern.SeverityError, res.Errors[0].Severity)
	assert.Equal(t, pattern.ParseStats{}, res.Stats)
	assert.Equal(t, pattern.QualityMetrics{}, res.QualityReport.Quality)
}

func TestAnalyze_InvalidOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"negative size", Options{MaxFileSize: -1}, "max file size"},
		{"negative concurrency", Options{Concurrency: -2}, "concurrency"},
		{"filter out of range", Options{QualityFilters: quality.Filters{MinOverallQuality: 150}}, "min overall quality"},
		{"consistency gate out of range", Options{QualityFilters: quality.Filters{MinCrossFileConsistency: -1}}, "min cross-file consistency"},
		{"bad jsx", Options{Compiler: func() Options { o := DefaultOptions(); o.Compiler.JSX = "vue"; return o }().Compiler}, "jsx"},
		{"weights", Options{Quality: quality.Config{Weights: quality.Weights{Detection: 0.9, Semantic: 0.9}}}, "sum to 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res, err := Analyze(context.Background(), t.TempDir(), tt.opts)
			require.ErrorIs(t, err, ErrInvalidOptions)
			assert.Contains(t, err.Error(), tt.want)
			assert.Nil(t, res)
		})
	}
}

func TestAnalyze_SkipAndSizeLimit(t *testing.T) {
	t.Parallel()

	root := writeProject(t, map[string]string{
		"src/keep.ts":               "export function keep() { return 1 }\n",
		"node_modules/lib/index.ts": "export function lib() { return 1 }\n",
		"generated/big.ts":          "export const BIG_TABLE = [" + strings.Repeat("1,", 600) + "1]\n",
		"src/types.d.ts":            "declare function ambient(): void\n",
		"vendor/third.ts":           "export function third() { return 1 }\n",
	})

	res, err := Analyze(context.Background(), root, Options{
		MaxFileSize:  1024,
		SkipPatterns: []string{"node_modules", "vendor"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Stats.TotalFiles)
	assert.Equal(t, 1, res.Stats.SkippedFiles)
	findPattern(t, res.Patterns, "keep")
}

func TestAnalyze_Idempotent(t *testing.T) {
	t.Parallel()

	root := writeProject(t, map[string]string{
		"Card.tsx":  "import { useState } from 'react'\nexport function Card({ title }: { title: string }) {\n  const [open, setOpen] = useState(false)\n  return open ? <h1>{title}</h1> : null\n}\n",
		"format.ts": "export const formatName = (first: string, last: string): string => `${first} ${last}`\nexport const MAX_ITEMS = 10\n",
	})

	first, err := Analyze(context.Background(), root, Options{})
	require.NoError(t, err)
	second, err := Analyze(context.Background(), root, Options{})
	require.NoError(t, err)

	require.Len(t, second.Patterns, len(first.Patterns))
	for i := range first.Patterns {
		a, b := first.Patterns[i], second.Patterns[i]
		a.Metadata.LastModified = time.Time{}
		b.Metadata.LastModified = time.Time{}
		assert.Equal(t, a, b)
	}
	assert.Equal(t, first.QualityReport.Quality, second.QualityReport.Quality)
}

func TestAnalyze_QualityFilters(t *testing.T) {
	t.Parallel()

	root := writeProject(t, map[string]string{
		"mixed.ts": "export interface Plain { a: string }\nexport function typed<T>(value: T): T { return value }\n",
	})

	all, err := Analyze(context.Background(), root, Options{})
	require.NoError(t, err)
	require.Len(t, all.Patterns, 2)

	filtered, err := Analyze(context.Background(), root, Options{
		QualityFilters: quality.Filters{MinTypeResolutionQuality: 90},
	})
	require.NoError(t, err)

	require.Len(t, filtered.Patterns, 1)
	assert.Equal(t, "typed", filtered.Patterns[0].Name)
	assert.Equal(t, 1, filtered.Stats.TotalPatterns)
	assert.Equal(t, all.QualityReport.Quality, filtered.QualityReport.Quality)

	// PascalCase and camelCase in one file keep consistency below 100
	gated, err := Analyze(context.Background(), root, Options{
		QualityFilters: quality.Filters{MinCrossFileConsistency: 100},
	})
	require.NoError(t, err)
	assert.Empty(t, gated.Patterns)
	assert.NotNil(t, gated.Patterns)
	assert.Equal(t, all.QualityReport.Quality, gated.QualityReport.Quality)

	detected, err := Analyze(context.Background(), root, Options{
		QualityFilters: quality.Filters{MinPatternDetectionRate: 100},
	})
	require.NoError(t, err)
	assert.Len(t, detected.Patterns, 2)
}

func TestAnalyze_CacheReuse(t *testing.T) {
	t.Parallel()

	root := writeProject(t, map[string]string{
		"one.ts": "export function one() { return 1 }\n",
		"two.ts": "export function two() { return 'two' }\n",
	})

	cache, err := NewResultCache(16)
	require.NoError(t, err)
	t.Cleanup(cache.Close)

	first, err := Analyze(context.Background(), root, Options{Cache: cache})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "two.ts"), []byte("export function three() { return true }\n"), 0o644))

	second, err := Analyze(context.Background(), root, Options{Cache: cache})
	require.NoError(t, err)

	assert.Equal(t, findPattern(t, first.Patterns, "one").ID, findPattern(t, second.Patterns, "one").ID)
	findPattern(t, second.Patterns, "three")
	for _, p := range second.Patterns {
		assert.NotEqual(t, "two", p.Name)
	}
	assert.Positive(t, cache.HitRatio())
}

type countingReporter struct {
	NoOpProgressReporter
	mu        sync.Mutex
	processed []string
	completed int
}

func (r *countingReporter) OnFileProcessed(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processed = append(r.processed, name)
}

func (r *countingReporter) OnComplete(pattern.ParseStats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed++
}

func TestAnalyze_Progress(t *testing.T) {
	t.Parallel()

	root := writeProject(t, map[string]string{
		"a.ts": "export function a() {}\n",
		"b.ts": "export function b() {}\n",
		"c.ts": "export function c() {}\n",
	})

	reporter := &countingReporter{}
	_, err := Analyze(context.Background(), root, Options{Progress: reporter, Concurrency: 2})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"a.ts", "b.ts", "c.ts"}, reporter.processed)
	assert.Equal(t, 1, reporter.completed)
}

func TestAnalyze_Cancelled(t *testing.T) {
	t.Parallel()

	root := writeProject(t, map[string]string{"a.ts": "export function a() {}\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Analyze(ctx, root, Options{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestOptions_CompilerZeroValueUsesDefaults(t *testing.T) {
	t.Parallel()

	assert.Equal(t, program.DefaultCompilerOptions(), Options{}.withDefaults().Compiler)

	opts := DefaultOptions()
	opts.Compiler.AllowJS = false
	assert.False(t, opts.withDefaults().Compiler.AllowJS)

	root := writeProject(t, map[string]string{
		"a.ts": "export function a() { return 1 }\n",
		"b.js": "export function b() { return 2 }\n",
	})
	res, err := Analyze(context.Background(), root, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.TotalFiles)
}
