package pipeline

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/mvp-joe/project-patterns/internal/program"
	"github.com/mvp-joe/project-patterns/internal/quality"
	"github.com/mvp-joe/project-patterns/internal/semantic"
)

var (
	// ErrInvalidOptions indicates the run was rejected before any work started.
	ErrInvalidOptions = errors.New("invalid analysis options")

	// ErrProgramConstruction indicates the program could not be built.
	ErrProgramConstruction = errors.New("program construction failed")
)

// Options configures one analysis run.
type Options struct {
	// MaxFileSize in bytes; larger files are skipped. Zero uses the default.
	MaxFileSize int64
	// SkipPatterns are path substrings to exclude. Nil uses the defaults.
	SkipPatterns []string
	// Include globs relative to the root. Nil uses the defaults.
	Include []string
	// Verbose enables debug narration when no Logger is supplied.
	Verbose        bool
	QualityFilters quality.Filters
	// Concurrency bounds parallel per-file work. Zero means GOMAXPROCS.
	Concurrency int
	// ExtraFiles are test files analyzed even outside the root.
	ExtraFiles []string
	// Compiler is replaced by program.DefaultCompilerOptions only when it is
	// the zero value. Explicit flags such as AllowJS=false need a non-zero
	// struct, e.g. DefaultOptions().Compiler with AllowJS cleared.
	Compiler program.CompilerOptions
	// AllowPartial analyzes files with syntax errors and reports a warning.
	AllowPartial bool
	Semantic     semantic.Config
	Quality      quality.Config

	Logger   *slog.Logger
	Progress ProgressReporter
	// Cache reuses per-file results across runs when content is unchanged.
	Cache *ResultCache
}

// DefaultOptions returns options populated with every documented default.
func DefaultOptions() Options {
	return Options{
		MaxFileSize:  program.DefaultMaxFileSize,
		SkipPatterns: append([]string(nil), program.DefaultSkipPatterns...),
		Include:      append([]string(nil), program.DefaultInclude...),
		Compiler:     program.DefaultCompilerOptions(),
		Semantic:     semantic.DefaultConfig(),
		Quality:      quality.DefaultConfig(),
	}
}

// withDefaults fills zero-valued fields so callers may pass a partial Options.
func (o Options) withDefaults() Options {
	if o.MaxFileSize == 0 {
		o.MaxFileSize = program.DefaultMaxFileSize
	}
	if o.SkipPatterns == nil {
		o.SkipPatterns = append([]string(nil), program.DefaultSkipPatterns...)
	}
	if o.Include == nil {
		o.Include = append([]string(nil), program.DefaultInclude...)
	}
	if o.Compiler == (program.CompilerOptions{}) {
		o.Compiler = program.DefaultCompilerOptions()
	}
	if o.Semantic.StateHooks == nil && o.Semantic.CouplingCap == 0 {
		o.Semantic = semantic.DefaultConfig()
	}
	if o.Quality.Weights.Sum() == 0 {
		o.Quality = quality.DefaultConfig()
	}
	if o.Logger == nil {
		o.Logger = newLogger(o.Verbose)
	}
	if o.Progress == nil {
		o.Progress = &NoOpProgressReporter{}
	}
	return o
}

func newLogger(verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Validate checks the options for values that would make the run meaningless.
func (o Options) Validate() error {
	var errs []error

	if o.MaxFileSize < 0 {
		errs = append(errs, fmt.Errorf("max file size must not be negative, got %d", o.MaxFileSize))
	}
	if o.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("concurrency must not be negative, got %d", o.Concurrency))
	}
	for _, s := range o.SkipPatterns {
		if strings.TrimSpace(s) == "" {
			errs = append(errs, errors.New("skip patterns must not contain empty entries"))
			break
		}
	}

	switch o.Compiler.JSX {
	case "", program.JSXReact, program.JSXPreserve, program.JSXNone:
	default:
		errs = append(errs, fmt.Errorf("compiler jsx must be one of react, preserve, none, got %q", o.Compiler.JSX))
	}

	f := o.QualityFilters
	thresholds := []struct {
		name  string
		value float64
	}{
		{"min overall quality", f.MinOverallQuality},
		{"min type resolution quality", f.MinTypeResolutionQuality},
		{"min semantic quality", f.MinSemanticQuality},
		{"min pattern detection rate", f.MinPatternDetectionRate},
		{"min cross-file consistency", f.MinCrossFileConsistency},
	}
	for _, th := range thresholds {
		if th.value < 0 || th.value > 100 {
			errs = append(errs, fmt.Errorf("%s must be between 0 and 100, got %v", th.name, th.value))
		}
	}

	w := o.Quality.Weights
	if w.Detection < 0 || w.TypeAccuracy < 0 || w.Semantic < 0 || w.Consistency < 0 {
		errs = append(errs, errors.New("quality weights must not be negative"))
	}
	if sum := w.Sum(); sum != 0 && math.Abs(sum-1) > 0.001 {
		errs = append(errs, fmt.Errorf("quality weights must sum to 1, got %.3f", sum))
	}
	if o.Quality.MediumBand > o.Quality.HighBand {
		errs = append(errs, fmt.Errorf("medium band (%v) must not exceed high band (%v)", o.Quality.MediumBand, o.Quality.HighBand))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, joinErrors(errs))
	}
	return nil
}

func (o Options) programOptions() program.Options {
	return program.Options{
		Include:      o.Include,
		SkipPatterns: o.SkipPatterns,
		MaxFileSize:  o.MaxFileSize,
		ExtraFiles:   o.ExtraFiles,
		Compiler:     o.Compiler,
		Concurrency:  o.Concurrency,
		Logger:       o.Logger,
	}
}

// joinErrors combines multiple errors into a single error message.
func joinErrors(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}

	msg := "validation failed:"
	for _, err := range errs {
		msg += "\n  - " + err.Error()
	}
	return errors.New(msg)
}
