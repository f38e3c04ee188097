package config

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/gobwas/glob"

	"github.com/mvp-joe/project-patterns/internal/program"
	"github.com/mvp-joe/project-patterns/internal/semantic"
)

var (
	// ErrInvalidInclude indicates an include glob that does not compile
	ErrInvalidInclude = errors.New("invalid include pattern")

	// ErrInvalidFileSize indicates a non-positive file size limit
	ErrInvalidFileSize = errors.New("invalid max file size")

	// ErrInvalidConcurrency indicates a negative concurrency bound
	ErrInvalidConcurrency = errors.New("invalid concurrency")

	// ErrInvalidCompiler indicates unsupported compiler options
	ErrInvalidCompiler = errors.New("invalid compiler options")

	// ErrInvalidHeuristics indicates semantic constants outside their ranges
	ErrInvalidHeuristics = errors.New("invalid semantic heuristics")

	// ErrInvalidWeights indicates quality weights that do not form a blend
	ErrInvalidWeights = errors.New("invalid quality weights")

	// ErrInvalidThreshold indicates a percentage outside 0-100
	ErrInvalidThreshold = errors.New("invalid quality threshold")

	// ErrInvalidFormat indicates an unsupported output format
	ErrInvalidFormat = errors.New("invalid output format")

	// ErrInvalidWatch indicates invalid watcher settings
	ErrInvalidWatch = errors.New("invalid watch settings")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateAnalysis(&cfg.Analysis); err != nil {
		errs = append(errs, err)
	}
	if err := validateCompiler(&cfg.Compiler); err != nil {
		errs = append(errs, err)
	}
	if err := validateSemantic(&cfg.Semantic); err != nil {
		errs = append(errs, err)
	}
	if err := validateQuality(&cfg.Quality); err != nil {
		errs = append(errs, err)
	}
	if err := validateOutput(&cfg.Output); err != nil {
		errs = append(errs, err)
	}
	if err := validateWatch(&cfg.Watch); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateAnalysis(cfg *AnalysisConfig) error {
	var errs []error

	for _, pattern := range cfg.Include {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidInclude, pattern, err))
		}
	}

	if cfg.MaxFileSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_file_size must be positive, got %d", ErrInvalidFileSize, cfg.MaxFileSize))
	}

	if cfg.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("%w: concurrency cannot be negative, got %d", ErrInvalidConcurrency, cfg.Concurrency))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateCompiler(cfg *program.CompilerOptions) error {
	switch strings.ToLower(cfg.JSX) {
	case program.JSXReact, program.JSXPreserve, program.JSXNone:
		return nil
	}
	return fmt.Errorf("%w: jsx must be 'react', 'preserve' or 'none', got '%s'", ErrInvalidCompiler, cfg.JSX)
}

func validateSemantic(cfg *semantic.Config) error {
	var errs []error

	if cfg.CouplingCap <= 0 {
		errs = append(errs, fmt.Errorf("%w: coupling_cap must be positive, got %v", ErrInvalidHeuristics, cfg.CouplingCap))
	}
	if cfg.CohesionFloor > cfg.CohesionBase {
		errs = append(errs, fmt.Errorf("%w: cohesion_floor (%v) exceeds cohesion_base (%v)", ErrInvalidHeuristics, cfg.CohesionFloor, cfg.CohesionBase))
	}
	if cfg.AbstractionMin > cfg.AbstractionMax {
		errs = append(errs, fmt.Errorf("%w: abstraction_min (%v) exceeds abstraction_max (%v)", ErrInvalidHeuristics, cfg.AbstractionMin, cfg.AbstractionMax))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateQuality(cfg *QualityConfig) error {
	var errs []error

	w := cfg.Scoring.Weights
	if w.Detection < 0 || w.TypeAccuracy < 0 || w.Semantic < 0 || w.Consistency < 0 {
		errs = append(errs, fmt.Errorf("%w: weights cannot be negative", ErrInvalidWeights))
	}
	if math.Abs(w.Sum()-1) > 0.001 {
		errs = append(errs, fmt.Errorf("%w: weights must sum to 1, got %.3f", ErrInvalidWeights, w.Sum()))
	}

	percentages := []struct {
		key   string
		value float64
	}{
		{"thresholds.detection", cfg.Scoring.Thresholds.Detection},
		{"thresholds.type_accuracy", cfg.Scoring.Thresholds.TypeAccuracy},
		{"thresholds.semantic", cfg.Scoring.Thresholds.Semantic},
		{"thresholds.consistency", cfg.Scoring.Thresholds.Consistency},
		{"high_band", cfg.Scoring.HighBand},
		{"medium_band", cfg.Scoring.MediumBand},
		{"filters.min_overall_quality", cfg.Filters.MinOverallQuality},
		{"filters.min_type_resolution_quality", cfg.Filters.MinTypeResolutionQuality},
		{"filters.min_semantic_quality", cfg.Filters.MinSemanticQuality},
		{"filters.min_pattern_detection_rate", cfg.Filters.MinPatternDetectionRate},
		{"filters.min_cross_file_consistency", cfg.Filters.MinCrossFileConsistency},
	}
	for _, p := range percentages {
		if p.value < 0 || p.value > 100 {
			errs = append(errs, fmt.Errorf("%w: %s must be between 0 and 100, got %v", ErrInvalidThreshold, p.key, p.value))
		}
	}
	if cfg.Scoring.MediumBand > cfg.Scoring.HighBand {
		errs = append(errs, fmt.Errorf("%w: medium_band (%v) exceeds high_band (%v)", ErrInvalidThreshold, cfg.Scoring.MediumBand, cfg.Scoring.HighBand))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateOutput(cfg *OutputConfig) error {
	switch strings.ToLower(cfg.Format) {
	case FormatJSON, FormatYAML:
		return nil
	}
	return fmt.Errorf("%w: must be 'json' or 'yaml', got '%s'", ErrInvalidFormat, cfg.Format)
}

func validateWatch(cfg *WatchConfig) error {
	var errs []error

	if cfg.DebounceMs < 0 {
		errs = append(errs, fmt.Errorf("%w: debounce_ms cannot be negative, got %d", ErrInvalidWatch, cfg.DebounceMs))
	}
	if cfg.CacheCapacity < 0 {
		errs = append(errs, fmt.Errorf("%w: cache_capacity cannot be negative, got %d", ErrInvalidWatch, cfg.CacheCapacity))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
