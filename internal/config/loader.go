package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DirName is the project-local configuration directory.
const DirName = ".patterns"

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (PATTERNS_*)
// 2. Config file (.patterns/config.yml or .patterns/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(l.rootDir, DirName))

	v.SetEnvPrefix("PATTERNS")
	v.AutomaticEnv()
	// PATTERNS_ANALYSIS_MAX_FILE_SIZE -> analysis.max_file_size
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// bindEnvVars binds the scalar keys that may be overridden from the
// environment. Lists are configured through the file only.
func bindEnvVars(v *viper.Viper) {
	// Analysis
	v.BindEnv("analysis.max_file_size")
	v.BindEnv("analysis.concurrency")
	v.BindEnv("analysis.allow_partial")

	// Compiler
	v.BindEnv("compiler.target")
	v.BindEnv("compiler.module")
	v.BindEnv("compiler.jsx")
	v.BindEnv("compiler.allow_js")
	v.BindEnv("compiler.strict")

	// Quality
	v.BindEnv("quality.filters.min_overall_quality")
	v.BindEnv("quality.filters.min_type_resolution_quality")
	v.BindEnv("quality.filters.min_semantic_quality")
	v.BindEnv("quality.filters.min_pattern_detection_rate")
	v.BindEnv("quality.filters.min_cross_file_consistency")
	v.BindEnv("quality.filters.include_low_quality")

	// Output, storage, watch
	v.BindEnv("output.path")
	v.BindEnv("output.format")
	v.BindEnv("storage.path")
	v.BindEnv("storage.enabled")
	v.BindEnv("watch.debounce_ms")
	v.BindEnv("watch.cache_capacity")
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	// Analysis defaults
	v.SetDefault("analysis.include", defaults.Analysis.Include)
	v.SetDefault("analysis.skip_patterns", defaults.Analysis.SkipPatterns)
	v.SetDefault("analysis.max_file_size", defaults.Analysis.MaxFileSize)
	v.SetDefault("analysis.concurrency", defaults.Analysis.Concurrency)
	v.SetDefault("analysis.allow_partial", defaults.Analysis.AllowPartial)
	v.SetDefault("analysis.extra_files", defaults.Analysis.ExtraFiles)

	// Compiler defaults
	v.SetDefault("compiler.target", defaults.Compiler.Target)
	v.SetDefault("compiler.module", defaults.Compiler.Module)
	v.SetDefault("compiler.jsx", defaults.Compiler.JSX)
	v.SetDefault("compiler.allow_js", defaults.Compiler.AllowJS)
	v.SetDefault("compiler.strict", defaults.Compiler.Strict)

	// Semantic heuristics
	s := defaults.Semantic
	v.SetDefault("semantic.state_hooks", s.StateHooks)
	v.SetDefault("semantic.builtin_prefixes", s.BuiltinPrefixes)
	v.SetDefault("semantic.import_weight", s.ImportWeight)
	v.SetDefault("semantic.call_weight", s.CallWeight)
	v.SetDefault("semantic.property_access_weight", s.PropertyAccessWeight)
	v.SetDefault("semantic.coupling_cap", s.CouplingCap)
	v.SetDefault("semantic.cohesion_base", s.CohesionBase)
	v.SetDefault("semantic.return_penalty", s.ReturnPenalty)
	v.SetDefault("semantic.binary_penalty", s.BinaryPenalty)
	v.SetDefault("semantic.branch_penalty", s.BranchPenalty)
	v.SetDefault("semantic.cohesion_floor", s.CohesionFloor)
	v.SetDefault("semantic.abstraction_base", s.AbstractionBase)
	v.SetDefault("semantic.generic_bonus", s.GenericBonus)
	v.SetDefault("semantic.heritage_bonus", s.HeritageBonus)
	v.SetDefault("semantic.abstract_method_bonus", s.AbstractMethodBonus)
	v.SetDefault("semantic.abstraction_min", s.AbstractionMin)
	v.SetDefault("semantic.abstraction_max", s.AbstractionMax)

	// Quality scoring
	q := defaults.Quality.Scoring
	v.SetDefault("quality.scoring.weights.detection", q.Weights.Detection)
	v.SetDefault("quality.scoring.weights.type_accuracy", q.Weights.TypeAccuracy)
	v.SetDefault("quality.scoring.weights.semantic", q.Weights.Semantic)
	v.SetDefault("quality.scoring.weights.consistency", q.Weights.Consistency)
	v.SetDefault("quality.scoring.thresholds.detection", q.Thresholds.Detection)
	v.SetDefault("quality.scoring.thresholds.type_accuracy", q.Thresholds.TypeAccuracy)
	v.SetDefault("quality.scoring.thresholds.semantic", q.Thresholds.Semantic)
	v.SetDefault("quality.scoring.thresholds.consistency", q.Thresholds.Consistency)
	v.SetDefault("quality.scoring.high_band", q.HighBand)
	v.SetDefault("quality.scoring.medium_band", q.MediumBand)
	v.SetDefault("quality.scoring.structure_penalty", q.StructurePenalty)

	// Quality filters are off unless configured
	v.SetDefault("quality.filters.min_overall_quality", 0)
	v.SetDefault("quality.filters.min_type_resolution_quality", 0)
	v.SetDefault("quality.filters.min_semantic_quality", 0)
	v.SetDefault("quality.filters.min_pattern_detection_rate", 0)
	v.SetDefault("quality.filters.min_cross_file_consistency", 0)
	v.SetDefault("quality.filters.include_low_quality", false)

	// Output, storage, watch
	v.SetDefault("output.path", defaults.Output.Path)
	v.SetDefault("output.format", defaults.Output.Format)
	v.SetDefault("storage.path", defaults.Storage.Path)
	v.SetDefault("storage.enabled", defaults.Storage.Enabled)
	v.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMs)
	v.SetDefault("watch.cache_capacity", defaults.Watch.CacheCapacity)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
