// Package config loads project configuration for patterns.
//
// Configuration Hierarchy (highest to lowest priority):
//  1. Environment variables (PATTERNS_*)
//  2. Project config (.patterns/config.yml)
//  3. Built-in defaults
//
// Nested fields map to underscored environment variables, e.g.
// PATTERNS_ANALYSIS_MAX_FILE_SIZE for analysis.max_file_size.
package config

import (
	"github.com/mvp-joe/project-patterns/internal/program"
	"github.com/mvp-joe/project-patterns/internal/quality"
	"github.com/mvp-joe/project-patterns/internal/semantic"
)

// Config represents the complete patterns configuration.
type Config struct {
	Analysis AnalysisConfig          `yaml:"analysis" mapstructure:"analysis"`
	Compiler program.CompilerOptions `yaml:"compiler" mapstructure:"compiler"`
	Semantic semantic.Config         `yaml:"semantic" mapstructure:"semantic"`
	Quality  QualityConfig           `yaml:"quality" mapstructure:"quality"`
	Output   OutputConfig            `yaml:"output" mapstructure:"output"`
	Storage  StorageConfig           `yaml:"storage" mapstructure:"storage"`
	Watch    WatchConfig             `yaml:"watch" mapstructure:"watch"`
}

// AnalysisConfig selects the files to analyze.
type AnalysisConfig struct {
	Include      []string `yaml:"include" mapstructure:"include"`             // glob patterns relative to the root
	SkipPatterns []string `yaml:"skip_patterns" mapstructure:"skip_patterns"` // path substrings to exclude
	MaxFileSize  int64    `yaml:"max_file_size" mapstructure:"max_file_size"` // bytes
	Concurrency  int      `yaml:"concurrency" mapstructure:"concurrency"`     // 0 means GOMAXPROCS
	AllowPartial bool     `yaml:"allow_partial" mapstructure:"allow_partial"` // analyze files with syntax errors
	ExtraFiles   []string `yaml:"extra_files" mapstructure:"extra_files"`     // test files outside the root
}

// QualityConfig holds scoring constants and the optional post-filter.
type QualityConfig struct {
	Scoring quality.Config  `yaml:"scoring" mapstructure:"scoring"`
	Filters quality.Filters `yaml:"filters" mapstructure:"filters"`
}

// OutputConfig controls where analyze writes its report.
type OutputConfig struct {
	Path   string `yaml:"path" mapstructure:"path"`     // "-" writes to stdout
	Format string `yaml:"format" mapstructure:"format"` // "json" or "yaml"
}

// StorageConfig controls the SQLite snapshot store.
type StorageConfig struct {
	Path    string `yaml:"path" mapstructure:"path"`       // empty disables the store
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"` // write a snapshot after each run
}

// WatchConfig controls incremental re-analysis.
type WatchConfig struct {
	DebounceMs    int `yaml:"debounce_ms" mapstructure:"debounce_ms"`
	CacheCapacity int `yaml:"cache_capacity" mapstructure:"cache_capacity"`
}

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Include:      append([]string(nil), program.DefaultInclude...),
			SkipPatterns: append([]string(nil), program.DefaultSkipPatterns...),
			MaxFileSize:  program.DefaultMaxFileSize,
			Concurrency:  0,
			AllowPartial: false,
			ExtraFiles:   []string{},
		},
		Compiler: program.DefaultCompilerOptions(),
		Semantic: semantic.DefaultConfig(),
		Quality: QualityConfig{
			Scoring: quality.DefaultConfig(),
		},
		Output: OutputConfig{
			Path:   "ast-patterns.json",
			Format: FormatJSON,
		},
		Storage: StorageConfig{
			Path:    ".patterns/patterns.db",
			Enabled: false,
		},
		Watch: WatchConfig{
			DebounceMs:    500,
			CacheCapacity: 10_000,
		},
	}
}
