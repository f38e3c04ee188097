package config

import (
	"log/slog"

	"github.com/mvp-joe/project-patterns/internal/pipeline"
)

// ToPipelineOptions converts a Config to pipeline.Options. Progress reporting
// and caching are left to the caller.
func (c *Config) ToPipelineOptions(logger *slog.Logger) pipeline.Options {
	return pipeline.Options{
		MaxFileSize:    c.Analysis.MaxFileSize,
		SkipPatterns:   c.Analysis.SkipPatterns,
		Include:        c.Analysis.Include,
		QualityFilters: c.Quality.Filters,
		Concurrency:    c.Analysis.Concurrency,
		ExtraFiles:     c.Analysis.ExtraFiles,
		Compiler:       c.Compiler,
		AllowPartial:   c.Analysis.AllowPartial,
		Semantic:       c.Semantic,
		Quality:        c.Quality.Scoring,
		Logger:         logger,
	}
}
