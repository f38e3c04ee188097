package watcher

import (
	"context"

	"github.com/mvp-joe/project-patterns/internal/pattern"
	"github.com/mvp-joe/project-patterns/internal/pipeline"
)

// ProjectAnalyzer re-runs the pipeline over one project root. Unchanged
// files are served from a result cache shared across runs.
type ProjectAnalyzer struct {
	root      string
	opts      pipeline.Options
	ownsCache bool
}

// NewProjectAnalyzer creates an analyzer for root. If opts carries no cache,
// one with cacheCapacity entries is created and owned by the analyzer.
func NewProjectAnalyzer(root string, opts pipeline.Options, cacheCapacity int) (*ProjectAnalyzer, error) {
	a := &ProjectAnalyzer{root: root, opts: opts}
	if opts.Cache == nil {
		if cacheCapacity <= 0 {
			cacheCapacity = pipeline.DefaultCacheCapacity
		}
		cache, err := pipeline.NewResultCache(cacheCapacity)
		if err != nil {
			return nil, err
		}
		a.opts.Cache = cache
		a.ownsCache = true
	}
	return a, nil
}

// Analyze runs the full pipeline. The changed hint only feeds logging; the
// content-hash cache makes unchanged files free.
func (a *ProjectAnalyzer) Analyze(ctx context.Context, changed []string) (*pattern.Result, error) {
	if a.opts.Logger != nil && len(changed) > 0 {
		a.opts.Logger.Debug("changed files", "files", changed)
	}
	return pipeline.Analyze(ctx, a.root, a.opts)
}

// CacheHitRatio reports the share of files served from the cache so far.
func (a *ProjectAnalyzer) CacheHitRatio() float64 {
	return a.opts.Cache.HitRatio()
}

// Close releases the cache if the analyzer created it.
func (a *ProjectAnalyzer) Close() {
	if a.ownsCache {
		a.opts.Cache.Close()
	}
}
