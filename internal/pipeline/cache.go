package pipeline

import (
	"fmt"

	"github.com/maypok86/otter"

	"github.com/mvp-joe/project-patterns/internal/pattern"
	"github.com/mvp-joe/project-patterns/internal/program"
)

// DefaultCacheCapacity is the number of file results kept by NewResultCache
// when no capacity is given.
const DefaultCacheCapacity = 10_000

// FileResult is the output of the per-file pipeline.
type FileResult struct {
	Patterns []pattern.Pattern
	Errors   []pattern.ParseError
}

// failed reports whether the file produced an error-severity ParseError.
func (r FileResult) failed() bool {
	for _, e := range r.Errors {
		if e.Severity == pattern.SeverityError {
			return true
		}
	}
	return false
}

func (r FileResult) clone() FileResult {
	out := FileResult{
		Patterns: make([]pattern.Pattern, len(r.Patterns)),
		Errors:   append([]pattern.ParseError{}, r.Errors...),
	}
	for i, p := range r.Patterns {
		out.Patterns[i] = p.Clone()
	}
	return out
}

// ResultCache keeps per-file results keyed by relative path and content hash,
// so unchanged files are not re-analyzed by long-lived callers such as the
// watcher and the MCP server. It is safe for concurrent use.
type ResultCache struct {
	cache otter.Cache[string, FileResult]
}

// NewResultCache creates a cache holding up to capacity file results.
func NewResultCache(capacity int) (*ResultCache, error) {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	cache, err := otter.MustBuilder[string, FileResult](capacity).
		CollectStats().
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create result cache: %w", err)
	}
	return &ResultCache{cache: cache}, nil
}

func cacheKey(f *program.SourceFile) string {
	return f.RelPath + "@" + f.ContentHash
}

// Get returns a copy of the cached result for f. A nil cache never hits.
func (c *ResultCache) Get(f *program.SourceFile) (FileResult, bool) {
	if c == nil || f.ContentHash == "" {
		return FileResult{}, false
	}
	r, ok := c.cache.Get(cacheKey(f))
	if !ok {
		return FileResult{}, false
	}
	return r.clone(), true
}

// Put stores the result for f. Failed results are not cached.
func (c *ResultCache) Put(f *program.SourceFile, r FileResult) {
	if c == nil || f.ContentHash == "" || r.failed() {
		return
	}
	c.cache.Set(cacheKey(f), r.clone())
}

// HitRatio returns the share of lookups served from the cache.
func (c *ResultCache) HitRatio() float64 {
	if c == nil {
		return 0
	}
	return c.cache.Stats().Ratio()
}

// Close releases the cache's background resources.
func (c *ResultCache) Close() {
	if c != nil {
		c.cache.Close()
	}
}
