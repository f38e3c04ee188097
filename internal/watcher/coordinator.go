package watcher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mvp-joe/project-patterns/internal/pattern"
	"github.com/mvp-joe/project-patterns/internal/storage"
)

// Coordinator routes debounced file changes to the analyzer and keeps the
// latest inventory available in memory and, optionally, in the store.
type Coordinator struct {
	files    FileWatcher
	analyzer Analyzer
	saver    SnapshotSaver
	root     string
	logger   *slog.Logger
	onResult func(*pattern.Result)

	mu     sync.Mutex // serializes analysis runs
	latest *pattern.Result
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithSaver persists every successful run.
func WithSaver(saver SnapshotSaver, projectRoot string) CoordinatorOption {
	return func(c *Coordinator) {
		c.saver = saver
		c.root = projectRoot
	}
}

// WithResultHandler is called after every successful run.
func WithResultHandler(fn func(*pattern.Result)) CoordinatorOption {
	return func(c *Coordinator) {
		c.onResult = fn
	}
}

// WithCoordinatorLogger sets the logger used for run diagnostics.
func WithCoordinatorLogger(logger *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCoordinator creates a new watch coordinator.
func NewCoordinator(files FileWatcher, analyzer Analyzer, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		files:    files,
		analyzer: analyzer,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start runs the initial analysis, then re-analyzes on every batch of file
// changes. Blocks until ctx is cancelled.
func (c *Coordinator) Start(ctx context.Context) error {
	if _, err := c.analyze(ctx, nil); err != nil {
		c.logger.Warn("initial analysis failed", "error", err)
	}

	if err := c.files.Start(ctx, func(files []string) { c.handleFileChange(ctx, files) }); err != nil {
		return err
	}

	<-ctx.Done()
	if err := c.files.Stop(); err != nil {
		c.logger.Warn("file watcher stop failed", "error", err)
	}
	return nil
}

// Refresh re-analyzes immediately. File events arriving meanwhile are held
// back and delivered as one batch afterwards.
func (c *Coordinator) Refresh(ctx context.Context) (*pattern.Result, error) {
	c.files.Pause()
	defer c.files.Resume()
	return c.analyze(ctx, nil)
}

// Latest returns the most recent successful result, or nil before the first run.
func (c *Coordinator) Latest() *pattern.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest
}

// handleFileChange processes file change events from the file watcher.
func (c *Coordinator) handleFileChange(ctx context.Context, files []string) {
	if len(files) == 0 || ctx.Err() != nil {
		return
	}

	c.logger.Info("re-analyzing after file changes", "files", len(files))
	if _, err := c.analyze(ctx, files); err != nil {
		c.logger.Error("analysis failed", "error", err)
	}
}

func (c *Coordinator) analyze(ctx context.Context, changed []string) (*pattern.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	res, err := c.analyzer.Analyze(ctx, changed)
	if err != nil {
		return nil, err
	}
	c.latest = res

	c.logger.Info("analysis complete",
		"patterns", res.Stats.TotalPatterns,
		"files", res.Stats.ProcessedFiles,
		"errors", len(res.Errors),
		"quality", res.QualityReport.Quality.OverallQuality)

	if c.saver != nil {
		run := storage.Run{RunID: storage.NewRunID(), ProjectRoot: c.root, GeneratedAt: time.Now()}
		if err := c.saver.SaveResult(run, res); err != nil {
			c.logger.Error("failed to save snapshot", "error", err)
		}
	}
	if c.onResult != nil {
		c.onResult(res)
	}
	return res, nil
}
