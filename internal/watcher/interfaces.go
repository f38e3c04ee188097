package watcher

import (
	"context"

	"github.com/mvp-joe/project-patterns/internal/pattern"
	"github.com/mvp-joe/project-patterns/internal/storage"
)

// FileWatcher monitors source files for changes with debouncing and pause/resume support.
type FileWatcher interface {
	// Start begins watching source directories, calling callback with debounced file changes.
	Start(ctx context.Context, callback func(files []string)) error

	// Stop stops the file watcher and cleans up resources.
	Stop() error

	// Pause stops firing callbacks but continues accumulating events.
	Pause()

	// Resume resumes firing callbacks. If events accumulated during pause, fires immediately.
	Resume()
}

// Analyzer produces a fresh inventory of the watched project.
type Analyzer interface {
	// Analyze re-runs the pipeline. changed lists the files that triggered
	// the run and is empty for the initial analysis.
	Analyze(ctx context.Context, changed []string) (*pattern.Result, error)
}

// SnapshotSaver persists the latest inventory.
type SnapshotSaver interface {
	SaveResult(run storage.Run, res *pattern.Result) error
}
