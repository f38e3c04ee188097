package pipeline

import "github.com/mvp-joe/project-patterns/internal/pattern"

// ProgressReporter receives notifications during an analysis run.
// OnFileProcessed is called from concurrent per-file tasks; implementations
// must synchronize their own state.
type ProgressReporter interface {
	// OnDiscoveryComplete is called once the program is built.
	OnDiscoveryComplete(files, skipped int)

	// OnFileProcessingStart is called before per-file analysis begins.
	OnFileProcessingStart(totalFiles int)

	// OnFileProcessed is called after each file is analyzed.
	OnFileProcessed(fileName string)

	// OnComplete is called when the run finishes.
	OnComplete(stats pattern.ParseStats)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnDiscoveryComplete(files, skipped int) {}
func (n *NoOpProgressReporter) OnFileProcessingStart(totalFiles int)   {}
func (n *NoOpProgressReporter) OnFileProcessed(fileName string)        {}
func (n *NoOpProgressReporter) OnComplete(stats pattern.ParseStats)    {}
