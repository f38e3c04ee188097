package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-patterns/internal/config"
	"github.com/mvp-joe/project-patterns/internal/pattern"
	"github.com/mvp-joe/project-patterns/internal/watcher"
)

var watchStore string

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Re-analyze the project whenever source files change",
	Long: `Watch runs an initial analysis and then re-analyzes the project after every
batch of source file changes. Unchanged files are served from an in-memory
cache. When storage is enabled, each run replaces the saved snapshot so that
'patterns query' always sees the latest inventory.

Examples:
  # Watch the current directory and keep .patterns/patterns.db up to date
  patterns watch --store .patterns/patterns.db
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchStore, "store", "", "Save snapshots to this SQLite database")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, err := projectRoot(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("store") {
		cfg.Storage.Path = watchStore
		cfg.Storage.Enabled = watchStore != ""
	}

	out := cmd.ErrOrStderr()
	logger := newLogger(out, verbose)
	ws, err := newWatchSession(root, cfg, logger, func(res *pattern.Result) { printRunLine(out, res) })
	if err != nil {
		return err
	}
	defer ws.Close()

	fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", root)
	if err := ws.coordinator.Start(ctx); err != nil {
		return fmt.Errorf("watch mode failed: %w", err)
	}
	fmt.Fprintln(out, "Watch mode stopped")
	return nil
}

// watchSession bundles the resources behind a running coordinator.
type watchSession struct {
	coordinator *watcher.Coordinator
	analyzer    *watcher.ProjectAnalyzer
	closers     []func() error
}

// newWatchSession wires the file watcher, analyzer and optional store for root.
func newWatchSession(root string, cfg *config.Config, logger *slog.Logger, onResult func(*pattern.Result)) (*watchSession, error) {
	analyzer, err := watcher.NewProjectAnalyzer(root, cfg.ToPipelineOptions(logger), cfg.Watch.CacheCapacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create analyzer: %w", err)
	}
	ws := &watchSession{analyzer: analyzer}

	files, err := watcher.NewFileWatcher([]string{root}, watcher.SourceExtensions,
		watcher.WithDebounce(time.Duration(cfg.Watch.DebounceMs)*time.Millisecond),
		watcher.WithSkipPatterns(cfg.Analysis.SkipPatterns),
		watcher.WithLogger(logger),
	)
	if err != nil {
		ws.Close()
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	ws.closers = append(ws.closers, files.Stop)

	opts := []watcher.CoordinatorOption{
		watcher.WithCoordinatorLogger(logger),
		watcher.WithResultHandler(onResult),
	}
	store, err := openStore(root, cfg)
	if err != nil {
		ws.Close()
		return nil, err
	}
	if store != nil {
		ws.closers = append(ws.closers, store.Close)
		opts = append(opts, watcher.WithSaver(store, root))
	}

	ws.coordinator = watcher.NewCoordinator(files, analyzer, opts...)
	return ws, nil
}

// Close releases every resource in reverse order of acquisition.
func (ws *watchSession) Close() {
	for i := len(ws.closers) - 1; i >= 0; i-- {
		ws.closers[i]()
	}
	ws.analyzer.Close()
}

// printRunLine writes a one-line result of a watch run.
func printRunLine(w io.Writer, res *pattern.Result) {
	green := color.New(color.FgGreen).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()
	fmt.Fprintf(w, "%s %s patterns, %s errors, quality %.1f%% %s\n",
		green("✓"),
		formatNumber(res.Stats.TotalPatterns),
		formatNumber(len(res.Errors)),
		res.QualityReport.Quality.OverallQuality,
		gray(fmt.Sprintf("(%dms)", res.Stats.ProcessingTime)))
}
