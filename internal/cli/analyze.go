package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-patterns/internal/config"
	"github.com/mvp-joe/project-patterns/internal/pipeline"
	"github.com/mvp-joe/project-patterns/internal/storage"
)

var (
	analyzeOutput      string
	analyzeFormat      string
	analyzeMaxFileSize int64
	analyzeSkip        []string
	analyzeMinQuality  float64
	analyzeStore       string
	analyzeQuiet       bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Extract the pattern inventory of a project",
	Long: `Analyze parses every TypeScript/JavaScript source file under the project root,
extracts components, hooks, utility functions, interfaces and type definitions,
and writes the inventory together with a quality report.

Examples:
  # Analyze the current directory into ast-patterns.json
  patterns analyze

  # Analyze a project and print YAML to stdout
  patterns analyze ./web --output - --format yaml

  # Keep only high-confidence patterns and save a queryable snapshot
  patterns analyze --min-quality 70 --store .patterns/patterns.db
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	f := analyzeCmd.Flags()
	f.StringVarP(&analyzeOutput, "output", "o", "", "Output file ('-' for stdout, default ast-patterns.json)")
	f.StringVar(&analyzeFormat, "format", "", "Output format: json or yaml (default json)")
	f.Int64Var(&analyzeMaxFileSize, "max-file-size", 0, "Skip files larger than this many bytes")
	f.StringSliceVar(&analyzeSkip, "skip", nil, "Comma-separated path substrings to skip")
	f.Float64Var(&analyzeMinQuality, "min-quality", 0, "Drop patterns whose individual quality is below this score (0-100)")
	f.StringVar(&analyzeStore, "store", "", "Save a snapshot to this SQLite database")
	f.BoolVarP(&analyzeQuiet, "quiet", "q", false, "Disable progress bars and the summary")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
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
	if err := applyAnalyzeFlags(cmd, cfg); err != nil {
		return err
	}

	return executeAnalyze(ctx, root, cfg, analyzeQuiet, verbose, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// applyAnalyzeFlags overrides configuration with explicitly set flags.
func applyAnalyzeFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output.Path = analyzeOutput
	}
	if flags.Changed("format") {
		cfg.Output.Format = analyzeFormat
	}
	if flags.Changed("max-file-size") {
		cfg.Analysis.MaxFileSize = analyzeMaxFileSize
	}
	if flags.Changed("skip") {
		cfg.Analysis.SkipPatterns = analyzeSkip
	}
	if flags.Changed("min-quality") {
		cfg.Quality.Filters.MinOverallQuality = analyzeMinQuality
	}
	if flags.Changed("store") {
		cfg.Storage.Path = analyzeStore
		cfg.Storage.Enabled = analyzeStore != ""
	}
	return config.Validate(cfg)
}

// executeAnalyze runs one analysis and writes the report. Progress and the
// summary go to stderr so the report can be piped from stdout.
func executeAnalyze(ctx context.Context, root string, cfg *config.Config, quiet, verbose bool, stdout, stderr io.Writer) error {
	logger := newLogger(stderr, verbose)
	opts := cfg.ToPipelineOptions(logger)
	opts.Progress = NewCLIProgressReporter(stderr, quiet)

	generatedAt := time.Now()
	res, err := pipeline.Analyze(ctx, root, opts)
	if res == nil {
		if ctx.Err() != nil {
			return fmt.Errorf("analysis cancelled")
		}
		return fmt.Errorf("analysis failed: %w", err)
	}

	runID := storage.NewRunID()
	out, closeOut, werr := createOutput(cfg.Output.Path, stdout)
	if werr != nil {
		return werr
	}
	werr = WriteReport(out, NewReport(res, runID, root, generatedAt), cfg.Output.Format)
	if cerr := closeOut(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return werr
	}

	// The empty report of a failed program construction is still written.
	if errors.Is(err, pipeline.ErrProgramConstruction) {
		return err
	}

	store, err := openStore(root, cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
		run := storage.Run{RunID: runID, ProjectRoot: root, GeneratedAt: generatedAt}
		if err := store.SaveResult(run, res); err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
	}

	if !quiet {
		printSummary(stderr, res)
		if cfg.Output.Path != "-" {
			fmt.Fprintf(stderr, "\nReport written to %s\n", cfg.Output.Path)
		}
	}
	return nil
}
