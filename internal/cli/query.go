package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-patterns/internal/pattern"
	"github.com/mvp-joe/project-patterns/internal/storage"
)

var (
	queryStore   string
	queryParams  storage.PatternQuery
	queryType    string
	queryPurpose string
	queryJSON    bool
	querySummary bool
)

// queryCmd represents the query command
var queryCmd = &cobra.Command{
	Use:   "query [path]",
	Short: "Query the saved pattern snapshot",
	Long: `Query reads the snapshot written by 'patterns analyze --store' or 'patterns watch'
and lists the patterns matching every given filter.

Examples:
  # All custom hooks
  patterns query --type custom-hook

  # Patterns that lazily load ./Chart with import() or require() in their body
  patterns query --import-path ./Chart

  # Snapshot overview
  patterns query --summary
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	f := queryCmd.Flags()
	f.StringVar(&queryStore, "store", "", "SQLite snapshot path (default from config)")
	f.StringVar(&queryParams.Name, "name", "", "Exact declaration name")
	f.StringVar(&queryType, "type", "", "Pattern type (component, custom-hook, utility-function, interface, type-definition, enum, constant)")
	f.StringVar(&queryPurpose, "purpose", "", "Purpose (UI, Logic, Data, Utility)")
	f.StringVar(&queryParams.FilePath, "file", "", "Project-relative file path")
	f.StringVar(&queryParams.ExportName, "export-name", "", "Export name ('default' for default exports)")
	f.StringVar(&queryParams.ImportPath, "import-path", "", "Module loaded by import() or require() inside the declaration")
	f.BoolVar(&queryParams.ExportedOnly, "exported", false, "Only exported patterns")
	f.IntVar(&queryParams.Limit, "limit", 0, "Maximum number of results")
	f.BoolVar(&queryJSON, "json", false, "Output as JSON")
	f.BoolVar(&querySummary, "summary", false, "Show the snapshot overview instead of patterns")
}

func runQuery(cmd *cobra.Command, args []string) error {
	root, err := projectRoot(args)
	if err != nil {
		return err
	}

	dbPath := queryStore
	if dbPath == "" {
		cfg, err := loadConfig(root)
		if err != nil {
			return err
		}
		dbPath = cfg.Storage.Path
	}

	q := queryParams
	q.Type = pattern.Type(queryType)
	q.Purpose = pattern.Purpose(queryPurpose)
	return executeQuery(storePath(root, dbPath), q, querySummary, queryJSON, cmd.OutOrStdout())
}

// executeQuery opens the snapshot read-only and prints matches or the summary.
func executeQuery(dbPath string, q storage.PatternQuery, summary, asJSON bool, out io.Writer) error {
	store, err := storage.Open(dbPath, true)
	if err != nil {
		return err
	}
	defer store.Close()

	if summary {
		return printSnapshotSummary(store, asJSON, out)
	}

	patterns, err := store.FindPatterns(q)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(patterns)
	}

	if len(patterns) == 0 {
		fmt.Fprintln(out, "No matching patterns")
		return nil
	}

	cyan := color.New(color.FgCyan).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()
	for _, p := range patterns {
		exported := ""
		if p.IsExported() {
			exported = " " + string(p.PrimaryExport())
		}
		fmt.Fprintf(out, "%s %s %s\n", cyan(p.Name), p.Type,
			gray(fmt.Sprintf("%s:%d:%d%s", p.FilePath, p.LineNumber, p.ColumnNumber, exported)))
	}
	fmt.Fprintf(out, "\n%s patterns\n", formatNumber(len(patterns)))
	return nil
}

type snapshotSummary struct {
	Run    *storage.Run         `json:"run"`
	ByType map[pattern.Type]int `json:"byType"`
	Errors int                  `json:"errors"`
}

func printSnapshotSummary(store *storage.Store, asJSON bool, out io.Writer) error {
	run, err := store.LatestRun()
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("%w: the store contains no run", storage.ErrNoSnapshot)
	}
	counts, err := store.CountByType()
	if err != nil {
		return err
	}
	errs, err := store.Errors()
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(snapshotSummary{Run: run, ByType: counts, Errors: len(errs)})
	}

	fmt.Fprintf(out, "Run %s of %s\n", run.RunID, run.ProjectRoot)
	fmt.Fprintf(out, "  Generated: %s\n", run.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "  Files:     %s processed, %s skipped\n",
		formatNumber(run.Stats.ProcessedFiles), formatNumber(run.Stats.SkippedFiles))
	fmt.Fprintf(out, "  Quality:   %.1f%%\n", run.Report.Quality.OverallQuality)
	fmt.Fprintf(out, "  Errors:    %s\n", formatNumber(len(errs)))

	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, string(t))
	}
	slices.Sort(types)
	for _, t := range types {
		fmt.Fprintf(out, "    %-18s %s\n", t, formatNumber(counts[pattern.Type(t)]))
	}
	return nil
}
