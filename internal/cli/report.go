package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/mvp-joe/project-patterns/internal/config"
	"github.com/mvp-joe/project-patterns/internal/pattern"
	"github.com/mvp-joe/project-patterns/internal/quality"
)

// ReportMetadata describes the run that produced a report.
type ReportMetadata struct {
	RunID       string             `json:"runId" yaml:"runId"`
	GeneratedAt time.Time          `json:"generatedAt" yaml:"generatedAt"`
	ProjectRoot string             `json:"projectRoot" yaml:"projectRoot"`
	Version     string             `json:"version" yaml:"version"`
	Stats       pattern.ParseStats `json:"stats" yaml:"stats"`
}

// Report is the document written by analyze.
type Report struct {
	Metadata      ReportMetadata        `json:"metadata" yaml:"metadata"`
	Patterns      []pattern.Pattern     `json:"patterns" yaml:"patterns"`
	Errors        []pattern.ParseError  `json:"errors" yaml:"errors"`
	QualityReport pattern.QualityReport `json:"qualityReport" yaml:"qualityReport"`
}

// NewReport wraps res in the report envelope.
func NewReport(res *pattern.Result, runID, projectRoot string, generatedAt time.Time) Report {
	return Report{
		Metadata: ReportMetadata{
			RunID:       runID,
			GeneratedAt: generatedAt,
			ProjectRoot: projectRoot,
			Version:     Version,
			Stats:       res.Stats,
		},
		Patterns:      res.Patterns,
		Errors:        res.Errors,
		QualityReport: res.QualityReport,
	}
}

// WriteReport encodes r to w in the given format.
func WriteReport(w io.Writer, r Report, format string) error {
	switch format {
	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode report as yaml: %w", err)
		}
		return enc.Close()
	case config.FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode report as json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// printSummary writes a colored overview of res.
func printSummary(w io.Writer, res *pattern.Result) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	q := res.QualityReport.Quality
	fmt.Fprintf(w, "\n%s\n", cyan("Pattern inventory"))
	fmt.Fprintf(w, "  Files:    %s processed, %s skipped\n",
		formatNumber(res.Stats.ProcessedFiles), formatNumber(res.Stats.SkippedFiles))
	fmt.Fprintf(w, "  Patterns: %s\n", formatNumber(res.Stats.TotalPatterns))

	counts := make(map[pattern.Type]int)
	for _, p := range res.Patterns {
		counts[p.Type]++
	}
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, string(t))
	}
	slices.Sort(types)
	for _, t := range types {
		fmt.Fprintf(w, "    %-18s %s\n", t, formatNumber(counts[pattern.Type(t)]))
	}

	scoreColor := red
	switch {
	case q.OverallQuality >= 80:
		scoreColor = green
	case q.OverallQuality >= 60:
		scoreColor = yellow
	}
	fmt.Fprintf(w, "  Quality:  %s %s\n", scoreColor(fmt.Sprintf("%.1f%%", q.OverallQuality)), gray("("+quality.Describe(q)+")"))

	if n := len(res.Errors); n > 0 {
		fmt.Fprintf(w, "  Errors:   %s\n", red(formatNumber(n)))
	}
	for _, rec := range res.QualityReport.Recommendations {
		fmt.Fprintf(w, "  %s %s\n", yellow("→"), rec)
	}
}
