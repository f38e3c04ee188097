// Package quality scores the confidence of an extraction run.
package quality

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/mvp-joe/project-patterns/internal/pattern"
)

// Weights blend the four axes into the overall quality.
type Weights struct {
	Detection    float64 `mapstructure:"detection" yaml:"detection"`
	TypeAccuracy float64 `mapstructure:"type_accuracy" yaml:"type_accuracy"`
	Semantic     float64 `mapstructure:"semantic" yaml:"semantic"`
	Consistency  float64 `mapstructure:"consistency" yaml:"consistency"`
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	return w.Detection + w.TypeAccuracy + w.Semantic + w.Consistency
}

// Thresholds trigger recommendations when an axis falls below them.
type Thresholds struct {
	Detection    float64 `mapstructure:"detection" yaml:"detection"`
	TypeAccuracy float64 `mapstructure:"type_accuracy" yaml:"type_accuracy"`
	Semantic     float64 `mapstructure:"semantic" yaml:"semantic"`
	Consistency  float64 `mapstructure:"consistency" yaml:"consistency"`
}

// Config holds the scoring constants.
type Config struct {
	Weights    Weights    `mapstructure:"weights" yaml:"weights"`
	Thresholds Thresholds `mapstructure:"thresholds" yaml:"thresholds"`
	// HighBand and MediumBand split individual pattern quality into bands.
	HighBand   float64 `mapstructure:"high_band" yaml:"high_band"`
	MediumBand float64 `mapstructure:"medium_band" yaml:"medium_band"`
	// StructurePenalty is subtracted per unit of complexity standard deviation.
	StructurePenalty float64 `mapstructure:"structure_penalty" yaml:"structure_penalty"`
}

// DefaultConfig returns the standard weights and thresholds.
func DefaultConfig() Config {
	return Config{
		Weights:          Weights{Detection: 0.30, TypeAccuracy: 0.30, Semantic: 0.25, Consistency: 0.15},
		Thresholds:       Thresholds{Detection: 90, TypeAccuracy: 85, Semantic: 80, Consistency: 75},
		HighBand:         80,
		MediumBand:       60,
		StructurePenalty: 10,
	}
}

// Recommendation texts.
const (
	RecommendDetection   = "Improve pattern detection by enhancing type resolution and semantic analysis"
	RecommendTypes       = "Enhance TypeScript type extraction for better accuracy"
	RecommendSemantic    = "Strengthen semantic analysis for better pattern classification"
	RecommendConsistency = "Improve cross-file consistency by standardizing analysis approach"
	RecommendSimplifyUI  = "Consider simplifying UI components by extracting complex logic into custom hooks"
	recommendParseErrors = "Resolve %d file-level parse errors to improve pattern coverage"
)

// Calculator builds quality reports. It is stateless and safe for concurrent use.
type Calculator struct {
	cfg Config
	now func() time.Time
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithClock overrides the report timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) {
		c.now = now
	}
}

// New creates a Calculator.
func New(cfg Config, opts ...Option) *Calculator {
	c := &Calculator{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Calculate scores the full pattern and error set of a run.
func (c *Calculator) Calculate(patterns []pattern.Pattern, errs []pattern.ParseError) pattern.QualityReport {
	q := c.Metrics(patterns)
	return pattern.QualityReport{
		Quality:         q,
		Recommendations: c.recommendations(q, patterns, errs),
		Distribution:    c.Summary(patterns),
		Timestamp:       c.now(),
	}
}

// CalculateWithStats is Calculate plus the performance block derived from stats.
func (c *Calculator) CalculateWithStats(patterns []pattern.Pattern, errs []pattern.ParseError, stats pattern.ParseStats) pattern.QualityReport {
	report := c.Calculate(patterns, errs)
	report.Performance = Performance(stats)
	return report
}

// Metrics computes the four axes and the weighted overall score. An empty
// pattern set scores zero on every axis.
func (c *Calculator) Metrics(patterns []pattern.Pattern) pattern.QualityMetrics {
	if len(patterns) == 0 {
		return pattern.QualityMetrics{}
	}

	q := pattern.QualityMetrics{
		PatternDetectionRate:    share(patterns, detected),
		TypeResolutionAccuracy:  share(patterns, typeResolved),
		SemanticAnalysisQuality: share(patterns, semanticallyAnalyzed),
		CrossFileConsistency:    c.consistency(patterns),
	}
	w := c.cfg.Weights
	q.OverallQuality = round2(q.PatternDetectionRate*w.Detection +
		q.TypeResolutionAccuracy*w.TypeAccuracy +
		q.SemanticAnalysisQuality*w.Semantic +
		q.CrossFileConsistency*w.Consistency)
	return q
}

func detected(p pattern.Pattern) bool {
	return p.Name != "" && p.Type != "" && p.FilePath != ""
}

func typeResolved(p pattern.Pattern) bool {
	return nonTrivialType(p.Metadata.ReturnType) || len(p.Metadata.Parameters) > 0 || len(p.Metadata.GenericTypes) > 0
}

func semanticallyAnalyzed(p pattern.Pattern) bool {
	return p.Metadata.Purpose != "" && p.Metadata.ArchitecturalMetrics != nil && p.Metadata.Complexity > 0
}

func nonTrivialType(t string) bool {
	return t != "" && t != "any"
}

func share(patterns []pattern.Pattern, pred func(pattern.Pattern) bool) float64 {
	n := 0
	for _, p := range patterns {
		if pred(p) {
			n++
		}
	}
	return round2(float64(n) / float64(len(patterns)) * 100)
}

// consistency averages the per-file composite of naming, type-usage and
// structural consistency.
func (c *Calculator) consistency(patterns []pattern.Pattern) float64 {
	var order []string
	groups := make(map[string][]pattern.Pattern)
	for _, p := range patterns {
		if _, ok := groups[p.FilePath]; !ok {
			order = append(order, p.FilePath)
		}
		groups[p.FilePath] = append(groups[p.FilePath], p)
	}
	if len(order) == 0 {
		return 100
	}

	total := 0.0
	for _, file := range order {
		group := groups[file]
		if len(group) < 2 {
			total += 100
			continue
		}
		total += (namingConsistency(group) + typeConsistency(group) + c.structureConsistency(group)) / 3
	}
	return round2(total / float64(len(order)))
}

var (
	pascalCase     = regexp.MustCompile(`^[A-Z][a-zA-Z0-9]*$`)
	camelCase      = regexp.MustCompile(`^[a-z][a-zA-Z0-9]*$`)
	snakeCase      = regexp.MustCompile(`^[a-z][a-z0-9]*(_[a-z0-9]+)+$`)
	upperSnakeCase = regexp.MustCompile(`^[A-Z][A-Z0-9]*(_[A-Z0-9]+)+$`)
)

// CaseStyle names the naming convention of an identifier.
func CaseStyle(name string) string {
	switch {
	case upperSnakeCase.MatchString(name):
		return "UPPER_SNAKE_CASE"
	case snakeCase.MatchString(name):
		return "snake_case"
	case pascalCase.MatchString(name):
		return "PascalCase"
	case camelCase.MatchString(name):
		return "camelCase"
	default:
		return "mixed"
	}
}

// namingConsistency is the share of the dominant case style.
func namingConsistency(group []pattern.Pattern) float64 {
	counts := make(map[string]int)
	best := 0
	for _, p := range group {
		style := CaseStyle(p.Name)
		counts[style]++
		best = max(best, counts[style])
	}
	return float64(best) / float64(len(group)) * 100
}

// typeConsistency is the pairwise agreement on parameter and generic presence
// among patterns carrying type information.
func typeConsistency(group []pattern.Pattern) float64 {
	var typed []pattern.Pattern
	for _, p := range group {
		if p.Metadata.ReturnType != "" || len(p.Metadata.Parameters) > 0 {
			typed = append(typed, p)
		}
	}
	if len(typed) < 2 {
		return 100
	}

	agree, pairs := 0, 0
	for i := 0; i < len(typed); i++ {
		for j := i + 1; j < len(typed); j++ {
			a, b := typed[i].Metadata, typed[j].Metadata
			pairs++
			if (len(a.Parameters) > 0) == (len(b.Parameters) > 0) && (len(a.GenericTypes) > 0) == (len(b.GenericTypes) > 0) {
				agree++
			}
		}
	}
	return float64(agree) / float64(pairs) * 100
}

// structureConsistency falls as complexity varies within a file.
func (c *Calculator) structureConsistency(group []pattern.Pattern) float64 {
	mean := 0.0
	for _, p := range group {
		mean += float64(p.Metadata.Complexity)
	}
	mean /= float64(len(group))

	variance := 0.0
	for _, p := range group {
		d := float64(p.Metadata.Complexity) - mean
		variance += d * d
	}
	stddev := math.Sqrt(variance / float64(len(group)))
	return math.Max(0, 100-c.cfg.StructurePenalty*stddev)
}

func (c *Calculator) recommendations(q pattern.QualityMetrics, patterns []pattern.Pattern, errs []pattern.ParseError) []string {
	t := c.cfg.Thresholds
	recs := []string{}
	if q.PatternDetectionRate < t.Detection {
		recs = append(recs, RecommendDetection)
	}
	if q.TypeResolutionAccuracy < t.TypeAccuracy {
		recs = append(recs, RecommendTypes)
	}
	if q.SemanticAnalysisQuality < t.Semantic {
		recs = append(recs, RecommendSemantic)
	}
	if q.CrossFileConsistency < t.Consistency {
		recs = append(recs, RecommendConsistency)
	}

	ui, uiOK := averageComplexity(patterns, pattern.PurposeUI)
	logic, logicOK := averageComplexity(patterns, pattern.PurposeLogic)
	if uiOK && logicOK && ui > logic {
		recs = append(recs, RecommendSimplifyUI)
	}

	failed := 0
	for _, e := range errs {
		if e.Severity == pattern.SeverityError {
			failed++
		}
	}
	if failed > 0 {
		recs = append(recs, fmt.Sprintf(recommendParseErrors, failed))
	}
	return recs
}

func averageComplexity(patterns []pattern.Pattern, purpose pattern.Purpose) (float64, bool) {
	sum, n := 0, 0
	for _, p := range patterns {
		if p.Metadata.Purpose == purpose {
			sum += p.Metadata.Complexity
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return float64(sum) / float64(n), true
}

// Performance derives throughput figures from run statistics.
func Performance(stats pattern.ParseStats) pattern.PerformanceMetrics {
	perf := pattern.PerformanceMetrics{
		ProcessingTime: stats.ProcessingTime,
		MemoryUsage:    stats.MemoryUsage,
	}
	if stats.ProcessingTime > 0 {
		perf.PatternsPerSecond = round2(float64(stats.TotalPatterns) / (float64(stats.ProcessingTime) / 1000))
	}
	if stats.TotalFiles > 0 {
		perf.Efficiency = round2(float64(stats.ProcessedFiles) / float64(stats.TotalFiles) * 100)
	}
	return perf
}

// Describe renders the axes as a single human-readable line.
func Describe(q pattern.QualityMetrics) string {
	parts := []string{
		fmt.Sprintf("detection %.1f%%", q.PatternDetectionRate),
		fmt.Sprintf("types %.1f%%", q.TypeResolutionAccuracy),
		fmt.Sprintf("semantics %.1f%%", q.SemanticAnalysisQuality),
		fmt.Sprintf("consistency %.1f%%", q.CrossFileConsistency),
	}
	return strings.Join(parts, ", ")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
