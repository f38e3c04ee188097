package quality

import "github.com/mvp-joe/project-patterns/internal/pattern"

// Filters are minimum thresholds used to post-filter the pattern list of a
// run. The overall, type and semantic thresholds apply per pattern; the
// detection and consistency thresholds gate the whole run.
type Filters struct {
	MinOverallQuality        float64 `mapstructure:"min_overall_quality" yaml:"min_overall_quality"`
	MinTypeResolutionQuality float64 `mapstructure:"min_type_resolution_quality" yaml:"min_type_resolution_quality"`
	MinSemanticQuality       float64 `mapstructure:"min_semantic_quality" yaml:"min_semantic_quality"`
	MinPatternDetectionRate  float64 `mapstructure:"min_pattern_detection_rate" yaml:"min_pattern_detection_rate"`
	MinCrossFileConsistency  float64 `mapstructure:"min_cross_file_consistency" yaml:"min_cross_file_consistency"`
	// IncludeLowQuality disables filtering altogether.
	IncludeLowQuality bool `mapstructure:"include_low_quality" yaml:"include_low_quality"`
}

// IsZero reports whether no threshold is set.
func (f Filters) IsZero() bool {
	return f.MinOverallQuality == 0 && f.MinTypeResolutionQuality == 0 && f.MinSemanticQuality == 0 &&
		!f.gatesRun()
}

func (f Filters) gatesRun() bool {
	return f.MinPatternDetectionRate > 0 || f.MinCrossFileConsistency > 0
}

// PatternQuality is the cheap per-pattern heuristic used for filtering.
type PatternQuality struct {
	TypeResolution float64 `json:"typeResolution"`
	Semantic       float64 `json:"semantic"`
	Overall        float64 `json:"overall"`
}

// ScorePattern rates one pattern. The type half rewards a non-any return type
// (50), parameters (30) and generics (20); the semantic half rewards a purpose
// (40), metrics (30) and a positive complexity (30).
func ScorePattern(p pattern.Pattern) PatternQuality {
	md := p.Metadata
	var q PatternQuality
	if nonTrivialType(md.ReturnType) {
		q.TypeResolution += 50
	}
	if len(md.Parameters) > 0 {
		q.TypeResolution += 30
	}
	if len(md.GenericTypes) > 0 {
		q.TypeResolution += 20
	}
	if md.Purpose != "" {
		q.Semantic += 40
	}
	if md.ArchitecturalMetrics != nil {
		q.Semantic += 30
	}
	if md.Complexity > 0 {
		q.Semantic += 30
	}
	q.Overall = (q.TypeResolution + q.Semantic) / 2
	return q
}

// Filter keeps the patterns meeting every threshold, preserving order. Run
// gates are checked against the default-weighted metrics of patterns.
func Filter(patterns []pattern.Pattern, f Filters) []pattern.Pattern {
	var run pattern.QualityMetrics
	if f.gatesRun() && !f.IncludeLowQuality {
		run = New(DefaultConfig()).Metrics(patterns)
	}
	return FilterRun(patterns, f, run)
}

// FilterRun is Filter with precomputed run metrics. A run below the
// detection or consistency threshold emits no patterns.
func FilterRun(patterns []pattern.Pattern, f Filters, run pattern.QualityMetrics) []pattern.Pattern {
	if f.IncludeLowQuality || f.IsZero() {
		return patterns
	}
	if run.PatternDetectionRate < f.MinPatternDetectionRate || run.CrossFileConsistency < f.MinCrossFileConsistency {
		return []pattern.Pattern{}
	}
	out := make([]pattern.Pattern, 0, len(patterns))
	for _, p := range patterns {
		q := ScorePattern(p)
		if q.Overall >= f.MinOverallQuality &&
			q.TypeResolution >= f.MinTypeResolutionQuality &&
			q.Semantic >= f.MinSemanticQuality {
			out = append(out, p)
		}
	}
	return out
}

// Summary counts patterns per quality band.
func (c *Calculator) Summary(patterns []pattern.Pattern) pattern.Distribution {
	var d pattern.Distribution
	for _, p := range patterns {
		switch overall := ScorePattern(p).Overall; {
		case overall >= c.cfg.HighBand:
			d.High++
		case overall >= c.cfg.MediumBand:
			d.Medium++
		default:
			d.Low++
		}
	}
	return d
}
