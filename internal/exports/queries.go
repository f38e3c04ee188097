package exports

import (
	"slices"

	"github.com/mvp-joe/project-patterns/internal/pattern"
)

// IsDefaultExport reports whether p is its module's default export.
func IsDefaultExport(p pattern.Pattern) bool {
	return slices.ContainsFunc(p.Exports, func(e pattern.ExportInfo) bool {
		return e.Type == pattern.ExportDefault
	})
}

// IsNamedExport reports whether p is exported under a name.
func IsNamedExport(p pattern.Pattern) bool {
	return slices.ContainsFunc(p.Exports, func(e pattern.ExportInfo) bool {
		return e.Type == pattern.ExportNamed
	})
}

// IsReExported reports whether p is re-exported from another module specifier.
func IsReExported(p pattern.Pattern) bool {
	return slices.ContainsFunc(p.Exports, func(e pattern.ExportInfo) bool {
		return e.IsReExport
	})
}

// ExportNames returns the names p is exported under, in declaration order.
func ExportNames(p pattern.Pattern) []string {
	var names []string
	for _, e := range p.Exports {
		if e.Name != "" && !slices.Contains(names, e.Name) {
			names = append(names, e.Name)
		}
	}
	return names
}

// ExportPaths returns the module specifiers p is re-exported from.
func ExportPaths(p pattern.Pattern) []string {
	var paths []string
	for _, e := range p.Exports {
		if e.Path != "" && !slices.Contains(paths, e.Path) {
			paths = append(paths, e.Path)
		}
	}
	return paths
}

// ExportComplexity scores how many ways p is exposed; re-exports count double.
func ExportComplexity(p pattern.Pattern) int {
	score := 0
	for _, e := range p.Exports {
		score++
		if e.IsReExport {
			score++
		}
	}
	return score
}

// FindByExportName returns the patterns exported under name.
func FindByExportName(patterns []pattern.Pattern, name string) []pattern.Pattern {
	var out []pattern.Pattern
	for _, p := range patterns {
		if slices.Contains(ExportNames(p), name) {
			out = append(out, p)
		}
	}
	return out
}

// FindByImportPath returns the patterns whose subtree imports path.
func FindByImportPath(patterns []pattern.Pattern, path string) []pattern.Pattern {
	var out []pattern.Pattern
	for _, p := range patterns {
		if slices.Contains(p.Dependencies, path) {
			out = append(out, p)
		}
	}
	return out
}
