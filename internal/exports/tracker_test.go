package exports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-patterns/internal/extractor"
	"github.com/mvp-joe/project-patterns/internal/pattern"
	"github.com/mvp-joe/project-patterns/internal/program"
)

// Test Plan for export tracking:
// - export function / interface / type / enum / const are named exports
// - export default function and export default name are default exports named "default"
// - export { a, b as c } and export { x } from "m" are recorded with aliases and paths
// - Wrapped components inherit the export status of their call site
// - Unexported declarations and class methods have no exports
// - Duplicate export entries are removed
// - Query helpers: IsDefaultExport, IsNamedExport, IsReExported, ExportNames, ExportPaths,
//   ExportComplexity, FindByExportName, FindByImportPath
// - Dependency graph: forward map without empty entries, reverse map in pattern order,
//   Modules in first-seen order, Dependents and Size from the graph

func trackAll(t *testing.T, relPath, src string) map[string]pattern.Pattern {
	t.Helper()
	file := program.ParseSource(relPath, []byte(src))
	t.Cleanup(file.Close)
	require.NoError(t, file.Err)

	tracker := New()
	out := map[string]pattern.Pattern{}
	for _, m := range extractor.New().Matches(file) {
		out[m.Pattern.Name] = tracker.Enrich(m.Pattern, m.Shape, file)
	}
	return out
}

func TestEnrich_DirectExports(t *testing.T) {
	t.Parallel()

	got := trackAll(t, "a.ts", `
export function useData() { return 1; }
export interface Props { a: string }
export type ID = string;
export enum Kind { A }
export const MAX = 1;
export const helper = () => 1;
function hidden() { return 2; }
export default function main() { return 3; }
`)

	named := []string{"useData", "Props", "ID", "Kind", "MAX", "helper"}
	for _, name := range named {
		assert.Equal(t, []pattern.ExportInfo{{Type: pattern.ExportNamed, Name: name}}, got[name].Exports, name)
	}
	assert.Empty(t, got["hidden"].Exports)
	assert.NotNil(t, got["hidden"].Exports)
	assert.Equal(t, []pattern.ExportInfo{{Type: pattern.ExportDefault, Name: DefaultName}}, got["main"].Exports)
}

func TestEnrich_ExportClauses(t *testing.T) {
	t.Parallel()

	got := trackAll(t, "a.ts", `
function alpha() { return 1; }
const beta = () => 2;
function gamma() { return 3; }
export { alpha, beta as renamed };
export { gamma } from "./gamma";
export { alpha };
export default gamma;
`)

	assert.Equal(t, []pattern.ExportInfo{{Type: pattern.ExportNamed, Name: "alpha"}}, got["alpha"].Exports)
	assert.Equal(t, []pattern.ExportInfo{{Type: pattern.ExportNamed, Name: "renamed"}}, got["beta"].Exports)
	assert.Equal(t, []pattern.ExportInfo{
		{Type: pattern.ExportReExport, Name: "gamma", Path: "./gamma", IsReExport: true},
		{Type: pattern.ExportDefault, Name: DefaultName},
	}, got["gamma"].Exports)
}

func TestEnrich_WrapperCallSites(t *testing.T) {
	t.Parallel()

	got := trackAll(t, "a.tsx", `
const Base = () => <div />;
const Inner = () => <span />;
export const Memo = memo(Base);
export default forwardRef((props, ref) => <input ref={ref} />);
const Wrapped = withTheme(Inner);
export { Wrapped };
`)

	// memo(Base) is emitted after Base under the same name
	assert.Equal(t, []pattern.ExportInfo{{Type: pattern.ExportNamed, Name: "Memo"}}, got["Base"].Exports)
	assert.Equal(t, []pattern.ExportInfo{{Type: pattern.ExportDefault, Name: DefaultName}},
		got[extractor.AnonymousForwardRef].Exports)
	assert.Equal(t, []pattern.ExportInfo{{Type: pattern.ExportNamed, Name: "Wrapped"}}, got["Inner"].Exports)
}

func TestEnrich_MethodsNotExported(t *testing.T) {
	t.Parallel()

	got := trackAll(t, "a.ts", "export class Api { load() { return 1; } }\n")
	assert.Equal(t, []pattern.ExportInfo{{Type: pattern.ExportNamed, Name: "Api"}}, got["Api"].Exports)
	assert.Empty(t, got["load"].Exports)
}

func TestQueries(t *testing.T) {
	t.Parallel()

	widget := pattern.Pattern{ID: "w", Name: "Widget", Dependencies: []string{"react"},
		Exports: []pattern.ExportInfo{{Type: pattern.ExportNamed, Name: "Widget"}, {Type: pattern.ExportDefault, Name: DefaultName}}}
	button := pattern.Pattern{ID: "b", Name: "Button", Dependencies: []string{"react", "./theme"},
		Exports: []pattern.ExportInfo{{Type: pattern.ExportReExport, Name: "Button", Path: "./ui", IsReExport: true}}}
	local := pattern.Pattern{ID: "l", Name: "local"}
	all := []pattern.Pattern{widget, button, local}

	assert.True(t, IsDefaultExport(widget))
	assert.False(t, IsDefaultExport(button))
	assert.True(t, IsNamedExport(widget))
	assert.False(t, IsNamedExport(button))
	assert.True(t, IsReExported(button))
	assert.False(t, IsReExported(local))

	assert.Equal(t, []string{"Widget", DefaultName}, ExportNames(widget))
	assert.Equal(t, []string{"./ui"}, ExportPaths(button))
	assert.Nil(t, ExportPaths(local))

	assert.Equal(t, 2, ExportComplexity(widget))
	assert.Equal(t, 2, ExportComplexity(button))
	assert.Equal(t, 0, ExportComplexity(local))

	assert.Equal(t, []pattern.Pattern{widget}, FindByExportName(all, DefaultName))
	assert.Equal(t, []pattern.Pattern{button}, FindByExportName(all, "Button"))
	assert.Empty(t, FindByExportName(all, "missing"))
	assert.Equal(t, []pattern.Pattern{widget, button}, FindByImportPath(all, "react"))
	assert.Equal(t, []pattern.Pattern{button}, FindByImportPath(all, "./theme"))
}

func TestDependencyGraph(t *testing.T) {
	t.Parallel()

	patterns := []pattern.Pattern{
		{ID: "a", Dependencies: []string{"react", "lodash"}},
		{ID: "b", Dependencies: []string{}},
		{ID: "c", Dependencies: []string{"lodash", "lodash"}},
	}

	dg, err := NewDependencyGraph(patterns)
	require.NoError(t, err)

	assert.Equal(t, map[string][]string{
		"a": {"react", "lodash"},
		"c": {"lodash"},
	}, dg.Forward())
	assert.Equal(t, map[string][]string{
		"react":  {"a"},
		"lodash": {"a", "c"},
	}, dg.Reverse())
	assert.Equal(t, []string{"react", "lodash"}, dg.Modules())

	n, err := dg.Dependents("lodash")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = dg.Dependents("missing")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	vertices, edges, err := dg.Size()
	require.NoError(t, err)
	assert.Equal(t, 5, vertices)
	assert.Equal(t, 3, edges)

	forward, err := BuildDependencyGraph(patterns)
	require.NoError(t, err)
	assert.Equal(t, dg.Forward(), forward)
	reverse, err := BuildReverseDependencyMap(patterns)
	require.NoError(t, err)
	assert.Equal(t, dg.Reverse(), reverse)
}
