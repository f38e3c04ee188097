package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-patterns/internal/extractor"
	"github.com/mvp-joe/project-patterns/internal/pattern"
	"github.com/mvp-joe/project-patterns/internal/program"
	"github.com/mvp-joe/project-patterns/internal/syntax"
)

// Test Plan for semantic Analyzer:
// - JSX anywhere in the subtree makes the purpose UI
// - State hooks, control flow and use-prefixed names make callables Logic
// - Other callables are Utility
// - Interfaces, aliases, enums and constants are classified by name (Data by default)
// - A class containing JSX becomes a component
// - Complexity counts branches, loops, catch clauses and ternaries
// - Coupling ignores builtin callees and is capped
// - Cohesion and abstraction follow their penalties and bonuses within bounds
// - Dependencies include static imports, dynamic import() and require() without duplicates
// - UsageCount ignores the declaration name and import/export clauses; a
//   wrapper call does not count its own wrapped argument

func analyzeAll(t *testing.T, relPath, src string) map[string]pattern.Pattern {
	t.Helper()
	file := program.ParseSource(relPath, []byte(src))
	t.Cleanup(file.Close)
	require.NoError(t, file.Err)

	a := New(DefaultConfig())
	out := map[string]pattern.Pattern{}
	for _, m := range extractor.New().Matches(file) {
		out[m.Pattern.Name] = a.Analyze(m.Pattern, m.Shape, file)
	}
	return out
}

func TestAnalyze_Purpose(t *testing.T) {
	t.Parallel()

	got := analyzeAll(t, "a.tsx", `
export const Card = () => <div className="card" />;
export function useCounter() { const [n, setN] = React.useState(0); return n; }
export function useLabel() { return "label"; }
export function pickFirst(xs: number[]) { if (xs.length) { return xs[0]; } return 0; }
export function add(a: number, b: number) { return a + b; }
export interface UserProps { name: string }
export interface ViewOptions { dense: boolean }
export type Point = { x: number };
export enum Mode { A, B }
export const MAX_RETRIES = 3;
export class Panel { render() { return <section />; } }
export class Repository { find() { return null; } }
`)

	tests := []struct {
		name    string
		purpose pattern.Purpose
	}{
		{"Card", pattern.PurposeUI},
		{"useCounter", pattern.PurposeLogic},
		{"useLabel", pattern.PurposeLogic},
		{"pickFirst", pattern.PurposeLogic},
		{"add", pattern.PurposeUtility},
		{"UserProps", pattern.PurposeData},
		{"ViewOptions", pattern.PurposeUI},
		{"Point", pattern.PurposeData},
		{"Mode", pattern.PurposeData},
		{"MAX_RETRIES", pattern.PurposeData},
		{"Panel", pattern.PurposeUI},
		{"Repository", pattern.PurposeUtility},
	}
	for _, tt := range tests {
		p, ok := got[tt.name]
		require.True(t, ok, "missing pattern %s", tt.name)
		assert.Equal(t, tt.purpose, p.Metadata.Purpose, tt.name)
	}

	assert.Equal(t, pattern.TypeComponent, got["Panel"].Type)
	assert.Equal(t, pattern.TypeUtilityFunction, got["Repository"].Type)
}

func TestAnalyze_ComplexityAndMetrics(t *testing.T) {
	t.Parallel()

	got := analyzeAll(t, "a.ts", `
export function process(items: string[]) {
  for (const item of items) {
    if (item === "") {
      continue;
    }
    try {
      handle(item);
    } catch (e) {
      console.error(e);
    }
  }
  return items.length > 0 ? "done" : "empty";
}
`)

	p := got["process"]
	// for, if, catch, ternary
	assert.Equal(t, 5, p.Metadata.Complexity)

	m := p.Metadata.ArchitecturalMetrics
	require.NotNil(t, m)
	assert.Equal(t, 5, m.Complexity)
	// handle(item) counts; console.error is a member call; two property accesses
	assert.InDelta(t, 2.0, m.Coupling, 0.001)
	// one return, two binaries, one if
	assert.InDelta(t, 10-0.5-0.4-0.3, m.Cohesion, 0.001)
	assert.InDelta(t, 5.0, m.Abstraction, 0.001)
	assert.InDelta(t, 100-5-2.0, m.Maintainability, 0.001)
}

func TestCoupling_Capped(t *testing.T) {
	t.Parallel()

	got := analyzeAll(t, "a.ts", `
export function busy() {
  a(); b(); c(); d(); e(); f(); g(); h(); i(); j(); k(); l();
  Math.max(1, 2); JSON.stringify({});
}
`)
	assert.InDelta(t, 10.0, got["busy"].Metadata.ArchitecturalMetrics.Coupling, 0.001)
}

func TestAbstraction_Bonuses(t *testing.T) {
	t.Parallel()

	got := analyzeAll(t, "a.ts", `
export abstract class Store<T, K> extends Base implements Reader, Writer {
  abstract load(): T;
}
`)
	// base 5 + 2 generics + extends + 2 implements + abstract method 2, capped at 10
	assert.InDelta(t, 10.0, got["Store"].Metadata.ArchitecturalMetrics.Abstraction, 0.001)
}

func TestDependencies(t *testing.T) {
	t.Parallel()

	got := analyzeAll(t, "a.ts", `
export async function loadModules() {
  const chart = await import("./Chart");
  const lodash = require("lodash");
  const again = require("lodash");
  const dynamic = require(name);
  return [chart, lodash, again, dynamic];
}
`)
	assert.Equal(t, []string{"./Chart", "lodash"}, got["loadModules"].Dependencies)
}

func TestUsageCount(t *testing.T) {
	t.Parallel()

	got := analyzeAll(t, "a.tsx", `
import { helper } from "./helper";
export const format = (v: string) => helper(v);
export function render() { return format("a") + format("b"); }
export { format as fmt };
`)
	assert.Equal(t, 2, got["format"].Metadata.UsageCount)
	assert.Equal(t, 0, got["render"].Metadata.UsageCount)
}

func TestUsageCount_WrapperCall(t *testing.T) {
	t.Parallel()

	file := program.ParseSource("a.tsx", []byte(`
const BasicComponent = () => <div />;
export default connect(mapState)(BasicComponent);
`))
	t.Cleanup(file.Close)
	require.NoError(t, file.Err)

	a := New(DefaultConfig())
	usage := map[string]int{}
	for _, m := range extractor.New().Matches(file) {
		p := a.Analyze(m.Pattern, m.Shape, file)
		switch m.Shape.(type) {
		case syntax.WrapperCall:
			usage["wrapper"] = p.Metadata.UsageCount
		case syntax.FunctionVar:
			usage["declaration"] = p.Metadata.UsageCount
		}
	}
	assert.Equal(t, map[string]int{"wrapper": 0, "declaration": 1}, usage)
}

func TestMaintainability(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 89.0, Maintainability(1, 10), 0.001)
	assert.InDelta(t, 0.0, Maintainability(150, 10), 0.001)
}
