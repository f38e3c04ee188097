package extractor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-patterns/internal/pattern"
	"github.com/mvp-joe/project-patterns/internal/program"
)

// Test Plan for Extractor:
// - Components, hooks and utilities are classified by naming convention
// - Interfaces, type aliases, enums and module constants get their structural types
// - Wrapper calls emit components, with placeholders for anonymous wrapped values
// - Stubs carry 1-based positions, a 12-char hash, ID name-hash and the stamped time
// - Hashes are deterministic across runs and change with location
// - Files without a tree emit nothing
// - ClassifyName edge cases (use, useless, _Private)

var stamp = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func extract(t *testing.T, relPath, src string) []pattern.Pattern {
	t.Helper()
	file := program.ParseSource(relPath, []byte(src))
	t.Cleanup(file.Close)
	require.NoError(t, file.Err)
	return New(WithTimestamp(stamp)).Extract(file)
}

func byName(patterns []pattern.Pattern) map[string]pattern.Pattern {
	out := make(map[string]pattern.Pattern, len(patterns))
	for _, p := range patterns {
		out[p.Name] = p
	}
	return out
}

func TestExtract_Classification(t *testing.T) {
	t.Parallel()

	src := `import React, { memo, forwardRef } from 'react';

export const Button = ({ label }: { label: string }) => <button>{label}</button>;
export function useToggle(initial = false) { return initial; }
function formatDate(d: Date) { return d.toISOString(); }
export interface ButtonProps { label: string }
export type Size = 'sm' | 'lg';
export enum Variant { Primary, Secondary }
export const MAX_ITEMS = 20;
export const Memoized = memo(Button);
export default memo(() => <div />);
export const Input = forwardRef((props, ref) => <input ref={ref} />);
export const Enhanced = withTheme(function () { return <span />; });
`
	patterns := extract(t, "src/ui.tsx", src)
	got := byName(patterns)

	expected := map[string]pattern.Type{
		"Button":            pattern.TypeComponent,
		"useToggle":         pattern.TypeCustomHook,
		"formatDate":        pattern.TypeUtilityFunction,
		"ButtonProps":       pattern.TypeInterface,
		"Size":              pattern.TypeDefinition,
		"Variant":           pattern.TypeEnum,
		"MAX_ITEMS":         pattern.TypeConstant,
		AnonymousMemo:       pattern.TypeComponent,
		AnonymousForwardRef: pattern.TypeComponent,
		AnonymousHOC:        pattern.TypeComponent,
	}
	for name, typ := range expected {
		p, ok := got[name]
		require.True(t, ok, "missing pattern %s", name)
		assert.Equal(t, typ, p.Type, name)
	}

	// memo(Button) is emitted under the wrapped name
	buttons := 0
	for _, p := range patterns {
		if p.Name == "Button" {
			buttons++
		}
	}
	assert.Equal(t, 2, buttons)
}

func TestExtract_StubFields(t *testing.T) {
	t.Parallel()

	src := "// header\n\nexport function useData() {\n  return 1;\n}\n"
	patterns := extract(t, "src/hooks.ts", src)
	require.Len(t, patterns, 1)

	p := patterns[0]
	assert.Equal(t, "useData", p.Name)
	assert.Equal(t, "src/hooks.ts", p.FilePath)
	assert.Equal(t, 3, p.LineNumber)
	assert.Equal(t, 8, p.ColumnNumber)
	assert.Len(t, p.Hash, 12)
	assert.Equal(t, "useData-"+p.Hash, p.ID)
	assert.Equal(t, stamp, p.Metadata.LastModified)
	assert.Equal(t, 1, p.Metadata.Complexity)
	assert.Empty(t, p.Dependencies)
	assert.NotNil(t, p.Dependencies)
	assert.Empty(t, p.Exports)
	assert.Empty(t, p.Metadata.Parameters)
	assert.Equal(t, pattern.Hash("function useData() {\n  return 1;\n}", "src/hooks.ts", 3, 8), p.Hash)
}

func TestExtract_HashDeterminism(t *testing.T) {
	t.Parallel()

	src := "export const helper = (x: number) => x * 2;\n"
	first := extract(t, "a.ts", src)
	second := extract(t, "a.ts", src)
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)

	moved := extract(t, "a.ts", "\n"+src)
	require.Len(t, moved, 1)
	assert.NotEqual(t, first[0].Hash, moved[0].Hash)

	renamedFile := extract(t, "b.ts", src)
	assert.NotEqual(t, first[0].Hash, renamedFile[0].Hash)
}

func TestExtract_ClassesAndMembers(t *testing.T) {
	t.Parallel()

	src := `export class ApiClient {
  fetchUser(id: string) { return id; }
}
export const utils = {
  slugify: (s: string) => s.toLowerCase(),
};
`
	got := byName(extract(t, "src/api.ts", src))
	assert.Equal(t, pattern.TypeUtilityFunction, got["ApiClient"].Type)
	assert.Equal(t, pattern.TypeUtilityFunction, got["fetchUser"].Type)
	assert.Equal(t, pattern.TypeUtilityFunction, got["slugify"].Type)
	assert.NotContains(t, got, "utils")
}

func TestExtract_NoTree(t *testing.T) {
	t.Parallel()

	file := &program.SourceFile{RelPath: "x.ts"}
	assert.Empty(t, New().Extract(file))
	assert.Empty(t, New().Matches(file))
}

func TestClassifyName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want pattern.Type
	}{
		{"Button", pattern.TypeComponent},
		{"UserCard2", pattern.TypeComponent},
		{"useState", pattern.TypeCustomHook},
		{"use", pattern.TypeUtilityFunction},
		{"useless", pattern.TypeUtilityFunction},
		{"_Private", pattern.TypeUtilityFunction},
		{"Has_Underscore", pattern.TypeUtilityFunction},
		{"formatDate", pattern.TypeUtilityFunction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyName(tt.name))
		})
	}
}
