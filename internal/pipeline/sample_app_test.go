package pipeline

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-patterns/internal/exports"
	"github.com/mvp-joe/project-patterns/internal/pattern"
)

// Test Plan for the sample application fixture:
// - Declaration files and node_modules are excluded; the barrel file yields no patterns
// - Components, wrapped components, hooks, utilities, interfaces, enums and constants
//   are extracted with their types, purposes and exports
// - Generic hooks keep their type parameters and annotated return type
// - Dynamic imports surface as dependencies and in the reverse dependency map

func TestAnalyze_SampleApp(t *testing.T) {
	t.Parallel()

	root := filepath.Join("..", "..", "testdata", "sample-app")
	res, err := Analyze(context.Background(), root, DefaultOptions())
	require.NoError(t, err)
	require.Empty(t, res.Errors)

	assert.Equal(t, 4, res.Stats.TotalFiles)
	assert.Equal(t, 4, res.Stats.ProcessedFiles)
	assert.Empty(t, patternsIn(res.Patterns, "src/index.ts"))
	assert.Empty(t, patternsIn(res.Patterns, "src/globals.d.ts"))

	t.Run("button", func(t *testing.T) {
		got := patternsIn(res.Patterns, "src/components/Button.tsx")
		require.Len(t, got, 3)

		props, button, wrapped := got[0], got[1], got[2]
		assert.Equal(t, "ButtonProps", props.Name)
		assert.Equal(t, pattern.TypeInterface, props.Type)
		assert.Equal(t, pattern.PurposeData, props.Metadata.Purpose)
		assert.Equal(t, map[string]string{
			"label":   "string",
			"variant": "'primary' | 'secondary'",
			"onClick": "() => void",
		}, props.Metadata.PropTypes)

		assert.Equal(t, "Button", button.Name)
		assert.Equal(t, pattern.TypeComponent, button.Type)
		assert.Equal(t, pattern.PurposeUI, button.Metadata.Purpose)
		assert.Equal(t, 2, button.Metadata.Complexity)
		require.Len(t, button.Metadata.Parameters, 1)
		assert.Equal(t, "object", button.Metadata.Parameters[0].Name)
		assert.Equal(t, "ButtonProps", button.Metadata.Parameters[0].Type)
		assert.Equal(t, []pattern.ExportInfo{{Type: pattern.ExportNamed, Name: "Button"}}, button.Exports)

		assert.Equal(t, "Button", wrapped.Name)
		assert.NotEqual(t, button.ID, wrapped.ID)
		assert.Equal(t, pattern.TypeComponent, wrapped.Type)
		assert.True(t, exports.IsDefaultExport(wrapped))
	})

	t.Run("hook", func(t *testing.T) {
		p := findPattern(t, res.Patterns, "useFetch")
		assert.Equal(t, pattern.TypeCustomHook, p.Type)
		assert.Equal(t, pattern.PurposeLogic, p.Metadata.Purpose)
		assert.Equal(t, "FetchState<T>", p.Metadata.ReturnType)
		assert.Equal(t, []string{"T"}, p.Metadata.GenericTypes)
		assert.Equal(t, []pattern.Parameter{{Name: "url", Type: "string", Required: true}}, p.Metadata.Parameters)

		state := findPattern(t, res.Patterns, "FetchState")
		assert.Equal(t, []string{"T"}, state.Metadata.GenericTypes)
		assert.Equal(t, "T | null", state.Metadata.PropTypes["data"])
	})

	t.Run("utilities", func(t *testing.T) {
		format := findPattern(t, res.Patterns, "formatCurrency")
		assert.Equal(t, pattern.TypeUtilityFunction, format.Type)
		assert.Equal(t, pattern.PurposeUtility, format.Metadata.Purpose)
		assert.Equal(t, "string", format.Metadata.ReturnType)
		require.Len(t, format.Metadata.Parameters, 2)
		assert.Equal(t, "Currency.USD", format.Metadata.Parameters[1].Default)

		digits := findPattern(t, res.Patterns, "MAX_FRACTION_DIGITS")
		assert.Equal(t, pattern.TypeConstant, digits.Type)
		assert.Equal(t, "number", digits.Metadata.ReturnType)

		currency := findPattern(t, res.Patterns, "Currency")
		assert.Equal(t, pattern.TypeEnum, currency.Type)
		assert.Equal(t, map[string]string{"USD": "string", "EUR": "string"}, currency.Metadata.PropTypes)

		chart := findPattern(t, res.Patterns, "loadChart")
		assert.Equal(t, []string{"./chart"}, chart.Dependencies)

		reverse, err := exports.BuildReverseDependencyMap(res.Patterns)
		require.NoError(t, err)
		assert.Equal(t, map[string][]string{"./chart": {chart.ID}}, reverse)
	})
}
