package mcputils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for CoerceBindArguments:
// - Properly typed arguments bind unchanged
// - String-encoded numbers, booleans and JSON arrays are decoded
// - Comma-separated strings fall back to slices
// - Invalid JSON arrays fall back to comma splitting
// - Missing arguments leave zero values
// - Non-numeric string for an int field is an error

// mockArgumentGetter implements ArgumentGetter for testing
type mockArgumentGetter struct {
	args map[string]interface{}
}

func (m *mockArgumentGetter) GetArguments() map[string]interface{} {
	return m.args
}

type findArgs struct {
	Name         string   `json:"name"`
	Types        []string `json:"types,omitempty"`
	ExportedOnly bool     `json:"exported_only"`
	Limit        int      `json:"limit,omitempty"`
	MinQuality   float64  `json:"min_quality,omitempty"`
}

func TestCoerceBindArguments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args map[string]interface{}
		want findArgs
	}{
		{
			name: "already proper types",
			args: map[string]interface{}{
				"name":          "Widget",
				"types":         []string{"component", "custom-hook"},
				"exported_only": true,
				"limit":         10,
				"min_quality":   75.5,
			},
			want: findArgs{Name: "Widget", Types: []string{"component", "custom-hook"}, ExportedOnly: true, Limit: 10, MinQuality: 75.5},
		},
		{
			name: "string encoded values",
			args: map[string]interface{}{
				"types":         `["interface", "type-definition"]`,
				"exported_only": "true",
				"limit":         "25",
				"min_quality":   "60.25",
			},
			want: findArgs{Types: []string{"interface", "type-definition"}, ExportedOnly: true, Limit: 25, MinQuality: 60.25},
		},
		{
			name: "comma separated fallback",
			args: map[string]interface{}{"types": "component,custom-hook"},
			want: findArgs{Types: []string{"component", "custom-hook"}},
		},
		{
			name: "invalid JSON array falls back to comma split",
			args: map[string]interface{}{"types": "[component"},
			want: findArgs{Types: []string{"[component"}},
		},
		{
			name: "empty JSON array",
			args: map[string]interface{}{"types": "[]"},
			want: findArgs{Types: []string{}},
		},
		{
			name: "unicode names",
			args: map[string]interface{}{"name": "ÜberWidget"},
			want: findArgs{Name: "ÜberWidget"},
		},
		{
			name: "missing arguments",
			args: nil,
			want: findArgs{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got findArgs
			require.NoError(t, CoerceBindArguments(&mockArgumentGetter{args: tt.args}, &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoerceBindArguments_InvalidNumber(t *testing.T) {
	t.Parallel()

	var got findArgs
	err := CoerceBindArguments(&mockArgumentGetter{args: map[string]interface{}{"limit": "many"}}, &got)
	assert.Error(t, err)
}
