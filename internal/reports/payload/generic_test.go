package payload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsGeneric(t *testing.T) {
	tests := []struct {
		name  string
		input any
		check func(t *testing.T, g Generic)
	}{
		{
			name:  "array of maps",
			input: []map[string]any{{"a": 1, "b": 2}, {"a": 3, "b": 4}},
			check: func(t *testing.T, g Generic) {
				rows, ok := g.(Rows)
				require.True(t, ok)
				require.Len(t, rows, 2)
				assert.Equal(t, []string{"a", "b"}, rows[0].Keys())
			},
		},
		{
			name:  "array of scalars",
			input: []any{"x", 2},
			check: func(t *testing.T, g Generic) {
				rows, ok := g.(Rows)
				require.True(t, ok)
				require.Len(t, rows, 2)
				assert.Equal(t, []string{"value"}, rows[0].Keys())
			},
		},
		{
			name:  "record",
			input: NewRecord("k", "v"),
			check: func(t *testing.T, g Generic) {
				rec, ok := g.(Record)
				require.True(t, ok)
				assert.Equal(t, 1, rec.Len())
			},
		},
		{
			name:  "scalar",
			input: 42,
			check: func(t *testing.T, g Generic) {
				assert.Equal(t, Scalar{Value: 42}, g)
			},
		},
		{
			name:  "nil",
			input: nil,
			check: func(t *testing.T, g Generic) {
				assert.Equal(t, Scalar{}, g)
			},
		},
		{
			name:  "already generic",
			input: Rows{},
			check: func(t *testing.T, g Generic) {
				assert.Equal(t, Rows{}, g)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, AsGeneric(tt.input))
		})
	}
}

func TestDecodeGeneric(t *testing.T) {
	g, err := DecodeGeneric([]byte(`[{"b": 1, "a": 2}]`))
	require.NoError(t, err)

	rows, ok := g.(Rows)
	require.True(t, ok)
	assert.Equal(t, []string{"b", "a"}, rows[0].Keys())

	g, err = DecodeGeneric([]byte(`"hello"`))
	require.NoError(t, err)
	assert.Equal(t, Scalar{Value: "hello"}, g)

	_, err = DecodeGeneric([]byte(`{`))
	assert.Error(t, err)
}

func TestDecodeDashboard(t *testing.T) {
	d, err := DecodeDashboard([]byte(`{
		"name": "Ops",
		"created_at": "2024-01-02T03:04:05Z",
		"is_public": true,
		"refresh_interval": 30,
		"widgets": [{"id": "w1", "type": "chart", "title": "Yield", "config": {"x": 1}}],
		"kpis": [{"name": "Credits", "category": "carbon", "current_value": 12.5}]
	}`))
	require.NoError(t, err)

	assert.Equal(t, "Ops", d.Name)
	assert.True(t, d.IsPublic)
	assert.Equal(t, 30, d.RefreshInterval)
	require.Len(t, d.Widgets, 1)
	assert.Equal(t, WidgetTypeChart, d.Widgets[0].Type)
	require.Len(t, d.KPIs, 1)
	require.NotNil(t, d.KPIs[0].CurrentValue)
	assert.Equal(t, 12.5, *d.KPIs[0].CurrentValue)
	assert.Nil(t, d.KPIs[0].TargetValue)

	_, err = DecodeDashboard([]byte(`[]`))
	assert.Error(t, err)
}
