package export

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carbon-scribe/project-portal/report-engine/internal/reports/payload"
)

func TestWriteTable(t *testing.T) {
	w, ctx, doc := newTestWriter()

	w.WriteTable([]string{"a", "b"}, [][]any{{1, 2}, {3, 4}}, TableOptions{})

	tables := doc.Tables()
	require.Len(t, tables, 1)
	assert.Equal(t, []string{"a", "b"}, tables[0].Headers)
	assert.Equal(t, [][]string{{"1", "2"}, {"3", "4"}}, tables[0].Rows)
	assert.Equal(t, 250.0, tables[0].ColumnWidth)
	assert.Equal(t, 20.0, tables[0].RowHeight)

	ops := ctx.textOps()
	require.Len(t, ops, 6)
	assert.Equal(t, []string{"a", "b", "1", "2", "3", "4"}, ctx.texts())
	assert.True(t, ops[0].Bold)
	assert.True(t, ops[1].Bold)
	for _, op := range ops[2:] {
		assert.False(t, op.Bold)
	}
	assert.Equal(t, 40.0, ops[2].X)
	assert.Equal(t, 290.0, ops[3].X)
	assert.Equal(t, 40.0, ops[0].Y)
	assert.Equal(t, 60.0, ops[2].Y)
	assert.Equal(t, 80.0, ops[4].Y)

	assert.Equal(t, 60.0, w.Cursor().Y)
	assert.Equal(t, 40.0, w.Cursor().X)
}

func TestWriteTableCellCoercion(t *testing.T) {
	w, _, doc := newTestWriter()
	var missing any

	w.WriteTable([]string{"w", "x", "y", "z"}, [][]any{{nil, missing, 0, "x"}}, TableOptions{})

	tables := doc.Tables()
	require.Len(t, tables, 1)
	assert.Equal(t, [][]string{{"", "", "0", "x"}}, tables[0].Rows)
}

func TestWriteTableRowShapes(t *testing.T) {
	w, _, doc := newTestWriter()

	w.WriteTable([]string{"a", "b", "c"}, [][]any{{1}, {1, 2, 3, 4}, {}}, TableOptions{})

	rows := doc.Tables()[0].Rows
	assert.Equal(t, [][]string{{"1", "", ""}, {"1", "2", "3"}, {"", "", ""}}, rows)
}

func TestWriteTableWithoutRows(t *testing.T) {
	w, ctx, doc := newTestWriter()

	w.WriteTable([]string{"a", "b"}, nil, TableOptions{})

	assert.Equal(t, []string{"a", "b"}, ctx.texts())
	assert.Equal(t, 20.0, w.Cursor().Y)
	require.Len(t, doc.Tables(), 1)
	assert.Empty(t, doc.Tables()[0].Rows)
}

func TestWriteTableWithoutHeaders(t *testing.T) {
	w, ctx, doc := newTestWriter()

	w.WriteTable(nil, [][]any{{1}, {2}}, TableOptions{})

	assert.Empty(t, ctx.texts())
	table := doc.Tables()[0]
	assert.Empty(t, table.Headers)
	assert.Len(t, table.Rows, 2)
	assert.Equal(t, 60.0, w.Cursor().Y)
}

func TestWriteTableOptions(t *testing.T) {
	w, ctx, _ := newTestWriter()
	w.WriteLine("intro", LineOptions{})

	w.WriteTable([]string{"a"}, [][]any{{"x"}}, TableOptions{X: 100, Y: 50, RowHeight: 30})

	ops := ctx.textOps()
	require.Len(t, ops, 3)
	assert.Equal(t, 100.0, ops[1].X)
	assert.Equal(t, 90.0, ops[1].Y)
	assert.Equal(t, 120.0, ops[2].Y)
	assert.Equal(t, 110.0, w.Cursor().Y)

	// a y behind the cursor is ignored
	w.WriteTable([]string{"b"}, nil, TableOptions{Y: 10})
	assert.Equal(t, 150.0, ctx.textOps()[3].Y)
}

func TestWriteTableClampsToPageWidth(t *testing.T) {
	w, _, doc := newTestWriter()
	w.page.Width = 300

	w.WriteTable([]string{"a", "b"}, nil, TableOptions{})

	assert.Equal(t, 110.0, doc.Tables()[0].ColumnWidth)
}

func TestWriteTableRepeatsHeaderAfterPageBreak(t *testing.T) {
	w, ctx, doc := newTestWriter()
	rows := make([][]any, 50)
	for i := range rows {
		rows[i] = []any{i}
	}

	w.WriteTable([]string{"n"}, rows, TableOptions{})

	assert.Equal(t, 1, ctx.pages())
	headers := 0
	for _, op := range ctx.textOps() {
		if op.Text == "n" {
			headers++
			assert.True(t, op.Bold)
		}
	}
	assert.Equal(t, 2, headers)
	assert.Len(t, doc.Tables()[0].Rows, 50)

	var order []string
	for _, op := range ctx.textOps() {
		if op.Text != "n" {
			order = append(order, op.Text)
		}
	}
	assert.Equal(t, "0", order[0])
	assert.Equal(t, "49", order[49])
}

type stringerID struct{ id string }

func (s *stringerID) String() string { return "id-" + s.id }

func TestFormatCell(t *testing.T) {
	when := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	score := 4.5
	var nilScore *float64
	var nilStringer *stringerID

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "text", "text"},
		{"zero", 0, "0"},
		{"int64", int64(-7), "-7"},
		{"float", 2.5, "2.5"},
		{"whole float", 3.0, "3"},
		{"json number", json.Number("1.10"), "1.10"},
		{"bool", true, "true"},
		{"time", when, "2024-05-06T07:08:09Z"},
		{"zero time", time.Time{}, ""},
		{"pointer", &score, "4.5"},
		{"nil pointer", nilScore, ""},
		{"stringer", &stringerID{id: "9"}, "id-9"},
		{"nil stringer", nilStringer, ""},
		{"error", errors.New("bad"), "bad"},
		{"list", []any{1, "a", nil}, `[1,"a",null]`},
		{"map", map[string]any{"b": 1, "a": "<x>"}, `{"a":"<x>","b":1}`},
		{"record", payload.NewRecord("z", 1, "a", 2), `{"z":1,"a":2}`},
		{"nested record", []any{payload.NewRecord("k", "v")}, `[{"k":"v"}]`},
		{"typed slice", []int{1, 2}, `[1,2]`},
		{"nil slice", []int(nil), ""},
		{"struct", struct {
			A int `json:"a"`
		}{A: 1}, `{"a":1}`},
		{"uint8", uint8(9), "9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCell(tt.in))
		})
	}
}
