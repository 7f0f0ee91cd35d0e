package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"carbon-scribe/project-portal/report-engine/internal/reports/export/backend"
	"carbon-scribe/project-portal/report-engine/internal/reports/payload"
)

// TableOptions positions a table. Zero values use the cursor and the
// configured row height; Y can only move the cursor forward.
type TableOptions struct {
	X         float64
	Y         float64
	RowHeight float64
}

// WriteTable renders a header row in bold followed by the data rows in
// regular weight. Columns share the table width equally. Rows shorter than
// the header are padded with empty cells and longer rows are cut.
func (w *Writer) WriteTable(headers []string, rows [][]any, opts TableOptions) {
	if w.doc.Sealed() {
		return
	}

	rowHeight := opts.RowHeight
	if rowHeight <= 0 {
		rowHeight = w.cfg.RowHeight
	}
	x := w.page.MarginLeft
	if opts.X > 0 {
		x = opts.X
	}
	w.cursor.moveTo(opts.Y)

	n := len(headers)
	tableWidth := math.Min(w.cfg.TableWidth, w.page.Width-w.page.MarginRight-x)
	colWidth := 0.0
	if n > 0 {
		colWidth = tableWidth / float64(n)
	}

	block := TableBlock{
		Headers:     append(make([]string, 0, n), headers...),
		Rows:        make([][]string, 0, len(rows)),
		ColumnWidth: colWidth,
		RowHeight:   rowHeight,
	}

	size := w.cfg.FontSize
	w.setStyle(true, size)
	w.drawRow(x, colWidth, rowHeight, block.Headers)
	w.setStyle(false, size)

	for _, row := range rows {
		cells := make([]string, n)
		for i := 0; i < n && i < len(row); i++ {
			cells[i] = FormatCell(row[i])
		}
		if !w.fits(rowHeight) {
			w.breakPage()
			w.setStyle(true, size)
			w.drawRow(x, colWidth, rowHeight, block.Headers)
			w.setStyle(false, size)
		}
		w.drawRow(x, colWidth, rowHeight, cells)
		block.Rows = append(block.Rows, cells)
	}

	w.record(block)
}

// drawRow draws one table row and moves the cursor to the next one
func (w *Writer) drawRow(x, colWidth, rowHeight float64, cells []string) {
	y := w.place(rowHeight)
	w.cursor.X = x
	for i, cell := range cells {
		w.ctx.Text(x+float64(i)*colWidth, y, colWidth, rowHeight, cell, backend.AlignLeft)
	}
	w.cursor.advance(rowHeight)
	w.cursor.X = w.page.MarginLeft
}

// FormatCell converts a loosely-typed value to display text. Missing values
// become "", numbers and dates are written verbatim and nested structures are
// serialized as compact JSON.
func FormatCell(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format(time.RFC3339)
	case *time.Time:
		if v == nil || v.IsZero() {
			return ""
		}
		return v.Format(time.RFC3339)
	case payload.Record, []any, map[string]any:
		return toJSON(v)
	case error:
		if isNilPointer(v) {
			return ""
		}
		return v.Error()
	case fmt.Stringer:
		if isNilPointer(v) {
			return ""
		}
		return v.String()
	}

	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return ""
		}
		return FormatCell(rv.Elem().Interface())
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		if rv.Kind() != reflect.Struct && rv.Kind() != reflect.Array && rv.IsNil() {
			return ""
		}
		return toJSON(val)
	default:
		return fmt.Sprint(val)
	}
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}

// toJSON serializes nested values without HTML escaping
func toJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimRight(buf.String(), "\n")
}

// headerRow converts record values to table cells in header order
func headerRow(rec payload.Record, headers []string) []any {
	row := make([]any, len(headers))
	for i, h := range headers {
		row[i], _ = rec.Get(h)
	}
	return row
}
