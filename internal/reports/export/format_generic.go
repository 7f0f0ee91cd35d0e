package export

import (
	"carbon-scribe/project-portal/report-engine/internal/reports/export/backend"
	"carbon-scribe/project-portal/report-engine/internal/reports/payload"
)

// GenericTitle heads every generic export
const GenericTitle = "Data Export"

// FormatGeneric renders an arbitrary payload: arrays become a table keyed by
// the first element, records become key-value lines in insertion order and
// anything else is written as a single line.
func FormatGeneric(w *Writer, data payload.Generic) {
	w.WriteHeading(GenericTitle, w.cfg.HeadingSize, backend.AlignCenter)
	w.Advance(1)

	switch d := data.(type) {
	case payload.Rows:
		writeRows(w, d)
	case payload.Record:
		writeRecord(w, d)
	case payload.Scalar:
		w.WriteLine(FormatCell(d.Value), LineOptions{})
	default:
		w.WriteLine(FormatCell(d), LineOptions{})
	}
}

func writeRows(w *Writer, rows payload.Rows) {
	var headers []string
	if len(rows) > 0 {
		headers = rows[0].Keys()
	}
	cells := make([][]any, len(rows))
	for i, rec := range rows {
		cells[i] = headerRow(rec, headers)
	}
	w.WriteTable(headers, cells, TableOptions{})
}

func writeRecord(w *Writer, rec payload.Record) {
	for _, e := range rec.Entries() {
		w.WriteKeyValue(e.Key, FormatCell(e.Value))
	}
}
