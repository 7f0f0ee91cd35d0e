package export

import (
	"fmt"
	"time"

	"carbon-scribe/project-portal/report-engine/internal/reports/export/backend"
	"carbon-scribe/project-portal/report-engine/internal/reports/payload"
)

var (
	widgetHeaders = []string{"ID", "Type", "Title", "Config"}
	kpiHeaders    = []string{"Name", "Category", "Current Value", "Target Value", "Trend"}
)

// FormatDashboard renders a dashboard summary followed by its widgets and
// KPIs. Empty widget or KPI lists omit their section entirely.
func FormatDashboard(w *Writer, d payload.Dashboard) {
	name := d.Name
	if name == "" {
		name = "Dashboard"
	}
	w.WriteHeading(name, w.cfg.HeadingSize, backend.AlignCenter)
	w.Advance(1)

	w.WriteKeyValue("Description", orNA(d.Description))
	w.WriteKeyValue("Created", formatDate(d.CreatedAt))
	w.WriteKeyValue("Updated", formatDate(d.UpdatedAt))
	w.WriteKeyValue("Public", yesNo(d.IsPublic))
	w.WriteKeyValue("Default", yesNo(d.IsDefault))
	w.WriteKeyValue("Refresh Interval", fmt.Sprintf("%d seconds", d.RefreshInterval))

	if len(d.Widgets) > 0 {
		w.Advance(1)
		w.WriteHeading("Widgets", w.cfg.SubheadingSize, backend.AlignLeft)
		rows := make([][]any, len(d.Widgets))
		for i, wg := range d.Widgets {
			rows[i] = []any{wg.ID, string(wg.Type), wg.Title, wg.Config}
		}
		w.WriteTable(widgetHeaders, rows, TableOptions{})
	}

	if len(d.KPIs) > 0 {
		w.Advance(1)
		w.WriteHeading("KPIs", w.cfg.SubheadingSize, backend.AlignLeft)
		rows := make([][]any, len(d.KPIs))
		for i, k := range d.KPIs {
			rows[i] = []any{k.Name, k.Category, k.CurrentValue, k.TargetValue, k.Trend}
		}
		w.WriteTable(kpiHeaders, rows, TableOptions{})
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("2006-01-02 15:04:05")
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
