package export

import (
	"fmt"
	"strings"

	"carbon-scribe/project-portal/report-engine/internal/reports/export/backend"
	"carbon-scribe/project-portal/report-engine/internal/reports/payload"
)

// AnalyticsTitle heads every recognized analytics report
const AnalyticsTitle = "Analytics Report"

var (
	metricHeaders     = []string{"Metric", "Value"}
	predictiveHeaders = []string{"Category", "Models", "Average Accuracy"}
	anomalyHeaders    = []string{"ID", "Type", "Severity", "Description", "Value", "Expected", "Deviation", "Timestamp"}
)

// FormatAnalytics renders an analytics report by type. Unrecognized report
// types are rendered exactly like a generic export of the raw payload.
func FormatAnalytics(w *Writer, report payload.Analytics) {
	switch r := report.(type) {
	case payload.KPIReport:
		writeAnalyticsHeading(w, r)
		writeKPIReport(w, r)
	case payload.PredictiveReport:
		writeAnalyticsHeading(w, r)
		writePredictiveReport(w, r)
	case payload.CrossModuleReport:
		writeAnalyticsHeading(w, r)
		writeCrossModuleReport(w, r)
	case payload.AnomaliesReport:
		writeAnalyticsHeading(w, r)
		writeAnomaliesReport(w, r)
	default:
		FormatGeneric(w, report.Raw())
	}
}

func writeAnalyticsHeading(w *Writer, report payload.Analytics) {
	w.WriteHeading(AnalyticsTitle, w.cfg.HeadingSize, backend.AlignCenter)
	w.WriteKeyValue("Report Type", string(report.Type()))
	w.Advance(1)
}

func writeKPIReport(w *Writer, r payload.KPIReport) {
	w.WriteKeyValue("Total KPIs", fmt.Sprint(r.TotalKPIs))
	w.WriteKeyValue("Categories", orNA(strings.Join(r.Categories, ", ")))

	if r.Performance.Len() == 0 {
		return
	}
	w.Advance(1)
	w.WriteHeading("Performance Metrics", w.cfg.SubheadingSize, backend.AlignLeft)
	rows := make([][]any, 0, r.Performance.Len())
	for _, e := range r.Performance.Entries() {
		rows = append(rows, []any{e.Key, e.Value})
	}
	w.WriteTable(metricHeaders, rows, TableOptions{})
}

func writePredictiveReport(w *Writer, r payload.PredictiveReport) {
	w.WriteKeyValue("Total Models", fmt.Sprint(r.TotalModels))
	w.WriteKeyValue("Active Models", fmt.Sprint(r.ActiveModels))
	w.WriteKeyValue("Average Accuracy", formatPercent(r.AverageAccuracy))

	if len(r.Categories) == 0 {
		return
	}
	w.Advance(1)
	w.WriteHeading("Model Performance by Category", w.cfg.SubheadingSize, backend.AlignLeft)
	rows := make([][]any, len(r.Categories))
	for i, c := range r.Categories {
		rows[i] = []any{c.Category, c.Models, formatPercent(c.AverageAccuracy)}
	}
	w.WriteTable(predictiveHeaders, rows, TableOptions{})
}

func writeCrossModuleReport(w *Writer, r payload.CrossModuleReport) {
	if len(r.Comparisons) == 0 {
		w.WriteLine("No cross-module comparisons available", LineOptions{})
		return
	}
	for i, c := range r.Comparisons {
		if i > 0 {
			w.Advance(1)
		}
		w.WriteHeading(c.Title, w.cfg.SubheadingSize, backend.AlignLeft)
		w.WriteKeyValue("Correlation", fmt.Sprintf("%.2f", c.Correlation))
		for _, insight := range c.Insights {
			w.WriteBullet(insight)
		}
	}
}

func writeAnomaliesReport(w *Writer, r payload.AnomaliesReport) {
	w.WriteKeyValue("Total Anomalies", fmt.Sprint(r.Total))
	w.WriteKeyValue("Critical", fmt.Sprint(r.BySeverity.Critical))
	w.WriteKeyValue("High", fmt.Sprint(r.BySeverity.High))
	w.WriteKeyValue("Medium", fmt.Sprint(r.BySeverity.Medium))
	w.WriteKeyValue("Low", fmt.Sprint(r.BySeverity.Low))

	if len(r.Anomalies) == 0 {
		return
	}
	w.Advance(1)
	w.WriteHeading("Detected Anomalies", w.cfg.SubheadingSize, backend.AlignLeft)
	rows := make([][]any, len(r.Anomalies))
	for i, a := range r.Anomalies {
		rows[i] = []any{a.ID, a.Type, a.Severity, a.Description, a.Value, a.Expected, a.Deviation, a.Timestamp}
	}
	w.WriteTable(anomalyHeaders, rows, TableOptions{})
}

// formatPercent renders an accuracy given either as a ratio or a percentage
func formatPercent(v float64) string {
	if v > 0 && v <= 1 {
		v *= 100
	}
	return fmt.Sprintf("%.2f%%", v)
}
