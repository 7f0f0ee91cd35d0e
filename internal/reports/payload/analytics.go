package payload

import "strings"

// ReportType tags the analytics report sub-variants
type ReportType string

const (
	ReportTypeKPI         ReportType = "kpi"
	ReportTypePredictive  ReportType = "predictive"
	ReportTypeCrossModule ReportType = "cross-module"
	ReportTypeAnomalies   ReportType = "anomalies"
)

// ParseReportType converts a caller-supplied report type. Tags match
// exactly; any other spelling is an unrecognized type.
func ParseReportType(s string) ReportType {
	return ReportType(s)
}

// Analytics is one analytics report. The set of implementations is closed;
// unrecognized report types decode to UnknownReport.
type Analytics interface {
	Type() ReportType
	Raw() Record
}

// KPIReport summarizes tracked KPIs
type KPIReport struct {
	raw         Record
	TotalKPIs   int
	Categories  []string
	Performance Record
}

// PredictiveReport summarizes predictive model quality
type PredictiveReport struct {
	raw             Record
	TotalModels     int
	ActiveModels    int
	AverageAccuracy float64
	Categories      []CategoryPerformance
}

// CategoryPerformance is the model performance of one category
type CategoryPerformance struct {
	Category        string
	Models          int
	AverageAccuracy float64
}

// CrossModuleReport compares metrics across portal modules
type CrossModuleReport struct {
	raw         Record
	Comparisons []Comparison
}

// Comparison is a single cross-module correlation
type Comparison struct {
	Key         string
	Title       string
	Correlation float64
	Insights    []string
}

// AnomaliesReport lists detected anomalies
type AnomaliesReport struct {
	raw        Record
	Total      int
	BySeverity SeverityCounts
	Anomalies  []Anomaly
}

// SeverityCounts counts anomalies per severity
type SeverityCounts struct {
	Critical int
	High     int
	Medium   int
	Low      int
}

// Anomaly is a single detected anomaly. Values are kept as supplied.
type Anomaly struct {
	ID          any
	Type        any
	Severity    any
	Description any
	Value       any
	Expected    any
	Deviation   any
	Timestamp   any
}

// UnknownReport carries a report of an unrecognized type
type UnknownReport struct {
	raw        Record
	ReportType ReportType
}

func (r KPIReport) Type() ReportType         { return ReportTypeKPI }
func (r PredictiveReport) Type() ReportType  { return ReportTypePredictive }
func (r CrossModuleReport) Type() ReportType { return ReportTypeCrossModule }
func (r AnomaliesReport) Type() ReportType   { return ReportTypeAnomalies }
func (r UnknownReport) Type() ReportType     { return r.ReportType }

func (r KPIReport) Raw() Record         { return r.raw }
func (r PredictiveReport) Raw() Record  { return r.raw }
func (r CrossModuleReport) Raw() Record { return r.raw }
func (r AnomaliesReport) Raw() Record   { return r.raw }
func (r UnknownReport) Raw() Record     { return r.raw }

// CrossModuleComparisons lists the fixed comparison keys in render order
var CrossModuleComparisons = []struct {
	Key   string
	Title string
}{
	{Key: "salesInventory", Title: "Sales vs Inventory"},
	{Key: "financeOperations", Title: "Finance vs Operations"},
}

// DecodeAnalytics builds the typed report for reportType from raw. When
// reportType is empty the raw "reportType" field is used. Missing or
// malformed fields decode to zero values.
func DecodeAnalytics(reportType ReportType, raw Record) Analytics {
	if reportType == "" {
		reportType = ParseReportType(raw.Text("reportType", "report_type"))
	}

	switch reportType {
	case ReportTypeKPI:
		return decodeKPI(raw)
	case ReportTypePredictive:
		return decodePredictive(raw)
	case ReportTypeCrossModule:
		return decodeCrossModule(raw)
	case ReportTypeAnomalies:
		return decodeAnomalies(raw)
	default:
		return UnknownReport{raw: raw, ReportType: reportType}
	}
}

func decodeKPI(raw Record) KPIReport {
	r := KPIReport{
		raw:        raw,
		TotalKPIs:  raw.Int("totalKPIs", "totalKpis", "total_kpis"),
		Categories: raw.Strings("categories"),
	}
	if perf, ok := raw.Record("performance", "performanceMetrics", "performance_metrics"); ok {
		r.Performance = perf
	}
	return r
}

func decodePredictive(raw Record) PredictiveReport {
	r := PredictiveReport{
		raw:          raw,
		TotalModels:  raw.Int("totalModels", "total_models"),
		ActiveModels: raw.Int("activeModels", "active_models"),
	}
	r.AverageAccuracy, _ = raw.Float("averageAccuracy", "average_accuracy")

	keys := []string{"categoryPerformance", "category_performance"}
	if byCategory, ok := raw.Record(keys...); ok {
		for _, e := range byCategory.Entries() {
			stats, _ := Normalize(e.Value).(Record)
			r.Categories = append(r.Categories, categoryPerformance(e.Key, stats))
		}
		return r
	}
	for _, stats := range raw.Records(keys...) {
		r.Categories = append(r.Categories, categoryPerformance(stats.Text("category", "name"), stats))
	}
	return r
}

func categoryPerformance(category string, stats Record) CategoryPerformance {
	cp := CategoryPerformance{
		Category: category,
		Models:   stats.Int("models", "count", "modelCount", "model_count"),
	}
	cp.AverageAccuracy, _ = stats.Float("averageAccuracy", "avgAccuracy", "accuracy", "average_accuracy")
	return cp
}

func decodeCrossModule(raw Record) CrossModuleReport {
	r := CrossModuleReport{raw: raw}
	for _, c := range CrossModuleComparisons {
		section, ok := raw.Record(c.Key)
		if !ok {
			continue
		}
		cmp := Comparison{
			Key:      c.Key,
			Title:    c.Title,
			Insights: section.Strings("insights"),
		}
		cmp.Correlation, _ = section.Float("correlation")
		r.Comparisons = append(r.Comparisons, cmp)
	}
	return r
}

func decodeAnomalies(raw Record) AnomaliesReport {
	r := AnomaliesReport{raw: raw}
	for _, a := range raw.Records("anomalies") {
		r.Anomalies = append(r.Anomalies, Anomaly{
			ID:          a.Value("id"),
			Type:        a.Value("type"),
			Severity:    a.Value("severity"),
			Description: a.Value("description"),
			Value:       a.Value("value"),
			Expected:    a.Value("expected", "expectedValue", "expected_value"),
			Deviation:   a.Value("deviation"),
			Timestamp:   a.Value("timestamp", "detectedAt", "detected_at"),
		})
	}

	r.Total = len(r.Anomalies)
	if raw.Has("totalAnomalies", "total_anomalies") {
		r.Total = raw.Int("totalAnomalies", "total_anomalies")
	}

	if counts, ok := raw.Record("bySeverity", "by_severity"); ok {
		r.BySeverity = SeverityCounts{
			Critical: counts.Int("critical"),
			High:     counts.Int("high"),
			Medium:   counts.Int("medium"),
			Low:      counts.Int("low"),
		}
		return r
	}
	for _, a := range r.Anomalies {
		switch strings.ToLower(textOf(a.Severity)) {
		case "critical":
			r.BySeverity.Critical++
		case "high":
			r.BySeverity.High++
		case "medium":
			r.BySeverity.Medium++
		case "low":
			r.BySeverity.Low++
		}
	}
	return r
}
