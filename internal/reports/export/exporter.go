package export

import (
	"context"
	"fmt"

	"carbon-scribe/project-portal/report-engine/internal/reports/export/backend"
	"carbon-scribe/project-portal/report-engine/internal/reports/payload"

	"go.uber.org/zap"
)

// Exporter is the public entry point of the engine. Every call opens its own
// document session and backend context, so one Exporter can serve concurrent
// exports.
type Exporter struct {
	factory backend.Factory
	cfg     Config
	logger  *zap.Logger
}

// NewExporter creates an exporter rendering through factory
func NewExporter(factory backend.Factory, cfg Config, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{
		factory: factory,
		cfg:     cfg.withDefaults(),
		logger:  logger,
	}
}

// NewExporterForFormat creates an exporter for a named output format
func NewExporterForFormat(format backend.Format, cfg Config, logger *zap.Logger) (*Exporter, error) {
	factory, err := backend.ForFormat(format)
	if err != nil {
		return nil, err
	}
	return NewExporter(factory, cfg, logger), nil
}

// ExportGeneric renders an array, record or scalar and returns the document bytes
func (e *Exporter) ExportGeneric(ctx context.Context, data any, opts Options) ([]byte, error) {
	res, err := e.RenderGeneric(ctx, data, opts)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// ExportDashboard renders a dashboard and returns the document bytes
func (e *Exporter) ExportDashboard(ctx context.Context, dashboard payload.Dashboard, opts Options) ([]byte, error) {
	res, err := e.RenderDashboard(ctx, dashboard, opts)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// ExportAnalytics renders an analytics payload of the given report type and
// returns the document bytes
func (e *Exporter) ExportAnalytics(ctx context.Context, analytics any, reportType string, opts Options) ([]byte, error) {
	res, err := e.RenderAnalytics(ctx, analytics, reportType, opts)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// RenderGeneric is ExportGeneric returning the full session result
func (e *Exporter) RenderGeneric(ctx context.Context, data any, opts Options) (*Result, error) {
	g := payload.AsGeneric(data)
	return e.render(ctx, "generic", opts, func(w *Writer) {
		FormatGeneric(w, g)
	})
}

// RenderDashboard is ExportDashboard returning the full session result
func (e *Exporter) RenderDashboard(ctx context.Context, dashboard payload.Dashboard, opts Options) (*Result, error) {
	return e.render(ctx, "dashboard", opts, func(w *Writer) {
		FormatDashboard(w, dashboard)
	})
}

// RenderAnalytics is ExportAnalytics returning the full session result.
// Payloads that are not records can only be rendered generically unless the
// report type is recognized, in which case they decode to an empty report.
func (e *Exporter) RenderAnalytics(ctx context.Context, analytics any, reportType string, opts Options) (*Result, error) {
	rt := payload.ParseReportType(reportType)
	rec, isRecord := payload.Normalize(analytics).(payload.Record)

	var format Formatter
	switch report := payload.DecodeAnalytics(rt, rec).(type) {
	case payload.UnknownReport:
		g := payload.AsGeneric(analytics)
		if isRecord {
			g = rec
		}
		format = func(w *Writer) { FormatGeneric(w, g) }
	default:
		format = func(w *Writer) { FormatAnalytics(w, report) }
	}
	return e.render(ctx, "analytics", opts, format)
}

func (e *Exporter) render(ctx context.Context, kind string, opts Options, format Formatter) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger := e.logger.With(zap.String("export", kind))
	s, err := openSession(e.factory, e.cfg, opts, logger)
	if err != nil {
		return nil, err
	}

	res, err := s.run(ctx, format)
	if err != nil {
		return nil, fmt.Errorf("failed to export %s: %w", kind, err)
	}
	return res, nil
}
