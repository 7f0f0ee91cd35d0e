package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"carbon-scribe/project-portal/report-engine/internal/reports/export/backend"
	"carbon-scribe/project-portal/report-engine/internal/reports/payload"
)

func newTestExporter(factory backend.Factory) *Exporter {
	return NewExporter(factory, Config{}, zap.NewNop())
}

func TestExportGenericRows(t *testing.T) {
	factory := &fakeFactory{}
	exporter := newTestExporter(factory)

	rows := []map[string]any{{"a": 1, "b": 2}, {"a": 3, "b": 4}}
	res, err := exporter.RenderGeneric(context.Background(), rows, Options{})
	require.NoError(t, err)

	tables := res.Document.Tables()
	require.Len(t, tables, 1)
	assert.Equal(t, []string{"a", "b"}, tables[0].Headers)
	assert.Equal(t, [][]string{{"1", "2"}, {"3", "4"}}, tables[0].Rows)
	assert.NotEmpty(t, res.SessionID)
	assert.Equal(t, "Data Export\na\nb\n1\n2\n3\n4\n", string(res.Data))
	assert.True(t, res.Document.Sealed())
}

func TestExportGenericEmptyRecord(t *testing.T) {
	factory := &fakeFactory{}
	exporter := newTestExporter(factory)

	res, err := exporter.RenderGeneric(context.Background(), map[string]any{}, Options{})
	require.NoError(t, err)

	assert.Empty(t, res.Document.Fields())
	assert.NotEmpty(t, res.Data)
	assert.Equal(t, GenericTitle, res.Document.Texts()[0].Content)
}

func TestExportReturnsBytes(t *testing.T) {
	exporter := newTestExporter(&fakeFactory{})
	ctx := context.Background()

	data, err := exporter.ExportGeneric(ctx, "hello", Options{})
	require.NoError(t, err)
	assert.Equal(t, "Data Export\nhello\n", string(data))

	data, err = exporter.ExportDashboard(ctx, payload.Dashboard{Name: "Ops"}, Options{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("Ops\n")))

	data, err = exporter.ExportAnalytics(ctx, map[string]any{"totalKPIs": 2}, "kpi", Options{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte(AnalyticsTitle+"\n")))
}

func TestExportAnalyticsUnknownTypeFallsBackToGeneric(t *testing.T) {
	exporter := newTestExporter(&fakeFactory{})
	ctx := context.Background()
	raw := payload.NewRecord("reportType", "unknown-value", "score", 9)

	analytics, err := exporter.RenderAnalytics(ctx, raw, "unknown-value", Options{})
	require.NoError(t, err)
	generic, err := exporter.RenderGeneric(ctx, raw, Options{})
	require.NoError(t, err)

	assert.Equal(t, generic.Data, analytics.Data)
	assert.Equal(t, generic.Document.Blocks(), analytics.Document.Blocks())
}

func TestExportAnalyticsNonRecordPayload(t *testing.T) {
	exporter := newTestExporter(&fakeFactory{})
	ctx := context.Background()
	list := []any{payload.NewRecord("x", 1), payload.NewRecord("x", 2)}

	res, err := exporter.RenderAnalytics(ctx, list, "other", Options{})
	require.NoError(t, err)
	tables := res.Document.Tables()
	require.Len(t, tables, 1)
	assert.Equal(t, [][]string{{"1"}, {"2"}}, tables[0].Rows)

	res, err = exporter.RenderAnalytics(ctx, list, "anomalies", Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Document.Tables())
}

func TestExportAnalyticsReadsTypeFromPayload(t *testing.T) {
	exporter := newTestExporter(&fakeFactory{})

	res, err := exporter.RenderAnalytics(context.Background(),
		payload.NewRecord("reportType", "anomalies", "anomalies", []any{}), "", Options{})
	require.NoError(t, err)

	assert.Equal(t, AnalyticsTitle, res.Document.Texts()[0].Content)
}

func TestExportBackendErrorDuringBuild(t *testing.T) {
	boom := errors.New("emission failed")
	factory := &fakeFactory{configure: func(c *fakeContext) {
		c.failOn = "a"
		c.failErr = boom
	}}
	exporter := newTestExporter(factory)

	data, err := exporter.ExportGeneric(context.Background(), []map[string]any{{"a": 1}}, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, data)
}

func TestExportBackendErrorDuringEmission(t *testing.T) {
	boom := errors.New("disk full")
	factory := &fakeFactory{configure: func(c *fakeContext) {
		c.endErr = boom
	}}
	exporter := newTestExporter(factory)

	res, err := exporter.RenderGeneric(context.Background(), "x", Options{})
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, res)
}

func TestExportEmptyOutputIsRejected(t *testing.T) {
	factory := &fakeFactory{configure: func(c *fakeContext) {
		c.empty = true
	}}
	exporter := newTestExporter(factory)

	_, err := exporter.ExportGeneric(context.Background(), "x", Options{})
	assert.ErrorIs(t, err, ErrEmptyOutput)
}

func TestExportFormatterPanicIsRejected(t *testing.T) {
	factory := &fakeFactory{configure: func(c *fakeContext) {
		c.panicOn = "boom"
	}}
	exporter := newTestExporter(factory)

	data, err := exporter.ExportGeneric(context.Background(), "boom", Options{})
	assert.ErrorIs(t, err, ErrFormatterPanic)
	assert.Nil(t, data)
	assert.True(t, factory.last().closed)
}

func TestExportOpenError(t *testing.T) {
	factory := new(MockFactory)
	openErr := errors.New("no fonts")
	factory.On("Open", mock.AnythingOfType("backend.Options")).Return(nil, openErr)

	exporter := newTestExporter(factory)
	_, err := exporter.ExportGeneric(context.Background(), "x", Options{})

	assert.ErrorIs(t, err, openErr)
	factory.AssertExpectations(t)
}

func TestExportCancelledContextDoesNotOpen(t *testing.T) {
	factory := new(MockFactory)
	exporter := newTestExporter(factory)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := exporter.ExportGeneric(ctx, "x", Options{})
	assert.ErrorIs(t, err, context.Canceled)
	factory.AssertNotCalled(t, "Open", mock.Anything)
}

func TestExportOptions(t *testing.T) {
	tests := []struct {
		name   string
		opts   Options
		margin float64
	}{
		{"default margin", Options{}, 40},
		{"explicit margin", Options{Margin: 20}, 20},
		{"margin in extra", Options{Extra: map[string]any{"margin": 30}}, 30},
		{"invalid extra margin", Options{Extra: map[string]any{"margin": "wide"}}, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory := new(MockFactory)
			ctx := newFakeContext()
			factory.On("Open", mock.MatchedBy(func(o backend.Options) bool {
				return o.Margin == tt.margin
			})).Return(ctx, nil)

			exporter := newTestExporter(factory)
			_, err := exporter.ExportGeneric(context.Background(), "x", tt.opts)
			require.NoError(t, err)
			factory.AssertExpectations(t)
		})
	}

	t.Run("extra keys pass through", func(t *testing.T) {
		factory := &fakeFactory{}
		exporter := newTestExporter(factory)
		extra := map[string]any{"sheet_name": "Q1", "custom": 1}

		_, err := exporter.ExportGeneric(context.Background(), "x", Options{Extra: extra})
		require.NoError(t, err)

		got := factory.options[0]
		assert.Equal(t, "Q1", got.Extra["sheet_name"])
		assert.Equal(t, 1, got.Extra["custom"])
		assert.Equal(t, "Helvetica", got.FontFamily)
		assert.Equal(t, "A4", got.PageSize)
	})
}

func TestExportMarginMovesContent(t *testing.T) {
	factory := &fakeFactory{}
	exporter := newTestExporter(factory)

	_, err := exporter.ExportGeneric(context.Background(), "x", Options{Margin: 72})
	require.NoError(t, err)

	ops := factory.last().textOps()
	require.NotEmpty(t, ops)
	assert.Equal(t, 72.0, ops[0].X)
	assert.Equal(t, 72.0, ops[0].Y)
}

func TestExportSessionsAreIndependent(t *testing.T) {
	exporter := newTestExporter(backend.NewCSVFactory())

	var wg sync.WaitGroup
	results := make([][]byte, 16)
	errs := make([]error, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rows := []map[string]any{{"n": i}}
			results[i], errs[i] = exporter.ExportGeneric(context.Background(), rows, Options{})
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, fmt.Sprintf("Data Export\nn\n%d\n", i), string(results[i]))
	}
}

func TestExportCSVEndToEnd(t *testing.T) {
	exporter := newTestExporter(backend.NewCSVFactory())

	data, err := exporter.ExportGeneric(context.Background(),
		[]map[string]any{{"a": 1, "b": 2}, {"a": 3, "b": 4}}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "Data Export\na,b\n1,2\n3,4\n", string(data))
}

func TestExportExcelEndToEnd(t *testing.T) {
	exporter, err := NewExporterForFormat(backend.FormatExcel, Config{}, nil)
	require.NoError(t, err)

	data, err := exporter.ExportGeneric(context.Background(),
		[]map[string]any{{"a": 1, "b": 2}, {"a": 3, "b": 4}}, Options{})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Report")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Data Export"}, {"a", "b"}, {"1", "2"}, {"3", "4"}}, rows)
}

func TestExportPDFEndToEnd(t *testing.T) {
	exporter, err := NewExporterForFormat(backend.FormatPDF, Config{}, nil)
	require.NoError(t, err)

	rows := make([]map[string]any, 120)
	for i := range rows {
		rows[i] = map[string]any{"id": i, "project": fmt.Sprintf("Project %d", i)}
	}
	res, err := exporter.RenderGeneric(context.Background(), rows, Options{})
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(res.Data, []byte("%PDF")))
	assert.Greater(t, res.Pages, 1)
	assert.Len(t, res.Document.Tables()[0].Rows, 120)
}

func TestExportPDFDashboardAndAnalytics(t *testing.T) {
	exporter, err := NewExporterForFormat("pdf", Config{}, nil)
	require.NoError(t, err)
	ctx := context.Background()

	data, err := exporter.ExportDashboard(ctx, testDashboard(), Options{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	raw := payload.NewRecord("salesInventory", payload.NewRecord("correlation", 0.8, "insights", []any{"café sales lead stock"}))
	data, err = exporter.ExportAnalytics(ctx, raw, "cross-module", Options{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestNewExporterForUnknownFormat(t *testing.T) {
	_, err := NewExporterForFormat("docx", Config{}, nil)
	assert.ErrorIs(t, err, backend.ErrUnknownFormat)
}
