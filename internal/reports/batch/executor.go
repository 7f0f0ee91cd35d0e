package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"carbon-scribe/project-portal/report-engine/internal/reports/export"
	"carbon-scribe/project-portal/report-engine/internal/reports/export/backend"
	"carbon-scribe/project-portal/report-engine/internal/reports/payload"
)

// JobKind selects the exporter entry point of a job
type JobKind string

const (
	JobGeneric   JobKind = "generic"
	JobDashboard JobKind = "dashboard"
	JobAnalytics JobKind = "analytics"
)

// Execution statuses
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ErrFileTooLarge is returned when an export exceeds the configured size limit
var ErrFileTooLarge = errors.New("export exceeds maximum file size")

// Job is one export in a batch manifest
type Job struct {
	Name       string          `json:"name"`
	Kind       JobKind         `json:"kind"`
	Format     backend.Format  `json:"format,omitempty"`
	ReportType string          `json:"report_type,omitempty"`
	Margin     float64         `json:"margin,omitempty"`
	Options    map[string]any  `json:"options,omitempty"`
	Input      string          `json:"input,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// Manifest is a list of export jobs
type Manifest struct {
	Jobs []Job `json:"jobs"`
}

// LoadManifest reads a JSON manifest. Relative job inputs are resolved
// against the manifest directory.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	dir := filepath.Dir(path)
	for i := range m.Jobs {
		if in := m.Jobs[i].Input; in != "" && !filepath.IsAbs(in) {
			m.Jobs[i].Input = filepath.Join(dir, in)
		}
	}
	return &m, nil
}

// Sink stores a finished export and returns its location
type Sink interface {
	Store(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// DirSink writes exports into a directory
type DirSink struct {
	Dir string
}

// Store writes data to Dir/name
func (s DirSink) Store(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return path, nil
}

// ExecutionResult represents the result of one job
type ExecutionResult struct {
	ExecutionID   uuid.UUID `json:"execution_id"`
	Job           string    `json:"job"`
	Status        string    `json:"status"`
	Location      string    `json:"location,omitempty"`
	FileSizeBytes int64     `json:"file_size_bytes"`
	StartedAt     time.Time `json:"started_at"`
	CompletedAt   time.Time `json:"completed_at"`
	DurationMs    int64     `json:"duration_ms"`
	Error         string    `json:"error,omitempty"`
}

// ExecutorConfig configuration for the executor
type ExecutorConfig struct {
	MaxConcurrent    int            `json:"max_concurrent"`
	Timeout          time.Duration  `json:"timeout"`
	MaxFileSizeBytes int64          `json:"max_file_size_bytes"`
	DefaultFormat    backend.Format `json:"default_format"`
}

// DefaultExecutorConfig returns default configuration
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		MaxConcurrent:    4,
		Timeout:          5 * time.Minute,
		MaxFileSizeBytes: 100 * 1024 * 1024, // 100MB
		DefaultFormat:    backend.FormatPDF,
	}
}

// Executor runs export jobs against per-format exporters
type Executor struct {
	layout export.Config
	sink   Sink
	logger *zap.Logger
	config ExecutorConfig

	mu        sync.Mutex
	exporters map[backend.Format]*export.Exporter
}

// NewExecutor creates a new executor
func NewExecutor(layout export.Config, sink Sink, logger *zap.Logger, config ExecutorConfig) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 1
	}
	if config.DefaultFormat == "" {
		config.DefaultFormat = backend.FormatPDF
	}
	return &Executor{
		layout:    layout,
		sink:      sink,
		logger:    logger,
		config:    config,
		exporters: make(map[backend.Format]*export.Exporter),
	}
}

func (e *Executor) exporter(format backend.Format) (*export.Exporter, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ex, ok := e.exporters[format]; ok {
		return ex, nil
	}
	ex, err := export.NewExporterForFormat(format, e.layout, e.logger)
	if err != nil {
		return nil, err
	}
	e.exporters[format] = ex
	return ex, nil
}

// Execute runs one job and stores its output
func (e *Executor) Execute(ctx context.Context, job Job) (*ExecutionResult, error) {
	executionID := uuid.New()
	startTime := time.Now()

	format := job.Format
	if format == "" {
		format = e.config.DefaultFormat
	}

	e.logger.Info("Starting export job",
		zap.String("execution_id", executionID.String()),
		zap.String("job", job.Name),
		zap.String("kind", string(job.Kind)),
		zap.String("format", string(format)))

	result := &ExecutionResult{
		ExecutionID: executionID,
		Job:         job.Name,
		StartedAt:   startTime,
	}
	fail := func(err error) (*ExecutionResult, error) {
		result.Status = StatusFailed
		result.Error = err.Error()
		result.CompletedAt = time.Now()
		result.DurationMs = time.Since(startTime).Milliseconds()
		e.logger.Error("Export job failed",
			zap.String("execution_id", executionID.String()),
			zap.String("job", job.Name),
			zap.Error(err))
		return result, err
	}

	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	exporter, err := e.exporter(format)
	if err != nil {
		return fail(err)
	}

	data, err := e.run(ctx, exporter, job)
	if err != nil {
		return fail(fmt.Errorf("export generation failed: %w", err))
	}

	result.FileSizeBytes = int64(len(data))
	if e.config.MaxFileSizeBytes > 0 && result.FileSizeBytes > e.config.MaxFileSizeBytes {
		return fail(ErrFileTooLarge)
	}

	location, err := e.sink.Store(ctx, FileName(job.Name, format), data, backend.ContentType(format))
	if err != nil {
		return fail(err)
	}

	result.Location = location
	result.Status = StatusCompleted
	result.CompletedAt = time.Now()
	result.DurationMs = time.Since(startTime).Milliseconds()

	e.logger.Info("Export job completed",
		zap.String("execution_id", executionID.String()),
		zap.String("location", location),
		zap.Int64("file_size_bytes", result.FileSizeBytes),
		zap.Int64("duration_ms", result.DurationMs))

	return result, nil
}

// ExecuteAll runs jobs with at most MaxConcurrent in flight. Results keep the
// job order; a failed job does not stop the others.
func (e *Executor) ExecuteAll(ctx context.Context, jobs []Job) ([]*ExecutionResult, error) {
	results := make([]*ExecutionResult, len(jobs))
	errs := make([]error, len(jobs))
	sem := make(chan struct{}, e.config.MaxConcurrent)

	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func(i int, job Job) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i], errs[i] = e.Execute(ctx, job)
		}(i, job)
	}
	wg.Wait()

	return results, errors.Join(errs...)
}

func (e *Executor) run(ctx context.Context, exporter *export.Exporter, job Job) ([]byte, error) {
	raw, err := job.payload()
	if err != nil {
		return nil, err
	}
	opts := export.Options{Margin: job.Margin, Extra: job.Options}

	switch job.Kind {
	case JobGeneric, "":
		g, err := payload.DecodeGeneric(raw)
		if err != nil {
			return nil, err
		}
		return exporter.ExportGeneric(ctx, g, opts)
	case JobDashboard:
		d, err := payload.DecodeDashboard(raw)
		if err != nil {
			return nil, err
		}
		return exporter.ExportDashboard(ctx, d, opts)
	case JobAnalytics:
		v, err := payload.DecodeValue(raw)
		if err != nil {
			return nil, err
		}
		return exporter.ExportAnalytics(ctx, v, job.ReportType, opts)
	default:
		return nil, fmt.Errorf("unknown job kind: %s", job.Kind)
	}
}

// payload returns the inline payload or the contents of Input
func (j Job) payload() ([]byte, error) {
	if len(j.Payload) > 0 {
		return j.Payload, nil
	}
	if j.Input == "" {
		return nil, fmt.Errorf("job %q has neither payload nor input", j.Name)
	}
	data, err := os.ReadFile(j.Input)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}

// FileName returns the output file name of a job
func FileName(name string, format backend.Format) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "export"
	}
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, name)
	return name + GetFileExtension(format)
}

// GetFileExtension returns the file extension for a format. Formats match
// case-insensitively, as in backend.ForFormat.
func GetFileExtension(format backend.Format) string {
	switch backend.Format(strings.ToLower(string(format))) {
	case backend.FormatCSV:
		return ".csv"
	case backend.FormatExcel, "xlsx":
		return ".xlsx"
	case backend.FormatPDF, "":
		return ".pdf"
	default:
		return ""
	}
}
