package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"carbon-scribe/project-portal/report-engine/internal/config"
	"carbon-scribe/project-portal/report-engine/internal/reports/batch"
	"carbon-scribe/project-portal/report-engine/internal/reports/export"
	"carbon-scribe/project-portal/report-engine/internal/reports/export/backend"
	"carbon-scribe/project-portal/report-engine/internal/reports/payload"
)

// app carries the state shared by all subcommands
type app struct {
	configPath string
	format     string
	margin     float64
	verbose    bool
	in         string
	out        string
	extra      map[string]string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "report-export",
		Short:        "Render report payloads into PDF, Excel or CSV documents",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "path to a JSON config file")
	flags.StringVarP(&a.format, "format", "f", "", "output format: pdf, excel or csv (overrides config)")
	flags.Float64Var(&a.margin, "margin", 0, "page margin in points (overrides config)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVarP(&a.in, "in", "i", "-", "input JSON file, - for stdin")
	flags.StringVarP(&a.out, "out", "o", "-", "output file, - for stdout")
	flags.StringToStringVar(&a.extra, "opt", nil, "backend option passed through untouched (key=value)")

	root.AddCommand(a.newGenericCmd())
	root.AddCommand(a.newDashboardCmd())
	root.AddCommand(a.newAnalyticsCmd())
	root.AddCommand(a.newBatchCmd())

	return root
}

func (a *app) setup() error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.format != "" {
		cfg.Export.Format = a.format
	}
	if a.margin > 0 {
		cfg.Export.Margin = a.margin
	}
	logger, err := newLogger(cfg.Logging, a.verbose)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) newGenericCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generic",
		Short: "Export an array, record or scalar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.readInput(cmd.InOrStdin())
			if err != nil {
				return err
			}
			g, err := payload.DecodeGeneric(data)
			if err != nil {
				return fmt.Errorf("failed to decode payload: %w", err)
			}
			return a.export(cmd, func(e *export.Exporter) ([]byte, error) {
				return e.ExportGeneric(cmd.Context(), g, a.options())
			})
		},
	}
}

func (a *app) newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Export a dashboard with its widgets and KPIs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.readInput(cmd.InOrStdin())
			if err != nil {
				return err
			}
			d, err := payload.DecodeDashboard(data)
			if err != nil {
				return err
			}
			return a.export(cmd, func(e *export.Exporter) ([]byte, error) {
				return e.ExportDashboard(cmd.Context(), d, a.options())
			})
		},
	}
}

func (a *app) newAnalyticsCmd() *cobra.Command {
	var reportType string

	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Export an analytics report (kpi, predictive, cross-module, anomalies)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.readInput(cmd.InOrStdin())
			if err != nil {
				return err
			}
			v, err := payload.DecodeValue(data)
			if err != nil {
				return fmt.Errorf("failed to decode payload: %w", err)
			}
			return a.export(cmd, func(e *export.Exporter) ([]byte, error) {
				return e.ExportAnalytics(cmd.Context(), v, reportType, a.options())
			})
		},
	}
	cmd.Flags().StringVarP(&reportType, "type", "t", "", "report type, read from the payload when empty")
	return cmd
}

func (a *app) newBatchCmd() *cobra.Command {
	var (
		manifest string
		dir      string
		workers  int
	)
	execConfig := batch.DefaultExecutorConfig()

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Run every export listed in a JSON manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := batch.LoadManifest(manifest)
			if err != nil {
				return err
			}
			execConfig.MaxConcurrent = workers
			execConfig.DefaultFormat = backend.Format(a.cfg.Export.Format)

			executor := batch.NewExecutor(a.cfg.Export.Layout, batch.DirSink{Dir: dir}, a.logger, execConfig)
			results, err := executor.ExecuteAll(cmd.Context(), m.Jobs)
			for _, r := range results {
				if r == nil {
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s%s\n", r.Job, r.Status, r.Location, r.Error)
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&manifest, "manifest", "m", "", "path to the JSON job manifest")
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "output directory")
	cmd.Flags().IntVarP(&workers, "workers", "w", execConfig.MaxConcurrent, "maximum concurrent exports")
	cmd.Flags().DurationVar(&execConfig.Timeout, "timeout", execConfig.Timeout, "per-job timeout")
	cmd.Flags().Int64Var(&execConfig.MaxFileSizeBytes, "max-size", execConfig.MaxFileSizeBytes, "maximum output size in bytes")
	_ = cmd.MarkFlagRequired("manifest")
	return cmd
}

func (a *app) options() export.Options {
	opts := a.cfg.ExportOptions()
	if len(a.extra) > 0 {
		opts.Extra = make(map[string]any, len(a.extra))
		for k, v := range a.extra {
			opts.Extra[k] = v
		}
	}
	return opts
}

func (a *app) export(cmd *cobra.Command, run func(e *export.Exporter) ([]byte, error)) error {
	exporter, err := export.NewExporterForFormat(backend.Format(a.cfg.Export.Format), a.cfg.Export.Layout, a.logger)
	if err != nil {
		return err
	}
	out, err := run(exporter)
	if err != nil {
		return err
	}
	if a.out == "" || a.out == "-" {
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}
	if err := os.WriteFile(a.out, out, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	a.logger.Info("Export written",
		zap.String("path", a.out),
		zap.String("format", a.cfg.Export.Format),
		zap.Int("bytes", len(out)))
	return nil
}

func (a *app) readInput(stdin io.Reader) ([]byte, error) {
	if a.in == "" || a.in == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(a.in)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}
