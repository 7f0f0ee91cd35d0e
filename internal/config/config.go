package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"carbon-scribe/project-portal/report-engine/internal/reports/export"

	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	Export  ExportConfig  `json:"export"`
	Logging LoggingConfig `json:"logging"`
}

// ExportConfig represents the export engine configuration
type ExportConfig struct {
	Format string        `json:"format"`
	Margin float64       `json:"margin"`
	Layout export.Config `json:"layout"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level string `json:"level"`
}

// LoadConfig loads configuration from file, an optional .env file and
// environment variables, in increasing order of precedence
func LoadConfig(configPath string) (*Config, error) {
	return load(configPath, ".env", os.LookupEnv)
}

func load(configPath, dotenvPath string, lookup func(string) (string, bool)) (*Config, error) {
	// Default config
	config := &Config{
		Export: ExportConfig{
			Format: "pdf",
			Margin: export.DefaultMargin,
			Layout: export.DefaultConfig(),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}

	// Load from file if exists
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	dotenv := map[string]string{}
	if dotenvPath != "" {
		values, err := godotenv.Read(dotenvPath)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read env file: %w", err)
		}
		if err == nil {
			dotenv = values
		}
	}

	// Process environment wins over .env
	env := func(key string) string {
		if v, ok := lookup(key); ok && v != "" {
			return v
		}
		return dotenv[key]
	}

	if err := overrideWithEnv(config, env); err != nil {
		return nil, err
	}
	return config, nil
}

func overrideWithEnv(config *Config, env func(string) string) error {
	if format := env("EXPORT_FORMAT"); format != "" {
		config.Export.Format = format
	}
	if pageSize := env("EXPORT_PAGE_SIZE"); pageSize != "" {
		config.Export.Layout.PageSize = pageSize
	}
	if orientation := env("EXPORT_ORIENTATION"); orientation != "" {
		config.Export.Layout.Orientation = orientation
	}
	if family := env("EXPORT_FONT_FAMILY"); family != "" {
		config.Export.Layout.FontFamily = family
	}
	if level := env("LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	floats := []struct {
		key    string
		target *float64
	}{
		{"EXPORT_MARGIN", &config.Export.Margin},
		{"EXPORT_FONT_SIZE", &config.Export.Layout.FontSize},
		{"EXPORT_TABLE_WIDTH", &config.Export.Layout.TableWidth},
		{"EXPORT_ROW_HEIGHT", &config.Export.Layout.RowHeight},
	}
	for _, f := range floats {
		raw := env(f.key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", f.key, raw, err)
		}
		*f.target = v
	}
	return nil
}

// ExportOptions returns the per-export options derived from the configuration
func (c *Config) ExportOptions() export.Options {
	return export.Options{Margin: c.Export.Margin}
}
