package export

import (
	"carbon-scribe/project-portal/report-engine/internal/reports/export/backend"
	"carbon-scribe/project-portal/report-engine/internal/reports/payload"
)

// DefaultMargin is the page margin in points when the caller sets none
const DefaultMargin = 40.0

// Config holds the engine-wide layout defaults shared by all sessions
type Config struct {
	FontFamily     string  `json:"font_family"`
	FontSize       float64 `json:"font_size"`
	HeadingSize    float64 `json:"heading_size"`
	SubheadingSize float64 `json:"subheading_size"`
	TableWidth     float64 `json:"table_width"`
	RowHeight      float64 `json:"row_height"`
	LineSpacing    float64 `json:"line_spacing"`
	PageSize       string  `json:"page_size"`
	Orientation    string  `json:"orientation"`
}

// DefaultConfig returns the default layout configuration
func DefaultConfig() Config {
	return Config{
		FontFamily:     "Helvetica",
		FontSize:       12,
		HeadingSize:    20,
		SubheadingSize: 16,
		TableWidth:     500,
		RowHeight:      20,
		LineSpacing:    1.25,
		PageSize:       "A4",
		Orientation:    "portrait",
	}
}

// withDefaults fills unset fields from DefaultConfig
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.FontFamily == "" {
		c.FontFamily = d.FontFamily
	}
	if c.FontSize <= 0 {
		c.FontSize = d.FontSize
	}
	if c.HeadingSize <= 0 {
		c.HeadingSize = d.HeadingSize
	}
	if c.SubheadingSize <= 0 {
		c.SubheadingSize = d.SubheadingSize
	}
	if c.TableWidth <= 0 {
		c.TableWidth = d.TableWidth
	}
	if c.RowHeight <= 0 {
		c.RowHeight = d.RowHeight
	}
	if c.LineSpacing <= 0 {
		c.LineSpacing = d.LineSpacing
	}
	if c.PageSize == "" {
		c.PageSize = d.PageSize
	}
	if c.Orientation == "" {
		c.Orientation = d.Orientation
	}
	return c
}

// Options are the per-export caller options. Margin is the only key the
// engine reads; everything in Extra is handed to the backend untouched.
type Options struct {
	Margin float64        `json:"margin,omitempty"`
	Extra  map[string]any `json:"-"`
}

// margin resolves the effective margin: Margin, then a numeric "margin"
// entry in Extra, then DefaultMargin.
func (o Options) margin() float64 {
	if o.Margin > 0 {
		return o.Margin
	}
	if o.Extra != nil {
		if m, ok := payload.Number(o.Extra["margin"]); ok && m > 0 {
			return m
		}
	}
	return DefaultMargin
}

// backendOptions merges the caller options with the session defaults
func (c Config) backendOptions(o Options) backend.Options {
	extra := make(map[string]any, len(o.Extra))
	for k, v := range o.Extra {
		extra[k] = v
	}
	return backend.Options{
		Margin:      o.margin(),
		FontFamily:  c.FontFamily,
		FontSize:    c.FontSize,
		PageSize:    c.PageSize,
		Orientation: c.Orientation,
		Extra:       extra,
	}
}
