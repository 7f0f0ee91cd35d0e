// Package backend provides the rendering backends used by the export engine.
//
// A backend Context accepts drawing primitives while a document is built and,
// once End is called, emits the finished document as a stream of Events on a
// single channel: zero or more EventData chunks followed by exactly one
// EventEnd or EventError. Errors detected while primitives are being applied
// are queued on the same channel, so they are always observed before any data.
package backend

import (
	"errors"
	"fmt"
	"strings"
)

// Format identifies a backend output format
type Format string

const (
	FormatPDF   Format = "pdf"
	FormatExcel Format = "excel"
	FormatCSV   Format = "csv"
)

// ErrUnknownFormat is returned when no backend exists for a format
var ErrUnknownFormat = errors.New("unknown export format")

// Align is the horizontal alignment of a text cell
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// EventKind discriminates backend events
type EventKind int

const (
	EventData EventKind = iota
	EventEnd
	EventError
)

// Event is a single emission from a backend context
type Event struct {
	Kind  EventKind
	Chunk []byte
	Err   error
}

// PageMetrics describes the page geometry in points
type PageMetrics struct {
	Width        float64
	Height       float64
	MarginLeft   float64
	MarginTop    float64
	MarginRight  float64
	MarginBottom float64
}

// ContentWidth returns the width between the left and right margins
func (p PageMetrics) ContentWidth() float64 {
	return p.Width - p.MarginLeft - p.MarginRight
}

// Bottom returns the lowest y coordinate content may reach on a page
func (p PageMetrics) Bottom() float64 {
	return p.Height - p.MarginBottom
}

// Context is one open rendering context. It is owned by a single document
// session and is not safe for concurrent use while primitives are applied.
type Context interface {
	// SetFont switches the active font weight and size
	SetFont(bold bool, size float64)
	// Text draws text in a box of width w and height h at page position x, y
	Text(x, y, w, h float64, text string, align Align)
	// TextWidth measures text with the active font
	TextWidth(text string) float64
	// SplitText breaks text into lines no wider than width
	SplitText(text string, width float64) []string
	// AddPage starts a new page
	AddPage()
	// Page returns the page geometry
	Page() PageMetrics
	// End finishes the document and starts emitting it
	End()
	// Abort discards the document and emits err as the terminal event
	Abort(err error)
	// Events returns the emission channel. It is closed after the terminal event.
	Events() <-chan Event
}

// Options configures a backend context
type Options struct {
	Margin      float64
	FontFamily  string
	FontSize    float64
	PageSize    string
	Orientation string
	// Extra holds caller options the engine does not interpret
	Extra map[string]any
}

// ExtraString returns a string-valued extra option
func (o Options) ExtraString(key string) string {
	if o.Extra == nil {
		return ""
	}
	if s, ok := o.Extra[key].(string); ok {
		return s
	}
	return ""
}

// Factory opens backend contexts
type Factory interface {
	Open(opts Options) (Context, error)
}

// FactoryFunc adapts a function to the Factory interface
type FactoryFunc func(opts Options) (Context, error)

// Open calls f(opts)
func (f FactoryFunc) Open(opts Options) (Context, error) {
	return f(opts)
}

// ForFormat returns the factory for an output format
func ForFormat(format Format) (Factory, error) {
	switch Format(strings.ToLower(string(format))) {
	case FormatPDF, "":
		return NewPDFFactory(), nil
	case FormatExcel, "xlsx":
		return NewExcelFactory(), nil
	case FormatCSV:
		return NewCSVFactory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// ContentType returns the MIME type of a format
func ContentType(format Format) string {
	switch Format(strings.ToLower(string(format))) {
	case FormatExcel, "xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatCSV:
		return "text/csv"
	default:
		return "application/pdf"
	}
}
