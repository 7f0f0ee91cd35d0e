package backend

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// CSVOptions configures CSV export behavior
type CSVOptions struct {
	Delimiter rune // Field delimiter (default: comma)
	UseCRLF   bool // Use \r\n for line terminator
	Margin    float64
	FontSize  float64
}

// DefaultCSVOptions returns default CSV export options
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		Delimiter: ',',
		Margin:    40,
		FontSize:  12,
	}
}

// csvContext flattens primitives into comma separated lines
type csvContext struct {
	*emitter
	grid    *grid
	options CSVOptions
}

// NewCSVFactory returns a factory for CSV contexts
func NewCSVFactory() Factory {
	return FactoryFunc(func(opts Options) (Context, error) {
		o := DefaultCSVOptions()
		if opts.Margin > 0 {
			o.Margin = opts.Margin
		}
		if opts.FontSize > 0 {
			o.FontSize = opts.FontSize
		}
		if d := opts.ExtraString("delimiter"); d != "" {
			r, size := utf8.DecodeRuneInString(d)
			if size != len(d) {
				return nil, fmt.Errorf("invalid delimiter %q", d)
			}
			o.Delimiter = r
		}
		if crlf, ok := opts.Extra["use_crlf"].(bool); ok {
			o.UseCRLF = crlf
		}
		return NewCSVContext(o), nil
	})
}

// NewCSVContext opens a CSV context
func NewCSVContext(options CSVOptions) Context {
	return &csvContext{
		emitter: newEmitter(),
		grid:    newGrid(defaultGridPage(options.Margin), options.FontSize),
		options: options,
	}
}

func (c *csvContext) SetFont(bold bool, size float64) { c.grid.setFont(bold, size) }

func (c *csvContext) Text(x, y, w, h float64, text string, align Align) {
	c.grid.text(x, y, w, text)
}

func (c *csvContext) TextWidth(text string) float64 { return c.grid.textWidth(text) }

func (c *csvContext) SplitText(text string, width float64) []string {
	return strings.Split(text, "\n")
}

func (c *csvContext) AddPage() { c.grid.addPage() }

func (c *csvContext) Page() PageMetrics { return c.grid.page }

func (c *csvContext) End() {
	records := c.grid.records()
	c.finish(func(w io.Writer) error {
		writer := csv.NewWriter(w)
		writer.Comma = c.options.Delimiter
		writer.UseCRLF = c.options.UseCRLF
		for _, record := range records {
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
		}
		writer.Flush()
		return writer.Error()
	}, nil)
}
