package backend

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExcelOptions configures the spreadsheet backend
type ExcelOptions struct {
	SheetName   string
	Margin      float64
	FontSize    float64
	HeaderStyle *ExcelStyleConfig
	DataStyle   *ExcelStyleConfig
	AutoWidth   bool
}

// ExcelStyleConfig defines style for cells
type ExcelStyleConfig struct {
	FontBold  bool
	FontSize  int
	FontColor string
	FillColor string
	Alignment string // left, center, right
	Border    bool
}

// DefaultExcelOptions returns default Excel options
func DefaultExcelOptions() ExcelOptions {
	return ExcelOptions{
		SheetName: "Report",
		Margin:    40,
		FontSize:  12,
		AutoWidth: true,
		HeaderStyle: &ExcelStyleConfig{
			FontBold:  true,
			FontSize:  11,
			FontColor: "1F3864",
			FillColor: "D9E1F2",
			Border:    true,
		},
		DataStyle: &ExcelStyleConfig{
			FontSize:  11,
			Alignment: "left",
		},
	}
}

// excelContext lays primitives out on a single worksheet
type excelContext struct {
	*emitter
	grid    *grid
	options ExcelOptions
}

// NewExcelFactory returns a factory for excelize-backed contexts
func NewExcelFactory() Factory {
	return FactoryFunc(func(opts Options) (Context, error) {
		o := DefaultExcelOptions()
		if opts.Margin > 0 {
			o.Margin = opts.Margin
		}
		if opts.FontSize > 0 {
			o.FontSize = opts.FontSize
		}
		if name := opts.ExtraString("sheet_name"); name != "" {
			o.SheetName = name
		}
		return NewExcelContext(o), nil
	})
}

// NewExcelContext opens a spreadsheet context
func NewExcelContext(options ExcelOptions) Context {
	return &excelContext{
		emitter: newEmitter(),
		grid:    newGrid(defaultGridPage(options.Margin), options.FontSize),
		options: options,
	}
}

func (c *excelContext) SetFont(bold bool, size float64) { c.grid.setFont(bold, size) }

func (c *excelContext) Text(x, y, w, h float64, text string, align Align) {
	c.grid.text(x, y, w, text)
}

func (c *excelContext) TextWidth(text string) float64 { return c.grid.textWidth(text) }

func (c *excelContext) SplitText(text string, width float64) []string {
	return strings.Split(text, "\n")
}

func (c *excelContext) AddPage() { c.grid.addPage() }

func (c *excelContext) Page() PageMetrics { return c.grid.page }

func (c *excelContext) End() {
	file, err := c.build()
	if err != nil {
		c.fail(err)
	}
	c.finish(func(w io.Writer) error {
		return file.Write(w)
	}, func() {
		if file != nil {
			file.Close()
		}
	})
}

// build writes the collected cells into a new workbook
func (c *excelContext) build() (*excelize.File, error) {
	file := excelize.NewFile()
	sheet := c.options.SheetName
	if err := file.SetSheetName("Sheet1", sheet); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	boldStyle, err := c.createStyle(file, c.options.HeaderStyle)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	dataStyle, err := c.createStyle(file, c.options.DataStyle)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create data style: %w", err)
	}

	widths := make(map[int]float64)
	for _, cell := range c.grid.cells {
		name, err := excelize.CoordinatesToCellName(cell.Col, cell.Row)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to resolve cell: %w", err)
		}
		if err := file.SetCellValue(sheet, name, cell.Text); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to set cell value: %w", err)
		}
		style := dataStyle
		if cell.Bold {
			style = boldStyle
		}
		if style > 0 {
			if err := file.SetCellStyle(sheet, name, name, style); err != nil {
				file.Close()
				return nil, fmt.Errorf("failed to set cell style: %w", err)
			}
		}
		if w := float64(len(cell.Text)) * 1.2; w > widths[cell.Col] {
			widths[cell.Col] = w
		}
	}

	if c.options.AutoWidth {
		for col, width := range widths {
			name, err := excelize.ColumnNumberToName(col)
			if err != nil {
				file.Close()
				return nil, fmt.Errorf("failed to resolve column: %w", err)
			}
			// Min width 10, max width 50
			if width < 10 {
				width = 10
			}
			if width > 50 {
				width = 50
			}
			if err := file.SetColWidth(sheet, name, name, width); err != nil {
				file.Close()
				return nil, fmt.Errorf("failed to set column width: %w", err)
			}
		}
	}
	return file, nil
}

// createStyle creates an Excel style from config
func (c *excelContext) createStyle(file *excelize.File, config *ExcelStyleConfig) (int, error) {
	if config == nil {
		return 0, nil
	}
	style := &excelize.Style{
		Font: &excelize.Font{
			Bold: config.FontBold,
			Size: float64(config.FontSize),
		},
	}
	if config.FontColor != "" {
		style.Font.Color = config.FontColor
	}
	if config.FillColor != "" {
		style.Fill = excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{config.FillColor},
		}
	}
	if config.Alignment != "" {
		style.Alignment = &excelize.Alignment{Horizontal: config.Alignment}
	}
	if config.Border {
		style.Border = []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		}
	}
	return file.NewStyle(style)
}
