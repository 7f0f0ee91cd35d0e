package backend

import (
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PDFOptions configures the gofpdf backend
type PDFOptions struct {
	PageSize    string // A4, Letter, Legal
	Orientation string // portrait, landscape
	FontFamily  string
	FontSize    float64
	Margin      float64
	Title       string
	Author      string
}

// DefaultPDFOptions returns default PDF options
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		PageSize:    "A4",
		Orientation: "portrait",
		FontFamily:  "Helvetica",
		FontSize:    12,
		Margin:      40,
	}
}

// pdfOptionsFrom merges context options over the defaults
func pdfOptionsFrom(opts Options) PDFOptions {
	p := DefaultPDFOptions()
	if opts.PageSize != "" {
		p.PageSize = opts.PageSize
	}
	if opts.Orientation != "" {
		p.Orientation = opts.Orientation
	}
	if opts.FontFamily != "" {
		p.FontFamily = opts.FontFamily
	}
	if opts.FontSize > 0 {
		p.FontSize = opts.FontSize
	}
	if opts.Margin > 0 {
		p.Margin = opts.Margin
	}
	if v := opts.ExtraString("page_size"); v != "" {
		p.PageSize = v
	}
	if v := opts.ExtraString("orientation"); v != "" {
		p.Orientation = v
	}
	p.Title = opts.ExtraString("title")
	p.Author = opts.ExtraString("author")
	return p
}

// pdfContext renders primitives with gofpdf
type pdfContext struct {
	*emitter
	pdf     *gofpdf.Fpdf
	options PDFOptions
	tr      func(string) string
}

// NewPDFFactory returns a factory for gofpdf-backed contexts
func NewPDFFactory() Factory {
	return FactoryFunc(func(opts Options) (Context, error) {
		return NewPDFContext(pdfOptionsFrom(opts))
	})
}

// NewPDFContext opens a PDF document with one blank page
func NewPDFContext(options PDFOptions) (Context, error) {
	orientation := "P"
	if strings.EqualFold(options.Orientation, "landscape") {
		orientation = "L"
	}

	pdf := gofpdf.New(orientation, "pt", options.PageSize, "")
	pdf.SetMargins(options.Margin, options.Margin, options.Margin)
	// page breaks are driven by the layout cursor
	pdf.SetAutoPageBreak(false, options.Margin)
	if options.Title != "" {
		pdf.SetTitle(options.Title, true)
	}
	if options.Author != "" {
		pdf.SetAuthor(options.Author, true)
	}
	pdf.SetCreator("carbon-scribe report engine", true)
	pdf.AddPage()
	pdf.SetFont(options.FontFamily, "", options.FontSize)
	pdf.SetTextColor(0, 0, 0)

	if err := pdf.Error(); err != nil {
		return nil, err
	}

	return &pdfContext{
		emitter: newEmitter(),
		pdf:     pdf,
		options: options,
		tr:      pdf.UnicodeTranslatorFromDescriptor(""),
	}, nil
}

// check forwards the first gofpdf error to the event channel
func (c *pdfContext) check() {
	if c.pdf.Err() {
		c.fail(c.pdf.Error())
	}
}

func (c *pdfContext) SetFont(bold bool, size float64) {
	style := ""
	if bold {
		style = "B"
	}
	c.pdf.SetFont(c.options.FontFamily, style, size)
	c.check()
}

func (c *pdfContext) Text(x, y, w, h float64, text string, align Align) {
	c.pdf.SetXY(x, y)
	c.pdf.CellFormat(w, h, c.tr(text), "", 0, pdfAlign(align), false, 0, "")
	c.check()
}

func (c *pdfContext) TextWidth(text string) float64 {
	return c.pdf.GetStringWidth(c.tr(text))
}

// SplitText wraps on word boundaries, measuring with TextWidth so widths match
// the translated text Text draws. Words wider than a line are broken between
// runes.
func (c *pdfContext) SplitText(text string, width float64) []string {
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		if paragraph == "" || width <= 0 {
			lines = append(lines, paragraph)
			continue
		}
		lines = append(lines, c.wrap(paragraph, width)...)
	}
	return lines
}

func (c *pdfContext) wrap(paragraph string, width float64) []string {
	var lines []string
	line := ""
	for _, word := range strings.Fields(paragraph) {
		if line != "" {
			if candidate := line + " " + word; c.TextWidth(candidate) <= width {
				line = candidate
				continue
			}
			lines = append(lines, line)
			line = ""
		}
		for c.TextWidth(word) > width {
			head, tail := c.breakWord(word, width)
			lines = append(lines, head)
			word = tail
		}
		line = word
	}
	if line != "" || len(lines) == 0 {
		lines = append(lines, line)
	}
	return lines
}

// breakWord splits word after the longest rune prefix that fits width,
// keeping at least one rune in the head
func (c *pdfContext) breakWord(word string, width float64) (string, string) {
	runes := []rune(word)
	n := 1
	for n < len(runes) && c.TextWidth(string(runes[:n+1])) <= width {
		n++
	}
	return string(runes[:n]), string(runes[n:])
}

func (c *pdfContext) AddPage() {
	c.pdf.AddPage()
	c.check()
}

func (c *pdfContext) Page() PageMetrics {
	w, h := c.pdf.GetPageSize()
	left, top, right, bottom := c.pdf.GetMargins()
	return PageMetrics{
		Width:        w,
		Height:       h,
		MarginLeft:   left,
		MarginTop:    top,
		MarginRight:  right,
		MarginBottom: bottom,
	}
}

func (c *pdfContext) End() {
	c.check()
	c.finish(func(w io.Writer) error {
		return c.pdf.Output(w)
	}, nil)
}

func pdfAlign(a Align) string {
	switch a {
	case AlignCenter:
		return "C"
	case AlignRight:
		return "R"
	default:
		return "L"
	}
}
