package export

import (
	"carbon-scribe/project-portal/report-engine/internal/reports/export/backend"
)

// Writer is the primitive writer of one session. It owns the cursor and font
// state and is the only component that talks to the backend context. Once the
// session seals the document every call is a no-op.
type Writer struct {
	ctx     backend.Context
	doc     *Document
	cfg     Config
	page    backend.PageMetrics
	cursor  Cursor
	style   Style
	pageTop float64
	pages   int
}

// LineOptions configures WriteLine
type LineOptions struct {
	Bold   bool
	Size   float64
	Inline bool
}

func newWriter(ctx backend.Context, doc *Document, cfg Config) *Writer {
	page := ctx.Page()
	w := &Writer{
		ctx:    ctx,
		doc:    doc,
		cfg:    cfg,
		page:   page,
		cursor: Cursor{X: page.MarginLeft},
		style:  Style{Size: cfg.FontSize},
		pages:  1,
	}
	ctx.SetFont(false, cfg.FontSize)
	return w
}

// Cursor returns the current layout position
func (w *Writer) Cursor() Cursor {
	return w.cursor
}

// Style returns the active font state
func (w *Writer) Style() Style {
	return w.style
}

// Pages returns the number of pages started so far
func (w *Writer) Pages() int {
	return w.pages
}

// WriteHeading writes a bold heading across the content width and resets
// the font to the body style.
func (w *Writer) WriteHeading(text string, size float64, align backend.Align) {
	if w.doc.Sealed() {
		return
	}
	if size <= 0 {
		size = w.cfg.HeadingSize
	}
	w.setStyle(true, size)
	lh := w.lineHeight(size)
	width := w.page.ContentWidth()
	for _, line := range w.split(text, width) {
		y := w.place(lh)
		w.ctx.Text(w.page.MarginLeft, y, width, lh, line, align)
		w.cursor.advance(lh)
	}
	w.cursor.X = w.page.MarginLeft
	w.setStyle(false, w.cfg.FontSize)
	w.record(TextBlock{Content: text, Bold: true, Size: size})
}

// WriteLine writes text at the cursor. Inline text keeps the cursor on the
// current line and moves it right by the text width; otherwise the text is
// wrapped to the remaining width and the cursor moves below it.
func (w *Writer) WriteLine(text string, opts LineOptions) {
	if w.doc.Sealed() {
		return
	}
	size := opts.Size
	if size <= 0 {
		size = w.cfg.FontSize
	}
	w.setStyle(opts.Bold, size)
	lh := w.lineHeight(size)
	if opts.Inline {
		width := w.ctx.TextWidth(text)
		y := w.place(lh)
		w.ctx.Text(w.cursor.X, y, width, lh, text, backend.AlignLeft)
		w.cursor.X += width
	} else {
		w.flow(text, lh)
	}
	w.record(TextBlock{Content: text, Bold: opts.Bold, Size: size, Inline: opts.Inline})
}

// WriteKeyValue writes a bold "key:" label followed by the value on the same
// line. It records a single labelled block.
func (w *Writer) WriteKeyValue(key, value string) {
	if w.doc.Sealed() {
		return
	}
	size := w.cfg.FontSize
	lh := w.lineHeight(size)

	w.setStyle(true, size)
	label := key + ": "
	lw := w.ctx.TextWidth(label)
	y := w.place(lh)
	w.ctx.Text(w.cursor.X, y, lw, lh, label, backend.AlignLeft)
	w.cursor.X += lw

	w.setStyle(false, size)
	w.flow(value, lh)
	w.record(TextBlock{Label: key, Content: value, Size: size, Inline: true})
}

// WriteBullet writes one bulleted list item
func (w *Writer) WriteBullet(text string) {
	w.WriteLine("• "+text, LineOptions{})
}

// Advance moves the cursor down by units body lines
func (w *Writer) Advance(units float64) {
	if w.doc.Sealed() {
		return
	}
	w.cursor.advance(units * w.lineHeight(w.style.Size))
	w.cursor.X = w.page.MarginLeft
}

// SetFont switches the font weight, keeping the size
func (w *Writer) SetFont(bold bool) {
	if w.doc.Sealed() {
		return
	}
	w.setStyle(bold, w.style.Size)
}

func (w *Writer) setStyle(bold bool, size float64) {
	if w.style.Bold == bold && w.style.Size == size {
		return
	}
	w.style = Style{Bold: bold, Size: size}
	w.ctx.SetFont(bold, size)
}

// flow wraps text from the cursor to the right margin and moves below it
func (w *Writer) flow(text string, lh float64) {
	x := w.cursor.X
	width := w.page.Width - w.page.MarginRight - x
	for _, line := range w.split(text, width) {
		y := w.place(lh)
		w.ctx.Text(x, y, width, lh, line, backend.AlignLeft)
		w.cursor.advance(lh)
	}
	w.cursor.X = w.page.MarginLeft
}

func (w *Writer) split(text string, width float64) []string {
	lines := w.ctx.SplitText(text, width)
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}

func (w *Writer) lineHeight(size float64) float64 {
	return size * w.cfg.LineSpacing
}

// pageY maps the flow cursor onto the current page
func (w *Writer) pageY() float64 {
	return w.page.MarginTop + w.cursor.Y - w.pageTop
}

// fits reports whether h more points fit on the current page. An empty page
// always fits so oversized content cannot loop on page breaks.
func (w *Writer) fits(h float64) bool {
	return w.cursor.Y == w.pageTop || w.pageY()+h <= w.page.Bottom()
}

func (w *Writer) breakPage() {
	w.ctx.AddPage()
	w.ctx.SetFont(w.style.Bold, w.style.Size)
	w.pageTop = w.cursor.Y
	w.pages++
}

// place returns the page y for content of height h, breaking the page first
// when it does not fit.
func (w *Writer) place(h float64) float64 {
	if !w.fits(h) {
		w.breakPage()
	}
	return w.pageY()
}

func (w *Writer) record(b Block) {
	// the seal is checked on entry to every primitive
	_ = w.doc.append(b)
}
