package export

import (
	"strings"

	"github.com/stretchr/testify/mock"

	"carbon-scribe/project-portal/report-engine/internal/reports/export/backend"
)

// MockFactory is a mock implementation of the backend.Factory interface
type MockFactory struct {
	mock.Mock
}

func (m *MockFactory) Open(opts backend.Options) (backend.Context, error) {
	args := m.Called(opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(backend.Context), args.Error(1)
}

// drawOp is one recorded primitive
type drawOp struct {
	Kind string
	X, Y float64
	W    float64
	Text string
	Bold bool
	Size float64
}

// fakeContext records primitives and emits them as text lines on End
type fakeContext struct {
	page    backend.PageMetrics
	ops     []drawOp
	bold    bool
	size    float64
	events  chan backend.Event
	failOn  string
	failErr error
	failed  bool
	endErr  error
	closed  bool
	empty   bool
	panicOn string
}

func newFakeContext() *fakeContext {
	return &fakeContext{
		page: backend.PageMetrics{
			Width: 595.28, Height: 841.89,
			MarginLeft: 40, MarginTop: 40, MarginRight: 40, MarginBottom: 40,
		},
		size:   12,
		events: make(chan backend.Event, 64),
	}
}

func (c *fakeContext) SetFont(bold bool, size float64) {
	c.bold = bold
	c.size = size
	c.ops = append(c.ops, drawOp{Kind: "font", Bold: bold, Size: size})
}

func (c *fakeContext) Text(x, y, w, h float64, text string, align backend.Align) {
	if c.panicOn != "" && text == c.panicOn {
		panic("draw failed")
	}
	c.ops = append(c.ops, drawOp{Kind: "text", X: x, Y: y, W: w, Text: text, Bold: c.bold, Size: c.size})
	if c.failOn != "" && text == c.failOn && !c.failed {
		c.failed = true
		c.events <- backend.Event{Kind: backend.EventError, Err: c.failErr}
	}
}

func (c *fakeContext) TextWidth(text string) float64 {
	return float64(len([]rune(text))) * c.size * 0.5
}

func (c *fakeContext) SplitText(text string, width float64) []string {
	return strings.Split(text, "\n")
}

func (c *fakeContext) AddPage() {
	c.ops = append(c.ops, drawOp{Kind: "page"})
}

func (c *fakeContext) Page() backend.PageMetrics {
	return c.page
}

func (c *fakeContext) End() {
	if c.closed {
		return
	}
	c.closed = true
	defer close(c.events)
	if c.failed {
		return
	}
	if c.endErr != nil {
		c.events <- backend.Event{Kind: backend.EventData, Chunk: []byte("partial")}
		c.events <- backend.Event{Kind: backend.EventError, Err: c.endErr}
		return
	}
	if !c.empty {
		for _, line := range c.texts() {
			c.events <- backend.Event{Kind: backend.EventData, Chunk: []byte(line + "\n")}
		}
	}
	c.events <- backend.Event{Kind: backend.EventEnd}
}

func (c *fakeContext) Abort(err error) {
	if c.closed {
		return
	}
	c.closed = true
	if !c.failed {
		c.events <- backend.Event{Kind: backend.EventError, Err: err}
	}
	close(c.events)
}

func (c *fakeContext) Events() <-chan backend.Event {
	return c.events
}

// texts returns the drawn strings in order
func (c *fakeContext) texts() []string {
	var out []string
	for _, op := range c.ops {
		if op.Kind == "text" {
			out = append(out, op.Text)
		}
	}
	return out
}

// textOps returns the text primitives in order
func (c *fakeContext) textOps() []drawOp {
	var out []drawOp
	for _, op := range c.ops {
		if op.Kind == "text" {
			out = append(out, op)
		}
	}
	return out
}

// pages returns the number of AddPage calls
func (c *fakeContext) pages() int {
	n := 0
	for _, op := range c.ops {
		if op.Kind == "page" {
			n++
		}
	}
	return n
}

// fakeFactory opens a fresh fakeContext per call and keeps them for inspection
type fakeFactory struct {
	configure func(*fakeContext)
	opened    []*fakeContext
	options   []backend.Options
}

func (f *fakeFactory) Open(opts backend.Options) (backend.Context, error) {
	c := newFakeContext()
	c.page.MarginLeft = opts.Margin
	c.page.MarginTop = opts.Margin
	c.page.MarginRight = opts.Margin
	c.page.MarginBottom = opts.Margin
	if f.configure != nil {
		f.configure(c)
	}
	f.opened = append(f.opened, c)
	f.options = append(f.options, opts)
	return c, nil
}

func (f *fakeFactory) last() *fakeContext {
	if len(f.opened) == 0 {
		panic("no context opened")
	}
	return f.opened[len(f.opened)-1]
}

// newTestWriter returns a writer over a fresh fake context
func newTestWriter() (*Writer, *fakeContext, *Document) {
	ctx := newFakeContext()
	doc := &Document{}
	return newWriter(ctx, doc, DefaultConfig()), ctx, doc
}
