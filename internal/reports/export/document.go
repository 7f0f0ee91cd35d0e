package export

// Block is one unit of document content. The set of implementations is closed.
type Block interface {
	isBlock()
}

// TextBlock is a run of text. Label, when set, is the bold key drawn inline
// before Content.
type TextBlock struct {
	Label   string
	Content string
	Bold    bool
	Size    float64
	Inline  bool
}

// TableBlock is a fixed-width table. Every row has len(Headers) cells.
type TableBlock struct {
	Headers     []string
	Rows        [][]string
	ColumnWidth float64
	RowHeight   float64
}

func (TextBlock) isBlock()  {}
func (TableBlock) isBlock() {}

// Document is the append-only block sequence built by one session
type Document struct {
	blocks []Block
	sealed bool
}

// append adds a block, refusing once the document is sealed
func (d *Document) append(b Block) error {
	if d.sealed {
		return ErrSessionSealed
	}
	d.blocks = append(d.blocks, b)
	return nil
}

func (d *Document) seal() {
	d.sealed = true
}

// Sealed reports whether the document stopped accepting blocks
func (d *Document) Sealed() bool {
	return d.sealed
}

// Len returns the number of blocks
func (d *Document) Len() int {
	return len(d.blocks)
}

// Blocks returns the blocks in emission order
func (d *Document) Blocks() []Block {
	out := make([]Block, len(d.blocks))
	copy(out, d.blocks)
	return out
}

// Tables returns the table blocks in emission order
func (d *Document) Tables() []TableBlock {
	var out []TableBlock
	for _, b := range d.blocks {
		if t, ok := b.(TableBlock); ok {
			out = append(out, t)
		}
	}
	return out
}

// Fields returns the labelled key-value text blocks in emission order
func (d *Document) Fields() []TextBlock {
	var out []TextBlock
	for _, b := range d.blocks {
		if t, ok := b.(TextBlock); ok && t.Label != "" {
			out = append(out, t)
		}
	}
	return out
}

// Texts returns all text blocks in emission order
func (d *Document) Texts() []TextBlock {
	var out []TextBlock
	for _, b := range d.blocks {
		if t, ok := b.(TextBlock); ok {
			out = append(out, t)
		}
	}
	return out
}
