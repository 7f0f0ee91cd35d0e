package export

// Cursor is the layout position. Y is the offset along the document flow
// and only ever grows; page coordinates are derived from it by the Writer.
type Cursor struct {
	X float64
	Y float64
}

// advance moves the cursor down, ignoring negative distances
func (c *Cursor) advance(dy float64) {
	if dy > 0 {
		c.Y += dy
	}
}

// moveTo jumps forward to y; earlier positions are ignored
func (c *Cursor) moveTo(y float64) {
	if y > c.Y {
		c.Y = y
	}
}

// Style is the active font state
type Style struct {
	Bold bool
	Size float64
}
