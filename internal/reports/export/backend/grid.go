package backend

import (
	"math"
	"strings"
)

// gridCell is a piece of text placed into a row/column grid
type gridCell struct {
	Row  int // 1-based
	Col  int // 1-based
	Text string
	Bold bool
}

// grid maps positioned text onto spreadsheet rows and columns. Every distinct
// (page, y) line becomes a row. The column is x relative to the left margin
// divided by the cell width; text that would land on an occupied column moves
// to the next free one, so a bold label and its value share a row.
type grid struct {
	page     PageMetrics
	bold     bool
	size     float64
	pageNo   int
	linePage int
	lineY    float64
	row      int
	lastCol  int
	cells    []gridCell
}

func newGrid(page PageMetrics, size float64) *grid {
	return &grid{page: page, size: size}
}

func (g *grid) setFont(bold bool, size float64) {
	g.bold = bold
	g.size = size
}

func (g *grid) addPage() {
	g.pageNo++
}

func (g *grid) text(x, y, w float64, text string) {
	if g.row == 0 || y != g.lineY || g.pageNo != g.linePage {
		g.row++
		g.lastCol = 0
		g.lineY = y
		g.linePage = g.pageNo
	}

	col := g.lastCol + 1
	if w > 0 && w < g.page.ContentWidth() {
		if c := int(math.Floor((x-g.page.MarginLeft)/w+0.5)) + 1; c > g.lastCol {
			col = c
		}
	}
	g.lastCol = col

	text = strings.TrimRight(text, " ")
	if strings.HasSuffix(text, ":") && g.bold {
		text = strings.TrimSuffix(text, ":")
	}
	if text == "" {
		return
	}
	g.cells = append(g.cells, gridCell{Row: g.row, Col: col, Text: text, Bold: g.bold})
}

// textWidth approximates the width of text at half the font size per rune
func (g *grid) textWidth(text string) float64 {
	return float64(len([]rune(text))) * g.size * 0.5
}

// records returns the grid as rows of strings
func (g *grid) records() [][]string {
	out := make([][]string, g.row)
	for _, c := range g.cells {
		row := out[c.Row-1]
		for len(row) < c.Col {
			row = append(row, "")
		}
		row[c.Col-1] = c.Text
		out[c.Row-1] = row
	}
	return out
}

// defaultGridPage is the A4 geometry used by the tabular backends
func defaultGridPage(margin float64) PageMetrics {
	if margin <= 0 {
		margin = 40
	}
	return PageMetrics{
		Width:        595.28,
		Height:       841.89,
		MarginLeft:   margin,
		MarginTop:    margin,
		MarginRight:  margin,
		MarginBottom: margin,
	}
}
