package collage

import (
	"fmt"
	"math"
)

// Rect is an axis-aligned box in page units (mm), origin at the top-left of the page.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Contains reports whether r fully encloses o, allowing eps of rounding slack.
func (r Rect) Contains(o Rect, eps float64) bool {
	return o.X >= r.X-eps &&
		o.Y >= r.Y-eps &&
		o.X+o.W <= r.X+r.W+eps &&
		o.Y+o.H <= r.Y+r.H+eps
}

// Grid describes a uniform cols x rows grid on a page with a uniform margin
// around the page and a uniform gap between cells.
type Grid struct {
	PageWidth  float64 `json:"page_width"`
	PageHeight float64 `json:"page_height"`
	Margin     float64 `json:"margin"`
	Gap        float64 `json:"gap"`
	Cols       int     `json:"cols"`
	Rows       int     `json:"rows"`
}

// Validate checks that the grid yields a positive cell box.
func (g Grid) Validate() error {
	if g.Cols < 1 || g.Rows < 1 {
		return fmt.Errorf("%w: grid must have at least 1 column and 1 row, got %dx%d",
			ErrInvalidConfiguration, g.Cols, g.Rows)
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"page width", g.PageWidth},
		{"page height", g.PageHeight},
		{"margin", g.Margin},
		{"gap", g.Gap},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s is not a finite number", ErrInvalidConfiguration, f.name)
		}
	}
	if g.PageWidth <= 0 || g.PageHeight <= 0 {
		return fmt.Errorf("%w: page size must be positive, got %.2fx%.2f",
			ErrInvalidConfiguration, g.PageWidth, g.PageHeight)
	}
	if g.Margin < 0 {
		return fmt.Errorf("%w: margin must not be negative, got %.2f", ErrInvalidConfiguration, g.Margin)
	}
	if g.Gap < 0 {
		return fmt.Errorf("%w: gap must not be negative, got %.2f", ErrInvalidConfiguration, g.Gap)
	}

	w, h := g.CellSize()
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: margin %.2f and gap %.2f leave no room for a %dx%d grid (cell %.2fx%.2f)",
			ErrInvalidConfiguration, g.Margin, g.Gap, g.Cols, g.Rows, w, h)
	}
	return nil
}

// Capacity returns the number of cells on one page.
func (g Grid) Capacity() int {
	return g.Cols * g.Rows
}

// CellSize returns the width and height of one cell box.
// (pageWidth - 2*margin - (cols-1)*gap) / cols, and the same for height.
func (g Grid) CellSize() (w, h float64) {
	w = (g.PageWidth - 2*g.Margin - float64(g.Cols-1)*g.Gap) / float64(g.Cols)
	h = (g.PageHeight - 2*g.Margin - float64(g.Rows-1)*g.Gap) / float64(g.Rows)
	return w, h
}

// CellOrigin returns the top-left corner of the idx-th cell on a page.
// Cells are filled row by row.
func (g Grid) CellOrigin(idx int) (x, y float64) {
	w, h := g.CellSize()
	col := idx % g.Cols
	row := idx / g.Cols
	x = g.Margin + float64(col)*(w+g.Gap)
	y = g.Margin + float64(row)*(h+g.Gap)
	return x, y
}

// CellRect returns the full box of the idx-th cell on a page.
func (g Grid) CellRect(idx int) Rect {
	x, y := g.CellOrigin(idx)
	w, h := g.CellSize()
	return Rect{X: x, Y: y, W: w, H: h}
}

// PageCount returns how many pages n items need at the given capacity.
func PageCount(n, capacity int) int {
	if n <= 0 || capacity <= 0 {
		return 0
	}
	return (n + capacity - 1) / capacity
}
