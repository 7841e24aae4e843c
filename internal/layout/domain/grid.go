package layout

import "fmt"

// GridSpec partitions a physical page into Columns x Rows equal cells.
// Lengths are millimetres.
type GridSpec struct {
	Columns    int     `json:"columns"`
	Rows       int     `json:"rows"`
	PageWidth  float64 `json:"page_width_mm"`
	PageHeight float64 `json:"page_height_mm"`
}

// A4Grid is the 25x35 grid used by every document variant.
var A4Grid = GridSpec{Columns: 25, Rows: 35, PageWidth: 210, PageHeight: 297}

// Validate rejects grids that cannot address a cell.
func (g GridSpec) Validate() error {
	if g.Columns < 1 || g.Rows < 1 || g.PageWidth <= 0 || g.PageHeight <= 0 {
		return fmt.Errorf("%w: %dx%d over %.2fx%.2fmm", ErrInvalidGrid, g.Columns, g.Rows, g.PageWidth, g.PageHeight)
	}
	return nil
}

// CellWidth is PageWidth / Columns.
func (g GridSpec) CellWidth() float64 { return g.PageWidth / float64(g.Columns) }

// CellHeight is PageHeight / Rows.
func (g GridSpec) CellHeight() float64 { return g.PageHeight / float64(g.Rows) }

// Cells is the number of addressable cells.
func (g GridSpec) Cells() int { return g.Columns * g.Rows }

// CellAddress is a 1-based row-major cell index.
type CellAddress int

// Address converts a 0-based (row, column) pair to its cell index.
func (g GridSpec) Address(row, column int) (CellAddress, error) {
	if row < 0 || row >= g.Rows || column < 0 || column >= g.Columns {
		return 0, fmt.Errorf("%w: row %d column %d", ErrCellOutOfRange, row, column)
	}
	return CellAddress(row*g.Columns + column + 1), nil
}

// RowColumn converts a cell index to its 0-based (row, column) pair.
func (g GridSpec) RowColumn(index CellAddress) (row, column int, err error) {
	if index < 1 || int(index) > g.Cells() {
		return 0, 0, fmt.Errorf("%w: cell %d", ErrCellOutOfRange, index)
	}
	i := int(index) - 1
	return i / g.Columns, i % g.Columns, nil
}

// Point is a physical position in millimetres.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Offset is a displacement in fractional grid units; positive rows move down the page.
type Offset struct {
	Rows    float64 `json:"rows"`
	Columns float64 `json:"columns"`
}

// Reference selects which point of a cell an offset starts from.
type Reference string

const (
	// FromOrigin starts at the cell's top-left corner.
	FromOrigin Reference = "origin"
	// FromCenter starts at the cell's center.
	FromCenter Reference = "center"
)

func (r Reference) fraction() (float64, error) {
	switch r {
	case FromOrigin:
		return 0, nil
	case FromCenter:
		return 0.5, nil
	default:
		return 0, fmt.Errorf("%w: reference %q", ErrInvalidRule, r)
	}
}

// CellOrigin returns the top-left corner of a cell, measured from the page's top-left.
func (g GridSpec) CellOrigin(index CellAddress) (Point, error) {
	return g.Locate(index, FromOrigin, Offset{})
}

// CellCenter returns the center of a cell, measured from the page's top-left.
func (g GridSpec) CellCenter(index CellAddress) (Point, error) {
	return g.Locate(index, FromCenter, Offset{})
}

// Locate resolves a cell reference plus a fractional offset in the grid's own
// top-left, y-down coordinate space.
func (g GridSpec) Locate(index CellAddress, ref Reference, off Offset) (Point, error) {
	row, column, err := g.RowColumn(index)
	if err != nil {
		return Point{}, err
	}
	start, err := ref.fraction()
	if err != nil {
		return Point{}, err
	}
	return Point{
		X: (float64(column) + start + off.Columns) * g.CellWidth(),
		Y: (float64(row) + start + off.Rows) * g.CellHeight(),
	}, nil
}

// FlipY converts between top-left (y down) and bottom-left (y up) page coordinates.
// Applying it twice returns the original value.
func (g GridSpec) FlipY(y float64) float64 { return g.PageHeight - y }

// PagePoint resolves a cell reference plus offset directly to page coordinates
// with the origin at the bottom-left corner and y pointing up. Every overlay
// position goes through here.
func (g GridSpec) PagePoint(index CellAddress, ref Reference, off Offset) (Point, error) {
	p, err := g.Locate(index, ref, off)
	if err != nil {
		return Point{}, err
	}
	return Point{X: p.X, Y: g.FlipY(p.Y)}, nil
}
