// Package raster provides the gridded-data substrate for the edge
// extraction pipeline: an ESRI ASCII grid reader/writer, cell/world
// coordinate transforms, and grayscale rendering for debug output.
package raster

import (
	"fmt"
	"math"
)

// DefaultNoData is the sentinel used for cells with no measurement when a
// grid does not declare its own.
const DefaultNoData = -9999

// Grid is a row-major float64 raster. Row 0 is the northernmost row, as in
// the ESRI ASCII interchange format; XLL/YLL anchor the outside corner of
// the south-west cell. Cells are square.
type Grid struct {
	Cols, Rows int
	XLL, YLL   float64
	CellSize   float64
	NoData     float64
	Values     []float64
}

// NewGrid returns a grid of the given shape with every cell set to the
// default no-data sentinel.
func NewGrid(cols, rows int, xll, yll, cellSize float64) *Grid {
	g := &Grid{
		Cols:     cols,
		Rows:     rows,
		XLL:      xll,
		YLL:      yll,
		CellSize: cellSize,
		NoData:   DefaultNoData,
		Values:   make([]float64, cols*rows),
	}
	for i := range g.Values {
		g.Values[i] = g.NoData
	}
	return g
}

// Validate reports structural problems: non-positive dimensions or cell
// size, or a value buffer that does not match the declared shape.
func (g *Grid) Validate() error {
	if g.Cols <= 0 || g.Rows <= 0 {
		return fmt.Errorf("grid shape %dx%d is not positive", g.Cols, g.Rows)
	}
	if g.CellSize <= 0 {
		return fmt.Errorf("grid cell size must be positive, got %v", g.CellSize)
	}
	if len(g.Values) != g.Cols*g.Rows {
		return fmt.Errorf("grid has %d values for shape %dx%d", len(g.Values), g.Cols, g.Rows)
	}
	return nil
}

// At returns the value at (row, col); row 0 is the northernmost row.
func (g *Grid) At(row, col int) float64 {
	return g.Values[row*g.Cols+col]
}

// Set stores v at (row, col).
func (g *Grid) Set(row, col int, v float64) {
	g.Values[row*g.Cols+col] = v
}

// IsNoData reports whether v is the grid's no-data sentinel or NaN.
func (g *Grid) IsNoData(v float64) bool {
	return v == g.NoData || math.IsNaN(v)
}

// CellCenter returns the world coordinates of the center of (row, col).
func (g *Grid) CellCenter(row, col int) (x, y float64) {
	x = g.XLL + (float64(col)+0.5)*g.CellSize
	y = g.YLL + (float64(g.Rows-row)-0.5)*g.CellSize
	return x, y
}

// Cell returns the (row, col) containing the world point, and whether the
// point falls inside the grid extent.
func (g *Grid) Cell(x, y float64) (row, col int, ok bool) {
	col = int(math.Floor((x - g.XLL) / g.CellSize))
	row = g.Rows - 1 - int(math.Floor((y-g.YLL)/g.CellSize))
	ok = col >= 0 && col < g.Cols && row >= 0 && row < g.Rows
	return row, col, ok
}

// ValidValues returns the non-no-data cell values, in row-major order.
func (g *Grid) ValidValues() []float64 {
	out := make([]float64, 0, len(g.Values))
	for _, v := range g.Values {
		if !g.IsNoData(v) {
			out = append(out, v)
		}
	}
	return out
}
