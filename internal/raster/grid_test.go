package raster

import (
	"math"
	"strings"
	"testing"
)

func TestGridCellCenter(t *testing.T) {
	g := NewGrid(4, 3, 100, 200, 10)

	// Row 0 is the northernmost row.
	x, y := g.CellCenter(0, 0)
	if x != 105 || y != 225 {
		t.Errorf("CellCenter(0,0) = (%v,%v), want (105,225)", x, y)
	}
	x, y = g.CellCenter(2, 3)
	if x != 135 || y != 205 {
		t.Errorf("CellCenter(2,3) = (%v,%v), want (135,205)", x, y)
	}
}

func TestGridCellRoundTrip(t *testing.T) {
	g := NewGrid(7, 5, -30, 12.5, 2.5)
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			x, y := g.CellCenter(row, col)
			r, c, ok := g.Cell(x, y)
			if !ok || r != row || c != col {
				t.Fatalf("Cell(CellCenter(%d,%d)) = (%d,%d,%v)", row, col, r, c, ok)
			}
		}
	}
	if _, _, ok := g.Cell(-31, 13); ok {
		t.Error("point west of the extent reported inside")
	}
	if _, _, ok := g.Cell(-29, 26); ok {
		t.Error("point north of the extent reported inside")
	}
}

func TestGridNoData(t *testing.T) {
	g := NewGrid(2, 2, 0, 0, 1)
	if !g.IsNoData(g.At(0, 0)) {
		t.Error("fresh grid cells must be no-data")
	}
	g.Set(0, 0, 7)
	g.Set(1, 1, math.NaN())
	if g.IsNoData(g.At(0, 0)) {
		t.Error("stored value reported as no-data")
	}
	if !g.IsNoData(g.At(1, 1)) {
		t.Error("NaN must count as no-data")
	}
	vals := g.ValidValues()
	if len(vals) != 1 || vals[0] != 7 {
		t.Errorf("ValidValues = %v, want [7]", vals)
	}
}

func TestGridValidate(t *testing.T) {
	g := NewGrid(3, 2, 0, 0, 1)
	if err := g.Validate(); err != nil {
		t.Fatalf("valid grid rejected: %v", err)
	}
	g.Values = g.Values[:5]
	if err := g.Validate(); err == nil {
		t.Error("shape/value mismatch accepted")
	}
	bad := NewGrid(3, 2, 0, 0, 1)
	bad.CellSize = 0
	if err := bad.Validate(); err == nil || !strings.Contains(err.Error(), "cell size") {
		t.Errorf("zero cell size accepted: %v", err)
	}
}
