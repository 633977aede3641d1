package report

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/terrane-data/curvetrace/internal/edges"
	"github.com/terrane-data/curvetrace/internal/raster"
)

// SaveEdgesOverlay writes the grid quicklook as a PNG with the detected
// segments drawn on top in world coordinates.
func SaveEdgesOverlay(path string, g *raster.Grid, segs []edges.Segment, title string) error {
	if err := g.Validate(); err != nil {
		return fmt.Errorf("invalid grid: %w", err)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"

	xMax := g.XLL + float64(g.Cols)*g.CellSize
	yMax := g.YLL + float64(g.Rows)*g.CellSize
	p.Add(plotter.NewImage(raster.Render(g), g.XLL, g.YLL, xMax, yMax))
	p.X.Min, p.X.Max = g.XLL, xMax
	p.Y.Min, p.Y.Max = g.YLL, yMax

	segColor := Palette(1)[0]
	for i, s := range segs {
		line, err := plotter.NewLine(plotter.XYs{{X: s.X0, Y: s.Y0}, {X: s.X1, Y: s.Y1}})
		if err != nil {
			return fmt.Errorf("segment %d: %w", i, err)
		}
		line.Color = segColor
		line.Width = vg.Points(1.5)
		p.Add(line)
	}

	// Keep pixels square: scale the figure to the grid's aspect ratio.
	width := 10 * vg.Inch
	height := vg.Length(float64(width) * float64(g.Rows) / float64(g.Cols))
	if err := p.Save(width, height, path); err != nil {
		return fmt.Errorf("save edges overlay: %w", err)
	}
	return nil
}
