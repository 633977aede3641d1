// Package report renders offline PNG summaries of detection results: a
// map-view plot of trend lines over their input points, an azimuth
// histogram, and an overlay of raster-derived segments on the source grid.
package report

import (
	"fmt"
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/terrane-data/curvetrace/internal/trend"
)

// Palette returns n visually distinct colors spread evenly around the hue
// wheel.
func Palette(n int) []color.Color {
	if n <= 0 {
		return nil
	}
	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		hue := float64(i) * 360.0 / float64(n)
		colors[i] = colorful.Hsv(hue, 0.7, 0.9)
	}
	return colors
}

// SaveLinesPlot writes a map-view PNG: the input points as a gray scatter
// with one colored polyline per trend line on top. Axes share a span so
// the geometry keeps its aspect ratio.
func SaveLinesPlot(path string, points []trend.Point, lines []trend.TrendLine, title string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"
	p.Add(plotter.NewGrid())

	var ext extent
	if len(points) > 0 {
		xys := make(plotter.XYs, len(points))
		for i, pt := range points {
			xys[i] = plotter.XY{X: pt.X, Y: pt.Y}
			ext.add(pt.X, pt.Y)
		}
		scatter, err := plotter.NewScatter(xys)
		if err != nil {
			return fmt.Errorf("points scatter: %w", err)
		}
		scatter.GlyphStyle.Color = color.Gray{Y: 128}
		scatter.GlyphStyle.Radius = vg.Points(1.5)
		p.Add(scatter)
	}

	colors := Palette(len(lines))
	for i, l := range lines {
		if len(l.Points) < 2 {
			continue
		}
		xys := make(plotter.XYs, len(l.Points))
		for j, pt := range l.Points {
			xys[j] = plotter.XY{X: pt.X, Y: pt.Y}
			ext.add(pt.X, pt.Y)
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("line %d: %w", i, err)
		}
		line.Color = colors[i]
		line.Width = vg.Points(1.5)
		p.Add(line)

		name := fmt.Sprintf("line %d", i)
		if l.Label != 0 {
			name = fmt.Sprintf("line %d (label %g)", i, l.Label)
		}
		p.Legend.Add(name, line)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	ext.applySquare(p)

	if err := p.Save(10*vg.Inch, 10*vg.Inch, path); err != nil {
		return fmt.Errorf("save lines plot: %w", err)
	}
	return nil
}

// extent accumulates a bounding box over plotted coordinates.
type extent struct {
	minX, maxX, minY, maxY float64
	seen                   bool
}

func (e *extent) add(x, y float64) {
	if !e.seen {
		e.minX, e.maxX, e.minY, e.maxY = x, x, y, y
		e.seen = true
		return
	}
	e.minX = math.Min(e.minX, x)
	e.maxX = math.Max(e.maxX, x)
	e.minY = math.Min(e.minY, y)
	e.maxY = math.Max(e.maxY, y)
}

// applySquare pads the extent by 5% and forces both axes onto the same
// span, centered on the data.
func (e *extent) applySquare(p *plot.Plot) {
	if !e.seen {
		return
	}
	span := math.Max(e.maxX-e.minX, e.maxY-e.minY)
	if span == 0 {
		span = 1.0
	}
	half := span * 1.05 / 2
	cx, cy := (e.minX+e.maxX)/2, (e.minY+e.maxY)/2
	p.X.Min, p.X.Max = cx-half, cx+half
	p.Y.Min, p.Y.Max = cy-half, cy+half
}
