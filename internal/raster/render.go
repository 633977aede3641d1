package raster

import (
	"image"
	"image/color"
	"sort"

	"github.com/anthonynsimon/bild/imgio"
	"gonum.org/v1/gonum/stat"
)

// Render maps the grid onto an 8-bit grayscale image for inspection,
// stretching contrast between the 2nd and 98th percentiles of the valid
// cells so a few outliers cannot flatten the rest. No-data cells render
// black.
func Render(g *Grid) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.Cols, g.Rows))
	valid := g.ValidValues()
	if len(valid) == 0 {
		return img
	}
	sort.Float64s(valid)
	lo := stat.Quantile(0.02, stat.Empirical, valid, nil)
	hi := stat.Quantile(0.98, stat.Empirical, valid, nil)
	if hi <= lo {
		hi = lo + 1
	}

	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			v := g.At(row, col)
			if g.IsNoData(v) {
				continue
			}
			t := (v - lo) / (hi - lo)
			if t < 0 {
				t = 0
			} else if t > 1 {
				t = 1
			}
			img.SetGray(col, row, color.Gray{Y: uint8(t*255 + 0.5)})
		}
	}
	return img
}

// SavePNG writes an image to disk as PNG.
func SavePNG(path string, img image.Image) error {
	return imgio.Save(path, img, imgio.PNGEncoder())
}
