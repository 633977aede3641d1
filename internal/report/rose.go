package report

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/terrane-data/curvetrace/internal/trend"
)

// roseBinWidth is the azimuth bucket size in degrees. Azimuths fold to
// [0, 180) because an undirected segment and its reverse are the same
// feature, so 12 buckets cover the full range.
const roseBinWidth = 15

// SaveAzimuthRose writes a PNG bar chart of segment azimuths folded to
// [0°, 180°), with each segment weighted by its length so long features
// dominate the distribution the way they dominate the map.
func SaveAzimuthRose(path string, lines []trend.TrendLine, title string) error {
	bins := make(plotter.Values, 180/roseBinWidth)
	for _, l := range lines {
		for _, s := range l.Segments {
			bins[roseBin(s.Azimuth)] += s.Length
		}
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Azimuth (°)"
	p.Y.Label.Text = "Total length"

	bars, err := plotter.NewBarChart(bins, vg.Points(24))
	if err != nil {
		return fmt.Errorf("azimuth bars: %w", err)
	}
	bars.LineStyle.Width = vg.Length(0)
	bars.Color = Palette(1)[0]
	p.Add(bars)

	labels := make([]string, len(bins))
	for i := range labels {
		labels[i] = fmt.Sprintf("%d-%d", i*roseBinWidth, (i+1)*roseBinWidth)
	}
	p.NominalX(labels...)

	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save azimuth rose: %w", err)
	}
	return nil
}

// roseBin maps an azimuth in degrees to its folded histogram bucket.
func roseBin(azimuth float64) int {
	az := math.Mod(azimuth, 180)
	if az < 0 {
		az += 180
	}
	b := int(az / roseBinWidth)
	if b >= 180/roseBinWidth {
		b = 180/roseBinWidth - 1
	}
	return b
}
