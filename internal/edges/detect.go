package edges

import (
	"context"
	"fmt"
	"image"
	"math/rand"
	"time"

	"github.com/disintegration/imaging"

	"github.com/terrane-data/curvetrace/internal/geom"
	"github.com/terrane-data/curvetrace/internal/raster"
)

// Segment is a detected line in world coordinates.
type Segment struct {
	X0      float64 `json:"x0"`
	Y0      float64 `json:"y0"`
	X1      float64 `json:"x1"`
	Y1      float64 `json:"y1"`
	Length  float64 `json:"length"`
	Azimuth float64 `json:"azimuth"`
}

// Detect runs the full raster pipeline on a grid: Canny edge cells, tiled
// probabilistic Hough lines, optional endpoint merging, then segments in
// world coordinates. The Hough random source is fixed, so a given grid and
// parameter set always produce the same output.
func Detect(ctx context.Context, g *raster.Grid, p Params) ([]Segment, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid edge detection parameters: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid grid: %w", err)
	}
	if len(g.ValidValues()) == 0 {
		return nil, fmt.Errorf("grid has no valid cells")
	}
	start := time.Now()

	edgeImg := cannyEdges(g, p)

	width := min(g.Rows, g.Cols)
	if p.WindowSize > 0 && p.WindowSize < width {
		width = p.WindowSize
	}
	rowLims := overlappingLimits(g.Rows, width)
	colLims := overlappingLimits(g.Cols, width)

	rng := rand.New(rand.NewSource(0))
	var px []pixSegment
	for _, rl := range rowLims {
		for _, cl := range colLims {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("edge detection interrupted: %w", err)
			}
			tile := imaging.Crop(edgeImg, image.Rect(cl[0], rl[0], cl[1], rl[1]))
			found := probabilisticHough(tile, p.Threshold, p.LineLength, p.LineGap, rng)
			tracef("tile rows %d-%d cols %d-%d: %d lines", rl[0], rl[1], cl[0], cl[1], len(found))
			for _, s := range found {
				px = append(px, pixSegment{
					x0: s.x0 + cl[0], y0: s.y0 + rl[0],
					x1: s.x1 + cl[0], y1: s.y1 + rl[0],
				})
			}
		}
	}
	if len(px) == 0 {
		diagf("detect: no lines in %d x %d grid (%s)", g.Rows, g.Cols, time.Since(start).Round(time.Millisecond))
		return nil, nil
	}

	// Two endpoints per raw segment, kept in segment order.
	ends := make([][2]float64, 0, 2*len(px))
	for _, s := range px {
		x0, y0 := g.CellCenter(s.y0, s.x0)
		x1, y1 := g.CellCenter(s.y1, s.x1)
		ends = append(ends, [2]float64{x0, y0}, [2]float64{x1, y1})
	}
	if p.MergeLength > 0 {
		ends = mergeEndpoints(ends, p.MergeLength)
	}
	verts, inverse := uniqueVertices(ends)

	segs := make([]Segment, 0, len(px))
	collapsed := 0
	for i := range px {
		a, b := inverse[2*i], inverse[2*i+1]
		if a == b {
			collapsed++
			continue
		}
		va, vb := verts[a], verts[b]
		segs = append(segs, Segment{
			X0: va[0], Y0: va[1], X1: vb[0], Y1: vb[1],
			Length:  geom.Dist2D(va[0], va[1], vb[0], vb[1]),
			Azimuth: geom.Azimuth(va[0], va[1], vb[0], vb[1]),
		})
	}
	diagf("detect: %d lines (%d raw, %d collapsed), %d vertices, %dx%d tiles of %d cells in %s",
		len(segs), len(px), collapsed, len(verts), len(rowLims), len(colLims), width,
		time.Since(start).Round(time.Millisecond))
	if len(segs) == 0 {
		return nil, nil
	}
	return segs, nil
}
