package edges

import (
	"image"
	"math"
	"math/rand"
)

// pixSegment is a detected line in tile pixel coordinates, x along columns
// and y along rows.
type pixSegment struct {
	x0, y0, x1, y1 int
}

const houghAngles = 180

// probabilisticHough extracts line segments from a binary tile. Randomly
// chosen on-pixels vote across a (distance, angle) accumulator one at a
// time; when a pixel's best bin reaches the vote threshold, the line for
// that bin is walked through the tile, tolerating runs of up to lineGap
// off-pixels. An accepted segment consumes its pixels: they are cleared,
// and any votes they have already cast are withdrawn, so no pixel
// supports two lines.
func probabilisticHough(tile *image.NRGBA, threshold, lineLength, lineGap int, rng *rand.Rand) []pixSegment {
	b := tile.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	on := make([]bool, w*h)
	voted := make([]bool, w*h)
	var points []int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if tile.NRGBAAt(b.Min.X+x, b.Min.Y+y).R > 0 {
				on[y*w+x] = true
				points = append(points, y*w+x)
			}
		}
	}
	if len(points) == 0 {
		return nil
	}

	maxDist := int(math.Ceil(math.Hypot(float64(w), float64(h))))
	accum := make([]int, 2*maxDist*houghAngles)
	sinT := make([]float64, houghAngles)
	cosT := make([]float64, houghAngles)
	for j := range sinT {
		theta := -math.Pi/2 + math.Pi*float64(j)/houghAngles
		sinT[j], cosT[j] = math.Sin(theta), math.Cos(theta)
	}

	vote := func(x, y, delta int) (bestVotes, bestTheta int) {
		bestVotes = math.MinInt
		for j := 0; j < houghAngles; j++ {
			d := int(math.Round(float64(x)*cosT[j]+float64(y)*sinT[j])) + maxDist
			bin := d*houghAngles + j
			accum[bin] += delta
			if accum[bin] > bestVotes {
				bestVotes, bestTheta = accum[bin], j
			}
		}
		voted[y*w+x] = delta > 0
		return bestVotes, bestTheta
	}
	unvote := func(x, y int) {
		if voted[y*w+x] {
			vote(x, y, -1)
		}
	}

	var segs []pixSegment
	for len(points) > 0 {
		pick := rng.Intn(len(points))
		i := points[pick]
		points[pick] = points[len(points)-1]
		points = points[:len(points)-1]
		if !on[i] {
			continue
		}
		x, y := i%w, i/w

		votes, thetaIdx := vote(x, y, 1)
		if votes < threshold {
			continue
		}

		// The line direction is perpendicular to the accumulator angle.
		dirX, dirY := -sinT[thetaIdx], cosT[thetaIdx]
		x0, y0 := walkLine(on, w, h, x, y, dirX, dirY, lineGap)
		x1, y1 := walkLine(on, w, h, x, y, -dirX, -dirY, lineGap)

		if math.Hypot(float64(x1-x0), float64(y1-y0)) < float64(lineLength) {
			continue
		}
		segs = append(segs, pixSegment{x0: x0, y0: y0, x1: x1, y1: y1})

		on[i] = false
		unvote(x, y)
		clearLine(on, w, h, x, y, dirX, dirY, x0, y0, unvote)
		clearLine(on, w, h, x, y, -dirX, -dirY, x1, y1, unvote)
	}
	return segs
}

// walkLine follows a line direction from (x, y) until the border or a run
// of more than lineGap off-pixels, and returns the last on-pixel reached.
func walkLine(on []bool, w, h, x, y int, dx, dy float64, lineGap int) (int, int) {
	lastX, lastY := x, y
	gap := 0
	for t := 1; ; t++ {
		px := x + int(math.Round(dx*float64(t)))
		py := y + int(math.Round(dy*float64(t)))
		if px < 0 || px >= w || py < 0 || py >= h {
			break
		}
		if on[py*w+px] {
			lastX, lastY = px, py
			gap = 0
		} else {
			gap++
			if gap > lineGap {
				break
			}
		}
	}
	return lastX, lastY
}

// clearLine retraces the walk from (x, y) to the endpoint (ex, ey) and
// consumes every on-pixel along it, withdrawing any vote it has cast.
func clearLine(on []bool, w, h, x, y int, dx, dy float64, ex, ey int, unvote func(x, y int)) {
	if ex == x && ey == y {
		return
	}
	for t := 1; ; t++ {
		px := x + int(math.Round(dx*float64(t)))
		py := y + int(math.Round(dy*float64(t)))
		if px < 0 || px >= w || py < 0 || py >= h {
			break
		}
		if on[py*w+px] {
			on[py*w+px] = false
			unvote(px, py)
		}
		if px == ex && py == ey {
			break
		}
	}
}
