package edges

import "math"

// tileOverlap is the nominal fraction of extra tiles laid over a range so
// that neighbouring tiles share about a quarter of their width. Lines that
// straddle a tile boundary are then recovered whole by the endpoint merge.
const tileOverlap = 1.25

// overlappingLimits splits [0, n) into half-open tile limits of the given
// width. Tile centers are spaced evenly from width/2 to n-width/2, with the
// tile count inflated by tileOverlap. A range no wider than one tile yields
// a single limit covering it.
func overlappingLimits(n, width int) [][2]int {
	if n <= width {
		return [][2]int{{0, n}}
	}
	w := float64(width)
	nTiles := 2 + int(math.Round(tileOverlap*float64(n)/w))
	first := w / 2
	last := float64(n) - w/2
	step := (last - first) / float64(nTiles-1)
	limits := make([][2]int, nTiles)
	for i := range limits {
		center := math.Trunc(first + step*float64(i))
		limits[i] = [2]int{int(center - w/2), int(center + w/2)}
	}
	return limits
}
