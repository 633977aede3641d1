package edges

import (
	"math"
	"sort"
)

// endpointIndex is a regular-grid hash over segment endpoints for
// fixed-radius neighbour queries. Cell size should match the query radius.
type endpointIndex struct {
	cellSize float64
	grid     map[int64][]int
}

func newEndpointIndex(pts [][2]float64, cellSize float64) *endpointIndex {
	ix := &endpointIndex{cellSize: cellSize, grid: make(map[int64][]int, len(pts))}
	for i, p := range pts {
		id := cellID(int64(math.Floor(p[0]/cellSize)), int64(math.Floor(p[1]/cellSize)))
		ix.grid[id] = append(ix.grid[id], i)
	}
	return ix
}

// cellID maps signed cell coordinates to a unique identifier using zigzag
// encoding and Szudzik's pairing function.
func cellID(cellX, cellY int64) int64 {
	var a, b int64
	if cellX >= 0 {
		a = 2 * cellX
	} else {
		a = -2*cellX - 1
	}
	if cellY >= 0 {
		b = 2 * cellY
	} else {
		b = -2*cellY - 1
	}
	if a >= b {
		return a*a + a + b
	}
	return a + b*b
}

// near returns the indices of all points within eps of pts[idx], idx
// itself included. eps must not exceed the index cell size.
func (ix *endpointIndex) near(pts [][2]float64, idx int, eps float64) []int {
	p := pts[idx]
	eps2 := eps * eps
	cellX := int64(math.Floor(p[0] / ix.cellSize))
	cellY := int64(math.Floor(p[1] / ix.cellSize))
	var neighbors []int
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for _, cand := range ix.grid[cellID(cellX+dx, cellY+dy)] {
				ddx := pts[cand][0] - p[0]
				ddy := pts[cand][1] - p[1]
				if ddx*ddx+ddy*ddy <= eps2 {
					neighbors = append(neighbors, cand)
				}
			}
		}
	}
	return neighbors
}

// mergeEndpoints snaps each endpoint onto the highest-indexed endpoint
// within mergeLength of it. Snaps are simultaneous: every snap reads
// original positions, so an endpoint that itself moves still attracts its
// neighbours at its old position.
func mergeEndpoints(pts [][2]float64, mergeLength float64) [][2]float64 {
	if mergeLength <= 0 || len(pts) == 0 {
		return pts
	}
	ix := newEndpointIndex(pts, mergeLength)
	out := make([][2]float64, len(pts))
	copy(out, pts)
	for i := range pts {
		target := -1
		for _, j := range ix.near(pts, i, mergeLength) {
			if j > target && j != i {
				target = j
			}
		}
		if target > i {
			out[i] = pts[target]
		}
	}
	return out
}

// uniqueVertices deduplicates coordinates, ordering vertices by (x, y),
// and returns the vertex list plus the index of each input point in it.
func uniqueVertices(pts [][2]float64) ([][2]float64, []int) {
	order := make([]int, len(pts))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		pa, pb := pts[order[a]], pts[order[b]]
		if pa[0] != pb[0] {
			return pa[0] < pb[0]
		}
		return pa[1] < pb[1]
	})
	verts := make([][2]float64, 0, len(pts))
	inverse := make([]int, len(pts))
	for _, i := range order {
		if len(verts) == 0 || verts[len(verts)-1] != pts[i] {
			verts = append(verts, pts[i])
		}
		inverse[i] = len(verts) - 1
	}
	return verts, inverse
}
