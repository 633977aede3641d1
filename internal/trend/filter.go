package trend

import "github.com/terrane-data/curvetrace/internal/geom"

// filterEdges removes candidate edges that violate any enabled constraint.
// The three tests are independent and order-free: an edge is dropped when
// its length exceeds MaxDistance, when both endpoints carry the same
// non-empty part (points on one survey line are never trend segments), or
// when azimuth filtering is enabled and the edge deviates from the target
// orientation by more than the tolerance, measured modulo 180 degrees.
//
// Survivors keep their canonical order and start unvisited. An empty result
// is valid output.
func filterEdges(pts []Point, candidates []edge, p Params) []edge {
	kept := make([]edge, 0, len(candidates))
	for _, e := range candidates {
		if e.length > p.MaxDistance {
			continue
		}
		pa, pb := pts[e.a].Part, pts[e.b].Part
		if pa != "" && pa == pb {
			continue
		}
		if p.azimuthFilter() && geom.AzimuthDelta(e.azimuth, *p.AzimuthTarget) > *p.AzimuthTolerance {
			continue
		}
		e.visited = false
		kept = append(kept, e)
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}
