package trend

import (
	"math"
	"math/rand"
	"sort"

	"github.com/fogleman/delaunay"

	"github.com/terrane-data/curvetrace/internal/geom"
)

// edge is a candidate or filtered connection between two points, stored
// canonically with a < b (positions into the detection point slice, not
// caller indices). Length is 3D-aware; azimuth is planar. The visited flag
// is owned exclusively by the assembler.
type edge struct {
	a, b    int
	length  float64
	azimuth float64
	visited bool
}

// other returns the endpoint opposite p.
func (e edge) other(p int) int {
	if p == e.a {
		return e.b
	}
	return e.a
}

// buildCandidateEdges triangulates the planar projection of the points and
// returns the unique triangulation edges in canonical order: each edge
// (a,b) with a < b, the list sorted ascending by that pair. The canonical
// order doubles as the deterministic seed order during assembly.
//
// Exactly collinear point sets have no strict Delaunay triangulation, but a
// chain of collinear points is a perfectly good trend, so on failure the
// projected coordinates are joggled by a tiny deterministic jitter and
// triangulated again; derived lengths and azimuths always come from the
// true coordinates. Inputs that still fail (fewer than 3 points, all
// coincident) yield an empty set, which downstream stages treat as "no
// trend lines possible", not as an error. Zero-length connections between
// duplicate points are never emitted.
func buildCandidateEdges(pts []Point) []edge {
	if len(pts) < 3 {
		return nil
	}

	dpts := make([]delaunay.Point, len(pts))
	for i, p := range pts {
		dpts[i] = delaunay.Point{X: p.X, Y: p.Y}
	}
	tri, err := delaunay.Triangulate(dpts)
	if err != nil {
		tri, err = delaunay.Triangulate(joggle(dpts))
		if err != nil {
			diagf("triangulation found no candidates for %d points: %v", len(pts), err)
			return nil
		}
	}

	seen := make(map[[2]int]struct{}, len(tri.Triangles))
	keys := make([][2]int, 0, len(tri.Triangles))
	for t := 0; t+2 < len(tri.Triangles); t += 3 {
		v0, v1, v2 := tri.Triangles[t], tri.Triangles[t+1], tri.Triangles[t+2]
		for _, pr := range [3][2]int{{v0, v1}, {v1, v2}, {v2, v0}} {
			a, b := pr[0], pr[1]
			if a > b {
				a, b = b, a
			}
			k := [2]int{a, b}
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})

	edges := make([]edge, 0, len(keys))
	dropped := 0
	for _, k := range keys {
		pa, pb := pts[k[0]], pts[k[1]]
		length := geom.Dist3D(pa.X, pa.Y, pa.Z, pb.X, pb.Y, pb.Z)
		if length == 0 {
			dropped++
			continue
		}
		edges = append(edges, edge{
			a:       k[0],
			b:       k[1],
			length:  length,
			azimuth: geom.Azimuth(pa.X, pa.Y, pb.X, pb.Y),
		})
	}
	if dropped > 0 {
		opsf("dropped %d zero-length connections, input has duplicate points", dropped)
	}
	if len(edges) == 0 {
		return nil
	}
	return edges
}

// joggle returns a copy of the points displaced by a deterministic jitter
// far smaller than the point spread, just enough to break exact collinearity
// for the triangulator.
func joggle(pts []delaunay.Point) []delaunay.Point {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	scale := math.Hypot(maxX-minX, maxY-minY)
	if scale == 0 {
		scale = 1
	}
	eps := scale * 1e-8

	rng := rand.New(rand.NewSource(1))
	out := make([]delaunay.Point, len(pts))
	for i, p := range pts {
		out[i] = delaunay.Point{
			X: p.X + eps*(rng.Float64()-0.5),
			Y: p.Y + eps*(rng.Float64()-0.5),
		}
	}
	return out
}
