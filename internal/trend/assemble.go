package trend

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/terrane-data/curvetrace/internal/geom"
)

// path is an assembled simple path: point positions in travel order plus the
// edge indices joining them, always len(edges) == len(verts)-1.
type path struct {
	verts []int
	edges []int
}

// assembler grows paths over the filtered edge set. It owns the per-edge
// visited flags and the adjacency structure (point position -> incident edge
// indices, ascending), both built once. Growth is an explicit loop, so path
// length never grows the call stack.
type assembler struct {
	pts     []Point
	edges   []edge
	adj     [][]int
	damping float64
}

func newAssembler(pts []Point, edges []edge, damping float64) *assembler {
	adj := make([][]int, len(pts))
	for i := range edges {
		adj[edges[i].a] = append(adj[edges[i].a], i)
		adj[edges[i].b] = append(adj[edges[i].b], i)
	}
	return &assembler{pts: pts, edges: edges, adj: adj, damping: damping}
}

// run assembles paths over every connected component of the filtered graph.
// Components share no edges or points, so they are grown concurrently; the
// merged output is ordered by each component's smallest edge index and is
// identical to a sequential pass. Cancellation is honored between seeds.
func (a *assembler) run(ctx context.Context) ([]path, error) {
	comps := a.components()
	if len(comps) == 0 {
		return nil, nil
	}

	results := make([][]path, len(comps))
	errs := make([]error, len(comps))
	var wg sync.WaitGroup
	for i, seeds := range comps {
		wg.Add(1)
		go func(i int, seeds []int) {
			defer wg.Done()
			results[i], errs[i] = a.assembleComponent(ctx, seeds)
		}(i, seeds)
	}
	wg.Wait()

	var out []path
	for i := range comps {
		if errs[i] != nil {
			return nil, errs[i]
		}
		out = append(out, results[i]...)
	}
	return out, a.checkInvariants(out)
}

// components partitions the edge set into connected components, each
// reported as an ascending list of edge indices. The components themselves
// come out ordered by smallest member edge.
func (a *assembler) components() [][]int {
	seenEdge := make([]bool, len(a.edges))
	seenPt := make([]bool, len(a.pts))
	var comps [][]int
	for ei := range a.edges {
		if seenEdge[ei] {
			continue
		}
		var comp []int
		stack := []int{a.edges[ei].a, a.edges[ei].b}
		seenPt[a.edges[ei].a] = true
		seenPt[a.edges[ei].b] = true
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, e2 := range a.adj[p] {
				if seenEdge[e2] {
					continue
				}
				seenEdge[e2] = true
				comp = append(comp, e2)
				if o := a.edges[e2].other(p); !seenPt[o] {
					seenPt[o] = true
					stack = append(stack, o)
				}
			}
		}
		sort.Ints(comp)
		comps = append(comps, comp)
	}
	return comps
}

// assembleComponent seeds paths from the component's unvisited edges in
// ascending index order.
func (a *assembler) assembleComponent(ctx context.Context, seeds []int) ([]path, error) {
	var out []path
	for _, ei := range seeds {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("path assembly interrupted: %w", err)
		}
		if a.edges[ei].visited {
			continue
		}
		p := a.grow(ei)
		tracef("seed edge %d grew a path of %d points", ei, len(p.verts))
		out = append(out, p)
	}
	return out, nil
}

// grow builds one maximal simple path from a seed edge: forward from the
// seed's high endpoint, then backward from its low endpoint, stitching the
// reversed backward tail, the seed, and the forward tail together.
func (a *assembler) grow(seed int) path {
	se := &a.edges[seed]
	se.visited = true
	inPath := map[int]bool{se.a: true, se.b: true}

	fwdV, fwdE := a.extend(se.b, inPath)
	bwdV, bwdE := a.extend(se.a, inPath)

	verts := make([]int, 0, len(bwdV)+2+len(fwdV))
	eidx := make([]int, 0, len(bwdE)+1+len(fwdE))
	for i := len(bwdV) - 1; i >= 0; i-- {
		verts = append(verts, bwdV[i])
	}
	for i := len(bwdE) - 1; i >= 0; i-- {
		eidx = append(eidx, bwdE[i])
	}
	verts = append(verts, se.a, se.b)
	eidx = append(eidx, seed)
	verts = append(verts, fwdV...)
	eidx = append(eidx, fwdE...)
	return path{verts: verts, edges: eidx}
}

// extend grows one direction from start until no unvisited, non-cycle
// candidate remains at the current endpoint. The first hop in a direction
// has no incoming bearing, so it is chosen by minimum length; every later
// hop minimizes the tortuosity cost
//
//	cost = theta^(1-damping) * length
//
// where theta is the turning angle off the incoming bearing. A perfectly
// straight continuation (theta 0) costs 0 and always wins while damping < 1.
// Exact cost ties break to the smallest new endpoint.
func (a *assembler) extend(start int, inPath map[int]bool) (verts, eidx []int) {
	cur := start
	var dir geom.Vec2
	first := true
	for {
		best := -1
		bestOther := 0
		var bestCost float64
		for _, ei := range a.adj[cur] {
			e := &a.edges[ei]
			if e.visited {
				continue
			}
			other := e.other(cur)
			if inPath[other] {
				continue
			}
			cost := e.length
			if !first {
				theta := geom.TurnAngle(dir, a.direction(cur, other))
				cost = math.Pow(theta, 1-a.damping) * e.length
			}
			if best == -1 || cost < bestCost || (cost == bestCost && other < bestOther) {
				best, bestOther, bestCost = ei, other, cost
			}
		}
		if best == -1 {
			return verts, eidx
		}
		a.edges[best].visited = true
		inPath[bestOther] = true
		verts = append(verts, bestOther)
		eidx = append(eidx, best)
		dir = a.direction(cur, bestOther)
		first = false
		cur = bestOther
	}
}

// direction returns the planar direction from point p to point q.
func (a *assembler) direction(p, q int) geom.Vec2 {
	return geom.Vec2{X: a.pts[q].X - a.pts[p].X, Y: a.pts[q].Y - a.pts[p].Y}
}

// checkInvariants verifies the no-reuse and simplicity guarantees on the
// assembled paths. A violation is a programming error and is surfaced
// loudly rather than silently truncated.
func (a *assembler) checkInvariants(paths []path) error {
	used := make([]bool, len(a.edges))
	for pi, p := range paths {
		if len(p.verts) != len(p.edges)+1 {
			return fmt.Errorf("internal: path %d has %d vertices for %d edges", pi, len(p.verts), len(p.edges))
		}
		seen := make(map[int]bool, len(p.verts))
		for _, v := range p.verts {
			if seen[v] {
				return fmt.Errorf("internal: path %d repeats point %d", pi, v)
			}
			seen[v] = true
		}
		for i, ei := range p.edges {
			e := a.edges[ei]
			u, v := p.verts[i], p.verts[i+1]
			if !(u == e.a && v == e.b) && !(u == e.b && v == e.a) {
				return fmt.Errorf("internal: path %d edge %d does not join its vertices", pi, ei)
			}
			if used[ei] {
				return fmt.Errorf("internal: edge %d assigned to two paths", ei)
			}
			used[ei] = true
		}
	}
	return nil
}
