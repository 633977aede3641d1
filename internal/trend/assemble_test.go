package trend

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/terrane-data/curvetrace/internal/geom"
)

// mkEdges hand-builds a filtered edge set from index pairs, deriving length
// and azimuth from the points. Pairs must be listed in canonical order.
func mkEdges(pts []Point, pairs [][2]int) []edge {
	edges := make([]edge, len(pairs))
	for i, pr := range pairs {
		a, b := pr[0], pr[1]
		if a > b {
			a, b = b, a
		}
		pa, pb := pts[a], pts[b]
		edges[i] = edge{
			a:       a,
			b:       b,
			length:  geom.Dist3D(pa.X, pa.Y, pa.Z, pb.X, pb.Y, pb.Z),
			azimuth: geom.Azimuth(pa.X, pa.Y, pb.X, pb.Y),
		}
	}
	return edges
}

func runAssembler(t *testing.T, pts []Point, pairs [][2]int, damping float64) []path {
	t.Helper()
	asm := newAssembler(pts, mkEdges(pts, pairs), damping)
	paths, err := asm.run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return paths
}

func checkVerts(t *testing.T, p path, want []int) {
	t.Helper()
	if diff := cmp.Diff(want, p.verts); diff != "" {
		t.Errorf("path vertices mismatch (-want +got):\n%s", diff)
	}
}

func TestAssembleChain(t *testing.T) {
	pts := []Point{{X: 0}, {X: 10}, {X: 20}, {X: 30}}
	paths := runAssembler(t, pts, [][2]int{{0, 1}, {1, 2}, {2, 3}}, 0.5)
	if len(paths) != 1 {
		t.Fatalf("got %d paths, want 1", len(paths))
	}
	checkVerts(t, paths[0], []int{0, 1, 2, 3})
}

func TestAssembleBackwardGrowth(t *testing.T) {
	// The chain runs 2 -> 3 -> 0 -> 1 in space; the canonical first edge
	// (0,1) sits at the spatial end, so the path must grow backward.
	pts := []Point{{X: 20}, {X: 30}, {X: 0}, {X: 10}}
	paths := runAssembler(t, pts, [][2]int{{0, 1}, {0, 3}, {2, 3}}, 0.5)
	if len(paths) != 1 {
		t.Fatalf("got %d paths, want 1", len(paths))
	}
	checkVerts(t, paths[0], []int{2, 3, 0, 1})
}

func TestAssembleFirstStepMinLength(t *testing.T) {
	// The first hop in a direction has no bearing to compare against, so
	// the short angled edge beats the long straight one.
	pts := []Point{
		{X: 0, Y: 0},
		{X: 10, Y: 0},
		{X: 30, Y: 0}, // straight ahead, length 20
		{X: 11, Y: 5}, // sharp turn, length ~5.1
	}
	paths := runAssembler(t, pts, [][2]int{{0, 1}, {1, 2}, {1, 3}}, 0.5)
	if len(paths) != 2 {
		t.Fatalf("got %d paths, want 2", len(paths))
	}
	checkVerts(t, paths[0], []int{0, 1, 3})
	checkVerts(t, paths[1], []int{1, 2})
}

func TestAssembleStraightContinuationAlwaysWins(t *testing.T) {
	// Once a bearing exists, a zero-angle continuation costs zero and beats
	// any shorter turning candidate while damping < 1.
	pts := []Point{
		{X: 0, Y: 0},
		{X: 10, Y: 0},
		{X: 20, Y: 0},
		{X: 40, Y: 0}, // straight, length 20
		{X: 22, Y: 5}, // sharp, length ~5.4
	}
	paths := runAssembler(t, pts, [][2]int{{0, 1}, {1, 2}, {2, 3}, {2, 4}}, 0.5)
	if len(paths) != 2 {
		t.Fatalf("got %d paths, want 2", len(paths))
	}
	checkVerts(t, paths[0], []int{0, 1, 2, 3})
	checkVerts(t, paths[1], []int{2, 4})
}

func TestAssembleLengthOnlyAtFullDamping(t *testing.T) {
	// Damping 1 strips the angle term entirely: the sharply turning shorter
	// edge must beat the straight longer one.
	pts := []Point{
		{X: 0, Y: 0},
		{X: 10, Y: 0},
		{X: 20, Y: 0},
		{X: 40, Y: 0},
		{X: 22, Y: 5},
	}
	paths := runAssembler(t, pts, [][2]int{{0, 1}, {1, 2}, {2, 3}, {2, 4}}, 1)
	if len(paths) != 2 {
		t.Fatalf("got %d paths, want 2", len(paths))
	}
	checkVerts(t, paths[0], []int{0, 1, 2, 4})
	checkVerts(t, paths[1], []int{2, 3})
}

func TestAssembleAngleWeightAtZeroDamping(t *testing.T) {
	// Equal lengths, different angles: at damping 0 the smaller turn wins.
	pts := []Point{
		{X: 0, Y: 0},
		{X: 10, Y: 0},
		{X: 20, Y: 0},
		{X: 20 + 8.66, Y: 5}, // 30 degrees off the bearing, length 10
		{X: 20 + 5, Y: 8.66}, // 60 degrees off, length 10
	}
	paths := runAssembler(t, pts, [][2]int{{0, 1}, {1, 2}, {2, 3}, {2, 4}}, 0)
	if len(paths) != 2 {
		t.Fatalf("got %d paths, want 2", len(paths))
	}
	checkVerts(t, paths[0], []int{0, 1, 2, 3})
}

func TestAssembleTieBreakSmallestEndpoint(t *testing.T) {
	// Damping 1 with equal lengths produces an exact cost tie; the smaller
	// new endpoint index must win even though its turn is worse.
	pts := []Point{
		{X: 0, Y: 0},
		{X: 10, Y: 0},
		{X: 20, Y: 0},
		{X: 20 + 5, Y: 8.66}, // 60 degrees off, length 10, index 3
		{X: 20 + 8.66, Y: 5}, // 30 degrees off, length 10, index 4
	}
	paths := runAssembler(t, pts, [][2]int{{0, 1}, {1, 2}, {2, 3}, {2, 4}}, 1)
	if len(paths) != 2 {
		t.Fatalf("got %d paths, want 2", len(paths))
	}
	checkVerts(t, paths[0], []int{0, 1, 2, 3})
}

func TestAssembleCyclePrevention(t *testing.T) {
	// A triangle cannot become a cycle: the closing edge seeds its own
	// 1-edge path instead.
	pts := []Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 5, Y: 8}}
	paths := runAssembler(t, pts, [][2]int{{0, 1}, {0, 2}, {1, 2}}, 0.5)
	if len(paths) != 2 {
		t.Fatalf("got %d paths, want 2", len(paths))
	}
	for _, p := range paths {
		seen := map[int]bool{}
		for _, v := range p.verts {
			if seen[v] {
				t.Fatalf("path repeats vertex %d: %v", v, p.verts)
			}
			seen[v] = true
		}
	}
	total := 0
	for _, p := range paths {
		total += len(p.edges)
	}
	if total != 3 {
		t.Errorf("edges across paths = %d, want all 3 used exactly once", total)
	}
}

func TestAssembleIsolatedEdge(t *testing.T) {
	pts := []Point{{X: 0}, {X: 5}}
	paths := runAssembler(t, pts, [][2]int{{0, 1}}, 0)
	if len(paths) != 1 {
		t.Fatalf("got %d paths, want 1", len(paths))
	}
	checkVerts(t, paths[0], []int{0, 1})
	if len(paths[0].edges) != 1 {
		t.Errorf("got %d edges, want 1", len(paths[0].edges))
	}
}

func TestAssembleComponentOrderDeterministic(t *testing.T) {
	// Two disjoint chains with interleaved indices: output is ordered by
	// each component's smallest edge index and stable across runs.
	pts := []Point{
		{X: 0, Y: 0}, {X: 0, Y: 50},
		{X: 10, Y: 0}, {X: 10, Y: 50},
		{X: 20, Y: 0}, {X: 20, Y: 50},
	}
	pairs := [][2]int{{0, 2}, {1, 3}, {2, 4}, {3, 5}}

	first := runAssembler(t, pts, pairs, 0.5)
	second := runAssembler(t, pts, pairs, 0.5)
	if diff := cmp.Diff(first, second, cmp.AllowUnexported(path{})); diff != "" {
		t.Fatalf("assembly not deterministic (-first +second):\n%s", diff)
	}
	if len(first) != 2 {
		t.Fatalf("got %d paths, want 2", len(first))
	}
	checkVerts(t, first[0], []int{0, 2, 4})
	checkVerts(t, first[1], []int{1, 3, 5})
}

func TestAssembleContextCanceled(t *testing.T) {
	pts := []Point{{X: 0}, {X: 10}, {X: 20}}
	asm := newAssembler(pts, mkEdges(pts, [][2]int{{0, 1}, {1, 2}}), 0.5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := asm.run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("run with canceled context: err = %v, want context.Canceled", err)
	}
}
