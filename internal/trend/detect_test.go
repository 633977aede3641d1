package trend

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chain4 is the canonical end-to-end input: four collinear points spaced 10
// apart, so consecutive connections survive a max distance of 15 and every
// join is perfectly straight.
func chain4() []Point {
	return []Point{
		{Index: 0, X: 0, Y: 0},
		{Index: 1, X: 10, Y: 0},
		{Index: 2, X: 20, Y: 0},
		{Index: 3, X: 30, Y: 0},
	}
}

func chainParams() Params {
	return Params{MaxDistance: 15, MinEdges: 1, Damping: 0.5}
}

func TestDetectValidation(t *testing.T) {
	t.Parallel()
	pts := chain4()

	cases := []struct {
		name   string
		mutate func(*Params)
	}{
		{"zero max distance", func(p *Params) { p.MaxDistance = 0 }},
		{"negative max distance", func(p *Params) { p.MaxDistance = -5 }},
		{"zero min edges", func(p *Params) { p.MinEdges = 0 }},
		{"damping below range", func(p *Params) { p.Damping = -0.1 }},
		{"damping above range", func(p *Params) { p.Damping = 1.1 }},
		{"azimuth target without tolerance", func(p *Params) { p.AzimuthTarget = ptrF(45) }},
		{"azimuth tolerance without target", func(p *Params) { p.AzimuthTolerance = ptrF(10) }},
		{"negative azimuth tolerance", func(p *Params) {
			p.AzimuthTarget = ptrF(45)
			p.AzimuthTolerance = ptrF(-1)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := chainParams()
			tc.mutate(&p)
			lines, err := Detect(context.Background(), pts, p)
			require.Error(t, err)
			assert.Nil(t, lines, "no partial results on validation failure")
		})
	}
}

func TestDetectDegenerateInputs(t *testing.T) {
	t.Parallel()

	t.Run("no points", func(t *testing.T) {
		lines, err := Detect(context.Background(), nil, chainParams())
		require.NoError(t, err)
		assert.Empty(t, lines)
	})
	t.Run("two points", func(t *testing.T) {
		pts := []Point{{Index: 0}, {Index: 1, X: 5}}
		lines, err := Detect(context.Background(), pts, chainParams())
		require.NoError(t, err)
		assert.Empty(t, lines)
	})
	t.Run("coincident points", func(t *testing.T) {
		pts := []Point{{X: 1, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 1}}
		lines, err := Detect(context.Background(), pts, chainParams())
		require.NoError(t, err)
		assert.Empty(t, lines)
	})
	t.Run("all edges filtered out", func(t *testing.T) {
		pts := []Point{{X: 0}, {X: 100}, {X: 50, Y: 90}}
		p := chainParams()
		p.MaxDistance = 10
		lines, err := Detect(context.Background(), pts, p)
		require.NoError(t, err)
		assert.Empty(t, lines)
	})
	t.Run("all paths below min edges", func(t *testing.T) {
		p := chainParams()
		p.MinEdges = 4
		lines, err := Detect(context.Background(), chain4(), p)
		require.NoError(t, err)
		assert.Empty(t, lines)
	})
}

func TestDetectCollinearChain(t *testing.T) {
	t.Parallel()
	lines, err := Detect(context.Background(), chain4(), chainParams())
	require.NoError(t, err)
	require.Len(t, lines, 1, "straight joins cost zero, so one line must cover the chain")

	line := lines[0]
	assert.Equal(t, []int{0, 1, 2, 3}, line.Vertices)
	require.Len(t, line.Segments, 3)
	for _, seg := range line.Segments {
		assert.InDelta(t, 10.0, seg.Length, 1e-9)
		assert.InDelta(t, 90.0, seg.Azimuth, 1e-9)
	}
	assert.InDelta(t, 30.0, line.Length(), 1e-9)
}

func TestDetectSamePartSplit(t *testing.T) {
	t.Parallel()
	pts := chain4()
	pts[0].Part = "A"
	pts[1].Part = "B"
	pts[2].Part = "B"
	pts[3].Part = "C"

	t.Run("min edges 1 splits the chain", func(t *testing.T) {
		lines, err := Detect(context.Background(), pts, chainParams())
		require.NoError(t, err)
		require.Len(t, lines, 2, "dropping the same-part middle edge leaves two stubs")
		assert.Equal(t, []int{0, 1}, lines[0].Vertices)
		assert.Equal(t, []int{2, 3}, lines[1].Vertices)
	})
	t.Run("min edges 2 drops both stubs", func(t *testing.T) {
		p := chainParams()
		p.MinEdges = 2
		lines, err := Detect(context.Background(), pts, p)
		require.NoError(t, err)
		assert.Empty(t, lines)
	})
}

func TestDetectAzimuthFilterEndToEnd(t *testing.T) {
	t.Parallel()
	pts := chain4() // east-west chain, azimuth 90

	t.Run("orthogonal target removes everything", func(t *testing.T) {
		p := chainParams()
		p.AzimuthTarget = ptrF(0)
		p.AzimuthTolerance = ptrF(10)
		lines, err := Detect(context.Background(), pts, p)
		require.NoError(t, err)
		assert.Empty(t, lines)
	})
	t.Run("matching target keeps the chain", func(t *testing.T) {
		p := chainParams()
		p.AzimuthTarget = ptrF(90)
		p.AzimuthTolerance = ptrF(10)
		lines, err := Detect(context.Background(), pts, p)
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, []int{0, 1, 2, 3}, lines[0].Vertices)
	})
}

// forkCloud is a T-junction where the damping factor decides the outcome:
// after the chain 0-1-2 the straight continuation (index 4) and the
// orthogonal branch (index 3) are both 18 long. Any damping below 1 prefers
// the straight edge; damping 1 produces an exact cost tie broken to the
// smaller index, which is the orthogonal branch.
func forkCloud() []Point {
	return []Point{
		{Index: 0, X: 0, Y: 0},
		{Index: 1, X: 10, Y: 0},
		{Index: 2, X: 20, Y: 0},
		{Index: 3, X: 20, Y: 18},
		{Index: 4, X: 38, Y: 0},
	}
}

func forkParams(damping float64) Params {
	return Params{MaxDistance: 19, MinEdges: 1, Damping: damping}
}

func TestDetectDampingControlsExtension(t *testing.T) {
	t.Parallel()

	t.Run("undamped follows the straight edge", func(t *testing.T) {
		lines, err := Detect(context.Background(), forkCloud(), forkParams(0))
		require.NoError(t, err)
		require.Len(t, lines, 2)
		assert.Equal(t, []int{0, 1, 2, 4}, lines[0].Vertices)
		assert.Equal(t, []int{2, 3}, lines[1].Vertices)
	})
	t.Run("fully damped ties on length and breaks to the smaller index", func(t *testing.T) {
		lines, err := Detect(context.Background(), forkCloud(), forkParams(1))
		require.NoError(t, err)
		require.Len(t, lines, 2)
		assert.Equal(t, []int{0, 1, 2, 3}, lines[0].Vertices)
		assert.Equal(t, []int{2, 4}, lines[1].Vertices)
	})
}

func TestDetectByLabel(t *testing.T) {
	t.Parallel()
	var pts []Point
	// Label 2: a chain at y=0. Label 1: a chain at y=100. Label 0 points
	// are background and must never appear in output.
	for i := 0; i < 4; i++ {
		pts = append(pts, Point{Index: i, X: float64(10 * i), Y: 0, Value: 2})
	}
	for i := 0; i < 4; i++ {
		pts = append(pts, Point{Index: 10 + i, X: float64(10 * i), Y: 100, Value: 1})
	}
	pts = append(pts,
		Point{Index: 20, X: 5, Y: 50, Value: 0},
		Point{Index: 21, X: 15, Y: 55, Value: 0},
		Point{Index: 22, X: 25, Y: 50, Value: 0},
	)

	lines, err := DetectByLabel(context.Background(), pts, chainParams())
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, 1.0, lines[0].Label, "groups run in ascending label order")
	assert.Equal(t, []int{10, 11, 12, 13}, lines[0].Vertices)
	assert.Equal(t, 2.0, lines[1].Label)
	assert.Equal(t, []int{0, 1, 2, 3}, lines[1].Vertices)
	for _, l := range lines {
		for _, v := range l.Vertices {
			assert.Less(t, v, 20, "background points must not appear in any line")
		}
		assert.Equal(t, []float64{l.Label, l.Label, l.Label, l.Label}, l.Values())
	}
}

func TestDetectInvariantsOnNoisyCloud(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(7))
	var pts []Point
	for i := 0; i < 120; i++ {
		pts = append(pts, Point{
			Index: i,
			X:     rng.Float64() * 200,
			Y:     rng.Float64() * 200,
		})
	}
	params := Params{MaxDistance: 40, MinEdges: 2, Damping: 0.75}

	first, err := Detect(context.Background(), pts, params)
	require.NoError(t, err)
	second, err := Detect(context.Background(), pts, params)
	require.NoError(t, err)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("detection not deterministic (-first +second):\n%s", diff)
	}

	usedEdges := map[[2]int]bool{}
	for _, line := range first {
		require.GreaterOrEqual(t, len(line.Segments), 2, "finalizer must enforce min edges")
		require.Len(t, line.Vertices, len(line.Segments)+1)

		seen := map[int]bool{}
		for _, v := range line.Vertices {
			assert.False(t, seen[v], "line repeats vertex %d", v)
			seen[v] = true
		}
		for _, seg := range line.Segments {
			a, b := seg.From, seg.To
			if a > b {
				a, b = b, a
			}
			key := [2]int{a, b}
			assert.False(t, usedEdges[key], "edge %v reused across lines", key)
			usedEdges[key] = true
			assert.LessOrEqual(t, seg.Length, params.MaxDistance)
		}
	}
}

func TestDetectContextCanceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Detect(ctx, chain4(), chainParams())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
