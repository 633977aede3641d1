package trend

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"
)

// Detect runs the full pipeline over one point set: triangulate, filter,
// assemble, finalize. Parameters are validated before any processing and an
// invalid set fails the whole call with no partial output. Degenerate
// inputs (too few points, no surviving edges, every path under MinEdges)
// produce an empty result and no error. Output is deterministic for
// identical input.
//
// The context is honored between path seeds; a single path always grows to
// completion once started.
func Detect(ctx context.Context, pts []Point, params Params) ([]TrendLine, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid detection parameters: %w", err)
	}

	start := time.Now()
	candidates := buildCandidateEdges(pts)
	filtered := filterEdges(pts, candidates, params)
	if len(filtered) == 0 {
		diagf("detect: %d points, %d candidates, nothing to assemble", len(pts), len(candidates))
		return nil, nil
	}

	asm := newAssembler(pts, filtered, params.Damping)
	paths, err := asm.run(ctx)
	if err != nil {
		return nil, err
	}

	lines := finalize(pts, filtered, paths, params.MinEdges)
	diagf("detect: %d points, %d candidates, %d filtered, %d paths, %d lines in %s",
		len(pts), len(candidates), len(filtered), len(paths), len(lines),
		time.Since(start).Round(time.Microsecond))
	return lines, nil
}

// DetectByLabel partitions the points by Value, treated as a cluster label,
// and runs detection independently per group so lines never mix labels. The
// zero label marks background and is skipped, as are NaN values. Groups run
// in ascending label order and each output line carries its group's label.
func DetectByLabel(ctx context.Context, pts []Point, params Params) ([]TrendLine, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid detection parameters: %w", err)
	}

	groups := make(map[float64][]Point)
	for _, p := range pts {
		if p.Value == 0 || math.IsNaN(p.Value) {
			continue
		}
		groups[p.Value] = append(groups[p.Value], p)
	}
	labels := make([]float64, 0, len(groups))
	for l := range groups {
		labels = append(labels, l)
	}
	sort.Float64s(labels)

	var out []TrendLine
	for _, label := range labels {
		lines, err := Detect(ctx, groups[label], params)
		if err != nil {
			return nil, fmt.Errorf("label %v: %w", label, err)
		}
		for i := range lines {
			lines[i].Label = label
		}
		diagf("label %v: %d points, %d lines", label, len(groups[label]), len(lines))
		out = append(out, lines...)
	}
	return out, nil
}
