package trend

import "fmt"

// Params controls the full detection pipeline. MaxDistance bounds candidate
// edge length in map units. MinEdges is the smallest number of edges a path
// must have to survive finalization. Damping in [0,1] weights turning angle
// against segment length in the extension cost: 0 penalizes direction
// changes at full strength, 1 reduces the choice to nearest-neighbor by
// length. AzimuthTarget/AzimuthTolerance enable orientation filtering and
// must be set together; the target is an undirected azimuth, so deviations
// are measured modulo 180 degrees.
type Params struct {
	MaxDistance      float64  `json:"max_distance"`
	MinEdges         int      `json:"min_edges"`
	Damping          float64  `json:"damping"`
	AzimuthTarget    *float64 `json:"azimuth,omitempty"`
	AzimuthTolerance *float64 `json:"azimuth_tol,omitempty"`
}

// DefaultParams returns the standard starting configuration: generous
// distance bound, single-edge lines allowed, direction changes fully
// weighted, no azimuth filter.
func DefaultParams() Params {
	return Params{
		MaxDistance: 50,
		MinEdges:    1,
		Damping:     0,
	}
}

// Validate reports the first parameter violation, or nil. It must pass
// before any processing starts; detection never emits partial results on
// invalid parameters.
func (p Params) Validate() error {
	if p.MaxDistance <= 0 {
		return fmt.Errorf("max distance must be positive, got %v", p.MaxDistance)
	}
	if p.MinEdges < 1 {
		return fmt.Errorf("min edges must be at least 1, got %d", p.MinEdges)
	}
	if p.Damping < 0 || p.Damping > 1 {
		return fmt.Errorf("damping must be in [0,1], got %v", p.Damping)
	}
	if (p.AzimuthTarget == nil) != (p.AzimuthTolerance == nil) {
		return fmt.Errorf("azimuth target and tolerance must be set together")
	}
	if p.AzimuthTolerance != nil && *p.AzimuthTolerance < 0 {
		return fmt.Errorf("azimuth tolerance must be non-negative, got %v", *p.AzimuthTolerance)
	}
	return nil
}

// azimuthFilter reports whether orientation filtering is enabled.
func (p Params) azimuthFilter() bool {
	return p.AzimuthTarget != nil && p.AzimuthTolerance != nil
}
