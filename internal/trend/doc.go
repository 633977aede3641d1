// Package trend owns the trend-line extraction pipeline.
//
// Responsibilities: candidate connection graph construction over a point
// cloud (Delaunay triangulation of the planar projection), multi-criterion
// edge filtering (distance, survey-part grouping, azimuth), greedy
// tortuosity-minimizing path assembly, and minimum-length finalization.
// Key types: Point, Params, TrendLine, Segment.
//
// The pipeline is a pure batch computation: Detect consumes an immutable
// point slice and returns finalized lines. The only mutable state is the
// per-edge visited flag, owned by the assembler and never visible to
// callers. Output is deterministic for identical input.
//
// Dependency rule: this package depends on internal/geom only. No I/O,
// no SQL, no HTTP.
package trend
