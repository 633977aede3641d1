// Package edges owns the raster-to-line pipeline: it turns gridded data
// into line segments, independently of the point-cloud trend pipeline.
//
// Responsibilities: Canny edge detection over a masked float grid with
// quantile-based hysteresis thresholds, probabilistic Hough line extraction
// over overlapping square tiles, endpoint merging within a caller-given
// distance, and world-coordinate segment output with per-segment azimuth
// and length.
// Key types: Params, Segment.
//
// Dependency rule: this package depends on internal/raster and
// internal/geom. It shares no data structures with internal/trend.
package edges
