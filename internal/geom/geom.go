// Package geom provides the small planar-geometry kernel shared by the
// trend-line and raster edge pipelines: distances, undirected segment
// azimuths, and turning angles between direction vectors.
//
// Azimuths follow the surveying convention: degrees clockwise from grid
// north, folded into [0, 180) because a segment has no inherent direction.
package geom

import "math"

// Vec2 is a 2D displacement or direction in map coordinates
// (X increasing east, Y increasing north).
type Vec2 struct {
	X, Y float64
}

// Norm returns the Euclidean length of v.
func (v Vec2) Norm() float64 {
	return math.Hypot(v.X, v.Y)
}

// Dot returns the dot product of v and o.
func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Dist2D returns the planar Euclidean distance between (x1,y1) and (x2,y2).
func Dist2D(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}

// Dist3D returns the Euclidean distance between two 3D points. Callers with
// planar data pass zero elevations and get the 2D distance.
func Dist3D(x1, y1, z1, x2, y2, z2 float64) float64 {
	dx, dy, dz := x2-x1, y2-y1, z2-z1
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Azimuth returns the orientation of the segment from (x1,y1) to (x2,y2) in
// degrees clockwise from north, folded into [0, 180). A zero-length segment
// reports azimuth 0.
func Azimuth(x1, y1, x2, y2 float64) float64 {
	az := math.Atan2(x2-x1, y2-y1) * 180 / math.Pi
	for az < 0 {
		az += 180
	}
	for az >= 180 {
		az -= 180
	}
	return az
}

// AzimuthDelta returns the minimal deviation between two undirected azimuths
// in degrees. Because azimuths are 180-periodic the result is in [0, 90]:
// 178 and 0 differ by 2, not 178.
func AzimuthDelta(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 180)
	if d > 90 {
		d = 180 - d
	}
	return d
}

// TurnAngle returns the angle in radians [0, pi] between directions u and v.
// A zero-length direction on either side yields 0, which callers treat as a
// straight continuation.
func TurnAngle(u, v Vec2) float64 {
	nu, nv := u.Norm(), v.Norm()
	if nu == 0 || nv == 0 {
		return 0
	}
	c := u.Dot(v) / (nu * nv)
	// Clamp: accumulated float error can push the cosine a hair outside
	// [-1, 1], which would make Acos return NaN.
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	return math.Acos(c)
}
