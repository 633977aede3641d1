package trend

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// LineStats summarizes one finalized line.
type LineStats struct {
	VertexCount int     `json:"vertex_count"`
	Length      float64 `json:"length"`
	Chord       float64 `json:"chord"`
	Sinuosity   float64 `json:"sinuosity"`
	MeanAzimuth float64 `json:"mean_azimuth"`
}

// ComputeStats derives per-line metrics. Sinuosity is total length over
// chord, reported as 0 when the chord is degenerate. MeanAzimuth is the
// length-weighted circular mean of segment azimuths; because azimuths are
// 180-periodic the mean is taken over doubled angles and halved, so 178 and
// 2 degrees average near 0 rather than 90.
func ComputeStats(l TrendLine) LineStats {
	s := LineStats{VertexCount: len(l.Vertices)}
	if len(l.Segments) == 0 {
		return s
	}

	angles := make([]float64, len(l.Segments))
	weights := make([]float64, len(l.Segments))
	for i, seg := range l.Segments {
		s.Length += seg.Length
		angles[i] = 2 * seg.Azimuth * math.Pi / 180
		weights[i] = seg.Length
	}
	s.Chord = l.Chord()
	if s.Chord > 0 {
		s.Sinuosity = s.Length / s.Chord
	}

	if s.Length == 0 {
		weights = nil
	}
	mean := stat.CircularMean(angles, weights) / 2 * 180 / math.Pi
	for mean < 0 {
		mean += 180
	}
	for mean >= 180 {
		mean -= 180
	}
	s.MeanAzimuth = mean
	return s
}
