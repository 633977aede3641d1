package trend

import "github.com/terrane-data/curvetrace/internal/geom"

// Point is one input sample. Index is the caller's identifier and is passed
// through to output untouched; detection itself works on slice positions, so
// indices only need to be meaningful to the caller. Part names the survey
// line or flight pass the point belongs to; points sharing a non-empty Part
// are never connected directly. Value is an arbitrary scalar that rides
// along into the output (DetectByLabel additionally interprets it as a
// cluster label).
type Point struct {
	Index int     `json:"idx"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z,omitempty"`
	Part  string  `json:"part,omitempty"`
	Value float64 `json:"value,omitempty"`
}

// Segment is one constituent edge of a finalized line, oriented along the
// path. Azimuth is undirected (degrees clockwise from north, [0,180)), so it
// is the same regardless of travel direction; Length is the full 3D length.
type Segment struct {
	From    int     `json:"from"`
	To      int     `json:"to"`
	Length  float64 `json:"length"`
	Azimuth float64 `json:"azimuth"`
}

// TrendLine is one finalized simple path through the filtered connection
// graph. Vertices lists caller point indices in path order; Points carries
// the full point records aligned to Vertices; Segments lists the edges in
// path order, always len(Vertices)-1 entries. Label is set by DetectByLabel
// and zero otherwise.
type TrendLine struct {
	Vertices []int     `json:"vertices"`
	Points   []Point   `json:"points"`
	Segments []Segment `json:"segments"`
	Label    float64   `json:"label,omitempty"`
}

// Values returns Point.Value for each vertex in path order.
func (l TrendLine) Values() []float64 {
	vals := make([]float64, len(l.Points))
	for i, p := range l.Points {
		vals[i] = p.Value
	}
	return vals
}

// Length returns the total 3D length of the line.
func (l TrendLine) Length() float64 {
	var sum float64
	for _, s := range l.Segments {
		sum += s.Length
	}
	return sum
}

// Chord returns the straight-line distance between the first and last
// vertex, zero for lines with fewer than two vertices.
func (l TrendLine) Chord() float64 {
	if len(l.Points) < 2 {
		return 0
	}
	a, b := l.Points[0], l.Points[len(l.Points)-1]
	return geom.Dist3D(a.X, a.Y, a.Z, b.X, b.Y, b.Z)
}
