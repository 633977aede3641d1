package surveyio

import (
	"encoding/json"

	"github.com/terrane-data/curvetrace/internal/edges"
	"github.com/terrane-data/curvetrace/internal/trend"
)

type geoGeometry struct {
	Type        string      `json:"type"`
	Coordinates [][]float64 `json:"coordinates"`
}

type geoFeature struct {
	Type       string                 `json:"type"`
	Geometry   geoGeometry            `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

type geoCollection struct {
	Type     string       `json:"type"`
	Features []geoFeature `json:"features"`
}

// LinesGeoJSON renders trend lines as a FeatureCollection of LineString
// features with 3D coordinates and per-line summary properties.
func LinesGeoJSON(lines []trend.TrendLine) ([]byte, error) {
	fc := geoCollection{Type: "FeatureCollection", Features: make([]geoFeature, 0, len(lines))}
	for i, ln := range lines {
		coords := make([][]float64, len(ln.Points))
		for j, p := range ln.Points {
			coords[j] = []float64{p.X, p.Y, p.Z}
		}
		st := trend.ComputeStats(ln)
		fc.Features = append(fc.Features, geoFeature{
			Type:     "Feature",
			Geometry: geoGeometry{Type: "LineString", Coordinates: coords},
			Properties: map[string]interface{}{
				"line":         i,
				"label":        ln.Label,
				"vertices":     st.VertexCount,
				"length":       st.Length,
				"sinuosity":    st.Sinuosity,
				"mean_azimuth": st.MeanAzimuth,
			},
		})
	}
	return json.Marshal(fc)
}

// SegmentsGeoJSON renders raster pipeline segments as two-point LineString
// features.
func SegmentsGeoJSON(segs []edges.Segment) ([]byte, error) {
	fc := geoCollection{Type: "FeatureCollection", Features: make([]geoFeature, 0, len(segs))}
	for i, s := range segs {
		fc.Features = append(fc.Features, geoFeature{
			Type: "Feature",
			Geometry: geoGeometry{
				Type:        "LineString",
				Coordinates: [][]float64{{s.X0, s.Y0}, {s.X1, s.Y1}},
			},
			Properties: map[string]interface{}{
				"segment": i,
				"length":  s.Length,
				"azimuth": s.Azimuth,
			},
		})
	}
	return json.Marshal(fc)
}
