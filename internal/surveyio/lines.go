package surveyio

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/terrane-data/curvetrace/internal/edges"
	"github.com/terrane-data/curvetrace/internal/trend"
)

// WriteLines writes one CSV row per line vertex, in walk order.
func WriteLines(w io.Writer, lines []trend.TrendLine) error {
	cw := csv.NewWriter(w)
	header := []string{"line", "position", "idx", "x", "y", "z", "part", "value", "label"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for li, ln := range lines {
		for pos, p := range ln.Points {
			rec := []string{
				strconv.Itoa(li),
				strconv.Itoa(pos),
				strconv.Itoa(p.Index),
				ffmt(p.X), ffmt(p.Y), ffmt(p.Z),
				p.Part,
				ffmt(p.Value),
				ffmt(ln.Label),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteLineSegments writes one CSV row per trend line segment.
func WriteLineSegments(w io.Writer, lines []trend.TrendLine) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"line", "from_idx", "to_idx", "length", "azimuth"}); err != nil {
		return err
	}
	for li, ln := range lines {
		for _, s := range ln.Segments {
			rec := []string{
				strconv.Itoa(li),
				strconv.Itoa(s.From),
				strconv.Itoa(s.To),
				ffmt(s.Length),
				ffmt(s.Azimuth),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSegments writes raster pipeline segments, one row each.
func WriteSegments(w io.Writer, segs []edges.Segment) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"x0", "y0", "x1", "y1", "length", "azimuth"}); err != nil {
		return err
	}
	for _, s := range segs {
		rec := []string{
			ffmt(s.X0), ffmt(s.Y0), ffmt(s.X1), ffmt(s.Y1),
			ffmt(s.Length), ffmt(s.Azimuth),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
