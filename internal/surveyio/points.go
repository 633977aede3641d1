package surveyio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/terrane-data/curvetrace/internal/trend"
)

// ReadPoints parses a CSV point cloud. Columns are located by header name,
// case-insensitively: x and y are required; idx, z, part and value are
// optional. Rows with a missing idx column are numbered in file order.
func ReadPoints(r io.Reader) ([]trend.Point, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty point file")
	}
	if err != nil {
		return nil, fmt.Errorf("read point header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	xi, ok := col["x"]
	if !ok {
		return nil, fmt.Errorf("point file has no x column")
	}
	yi, ok := col["y"]
	if !ok {
		return nil, fmt.Errorf("point file has no y column")
	}
	zi, hasZ := col["z"]
	partI, hasPart := col["part"]
	valueI, hasValue := col["value"]
	idxI, hasIdx := col["idx"]

	var pts []trend.Point
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		p := trend.Point{Index: len(pts)}
		if p.X, err = strconv.ParseFloat(strings.TrimSpace(rec[xi]), 64); err != nil {
			return nil, fmt.Errorf("row %d: bad x %q", row, rec[xi])
		}
		if p.Y, err = strconv.ParseFloat(strings.TrimSpace(rec[yi]), 64); err != nil {
			return nil, fmt.Errorf("row %d: bad y %q", row, rec[yi])
		}
		if hasZ {
			if p.Z, err = optFloat(rec[zi]); err != nil {
				return nil, fmt.Errorf("row %d: bad z %q", row, rec[zi])
			}
		}
		if hasIdx {
			s := strings.TrimSpace(rec[idxI])
			if s != "" {
				if p.Index, err = strconv.Atoi(s); err != nil {
					return nil, fmt.Errorf("row %d: bad idx %q", row, rec[idxI])
				}
			}
		}
		if hasPart {
			p.Part = strings.TrimSpace(rec[partI])
		}
		if hasValue {
			if p.Value, err = optFloat(rec[valueI]); err != nil {
				return nil, fmt.Errorf("row %d: bad value %q", row, rec[valueI])
			}
		}
		pts = append(pts, p)
	}
	return pts, nil
}

// ReadPointsFile is ReadPoints over a file on disk.
func ReadPointsFile(path string) ([]trend.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open point file: %w", err)
	}
	defer f.Close()
	pts, err := ReadPoints(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pts, nil
}

// WritePoints writes the full six-column point CSV.
func WritePoints(w io.Writer, pts []trend.Point) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"idx", "x", "y", "z", "part", "value"}); err != nil {
		return err
	}
	for _, p := range pts {
		rec := []string{
			strconv.Itoa(p.Index),
			ffmt(p.X), ffmt(p.Y), ffmt(p.Z),
			p.Part,
			ffmt(p.Value),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func optFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// ffmt formats floats so that reading them back reproduces the exact value.
func ffmt(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
