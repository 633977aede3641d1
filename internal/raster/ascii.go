package raster

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ReadASCIIGrid parses an ESRI ASCII grid. The header accepts keys in any
// order and either corner- or center-anchored origins; NODATA_value is
// optional and defaults to -9999. Values follow in row-major order with row
// 0 the northernmost.
func ReadASCIIGrid(r io.Reader) (*Grid, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	sc.Split(bufio.ScanWords)

	header := map[string]float64{}
	var values []float64
	for sc.Scan() {
		tok := sc.Text()
		if len(values) == 0 && isHeaderKey(tok) {
			if !sc.Scan() {
				return nil, fmt.Errorf("header key %q has no value", tok)
			}
			v, err := strconv.ParseFloat(sc.Text(), 64)
			if err != nil {
				return nil, fmt.Errorf("header %q: %w", tok, err)
			}
			header[strings.ToLower(tok)] = v
			continue
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("grid value %d: %w", len(values), err)
		}
		values = append(values, v)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read grid: %w", err)
	}

	cols, ok := header["ncols"]
	if !ok {
		return nil, fmt.Errorf("header missing ncols")
	}
	rows, ok := header["nrows"]
	if !ok {
		return nil, fmt.Errorf("header missing nrows")
	}
	cell, ok := header["cellsize"]
	if !ok {
		return nil, fmt.Errorf("header missing cellsize")
	}

	g := &Grid{
		Cols:     int(cols),
		Rows:     int(rows),
		CellSize: cell,
		NoData:   DefaultNoData,
		Values:   values,
	}
	if v, ok := header["nodata_value"]; ok {
		g.NoData = v
	}
	switch {
	case hasKey(header, "xllcorner"):
		g.XLL = header["xllcorner"]
	case hasKey(header, "xllcenter"):
		g.XLL = header["xllcenter"] - cell/2
	default:
		return nil, fmt.Errorf("header missing xllcorner")
	}
	switch {
	case hasKey(header, "yllcorner"):
		g.YLL = header["yllcorner"]
	case hasKey(header, "yllcenter"):
		g.YLL = header["yllcenter"] - cell/2
	default:
		return nil, fmt.Errorf("header missing yllcorner")
	}

	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("parsed grid invalid: %w", err)
	}
	return g, nil
}

// LoadASCIIGrid reads an ESRI ASCII grid from disk.
func LoadASCIIGrid(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open grid: %w", err)
	}
	defer f.Close()
	g, err := ReadASCIIGrid(f)
	if err != nil {
		return nil, fmt.Errorf("parse grid %s: %w", path, err)
	}
	return g, nil
}

// WriteASCIIGrid writes g in ESRI ASCII format, one grid row per line.
func WriteASCIIGrid(w io.Writer, g *Grid) error {
	if err := g.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "ncols %d\n", g.Cols)
	fmt.Fprintf(bw, "nrows %d\n", g.Rows)
	fmt.Fprintf(bw, "xllcorner %g\n", g.XLL)
	fmt.Fprintf(bw, "yllcorner %g\n", g.YLL)
	fmt.Fprintf(bw, "cellsize %g\n", g.CellSize)
	fmt.Fprintf(bw, "NODATA_value %g\n", g.NoData)
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			if col > 0 {
				bw.WriteByte(' ')
			}
			bw.WriteString(strconv.FormatFloat(g.At(row, col), 'g', -1, 64))
		}
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write grid: %w", err)
	}
	return nil
}

func isHeaderKey(tok string) bool {
	switch strings.ToLower(tok) {
	case "ncols", "nrows", "xllcorner", "yllcorner", "xllcenter", "yllcenter", "cellsize", "nodata_value":
		return true
	}
	return false
}

func hasKey(h map[string]float64, k string) bool {
	_, ok := h[k]
	return ok
}
