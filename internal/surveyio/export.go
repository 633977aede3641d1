package surveyio

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/terrane-data/curvetrace/internal/edges"
	"github.com/terrane-data/curvetrace/internal/security"
	"github.com/terrane-data/curvetrace/internal/trend"
)

// defaultExportDir anchors exports when the caller gives no directory.
// Restricting exports to one directory keeps arbitrary caller paths from
// writing outside controlled locations.
var defaultExportDir = func() string {
	tmp := os.TempDir()
	abs, err := filepath.Abs(tmp)
	if err != nil {
		log.Printf("export: could not resolve absolute temp dir from %q: %v", tmp, err)
		return tmp
	}
	return filepath.Clean(abs)
}()

// SafeExportPath anchors a caller-supplied file name under dir, sanitizes
// it, and rejects anything that would escape the directory. Only the final
// path component of name is used.
func SafeExportPath(dir, name string) (string, error) {
	if dir == "" {
		dir = defaultExportDir
	}
	base := filepath.Base(name)
	if base == "." || base == ".." || base == "" || base == string(os.PathSeparator) {
		return "", fmt.Errorf("invalid export filename %q", name)
	}
	base = security.SanitizeFilename(base)

	joined := filepath.Join(dir, base)
	if err := security.ValidatePathWithinDirectory(joined, dir); err != nil {
		return "", fmt.Errorf("invalid export path: %w", err)
	}
	return joined, nil
}

func exportFile(dir, name string, write func(f *os.File) error) (string, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create export directory: %w", err)
		}
	}
	path, err := SafeExportPath(dir, name)
	if err != nil {
		return "", err
	}
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := write(f); err != nil {
		return "", err
	}
	return path, nil
}

// ExportPointsCSV writes a point cloud under dir and returns the final path.
func ExportPointsCSV(dir, name string, pts []trend.Point) (string, error) {
	if len(pts) == 0 {
		return "", fmt.Errorf("no points to export")
	}
	path, err := exportFile(dir, name, func(f *os.File) error {
		return WritePoints(f, pts)
	})
	if err != nil {
		return "", err
	}
	log.Printf("Exported %d points to %s", len(pts), path)
	return path, nil
}

// ExportLinesCSV writes trend lines as vertex rows under dir and returns
// the final path.
func ExportLinesCSV(dir, name string, lines []trend.TrendLine) (string, error) {
	if len(lines) == 0 {
		return "", fmt.Errorf("no lines to export")
	}
	path, err := exportFile(dir, name, func(f *os.File) error {
		return WriteLines(f, lines)
	})
	if err != nil {
		return "", err
	}
	log.Printf("Exported %d trend lines to %s", len(lines), path)
	return path, nil
}

// ExportLinesGeoJSON writes trend lines as a GeoJSON FeatureCollection
// under dir and returns the final path.
func ExportLinesGeoJSON(dir, name string, lines []trend.TrendLine) (string, error) {
	if len(lines) == 0 {
		return "", fmt.Errorf("no lines to export")
	}
	body, err := LinesGeoJSON(lines)
	if err != nil {
		return "", err
	}
	path, err := exportFile(dir, name, func(f *os.File) error {
		_, err := f.Write(body)
		return err
	})
	if err != nil {
		return "", err
	}
	log.Printf("Exported %d trend lines to %s", len(lines), path)
	return path, nil
}

// ExportSegmentsCSV writes raster pipeline segments under dir and returns
// the final path.
func ExportSegmentsCSV(dir, name string, segs []edges.Segment) (string, error) {
	if len(segs) == 0 {
		return "", fmt.Errorf("no segments to export")
	}
	path, err := exportFile(dir, name, func(f *os.File) error {
		return WriteSegments(f, segs)
	})
	if err != nil {
		return "", err
	}
	log.Printf("Exported %d segments to %s", len(segs), path)
	return path, nil
}

// ExportSegmentsGeoJSON writes raster pipeline segments as GeoJSON under
// dir and returns the final path.
func ExportSegmentsGeoJSON(dir, name string, segs []edges.Segment) (string, error) {
	if len(segs) == 0 {
		return "", fmt.Errorf("no segments to export")
	}
	body, err := SegmentsGeoJSON(segs)
	if err != nil {
		return "", err
	}
	path, err := exportFile(dir, name, func(f *os.File) error {
		_, err := f.Write(body)
		return err
	})
	if err != nil {
		return "", err
	}
	log.Printf("Exported %d segments to %s", len(segs), path)
	return path, nil
}
