// Command edges runs the raster pipeline from the command line: read an
// ESRI ASCII grid, extract edge segments, and write them as CSV/GeoJSON
// exports or a PNG overlay on the grid.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/terrane-data/curvetrace/internal/config"
	"github.com/terrane-data/curvetrace/internal/edges"
	"github.com/terrane-data/curvetrace/internal/raster"
	"github.com/terrane-data/curvetrace/internal/report"
	"github.com/terrane-data/curvetrace/internal/surveyio"
)

var (
	input      = flag.String("input", "", "Path to the ESRI ASCII grid (required)")
	configFile = flag.String("config", "", "Path to a JSON tuning config")

	outDir     = flag.String("out-dir", "", "Directory for exports (default: system temp dir)")
	outCSV     = flag.String("out-csv", "", "Export the segments as CSV with this file name")
	outGeoJSON = flag.String("out-geojson", "", "Export the segments as GeoJSON with this file name")
	overlay    = flag.String("overlay", "", "Write a PNG overlay of segments on the grid to this path")
	quicklook  = flag.String("quicklook", "", "Write a grayscale PNG of the grid to this path")

	sigma        = flag.Float64("sigma", 0, "Gaussian blur sigma in cells (0 = config default)")
	lowQuantile  = flag.Float64("low-quantile", -1, "Low hysteresis quantile in [0,1] (-1 = config default)")
	highQuantile = flag.Float64("high-quantile", -1, "High hysteresis quantile in [0,1] (-1 = config default)")
	threshold    = flag.Int("threshold", 0, "Minimum Hough votes per line (0 = config default)")
	lineLength   = flag.Int("line-length", 0, "Minimum line length in cells (0 = config default)")
	lineGap      = flag.Int("line-gap", -1, "Largest tolerated gap in cells (-1 = config default)")
	windowSize   = flag.Int("window", -1, "Hough tile width in cells (-1 = config default, 0 = one tile)")
	mergeLength  = flag.Float64("merge", -1, "Endpoint merge distance (-1 = config default, 0 = off)")

	timeout = flag.Duration("timeout", 5*time.Minute, "Detection time limit")
	verbose = flag.Bool("v", false, "Log pipeline diagnostics to stderr")
	vtrace  = flag.Bool("vv", false, "Also log per-tile Hough telemetry (implies -v)")
)

// Main
func main() {
	flag.Parse()

	if *input == "" {
		flag.Usage()
		log.Fatal("-input is required")
	}
	switch {
	case *vtrace:
		edges.SetLogWriters(os.Stderr, os.Stderr, os.Stderr)
	case *verbose:
		edges.SetLogWriters(os.Stderr, os.Stderr, nil)
	}

	params, err := buildParams()
	if err != nil {
		log.Fatalf("Invalid parameters: %v", err)
	}

	grid, err := raster.LoadASCIIGrid(*input)
	if err != nil {
		log.Fatalf("Failed to read grid: %v", err)
	}
	log.Printf("Read %dx%d grid from %s (cell size %g)", grid.Cols, grid.Rows, *input, grid.CellSize)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	segs, err := edges.Detect(ctx, grid, params)
	if err != nil {
		log.Fatalf("Edge detection failed: %v", err)
	}
	log.Printf("Detected %d segments in %v", len(segs), time.Since(start).Round(time.Millisecond))

	printSummary(segs)

	if *outCSV != "" {
		if _, err := surveyio.ExportSegmentsCSV(*outDir, *outCSV, segs); err != nil {
			log.Fatalf("CSV export failed: %v", err)
		}
	}
	if *outGeoJSON != "" {
		if _, err := surveyio.ExportSegmentsGeoJSON(*outDir, *outGeoJSON, segs); err != nil {
			log.Fatalf("GeoJSON export failed: %v", err)
		}
	}
	if *quicklook != "" {
		if err := raster.SavePNG(*quicklook, raster.Render(grid)); err != nil {
			log.Fatalf("Quicklook failed: %v", err)
		}
		log.Printf("Wrote grid quicklook to %s", *quicklook)
	}
	if *overlay != "" {
		if err := report.SaveEdgesOverlay(*overlay, grid, segs, filepath.Base(*input)); err != nil {
			log.Fatalf("Overlay failed: %v", err)
		}
		log.Printf("Wrote segment overlay to %s", *overlay)
	}
}

func printSummary(segs []edges.Segment) {
	if len(segs) == 0 {
		fmt.Println("No segments found")
		return
	}
	fmt.Println("  #         x0         y0         x1         y1     length  azimuth")
	for i, s := range segs {
		fmt.Printf("%3d  %9.2f  %9.2f  %9.2f  %9.2f  %9.2f  %7.1f\n",
			i, s.X0, s.Y0, s.X1, s.Y1, s.Length, s.Azimuth)
	}
}

// buildParams merges the tuning config (or package defaults) with any
// explicit flag overrides, then validates the result.
func buildParams() (edges.Params, error) {
	cfg := config.EmptyServiceConfig()
	if *configFile != "" {
		var err error
		cfg, err = config.LoadConfig(*configFile)
		if err != nil {
			return edges.Params{}, err
		}
	}
	p := cfg.EdgesParams()

	if *sigma > 0 {
		p.Sigma = *sigma
	}
	if *lowQuantile >= 0 {
		p.LowQuantile = *lowQuantile
	}
	if *highQuantile >= 0 {
		p.HighQuantile = *highQuantile
	}
	if *threshold > 0 {
		p.Threshold = *threshold
	}
	if *lineLength > 0 {
		p.LineLength = *lineLength
	}
	if *lineGap >= 0 {
		p.LineGap = *lineGap
	}
	if *windowSize >= 0 {
		p.WindowSize = *windowSize
	}
	if *mergeLength >= 0 {
		p.MergeLength = *mergeLength
	}

	if err := p.Validate(); err != nil {
		return edges.Params{}, err
	}
	return p, nil
}
