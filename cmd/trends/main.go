// Command trends runs the point-cloud pipeline from the command line:
// read a points CSV, detect trend lines, and write the results as
// CSV/GeoJSON exports, PNG plots, or rows in a curvetrace database.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/terrane-data/curvetrace/internal/api"
	"github.com/terrane-data/curvetrace/internal/config"
	"github.com/terrane-data/curvetrace/internal/report"
	"github.com/terrane-data/curvetrace/internal/store"
	"github.com/terrane-data/curvetrace/internal/surveyio"
	"github.com/terrane-data/curvetrace/internal/trend"
)

var (
	input      = flag.String("input", "", "Path to the points CSV (required)")
	source     = flag.String("source", "", "Source label for persisted runs (default: input file name)")
	configFile = flag.String("config", "", "Path to a JSON tuning config")
	perLabel   = flag.Bool("per-label", false, "Detect lines independently for each point value label")

	outDir     = flag.String("out-dir", "", "Directory for exports (default: system temp dir)")
	outCSV     = flag.String("out-csv", "", "Export the lines as CSV with this file name")
	outGeoJSON = flag.String("out-geojson", "", "Export the lines as GeoJSON with this file name")
	plotFile   = flag.String("plot", "", "Write a PNG map of points and lines to this path")
	roseFile   = flag.String("rose", "", "Write a PNG azimuth histogram to this path")

	dbFile    = flag.String("db", "", "Persist the run into this curvetrace SQLite database")
	serverURL = flag.String("server", "", "Submit the points to a running curvetraced instead of detecting locally")

	maxDistance = flag.Float64("max-distance", 0, "Maximum candidate edge length (0 = config default)")
	minEdges    = flag.Int("min-edges", 0, "Minimum segments per kept line (0 = config default)")
	damping     = flag.Float64("damping", -1, "Turning angle damping in [0,1] (-1 = config default)")
	azimuth     = flag.String("azimuth", "", "Azimuth filter target in degrees (empty = config default)")
	azimuthTol  = flag.String("azimuth-tol", "", "Azimuth filter tolerance in degrees")

	timeout = flag.Duration("timeout", 5*time.Minute, "Detection time limit")
	verbose = flag.Bool("v", false, "Log pipeline diagnostics to stderr")
	vtrace  = flag.Bool("vv", false, "Also log per-seed assembly telemetry (implies -v)")
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
		trend.SetLogWriters(os.Stderr, os.Stderr, os.Stderr)
	case *verbose:
		trend.SetLogWriters(os.Stderr, os.Stderr, nil)
	}

	params, err := buildParams()
	if err != nil {
		log.Fatalf("Invalid parameters: %v", err)
	}

	points, err := surveyio.ReadPointsFile(*input)
	if err != nil {
		log.Fatalf("Failed to read points: %v", err)
	}
	log.Printf("Read %d points from %s", len(points), *input)

	srcName := *source
	if srcName == "" {
		srcName = filepath.Base(*input)
	}

	if *serverURL != "" {
		if *outCSV != "" || *outGeoJSON != "" || *plotFile != "" || *roseFile != "" || *dbFile != "" {
			log.Fatal("-server cannot be combined with local export or persistence flags")
		}
		submitRemote(srcName, points, params)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	detect := trend.Detect
	if *perLabel {
		detect = trend.DetectByLabel
	}

	start := time.Now()
	lines, err := detect(ctx, points, params)
	if err != nil {
		log.Fatalf("Detection failed: %v", err)
	}
	elapsed := time.Since(start)
	log.Printf("Detected %d trend lines in %v", len(lines), elapsed.Round(time.Millisecond))

	printSummary(lines)

	if *outCSV != "" {
		if _, err := surveyio.ExportLinesCSV(*outDir, *outCSV, lines); err != nil {
			log.Fatalf("CSV export failed: %v", err)
		}
	}
	if *outGeoJSON != "" {
		if _, err := surveyio.ExportLinesGeoJSON(*outDir, *outGeoJSON, lines); err != nil {
			log.Fatalf("GeoJSON export failed: %v", err)
		}
	}
	if *plotFile != "" {
		if err := report.SaveLinesPlot(*plotFile, points, lines, srcName); err != nil {
			log.Fatalf("Lines plot failed: %v", err)
		}
		log.Printf("Wrote lines plot to %s", *plotFile)
	}
	if *roseFile != "" {
		if err := report.SaveAzimuthRose(*roseFile, lines, srcName); err != nil {
			log.Fatalf("Azimuth rose failed: %v", err)
		}
		log.Printf("Wrote azimuth rose to %s", *roseFile)
	}
	if *dbFile != "" {
		if err := persistRun(srcName, points, lines, params, elapsed); err != nil {
			log.Fatalf("Failed to persist run: %v", err)
		}
	}
}

// buildParams merges the tuning config (or package defaults) with any
// explicit flag overrides, then validates the result.
func buildParams() (trend.Params, error) {
	cfg := config.EmptyServiceConfig()
	if *configFile != "" {
		var err error
		cfg, err = config.LoadConfig(*configFile)
		if err != nil {
			return trend.Params{}, err
		}
	}
	p := cfg.TrendParams()

	if *maxDistance > 0 {
		p.MaxDistance = *maxDistance
	}
	if *minEdges > 0 {
		p.MinEdges = *minEdges
	}
	if *damping >= 0 {
		p.Damping = *damping
	}
	if *azimuth != "" {
		target, err := strconv.ParseFloat(*azimuth, 64)
		if err != nil {
			return trend.Params{}, fmt.Errorf("invalid azimuth %q: %w", *azimuth, err)
		}
		p.AzimuthTarget = &target
	}
	if *azimuthTol != "" {
		tol, err := strconv.ParseFloat(*azimuthTol, 64)
		if err != nil {
			return trend.Params{}, fmt.Errorf("invalid azimuth tolerance %q: %w", *azimuthTol, err)
		}
		p.AzimuthTolerance = &tol
	}

	if err := p.Validate(); err != nil {
		return trend.Params{}, err
	}
	return p, nil
}

// printSummary writes a per-line stats table to stdout.
func printSummary(lines []trend.TrendLine) {
	if len(lines) == 0 {
		fmt.Println("No trend lines found")
		return
	}
	fmt.Println("  #  label  vertices     length  sinuosity  azimuth")
	for i, l := range lines {
		s := trend.ComputeStats(l)
		fmt.Printf("%3d  %5g  %8d  %9.2f  %9.3f  %7.1f\n",
			i, l.Label, s.VertexCount, s.Length, s.Sinuosity, s.MeanAzimuth)
	}
}

// submitRemote posts the points to a curvetraced instance, which runs the
// detection and persists the results itself.
func submitRemote(src string, points []trend.Point, params trend.Params) {
	client := api.NewClient(nil, *serverURL)
	resp, err := client.Detect(api.DetectRequest{
		Source:   src,
		Points:   points,
		Params:   &params,
		PerLabel: *perLabel,
	})
	if err != nil {
		log.Fatalf("Remote detection failed: %v", err)
	}
	log.Printf("Run %s recorded on %s: %d lines from %d points in %dms",
		resp.Run.RunID, *serverURL, resp.Run.LineCount, resp.Run.PointCount, resp.Run.DurationMS)
}

// persistRun stores the run and its lines in a local curvetrace database,
// creating the schema if the database is fresh.
func persistRun(src string, points []trend.Point, lines []trend.TrendLine, params trend.Params, elapsed time.Duration) error {
	db, err := store.Open(*dbFile)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.MigrateUp(); err != nil {
		return err
	}

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return err
	}
	edgeCount := 0
	for _, l := range lines {
		edgeCount += len(l.Segments)
	}
	run := &store.DetectionRun{
		Source:     src,
		Params:     paramsJSON,
		PointCount: len(points),
		EdgeCount:  edgeCount,
		LineCount:  len(lines),
		DurationMS: elapsed.Milliseconds(),
	}
	if err := store.NewRunStore(db).Insert(run); err != nil {
		return err
	}
	if _, err := store.NewLineStore(db).InsertBatch(run.RunID, lines); err != nil {
		return err
	}
	log.Printf("Persisted run %s (%d lines) to %s", run.RunID, len(lines), *dbFile)
	return nil
}
