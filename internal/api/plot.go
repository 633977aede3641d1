package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/terrane-data/curvetrace/internal/httputil"
	"github.com/terrane-data/curvetrace/internal/store"
)

const echartsAssetsPrefix = "https://go-echarts.github.io/go-echarts-assets/assets/"

// viridis ramp shared by the visual maps
var viridisColors = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

// handleRunPlot renders a quick HTML page of a run's lines using go-echarts.
// This is a debugging-only endpoint to visually inspect detection output
// without GIS tooling. Query params:
//   - id (required): run to plot
func (s *Server) handleRunPlot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		httputil.BadRequest(w, "Missing 'id' parameter")
		return
	}

	run, err := s.runs.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httputil.NotFound(w, fmt.Sprintf("run %s not found", id))
			return
		}
		httputil.InternalServerError(w, fmt.Sprintf("Failed to retrieve run: %v", err))
		return
	}

	stored, err := s.lines.ListByRun(id)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("Failed to retrieve lines: %v", err))
		return
	}
	if len(stored) == 0 {
		httputil.NotFound(w, "no lines available for run")
		return
	}

	geoms := make([]store.LineGeometry, len(stored))
	for i, sl := range stored {
		g, err := sl.DecodeGeometry()
		if err != nil {
			httputil.InternalServerError(w, fmt.Sprintf("failed to decode line %d: %v", i, err))
			return
		}
		geoms[i] = g
	}

	minX, maxX, minY, maxY := bounds(geoms)
	// Force a square plot by giving both axes the same span
	spanX, spanY := maxX-minX, maxY-minY
	span := spanX
	if spanY > span {
		span = spanY
	}
	if span == 0 {
		span = 1.0
	}
	half := span * 1.05 / 2
	cx, cy := (minX+maxX)/2, (minY+maxY)/2

	subtitle := fmt.Sprintf("run=%s source=%s lines=%d", run.RunID, run.Source, len(stored))

	// Scatter of every vertex, coloured by the line it belongs to
	data := make([]opts.ScatterData, 0, run.PointCount)
	for i, g := range geoms {
		for _, c := range g.Coords {
			data = append(data, opts.ScatterData{Value: []interface{}{c[0], c[1], i}})
		}
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Trend Lines", Theme: "dark", Width: "900px", Height: "900px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "Trend Vertices", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: cx - half, Max: cx + half, Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: cy - half, Max: cy + half, Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(len(stored) - 1),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: viridisColors},
		}),
	)
	scatter.AddSeries("vertices", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 5}))

	// Polylines, one series per finalized line
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "900px", Height: "900px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "Trend Lines", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Min: cx - half, Max: cx + half, Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Min: cy - half, Max: cy + half, Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
	)
	for i, g := range geoms {
		series := make([]opts.LineData, len(g.Coords))
		for j, c := range g.Coords {
			series[j] = opts.LineData{Value: []interface{}{c[0], c[1]}}
		}
		line.AddSeries(fmt.Sprintf("line %d", i), series)
	}

	// Azimuth distribution, 15 degree buckets over [0,180)
	counts := make([]int, 12)
	for _, sl := range stored {
		bucket := int(sl.MeanAzimuth / 15)
		if bucket < 0 {
			bucket = 0
		}
		if bucket > 11 {
			bucket = 11
		}
		counts[bucket]++
	}
	labels := make([]string, 12)
	barData := make([]opts.BarData, 12)
	for i := range counts {
		labels[i] = fmt.Sprintf("%d-%d", i*15, (i+1)*15)
		barData[i] = opts.BarData{Value: counts[i]}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "900px", Height: "480px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "Mean Azimuth Distribution", Subtitle: "degrees clockwise from north, 15 degree buckets"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(labels).
		AddSeries("lines", barData,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	page := components.NewPage()
	page.SetAssetsHost(echartsAssetsPrefix)
	page.AddCharts(scatter, line, bar)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("render error: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// bounds returns the XY extent across all line geometries.
func bounds(geoms []store.LineGeometry) (minX, maxX, minY, maxY float64) {
	first := true
	for _, g := range geoms {
		for _, c := range g.Coords {
			if first {
				minX, maxX, minY, maxY = c[0], c[0], c[1], c[1]
				first = false
				continue
			}
			if c[0] < minX {
				minX = c[0]
			}
			if c[0] > maxX {
				maxX = c[0]
			}
			if c[1] < minY {
				minY = c[1]
			}
			if c[1] > maxY {
				maxY = c[1]
			}
		}
	}
	return minX, maxX, minY, maxY
}
