// Package api serves the trend detection HTTP surface: run detection on
// posted point sets, browse persisted runs and their lines, and render
// debug charts.
package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/terrane-data/curvetrace/internal/httputil"
	"github.com/terrane-data/curvetrace/internal/store"
	"github.com/terrane-data/curvetrace/internal/units"
	"github.com/terrane-data/curvetrace/internal/version"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

type Server struct {
	db      *store.DB
	runs    *store.RunStore
	lines   *store.LineStore
	units   string
	timeout time.Duration
}

// NewServer wires the HTTP handlers to a database. units is the default
// length unit for responses (individual requests may override with
// ?units=); timeout bounds each detection request.
func NewServer(db *store.DB, defaultUnits string, timeout time.Duration) *Server {
	if !units.IsValid(defaultUnits) {
		defaultUnits = units.M
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Server{
		db:      db,
		runs:    store.NewRunStore(db),
		lines:   store.NewLineStore(db),
		units:   defaultUnits,
		timeout: timeout,
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400 && statusCode < 500:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 500:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/detect", s.handleDetect)
	mux.HandleFunc("/api/runs", s.handleListRuns)
	mux.HandleFunc("/api/run", s.handleRun)
	mux.HandleFunc("/api/run/lines", s.handleRunLines)
	mux.HandleFunc("/api/plots/run", s.handleRunPlot)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/config", s.showConfig)
	return mux
}

// requestUnits returns the validated ?units= override, or the server
// default when absent or invalid.
func (s *Server) requestUnits(r *http.Request) string {
	if u := r.URL.Query().Get("units"); u != "" && units.IsValid(u) {
		return u
	}
	return s.units
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	httputil.WriteJSONOK(w, map[string]interface{}{
		"status":     "ok",
		"version":    version.Version,
		"git_sha":    version.GitSHA,
		"build_time": version.BuildTime,
	})
}

func (s *Server) showConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	config := map[string]interface{}{
		"units":      s.units,
		"timeout_ms": s.timeout.Milliseconds(),
	}

	httputil.WriteJSONOK(w, config)
}
