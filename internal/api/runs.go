package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/terrane-data/curvetrace/internal/httputil"
	"github.com/terrane-data/curvetrace/internal/store"
	"github.com/terrane-data/curvetrace/internal/units"
)

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	limit := 0 // all runs
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 {
			httputil.BadRequest(w, "Invalid 'limit' parameter")
			return
		}
		limit = parsed
	}

	runs, err := s.runs.List(limit)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("Failed to retrieve runs: %v", err))
		return
	}
	if runs == nil {
		runs = []*store.DetectionRun{}
	}

	httputil.WriteJSONOK(w, runs)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		httputil.BadRequest(w, "Missing 'id' parameter")
		return
	}

	switch r.Method {
	case http.MethodGet:
		run, err := s.runs.Get(id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				httputil.NotFound(w, fmt.Sprintf("run %s not found", id))
				return
			}
			httputil.InternalServerError(w, fmt.Sprintf("Failed to retrieve run: %v", err))
			return
		}
		httputil.WriteJSONOK(w, run)

	case http.MethodDelete:
		if err := s.runs.Delete(id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				httputil.NotFound(w, fmt.Sprintf("run %s not found", id))
				return
			}
			httputil.InternalServerError(w, fmt.Sprintf("Failed to delete run: %v", err))
			return
		}
		httputil.WriteJSONOK(w, map[string]string{"deleted": id})

	default:
		httputil.MethodNotAllowed(w)
	}
}

func (s *Server) handleRunLines(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		httputil.BadRequest(w, "Missing 'id' parameter")
		return
	}

	if _, err := s.runs.Get(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httputil.NotFound(w, fmt.Sprintf("run %s not found", id))
			return
		}
		httputil.InternalServerError(w, fmt.Sprintf("Failed to retrieve run: %v", err))
		return
	}

	lines, err := s.lines.ListByRun(id)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("Failed to retrieve lines: %v", err))
		return
	}

	// Apply unit conversion to lengths (coordinates stay in the survey CRS)
	target := s.requestUnits(r)
	out := make([]*store.StoredLine, len(lines))
	for i, l := range lines {
		out[i] = convertLineLength(l, target)
	}

	httputil.WriteJSONOK(w, out)
}

// convertLineLength returns a copy of l with Length converted from meters
// to the target units. Sinuosity and azimuth are unit-free and unchanged.
func convertLineLength(l *store.StoredLine, target string) *store.StoredLine {
	if target == units.M {
		return l
	}
	c := *l
	c.Length = units.ConvertLength(l.Length, target)
	return &c
}
