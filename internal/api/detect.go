package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/terrane-data/curvetrace/internal/httputil"
	"github.com/terrane-data/curvetrace/internal/store"
	"github.com/terrane-data/curvetrace/internal/trend"
)

// DetectRequest is the POST /api/detect payload. Params falls back to
// defaults when omitted. PerLabel partitions the points by Value before
// detection so separately-clustered populations never connect.
type DetectRequest struct {
	Source   string        `json:"source,omitempty"`
	Points   []trend.Point `json:"points"`
	Params   *trend.Params `json:"params,omitempty"`
	PerLabel bool          `json:"per_label,omitempty"`
}

// DetectResponse returns the persisted run record and its stored lines.
type DetectResponse struct {
	Run   *store.DetectionRun `json:"run"`
	Lines []*store.StoredLine `json:"lines"`
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req DetectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if len(req.Points) == 0 {
		httputil.BadRequest(w, "no points provided")
		return
	}

	params := trend.DefaultParams()
	if req.Params != nil {
		params = *req.Params
	}
	if err := params.Validate(); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("invalid params: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	detect := trend.Detect
	if req.PerLabel {
		detect = trend.DetectByLabel
	}

	start := time.Now()
	lines, err := detect(ctx, req.Points, params)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			httputil.WriteJSONError(w, http.StatusGatewayTimeout, "detection timed out")
			return
		}
		httputil.InternalServerError(w, fmt.Sprintf("detection failed: %v", err))
		return
	}
	duration := time.Since(start)

	edgeCount := 0
	for _, l := range lines {
		edgeCount += len(l.Segments)
	}

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to encode params: %v", err))
		return
	}

	run := &store.DetectionRun{
		Source:     req.Source,
		Params:     paramsJSON,
		PointCount: len(req.Points),
		EdgeCount:  edgeCount,
		LineCount:  len(lines),
		DurationMS: duration.Milliseconds(),
	}
	if err := s.runs.Insert(run); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to persist run: %v", err))
		return
	}

	stored, err := s.lines.InsertBatch(run.RunID, lines)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to persist lines: %v", err))
		return
	}
	if stored == nil {
		stored = []*store.StoredLine{}
	}

	httputil.WriteJSONOK(w, DetectResponse{Run: run, Lines: stored})
}
