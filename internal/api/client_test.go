package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/terrane-data/curvetrace/internal/httputil"
	"github.com/terrane-data/curvetrace/internal/trend"
)

func TestClientDetectRequestShape(t *testing.T) {
	mock := httputil.NewMockHTTPClient()
	mock.AddResponse(http.StatusOK, `{"run":{"run_id":"r-1","point_count":5},"lines":[]}`)

	c := NewClient(mock, "http://localhost:8765/")
	resp, err := c.Detect(DetectRequest{Source: "a.csv", Points: surveyPoints()})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if resp.Run.RunID != "r-1" {
		t.Errorf("RunID = %s, want r-1", resp.Run.RunID)
	}

	req := mock.GetRequest(0)
	if req == nil {
		t.Fatal("expected a recorded request")
	}
	if req.Method != http.MethodPost {
		t.Errorf("method = %s, want POST", req.Method)
	}
	// Trailing slash on the base URL must not double up
	if req.URL.String() != "http://localhost:8765/api/detect" {
		t.Errorf("url = %s, want http://localhost:8765/api/detect", req.URL.String())
	}
	if ct := req.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %s, want application/json", ct)
	}
}

func TestClientSurfacesServerError(t *testing.T) {
	mock := httputil.NewMockHTTPClient()
	mock.AddResponse(http.StatusNotFound, `{"error":"run r-9 not found"}`)

	c := NewClient(mock, "http://localhost:8765")
	_, err := c.GetRun("r-9")
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if !strings.Contains(err.Error(), "run r-9 not found") {
		t.Errorf("expected server message in error, got %v", err)
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("expected status code in error, got %v", err)
	}
}

func TestClientTransportError(t *testing.T) {
	mock := httputil.NewMockHTTPClient()
	mock.AddErrorResponse(errors.New("connection refused"))

	c := NewClient(mock, "http://localhost:8765")
	_, err := c.ListRuns(0)
	if err == nil {
		t.Fatal("expected transport error")
	}
}

func TestClientDeleteRun(t *testing.T) {
	mock := httputil.NewMockHTTPClient()
	mock.AddResponse(http.StatusOK, `{"deleted":"r-1"}`)

	c := NewClient(mock, "http://localhost:8765")
	if err := c.DeleteRun("r-1"); err != nil {
		t.Fatalf("DeleteRun failed: %v", err)
	}

	req := mock.GetRequest(0)
	if req.Method != http.MethodDelete {
		t.Errorf("method = %s, want DELETE", req.Method)
	}
	if !strings.Contains(req.URL.String(), "/api/run?id=r-1") {
		t.Errorf("url = %s, want /api/run?id=r-1", req.URL.String())
	}
}

// TestClientEndToEnd drives a real server through the client.
func TestClientEndToEnd(t *testing.T) {
	s := setupTestServer(t)
	ts := httptest.NewServer(s.ServeMux())
	defer ts.Close()

	c := NewClient(nil, ts.URL)

	resp, err := c.Detect(DetectRequest{Source: "e2e.csv", Points: surveyPoints()})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if resp.Run.PointCount != 5 {
		t.Errorf("PointCount = %d, want 5", resp.Run.PointCount)
	}

	runs, err := c.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}

	run, err := c.GetRun(resp.Run.RunID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run.Source != "e2e.csv" {
		t.Errorf("Source = %s, want e2e.csv", run.Source)
	}

	lines, err := c.RunLines(resp.Run.RunID)
	if err != nil {
		t.Fatalf("RunLines failed: %v", err)
	}
	if len(lines) != len(resp.Lines) {
		t.Errorf("RunLines returned %d lines, detect returned %d", len(lines), len(resp.Lines))
	}

	if err := c.DeleteRun(resp.Run.RunID); err != nil {
		t.Fatalf("DeleteRun failed: %v", err)
	}
	if _, err := c.GetRun(resp.Run.RunID); err == nil {
		t.Error("expected error fetching deleted run")
	}

	// A labeled line set detected per label keeps labels intact remotely too
	labeled := []trend.Point{
		{Index: 0, X: 0, Y: 0, Value: 3},
		{Index: 1, X: 10, Y: 1, Value: 3},
		{Index: 2, X: 20, Y: 0, Value: 3},
	}
	resp, err = c.Detect(DetectRequest{Source: "labeled.csv", Points: labeled, PerLabel: true})
	if err != nil {
		t.Fatalf("Detect per label failed: %v", err)
	}
	for _, l := range resp.Lines {
		if l.Label != 3 {
			t.Errorf("Label = %v, want 3", l.Label)
		}
	}
}
