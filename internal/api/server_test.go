package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/terrane-data/curvetrace/internal/store"
	"github.com/terrane-data/curvetrace/internal/testutil"
)

// setupTestServer clones the migrated template DB and wires a server to it.
func setupTestServer(t *testing.T) *Server {
	t.Helper()

	db, err := store.Open(cloneAPITestDB(t))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewServer(db, "m", 30*time.Second)
}

func TestNewServerDefaults(t *testing.T) {
	db, err := store.Open(cloneAPITestDB(t))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	defer db.Close()

	s := NewServer(db, "furlongs", -1)
	if s.units != "m" {
		t.Errorf("expected invalid units to fall back to m, got %q", s.units)
	}
	if s.timeout != 60*time.Second {
		t.Errorf("expected default timeout 60s, got %v", s.timeout)
	}
}

func TestStatusCodeColor(t *testing.T) {
	tests := []struct {
		code     int
		contains string
	}{
		{200, colorBoldGreen},
		{301, colorYellow},
		{404, colorBoldRed},
		{500, colorBoldRed},
		{100, "100"},
	}

	for _, tt := range tests {
		got := statusCodeColor(tt.code)
		if !strings.Contains(got, tt.contains) {
			t.Errorf("statusCodeColor(%d) = %q, expected it to contain %q", tt.code, got, tt.contains)
		}
	}
}

func TestLoggingMiddlewarePassesThrough(t *testing.T) {
	handler := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/teapot", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	testutil.AssertStatusCode(t, w.Code, http.StatusTeapot)
	if w.Body.String() != "short and stout" {
		t.Errorf("middleware altered body: %q", w.Body.String())
	}
}

func TestRequestUnits(t *testing.T) {
	s := setupTestServer(t)

	tests := []struct {
		query    string
		expected string
	}{
		{"", "m"},
		{"?units=km", "km"},
		{"?units=ft", "ft"},
		{"?units=bogus", "m"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/run/lines"+tt.query, nil)
		if got := s.requestUnits(req); got != tt.expected {
			t.Errorf("requestUnits(%q) = %q, want %q", tt.query, got, tt.expected)
		}
	}
}

func TestHandleHealth(t *testing.T) {
	s := setupTestServer(t)

	req := testutil.NewTestRequest(http.MethodGet, "/api/health")
	w := testutil.NewTestRecorder()
	s.handleHealth(w, req)

	testutil.AssertStatusCode(t, w.Code, http.StatusOK)

	var body map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
	if _, ok := body["version"]; !ok {
		t.Error("expected version in health response")
	}
}

func TestHandleHealthMethodNotAllowed(t *testing.T) {
	s := setupTestServer(t)

	req := testutil.NewTestRequest(http.MethodPost, "/api/health")
	w := testutil.NewTestRecorder()
	s.handleHealth(w, req)

	testutil.AssertStatusCode(t, w.Code, http.StatusMethodNotAllowed)
}

func TestShowConfig(t *testing.T) {
	s := setupTestServer(t)

	req := testutil.NewTestRequest(http.MethodGet, "/api/config")
	w := testutil.NewTestRecorder()
	s.showConfig(w, req)

	testutil.AssertStatusCode(t, w.Code, http.StatusOK)

	var body map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode config response: %v", err)
	}
	if body["units"] != "m" {
		t.Errorf("units = %v, want m", body["units"])
	}
}

func TestServeMuxRoutes(t *testing.T) {
	s := setupTestServer(t)
	mux := s.ServeMux()

	// Every route should be wired; unknown paths should 404.
	for _, path := range []string{"/api/runs", "/api/health", "/api/config"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		if w.Code == http.StatusNotFound {
			t.Errorf("expected %s to be routed, got 404", path)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	testutil.AssertStatusCode(t, w.Code, http.StatusNotFound)
}
