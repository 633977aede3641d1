package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/terrane-data/curvetrace/internal/httputil"
	"github.com/terrane-data/curvetrace/internal/store"
)

// Client provides HTTP operations against a running curvetraced server.
// It lets batch tools offload detection to a shared instance instead of
// running it locally.
type Client struct {
	HTTPClient httputil.HTTPClient
	BaseURL    string
}

// NewClient creates a new API client. Passing a nil httpClient uses a
// standard client with a generous timeout sized for large point sets.
func NewClient(httpClient httputil.HTTPClient, baseURL string) *Client {
	if httpClient == nil {
		httpClient = httputil.NewStandardClient(&http.Client{Timeout: 120 * time.Second})
	}
	return &Client{
		HTTPClient: httpClient,
		BaseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Detect posts points to the server and returns the persisted run and
// its lines.
func (c *Client) Detect(req DetectRequest) (*DetectResponse, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	resp, err := c.HTTPClient.Post(c.BaseURL+"/api/detect", "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp)
	}

	var out DetectResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &out, nil
}

// ListRuns fetches persisted runs, newest first. A limit of 0 or less
// fetches all runs.
func (c *Client) ListRuns(limit int) ([]*store.DetectionRun, error) {
	url := c.BaseURL + "/api/runs"
	if limit > 0 {
		url = fmt.Sprintf("%s?limit=%d", url, limit)
	}

	resp, err := c.HTTPClient.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp)
	}

	var runs []*store.DetectionRun
	if err := json.NewDecoder(resp.Body).Decode(&runs); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return runs, nil
}

// GetRun fetches one run by ID.
func (c *Client) GetRun(runID string) (*store.DetectionRun, error) {
	resp, err := c.HTTPClient.Get(fmt.Sprintf("%s/api/run?id=%s", c.BaseURL, runID))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp)
	}

	var run store.DetectionRun
	if err := json.NewDecoder(resp.Body).Decode(&run); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &run, nil
}

// RunLines fetches all lines of a run in detector output order.
func (c *Client) RunLines(runID string) ([]*store.StoredLine, error) {
	resp, err := c.HTTPClient.Get(fmt.Sprintf("%s/api/run/lines?id=%s", c.BaseURL, runID))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp)
	}

	var lines []*store.StoredLine
	if err := json.NewDecoder(resp.Body).Decode(&lines); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return lines, nil
}

// DeleteRun removes a run and its lines from the server.
func (c *Client) DeleteRun(runID string) error {
	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/api/run?id=%s", c.BaseURL, runID), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return responseError(resp)
	}
	return nil
}

// responseError turns a non-200 response into an error carrying the
// server's message.
func responseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	msg := strings.TrimSpace(string(body))

	var apiErr struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != "" {
		msg = apiErr.Error
	}
	return fmt.Errorf("status %d: %s", resp.StatusCode, msg)
}
