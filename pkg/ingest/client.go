// Package ingest exposes a stable HTTP client for submitting
// measurements to and querying reports from the telemetry backend.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dseeg/IoT-Environment/internal/telemetry"
)

// Client talks to the backend's /api surface.
type Client struct {
	baseURL string
	hc      *http.Client
}

// New returns a client for the backend at baseURL, e.g.
// "http://localhost:8080".
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: 10 * time.Second},
	}
}

// PostReport submits one measurement and returns the denormalized
// report the backend recorded for it.
func (c *Client) PostReport(ctx context.Context, m telemetry.Measurement) (*telemetry.DataReport, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/reports", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var report telemetry.DataReport
	if err := c.do(req, http.StatusCreated, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Reports queries the denormalized report view. lastMinutes may be
// fractional; zero leaves the window at the server default. A non-blank
// dataType filters by data type name.
func (c *Client) Reports(ctx context.Context, lastMinutes float64, dataType string) ([]telemetry.DataReport, error) {
	q := url.Values{}
	if lastMinutes > 0 {
		q.Set("lastMinutes", strconv.FormatFloat(lastMinutes, 'f', -1, 64))
	}
	if dataType != "" {
		q.Set("dataType", dataType)
	}
	endpoint := c.baseURL + "/api/reports"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var reports []telemetry.DataReport
	if err := c.do(req, http.StatusOK, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// Report fetches the denormalized view of a single report by id.
func (c *Client) Report(ctx context.Context, id uint) (*telemetry.DataReport, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/api/reports/%d", c.baseURL, id), nil)
	if err != nil {
		return nil, err
	}
	var report telemetry.DataReport
	if err := c.do(req, http.StatusOK, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *Client) do(req *http.Request, wantStatus int, out any) error {
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		var apiErr struct {
			Status  int    `json:"status"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Message != "" {
			return fmt.Errorf("%s %s: %d: %s", req.Method, req.URL.Path, resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("%s %s: unexpected status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
