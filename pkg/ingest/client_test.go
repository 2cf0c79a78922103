package ingest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dseeg/IoT-Environment/internal/telemetry"
)

func TestPostReport(t *testing.T) {
	t.Parallel()
	posted := time.Now().UTC()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/reports" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var m telemetry.Measurement
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			t.Fatalf("decode measurement: %v", err)
		}
		if m.DeviceAddress != "/addr/1" {
			t.Fatalf("expected device address /addr/1, got %q", m.DeviceAddress)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(telemetry.DataReport{
			PostedOn: posted,
			Value:    12,
		})
	}))
	defer srv.Close()

	client := New(srv.URL)
	report, err := client.PostReport(context.Background(), telemetry.Measurement{
		RelayPhysicalAddress: "A1:B2:C3:D4:E5:F6",
		DeviceAddress:        "/addr/1",
		DataType:             7,
		Value:                12.9,
	})
	if err != nil {
		t.Fatalf("PostReport failed: %v", err)
	}
	if report.Value != 12 {
		t.Fatalf("expected value 12, got %d", report.Value)
	}
}

func TestPostReportErrorSurfacesMessage(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  http.StatusNotFound,
			"message": "could not find relay with physical address FF:FF",
		})
	}))
	defer srv.Close()

	client := New(srv.URL)
	_, err := client.PostReport(context.Background(), telemetry.Measurement{
		RelayPhysicalAddress: "FF:FF",
	})
	if err == nil {
		t.Fatalf("expected error for 404 response")
	}
	if got := err.Error(); !strings.Contains(got, "could not find relay") {
		t.Fatalf("expected server message in error, got %q", got)
	}
}

func TestReportsQueryParameters(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("lastMinutes") != "2.5" || q.Get("dataType") != "temperature" {
			t.Fatalf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]telemetry.DataReport{})
	}))
	defer srv.Close()

	client := New(srv.URL)
	reports, err := client.Reports(context.Background(), 2.5, "temperature")
	if err != nil {
		t.Fatalf("Reports failed: %v", err)
	}
	if len(reports) != 0 {
		t.Fatalf("expected empty result, got %d", len(reports))
	}
}
