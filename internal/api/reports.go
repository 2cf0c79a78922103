package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dseeg/IoT-Environment/internal/telemetry"
)

// postReport ingests one measurement.
// POST /api/reports
func (s *Server) postReport(w http.ResponseWriter, r *http.Request) {
	var m telemetry.Measurement
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	report, err := s.svc.Ingest(r.Context(), m)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, report)
}

// getReports answers a windowed, optionally type-filtered query.
// GET /api/reports?lastMinutes=5&dataType=temperature
func (s *Server) getReports(w http.ResponseWriter, r *http.Request) {
	var lastMinutes float64
	if raw := r.URL.Query().Get("lastMinutes"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, "invalid lastMinutes value", http.StatusBadRequest)
			return
		}
		lastMinutes = parsed
	}
	dataType := r.URL.Query().Get("dataType")

	reports, err := s.svc.Reports(r.Context(), lastMinutes, dataType)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, reports)
}

// getReport returns the denormalized view of one report.
// GET /api/reports/{id}
func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, "invalid report id", http.StatusBadRequest)
		return
	}
	report, err := s.svc.Report(r.Context(), id)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}
