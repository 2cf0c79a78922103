package api

import (
	"encoding/json"
	"net/http"

	"github.com/dseeg/IoT-Environment/internal/telemetry"
)

// GET /api/relays
func (s *Server) getRelays(w http.ResponseWriter, r *http.Request) {
	relays, err := s.svc.Relays(r.Context())
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, relays)
}

// GET /api/relays/{id}
func (s *Server) getRelay(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, "invalid relay id", http.StatusBadRequest)
		return
	}
	relay, err := s.svc.Relay(r.Context(), id)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, relay)
}

// POST /api/relays
func (s *Server) postRelay(w http.ResponseWriter, r *http.Request) {
	var req telemetry.RelayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	relay, err := s.svc.CreateRelay(r.Context(), req)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, relay)
}

// PUT /api/relays/{id}
func (s *Server) putRelay(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, "invalid relay id", http.StatusBadRequest)
		return
	}
	var req telemetry.RelayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.svc.UpdateRelay(r.Context(), id, req); err != nil {
		s.writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DELETE /api/relays/{id}
func (s *Server) deleteRelay(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, "invalid relay id", http.StatusBadRequest)
		return
	}
	if err := s.svc.DeleteRelay(r.Context(), id); err != nil {
		s.writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
