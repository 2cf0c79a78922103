package api

import (
	"encoding/json"
	"net/http"

	"github.com/dseeg/IoT-Environment/internal/telemetry"
)

// GET /api/devices
func (s *Server) getDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.svc.Devices(r.Context())
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, devices)
}

// GET /api/devices/{id}
func (s *Server) getDevice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, "invalid device id", http.StatusBadRequest)
		return
	}
	device, err := s.svc.Device(r.Context(), id)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, device)
}

// POST /api/devices
func (s *Server) postDevice(w http.ResponseWriter, r *http.Request) {
	var req telemetry.DeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	device, err := s.svc.CreateDevice(r.Context(), req)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, device)
}

// PUT /api/devices/{id}
func (s *Server) putDevice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, "invalid device id", http.StatusBadRequest)
		return
	}
	var req telemetry.DeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.svc.UpdateDevice(r.Context(), id, req); err != nil {
		s.writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DELETE /api/devices/{id}
func (s *Server) deleteDevice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, "invalid device id", http.StatusBadRequest)
		return
	}
	if err := s.svc.DeleteDevice(r.Context(), id); err != nil {
		s.writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
