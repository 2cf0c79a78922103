// Package api provides the HTTP surface of the telemetry backend.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/dseeg/IoT-Environment/internal/telemetry"
)

// ErrorResponse is the JSON body returned for every failed request.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Server routes API requests to the telemetry engine.
type Server struct {
	router *mux.Router
	svc    *telemetry.Service
	log    zerolog.Logger
}

func NewServer(svc *telemetry.Service, log zerolog.Logger) *Server {
	s := &Server{
		router: mux.NewRouter(),
		svc:    svc,
		log:    log,
	}
	s.setupRoutes()
	return s
}

// Router returns the configured handler for mounting on an http.Server.
func (s *Server) Router() http.Handler { return s.router }

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(s.requestLogger)

	api.HandleFunc("/reports", s.getReports).Methods(http.MethodGet)
	api.HandleFunc("/reports", s.postReport).Methods(http.MethodPost)
	api.HandleFunc("/reports/{id:[0-9]+}", s.getReport).Methods(http.MethodGet)

	api.HandleFunc("/relays", s.getRelays).Methods(http.MethodGet)
	api.HandleFunc("/relays", s.postRelay).Methods(http.MethodPost)
	api.HandleFunc("/relays/{id:[0-9]+}", s.getRelay).Methods(http.MethodGet)
	api.HandleFunc("/relays/{id:[0-9]+}", s.putRelay).Methods(http.MethodPut)
	api.HandleFunc("/relays/{id:[0-9]+}", s.deleteRelay).Methods(http.MethodDelete)

	api.HandleFunc("/devices", s.getDevices).Methods(http.MethodGet)
	api.HandleFunc("/devices", s.postDevice).Methods(http.MethodPost)
	api.HandleFunc("/devices/{id:[0-9]+}", s.getDevice).Methods(http.MethodGet)
	api.HandleFunc("/devices/{id:[0-9]+}", s.putDevice).Methods(http.MethodPut)
	api.HandleFunc("/devices/{id:[0-9]+}", s.deleteDevice).Methods(http.MethodDelete)
}

// requestLogger tags every request with an id and logs it on completion.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := uuid.New().String()
		next.ServeHTTP(w, r)
		s.log.Info().
			Str("request_id", reqID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	errResponse := ErrorResponse{
		Status:  statusCode,
		Message: message,
	}
	if err := json.NewEncoder(w).Encode(errResponse); err != nil {
		http.Error(w, "failed to encode error response", http.StatusInternalServerError)
	}
}

// writeEngineError maps the engine's error taxonomy onto status codes.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	writeError(w, err.Error(), statusCode(err))
}

func statusCode(err error) int {
	switch telemetry.KindOf(err) {
	case telemetry.KindNotFound:
		return http.StatusNotFound
	case telemetry.KindConflict:
		return http.StatusConflict
	case telemetry.KindInvalid:
		return http.StatusBadRequest
	default:
		// Unclassified persistence failures surface as a plain bad
		// request, matching the write-failure contract.
		return http.StatusBadRequest
	}
}

func pathID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
