// Package control exposes the local operator HTTP surface: status, manual
// trigger, close request, and Prometheus metrics. It is the boundary a
// GUI/CLI collaborator talks to; the engine itself never serves HTTP.
package control

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	apperrors "ibkr-trader/internal/errors"
	"ibkr-trader/internal/engine"
)

// Server serves the operator control endpoints for a running engine.
type Server struct {
	engine   *engine.Engine
	registry *prometheus.Registry
	logger   zerolog.Logger
}

// NewServer creates a control server. registry may be nil to omit /metrics.
func NewServer(eng *engine.Engine, registry *prometheus.Registry, logger zerolog.Logger) *Server {
	return &Server{
		engine:   eng,
		registry: registry,
		logger:   logger,
	}
}

// Handler returns the control mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/trigger/", s.handleTrigger)
	mux.HandleFunc("/close", s.handleClose)
	if s.registry != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	return mux
}

// ListenAndServe serves the control surface until the server errors out.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info().Str("addr", addr).Msg("Control listener started")
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, s.engine.Status())
}

func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/trigger/")
	if id == "" {
		http.Error(w, "strategy id required", http.StatusBadRequest)
		return
	}
	if err := s.engine.Trigger(id); err != nil {
		status := http.StatusInternalServerError
		if apperrors.Is(err, apperrors.ErrStrategyNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]string{"triggered": id})
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.engine.RequestClose()
	s.writeJSON(w, http.StatusAccepted, map[string]string{"close": "requested"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to encode response")
	}
}
