// Package server exposes a running simulation over HTTP: health and
// status probes, a step-advance endpoint, and the Prometheus metrics.
// The engine itself is single-threaded, so the server serializes all
// simulation access behind one mutex.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hydpy-dev/hydronet"
	"github.com/hydpy-dev/hydronet/internal/logging"
)

// Server wraps a Simulator with an HTTP control surface.
type Server struct {
	mu     sync.Mutex
	sim    *hydronet.Simulator
	logger *slog.Logger
	gather prometheus.Gatherer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithGatherer sets the Prometheus gatherer backing /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gather = g }
}

// New creates a Server over the given simulator.
func New(sim *hydronet.Simulator, opts ...Option) *Server {
	s := &Server{
		sim:    sim,
		logger: logging.NewNop(),
		gather: prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/status", s.handleStatus)
	r.Post("/run", s.handleRun)
	r.Handle("/metrics", promhttp.HandlerFor(s.gather, promhttp.HandlerOpts{}))
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type statusResponse struct {
	Now       float64  `json:"now"`
	StepsDone int      `json:"stepsDone"`
	Models    []string `json:"models"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	resp := statusResponse{
		Now:       s.sim.Now(),
		StepsDone: s.sim.StepsDone(),
		Models:    s.sim.Network().Names(),
	}
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, resp)
}

type runRequest struct {
	Steps int `json:"steps"`
}

type runResponse struct {
	Now       float64 `json:"now"`
	StepsDone int     `json:"stepsDone"`
}

// handleRun advances the simulation by the requested number of macro
// steps (default 1).
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	req := runRequest{Steps: 1}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
	}
	if req.Steps < 1 {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "steps must be at least 1"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < req.Steps; i++ {
		if _, err := s.sim.StepOnce(r.Context()); err != nil {
			s.logger.Error("macro step failed", "err", err)
			s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
	}
	s.writeJSON(w, http.StatusOK, runResponse{Now: s.sim.Now(), StepsDone: s.sim.StepsDone()})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response", "err", err)
	}
}
