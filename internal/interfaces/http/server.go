// Package http serves the latest screening report alongside health and
// Prometheus endpoints.
package http

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/voltrun/voltrun/internal/report"
)

// Server holds the most recent report and serves it read-only.
type Server struct {
	addr string
	log  zerolog.Logger

	mu     sync.RWMutex
	latest *report.Report
}

// NewServer builds the report server.
func NewServer(addr string, log zerolog.Logger) *Server {
	return &Server{
		addr: addr,
		log:  log.With().Str("component", "http").Logger(),
	}
}

// Publish replaces the report served at /candidates.
func (s *Server) Publish(r *report.Report) {
	s.mu.Lock()
	s.latest = r
	s.mu.Unlock()
}

// Handler builds the routed, CORS-wrapped handler.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/candidates", s.handleCandidates).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return cors.Default().Handler(r)
}

// ListenAndServe blocks serving the report until the listener fails.
func (s *Server) ListenAndServe() error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	s.log.Info().Str("addr", s.addr).Msg("report server listening")
	return srv.ListenAndServe()
}

func (s *Server) handleCandidates(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	latest := s.latest
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if latest == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"error": "no screening run completed yet"})
		return
	}
	if err := json.NewEncoder(w).Encode(latest); err != nil {
		s.log.Error().Err(err).Msg("encode report")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
