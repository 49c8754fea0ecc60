// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package tspapi exposes a running query's health, metrics, and
// stored results over HTTP using gorilla/mux for routing.
package tspapi

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"grimm.is/tsp/internal/tspstore"
)

// ServerConfig holds HTTP server hardening settings.
type ServerConfig struct {
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
}

// DefaultServerConfig returns conservative timeouts for a small status
// server.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// Server serves /healthz, /metrics, and /results/{key} for a running
// query. Every response carries the run's ID in an X-Run-ID header.
type Server struct {
	RunID   string
	store   *tspstore.Store
	metrics *prometheus.Registry
	healthy atomic.Bool
	router  *mux.Router
}

// NewServer builds a Server backed by store, exposing reg's gathered
// metrics at /metrics. RunID is a fresh UUID identifying this query
// run (mirrors identity/service.go's uuid.New().String() idiom).
func NewServer(store *tspstore.Store, reg *prometheus.Registry) *Server {
	s := &Server{
		RunID:   uuid.New().String(),
		store:   store,
		metrics: reg,
	}
	s.healthy.Store(true)
	s.router = mux.NewRouter()
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	s.router.Handle("/metrics", promhttp.HandlerFor(s.metrics, promhttp.HandlerOpts{})).Methods("GET")
	s.router.HandleFunc("/results/{key}", s.handleResults).Methods("GET")
}

// ServeHTTP lets Server be used directly as an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Run-ID", s.RunID)
	s.router.ServeHTTP(w, r)
}

// SetHealthy reports readiness on /healthz; a query that has hit an
// unrecoverable error should mark itself unhealthy before exiting.
func (s *Server) SetHealthy(healthy bool) {
	s.healthy.Store(healthy)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	if !s.healthy.Load() {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"healthy": s.healthy.Load(),
		"run_id":  s.RunID,
	})
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	from, to := parseRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	results, err := s.store.GetResults(key, from, to)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

func parseRange(fromStr, toStr string) (from, to uint64) {
	to = math.MaxInt64
	if v, err := strconv.ParseUint(fromStr, 10, 64); err == nil {
		from = v
	}
	if v, err := strconv.ParseUint(toStr, 10, 64); err == nil {
		to = v
	}
	return from, to
}

// ListenAndServe starts the server on addr, applying cfg's timeouts.
func ListenAndServe(addr string, cfg ServerConfig, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
	return srv.ListenAndServe()
}
