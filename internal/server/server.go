// Package server exposes the estimation pipeline over HTTP: a multipart
// photo-upload endpoint, a health check and Prometheus metrics.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MeKo-Tech/platescan/internal/config"
	"github.com/MeKo-Tech/platescan/internal/pipeline"
)

// Server wires the pipeline into an http.Server.
type Server struct {
	cfg      config.ServerConfig
	pipeline *pipeline.Pipeline
	httpSrv  *http.Server
}

// New creates a Server around a built pipeline.
func New(cfg config.ServerConfig, p *pipeline.Pipeline) *Server {
	s := &Server{cfg: cfg, pipeline: p}

	mux := http.NewServeMux()
	mux.HandleFunc("/estimate", s.instrument("/estimate", s.handleEstimate))
	mux.HandleFunc("/healthz", s.instrument("/healthz", s.handleHealth))
	mux.Handle("/metrics", promhttp.Handler())

	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      mux,
		ReadTimeout:  time.Duration(cfg.TimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.TimeoutSec) * time.Second,
	}
	return s
}

// Handler returns the HTTP handler, used by tests.
func (s *Server) Handler() http.Handler { return s.httpSrv.Handler }

// ListenAndServe blocks serving requests until Shutdown.
func (s *Server) ListenAndServe() error {
	slog.Info("Server listening", "addr", s.httpSrv.Addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests within the configured timeout.
func (s *Server) Shutdown() error {
	timeout := time.Duration(s.cfg.ShutdownTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpSrv.Shutdown(ctx)
}

// instrument wraps a handler with request counting and latency tracking.
func (s *Server) instrument(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		httpRequestsTotal.WithLabelValues(r.Method, endpoint, fmt.Sprintf("%d", rec.status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
