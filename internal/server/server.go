// Package server provides the standalone metrics/health HTTP server started
// when metrics_addr is configured.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coeff/target-cassandra/health"
)

// NewMetricsServer creates an HTTP server exposing /metrics and, when
// checker is non-nil, /healthz.
func NewMetricsServer(checker *health.Checker) *http.Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if checker != nil {
		r.Get("/healthz", checker.ServeHTTP)
	}
	r.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
