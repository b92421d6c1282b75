// Package api serves sweep jobs and their results over HTTP.
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gilchrisn/interaction-clustering/pkg/metrics"
)

// SetupRoutes registers the v1 API on router.
func SetupRoutes(router *mux.Router, handlers *Handlers) {
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", handlers.HealthCheck).Methods(http.MethodGet)
	api.HandleFunc("/methods", handlers.ListMethods).Methods(http.MethodGet)

	sweeps := api.PathPrefix("/sweeps").Subrouter()
	sweeps.HandleFunc("", handlers.ListSweeps).Methods(http.MethodGet)
	sweeps.HandleFunc("", handlers.StartSweep).Methods(http.MethodPost)
	sweeps.HandleFunc("/{jobId}", handlers.GetSweep).Methods(http.MethodGet)
	sweeps.HandleFunc("/{jobId}", handlers.CancelSweep).Methods(http.MethodDelete)
	sweeps.HandleFunc("/{jobId}/cancel", handlers.CancelSweep).Methods(http.MethodPost)

	// Results of completed sweeps
	sweeps.HandleFunc("/{jobId}/report", handlers.GetReport).Methods(http.MethodGet)
	sweeps.HandleFunc("/{jobId}/clusters", handlers.GetClusters).Methods(http.MethodGet)
	sweeps.HandleFunc("/{jobId}/summaries", handlers.GetSummaries).Methods(http.MethodGet)
	sweeps.HandleFunc("/{jobId}/partitions", handlers.ListPartitions).Methods(http.MethodGet)
	sweeps.HandleFunc("/{jobId}/partitions/{run}", handlers.GetPartition).Methods(http.MethodGet)
}

// NewRouter builds the full handler: API routes, /metrics when collector is
// set, and the middleware stack.
func NewRouter(handlers *Handlers, collector *metrics.Collector, origins []string) http.Handler {
	router := mux.NewRouter()
	SetupRoutes(router, handlers)
	if collector != nil {
		router.Handle("/metrics", collector.Handler()).Methods(http.MethodGet)
	}

	router.Use(LoggingMiddleware(collector))
	router.Use(RecoveryMiddleware)

	return CORS(origins)(router)
}
