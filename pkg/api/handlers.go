package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/interaction-clustering/pkg/models"
	"github.com/gilchrisn/interaction-clustering/pkg/service"
	"github.com/gilchrisn/interaction-clustering/pkg/transform"
)

// Handlers contains HTTP request handlers
type Handlers struct {
	jobService *service.JobService
	methods    []string
	started    time.Time
}

// NewHandlers creates new API handlers. methods lists the clustering methods
// a sweep may request.
func NewHandlers(jobService *service.JobService, methods []string) *Handlers {
	return &Handlers{jobService: jobService, methods: methods, started: time.Now()}
}

// HealthCheck reports liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteSuccessResponse(w, http.StatusOK, "ok", map[string]interface{}{
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
		"jobs":           len(h.jobService.List()),
	})
}

// ListMethods returns the clustering methods and adjacency views.
func (h *Handlers) ListMethods(w http.ResponseWriter, r *http.Request) {
	WriteSuccessResponse(w, http.StatusOK, "Methods retrieved", map[string]interface{}{
		"methods":       h.methods,
		"views":         transform.Names(),
		"default_views": transform.DefaultViews,
	})
}

// StartSweep submits a sweep job.
func (h *Handlers) StartSweep(w http.ResponseWriter, r *http.Request) {
	var params models.JobParameters
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	job, err := h.jobService.Submit(params)
	if err != nil {
		var verrs models.ValidationErrors
		if errors.As(err, &verrs) {
			WriteValidationErrorResponse(w, "Invalid sweep parameters", verrs)
			return
		}
		log.Error().Err(err).Msg("Failed to submit sweep")
		WriteErrorResponse(w, http.StatusInternalServerError, "Failed to submit sweep", err)
		return
	}
	WriteSuccessResponse(w, http.StatusAccepted, "Sweep queued", job)
}

// ListSweeps returns every job.
func (h *Handlers) ListSweeps(w http.ResponseWriter, r *http.Request) {
	WriteSuccessResponse(w, http.StatusOK, "Sweeps retrieved", h.jobService.List())
}

// GetSweep returns one job.
func (h *Handlers) GetSweep(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobService.Get(mux.Vars(r)["jobId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteSuccessResponse(w, http.StatusOK, "Sweep retrieved", job)
}

// CancelSweep cancels a queued or running job.
func (h *Handlers) CancelSweep(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobId"]
	if err := h.jobService.Cancel(jobID); err != nil {
		writeServiceError(w, err)
		return
	}
	job, err := h.jobService.Get(jobID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteSuccessResponse(w, http.StatusOK, "Sweep cancelled", job)
}

// GetReport returns the full report of a finished job.
func (h *Handlers) GetReport(w http.ResponseWriter, r *http.Request) {
	result, ok := h.result(w, r)
	if !ok {
		return
	}
	WriteSuccessResponse(w, http.StatusOK, "Report retrieved", result.Report)
}

// GetClusters returns cluster rows, optionally only those of ?method=<run>.
func (h *Handlers) GetClusters(w http.ResponseWriter, r *http.Request) {
	result, ok := h.result(w, r)
	if !ok {
		return
	}
	rows := result.Rows.Clusters()
	if run := r.URL.Query().Get("method"); run != "" {
		filtered := rows[:0]
		for _, row := range rows {
			if row.Method == run {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}
	WriteSuccessResponse(w, http.StatusOK, "Cluster rows retrieved", rows)
}

// GetSummaries returns the summary row of every run.
func (h *Handlers) GetSummaries(w http.ResponseWriter, r *http.Request) {
	result, ok := h.result(w, r)
	if !ok {
		return
	}
	WriteSuccessResponse(w, http.StatusOK, "Summary rows retrieved", result.Rows.Summaries())
}

// ListPartitions returns the names of the exported partitions.
func (h *Handlers) ListPartitions(w http.ResponseWriter, r *http.Request) {
	result, ok := h.result(w, r)
	if !ok {
		return
	}
	runs := result.Rows.Runs()
	sort.Strings(runs)
	WriteSuccessResponse(w, http.StatusOK, "Partitions retrieved", runs)
}

// GetPartition returns the labeled rows of one run.
func (h *Handlers) GetPartition(w http.ResponseWriter, r *http.Request) {
	result, ok := h.result(w, r)
	if !ok {
		return
	}
	run := mux.Vars(r)["run"]
	rows, found := result.Rows.Partition(run)
	if !found {
		WriteErrorResponse(w, http.StatusNotFound, "Partition not found", errors.New(run))
		return
	}
	WriteSuccessResponse(w, http.StatusOK, "Partition retrieved", rows)
}

func (h *Handlers) result(w http.ResponseWriter, r *http.Request) (*service.Result, bool) {
	result, err := h.jobService.GetResult(mux.Vars(r)["jobId"])
	if err != nil {
		writeServiceError(w, err)
		return nil, false
	}
	return result, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrJobNotFound):
		WriteErrorResponse(w, http.StatusNotFound, "Sweep not found", err)
	case errors.Is(err, service.ErrResultNotFound):
		WriteErrorResponse(w, http.StatusConflict, "Sweep has no result yet", err)
	default:
		WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error", err)
	}
}
