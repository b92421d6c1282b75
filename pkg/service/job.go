// Package service runs sweeps as background jobs.
package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gilchrisn/interaction-clustering/pkg/config"
	"github.com/gilchrisn/interaction-clustering/pkg/models"
	"github.com/gilchrisn/interaction-clustering/pkg/pipeline"
	"github.com/gilchrisn/interaction-clustering/pkg/sink"
)

var (
	ErrJobNotFound    = errors.New("job not found")
	ErrResultNotFound = errors.New("result not found")
)

// SweepFactory builds the sweep of one job writing to out.
type SweepFactory func(opts pipeline.Options, out sink.Sink) *pipeline.Sweep

// Result is everything a finished job produced.
type Result struct {
	Report *pipeline.Report
	Rows   *sink.Memory
}

// JobService handles background job processing
type JobService struct {
	jobs            map[string]*models.Job
	results         map[string]*Result
	cancels         map[string]context.CancelFunc
	workers         chan struct{}
	base            pipeline.Options
	newSweep        SweepFactory
	logger          zerolog.Logger
	mutex           sync.RWMutex
	timeout         time.Duration
	jobTTL          time.Duration
	cleanupInterval time.Duration
	stop            chan struct{}
	stopOnce        sync.Once
}

// NewJobService creates a job service. base holds the configured sweep
// options that job parameters override. When base.OutputDir is set, each job
// also writes CSV rows and its manifest under <OutputDir>/jobs/<id>.
func NewJobService(cfg config.JobConfig, base pipeline.Options, factory SweepFactory, logger zerolog.Logger) *JobService {
	if cfg.MaxWorkers < 1 {
		cfg.MaxWorkers = 1
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}
	service := &JobService{
		jobs:            make(map[string]*models.Job),
		results:         make(map[string]*Result),
		cancels:         make(map[string]context.CancelFunc),
		workers:         make(chan struct{}, cfg.MaxWorkers),
		base:            base,
		newSweep:        factory,
		logger:          logger,
		timeout:         cfg.Timeout,
		jobTTL:          cfg.ResultTTL,
		cleanupInterval: cfg.CleanupInterval,
		stop:            make(chan struct{}),
	}

	go service.cleanupLoop()

	return service
}

// Close stops the cleanup loop and cancels running jobs.
func (s *JobService) Close() {
	s.stopOnce.Do(func() {
		close(s.stop)
		s.mutex.Lock()
		defer s.mutex.Unlock()
		for _, cancel := range s.cancels {
			cancel()
		}
	})
}

// Options resolves params over the configured options.
func (s *JobService) Options(params models.JobParameters) (pipeline.Options, error) {
	opts := s.base
	if len(params.Interactions) > 0 {
		opts.Interactions = make([]models.Interaction, len(params.Interactions))
		for i, in := range params.Interactions {
			opts.Interactions[i] = models.Interaction(strings.ToLower(in))
		}
	}
	if len(params.Methods) > 0 {
		opts.Methods = params.Methods
	}
	if len(params.Views) > 0 {
		opts.Views = params.Views
	}
	if len(params.ClusterCounts) > 0 {
		opts.ClusterCounts = params.ClusterCounts
	}
	if params.Selection != nil {
		opts.Selection = pipeline.Selection(*params.Selection)
	}
	if params.MinInDegree != nil {
		opts.MinInDegree = *params.MinInDegree
	}
	if params.SampleFraction != nil {
		opts.SampleFraction = *params.SampleFraction
	}
	if params.RandomSeed != nil {
		opts.Seed = *params.RandomSeed
	}
	if err := opts.Validate(); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}

// Submit creates and queues a new sweep job
func (s *JobService) Submit(params models.JobParameters) (*models.Job, error) {
	opts, err := s.Options(params)
	if err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	jobID := uuid.New().String()
	if opts.OutputDir != "" {
		opts.OutputDir = filepath.Join(opts.OutputDir, "jobs", jobID)
	}

	now := time.Now()
	job := &models.Job{
		ID:         jobID,
		Parameters: params,
		Status:     models.JobStatusQueued,
		Progress: models.JobProgress{
			Percentage: 0,
			Message:    "Queued",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.jobs[jobID] = job

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if s.timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), s.timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	s.cancels[jobID] = cancel

	s.logger.Info().
		Str("job_id", jobID).
		Int("interactions", len(opts.Interactions)).
		Strs("methods", opts.Methods).
		Msg("Job submitted")

	go s.processJob(ctx, jobID, opts)

	snapshot := *job
	return &snapshot, nil
}

// Get returns a snapshot of the job.
func (s *JobService) Get(jobID string) (*models.Job, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	snapshot := *job
	return &snapshot, nil
}

// GetResult retrieves the output of a completed job
func (s *JobService) GetResult(jobID string) (*Result, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if _, exists := s.jobs[jobID]; !exists {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	result, exists := s.results[jobID]
	if !exists {
		return nil, fmt.Errorf("%w for job %s", ErrResultNotFound, jobID)
	}
	return result, nil
}

// List returns snapshots of all jobs, oldest first.
func (s *JobService) List() []*models.Job {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	jobs := make([]*models.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		snapshot := *job
		jobs = append(jobs, &snapshot)
	}
	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].CreatedAt.Equal(jobs[j].CreatedAt) {
			return jobs[i].ID < jobs[j].ID
		}
		return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
	})
	return jobs
}

// Cancel stops a queued or running job.
func (s *JobService) Cancel(jobID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}

	if job.Status == models.JobStatusQueued || job.Status == models.JobStatusRunning {
		if cancel, ok := s.cancels[jobID]; ok {
			cancel()
		}
		job.Status = models.JobStatusCancelled
		job.Progress.Message = "Cancelled"
		now := time.Now()
		job.CompletedAt = &now
		job.UpdatedAt = now

		s.logger.Info().
			Str("job_id", jobID).
			Msg("Job cancelled")
	}

	return nil
}

// processJob processes a job in the background
func (s *JobService) processJob(ctx context.Context, jobID string, opts pipeline.Options) {
	defer s.release(jobID)

	select {
	case s.workers <- struct{}{}:
	case <-ctx.Done():
		return
	}
	defer func() { <-s.workers }()

	startTime := time.Now()
	if !s.start(jobID, startTime) {
		return
	}

	rows := sink.NewMemory()
	var out sink.Sink = rows
	if opts.OutputDir != "" {
		files, err := sink.NewCSVDir(opts.OutputDir)
		if err != nil {
			s.failJob(jobID, err)
			return
		}
		out = sink.Tee{rows, files}
	}

	sweep := s.newSweep(opts, out)
	sweep.Logger = sweep.Logger.With().Str("job_id", jobID).Logger()
	sweep.Progress = func(done, total int) {
		pct := 100
		if total > 0 {
			pct = done * 100 / total
		}
		s.updateJobProgress(jobID, pct, fmt.Sprintf("%d/%d combinations", done, total))
	}

	report, err := sweep.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) && s.isCancelled(jobID) {
			return
		}
		s.failJob(jobID, fmt.Errorf("sweep failed: %w", err))
		return
	}

	s.completeJob(jobID, &Result{Report: report, Rows: rows}, time.Since(startTime))
}

func (s *JobService) release(jobID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if cancel, ok := s.cancels[jobID]; ok {
		cancel()
		delete(s.cancels, jobID)
	}
}

func (s *JobService) isCancelled(jobID string) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	job, ok := s.jobs[jobID]
	return ok && job.Status == models.JobStatusCancelled
}

// start marks the job running unless it was cancelled while queued.
func (s *JobService) start(jobID string, startTime time.Time) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	job, exists := s.jobs[jobID]
	if !exists || job.Status != models.JobStatusQueued {
		return false
	}
	job.Status = models.JobStatusRunning
	job.Progress.Message = "Starting..."
	job.StartedAt = &startTime
	job.UpdatedAt = startTime

	s.logger.Info().
		Str("job_id", jobID).
		Msg("Job processing started")
	return true
}

// updateJobProgress updates the progress of a running job
func (s *JobService) updateJobProgress(jobID string, percentage int, message string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	job, exists := s.jobs[jobID]
	if !exists || job.Status != models.JobStatusRunning {
		return
	}

	job.Progress.Percentage = percentage
	job.Progress.Message = message
	job.UpdatedAt = time.Now()

	s.logger.Debug().
		Str("job_id", jobID).
		Int("percentage", percentage).
		Str("message", message).
		Msg("Job progress updated")
}

// completeJob marks a job as completed with results
func (s *JobService) completeJob(jobID string, result *Result, elapsed time.Duration) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	job, exists := s.jobs[jobID]
	if !exists || job.Status == models.JobStatusCancelled {
		return
	}

	job.Status = models.JobStatusCompleted
	job.Progress.Percentage = 100
	job.Progress.Message = "Complete"
	now := time.Now()
	job.CompletedAt = &now
	job.UpdatedAt = now
	job.Result = &models.JobResult{
		RunID:            result.Report.RunID,
		Runs:             len(result.Report.Runs),
		Failures:         len(result.Report.Failures),
		Interactions:     len(result.Report.Interactions),
		ProcessingTimeMS: elapsed.Milliseconds(),
	}
	s.results[jobID] = result

	s.logger.Info().
		Str("job_id", jobID).
		Int("runs", job.Result.Runs).
		Int("failures", job.Result.Failures).
		Int64("processing_time_ms", job.Result.ProcessingTimeMS).
		Msg("Job completed successfully")
}

// failJob marks a job as failed
func (s *JobService) failJob(jobID string, err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return
	}

	job.Status = models.JobStatusFailed
	job.Error = err.Error()
	job.Progress.Message = "Failed"
	now := time.Now()
	job.CompletedAt = &now
	job.UpdatedAt = now

	s.logger.Error().
		Str("job_id", jobID).
		Err(err).
		Msg("Job failed")
}

// cleanupLoop periodically cleans up old jobs and results
func (s *JobService) cleanupLoop() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup(time.Now())
		case <-s.stop:
			return
		}
	}
}

// cleanup removes finished jobs not updated within the TTL.
func (s *JobService) cleanup(now time.Time) int {
	if s.jobTTL <= 0 {
		return 0
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	cutoff := now.Add(-s.jobTTL)
	cleaned := 0

	for jobID, job := range s.jobs {
		if job.CompletedAt != nil && job.UpdatedAt.Before(cutoff) {
			delete(s.jobs, jobID)
			delete(s.results, jobID)
			cleaned++
		}
	}

	if cleaned > 0 {
		s.logger.Info().
			Int("cleaned_jobs", cleaned).
			Msg("Job cleanup completed")
	}
	return cleaned
}
