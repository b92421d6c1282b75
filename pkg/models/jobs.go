package models

import "time"

// Job is a sweep running in the background.
type Job struct {
	ID          string        `json:"id"`
	Parameters  JobParameters `json:"parameters"`
	Status      JobStatus     `json:"status"`
	Progress    JobProgress   `json:"progress"`
	Result      *JobResult    `json:"result,omitempty"`
	Error       string        `json:"error,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
	StartedAt   *time.Time    `json:"startedAt,omitempty"`
	CompletedAt *time.Time    `json:"completedAt,omitempty"`
}

// JobParameters override the configured sweep options. Nil or empty fields
// keep the configured value.
type JobParameters struct {
	Interactions   []string `json:"interactions,omitempty"`
	Methods        []string `json:"methods,omitempty"`
	Views          []string `json:"views,omitempty"`
	ClusterCounts  []int    `json:"clusterCounts,omitempty"`
	Selection      *string  `json:"selection,omitempty"`
	MinInDegree    *int     `json:"minInDegree,omitempty"`
	SampleFraction *float64 `json:"sampleFraction,omitempty"`
	RandomSeed     *int64   `json:"randomSeed,omitempty"`
}

type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

type JobProgress struct {
	Percentage int    `json:"percentage"`
	Message    string `json:"message"`
}

// JobResult summarizes a finished sweep.
type JobResult struct {
	RunID            string `json:"runId"`
	Runs             int    `json:"runs"`
	Failures         int    `json:"failures"`
	Interactions     int    `json:"interactions"`
	ProcessingTimeMS int64  `json:"processingTimeMS"`
}

// APIResponse is the envelope of every HTTP response.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}
