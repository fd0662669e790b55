package domain

import (
	"time"
)

// Run trigger kinds.
const (
	RunTypeScheduled = "scheduled"
	RunTypeManual    = "manual"
)

// Run statuses. Completed and failed are terminal; a run transitions to a
// terminal state exactly once and is never mutated afterwards.
const (
	RunStatusPending   = "pending"
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// JobRun records a single execution attempt of a scheduled job.
type JobRun struct {
	ID             string `db:"id"               json:"id"`
	ScheduledJobID string `db:"scheduled_job_id" json:"scheduled_job_id"`
	RunType        string `db:"run_type"         json:"run_type"`
	Status         string `db:"status"           json:"status"`

	// Timing
	StartedAt       time.Time  `db:"started_at"        json:"started_at"`
	CompletedAt     *time.Time `db:"completed_at"      json:"completed_at,omitempty"`
	ExecutionTimeMs *int64     `db:"execution_time_ms" json:"execution_time_ms,omitempty"`

	// Terminal artifact: exactly one of result/error is populated
	ResultData   RawJSON `db:"result_data"   json:"result_data,omitempty"`
	ErrorMessage *string `db:"error_message" json:"error_message,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Terminal reports whether the run has reached a terminal status.
func (r *JobRun) Terminal() bool {
	return r.Status == RunStatusCompleted || r.Status == RunStatusFailed
}

// RunStats aggregates run counts by status, optionally scoped to one
// scheduled job.
type RunStats struct {
	Total       int     `db:"total"     json:"total"`
	Pending     int     `db:"pending"   json:"pending"`
	Running     int     `db:"running"   json:"running"`
	Completed   int     `db:"completed" json:"completed"`
	Failed      int     `db:"failed"    json:"failed"`
	SuccessRate float64 `db:"-"         json:"success_rate"` // completed / (completed + failed)
}
