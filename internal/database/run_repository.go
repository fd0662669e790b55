package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ncecere/firecrawl-webui/internal/domain"
)

// RunRepository handles database operations for job runs.
type RunRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a new run repository.
func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new job run. The repository assigns created_at.
func (r *RunRepository) Create(ctx context.Context, run *domain.JobRun) error {
	run.CreatedAt = time.Now().UTC()
	run.StartedAt = run.StartedAt.UTC()

	query := `
		INSERT INTO job_runs (id, scheduled_job_id, run_type, status, started_at,
		       completed_at, result_data, error_message, execution_time_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		run.ID,
		run.ScheduledJobID,
		run.RunType,
		run.Status,
		run.StartedAt,
		nullableTime(run.CompletedAt),
		run.ResultData,
		run.ErrorMessage,
		run.ExecutionTimeMs,
		run.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create job run: %w", err)
	}

	return nil
}

// GetByID retrieves a job run by its ID.
func (r *RunRepository) GetByID(ctx context.Context, id string) (*domain.JobRun, error) {
	var run domain.JobRun
	query := `
		SELECT id, scheduled_job_id, run_type, status, started_at, completed_at,
		       result_data, error_message, execution_time_ms, created_at
		FROM job_runs
		WHERE id = ?
	`

	err := r.db.GetContext(ctx, &run, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("job run %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get job run: %w", err)
	}

	normalizeRun(&run)

	return &run, nil
}

// Update updates an existing job run.
func (r *RunRepository) Update(ctx context.Context, run *domain.JobRun) error {
	query := `
		UPDATE job_runs
		SET status = ?, started_at = ?, completed_at = ?, result_data = ?,
		    error_message = ?, execution_time_ms = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		run.Status,
		run.StartedAt.UTC(),
		nullableTime(run.CompletedAt),
		run.ResultData,
		run.ErrorMessage,
		run.ExecutionTimeMs,
		run.ID,
	)

	if err != nil {
		return fmt.Errorf("failed to update job run: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("job run %s: %w", run.ID, domain.ErrNotFound)
	}

	return nil
}

// ListByScheduleID retrieves the most recent runs for one scheduled job,
// newest first.
func (r *RunRepository) ListByScheduleID(ctx context.Context, scheduleID string, limit int) ([]*domain.JobRun, error) {
	var runs []*domain.JobRun
	query := `
		SELECT id, scheduled_job_id, run_type, status, started_at, completed_at,
		       result_data, error_message, execution_time_ms, created_at
		FROM job_runs
		WHERE scheduled_job_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`

	err := r.db.SelectContext(ctx, &runs, query, scheduleID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list job runs: %w", err)
	}

	if runs == nil {
		runs = []*domain.JobRun{}
	}

	for _, run := range runs {
		normalizeRun(run)
	}

	return runs, nil
}

// ListUnfinished retrieves all runs that have not reached a terminal status.
// Used at startup to fail runs orphaned by a crash or restart.
func (r *RunRepository) ListUnfinished(ctx context.Context) ([]*domain.JobRun, error) {
	var runs []*domain.JobRun
	query := `
		SELECT id, scheduled_job_id, run_type, status, started_at, completed_at,
		       result_data, error_message, execution_time_ms, created_at
		FROM job_runs
		WHERE status IN (?, ?)
		ORDER BY created_at ASC
	`

	err := r.db.SelectContext(ctx, &runs, query, domain.RunStatusPending, domain.RunStatusRunning)
	if err != nil {
		return nil, fmt.Errorf("failed to list unfinished job runs: %w", err)
	}

	if runs == nil {
		runs = []*domain.JobRun{}
	}

	for _, run := range runs {
		normalizeRun(run)
	}

	return runs, nil
}

// CleanupOld deletes terminal runs created before the cutoff and returns the
// number removed. Runs still pending or running are never touched.
func (r *RunRepository) CleanupOld(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM job_runs
		WHERE created_at < ? AND status IN (?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, cutoff.UTC(), domain.RunStatusCompleted, domain.RunStatusFailed)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up job runs: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return deleted, nil
}

// Stats aggregates run counts by status. An empty scheduleID aggregates
// across all scheduled jobs.
func (r *RunRepository) Stats(ctx context.Context, scheduleID string) (*domain.RunStats, error) {
	var stats domain.RunStats
	var query string
	var args []any

	base := `
		SELECT COUNT(*) AS total,
		       COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0) AS pending,
		       COALESCE(SUM(CASE WHEN status = 'running' THEN 1 ELSE 0 END), 0) AS running,
		       COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0) AS completed,
		       COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0) AS failed
		FROM job_runs
	`

	if scheduleID != "" {
		query = base + ` WHERE scheduled_job_id = ?`
		args = []any{scheduleID}
	} else {
		query = base
		args = []any{}
	}

	err := r.db.GetContext(ctx, &stats, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get run stats: %w", err)
	}

	if terminal := stats.Completed + stats.Failed; terminal > 0 {
		stats.SuccessRate = float64(stats.Completed) / float64(terminal) * 100
	}

	return &stats, nil
}

// normalizeRun pins all timestamps scanned from the database to UTC.
func normalizeRun(run *domain.JobRun) {
	run.StartedAt = run.StartedAt.UTC()
	run.CreatedAt = run.CreatedAt.UTC()
	if run.CompletedAt != nil {
		t := run.CompletedAt.UTC()
		run.CompletedAt = &t
	}
}
