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

// ScheduleRepository handles database operations for scheduled jobs.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Create inserts a new scheduled job. The repository assigns created_at and
// updated_at.
func (r *ScheduleRepository) Create(ctx context.Context, job *domain.ScheduledJob) error {
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	query := `
		INSERT INTO scheduled_jobs (id, name, job_type, job_config, url, urls, api_endpoint,
		       schedule_type, schedule_config, timezone, is_active, created_at, updated_at,
		       last_run_at, next_run_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		job.ID,
		job.Name,
		job.JobType,
		job.JobConfig,
		job.URL,
		job.URLs,
		job.APIEndpoint,
		job.ScheduleType,
		job.ScheduleConfig,
		job.Timezone,
		job.IsActive,
		job.CreatedAt,
		job.UpdatedAt,
		nullableTime(job.LastRunAt),
		nullableTime(job.NextRunAt),
	)

	if err != nil {
		return fmt.Errorf("failed to create scheduled job: %w", err)
	}

	return nil
}

// GetByID retrieves a scheduled job by its ID.
func (r *ScheduleRepository) GetByID(ctx context.Context, id string) (*domain.ScheduledJob, error) {
	var job domain.ScheduledJob
	query := `
		SELECT id, name, job_type, job_config, url, urls, api_endpoint,
		       schedule_type, schedule_config, timezone, is_active,
		       created_at, updated_at, last_run_at, next_run_at
		FROM scheduled_jobs
		WHERE id = ?
	`

	err := r.db.GetContext(ctx, &job, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("scheduled job %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get scheduled job: %w", err)
	}

	normalizeSchedule(&job)

	return &job, nil
}

// List retrieves all scheduled jobs, newest first.
func (r *ScheduleRepository) List(ctx context.Context) ([]*domain.ScheduledJob, error) {
	var jobs []*domain.ScheduledJob
	query := `
		SELECT id, name, job_type, job_config, url, urls, api_endpoint,
		       schedule_type, schedule_config, timezone, is_active,
		       created_at, updated_at, last_run_at, next_run_at
		FROM scheduled_jobs
		ORDER BY created_at DESC
	`

	err := r.db.SelectContext(ctx, &jobs, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled jobs: %w", err)
	}

	if jobs == nil {
		jobs = []*domain.ScheduledJob{}
	}

	for _, job := range jobs {
		normalizeSchedule(job)
	}

	return jobs, nil
}

// ListActive retrieves all scheduled jobs with is_active set.
func (r *ScheduleRepository) ListActive(ctx context.Context) ([]*domain.ScheduledJob, error) {
	var jobs []*domain.ScheduledJob
	query := `
		SELECT id, name, job_type, job_config, url, urls, api_endpoint,
		       schedule_type, schedule_config, timezone, is_active,
		       created_at, updated_at, last_run_at, next_run_at
		FROM scheduled_jobs
		WHERE is_active = 1
		ORDER BY created_at DESC
	`

	err := r.db.SelectContext(ctx, &jobs, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active scheduled jobs: %w", err)
	}

	if jobs == nil {
		jobs = []*domain.ScheduledJob{}
	}

	for _, job := range jobs {
		normalizeSchedule(job)
	}

	return jobs, nil
}

// Update updates an existing scheduled job. The repository refreshes
// updated_at.
func (r *ScheduleRepository) Update(ctx context.Context, job *domain.ScheduledJob) error {
	job.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE scheduled_jobs
		SET name = ?, job_type = ?, job_config = ?, url = ?, urls = ?, api_endpoint = ?,
		    schedule_type = ?, schedule_config = ?, timezone = ?, is_active = ?,
		    updated_at = ?, last_run_at = ?, next_run_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		job.Name,
		job.JobType,
		job.JobConfig,
		job.URL,
		job.URLs,
		job.APIEndpoint,
		job.ScheduleType,
		job.ScheduleConfig,
		job.Timezone,
		job.IsActive,
		job.UpdatedAt,
		nullableTime(job.LastRunAt),
		nullableTime(job.NextRunAt),
		job.ID,
	)

	if err != nil {
		return fmt.Errorf("failed to update scheduled job: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("scheduled job %s: %w", job.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a scheduled job. Runs recorded for the job are removed by
// the cascading foreign key.
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM scheduled_jobs WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete scheduled job: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("scheduled job %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// UpdateLastRun records the completion of a run and the next planned fire
// time in one statement.
func (r *ScheduleRepository) UpdateLastRun(ctx context.Context, id string, lastRun time.Time, nextRun *time.Time) error {
	query := `
		UPDATE scheduled_jobs
		SET last_run_at = ?, next_run_at = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, lastRun.UTC(), nullableTime(nextRun), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update last run: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("scheduled job %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// UpdateNextRun stores the next planned fire time without touching last_run_at.
func (r *ScheduleRepository) UpdateNextRun(ctx context.Context, id string, nextRun *time.Time) error {
	query := `
		UPDATE scheduled_jobs
		SET next_run_at = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, nullableTime(nextRun), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update next run: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("scheduled job %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// normalizeSchedule pins all timestamps scanned from the database to UTC.
func normalizeSchedule(job *domain.ScheduledJob) {
	job.CreatedAt = job.CreatedAt.UTC()
	job.UpdatedAt = job.UpdatedAt.UTC()
	if job.LastRunAt != nil {
		t := job.LastRunAt.UTC()
		job.LastRunAt = &t
	}
	if job.NextRunAt != nil {
		t := job.NextRunAt.UTC()
		job.NextRunAt = &t
	}
}

// nullableTime converts an optional timestamp to a driver-friendly value,
// normalized to UTC.
func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
