package database

import (
	"context"
	"time"

	"github.com/ncecere/firecrawl-webui/internal/domain"
)

// ScheduleStore defines the contract for scheduled job data access.
type ScheduleStore interface {
	// Basic CRUD operations
	Create(ctx context.Context, job *domain.ScheduledJob) error
	GetByID(ctx context.Context, id string) (*domain.ScheduledJob, error)
	List(ctx context.Context) ([]*domain.ScheduledJob, error)
	ListActive(ctx context.Context) ([]*domain.ScheduledJob, error)
	Update(ctx context.Context, job *domain.ScheduledJob) error
	Delete(ctx context.Context, id string) error

	// Scheduler operations
	UpdateLastRun(ctx context.Context, id string, lastRun time.Time, nextRun *time.Time) error
	UpdateNextRun(ctx context.Context, id string, nextRun *time.Time) error
}

// RunStore defines the contract for run history data access.
type RunStore interface {
	// Basic CRUD operations
	Create(ctx context.Context, run *domain.JobRun) error
	GetByID(ctx context.Context, id string) (*domain.JobRun, error)
	Update(ctx context.Context, run *domain.JobRun) error

	// Query operations
	ListByScheduleID(ctx context.Context, scheduleID string, limit int) ([]*domain.JobRun, error)
	ListUnfinished(ctx context.Context) ([]*domain.JobRun, error)

	// Analytics and maintenance operations
	Stats(ctx context.Context, scheduleID string) (*domain.RunStats, error)
	CleanupOld(ctx context.Context, cutoff time.Time) (int64, error)
}
