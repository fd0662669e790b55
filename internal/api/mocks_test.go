package api_test

import (
	"context"
	"errors"
	"time"

	"github.com/ncecere/firecrawl-webui/internal/domain"
	"github.com/ncecere/firecrawl-webui/internal/scheduler"
)

// errMockNoData is returned by mock methods a test did not wire up.
var errMockNoData = errors.New("mock: no data")

// mockScheduleStore implements database.ScheduleStore for testing.
type mockScheduleStore struct {
	createFunc  func(ctx context.Context, job *domain.ScheduledJob) error
	getByIDFunc func(ctx context.Context, id string) (*domain.ScheduledJob, error)
	listFunc    func(ctx context.Context) ([]*domain.ScheduledJob, error)
	updateFunc  func(ctx context.Context, job *domain.ScheduledJob) error
	deleteFunc  func(ctx context.Context, id string) error
}

func (m *mockScheduleStore) Create(ctx context.Context, job *domain.ScheduledJob) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, job)
	}
	return nil
}

func (m *mockScheduleStore) GetByID(ctx context.Context, id string) (*domain.ScheduledJob, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, errMockNoData
}

func (m *mockScheduleStore) List(ctx context.Context) ([]*domain.ScheduledJob, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return []*domain.ScheduledJob{}, nil
}

func (m *mockScheduleStore) ListActive(ctx context.Context) ([]*domain.ScheduledJob, error) {
	return []*domain.ScheduledJob{}, nil
}

func (m *mockScheduleStore) Update(ctx context.Context, job *domain.ScheduledJob) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, job)
	}
	return nil
}

func (m *mockScheduleStore) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockScheduleStore) UpdateLastRun(ctx context.Context, id string, lastRun time.Time, nextRun *time.Time) error {
	return nil
}

func (m *mockScheduleStore) UpdateNextRun(ctx context.Context, id string, nextRun *time.Time) error {
	return nil
}

// mockRunStore implements database.RunStore for testing.
type mockRunStore struct {
	listByScheduleIDFunc func(ctx context.Context, scheduleID string, limit int) ([]*domain.JobRun, error)
	statsFunc            func(ctx context.Context, scheduleID string) (*domain.RunStats, error)
}

func (m *mockRunStore) Create(ctx context.Context, run *domain.JobRun) error {
	return nil
}

func (m *mockRunStore) GetByID(ctx context.Context, id string) (*domain.JobRun, error) {
	return nil, errMockNoData
}

func (m *mockRunStore) Update(ctx context.Context, run *domain.JobRun) error {
	return nil
}

func (m *mockRunStore) ListByScheduleID(ctx context.Context, scheduleID string, limit int) ([]*domain.JobRun, error) {
	if m.listByScheduleIDFunc != nil {
		return m.listByScheduleIDFunc(ctx, scheduleID, limit)
	}
	return []*domain.JobRun{}, nil
}

func (m *mockRunStore) ListUnfinished(ctx context.Context) ([]*domain.JobRun, error) {
	return []*domain.JobRun{}, nil
}

func (m *mockRunStore) Stats(ctx context.Context, scheduleID string) (*domain.RunStats, error) {
	if m.statsFunc != nil {
		return m.statsFunc(ctx, scheduleID)
	}
	return &domain.RunStats{}, nil
}

func (m *mockRunStore) CleanupOld(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

// mockScheduler implements api.SchedulerController for testing.
type mockScheduler struct {
	startFunc      func(ctx context.Context) error
	stopFunc       func() error
	statusFunc     func() scheduler.Status
	reloadFunc     func(ctx context.Context) (int, error)
	scheduleFunc   func(ctx context.Context, job *domain.ScheduledJob) error
	executeFunc    func(ctx context.Context, jobID string) (*domain.JobRun, error)
	scheduledIDs   []string
	unscheduledIDs []string
}

func (m *mockScheduler) Start(ctx context.Context) error {
	if m.startFunc != nil {
		return m.startFunc(ctx)
	}
	return nil
}

func (m *mockScheduler) Stop() error {
	if m.stopFunc != nil {
		return m.stopFunc()
	}
	return nil
}

func (m *mockScheduler) Status() scheduler.Status {
	if m.statusFunc != nil {
		return m.statusFunc()
	}
	return scheduler.Status{JobIDs: []string{}}
}

func (m *mockScheduler) Reload(ctx context.Context) (int, error) {
	if m.reloadFunc != nil {
		return m.reloadFunc(ctx)
	}
	return 0, nil
}

func (m *mockScheduler) ScheduleJob(ctx context.Context, job *domain.ScheduledJob) error {
	m.scheduledIDs = append(m.scheduledIDs, job.ID)
	if m.scheduleFunc != nil {
		return m.scheduleFunc(ctx, job)
	}
	return nil
}

func (m *mockScheduler) UnscheduleJob(jobID string) {
	m.unscheduledIDs = append(m.unscheduledIDs, jobID)
}

func (m *mockScheduler) ExecuteJobManually(ctx context.Context, jobID string) (*domain.JobRun, error) {
	if m.executeFunc != nil {
		return m.executeFunc(ctx, jobID)
	}
	return nil, errMockNoData
}
