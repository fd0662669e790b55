package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/ncecere/firecrawl-webui/internal/domain"
	"github.com/ncecere/firecrawl-webui/internal/recurrence"
)

// ScheduleJob registers a job with the dispatcher, replacing any prior
// registration for the same ID, and persists the advisory next_run_at. The
// cron entry carries the job's timezone so fire times follow local wall
// clocks across DST transitions.
func (s *Scheduler) ScheduleJob(ctx context.Context, job *domain.ScheduledJob) error {
	spec, err := recurrence.BuildCronSpec(job)
	if err != nil {
		return fmt.Errorf("failed to build cron spec for job %s: %w", job.ID, err)
	}

	next, err := recurrence.NextFireAfter(job, time.Now())
	if err != nil {
		return fmt.Errorf("failed to compute next fire for job %s: %w", job.ID, err)
	}

	tz := job.Timezone
	if tz == "" {
		tz = domain.DefaultTimezone
	}
	entrySpec := fmt.Sprintf("CRON_TZ=%s %s", tz, spec)

	jobID := job.ID

	s.mu.Lock()
	if prior, ok := s.entries[jobID]; ok {
		s.cron.Remove(prior)
		delete(s.entries, jobID)
	}
	entryID, err := s.cron.AddFunc(entrySpec, func() {
		s.runScheduled(jobID)
	})
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to register job %s: %w", jobID, err)
	}
	s.entries[jobID] = entryID
	s.mu.Unlock()

	if err := s.schedules.UpdateNextRun(ctx, jobID, &next); err != nil {
		return fmt.Errorf("failed to persist next run for job %s: %w", jobID, err)
	}

	s.logger.Debug("Registered schedule",
		"job_id", jobID,
		"name", job.Name,
		"spec", entrySpec,
		"next_run_at", next)
	return nil
}

// UnscheduleJob removes a job's dispatcher registration. Unscheduling a job
// that is not registered is a no-op.
func (s *Scheduler) UnscheduleJob(jobID string) {
	s.mu.Lock()
	entryID, ok := s.entries[jobID]
	if ok {
		s.cron.Remove(entryID)
		delete(s.entries, jobID)
	}
	s.mu.Unlock()

	if ok {
		s.logger.Debug("Unregistered schedule", "job_id", jobID)
	}
}

// ExecuteJobManually runs an active job immediately, inline with the call,
// under the same single-flight rule as scheduled ticks. It returns the
// recorded run; a runner failure is reported in the run's status rather
// than as an error. Returns ErrRunInFlight when the job is already
// executing and ErrJobInactive when it is paused.
func (s *Scheduler) ExecuteJobManually(ctx context.Context, jobID string) (*domain.JobRun, error) {
	job, err := s.schedules.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !job.IsActive {
		return nil, fmt.Errorf("%w: %s", ErrJobInactive, jobID)
	}

	s.logger.Info("Manual run requested", "job_id", jobID, "name", job.Name)
	return s.performRun(job, domain.RunTypeManual)
}
