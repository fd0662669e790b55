package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ncecere/firecrawl-webui/internal/domain"
	"github.com/ncecere/firecrawl-webui/internal/recurrence"
)

// runScheduled is the dispatcher callback for one job. It re-reads the job
// so a tick never acts on stale state: a deleted or paused job unregisters
// itself instead of running.
func (s *Scheduler) runScheduled(jobID string) {
	ctx, cancel := storeContext()
	job, err := s.schedules.GetByID(ctx, jobID)
	cancel()
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Info("Schedule no longer exists, unregistering", "job_id", jobID)
			s.UnscheduleJob(jobID)
			return
		}
		s.logger.Error("Failed to load schedule for tick",
			"job_id", jobID,
			"error", err)
		return
	}

	if !job.IsActive {
		s.logger.Info("Schedule is paused, unregistering", "job_id", jobID)
		s.UnscheduleJob(jobID)
		return
	}

	if _, err := s.performRun(job, domain.RunTypeScheduled); err != nil {
		if errors.Is(err, ErrRunInFlight) {
			s.logger.Warn("Previous run still in flight, skipping tick",
				"job_id", jobID,
				"name", job.Name)
			return
		}
		s.logger.Error("Scheduled run failed to start",
			"job_id", jobID,
			"error", err)
	}
}

// performRun executes one run of a job: it claims the job's single-flight
// slot, records a running JobRun row, invokes the runner, finalizes the row
// with the outcome, and advances last_run_at/next_run_at. The next fire is
// computed from the completion instant, so a run that overshoots its next
// slot pushes the following fire out rather than queueing a make-up run.
func (s *Scheduler) performRun(job *domain.ScheduledJob, runType string) (*domain.JobRun, error) {
	runCtx, release, acquired := s.acquireRun(job.ID)
	if !acquired {
		return nil, fmt.Errorf("%w: job %s", ErrRunInFlight, job.ID)
	}
	defer release()

	run := &domain.JobRun{
		ID:             uuid.New().String(),
		ScheduledJobID: job.ID,
		RunType:        runType,
		Status:         domain.RunStatusRunning,
		StartedAt:      time.Now().UTC(),
	}

	createCtx, cancel := storeContext()
	err := s.runs.Create(createCtx, run)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("failed to create run record: %w", err)
	}

	s.logger.Info("Run started",
		"run_id", run.ID,
		"job_id", job.ID,
		"name", job.Name,
		"job_type", job.JobType,
		"run_type", runType)

	started := time.Now()
	result, execErr := s.runner.Execute(runCtx, job)
	elapsed := time.Since(started).Milliseconds()

	completed := time.Now().UTC()
	run.CompletedAt = &completed
	run.ExecutionTimeMs = &elapsed

	if execErr != nil {
		run.Status = domain.RunStatusFailed
		msg := execErr.Error()
		run.ErrorMessage = &msg
	} else {
		run.Status = domain.RunStatusCompleted
		run.ResultData = result
	}

	// Terminal bookkeeping uses fresh contexts: the outcome must be
	// recorded even when runCtx was cancelled mid-run.
	updateCtx, cancel := storeContext()
	err = s.runs.Update(updateCtx, run)
	cancel()
	if err != nil {
		s.logger.Error("Failed to record run outcome",
			"run_id", run.ID,
			"job_id", job.ID,
			"error", err)
	}

	s.advanceSchedule(job, completed)

	if execErr != nil {
		s.logger.Warn("Run failed",
			"run_id", run.ID,
			"job_id", job.ID,
			"name", job.Name,
			"duration_ms", elapsed,
			"error", execErr)
	} else {
		s.logger.Info("Run completed",
			"run_id", run.ID,
			"job_id", job.ID,
			"name", job.Name,
			"duration_ms", elapsed)
	}

	return run, nil
}

// advanceSchedule stamps last_run_at and the next fire computed from the
// completion instant.
func (s *Scheduler) advanceSchedule(job *domain.ScheduledJob, completed time.Time) {
	var nextPtr *time.Time
	next, err := recurrence.NextFireAfter(job, completed)
	if err != nil {
		s.logger.Error("Failed to compute next fire",
			"job_id", job.ID,
			"error", err)
	} else {
		nextPtr = &next
	}

	ctx, cancel := storeContext()
	defer cancel()
	if err := s.schedules.UpdateLastRun(ctx, job.ID, completed, nextPtr); err != nil {
		s.logger.Error("Failed to update schedule after run",
			"job_id", job.ID,
			"error", err)
	}
}

// acquireRun claims the per-job single-flight slot. The check and claim are
// atomic under inflightMu, so concurrent ticks and manual triggers cannot
// both win. The returned context is cancelled by Stop; release frees the
// slot and must be called exactly once.
func (s *Scheduler) acquireRun(jobID string) (context.Context, func(), bool) {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()

	if _, exists := s.inflight[jobID]; exists {
		return nil, nil, false
	}

	runCtx, cancel := context.WithCancel(s.runCtx)
	s.inflight[jobID] = cancel
	s.wg.Add(1)

	release := func() {
		cancel()
		s.inflightMu.Lock()
		delete(s.inflight, jobID)
		s.inflightMu.Unlock()
		s.wg.Done()
	}
	return runCtx, release, true
}
