// Package scheduler owns the lifecycle of registered schedules. It loads
// active jobs from the store, registers each one with a cron dispatcher in
// the job's timezone, runs due jobs through the runner while holding a
// per-job single-flight slot, and records every attempt as a JobRun row.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ncecere/firecrawl-webui/internal/database"
	"github.com/ncecere/firecrawl-webui/internal/domain"
	"github.com/ncecere/firecrawl-webui/internal/logger"
	"github.com/ncecere/firecrawl-webui/internal/runner"
)

const (
	// cleanupSpec fires the run-history retention sweep once a day.
	cleanupSpec = "0 2 * * *"

	// runRetention is how long terminal runs are kept before the sweep
	// deletes them.
	runRetention = 30 * 24 * time.Hour

	// storeOpTimeout bounds bookkeeping writes so a wedged database cannot
	// hold a run goroutine forever.
	storeOpTimeout = 5 * time.Second

	defaultShutdownTimeout = 30 * time.Second
)

// interruptedMessage is recorded on runs found unfinished at startup.
const interruptedMessage = "interrupted by restart"

var (
	// ErrRunInFlight is returned when a run is requested for a job that
	// already has one executing.
	ErrRunInFlight = errors.New("run already in flight")

	// ErrJobInactive is returned when a manual run targets a paused job.
	ErrJobInactive = errors.New("scheduled job is not active")
)

// Status is a snapshot of the scheduler's registration state.
type Status struct {
	Running bool     `json:"running"`
	Count   int      `json:"count"`
	JobIDs  []string `json:"job_ids"`
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithShutdownTimeout sets how long Stop waits for in-flight runs to wind
// down after cancellation. Default: 30s.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		s.shutdownTimeout = d
	}
}

// Scheduler drives scheduled job execution.
type Scheduler struct {
	logger    logger.Interface
	schedules database.ScheduleStore
	runs      database.RunStore
	runner    runner.Interface

	cron *cron.Cron

	// Registration state
	mu           sync.Mutex
	running      bool
	entries      map[string]cron.EntryID
	cleanupEntry cron.EntryID

	// Job execution
	inflightMu sync.Mutex
	inflight   map[string]context.CancelFunc
	runCtx     context.Context
	runCancel  context.CancelFunc
	wg         sync.WaitGroup

	shutdownTimeout time.Duration
}

// New creates a scheduler wired to the given stores and runner. The
// dispatcher is created stopped; call Start to load and register jobs.
func New(
	log logger.Interface,
	schedules database.ScheduleStore,
	runs database.RunStore,
	r runner.Interface,
	opts ...Option,
) *Scheduler {
	runCtx, runCancel := context.WithCancel(context.Background())

	s := &Scheduler{
		logger:          log,
		schedules:       schedules,
		runs:            runs,
		runner:          r,
		entries:         make(map[string]cron.EntryID),
		inflight:        make(map[string]context.CancelFunc),
		runCtx:          runCtx,
		runCancel:       runCancel,
		shutdownTimeout: defaultShutdownTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.cron = cron.New(
		cron.WithParser(cron.NewParser(
			cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow,
		)),
		cron.WithChain(cron.Recover(cronLogger{log: log})),
	)

	return s
}

// Start sweeps runs orphaned by a previous process, registers all active
// schedules plus the retention cleanup task, and starts the dispatcher.
// Starting an already running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("Scheduler already running")
		return nil
	}
	s.running = true
	s.mu.Unlock()

	if err := s.recoverOrphanRuns(ctx); err != nil {
		s.setStopped()
		return fmt.Errorf("failed to recover orphan runs: %w", err)
	}

	jobs, err := s.schedules.ListActive(ctx)
	if err != nil {
		s.setStopped()
		return fmt.Errorf("failed to load active schedules: %w", err)
	}

	registered := 0
	for _, job := range jobs {
		if err := s.ScheduleJob(ctx, job); err != nil {
			s.logger.Error("Failed to register schedule",
				"job_id", job.ID,
				"name", job.Name,
				"error", err)
			continue
		}
		registered++
	}

	s.mu.Lock()
	entryID, err := s.cron.AddFunc(cleanupSpec, s.runCleanup)
	if err != nil {
		s.mu.Unlock()
		s.setStopped()
		return fmt.Errorf("failed to register cleanup task: %w", err)
	}
	s.cleanupEntry = entryID
	s.mu.Unlock()

	s.cron.Start()

	s.logger.Info("Scheduler started",
		"registered", registered,
		"active_jobs", len(jobs))
	return nil
}

// Stop unregisters every entry, halts the dispatcher, cancels in-flight
// runs, and waits up to the shutdown timeout for them to record their
// outcome. Stopping an already stopped scheduler is a no-op.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	for id, entryID := range s.entries {
		s.cron.Remove(entryID)
		delete(s.entries, id)
	}
	if s.cleanupEntry != 0 {
		s.cron.Remove(s.cleanupEntry)
		s.cleanupEntry = 0
	}
	s.mu.Unlock()

	s.cron.Stop()

	// Cancel in-flight runs, then give them a bounded window to persist
	// their terminal state.
	s.inflightMu.Lock()
	s.runCancel()
	s.runCtx, s.runCancel = context.WithCancel(context.Background())
	s.inflightMu.Unlock()

	if !s.waitInflight(s.shutdownTimeout) {
		s.logger.Warn("Shutdown timeout reached with runs still in flight",
			"timeout", s.shutdownTimeout)
		return nil
	}

	s.logger.Info("Scheduler stopped")
	return nil
}

// Status reports whether the dispatcher is running and which job IDs are
// registered, sorted for stable output.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return Status{
		Running: s.running,
		Count:   len(ids),
		JobIDs:  ids,
	}
}

// Reload drops every job registration and re-registers from the store's
// current set of active schedules. The cleanup task is left in place. It
// returns the number of jobs registered.
func (s *Scheduler) Reload(ctx context.Context) (int, error) {
	s.mu.Lock()
	for id, entryID := range s.entries {
		s.cron.Remove(entryID)
		delete(s.entries, id)
	}
	s.mu.Unlock()

	jobs, err := s.schedules.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load active schedules: %w", err)
	}

	registered := 0
	for _, job := range jobs {
		if err := s.ScheduleJob(ctx, job); err != nil {
			s.logger.Error("Failed to register schedule",
				"job_id", job.ID,
				"name", job.Name,
				"error", err)
			continue
		}
		registered++
	}

	s.logger.Info("Scheduler reloaded", "registered", registered)
	return registered, nil
}

// recoverOrphanRuns marks runs left unfinished by a previous process as
// failed. A run can only be non-terminal while its process is alive, so
// anything pending or running at startup was interrupted.
func (s *Scheduler) recoverOrphanRuns(ctx context.Context) error {
	orphans, err := s.runs.ListUnfinished(ctx)
	if err != nil {
		return err
	}

	for _, run := range orphans {
		now := time.Now().UTC()
		msg := interruptedMessage
		elapsed := now.Sub(run.StartedAt).Milliseconds()
		if elapsed < 0 {
			elapsed = 0
		}

		run.Status = domain.RunStatusFailed
		run.CompletedAt = &now
		run.ErrorMessage = &msg
		run.ExecutionTimeMs = &elapsed

		if err := s.runs.Update(ctx, run); err != nil {
			s.logger.Error("Failed to mark orphan run as failed",
				"run_id", run.ID,
				"job_id", run.ScheduledJobID,
				"error", err)
			continue
		}
		s.logger.Warn("Marked orphan run as failed",
			"run_id", run.ID,
			"job_id", run.ScheduledJobID,
			"started_at", run.StartedAt)
	}

	if len(orphans) > 0 {
		s.logger.Info("Orphan run recovery complete", "recovered", len(orphans))
	}
	return nil
}

// runCleanup deletes terminal runs older than the retention window.
func (s *Scheduler) runCleanup() {
	ctx, cancel := storeContext()
	defer cancel()

	cutoff := time.Now().UTC().Add(-runRetention)
	deleted, err := s.runs.CleanupOld(ctx, cutoff)
	if err != nil {
		s.logger.Error("Run history cleanup failed", "error", err)
		return
	}
	if deleted > 0 {
		s.logger.Info("Cleaned up old runs",
			"deleted", deleted,
			"cutoff", cutoff)
	}
}

func (s *Scheduler) setStopped() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// waitInflight waits for all tracked runs to finish, returning false if the
// timeout elapses first.
func (s *Scheduler) waitInflight(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// storeContext returns a short-lived context for bookkeeping writes that
// must proceed even when the triggering run was cancelled.
func storeContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), storeOpTimeout)
}

// cronLogger adapts logger.Interface to the dispatcher's logging contract.
type cronLogger struct {
	log logger.Interface
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.log.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.log.Error(msg, append(keysAndValues, "error", err)...)
}
