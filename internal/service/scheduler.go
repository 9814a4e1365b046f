package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/DevRickLin/feishu-birthday-bot/internal/biz/usecase"
)

// TickFunc is one execution of a job
type TickFunc func(ctx context.Context, now time.Time) error

// NextRun returns the first hh:mm UTC strictly after now
func NextRun(now time.Time, hour, minute int) time.Time {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Job runs a tick once a day at a fixed UTC time of day.
// The loop stops only when its context is cancelled or a tick panics.
type Job struct {
	name   string
	hour   int
	minute int
	tick   TickFunc
	logger *slog.Logger

	now   func() time.Time
	after func(time.Duration) <-chan time.Time

	running atomic.Bool
	next    atomic.Int64 // unix nanos of the pending run
	runs    atomic.Int64
}

// NewJob creates a new daily job
func NewJob(name string, hour, minute int, tick TickFunc, logger *slog.Logger) *Job {
	return &Job{
		name:   name,
		hour:   hour,
		minute: minute,
		tick:   tick,
		logger: logger.With("component", "scheduler", "job", name),
		now:    time.Now,
		after:  time.After,
	}
}

// Name returns the job name
func (j *Job) Name() string {
	return j.name
}

// IsRunning reports whether the job loop is alive
func (j *Job) IsRunning() bool {
	return j.running.Load()
}

// NextRun returns the pending run time, zero when the loop is not running
func (j *Job) NextRun() time.Time {
	n := j.next.Load()
	if n == 0 || !j.IsRunning() {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

// Runs returns the number of completed ticks
func (j *Job) Runs() int64 {
	return j.runs.Load()
}

func (j *Job) loop(ctx context.Context) {
	j.running.Store(true)
	defer j.running.Store(false)
	defer func() {
		if r := recover(); r != nil {
			j.logger.Error("job loop terminated", "panic", fmt.Sprint(r))
		}
	}()

	for {
		now := j.now()
		next := NextRun(now, j.hour, j.minute)
		j.next.Store(next.UnixNano())

		select {
		case <-ctx.Done():
			return
		case <-j.after(next.Sub(now)):
		}

		j.runOnce(ctx, next)
	}
}

// runOnce executes one tick. Errors are logged and never stop the loop.
func (j *Job) runOnce(ctx context.Context, scheduled time.Time) {
	runID := uuid.NewString()
	start := j.now()
	j.logger.Info("job started", "run_id", runID, "scheduled", scheduled)

	err := j.tick(ctx, start)
	j.runs.Add(1)

	if err != nil {
		j.logger.Error("job failed", "run_id", runID, "duration", time.Since(start), "error", err)
		return
	}
	j.logger.Info("job finished", "run_id", runID, "duration", time.Since(start))
}

// Scheduler owns the daily jobs
type Scheduler struct {
	jobs   []*Job
	logger *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a new scheduler
func NewScheduler(logger *slog.Logger, jobs ...*Job) *Scheduler {
	return &Scheduler{
		jobs:   jobs,
		logger: logger.With("component", "scheduler"),
	}
}

// Start starts every job loop
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	for _, j := range s.jobs {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			j.loop(ctx)
		}()
	}

	for _, j := range s.jobs {
		s.logger.Info("job scheduled", "job", j.name, "at", fmt.Sprintf("%02d:%02d UTC", j.hour, j.minute))
	}
}

// Stop stops every job loop and waits for running ticks to return
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info("stopped")
}

// Jobs returns the jobs as status probes
func (s *Scheduler) Jobs() []usecase.JobProbe {
	probes := make([]usecase.JobProbe, len(s.jobs))
	for i, j := range s.jobs {
		probes[i] = j
	}
	return probes
}
