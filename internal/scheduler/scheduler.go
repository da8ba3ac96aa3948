package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lessonforge/lessonforge-backend/internal/pkg/metrics"
)

// DefaultTick is the calendar evaluation granularity.
const DefaultTick = time.Minute

// JobFunc is one batch job run. The returned report is surfaced by Trigger
// and logged on scheduled fires.
type JobFunc func(ctx context.Context) (any, error)

// Job binds a named job to a calendar rule. RunAtStart jobs additionally fire
// once, unconditionally, when the scheduler starts.
type Job struct {
	Name       string
	Rule       Rule
	Run        JobFunc
	RunAtStart bool
}

// JobStatus describes one registered job for operational tooling.
type JobStatus struct {
	Name     string    `json:"name"`
	Schedule string    `json:"schedule"`
	Active   bool      `json:"is_active"`
	LastRun  time.Time `json:"last_run,omitempty"`
}

// Status is the scheduler's observable state.
type Status struct {
	Running bool        `json:"is_running"`
	Jobs    []JobStatus `json:"jobs"`
}

type jobState struct {
	Job
	mu       sync.Mutex
	active   bool
	lastRun  time.Time
	lastFire time.Time
}

// Scheduler fires registered jobs on their calendar rules. Every fire runs
// inside a guard that logs errors and recovers panics, so a job failure never
// crashes the process. There is deliberately no overlap lock: a run outlasting
// its calendar interval can overlap the next fire (known, accepted risk).
type Scheduler struct {
	mu      sync.Mutex
	jobs    []*jobState
	running bool
	stopCh  chan struct{}
	tick    time.Duration
	log     *slog.Logger
}

// New builds a stopped scheduler. tick <= 0 uses DefaultTick.
func New(tick time.Duration, log *slog.Logger) *Scheduler {
	if tick <= 0 {
		tick = DefaultTick
	}
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{tick: tick, log: log}
}

// Register adds a job. Call before Start.
func (s *Scheduler) Register(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, &jobState{Job: job})
}

// Start launches the ticker loop and fires RunAtStart jobs once. Starting a
// running scheduler is a no-op with a warning.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.log.Warn("scheduler already running, start ignored")
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	now := time.Now().UTC()
	for _, j := range s.jobs {
		j.lastFire = now
	}
	s.mu.Unlock()

	s.log.Info("scheduler started", "jobs", len(s.jobs), "tick", s.tick)

	go func() {
		for _, j := range s.jobs {
			if j.RunAtStart {
				s.fire(ctx, j)
			}
		}

		ticker := time.NewTicker(s.tick)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.evaluate(ctx)
			case <-stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts scheduling. Stopping a stopped scheduler is a no-op with a
// warning. Jobs already in flight run to completion.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		s.log.Warn("scheduler not running, stop ignored")
		return
	}
	s.running = false
	close(s.stopCh)
	s.log.Info("scheduler stopped")
}

// Status reports the running flag and every registered job.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := Status{Running: s.running}
	for _, j := range s.jobs {
		j.mu.Lock()
		status.Jobs = append(status.Jobs, JobStatus{
			Name:     j.Name,
			Schedule: j.Rule.String(),
			Active:   j.active,
			LastRun:  j.lastRun,
		})
		j.mu.Unlock()
	}
	return status
}

// Trigger runs the named job synchronously and returns its report. Used by
// admin tooling and tests; works whether or not the scheduler is running.
func (s *Scheduler) Trigger(ctx context.Context, name string) (any, error) {
	s.mu.Lock()
	var target *jobState
	for _, j := range s.jobs {
		if j.Name == name {
			target = j
			break
		}
	}
	s.mu.Unlock()
	if target == nil {
		return nil, fmt.Errorf("unknown job %q", name)
	}
	return s.run(ctx, target)
}

func (s *Scheduler) evaluate(ctx context.Context) {
	now := time.Now().UTC()
	for _, j := range s.jobs {
		j.mu.Lock()
		due := j.Rule.Due(j.lastFire, now)
		if due {
			j.lastFire = now
		}
		j.mu.Unlock()
		if due {
			s.fire(ctx, j)
		}
	}
}

// fire wraps a scheduled run in the catch-and-log guard. This is the sole
// place that guarantees a job failure or panic never crashes the process.
func (s *Scheduler) fire(ctx context.Context, j *jobState) {
	defer func() {
		if rec := recover(); rec != nil {
			metrics.JobRunsTotal.WithLabelValues(j.Name, "panic").Inc()
			s.log.Error("job panicked", "job", j.Name, "panic", rec)
		}
	}()
	if _, err := s.run(ctx, j); err != nil {
		s.log.Error("job failed", "job", j.Name, "error", err)
	}
}

func (s *Scheduler) run(ctx context.Context, j *jobState) (any, error) {
	j.mu.Lock()
	j.active = true
	j.mu.Unlock()
	defer func() {
		j.mu.Lock()
		j.active = false
		j.lastRun = time.Now().UTC()
		j.mu.Unlock()
	}()

	s.log.Info("job starting", "job", j.Name)
	report, err := j.Run(ctx)
	if err != nil {
		metrics.JobRunsTotal.WithLabelValues(j.Name, "error").Inc()
		return nil, err
	}
	metrics.JobRunsTotal.WithLabelValues(j.Name, "ok").Inc()
	return report, nil
}
