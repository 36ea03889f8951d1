// Package scheduler runs the periodic ledger scans. Every run takes a
// distributed lock first, so with several API replicas a scan still runs once.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/psim/backend/internal/infrastructure/cache"
	"github.com/psim/backend/internal/infrastructure/telemetry"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// JobStatus is the outcome of the last run of a job
type JobStatus string

const (
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
	JobStatusSkipped JobStatus = "SKIPPED"
)

// Job is a named unit of work on a standard five-field cron spec
type Job struct {
	Name string
	Spec string
	Run  func(ctx context.Context) error
}

// JobRun records the last run of a job
type JobRun struct {
	Status     JobStatus
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Config holds scheduler settings
type Config struct {
	LockTTL    time.Duration
	JobTimeout time.Duration
	Location   *time.Location
}

// DefaultConfig returns the settings used when none are configured
func DefaultConfig() Config {
	return Config{
		LockTTL:    5 * time.Minute,
		JobTimeout: 2 * time.Minute,
		Location:   time.UTC,
	}
}

// Scheduler owns a cron runner and the registered jobs
type Scheduler struct {
	cron   *cron.Cron
	locker cache.Locker
	config Config
	logger *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	jobs    map[string]Job
	lastRun map[string]JobRun
	running bool
}

// New creates a stopped scheduler
func New(config Config, locker cache.Locker, logger *zap.Logger) *Scheduler {
	def := DefaultConfig()
	if config.LockTTL <= 0 {
		config.LockTTL = def.LockTTL
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = def.JobTimeout
	}
	if config.Location == nil {
		config.Location = def.Location
	}
	if locker == nil {
		locker = cache.NewInMemoryLocker()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("scheduler")

	cl := cronLogger{logger.Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(config.Location),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		locker:  locker,
		config:  config,
		logger:  logger,
		now:     time.Now,
		jobs:    make(map[string]Job),
		lastRun: make(map[string]JobRun),
	}
}

// Register adds job to the cron table
func (s *Scheduler) Register(job Job) error {
	if job.Name == "" || job.Run == nil {
		return fmt.Errorf("scheduler: job needs a name and a run function")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, job.Name)
	}

	if _, err := s.cron.AddFunc(job.Spec, func() { _ = s.execute(context.Background(), job) }); err != nil {
		return fmt.Errorf("scheduler: invalid spec %q for %s: %w", job.Spec, job.Name, err)
	}
	s.jobs[job.Name] = job
	s.logger.Info("Job registered", zap.String("job", job.Name), zap.String("spec", job.Spec))
	return nil
}

// Start begins firing jobs on their schedules
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.cron.Start()
	s.logger.Info("Scheduler started",
		zap.Int("jobs", len(s.jobs)),
		zap.String("location", s.config.Location.String()),
	)
}

// Stop halts the schedule and waits for running jobs or ctx, whichever ends first
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}

// RunNow runs a registered job immediately, under the same lock as a scheduled run
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	return s.execute(ctx, job)
}

// LastRun returns the outcome of the most recent run of name
func (s *Scheduler) LastRun(name string) (JobRun, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.lastRun[name]
	return run, ok
}

func (s *Scheduler) execute(ctx context.Context, job Job) (err error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	ctx, span := telemetry.StartSpan(ctx, "scheduler."+job.Name, attribute.String("job", job.Name))
	run := JobRun{StartedAt: s.now()}
	log := s.logger.With(zap.String("job", job.Name))
	defer func() {
		run.FinishedAt = s.now()
		s.mu.Lock()
		s.lastRun[job.Name] = run
		s.mu.Unlock()
		if errors.Is(err, ErrJobLocked) {
			telemetry.EndSpan(span, nil)
			return
		}
		telemetry.EndSpan(span, err)
	}()

	release, ok, err := s.locker.TryLock(ctx, "job:"+job.Name, s.config.LockTTL)
	if err != nil {
		run.Status, run.Error = JobStatusFailed, err.Error()
		log.Error("Failed to obtain job lock", zap.Error(err))
		return err
	}
	if !ok {
		run.Status = JobStatusSkipped
		log.Debug("Job lock held elsewhere, skipping run")
		return ErrJobLocked
	}
	defer func() {
		// release with a fresh context so a timed-out run still frees its lock
		relCtx, relCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer relCancel()
		if relErr := release(relCtx); relErr != nil {
			log.Warn("Failed to release job lock", zap.Error(relErr))
		}
	}()

	if err = job.Run(ctx); err != nil {
		run.Status, run.Error = JobStatusFailed, err.Error()
		log.Error("Job failed", zap.Error(err), zap.Duration("elapsed", s.now().Sub(run.StartedAt)))
		return err
	}
	run.Status = JobStatusSuccess
	log.Info("Job completed", zap.Duration("elapsed", s.now().Sub(run.StartedAt)))
	return nil
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
