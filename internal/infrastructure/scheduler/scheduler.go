package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"lokl-mora-backend/internal/pkg/apperrors"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Job is one unit of scheduled work. A failing job is logged and retried on its next tick.
type Job func(ctx context.Context) error

// Jobs groups the three recurring automations.
type Jobs struct {
	Report   Job
	Snapshot Job
	Email    Job
}

// Config holds cron expressions (minute hour dom month dow) evaluated in Location.
type Config struct {
	Location       *time.Location
	ReportSpec     string
	SnapshotSpec   string
	EmailFrequency string
	JobTimeout     time.Duration
}

// FrequencySpec maps a reminder cadence to its cron expression, always at 08:00.
func FrequencySpec(freq string) (string, error) {
	switch freq {
	case "daily":
		return "0 8 * * *", nil
	case "weekly":
		return "0 8 * * 1", nil
	case "monthly":
		return "0 8 1 * *", nil
	}
	return "", fmt.Errorf("%w: unknown email frequency %q", apperrors.ErrValidation, freq)
}

// Scheduler runs the report, snapshot and email jobs on their cron schedules.
type Scheduler struct {
	cron    *cron.Cron
	jobs    Jobs
	timeout time.Duration

	mu         sync.Mutex
	ctx        context.Context
	cancel     context.CancelFunc
	frequency  string
	emailEntry cron.EntryID
	running    bool
}

// New validates every schedule and registers the jobs. Nothing runs until Start.
func New(cfg Config, jobs Jobs) (*Scheduler, error) {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	timeout := cfg.JobTimeout
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		jobs:    jobs,
		timeout: timeout,
		ctx:     context.Background(),
	}
	if _, err := s.cron.AddFunc(cfg.ReportSpec, s.wrap("report", jobs.Report)); err != nil {
		return nil, fmt.Errorf("%w: report schedule %q: %v", apperrors.ErrConfiguration, cfg.ReportSpec, err)
	}
	if _, err := s.cron.AddFunc(cfg.SnapshotSpec, s.wrap("snapshot", jobs.Snapshot)); err != nil {
		return nil, fmt.Errorf("%w: snapshot schedule %q: %v", apperrors.ErrConfiguration, cfg.SnapshotSpec, err)
	}
	if err := s.SetEmailFrequency(cfg.EmailFrequency); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrConfiguration, err)
	}
	return s, nil
}

// SetEmailFrequency replaces the email job schedule. It takes effect on the next tick.
func (s *Scheduler) SetEmailFrequency(freq string) error {
	spec, err := FrequencySpec(freq)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := s.cron.AddFunc(spec, s.wrap("email", s.jobs.Email))
	if err != nil {
		return err
	}
	if s.emailEntry != 0 {
		s.cron.Remove(s.emailEntry)
	}
	s.emailEntry = id
	s.frequency = freq
	log.Info().Str("frequency", freq).Str("spec", spec).Msg("Email reminder schedule updated")
	return nil
}

// EmailFrequency returns the cadence currently scheduled.
func (s *Scheduler) EmailFrequency() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frequency
}

// NextEmailRun reports when the email job fires next. Zero before Start.
func (s *Scheduler) NextEmailRun() time.Time {
	s.mu.Lock()
	id := s.emailEntry
	s.mu.Unlock()
	return s.cron.Entry(id).Next
}

// Start begins firing jobs. Jobs receive a context cancelled by Stop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.running = true
	s.cron.Start()
	log.Info().Int("jobs", len(s.cron.Entries())).Msg("Scheduler started")
}

// Stop stops firing jobs and waits for running ones until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	select {
	case <-s.cron.Stop().Done():
		log.Info().Msg("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) jobContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

func (s *Scheduler) wrap(name string, job Job) func() {
	return func() {
		if job == nil {
			return
		}
		ctx, cancel := context.WithTimeout(s.jobContext(), s.timeout)
		defer cancel()
		runJob(ctx, name, job)
	}
}

func runJob(ctx context.Context, name string, job Job) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("job", name).Interface("panic", r).Msg("Scheduled job panicked")
		}
	}()
	if err := job(ctx); err != nil {
		log.Error().Err(err).Str("job", name).Dur("took", time.Since(start)).Msg("Scheduled job failed")
		return
	}
	log.Info().Str("job", name).Dur("took", time.Since(start)).Msg("Scheduled job finished")
}
