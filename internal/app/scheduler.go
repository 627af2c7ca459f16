package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/abriltello/portafolioAI/internal/common"
)

// jobTimeout bounds a single run of an upkeep job.
const jobTimeout = 5 * time.Minute

// Job is a named unit of scheduled work.
type Job struct {
	Name     string
	Schedule string
	Run      func(ctx context.Context) error
}

// Scheduler runs upkeep jobs on cron schedules (six fields, with seconds).
type Scheduler struct {
	cron    *cron.Cron
	logger  *common.Logger
	jobs    []Job
	started bool
}

// NewScheduler registers the application's upkeep jobs. An empty schedule disables a job.
func NewScheduler(a *App) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		logger: a.Logger,
	}

	retention := a.Config.Scheduler.GetLogRetention()
	jobs := []Job{
		{
			Name:     "audit-log-retention",
			Schedule: a.Config.Scheduler.LogRetentionSchedule,
			Run: func(ctx context.Context) error {
				n, err := a.Audit.Prune(ctx, retention)
				if err == nil && n > 0 {
					a.Logger.Info().Int("deleted", n).Dur("retention", retention).Msg("Pruned audit log")
				}
				return err
			},
		},
		{
			Name:     "reset-token-sweep",
			Schedule: a.Config.Scheduler.ResetTokenSweepSchedule,
			Run: func(ctx context.Context) error {
				n, err := a.AuthService.SweepResetTokens(ctx)
				if err == nil && n > 0 {
					a.Logger.Info().Int("cleared", n).Msg("Cleared expired reset tokens")
				}
				return err
			},
		},
	}

	for _, job := range jobs {
		if job.Schedule == "" {
			continue
		}
		if err := s.AddJob(job); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// AddJob registers job with its cron schedule.
func (s *Scheduler) AddJob(job Job) error {
	_, err := s.cron.AddFunc(job.Schedule, func() {
		if err := s.RunNow(job); err != nil {
			s.logger.Error().Err(err).Str("job", job.Name).Msg("Job failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", job.Schedule, job.Name, err)
	}
	s.jobs = append(s.jobs, job)

	s.logger.Info().
		Str("schedule", job.Schedule).
		Str("job", job.Name).
		Msg("Job registered")
	return nil
}

// Jobs returns the registered jobs.
func (s *Scheduler) Jobs() []Job {
	return s.jobs
}

// RunNow executes job immediately, outside its schedule.
func (s *Scheduler) RunNow(job Job) error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	err := job.Run(ctx)
	s.logger.Debug().Str("job", job.Name).Dur("elapsed", time.Since(start)).Msg("Job completed")
	return err
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	if s.started {
		return
	}
	s.started = true
	s.cron.Start()
	s.logger.Info().Int("jobs", len(s.jobs)).Msg("Scheduler started")
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	if !s.started {
		return
	}
	s.started = false
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Scheduler stopped")
}
