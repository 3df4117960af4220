// Package sched runs the pipeline on a cron schedule.
package sched

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Job is one scheduled pipeline execution.
type Job func(ctx context.Context) error

// Scheduler triggers a Job on a cron expression until stopped.
type Scheduler struct {
	cron   *cron.Cron
	job    Job
	logger *slog.Logger
}

// New creates a Scheduler for the given job.
func New(job Job, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{cron: cron.New(), job: job, logger: logger}
}

// Start registers the cron expression and starts the scheduler.
func (s *Scheduler) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx := context.Background()
		if err := s.job(ctx); err != nil {
			s.logger.Warn("scheduled run failed", "error", err)
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("scheduler started", "schedule", spec)
	return nil
}

// Stop gracefully stops the scheduler and waits for a running job.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}
