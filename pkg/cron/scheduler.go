// Package cron schedules the recurring background jobs.
package cron

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/jkmdale/your-ai-finance-brain-sub003/internal/domain/insights"
)

// Scheduler runs the recurring jobs: a nightly full insights recompute keeps
// summaries honest even when no import happens all day.
type Scheduler struct {
	cron     *cron.Cron
	insights *insights.Service
	logger   *slog.Logger
}

// NewScheduler creates the scheduler without starting it.
func NewScheduler(insightsSvc *insights.Service, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		insights: insightsSvc,
		logger:   logger,
	}
}

// Start registers the jobs and begins running them.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("30 2 * * *", func() {
		s.logger.Info("running nightly insights recompute")
		if err := s.insights.Recompute(context.Background()); err != nil {
			s.logger.Error("nightly insights recompute failed", slog.Any("error", err))
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
