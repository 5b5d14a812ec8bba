package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ContentCurator/internal/ports"
)

// Default cron expressions.
const (
	DefaultCollectCron  = "0 */2 * * *"
	DefaultPipelineCron = "0 */6 * * *"
	DefaultWeeklyCron   = "0 9 * * MON"
)

// ScheduleSpec holds the cron expressions for recurring jobs. An empty
// expression uses the default; "-" disables the job.
type ScheduleSpec struct {
	Collect  string
	Pipeline string
	Weekly   string
	TopicID  string
}

// Scheduler wires the cron-like driver with the pipeline use case.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	spec     ScheduleSpec
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring jobs.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, spec ScheduleSpec, log *slog.Logger) *Scheduler {
	if spec.Collect == "" {
		spec.Collect = DefaultCollectCron
	}
	if spec.Pipeline == "" {
		spec.Pipeline = DefaultPipelineCron
	}
	if spec.Weekly == "" {
		spec.Weekly = DefaultWeeklyCron
	}
	return &Scheduler{driver: driver, pipeline: pipeline, spec: spec, logger: log}
}

// Start registers collection, full runs and the weekly summary, then starts the driver.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	jobs := []struct {
		name string
		expr string
		run  func(time.Time)
	}{
		{"collect", s.spec.Collect, func(time.Time) {
			outcomes, err := s.pipeline.Collect(ctx, s.spec.TopicID)
			if err != nil {
				s.logError("scheduled collection failed", err)
				return
			}
			s.info("scheduled collection done", "sources", len(outcomes))
		}},
		{"pipeline", s.spec.Pipeline, func(time.Time) {
			res := s.pipeline.Run(ctx, RunOptions{TopicID: s.spec.TopicID})
			s.info("scheduled run done", "run_id", res.RunID, "success", res.Success)
		}},
		{"weekly-summary", s.spec.Weekly, func(time.Time) {
			if _, err := s.pipeline.WeeklySummary(ctx, s.spec.TopicID); err != nil {
				s.logError("scheduled weekly summary failed", err)
			}
		}},
	}

	for _, job := range jobs {
		if job.expr == "-" {
			continue
		}
		if err := s.driver.AddJob(job.expr, job.name, job.run); err != nil {
			return fmt.Errorf("schedule %s: %w", job.name, err)
		}
	}
	return s.driver.Start(ctx)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}

func (s *Scheduler) info(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Scheduler) logError(msg string, err error) {
	if s.logger != nil {
		s.logger.Error(msg, "error", err)
	}
}
