package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"ContentCurator/internal/ports"
)

// CronScheduler runs named jobs on standard five-field cron expressions.
// A job still running when its next tick fires is skipped; a panicking job
// is logged and does not stop the scheduler.
type CronScheduler struct {
	cron     *cron.Cron
	location *time.Location
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	stopped context.Context
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler evaluating expressions in loc.
func NewCronScheduler(loc *time.Location, log *slog.Logger) *CronScheduler {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = slog.Default()
	}
	cl := cronLogger{log: log}
	return &CronScheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		location: loc,
		logger:   log,
	}
}

// AddJob registers job under spec. Invalid expressions are rejected.
func (c *CronScheduler) AddJob(spec, name string, job func(time.Time)) error {
	if job == nil {
		return fmt.Errorf("job %s: nil func", name)
	}
	id, err := c.cron.AddFunc(spec, func() {
		start := time.Now().In(c.location)
		c.logger.Info("scheduled job started", "job", name)
		job(start)
		c.logger.Info("scheduled job finished", "job", name, "duration", time.Since(start))
	})
	if err != nil {
		return fmt.Errorf("job %s: parse %q: %w", name, spec, err)
	}
	c.logger.Debug("job scheduled", "job", name, "spec", spec, "next", c.cron.Entry(id).Next)
	return nil
}

// Start begins dispatching in the background. Cancelling ctx stops the scheduler.
func (c *CronScheduler) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return nil
	}
	c.running = true
	c.stopped = nil
	c.cron.Start()

	go func() {
		<-ctx.Done()
		_ = c.Stop(context.Background())
	}()
	return nil
}

// Stop halts dispatching and waits for running jobs or ctx, whichever ends
// first. Every call waits on the same in-flight jobs, including calls made
// after the scheduler was already stopped by context cancellation.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	if c.stopped == nil {
		if !c.running {
			c.mu.Unlock()
			return nil
		}
		c.running = false
		c.stopped = c.cron.Stop()
	}
	done := c.stopped
	c.mu.Unlock()

	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger routes robfig/cron's logging to slog.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
