// Package scheduler registers the three fixed-cadence report triggers
// on institutional wall-clock time. There is no persisted last-run
// state: a restart simply waits for the next natural trigger, and runs
// missed during downtime are not backfilled.
package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"latecomer/internal/clock"
	"latecomer/internal/dispatch"
)

// Trigger specs, institutional wall-clock.
const (
	dailySpec   = "50 11 * * *" // every day at 11:50
	weeklySpec  = "50 11 * * 0" // Sundays at 11:50
	monthlySpec = "50 11 1 * *" // first of the month at 11:50
)

// Pipelines is the set of report runs the scheduler fires.
type Pipelines interface {
	Daily(ctx context.Context) dispatch.Result
	Weekly(ctx context.Context) dispatch.Result
	Monthly(ctx context.Context) dispatch.Result
}

// Scheduler owns the cron registrations.
type Scheduler struct {
	cron      *cron.Cron
	pipelines Pipelines
	logger    *zap.Logger
}

// New builds a scheduler with all three triggers registered. Each job
// skips a tick if the previous firing is still running; beyond that a
// slow run overlapping the next tick is acceptable at these
// frequencies.
func New(pipelines Pipelines, logger *zap.Logger) (*Scheduler, error) {
	c := cron.New(
		cron.WithLocation(clock.Zone),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger), cron.Recover(cron.DefaultLogger)),
	)

	s := &Scheduler{cron: c, pipelines: pipelines, logger: logger}

	jobs := []struct {
		spec string
		run  func(context.Context) dispatch.Result
	}{
		{dailySpec, pipelines.Daily},
		{weeklySpec, pipelines.Weekly},
		{monthlySpec, pipelines.Monthly},
	}
	for _, job := range jobs {
		run := job.run
		if _, err := c.AddFunc(job.spec, func() {
			res := run(context.Background())
			if !res.OK() {
				s.logger.Warn("scheduled report run had failures",
					zap.String("cadence", res.Cadence),
					zap.Strings("failed", res.Failed),
					zap.String("error", res.Err))
			}
		}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Start begins firing triggers.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("report scheduler started",
		zap.String("daily", dailySpec),
		zap.String("weekly", weeklySpec),
		zap.String("monthly", monthlySpec),
		zap.String("timezone", clock.Zone.String()))
}

// Stop halts the triggers; running jobs finish.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// Entries exposes the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// RunNow fires all three pipelines synchronously, for the manual test
// endpoint and the one-shot runner. Each pipeline's failure is
// isolated in its own result.
func (s *Scheduler) RunNow(ctx context.Context) []dispatch.Result {
	return []dispatch.Result{
		s.pipelines.Daily(ctx),
		s.pipelines.Weekly(ctx),
		s.pipelines.Monthly(ctx),
	}
}
