// Package scheduler wires up the cron job that fires one discovery cycle at
// the configured time of day.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"arodriguez/craigwatch/logger"
)

// Scheduler wraps robfig/cron and triggers the pipeline once per calendar
// day. Cron evaluates at minute granularity, so the cycle cannot fire twice
// within the same target minute.
type Scheduler struct {
	cron *cron.Cron
	run  func(context.Context)
	spec string
	log  *logger.Logger
}

// New creates a scheduler firing daily at hour:minute local time.
func New(hour, minute int, run func(context.Context)) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		run:  run,
		spec: fmt.Sprintf("%d %d * * *", minute, hour),
		log:  logger.ForScheduler(),
	}
}

// Start registers the job and starts the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.run(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.log.Info().
		Str("spec", s.spec).
		Msg("Scheduler started")
	return nil
}

// Stop gracefully shuts down the scheduler. A running cycle is allowed to
// finish; its context is cancelled by the caller.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}
