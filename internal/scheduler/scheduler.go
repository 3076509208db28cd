package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"player_rotation/ingestion/internal/rotation"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Runner is one rotation invocation
type Runner interface {
	Run(ctx context.Context) (rotation.Result, error)
}

// Scheduler triggers rotation invocations on a cron schedule.
// Overlapping triggers are skipped, so at most one invocation runs per process.
type Scheduler struct {
	runner   Runner
	schedule string
	cron     *cron.Cron

	// running is held for the duration of every invocation, cron-triggered or not
	running atomic.Bool
}

// NewScheduler creates a new scheduler instance
func NewScheduler(runner Runner, schedule string) *Scheduler {
	return &Scheduler{
		runner:   runner,
		schedule: schedule,
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.DefaultLogger),
			cron.SkipIfStillRunning(cron.DefaultLogger),
		)),
	}
}

// Start registers the rotation job and starts the cron scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule rotation: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.schedule).
		Msg("Rotation scheduled")

	return nil
}

// RunOnce performs one invocation and logs the result. It is a no-op while
// another invocation of this scheduler is in flight.
func (s *Scheduler) RunOnce(ctx context.Context) {
	if ctx.Err() != nil {
		log.Info().Msg("Context cancelled, skipping rotation")
		return
	}

	if !s.running.CompareAndSwap(false, true) {
		log.Warn().Msg("Rotation already running, skipping")
		return
	}
	defer s.running.Store(false)

	start := time.Now()
	log.Info().Msg("Running rotation...")

	res, err := s.runner.Run(ctx)
	if err != nil {
		log.Error().Err(err).Dur("duration", time.Since(start)).Msg("Rotation failed")
		return
	}

	log.Info().
		Str("outcome", string(res.Outcome)).
		Str("country", res.Country).
		Int("players_added", res.PlayersAdded).
		Dur("duration", time.Since(start)).
		Msg("Rotation complete")
}

// Stop stops the scheduler and waits for a running invocation to finish
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	if s.cron != nil {
		<-s.cron.Stop().Done()
	}

	log.Info().Msg("Scheduler stopped")
}
