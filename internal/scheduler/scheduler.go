package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// AnnounceSpec ticks at second zero of every minute.
	AnnounceSpec = "0 * * * * *"
	// PresenceSpec rotates the bot activity.
	PresenceSpec = "@every 5m"
)

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron      *cron.Cron
	Announcer *Announcer
	Rotator   *Rotator
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler. Jobs run with panic recovery and are
// skipped while a previous run of the same job is still going.
func NewScheduler(ctx context.Context, a *Announcer, r *Rotator) *Scheduler {
	logger := cronLogger{log.With().Str("component", "cron").Logger()}
	opts := []cron.Option{
		cron.WithSeconds(),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	}
	if a != nil && a.Window.Location != nil {
		opts = append(opts, cron.WithLocation(a.Window.Location))
	}
	return &Scheduler{
		Cron:      cron.New(opts...),
		Announcer: a,
		Rotator:   r,
		Ctx:       ctx,
	}
}

// RegisterAll registers the announcement tick and the presence rotation.
func (s *Scheduler) RegisterAll(announceSpec, presenceSpec string) error {
	if s.Announcer != nil {
		if _, err := s.Cron.AddFunc(announceSpec, func() { s.Announcer.TickNow(s.Ctx) }); err != nil {
			return fmt.Errorf("register announcer: %w", err)
		}
	}
	if s.Rotator != nil {
		if _, err := s.Cron.AddFunc(presenceSpec, s.Rotator.Tick); err != nil {
			return fmt.Errorf("register presence: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Str("component", "scheduler").Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Str("component", "scheduler").Msg("scheduler stopped")
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	l zerolog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug().Fields(keysAndValues).Msg(msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
