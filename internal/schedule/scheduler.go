// Package schedule runs the periodic background jobs: the boost sweep and
// session cleanup.
package schedule

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/evenly-app/evenly/internal/boost"
	"github.com/evenly-app/evenly/internal/middleware"
	"github.com/evenly-app/evenly/internal/store"
)

// attemptRetentionDays is how long delivery-attempt rows are kept before
// the nightly prune removes them.
const attemptRetentionDays = 90

type Scheduler struct {
	cron     *cron.Cron
	engine   *boost.Engine
	sessions *store.SessionStore
	boostLog *store.BoostLogStore
	limiter  *middleware.RateLimiter
	logger   *slog.Logger
}

func New(engine *boost.Engine, sessions *store.SessionStore, boostLog *store.BoostLogStore, limiter *middleware.RateLimiter, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		engine:   engine,
		sessions: sessions,
		boostLog: boostLog,
		limiter:  limiter,
		logger:   logger.With("component", "scheduler"),
	}
}

// Start registers the jobs and begins the cron loop. The sweep interval is
// how often boosts are evaluated; tier windows are wide enough that any
// interval under an hour cannot skip one.
func (s *Scheduler) Start(sweepInterval time.Duration) error {
	if sweepInterval <= 0 {
		return fmt.Errorf("sweep interval must be positive")
	}

	sweepSpec := fmt.Sprintf("@every %ds", int(sweepInterval.Seconds()))
	if _, err := s.cron.AddFunc(sweepSpec, s.sweep); err != nil {
		return fmt.Errorf("schedule boost sweep: %w", err)
	}

	// second minute hour dom month dow
	if _, err := s.cron.AddFunc("0 0 4 * * *", s.cleanupSessions); err != nil {
		return fmt.Errorf("schedule session cleanup: %w", err)
	}
	if _, err := s.cron.AddFunc("0 30 4 * * *", s.pruneAttempts); err != nil {
		return fmt.Errorf("schedule attempt prune: %w", err)
	}
	if _, err := s.cron.AddFunc("0 0 * * * *", s.pruneRateLimiter); err != nil {
		return fmt.Errorf("schedule rate limiter prune: %w", err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "sweep_interval", sweepInterval)
	return nil
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) sweep() {
	summary := s.engine.Sweep(time.Now().UTC())
	if summary.TotalSent > 0 || summary.HouseholdsProcessed > 0 {
		s.logger.Info("scheduled boost sweep",
			"total_sent", summary.TotalSent,
			"households_processed", summary.HouseholdsProcessed,
			"quiet_households", summary.QuietHouseholds)
	}
}

func (s *Scheduler) pruneAttempts() {
	count, err := s.boostLog.DeleteAttemptsOlderThan(attemptRetentionDays)
	if err != nil {
		s.logger.Error("attempt prune", "error", err)
		return
	}
	if count > 0 {
		s.logger.Info("old delivery attempts pruned", "count", count)
	}
}

func (s *Scheduler) pruneRateLimiter() {
	s.limiter.Prune()
}

func (s *Scheduler) cleanupSessions() {
	count, err := s.sessions.DeleteExpired()
	if err != nil {
		s.logger.Error("session cleanup", "error", err)
		return
	}
	if count > 0 {
		s.logger.Info("expired sessions removed", "count", count)
	}
}
