// Package scheduler drives the two recurring passes: reconciliation matching
// and staleness flagging. The cadences are independent; a slow sweep never
// delays matching.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"deposit-reconciliation-service/internal/recon"
	"deposit-reconciliation-service/pkg/logger"

	"github.com/go-co-op/gocron/v2"
)

// Config holds the scheduling cadences
type Config struct {
	// MatchInterval is the cadence of the reconciliation pass
	MatchInterval time.Duration `json:"match_interval"`

	// SweepInterval is the cadence of the staleness sweep
	SweepInterval time.Duration `json:"sweep_interval"`
}

// DefaultConfig returns the production cadences: matching every minute,
// sweeping every five.
func DefaultConfig() *Config {
	return &Config{
		MatchInterval: 60 * time.Second,
		SweepInterval: 5 * time.Minute,
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.MatchInterval <= 0 {
		return fmt.Errorf("match interval must be positive: %s", c.MatchInterval)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("sweep interval must be positive: %s", c.SweepInterval)
	}
	return nil
}

// Scheduler owns the recurring reconciliation jobs
type Scheduler struct {
	sched  gocron.Scheduler
	engine *recon.Engine
	cfg    *Config
	log    logger.Logger
}

// New creates a scheduler for the engine. A nil config selects the default
// cadences.
func New(engine *recon.Engine, cfg *Config) (*Scheduler, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("creating scheduler: %w", err)
	}

	return &Scheduler{
		sched:  sched,
		engine: engine,
		cfg:    cfg,
		log:    logger.WithComponent("scheduler"),
	}, nil
}

// Start registers both jobs and begins running them. Pass failures are
// logged and retried on the next tick, never in a tight loop.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.sched.NewJob(
		gocron.DurationJob(s.cfg.MatchInterval),
		gocron.NewTask(func() {
			if _, err := s.engine.RunPass(ctx); err != nil {
				s.log.WithError(err).Error("reconciliation pass failed")
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("registering reconciliation job: %w", err)
	}

	_, err = s.sched.NewJob(
		gocron.DurationJob(s.cfg.SweepInterval),
		gocron.NewTask(func() {
			if _, err := s.engine.RunSweep(ctx); err != nil {
				s.log.WithError(err).Error("staleness sweep failed")
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("registering sweep job: %w", err)
	}

	s.sched.Start()
	s.log.Infof("scheduler started (match every %s, sweep every %s)",
		s.cfg.MatchInterval, s.cfg.SweepInterval)
	return nil
}

// Stop shuts the scheduler down, waiting for running jobs to finish
func (s *Scheduler) Stop() error {
	if err := s.sched.Shutdown(); err != nil {
		return fmt.Errorf("stopping scheduler: %w", err)
	}
	s.log.Info("scheduler stopped")
	return nil
}
