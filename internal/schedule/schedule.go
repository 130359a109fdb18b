// Package schedule wires up the cron jobs that periodically trigger the
// deadline cycle and the new-match sweep.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/scholarmatch/scholarmatch/internal/cycle"
)

// Default cron specs matching the reference intervals: hourly deadline
// checks, daily new-opportunity checks.
const (
	DefaultDeadlineSpec = "@every 1h"
	DefaultSweepSpec    = "@every 24h"
)

// Scheduler wraps robfig/cron and manages the two evaluation loops.
type Scheduler struct {
	cron         *cron.Cron
	runner       *cycle.Runner
	logger       *zap.Logger
	deadlineSpec string
	sweepSpec    string
}

// New creates a Scheduler with the given cron specs. Empty specs fall
// back to the reference intervals.
func New(runner *cycle.Runner, logger *zap.Logger, deadlineSpec, sweepSpec string) *Scheduler {
	if deadlineSpec == "" {
		deadlineSpec = DefaultDeadlineSpec
	}
	if sweepSpec == "" {
		sweepSpec = DefaultSweepSpec
	}
	return &Scheduler{
		cron:         cron.New(),
		runner:       runner,
		logger:       logger,
		deadlineSpec: deadlineSpec,
		sweepSpec:    sweepSpec,
	}
}

// Start registers both jobs and starts the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.deadlineSpec, func() {
		s.runDeadline(ctx)
	}); err != nil {
		return fmt.Errorf("registering deadline cycle: %w", err)
	}

	if _, err := s.cron.AddFunc(s.sweepSpec, func() {
		s.runSweep(ctx)
	}); err != nil {
		return fmt.Errorf("registering new-match sweep: %w", err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started",
		zap.String("deadline_spec", s.deadlineSpec),
		zap.String("sweep_spec", s.sweepSpec),
	)

	return nil
}

// Stop shuts the scheduler down, waiting for a running job to finish.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runDeadline(ctx context.Context) {
	outcomes, err := s.runner.RunDeadlineCycle(ctx, time.Now().UTC())
	if err != nil {
		s.logger.Error("deadline cycle failed", zap.Error(err))
		return
	}
	s.logger.Info("deadline cycle dispatched", zap.Int("outcomes", len(outcomes)))
}

func (s *Scheduler) runSweep(ctx context.Context) {
	outcomes, err := s.runner.RunNewMatchSweep(ctx, time.Now().UTC())
	if err != nil {
		s.logger.Error("new-match sweep failed", zap.Error(err))
		return
	}
	s.logger.Info("new-match sweep dispatched", zap.Int("outcomes", len(outcomes)))
}
