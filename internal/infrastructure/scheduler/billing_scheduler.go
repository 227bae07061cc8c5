// Package scheduler runs the periodic billing jobs: the overdue sweep
// that marks invoices overdue and applies late fees, and the recurring
// generation pass that issues new invoices from recurring templates.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/taxfolio/backend/internal/application/billing"
	"go.uber.org/zap"
)

// OverdueSweeper runs the overdue sweep as of a given instant
type OverdueSweeper interface {
	SweepOverdue(ctx context.Context, asOf time.Time) (*billing.SweepResult, error)
}

// RecurringGenerator generates invoices from recurring templates due as
// of a given instant
type RecurringGenerator interface {
	GenerateDue(ctx context.Context, asOf time.Time) (*billing.GenerationResult, error)
}

// BillingSchedulerConfig holds configuration for the billing scheduler
type BillingSchedulerConfig struct {
	Enabled           bool
	OverdueInterval   time.Duration
	RecurringInterval time.Duration
	JobTimeout        time.Duration
}

// DefaultBillingSchedulerConfig returns default configuration
func DefaultBillingSchedulerConfig() BillingSchedulerConfig {
	return BillingSchedulerConfig{
		Enabled:           true,
		OverdueInterval:   time.Hour,
		RecurringInterval: time.Hour,
		JobTimeout:        5 * time.Minute,
	}
}

// BillingScheduler manages the periodic overdue sweep and recurring
// invoice generation
type BillingScheduler struct {
	sweeper   OverdueSweeper
	generator RecurringGenerator
	logger    *zap.Logger
	config    BillingSchedulerConfig
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewBillingScheduler creates a new billing scheduler
func NewBillingScheduler(
	sweeper OverdueSweeper,
	generator RecurringGenerator,
	logger *zap.Logger,
	config BillingSchedulerConfig,
) *BillingScheduler {
	return &BillingScheduler{
		sweeper:   sweeper,
		generator: generator,
		logger:    logger,
		config:    config,
	}
}

// Start starts the billing scheduler
func (s *BillingScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Billing scheduler is disabled")
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runInterval(ctx, s.config.OverdueInterval, "overdue sweep", s.executeOverdueSweep)

	s.wg.Add(1)
	go s.runInterval(ctx, s.config.RecurringInterval, "recurring generation", s.executeRecurringGeneration)

	s.logger.Info("Billing scheduler started",
		zap.Duration("overdue_interval", s.config.OverdueInterval),
		zap.Duration("recurring_interval", s.config.RecurringInterval),
	)

	return nil
}

// Stop gracefully stops the scheduler
func (s *BillingScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Billing scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Billing scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning returns whether the scheduler is running
func (s *BillingScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// TriggerOverdueSweep triggers an immediate overdue sweep run
func (s *BillingScheduler) TriggerOverdueSweep(ctx context.Context) error {
	return s.trigger(ctx, "overdue sweep", s.executeOverdueSweep)
}

// TriggerRecurringGeneration triggers an immediate recurring generation run
func (s *BillingScheduler) TriggerRecurringGeneration(ctx context.Context) error {
	return s.trigger(ctx, "recurring generation", s.executeRecurringGeneration)
}

func (s *BillingScheduler) trigger(ctx context.Context, name string, job func(context.Context)) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.wg.Add(1)
	s.mu.Unlock()

	s.logger.Info("Triggering immediate job", zap.String("job", name))

	go func() {
		defer s.wg.Done()
		job(ctx)
	}()

	return nil
}

// runInterval runs the job on a fixed ticker until the context is cancelled
func (s *BillingScheduler) runInterval(ctx context.Context, interval time.Duration, name string, job func(context.Context)) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Job loop started",
		zap.String("job", name),
		zap.Duration("interval", interval),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Job loop stopping", zap.String("job", name))
			return
		case <-ticker.C:
			job(ctx)
		}
	}
}

func (s *BillingScheduler) executeOverdueSweep(ctx context.Context) {
	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	startTime := time.Now()
	result, err := s.sweeper.SweepOverdue(jobCtx, startTime)
	duration := time.Since(startTime)

	if err != nil {
		s.logger.Error("Overdue sweep failed",
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("Overdue sweep completed",
		zap.Duration("duration", duration),
		zap.Int("invoices_examined", result.InvoicesExamined),
		zap.Int("marked_overdue", result.MarkedOverdue),
		zap.Int("fees_applied", result.FeesApplied),
		zap.String("total_fees", result.TotalFees.String()),
	)
}

func (s *BillingScheduler) executeRecurringGeneration(ctx context.Context) {
	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	startTime := time.Now()
	result, err := s.generator.GenerateDue(jobCtx, startTime)
	duration := time.Since(startTime)

	if err != nil {
		s.logger.Error("Recurring generation failed",
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("Recurring generation completed",
		zap.Duration("duration", duration),
		zap.Int("templates_due", result.TemplatesDue),
		zap.Int("generated", result.Generated),
	)
}
