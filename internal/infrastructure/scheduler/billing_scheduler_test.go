package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/taxfolio/backend/internal/application/billing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSweeper struct {
	calls atomic.Int64
}

func (f *fakeSweeper) SweepOverdue(_ context.Context, _ time.Time) (*billing.SweepResult, error) {
	f.calls.Add(1)
	return &billing.SweepResult{TotalFees: decimal.Zero}, nil
}

type fakeGenerator struct {
	calls atomic.Int64
}

func (f *fakeGenerator) GenerateDue(_ context.Context, _ time.Time) (*billing.GenerationResult, error) {
	f.calls.Add(1)
	return &billing.GenerationResult{}, nil
}

func newTestScheduler(cfg BillingSchedulerConfig) (*BillingScheduler, *fakeSweeper, *fakeGenerator) {
	sweeper := &fakeSweeper{}
	generator := &fakeGenerator{}
	s := NewBillingScheduler(sweeper, generator, zap.NewNop(), cfg)
	return s, sweeper, generator
}

func TestBillingScheduler_StartStop(t *testing.T) {
	s, _, _ := newTestScheduler(DefaultBillingSchedulerConfig())

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	// starting twice is a no-op
	require.NoError(t, s.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.False(t, s.IsRunning())
}

func TestBillingScheduler_Disabled(t *testing.T) {
	cfg := DefaultBillingSchedulerConfig()
	cfg.Enabled = false
	s, _, _ := newTestScheduler(cfg)

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestBillingScheduler_IntervalRuns(t *testing.T) {
	cfg := BillingSchedulerConfig{
		Enabled:           true,
		OverdueInterval:   10 * time.Millisecond,
		RecurringInterval: 10 * time.Millisecond,
		JobTimeout:        time.Second,
	}
	s, sweeper, generator := newTestScheduler(cfg)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	assert.Eventually(t, func() bool {
		return sweeper.calls.Load() >= 2 && generator.calls.Load() >= 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestBillingScheduler_Trigger(t *testing.T) {
	s, sweeper, generator := newTestScheduler(DefaultBillingSchedulerConfig())

	t.Run("rejects trigger while stopped", func(t *testing.T) {
		assert.ErrorIs(t, s.TriggerOverdueSweep(context.Background()), ErrSchedulerNotRunning)
	})

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	require.NoError(t, s.TriggerOverdueSweep(context.Background()))
	require.NoError(t, s.TriggerRecurringGeneration(context.Background()))

	assert.Eventually(t, func() bool {
		return sweeper.calls.Load() >= 1 && generator.calls.Load() >= 1
	}, 2*time.Second, 10*time.Millisecond)
}
