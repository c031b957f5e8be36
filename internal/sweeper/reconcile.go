package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/evrlink/evrlink-mirror/internal/adapter"
	"github.com/evrlink/evrlink-mirror/internal/logger"
	"github.com/evrlink/evrlink-mirror/internal/metrics"
	"github.com/evrlink/evrlink-mirror/internal/reconciler"
	"github.com/evrlink/evrlink-mirror/internal/store"
	"github.com/evrlink/evrlink-mirror/internal/store/schema"
)

const (
	DEFAULT_SWEEP_INTERVAL = 30 * time.Second

	// DEFAULT_GRACE_PERIOD must exceed reconciler.DefaultConfirmationTimeout
	DEFAULT_GRACE_PERIOD = 5 * time.Minute
)

// ReconcileSweeperConfig holds configuration for the reconcile sweeper
type ReconcileSweeperConfig struct {
	Interval       time.Duration // Time to sleep between sweep cycles
	GracePeriod    time.Duration // Only pick up markers submitted before now - GracePeriod
	BatchSize      int           // Markers per cycle
	WorkerPoolSize int           // Concurrent workers
	// RetryMaxElapsed bounds the retries of a failing mirror write within one cycle
	RetryMaxElapsed time.Duration
	// RetryInitialInterval is the first backoff delay
	RetryInitialInterval time.Duration
}

// CycleResult summarizes one sweep cycle
type CycleResult struct {
	Processed  int                      `json:"processed"`
	Resolved   int                      `json:"resolved"`
	Unresolved int                      `json:"unresolved"`
	CatchUp    *reconciler.CatchUpResult `json:"catch_up,omitempty"`
}

// ReconcileSweeper drives pending operations to a terminal state and heals mirror gaps
type ReconcileSweeper struct {
	config    ReconcileSweeperConfig
	store     store.Store
	service   reconciler.Service
	clock     adapter.Clock
	metrics   *metrics.Metrics
	running   atomic.Bool
	stopOnce  sync.Once
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// NewReconcileSweeper creates a new reconcile sweeper
func NewReconcileSweeper(
	config ReconcileSweeperConfig,
	st store.Store,
	service reconciler.Service,
	clock adapter.Clock,
	m *metrics.Metrics,
) *ReconcileSweeper {
	if config.Interval <= 0 {
		config.Interval = DEFAULT_SWEEP_INTERVAL
	}
	if config.GracePeriod < 0 {
		config.GracePeriod = DEFAULT_GRACE_PERIOD
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	if config.WorkerPoolSize <= 0 {
		config.WorkerPoolSize = 4
	}
	if config.RetryMaxElapsed <= 0 {
		config.RetryMaxElapsed = time.Minute
	}
	if config.RetryInitialInterval <= 0 {
		config.RetryInitialInterval = time.Second
	}
	if m == nil {
		m = metrics.NewNop()
	}

	return &ReconcileSweeper{
		config:    config,
		store:     st,
		service:   service,
		clock:     clock,
		metrics:   m,
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Name returns the sweeper's name
func (s *ReconcileSweeper) Name() string {
	return "reconcile-sweeper"
}

// Start runs sweep cycles until the context is canceled or Stop is called
func (s *ReconcileSweeper) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("sweeper already running")
	}
	defer func() {
		s.running.Store(false)
		close(s.stoppedCh)
	}()

	logger.InfoCtx(ctx, "Starting reconcile sweeper",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("grace_period", s.config.GracePeriod),
		zap.Int("batch_size", s.config.BatchSize),
		zap.Int("worker_pool_size", s.config.WorkerPoolSize),
	)

	for {
		if _, err := s.RunCycle(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.ErrorCtx(ctx, err)
		}

		if !s.sleep(ctx, s.config.Interval) {
			logger.InfoCtx(ctx, "Reconcile sweeper stopping")
			return nil
		}
	}
}

// Stop gracefully stops the sweeper with timeout support
func (s *ReconcileSweeper) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	if !s.running.Load() {
		return nil
	}

	logger.InfoCtx(ctx, "Stopping reconcile sweeper")

	select {
	case <-s.stoppedCh:
		logger.InfoCtx(ctx, "Reconcile sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Reconcile sweeper stop interrupted by context timeout")
		return ctx.Err()
	}
}

// RunCycle runs a single sweep: catch-up scan, then every unresolved marker past the grace period
func (s *ReconcileSweeper) RunCycle(ctx context.Context) (*CycleResult, error) {
	startTime := s.clock.Now()
	result := &CycleResult{}

	catchUp, err := s.catchUp(ctx)
	if err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("catch-up scan failed: %w", err))
	}
	result.CatchUp = catchUp

	cutoff := startTime.Add(-s.config.GracePeriod)
	ops, _, err := s.store.ListPendingOperations(ctx, store.PendingOperationFilter{
		Statuses:        schema.UnresolvedOperationStatuses,
		SubmittedBefore: &cutoff,
		Limit:           s.config.BatchSize,
	})
	if err != nil {
		return result, fmt.Errorf("failed to list pending operations: %w", err)
	}

	if len(ops) > 0 {
		logger.InfoCtx(ctx, "Found pending operations to resolve", zap.Int("count", len(ops)))

		var resolved, unresolved atomic.Int32
		pool := pond.NewPool(s.config.WorkerPoolSize, pond.WithContext(ctx))
		for _, op := range ops {
			pool.Submit(func() {
				if s.resolve(ctx, op) {
					resolved.Add(1)
				} else {
					unresolved.Add(1)
				}
			})
		}
		pool.StopAndWait()

		result.Processed = len(ops)
		result.Resolved = int(resolved.Load())
		result.Unresolved = int(unresolved.Load())
	}

	s.updateGauges(ctx)
	s.metrics.SweepCompleted()

	logger.InfoCtx(ctx, "Sweep cycle completed",
		zap.Duration("duration", s.clock.Since(startTime)),
		zap.Int("processed", result.Processed),
		zap.Int("resolved", result.Resolved),
		zap.Int("unresolved", result.Unresolved),
	)

	return result, ctx.Err()
}

// resolve drives one marker. Mirror writes that keep failing are retried with exponential backoff;
// a transaction that is still unmined is left for the next cycle.
func (s *ReconcileSweeper) resolve(ctx context.Context, op *schema.PendingOperation) bool {
	var last *schema.PendingOperation
	operation := func() error {
		updated, err := s.service.ResolveOperation(ctx, op.TxHash)
		if updated != nil {
			last = updated
		}
		if err != nil {
			if updated != nil && updated.Status == schema.OperationStatusMirrorPending {
				return err
			}
			return backoff.Permanent(err)
		}
		if updated != nil && updated.Status == schema.OperationStatusMirrorPending {
			return fmt.Errorf("mirror write still pending for %s", op.TxHash)
		}
		return nil
	}

	var attempt int
	err := backoff.RetryNotify(operation, backoff.WithContext(s.newBackoff(), ctx), func(err error, d time.Duration) {
		attempt++
		logger.WarnCtx(ctx, "Mirror write failed, retrying",
			zap.String("tx_hash", op.TxHash),
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.Duration("next_retry_in", d),
		)
	})
	if err != nil {
		logger.WarnCtx(ctx, "Pending operation left for next cycle",
			zap.String("tx_hash", op.TxHash),
			zap.String("status", string(op.Status)),
			zap.Error(err),
		)
		return false
	}

	return last != nil && last.Status.Resolved()
}

func (s *ReconcileSweeper) catchUp(ctx context.Context) (*reconciler.CatchUpResult, error) {
	var result *reconciler.CatchUpResult
	operation := func() error {
		r, err := s.service.CatchUp(ctx)
		if err != nil {
			return err
		}
		result = r
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(s.newBackoff(), ctx)); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *ReconcileSweeper) newBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.config.RetryInitialInterval
	b.MaxInterval = s.config.RetryMaxElapsed / 4
	b.MaxElapsedTime = s.config.RetryMaxElapsed
	b.Multiplier = 2.0
	b.RandomizationFactor = 0.5
	return b
}

func (s *ReconcileSweeper) updateGauges(ctx context.Context) {
	counts, err := s.store.CountPendingOperationsByStatus(ctx)
	if err != nil {
		logger.ErrorCtx(ctx, err)
		return
	}
	for _, status := range schema.UnresolvedOperationStatuses {
		s.metrics.SetPendingOperations(string(status), counts[status])
	}
}

// sleep sleeps for the given duration but can be interrupted.
// Returns true if sleep completed normally.
func (s *ReconcileSweeper) sleep(ctx context.Context, duration time.Duration) bool {
	select {
	case <-s.clock.After(duration):
		return true
	case <-ctx.Done():
		return false
	case <-s.stopChan:
		return false
	}
}

var _ Sweeper = (*ReconcileSweeper)(nil)
