package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreditSource lists the credits the sweep has to visit.
type CreditSource interface {
	FindActiveIDs(ctx context.Context) ([]uuid.UUID, error)
}

// AccrualRefresher synchronizes one credit's accrual with the calendar.
type AccrualRefresher interface {
	RefreshAccrual(ctx context.Context, creditID uuid.UUID) error
}

// AccrualSweepConfig holds configuration for the nightly accrual sweep
type AccrualSweepConfig struct {
	// Hour and Minute set the local time of day the sweep runs (24h format)
	Hour   int
	Minute int

	// CheckInterval is how often to check whether it is time to run
	CheckInterval time.Duration
}

// DefaultAccrualSweepConfig returns default accrual sweep configuration
func DefaultAccrualSweepConfig() AccrualSweepConfig {
	return AccrualSweepConfig{
		Hour:          2, // 2am, after the business day closes
		Minute:        0,
		CheckInterval: time.Minute,
	}
}

// AccrualSweep walks every collecting credit once a day and refreshes its
// mora and status. Accrual is already synchronized lazily on every read;
// the sweep keeps credits nobody looked at from drifting.
type AccrualSweep struct {
	config    AccrualSweepConfig
	source    CreditSource
	refresher AccrualRefresher
	logger    *zap.Logger

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastRunDate string
}

// NewAccrualSweep creates a new AccrualSweep
func NewAccrualSweep(
	config AccrualSweepConfig,
	source CreditSource,
	refresher AccrualRefresher,
	logger *zap.Logger,
) *AccrualSweep {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccrualSweep{
		config:    config,
		source:    source,
		refresher: refresher,
		logger:    logger,
	}
}

// Start starts the sweep loop
func (s *AccrualSweep) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Accrual sweep started",
		zap.Int("hour", s.config.Hour),
		zap.Int("minute", s.config.Minute),
		zap.Duration("check_interval", s.config.CheckInterval),
	)
	return nil
}

// Stop stops the sweep loop, waiting for an in-flight run to finish
func (s *AccrualSweep) Stop(ctx context.Context) error {
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
		s.logger.Info("Accrual sweep stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *AccrualSweep) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkAndRun(ctx)
		}
	}
}

// checkAndRun runs the sweep once per calendar day at the configured time
func (s *AccrualSweep) checkAndRun(ctx context.Context) {
	now := time.Now()
	currentDate := now.Format("2006-01-02")

	s.mu.Lock()
	alreadyRan := s.lastRunDate == currentDate
	s.mu.Unlock()
	if alreadyRan {
		return
	}

	if now.Hour() != s.config.Hour || now.Minute() != s.config.Minute {
		return
	}

	s.mu.Lock()
	s.lastRunDate = currentDate
	s.mu.Unlock()

	s.RunOnce(ctx)
}

// RunOnce sweeps every collecting credit immediately. A credit that fails to
// refresh is logged and skipped so one bad row never stalls the rest.
func (s *AccrualSweep) RunOnce(ctx context.Context) {
	ids, err := s.source.FindActiveIDs(ctx)
	if err != nil {
		s.logger.Error("Failed to list credits for accrual sweep", zap.Error(err))
		return
	}

	s.logger.Info("Running accrual sweep", zap.Int("credit_count", len(ids)))

	var failed int
	for _, id := range ids {
		if ctx.Err() != nil {
			return
		}
		if err := s.refresher.RefreshAccrual(ctx, id); err != nil {
			failed++
			s.logger.Error("Accrual refresh failed",
				zap.String("credit_id", id.String()),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("Accrual sweep finished",
		zap.Int("credit_count", len(ids)),
		zap.Int("failed", failed),
	)
}
