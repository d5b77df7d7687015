package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubCreditSource struct {
	ids []uuid.UUID
	err error
}

func (s *stubCreditSource) FindActiveIDs(_ context.Context) ([]uuid.UUID, error) {
	return s.ids, s.err
}

type stubRefresher struct {
	mu        sync.Mutex
	refreshed []uuid.UUID
	failOn    map[uuid.UUID]error
}

func (s *stubRefresher) RefreshAccrual(_ context.Context, creditID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshed = append(s.refreshed, creditID)
	if err, ok := s.failOn[creditID]; ok {
		return err
	}
	return nil
}

func TestAccrualSweep_RunOnce_RefreshesEveryActiveCredit(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	source := &stubCreditSource{ids: ids}
	refresher := &stubRefresher{}
	sweep := NewAccrualSweep(DefaultAccrualSweepConfig(), source, refresher, zap.NewNop())

	sweep.RunOnce(context.Background())

	assert.Equal(t, ids, refresher.refreshed)
}

func TestAccrualSweep_RunOnce_ContinuesPastFailingCredit(t *testing.T) {
	bad := uuid.New()
	ids := []uuid.UUID{uuid.New(), bad, uuid.New()}
	source := &stubCreditSource{ids: ids}
	refresher := &stubRefresher{failOn: map[uuid.UUID]error{bad: errors.New("row gone")}}
	sweep := NewAccrualSweep(DefaultAccrualSweepConfig(), source, refresher, zap.NewNop())

	sweep.RunOnce(context.Background())

	assert.Len(t, refresher.refreshed, 3)
}

func TestAccrualSweep_RunOnce_SourceFailureSkipsRun(t *testing.T) {
	source := &stubCreditSource{err: errors.New("db down")}
	refresher := &stubRefresher{}
	sweep := NewAccrualSweep(DefaultAccrualSweepConfig(), source, refresher, zap.NewNop())

	sweep.RunOnce(context.Background())

	assert.Empty(t, refresher.refreshed)
}

func TestAccrualSweep_StartStop(t *testing.T) {
	cfg := DefaultAccrualSweepConfig()
	cfg.CheckInterval = 10 * time.Millisecond
	sweep := NewAccrualSweep(cfg, &stubCreditSource{}, &stubRefresher{}, zap.NewNop())

	require.NoError(t, sweep.Start(context.Background()))
	require.NoError(t, sweep.Start(context.Background())) // idempotent

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, sweep.Stop(stopCtx))
	require.NoError(t, sweep.Stop(stopCtx)) // idempotent
}

func TestAccrualSweep_RunOnce_StopsOnCancelledContext(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	source := &stubCreditSource{ids: ids}
	refresher := &stubRefresher{}
	sweep := NewAccrualSweep(DefaultAccrualSweepConfig(), source, refresher, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sweep.RunOnce(ctx)

	assert.Empty(t, refresher.refreshed)
}
