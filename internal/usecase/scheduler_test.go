package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/kz-leaderboard/internal/infrastructure/jobqueue"
	recalcmock "github.com/riskibarqy/kz-leaderboard/internal/mocks/domain/recalc"
	"github.com/riskibarqy/kz-leaderboard/internal/platform/logging"
)

type recordingProcessor struct {
	mu      sync.Mutex
	filters []int64
	players []int64
	done    chan struct{}
	want    int
}

func (p *recordingProcessor) RefitFilter(_ context.Context, id int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filters = append(p.filters, id)
	p.tick()
	return nil
}

func (p *recordingProcessor) RefreshPlayer(_ context.Context, id int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.players = append(p.players, id)
	p.tick()
	if id < 0 {
		return errors.New("refresh failed")
	}
	return nil
}

func (p *recordingProcessor) tick() {
	if p.done != nil && len(p.filters)+len(p.players) == p.want {
		close(p.done)
	}
}

func TestRecalcScheduler_DrainOnceHonorsPriority(t *testing.T) {
	ctx := context.Background()
	s := NewRecalcScheduler(RecalcSchedulerConfig{}, jobqueue.NewMemoryQueue(), jobqueue.NewMemoryQueue(), logging.NewNop())

	require.NoError(t, s.EnqueueFilter(ctx, 1, 1))
	require.NoError(t, s.EnqueueFilter(ctx, 2, 5))
	require.NoError(t, s.EnqueueFilter(ctx, 3, RequestRefitPriority))
	require.NoError(t, s.EnqueueFilter(ctx, 1, 9))
	require.NoError(t, s.EnqueuePlayer(ctx, 10, 2))
	require.NoError(t, s.EnqueuePlayer(ctx, -1, 3))

	p := &recordingProcessor{}
	require.NoError(t, s.DrainOnce(ctx, p))

	require.Equal(t, []int64{3, 1, 2}, p.filters)
	require.Equal(t, []int64{-1, 10}, p.players)

	n, err := s.players.Len(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestRecalcScheduler_RunWakesOnEnqueue(t *testing.T) {
	s := NewRecalcScheduler(RecalcSchedulerConfig{Workers: 2, IdleDelay: time.Hour}, jobqueue.NewMemoryQueue(), jobqueue.NewMemoryQueue(), logging.NewNop())
	p := &recordingProcessor{done: make(chan struct{}), want: 2}

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan error, 1)
	go func() { stopped <- s.Run(ctx, p) }()

	require.NoError(t, s.EnqueueFilter(context.Background(), 4, 1))
	require.NoError(t, s.EnqueuePlayer(context.Background(), 8, 1))

	select {
	case <-p.done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not process enqueued items")
	}

	cancel()
	select {
	case err := <-stopped:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	require.Equal(t, []int64{4}, p.filters)
	require.Equal(t, []int64{8}, p.players)
}

func TestRecalcScheduler_EnqueueSurfacesQueueErrors(t *testing.T) {
	filters := recalcmock.NewQueue(t)
	filters.On("Push", mock.Anything, int64(1), int64(2)).Return(errors.New("redis down")).Once()

	s := NewRecalcScheduler(RecalcSchedulerConfig{}, filters, jobqueue.NewMemoryQueue(), logging.NewNop())
	err := s.EnqueueFilter(context.Background(), 1, 2)
	require.ErrorContains(t, err, "redis down")
}
