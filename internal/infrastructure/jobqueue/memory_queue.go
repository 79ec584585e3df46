package jobqueue

import (
	"context"
	"sync"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/recalc"
	"github.com/riskibarqy/kz-leaderboard/internal/platform/priorityqueue"
)

// MemoryQueue is the in-process recalculation queue.
type MemoryQueue struct {
	mu sync.Mutex
	pq *priorityqueue.Indexed[int64]
}

var _ recalc.Queue = (*MemoryQueue)(nil)

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{pq: priorityqueue.New[int64]()}
}

func (q *MemoryQueue) Push(ctx context.Context, key, priority int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	q.pq.Push(key, priority)
	q.mu.Unlock()
	return nil
}

func (q *MemoryQueue) Pop(ctx context.Context) (recalc.Item, bool, error) {
	if err := ctx.Err(); err != nil {
		return recalc.Item{}, false, err
	}
	q.mu.Lock()
	key, priority, ok := q.pq.Pop()
	q.mu.Unlock()
	if !ok {
		return recalc.Item{}, false, nil
	}
	return recalc.Item{Key: key, Priority: priority}, true, nil
}

func (q *MemoryQueue) Len(context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pq.Len(), nil
}
