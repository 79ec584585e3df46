package usecase

import (
	"context"

	"github.com/riskibarqy/kz-leaderboard/internal/platform/logging"
)

// RecalcEnqueuer accepts follow-up work for the background scheduler.
type RecalcEnqueuer interface {
	EnqueueFilter(ctx context.Context, filterID, priority int64) error
	EnqueuePlayer(ctx context.Context, playerID, priority int64) error
}

// outcome collects the enqueues a transaction produced. It is flushed only
// after commit so workers never observe uncommitted rows.
type outcome struct {
	filters map[int64]int64
	players map[int64]int64
}

func newOutcome() *outcome {
	return &outcome{filters: make(map[int64]int64), players: make(map[int64]int64)}
}

func (o *outcome) filter(id, priority int64) {
	if cur, ok := o.filters[id]; !ok || priority > cur {
		o.filters[id] = priority
	}
}

func (o *outcome) player(id, priority int64) {
	if cur, ok := o.players[id]; !ok || priority > cur {
		o.players[id] = priority
	}
}

// flush pushes everything collected. Push failures are logged; the work is
// picked up again by the next event that touches the same key.
func (o *outcome) flush(ctx context.Context, enq RecalcEnqueuer, logger *logging.Logger) {
	if enq == nil {
		return
	}
	for id, priority := range o.filters {
		if err := enq.EnqueueFilter(ctx, id, priority); err != nil {
			logger.WarnContext(ctx, "enqueue filter refit failed", "filter_id", id, "priority", priority, "error", err)
		}
	}
	for id, priority := range o.players {
		if err := enq.EnqueuePlayer(ctx, id, priority); err != nil {
			logger.WarnContext(ctx, "enqueue player refresh failed", "player_id", id, "priority", priority, "error", err)
		}
	}
}
