package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/recalc"
	"github.com/riskibarqy/kz-leaderboard/internal/platform/logging"
)

const (
	DefaultRecalcWorkers   = 4
	DefaultRecalcIdleDelay = 5 * time.Second
)

// RecalcProcessor handles one popped item of each kind.
type RecalcProcessor interface {
	RefitFilter(ctx context.Context, filterID int64) error
	RefreshPlayer(ctx context.Context, playerID int64) error
}

type RecalcSchedulerConfig struct {
	Workers   int
	IdleDelay time.Duration
}

// RecalcScheduler drains the filter and player queues in priority order on a
// shared worker pool.
type RecalcScheduler struct {
	filters recalc.Queue
	players recalc.Queue
	cfg     RecalcSchedulerConfig
	logger  *logging.Logger

	filterWake chan struct{}
	playerWake chan struct{}
}

func NewRecalcScheduler(cfg RecalcSchedulerConfig, filters, players recalc.Queue, logger *logging.Logger) *RecalcScheduler {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultRecalcWorkers
	}
	if cfg.IdleDelay <= 0 {
		cfg.IdleDelay = DefaultRecalcIdleDelay
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RecalcScheduler{
		filters:    filters,
		players:    players,
		cfg:        cfg,
		logger:     logger.With("component", "recalc"),
		filterWake: make(chan struct{}, 1),
		playerWake: make(chan struct{}, 1),
	}
}

func (s *RecalcScheduler) EnqueueFilter(ctx context.Context, filterID, priority int64) error {
	if err := s.filters.Push(ctx, filterID, priority); err != nil {
		return fmt.Errorf("push filter %d: %w", filterID, err)
	}
	signal(s.filterWake)
	return nil
}

func (s *RecalcScheduler) EnqueuePlayer(ctx context.Context, playerID, priority int64) error {
	if err := s.players.Push(ctx, playerID, priority); err != nil {
		return fmt.Errorf("push player %d: %w", playerID, err)
	}
	signal(s.playerWake)
	return nil
}

// Run blocks until ctx is done. Items already handed to a worker finish
// before Run returns.
func (s *RecalcScheduler) Run(ctx context.Context, p RecalcProcessor) error {
	pool, err := ants.NewPool(s.cfg.Workers)
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}

	var inflight conc.WaitGroup
	var loops conc.WaitGroup
	loops.Go(func() {
		s.drainLoop(ctx, pool, &inflight, recalc.KindFilter, s.filters, s.filterWake, p.RefitFilter)
	})
	loops.Go(func() {
		s.drainLoop(ctx, pool, &inflight, recalc.KindPlayer, s.players, s.playerWake, p.RefreshPlayer)
	})
	loops.Wait()
	inflight.Wait()
	pool.Release()

	s.logger.Info("recalc scheduler stopped")
	return nil
}

func (s *RecalcScheduler) drainLoop(
	ctx context.Context,
	pool *ants.Pool,
	inflight *conc.WaitGroup,
	kind recalc.Kind,
	queue recalc.Queue,
	wake <-chan struct{},
	handle func(context.Context, int64) error,
) {
	idle := time.NewTimer(s.cfg.IdleDelay)
	defer idle.Stop()

	for {
		if ctx.Err() != nil {
			return
		}

		item, ok, err := queue.Pop(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "pop recalculation item failed", "kind", kind, "error", err)
		}
		if ok {
			s.dispatch(ctx, pool, inflight, kind, item, handle)
			continue
		}

		if !idle.Stop() {
			select {
			case <-idle.C:
			default:
			}
		}
		idle.Reset(s.cfg.IdleDelay)
		select {
		case <-ctx.Done():
			return
		case <-wake:
		case <-idle.C:
		}
	}
}

// dispatch blocks while the pool is saturated.
func (s *RecalcScheduler) dispatch(
	ctx context.Context,
	pool *ants.Pool,
	inflight *conc.WaitGroup,
	kind recalc.Kind,
	item recalc.Item,
	handle func(context.Context, int64) error,
) {
	done := make(chan struct{})
	task := func() {
		defer close(done)
		s.process(ctx, kind, item, handle)
	}
	if err := pool.Submit(task); err != nil {
		s.logger.WarnContext(ctx, "submit recalculation to worker pool failed, running inline",
			"kind", kind, "key", item.Key, "error", err)
		task()
		return
	}
	inflight.Go(func() { <-done })
}

// process runs an item to completion even if the scheduler is stopping.
func (s *RecalcScheduler) process(ctx context.Context, kind recalc.Kind, item recalc.Item, handle func(context.Context, int64) error) {
	ctx = context.WithoutCancel(ctx)
	start := time.Now()
	if err := handle(ctx, item.Key); err != nil {
		s.logger.ErrorContext(ctx, "recalculation failed",
			"kind", kind,
			"key", item.Key,
			"priority", item.Priority,
			"error", err,
		)
		return
	}
	s.logger.DebugContext(ctx, "recalculation done",
		"kind", kind,
		"key", item.Key,
		"priority", item.Priority,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// DrainOnce processes queued items inline until both queues are empty. Work
// enqueued while draining is drained too.
func (s *RecalcScheduler) DrainOnce(ctx context.Context, p RecalcProcessor) error {
	for {
		progressed := false

		item, ok, err := s.filters.Pop(ctx)
		if err != nil {
			return fmt.Errorf("pop filter: %w", err)
		}
		if ok {
			progressed = true
			s.process(ctx, recalc.KindFilter, item, p.RefitFilter)
		}

		item, ok, err = s.players.Pop(ctx)
		if err != nil {
			return fmt.Errorf("pop player: %w", err)
		}
		if ok {
			progressed = true
			s.process(ctx, recalc.KindPlayer, item, p.RefreshPlayer)
		}

		if !progressed {
			return nil
		}
	}
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
