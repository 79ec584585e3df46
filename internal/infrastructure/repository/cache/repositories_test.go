package cache

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/filter"
)

type countingFilterRepo struct {
	items map[int64]filter.Filter
	gets  int
	lists int
}

func (r *countingFilterRepo) GetByID(_ context.Context, id int64) (filter.Filter, bool, error) {
	r.gets++
	f, ok := r.items[id]
	return f, ok, nil
}

func (r *countingFilterRepo) List(context.Context) ([]filter.Filter, error) {
	r.lists++
	out := make([]filter.Filter, 0, len(r.items))
	for _, f := range r.items {
		out = append(out, f)
	}
	return out, nil
}

func (r *countingFilterRepo) Upsert(_ context.Context, f filter.Filter) error {
	r.items[f.ID] = f
	return nil
}

func TestFilterRepository_CachesAndInvalidates(t *testing.T) {
	ctx := context.Background()
	next := &countingFilterRepo{items: map[int64]filter.Filter{1: {ID: 1, NubTier: filter.TierEasy}}}
	repo := NewFilterRepository(next, time.Minute)

	for i := 0; i < 3; i++ {
		f, ok, err := repo.GetByID(ctx, 1)
		if err != nil || !ok || f.NubTier != filter.TierEasy {
			t.Fatalf("unexpected filter %+v ok=%v err=%v", f, ok, err)
		}
	}
	if next.gets != 1 {
		t.Fatalf("expected one underlying read, got %d", next.gets)
	}

	if _, ok, _ := repo.GetByID(ctx, 404); ok {
		t.Fatalf("expected missing filter")
	}
	if _, ok, _ := repo.GetByID(ctx, 404); ok {
		t.Fatalf("expected cached miss")
	}
	if next.gets != 2 {
		t.Fatalf("expected misses to be cached, got %d reads", next.gets)
	}

	if _, err := repo.List(ctx); err != nil {
		t.Fatalf("list: %v", err)
	}
	if err := repo.Upsert(ctx, filter.Filter{ID: 1, NubTier: filter.TierHard}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	f, _, _ := repo.GetByID(ctx, 1)
	if f.NubTier != filter.TierHard {
		t.Fatalf("expected invalidated read to return new tier, got %v", f.NubTier)
	}
	if _, err := repo.List(ctx); err != nil {
		t.Fatalf("list: %v", err)
	}
	if next.lists != 2 {
		t.Fatalf("expected list to reload after upsert, got %d loads", next.lists)
	}
}
