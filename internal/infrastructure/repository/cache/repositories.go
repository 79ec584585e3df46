package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/filter"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/store"
	basecache "github.com/riskibarqy/kz-leaderboard/internal/platform/cache"
)

const filterListKey = "filter:list"

func filterKey(id int64) string {
	return "filter:id:" + strconv.FormatInt(id, 10)
}

type cachedFilterByID struct {
	value  filter.Filter
	exists bool
}

// FilterRepository caches filter reads. Filters change rarely and are read on
// every submission and every refit.
type FilterRepository struct {
	next  filter.Repository
	byID  *basecache.Store[cachedFilterByID]
	lists *basecache.Store[[]filter.Filter]
}

func NewFilterRepository(next filter.Repository, ttl time.Duration) *FilterRepository {
	return &FilterRepository{
		next:  next,
		byID:  basecache.NewStore[cachedFilterByID](ttl),
		lists: basecache.NewStore[[]filter.Filter](ttl),
	}
}

func (r *FilterRepository) GetByID(ctx context.Context, id int64) (filter.Filter, bool, error) {
	cached, err := r.byID.GetOrLoad(ctx, filterKey(id), func(ctx context.Context) (cachedFilterByID, error) {
		item, exists, err := r.next.GetByID(ctx, id)
		if err != nil {
			return cachedFilterByID{}, err
		}
		return cachedFilterByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return filter.Filter{}, false, err
	}
	return cached.value, cached.exists, nil
}

func (r *FilterRepository) List(ctx context.Context) ([]filter.Filter, error) {
	items, err := r.lists.GetOrLoad(ctx, filterListKey, func(ctx context.Context) ([]filter.Filter, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]filter.Filter(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]filter.Filter(nil), items...), nil
}

func (r *FilterRepository) Upsert(ctx context.Context, f filter.Filter) error {
	if err := r.next.Upsert(ctx, f); err != nil {
		return err
	}
	r.byID.Delete(ctx, filterKey(f.ID))
	r.lists.Delete(ctx, filterListKey)
	return nil
}

// Store serves filters outside transactions from the cache. Transactions see
// the underlying store directly.
type Store struct {
	store.Store
	filters *FilterRepository
}

func NewStore(next store.Store, ttl time.Duration) *Store {
	return &Store{Store: next, filters: NewFilterRepository(next.Filters(), ttl)}
}

func (s *Store) Filters() filter.Repository {
	return s.filters
}
