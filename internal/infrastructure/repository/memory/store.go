package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/filter"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/leaderboard"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/points"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/rating"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/record"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/store"
)

type bestKey struct {
	filterID int64
	playerID int64
	variant  filter.Variant
}

type distKey struct {
	filterID int64
	variant  filter.Variant
}

type state struct {
	filters      map[int64]filter.Filter
	records      map[int64]record.Record
	nextRecordID int64
	best         map[bestKey]leaderboard.BestRecord
	dists        map[distKey]points.Distribution
	pending      map[distKey]int64
	ratings      map[int64]rating.PlayerRating
	quarantine   []leaderboard.Quarantined
}

func newState() *state {
	return &state{
		filters: make(map[int64]filter.Filter),
		records: make(map[int64]record.Record),
		best:    make(map[bestKey]leaderboard.BestRecord),
		dists:   make(map[distKey]points.Distribution),
		pending: make(map[distKey]int64),
		ratings: make(map[int64]rating.PlayerRating),
	}
}

func (s *state) clone() *state {
	return &state{
		filters:      maps.Clone(s.filters),
		records:      maps.Clone(s.records),
		nextRecordID: s.nextRecordID,
		best:         maps.Clone(s.best),
		dists:        maps.Clone(s.dists),
		pending:      maps.Clone(s.pending),
		ratings:      maps.Clone(s.ratings),
		quarantine:   slices.Clone(s.quarantine),
	}
}

// Store keeps everything in process memory. Transactions run one at a time on
// a copy of the state that replaces the live state only when fn succeeds.
type Store struct {
	mu  sync.RWMutex
	cur *state
	now func() time.Time
}

var _ store.Store = (*Store)(nil)

func NewStore(filters ...filter.Filter) *Store {
	st := newState()
	for _, f := range filters {
		st.filters[f.ID] = f
	}
	return &Store{cur: st, now: time.Now}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx store.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.cur.clone()
	if err := fn(ctx, scope{store: s, tx: work}); err != nil {
		return err
	}
	s.cur = work
	return nil
}

func (s *Store) Filters() filter.Repository          { return scope{store: s}.Filters() }
func (s *Store) Records() record.Repository          { return scope{store: s}.Records() }
func (s *Store) BestRecords() leaderboard.Repository { return scope{store: s}.BestRecords() }
func (s *Store) Distributions() points.Repository    { return scope{store: s}.Distributions() }
func (s *Store) Ratings() rating.Repository          { return scope{store: s}.Ratings() }

// Quarantined lists rows pulled out of ranking, oldest first.
func (s *Store) Quarantined() []leaderboard.Quarantined {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.cur.quarantine)
}

// scope binds repositories to either a transaction's working copy or, when tx
// is nil, the live state under the store lock.
type scope struct {
	store *Store
	tx    *state
}

func (c scope) Filters() filter.Repository          { return &FilterRepository{scope: c} }
func (c scope) Records() record.Repository          { return &RecordRepository{scope: c} }
func (c scope) BestRecords() leaderboard.Repository { return &BestRecordRepository{scope: c} }
func (c scope) Distributions() points.Repository    { return &DistributionRepository{scope: c} }
func (c scope) Ratings() rating.Repository          { return &RatingRepository{scope: c} }

func (c scope) read(fn func(st *state) error) error {
	if c.tx != nil {
		return fn(c.tx)
	}
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	return fn(c.store.cur)
}

func (c scope) write(fn func(st *state) error) error {
	if c.tx != nil {
		return fn(c.tx)
	}
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	return fn(c.store.cur)
}

func (c scope) now() time.Time {
	return c.store.now().UTC()
}
