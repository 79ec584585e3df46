package postgres

import (
	"context"
	"database/sql"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/filter"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/leaderboard"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/points"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/rating"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/record"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/store"
	"github.com/riskibarqy/kz-leaderboard/internal/platform/logging"
	"github.com/riskibarqy/kz-leaderboard/internal/platform/resilience"
)

// Store runs repositories against postgres. Transactions are READ COMMITTED;
// best-record maintenance serialises per (filter, player) with an advisory
// lock, and serialization failures or deadlocks retry the whole transaction.
type Store struct {
	db     *sqlx.DB
	retry  resilience.RetryConfig
	logger *logging.Logger
}

var _ store.Store = (*Store)(nil)

func NewStore(db *sqlx.DB, retry resilience.RetryConfig, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{db: db, retry: retry.Normalize(), logger: logger}
}

// WithinTx may call fn more than once; fn must not keep side effects from a
// failed attempt.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx store.Repositories) error) error {
	attempt := 0
	return resilience.Retry(ctx, s.retry, IsTransient, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			s.logger.WarnContext(ctx, "retrying transaction after contention", "attempt", attempt)
		}
		return s.runTx(ctx, fn)
	})
}

func (s *Store) runTx(ctx context.Context, fn func(ctx context.Context, tx store.Repositories) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return crerr.Wrap(err, "begin tx")
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !crerr.Is(rbErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "rollback failed", "error", rbErr)
			}
		}
	}()

	if err = fn(ctx, scope{q: tx}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return crerr.Wrap(err, "commit tx")
	}
	return nil
}

func (s *Store) Filters() filter.Repository          { return scope{q: s.db}.Filters() }
func (s *Store) Records() record.Repository          { return scope{q: s.db}.Records() }
func (s *Store) BestRecords() leaderboard.Repository { return scope{q: s.db}.BestRecords() }
func (s *Store) Distributions() points.Repository    { return scope{q: s.db}.Distributions() }
func (s *Store) Ratings() rating.Repository          { return scope{q: s.db}.Ratings() }

type scope struct {
	q sqlx.ExtContext
}

func (c scope) Filters() filter.Repository          { return NewFilterRepository(c.q) }
func (c scope) Records() record.Repository          { return NewRecordRepository(c.q) }
func (c scope) BestRecords() leaderboard.Repository { return NewBestRecordRepository(c.q) }
func (c scope) Distributions() points.Repository    { return NewDistributionRepository(c.q) }
func (c scope) Ratings() rating.Repository          { return NewRatingRepository(c.q) }
