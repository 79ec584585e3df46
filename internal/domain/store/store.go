package store

import (
	"context"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/filter"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/leaderboard"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/points"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/rating"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/record"
)

// Repositories groups every repository that shares a transaction scope.
type Repositories interface {
	Filters() filter.Repository
	Records() record.Repository
	BestRecords() leaderboard.Repository
	Distributions() points.Repository
	Ratings() rating.Repository
}

// Store is the persistent source of truth. Repositories used outside WithinTx
// run each call on its own.
type Store interface {
	Repositories
	// WithinTx runs fn in one transaction. fn must only use the repositories it is given.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Repositories) error) error
}
