package points

import (
	"context"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/filter"
)

type Repository interface {
	Get(ctx context.Context, filterID int64, variant filter.Variant) (Distribution, bool, error)
	Upsert(ctx context.Context, d Distribution) error
	// IncrementPending bumps the number of best-time changes since the last fit and returns the new count.
	IncrementPending(ctx context.Context, filterID int64, variant filter.Variant) (int64, error)
	ResetPending(ctx context.Context, filterID int64, variant filter.Variant) error
}
