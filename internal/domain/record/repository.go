package record

import (
	"context"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/filter"
)

type Repository interface {
	Insert(ctx context.Context, in NewRecord) (Record, error)
	GetByID(ctx context.Context, id int64) (Record, bool, error)
	// GetByIDForUpdate loads the record and holds it until the enclosing transaction ends.
	GetByIDForUpdate(ctx context.Context, id int64) (Record, bool, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	// BestNormal returns the fastest normal record of a player that qualifies for the variant.
	BestNormal(ctx context.Context, filterID, playerID int64, variant filter.Variant) (Record, bool, error)
	ListByPlayer(ctx context.Context, playerID int64) ([]Record, error)
}
