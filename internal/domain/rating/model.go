package rating

import (
	"context"
	"time"
)

// PlayerRating is a cached projection of a player's best records.
type PlayerRating struct {
	PlayerID  int64
	Nub       float64
	Pro       float64
	UpdatedAt time.Time
}

type Repository interface {
	Get(ctx context.Context, playerID int64) (PlayerRating, bool, error)
	Upsert(ctx context.Context, r PlayerRating) error
}
