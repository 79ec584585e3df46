package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/rating"
	qb "github.com/riskibarqy/kz-leaderboard/internal/platform/querybuilder"
)

type RatingRepository struct {
	db sqlx.ExtContext
}

func NewRatingRepository(db sqlx.ExtContext) *RatingRepository {
	return &RatingRepository{db: db}
}

func (r *RatingRepository) Get(ctx context.Context, playerID int64) (rating.PlayerRating, bool, error) {
	query, args, err := qb.Select("player_id", "nub", "pro", "updated_at").From("player_ratings").
		Where(qb.Eq("player_id", playerID)).
		ToSQL()
	if err != nil {
		return rating.PlayerRating{}, false, fmt.Errorf("build get rating query: %w", err)
	}

	var row ratingTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return rating.PlayerRating{}, false, nil
		}
		return rating.PlayerRating{}, false, fmt.Errorf("get rating player_id=%d: %w", playerID, err)
	}
	return row.toDomain(), true, nil
}

func (r *RatingRepository) Upsert(ctx context.Context, pr rating.PlayerRating) error {
	query, args, err := qb.InsertInto("player_ratings").
		Columns("player_id", "nub", "pro").
		Values(pr.PlayerID, pr.Nub, pr.Pro).
		Suffix("ON CONFLICT (player_id) DO UPDATE SET nub = EXCLUDED.nub, pro = EXCLUDED.pro, updated_at = NOW()").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert rating query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert rating player_id=%d: %w", pr.PlayerID, err)
	}
	return nil
}
