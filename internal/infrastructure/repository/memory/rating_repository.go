package memory

import (
	"context"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/rating"
)

type RatingRepository struct {
	scope
}

func (r *RatingRepository) Get(_ context.Context, playerID int64) (rating.PlayerRating, bool, error) {
	var (
		out rating.PlayerRating
		ok  bool
	)
	_ = r.read(func(st *state) error {
		out, ok = st.ratings[playerID]
		return nil
	})
	return out, ok, nil
}

func (r *RatingRepository) Upsert(_ context.Context, pr rating.PlayerRating) error {
	if pr.UpdatedAt.IsZero() {
		pr.UpdatedAt = r.now()
	}
	return r.write(func(st *state) error {
		st.ratings[pr.PlayerID] = pr
		return nil
	})
}
