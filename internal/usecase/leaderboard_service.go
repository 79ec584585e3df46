package usecase

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/filter"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/leaderboard"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/rating"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/recalc"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/store"
)

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 1000
)

type LeaderboardPage struct {
	FilterID int64
	Variant  filter.Variant
	Total    int
	Offset   int
	Entries  []leaderboard.Entry
}

type PlayerProfile struct {
	PlayerID int64
	Rating   rating.PlayerRating
	// Rated is false until the scheduler has refreshed the player once.
	Rated   bool
	Records []leaderboard.Entry
	// Top is every best record in rating order with its decayed contribution.
	Top []rating.WeightedRecord
}

type LeaderboardService struct {
	store    store.Store
	enqueuer RecalcEnqueuer
}

func NewLeaderboardService(st store.Store, enqueuer RecalcEnqueuer) *LeaderboardService {
	return &LeaderboardService{store: st, enqueuer: enqueuer}
}

func (s *LeaderboardService) List(ctx context.Context, filterID int64, variant filter.Variant, offset, limit int) (LeaderboardPage, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.List",
		attribute.Int64("filter.id", filterID), attribute.String("variant", string(variant)))
	defer span.End()

	if filterID <= 0 {
		return LeaderboardPage{}, fmt.Errorf("%w: filter id must be greater than zero", ErrInvalidInput)
	}
	if !variant.Valid() {
		return LeaderboardPage{}, fmt.Errorf("%w: unknown variant %q", ErrInvalidInput, variant)
	}
	if offset < 0 {
		return LeaderboardPage{}, fmt.Errorf("%w: offset must not be negative", ErrInvalidInput)
	}
	switch {
	case limit <= 0:
		limit = DefaultPageLimit
	case limit > MaxPageLimit:
		limit = MaxPageLimit
	}

	if _, exists, err := s.store.Filters().GetByID(ctx, filterID); err != nil {
		return LeaderboardPage{}, fmt.Errorf("get filter: %w", err)
	} else if !exists {
		return LeaderboardPage{}, fmt.Errorf("%w: filter=%d", ErrNotFound, filterID)
	}

	best := s.store.BestRecords()
	entries, err := best.ListRanked(ctx, filterID, variant, offset, limit)
	if err != nil {
		return LeaderboardPage{}, fmt.Errorf("list leaderboard: %w", err)
	}
	total, err := best.Size(ctx, filterID, variant)
	if err != nil {
		return LeaderboardPage{}, fmt.Errorf("count leaderboard: %w", err)
	}

	return LeaderboardPage{FilterID: filterID, Variant: variant, Total: total, Offset: offset, Entries: entries}, nil
}

func (s *LeaderboardService) Profile(ctx context.Context, playerID int64) (PlayerProfile, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.Profile", attribute.Int64("player.id", playerID))
	defer span.End()

	if playerID <= 0 {
		return PlayerProfile{}, fmt.Errorf("%w: player id must be greater than zero", ErrInvalidInput)
	}

	pr, rated, err := s.store.Ratings().Get(ctx, playerID)
	if err != nil {
		return PlayerProfile{}, fmt.Errorf("get rating: %w", err)
	}
	if !rated {
		pr = rating.PlayerRating{PlayerID: playerID}
	}

	best := s.store.BestRecords()
	rows, err := best.ListByPlayer(ctx, playerID)
	if err != nil {
		return PlayerProfile{}, fmt.Errorf("list best records: %w", err)
	}

	entries := make([]leaderboard.Entry, 0, len(rows))
	for _, row := range rows {
		rank, err := best.RankOf(ctx, row.FilterID, row.Variant, playerID, row.Time, row.SubmittedAt, row.RecordID)
		if err != nil {
			return PlayerProfile{}, fmt.Errorf("rank best record: %w", err)
		}
		entries = append(entries, leaderboard.Entry{BestRecord: row, Rank: rank})
	}

	return PlayerProfile{
		PlayerID: playerID,
		Rating:   pr,
		Rated:    rated,
		Records:  entries,
		Top:      rating.Weighted(rows),
	}, nil
}

// RequestRecalculation lets operators push work onto the scheduler directly.
func (s *LeaderboardService) RequestRecalculation(ctx context.Context, kind recalc.Kind, id, priority int64) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: unknown recalculation kind %q", ErrInvalidInput, kind)
	}
	if id <= 0 {
		return fmt.Errorf("%w: id must be greater than zero", ErrInvalidInput)
	}
	if priority < 0 {
		return fmt.Errorf("%w: priority must not be negative", ErrInvalidInput)
	}

	var err error
	switch kind {
	case recalc.KindFilter:
		if _, exists, getErr := s.store.Filters().GetByID(ctx, id); getErr != nil {
			return fmt.Errorf("get filter: %w", getErr)
		} else if !exists {
			return fmt.Errorf("%w: filter=%d", ErrNotFound, id)
		}
		err = s.enqueuer.EnqueueFilter(ctx, id, priority)
	case recalc.KindPlayer:
		err = s.enqueuer.EnqueuePlayer(ctx, id, priority)
	}
	if err != nil {
		return fmt.Errorf("%w: enqueue %s %d: %v", ErrDependencyUnavailable, kind, id, err)
	}
	return nil
}
