package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/filter"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/leaderboard"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/points"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/rating"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/record"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/store"
	"github.com/riskibarqy/kz-leaderboard/internal/platform/logging"
)

// RecalcService does the work popped off the recalculation queues.
type RecalcService struct {
	store      store.Store
	fitter     points.Fitter
	enqueuer   RecalcEnqueuer
	maintainer bestRecordMaintainer
	logger     *logging.Logger
	now        func() time.Time
}

func NewRecalcService(st store.Store, fitter points.Fitter, enqueuer RecalcEnqueuer, logger *logging.Logger) *RecalcService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RecalcService{
		store:      st,
		fitter:     fitter,
		enqueuer:   enqueuer,
		maintainer: newBestRecordMaintainer(DefaultRefitThreshold),
		logger:     logger,
		now:        time.Now,
	}
}

// RefitFilter refits both variants of a filter and reprices their rows. The
// nub board goes first because pro rows are floored by their nub equivalent.
func (s *RecalcService) RefitFilter(ctx context.Context, filterID int64) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecalcService.RefitFilter", attribute.Int64("filter.id", filterID))
	defer span.End()

	f, exists, err := s.store.Filters().GetByID(ctx, filterID)
	if err != nil {
		return fmt.Errorf("get filter: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: filter=%d", ErrNotFound, filterID)
	}

	for _, variant := range filter.Variants {
		if err := s.refitVariant(ctx, f, variant); err != nil {
			span.RecordError(err)
			return fmt.Errorf("refit %s: %w", variant, err)
		}
	}
	return nil
}

func (s *RecalcService) refitVariant(ctx context.Context, f filter.Filter, variant filter.Variant) error {
	var fitted *points.Distribution
	if f.Ranked(variant) {
		board, err := s.store.BestRecords().ListAllRanked(ctx, f.ID, variant)
		if err != nil {
			return fmt.Errorf("list leaderboard: %w", err)
		}
		dist, err := s.fitter.Fit(ctx, boardTimes(board))
		switch {
		case errors.Is(err, points.ErrFitUnavailable):
			s.logger.DebugContext(ctx, "distribution fit unavailable",
				"filter_id", f.ID, "variant", variant, "samples", len(board), "error", err)
		case err != nil:
			return fmt.Errorf("fit distribution: %w", err)
		default:
			dist.FilterID = f.ID
			dist.Variant = variant
			dist.FittedAt = s.now().UTC()
			fitted = &dist
		}
	}

	var out *outcome
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx store.Repositories) error {
		out = newOutcome()

		if fitted != nil {
			if err := tx.Distributions().Upsert(ctx, *fitted); err != nil {
				return fmt.Errorf("upsert distribution: %w", err)
			}
		}
		if fitted != nil || !f.Ranked(variant) {
			if err := tx.Distributions().ResetPending(ctx, f.ID, variant); err != nil {
				return fmt.Errorf("reset pending fit count: %w", err)
			}
		}

		rows, err := s.reprice(ctx, tx, f, variant)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		updates := make([]leaderboard.PointsUpdate, len(rows))
		for i, row := range rows {
			updates[i] = row.update
			out.player(row.update.PlayerID, playerPriority(row.delta))
		}
		if err := tx.BestRecords().UpdatePoints(ctx, updates); err != nil {
			return fmt.Errorf("update points: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	out.flush(ctx, s.enqueuer, s.logger)
	if fitted != nil {
		s.logger.InfoContext(ctx, "distribution refitted",
			"filter_id", f.ID,
			"variant", variant,
			"samples", fitted.SampleSize,
			"players_changed", len(out.players),
		)
	}
	return nil
}

type repricedRow struct {
	update leaderboard.PointsUpdate
	delta  float64
}

// reprice recomputes every row of a board against the current distributions.
func (s *RecalcService) reprice(ctx context.Context, tx store.Repositories, f filter.Filter, variant filter.Variant) ([]repricedRow, error) {
	best := tx.BestRecords()
	board, err := best.ListAllRanked(ctx, f.ID, variant)
	if err != nil {
		return nil, fmt.Errorf("list leaderboard: %w", err)
	}
	if len(board) == 0 {
		return nil, nil
	}

	dist, hasDist, err := tx.Distributions().Get(ctx, f.ID, variant)
	if err != nil {
		return nil, fmt.Errorf("get distribution: %w", err)
	}

	var (
		nubDist  *points.Distribution
		nubBoard []leaderboard.Entry
	)
	if variant.IsPro() && hasDist && f.Ranked(variant) {
		d, ok, err := tx.Distributions().Get(ctx, f.ID, filter.VariantNub)
		if err != nil {
			return nil, fmt.Errorf("get nub distribution: %w", err)
		}
		if ok {
			nubDist = &d
			if nubBoard, err = best.ListAllRanked(ctx, f.ID, filter.VariantNub); err != nil {
				return nil, fmt.Errorf("list nub leaderboard: %w", err)
			}
		}
	}

	var rows []repricedRow
	for _, entry := range board {
		var nubAt placement
		if nubDist != nil {
			nubAt = placeAmong(nubBoard, entry.PlayerID, entry.BestRecord)
		}
		p := scoreRun(f, variant, distPtr(dist, hasDist), placement{rank: entry.Rank, size: len(board)}, nubDist, nubAt, entry.Time)
		if p == entry.Points {
			continue
		}
		rows = append(rows, repricedRow{
			update: leaderboard.PointsUpdate{
				FilterID: f.ID,
				PlayerID: entry.PlayerID,
				Variant:  variant,
				RecordID: entry.RecordID,
				Points:   p,
			},
			delta: p - entry.Points,
		})
	}
	return rows, nil
}

// RefreshPlayer recomputes a player's ratings from their best records. Rows
// that no longer satisfy the scoring invariants are quarantined and their slot
// is rebuilt from the player's remaining normal records.
func (s *RecalcService) RefreshPlayer(ctx context.Context, playerID int64) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecalcService.RefreshPlayer", attribute.Int64("player.id", playerID))
	defer span.End()

	if playerID <= 0 {
		return fmt.Errorf("%w: player id must be greater than zero", ErrInvalidInput)
	}

	var (
		pr          rating.PlayerRating
		out         *outcome
		quarantined int
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx store.Repositories) error {
		out = newOutcome()
		quarantined = 0
		best := tx.BestRecords()

		listed, err := best.ListByPlayer(ctx, playerID)
		if err != nil {
			return fmt.Errorf("list best records: %w", err)
		}

		kept := make([]leaderboard.BestRecord, 0, len(listed))
		for _, stale := range listed {
			if err := best.Lock(ctx, stale.FilterID, playerID); err != nil {
				return fmt.Errorf("lock best record: %w", err)
			}
			// Re-read under the lock; a submission may have replaced the row.
			row, exists, err := best.Get(ctx, stale.FilterID, playerID, stale.Variant)
			if err != nil {
				return fmt.Errorf("get best record: %w", err)
			}
			if !exists {
				continue
			}

			reason, err := violation(ctx, tx, row)
			if err != nil {
				return err
			}
			if reason == "" {
				kept = append(kept, row)
				continue
			}

			rebuilt, ok, err := s.quarantine(ctx, tx, row, reason, out)
			if err != nil {
				return err
			}
			quarantined++
			if ok {
				kept = append(kept, rebuilt)
			}
		}

		pr = rating.Compute(playerID, kept)
		pr.UpdatedAt = s.now().UTC()
		if err := tx.Ratings().Upsert(ctx, pr); err != nil {
			return fmt.Errorf("upsert rating: %w", err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	out.flush(ctx, s.enqueuer, s.logger)
	s.logger.DebugContext(ctx, "player rating refreshed",
		"player_id", playerID, "nub", pr.Nub, "pro", pr.Pro, "quarantined", quarantined)
	return nil
}

// quarantine pulls row out of ranking and rebuilds its slot. It returns the
// rebuilt row when the player still has a qualifying normal record.
func (s *RecalcService) quarantine(ctx context.Context, tx store.Repositories, row leaderboard.BestRecord, reason string, out *outcome) (leaderboard.BestRecord, bool, error) {
	if err := tx.BestRecords().Quarantine(ctx, row, reason); err != nil {
		return leaderboard.BestRecord{}, false, fmt.Errorf("quarantine best record: %w", err)
	}
	s.logger.ErrorContext(ctx, "best record quarantined",
		"invariant_violation", true,
		"filter_id", row.FilterID,
		"player_id", row.PlayerID,
		"variant", row.Variant,
		"record_id", row.RecordID,
		"points", row.Points,
		"reason", reason,
	)

	f, exists, err := tx.Filters().GetByID(ctx, row.FilterID)
	if err != nil {
		return leaderboard.BestRecord{}, false, fmt.Errorf("get filter: %w", err)
	}
	if !exists {
		return leaderboard.BestRecord{}, false, nil
	}
	if err := s.maintainer.maintain(ctx, tx, f, row.PlayerID, row.Variant, out); err != nil {
		return leaderboard.BestRecord{}, false, fmt.Errorf("rebuild best record: %w", err)
	}
	// The rating computed by the caller already covers the rebuilt row.
	delete(out.players, row.PlayerID)
	out.filter(f.ID, 1)

	rebuilt, ok, err := tx.BestRecords().Get(ctx, f.ID, row.PlayerID, row.Variant)
	if err != nil {
		return leaderboard.BestRecord{}, false, fmt.Errorf("get best record: %w", err)
	}
	return rebuilt, ok, nil
}

// violation returns why a row must leave the ranking, or "" when it is sound.
func violation(ctx context.Context, tx store.Repositories, row leaderboard.BestRecord) (string, error) {
	if err := points.ValidatePoints(row.Points); err != nil {
		return err.Error(), nil
	}
	rec, exists, err := tx.Records().GetByID(ctx, row.RecordID)
	if err != nil {
		return "", fmt.Errorf("get record: %w", err)
	}
	switch {
	case !exists:
		return "record missing", nil
	case rec.Status != record.StatusNormal:
		return fmt.Sprintf("record status %s", rec.Status), nil
	case !row.Variant.Accepts(rec.Teleports):
		return "record does not qualify for variant", nil
	case rec.FilterID != row.FilterID || rec.PlayerID != row.PlayerID:
		return "record belongs to another leaderboard", nil
	}
	return "", nil
}

func boardTimes(board []leaderboard.Entry) []float64 {
	times := make([]float64, len(board))
	for i, entry := range board {
		times[i] = entry.Time
	}
	return times
}
