package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/filter"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/leaderboard"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/points"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/store"
)

const DefaultRefitThreshold = 1

// bestRecordMaintainer keeps the best-record row of one (filter, player,
// variant) equal to the fastest qualifying normal record.
type bestRecordMaintainer struct {
	refitThreshold int64
	now            func() time.Time
}

func newBestRecordMaintainer(refitThreshold int64) bestRecordMaintainer {
	if refitThreshold < 1 {
		refitThreshold = DefaultRefitThreshold
	}
	return bestRecordMaintainer{refitThreshold: refitThreshold, now: time.Now}
}

// maintain must run inside tx. Follow-up work is recorded on out.
func (m bestRecordMaintainer) maintain(ctx context.Context, tx store.Repositories, f filter.Filter, playerID int64, variant filter.Variant, out *outcome) error {
	best := tx.BestRecords()
	if err := best.Lock(ctx, f.ID, playerID); err != nil {
		return err
	}

	cached, hasCached, err := best.Get(ctx, f.ID, playerID, variant)
	if err != nil {
		return fmt.Errorf("get best record: %w", err)
	}
	rec, hasRec, err := tx.Records().BestNormal(ctx, f.ID, playerID, variant)
	if err != nil {
		return fmt.Errorf("find best normal record: %w", err)
	}

	dist, hasDist, err := tx.Distributions().Get(ctx, f.ID, variant)
	if err != nil {
		return fmt.Errorf("get distribution: %w", err)
	}

	switch {
	case !hasRec && !hasCached:
		return nil
	case !hasRec:
		if err := best.Delete(ctx, f.ID, playerID, variant); err != nil {
			return fmt.Errorf("delete best record: %w", err)
		}
		out.player(playerID, playerPriority(cached.Points))
	case hasCached && cached.RecordID == rec.ID && cached.Time == rec.Time:
		return nil
	default:
		row := leaderboard.BestRecord{
			FilterID:    f.ID,
			PlayerID:    playerID,
			Variant:     variant,
			RecordID:    rec.ID,
			Time:        rec.Time,
			SubmittedAt: rec.SubmittedAt,
			UpdatedAt:   m.now().UTC(),
		}
		row.Points, err = m.price(ctx, tx, f, variant, distPtr(dist, hasDist), row)
		if err != nil {
			return err
		}
		if err := best.Upsert(ctx, row); err != nil {
			return fmt.Errorf("upsert best record: %w", err)
		}
		out.player(playerID, playerPriority(row.Points-cached.Points))
	}

	pending, err := tx.Distributions().IncrementPending(ctx, f.ID, variant)
	if err != nil {
		return fmt.Errorf("increment pending fit count: %w", err)
	}
	if !hasDist || pending >= m.refitThreshold {
		out.filter(f.ID, pending)
	}
	return nil
}

func (m bestRecordMaintainer) price(ctx context.Context, tx store.Repositories, f filter.Filter, variant filter.Variant, dist *points.Distribution, row leaderboard.BestRecord) (float64, error) {
	if dist == nil || !f.Ranked(variant) {
		return 0, nil
	}

	at, err := placeOnBoard(ctx, tx, f.ID, variant, row)
	if err != nil {
		return 0, err
	}

	var (
		nubDist *points.Distribution
		nubAt   placement
	)
	if variant.IsPro() {
		d, ok, err := tx.Distributions().Get(ctx, f.ID, filter.VariantNub)
		if err != nil {
			return 0, fmt.Errorf("get nub distribution: %w", err)
		}
		if ok {
			nubDist = &d
			if nubAt, err = placeOnBoard(ctx, tx, f.ID, filter.VariantNub, row); err != nil {
				return 0, err
			}
		}
	}

	return scoreRun(f, variant, dist, at, nubDist, nubAt, row.Time), nil
}

func placeOnBoard(ctx context.Context, tx store.Repositories, filterID int64, variant filter.Variant, row leaderboard.BestRecord) (placement, error) {
	best := tx.BestRecords()
	rank, err := best.RankOf(ctx, filterID, variant, row.PlayerID, row.Time, row.SubmittedAt, row.RecordID)
	if err != nil {
		return placement{}, fmt.Errorf("rank best record: %w", err)
	}
	size, err := best.Size(ctx, filterID, variant)
	if err != nil {
		return placement{}, fmt.Errorf("count leaderboard: %w", err)
	}
	if _, exists, err := best.Get(ctx, filterID, row.PlayerID, variant); err != nil {
		return placement{}, fmt.Errorf("get best record: %w", err)
	} else if !exists {
		size++
	}
	return placement{rank: rank, size: size}, nil
}

func distPtr(d points.Distribution, ok bool) *points.Distribution {
	if !ok {
		return nil
	}
	return &d
}
