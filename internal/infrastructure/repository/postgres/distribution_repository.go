package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/filter"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/points"
	qb "github.com/riskibarqy/kz-leaderboard/internal/platform/querybuilder"
)

type DistributionRepository struct {
	db sqlx.ExtContext
}

func NewDistributionRepository(db sqlx.ExtContext) *DistributionRepository {
	return &DistributionRepository{db: db}
}

func (r *DistributionRepository) Get(ctx context.Context, filterID int64, variant filter.Variant) (points.Distribution, bool, error) {
	query, args, err := qb.Select("filter_id", "variant", "a", "b", "loc", "scale", "top_scale", "top_time", "sample_size", "fitted_at").
		From("distribution_params").
		Where(qb.Eq("filter_id", filterID), qb.Eq("variant", string(variant))).
		ToSQL()
	if err != nil {
		return points.Distribution{}, false, fmt.Errorf("build get distribution query: %w", err)
	}

	var row distributionTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return points.Distribution{}, false, nil
		}
		return points.Distribution{}, false, fmt.Errorf("get distribution filter_id=%d variant=%s: %w", filterID, variant, err)
	}
	return row.toDomain(), true, nil
}

func (r *DistributionRepository) Upsert(ctx context.Context, d points.Distribution) error {
	fittedAt := d.FittedAt
	if fittedAt.IsZero() {
		fittedAt = time.Now().UTC()
	}

	query, args, err := qb.InsertModel("distribution_params", distributionTableModel{
		FilterID:   d.FilterID,
		Variant:    string(d.Variant),
		A:          d.A,
		B:          d.B,
		Loc:        d.Loc,
		Scale:      d.Scale,
		TopScale:   d.TopScale,
		TopTime:    d.TopTime,
		SampleSize: d.SampleSize,
		FittedAt:   fittedAt,
	}, `ON CONFLICT (filter_id, variant) DO UPDATE SET
		a = EXCLUDED.a,
		b = EXCLUDED.b,
		loc = EXCLUDED.loc,
		scale = EXCLUDED.scale,
		top_scale = EXCLUDED.top_scale,
		top_time = EXCLUDED.top_time,
		sample_size = EXCLUDED.sample_size,
		fitted_at = EXCLUDED.fitted_at`)
	if err != nil {
		return fmt.Errorf("build upsert distribution query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert distribution filter_id=%d variant=%s: %w", d.FilterID, d.Variant, err)
	}
	return nil
}

func (r *DistributionRepository) IncrementPending(ctx context.Context, filterID int64, variant filter.Variant) (int64, error) {
	query, args, err := qb.InsertInto("fit_pending").
		Columns("filter_id", "variant", "pending").
		Values(filterID, string(variant), 1).
		Suffix("ON CONFLICT (filter_id, variant) DO UPDATE SET pending = fit_pending.pending + 1 RETURNING pending").
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build increment pending query: %w", err)
	}

	var pending int64
	if err := sqlx.GetContext(ctx, r.db, &pending, query, args...); err != nil {
		return 0, fmt.Errorf("increment pending filter_id=%d variant=%s: %w", filterID, variant, err)
	}
	return pending, nil
}

func (r *DistributionRepository) ResetPending(ctx context.Context, filterID int64, variant filter.Variant) error {
	query, args, err := qb.DeleteFrom("fit_pending").
		Where(qb.Eq("filter_id", filterID), qb.Eq("variant", string(variant))).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build reset pending query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("reset pending filter_id=%d variant=%s: %w", filterID, variant, err)
	}
	return nil
}
