package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/filter"
	qb "github.com/riskibarqy/kz-leaderboard/internal/platform/querybuilder"
)

var filterColumns = []string{"id", "course_id", "mode", "nub_tier", "pro_tier", "nub_ranked", "pro_ranked", "updated_at"}

type FilterRepository struct {
	db sqlx.ExtContext
}

func NewFilterRepository(db sqlx.ExtContext) *FilterRepository {
	return &FilterRepository{db: db}
}

func (r *FilterRepository) GetByID(ctx context.Context, id int64) (filter.Filter, bool, error) {
	query, args, err := qb.Select(filterColumns...).From("filters").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return filter.Filter{}, false, fmt.Errorf("build get filter query: %w", err)
	}

	var row filterTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return filter.Filter{}, false, nil
		}
		return filter.Filter{}, false, fmt.Errorf("get filter id=%d: %w", id, err)
	}
	return row.toDomain(), true, nil
}

func (r *FilterRepository) List(ctx context.Context) ([]filter.Filter, error) {
	query, args, err := qb.Select(filterColumns...).From("filters").
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list filters query: %w", err)
	}

	var rows []filterTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list filters: %w", err)
	}

	out := make([]filter.Filter, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *FilterRepository) Upsert(ctx context.Context, f filter.Filter) error {
	query, args, err := qb.InsertInto("filters").
		Columns("id", "course_id", "mode", "nub_tier", "pro_tier", "nub_ranked", "pro_ranked").
		Values(f.ID, f.CourseID, string(f.Mode), int(f.NubTier), int(f.ProTier), f.NubRanked, f.ProRanked).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			course_id = EXCLUDED.course_id,
			mode = EXCLUDED.mode,
			nub_tier = EXCLUDED.nub_tier,
			pro_tier = EXCLUDED.pro_tier,
			nub_ranked = EXCLUDED.nub_ranked,
			pro_ranked = EXCLUDED.pro_ranked,
			updated_at = NOW()`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert filter query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert filter id=%d: %w", f.ID, err)
	}
	return nil
}
