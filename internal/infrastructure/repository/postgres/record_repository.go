package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/filter"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/record"
	qb "github.com/riskibarqy/kz-leaderboard/internal/platform/querybuilder"
)

var recordColumns = []string{"id", "player_id", "filter_id", "run_time", "teleports", "styles", "status", "submitted_at"}

type RecordRepository struct {
	db sqlx.ExtContext
}

func NewRecordRepository(db sqlx.ExtContext) *RecordRepository {
	return &RecordRepository{db: db}
}

func (r *RecordRepository) Insert(ctx context.Context, in record.NewRecord) (record.Record, error) {
	submittedAt := in.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = time.Now().UTC()
	}

	query, args, err := qb.InsertModel("records", recordInsertModel{
		PlayerID:    in.PlayerID,
		FilterID:    in.FilterID,
		RunTime:     in.Time,
		Teleports:   in.Teleports,
		Styles:      int64(in.Styles),
		Status:      string(in.Status),
		SubmittedAt: submittedAt,
	}, "RETURNING id")
	if err != nil {
		return record.Record{}, fmt.Errorf("build insert record query: %w", err)
	}

	var id int64
	if err := sqlx.GetContext(ctx, r.db, &id, query, args...); err != nil {
		return record.Record{}, fmt.Errorf("insert record: %w", err)
	}

	return record.Record{
		ID:          id,
		PlayerID:    in.PlayerID,
		FilterID:    in.FilterID,
		Time:        in.Time,
		Teleports:   in.Teleports,
		Styles:      in.Styles,
		Status:      in.Status,
		SubmittedAt: submittedAt,
	}, nil
}

func (r *RecordRepository) GetByID(ctx context.Context, id int64) (record.Record, bool, error) {
	return r.get(ctx, qb.Select(recordColumns...).From("records").Where(qb.Eq("id", id)))
}

func (r *RecordRepository) GetByIDForUpdate(ctx context.Context, id int64) (record.Record, bool, error) {
	return r.get(ctx, qb.Select(recordColumns...).From("records").Where(qb.Eq("id", id)).ForUpdate())
}

func (r *RecordRepository) get(ctx context.Context, b *qb.SelectBuilder) (record.Record, bool, error) {
	query, args, err := b.ToSQL()
	if err != nil {
		return record.Record{}, false, fmt.Errorf("build get record query: %w", err)
	}

	var row recordTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return record.Record{}, false, nil
		}
		return record.Record{}, false, fmt.Errorf("get record: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *RecordRepository) UpdateStatus(ctx context.Context, id int64, status record.Status) error {
	query, args, err := qb.Update("records").
		Set("status", string(status)).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update record status query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update record status id=%d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update record status id=%d: no rows", id)
	}
	return nil
}

func (r *RecordRepository) BestNormal(ctx context.Context, filterID, playerID int64, variant filter.Variant) (record.Record, bool, error) {
	conds := []qb.Condition{
		qb.Eq("filter_id", filterID),
		qb.Eq("player_id", playerID),
		qb.Eq("status", string(record.StatusNormal)),
	}
	if variant.IsPro() {
		conds = append(conds, qb.Eq("teleports", 0))
	}

	return r.get(ctx, qb.Select(recordColumns...).From("records").
		Where(conds...).
		OrderBy("run_time ASC", "submitted_at ASC", "id ASC").
		Limit(1))
}

func (r *RecordRepository) ListByPlayer(ctx context.Context, playerID int64) ([]record.Record, error) {
	query, args, err := qb.Select(recordColumns...).From("records").
		Where(qb.Eq("player_id", playerID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list records query: %w", err)
	}

	var rows []recordTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list records player_id=%d: %w", playerID, err)
	}

	out := make([]record.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
