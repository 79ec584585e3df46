package postgres

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/filter"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/leaderboard"
	qb "github.com/riskibarqy/kz-leaderboard/internal/platform/querybuilder"
)

const rankOrder = "run_time ASC, submitted_at ASC, record_id ASC"

const updatePointsSQL = `UPDATE best_records AS br
SET points = v.points, updated_at = NOW()
FROM (
	SELECT UNNEST($1::bigint[]) AS player_id, UNNEST($2::bigint[]) AS record_id, UNNEST($3::double precision[]) AS points
) AS v
WHERE br.filter_id = $4 AND br.variant = $5 AND br.player_id = v.player_id AND br.record_id = v.record_id`

var bestRecordColumns = []string{"filter_id", "player_id", "variant", "record_id", "run_time", "submitted_at", "points", "updated_at"}

type BestRecordRepository struct {
	db sqlx.ExtContext
}

func NewBestRecordRepository(db sqlx.ExtContext) *BestRecordRepository {
	return &BestRecordRepository{db: db}
}

func advisoryKey(filterID, playerID int64) string {
	return fmt.Sprintf("best_record:%d:%d", filterID, playerID)
}

func (r *BestRecordRepository) Get(ctx context.Context, filterID, playerID int64, variant filter.Variant) (leaderboard.BestRecord, bool, error) {
	query, args, err := qb.Select(bestRecordColumns...).From("best_records").
		Where(qb.Eq("filter_id", filterID), qb.Eq("player_id", playerID), qb.Eq("variant", string(variant))).
		ToSQL()
	if err != nil {
		return leaderboard.BestRecord{}, false, fmt.Errorf("build get best record query: %w", err)
	}

	var row bestRecordTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return leaderboard.BestRecord{}, false, nil
		}
		return leaderboard.BestRecord{}, false, fmt.Errorf("get best record: %w", err)
	}
	return row.toDomain(), true, nil
}

// Lock takes a transaction-scoped advisory lock. Outside a transaction it is
// released as soon as the statement ends.
func (r *BestRecordRepository) Lock(ctx context.Context, filterID, playerID int64) error {
	if _, err := r.db.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", advisoryKey(filterID, playerID)); err != nil {
		return fmt.Errorf("lock best record filter_id=%d player_id=%d: %w", filterID, playerID, err)
	}
	return nil
}

func (r *BestRecordRepository) Upsert(ctx context.Context, row leaderboard.BestRecord) error {
	model := newBestRecordModel(row)
	if model.UpdatedAt.IsZero() {
		model.UpdatedAt = time.Now().UTC()
	}

	query, args, err := qb.InsertModel("best_records", model, `ON CONFLICT (filter_id, variant, player_id) DO UPDATE SET
		record_id = EXCLUDED.record_id,
		run_time = EXCLUDED.run_time,
		submitted_at = EXCLUDED.submitted_at,
		points = EXCLUDED.points,
		updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build upsert best record query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert best record filter_id=%d player_id=%d variant=%s: %w", row.FilterID, row.PlayerID, row.Variant, err)
	}
	return nil
}

func (r *BestRecordRepository) Delete(ctx context.Context, filterID, playerID int64, variant filter.Variant) error {
	query, args, err := qb.DeleteFrom("best_records").
		Where(qb.Eq("filter_id", filterID), qb.Eq("player_id", playerID), qb.Eq("variant", string(variant))).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete best record query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete best record: %w", err)
	}
	return nil
}

func (r *BestRecordRepository) ListRanked(ctx context.Context, filterID int64, variant filter.Variant, offset, limit int) ([]leaderboard.Entry, error) {
	return r.listRanked(ctx, filterID, variant, offset, limit)
}

func (r *BestRecordRepository) ListAllRanked(ctx context.Context, filterID int64, variant filter.Variant) ([]leaderboard.Entry, error) {
	return r.listRanked(ctx, filterID, variant, 0, 0)
}

func (r *BestRecordRepository) listRanked(ctx context.Context, filterID int64, variant filter.Variant, offset, limit int) ([]leaderboard.Entry, error) {
	columns := append(append([]string(nil), bestRecordColumns...), "ROW_NUMBER() OVER (ORDER BY "+rankOrder+") AS rank")
	query, args, err := qb.Select(columns...).From("best_records").
		Where(qb.Eq("filter_id", filterID), qb.Eq("variant", string(variant))).
		OrderBy(rankOrder).
		Limit(limit).
		Offset(offset).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list ranked query: %w", err)
	}

	var rows []rankedBestRecordModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list ranked filter_id=%d variant=%s: %w", filterID, variant, err)
	}

	out := make([]leaderboard.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, leaderboard.Entry{BestRecord: row.toDomain(), Rank: row.Rank})
	}
	return out, nil
}

func (r *BestRecordRepository) Size(ctx context.Context, filterID int64, variant filter.Variant) (int, error) {
	query, args, err := qb.Select("COUNT(*)").From("best_records").
		Where(qb.Eq("filter_id", filterID), qb.Eq("variant", string(variant))).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count best records query: %w", err)
	}

	var n int
	if err := sqlx.GetContext(ctx, r.db, &n, query, args...); err != nil {
		return 0, fmt.Errorf("count best records: %w", err)
	}
	return n, nil
}

func (r *BestRecordRepository) RankOf(ctx context.Context, filterID int64, variant filter.Variant, playerID int64, t float64, submittedAt time.Time, recordID int64) (int, error) {
	query, args, err := qb.Select("COUNT(*)").From("best_records").
		Where(
			qb.Eq("filter_id", filterID),
			qb.Eq("variant", string(variant)),
			qb.Ne("player_id", playerID),
			qb.Expr("(run_time, submitted_at, record_id) < (?, ?, ?)", t, submittedAt, recordID),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build rank query: %w", err)
	}

	var ahead int
	if err := sqlx.GetContext(ctx, r.db, &ahead, query, args...); err != nil {
		return 0, fmt.Errorf("rank best record: %w", err)
	}
	return ahead + 1, nil
}

type pointsBatchKey struct {
	filterID int64
	variant  filter.Variant
}

// UpdatePoints writes one statement per (filter, variant) in the batch. Rows
// whose record changed since the points were computed are left alone.
func (r *BestRecordRepository) UpdatePoints(ctx context.Context, updates []leaderboard.PointsUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	type batch struct {
		players []int64
		records []int64
		points  []float64
	}
	batches := make(map[pointsBatchKey]*batch)
	keys := make([]pointsBatchKey, 0, 2)
	for _, u := range updates {
		key := pointsBatchKey{filterID: u.FilterID, variant: u.Variant}
		b, ok := batches[key]
		if !ok {
			b = &batch{}
			batches[key] = b
			keys = append(keys, key)
		}
		b.players = append(b.players, u.PlayerID)
		b.records = append(b.records, u.RecordID)
		b.points = append(b.points, u.Points)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].filterID != keys[j].filterID {
			return keys[i].filterID < keys[j].filterID
		}
		return keys[i].variant < keys[j].variant
	})

	for _, key := range keys {
		b := batches[key]
		args := []any{pq.Array(b.players), pq.Array(b.records), pq.Array(b.points), key.filterID, string(key.variant)}
		if _, err := r.db.ExecContext(ctx, updatePointsSQL, args...); err != nil {
			return fmt.Errorf("update points filter_id=%d variant=%s: %w", key.filterID, key.variant, err)
		}
	}
	return nil
}

func (r *BestRecordRepository) ListByPlayer(ctx context.Context, playerID int64) ([]leaderboard.BestRecord, error) {
	query, args, err := qb.Select(bestRecordColumns...).From("best_records").
		Where(qb.Eq("player_id", playerID)).
		OrderBy("filter_id", "variant").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list best records query: %w", err)
	}

	var rows []bestRecordTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list best records player_id=%d: %w", playerID, err)
	}

	out := make([]leaderboard.BestRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// Quarantine moves row out of ranking. It does nothing when the slot no
// longer references row.RecordID.
func (r *BestRecordRepository) Quarantine(ctx context.Context, row leaderboard.BestRecord, reason string) error {
	query, args, err := qb.DeleteFrom("best_records").
		Where(
			qb.Eq("filter_id", row.FilterID),
			qb.Eq("player_id", row.PlayerID),
			qb.Eq("variant", string(row.Variant)),
			qb.Eq("record_id", row.RecordID),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build quarantine delete query: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete quarantined best record: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("delete quarantined best record: %w", err)
	} else if n == 0 {
		return nil
	}

	query, args, err = qb.InsertModel("best_record_quarantine", quarantineInsertModel{
		FilterID:      row.FilterID,
		PlayerID:      row.PlayerID,
		Variant:       string(row.Variant),
		RecordID:      row.RecordID,
		RunTime:       row.Time,
		SubmittedAt:   row.SubmittedAt,
		Points:        row.Points,
		Reason:        reason,
	}, "")
	if err != nil {
		return fmt.Errorf("build quarantine query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("quarantine best record: %w", err)
	}
	return nil
}
