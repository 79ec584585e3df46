package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/filter"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/leaderboard"
)

type execCall struct {
	query string
	args  []any
}

// execRecorder captures statements and reports a fixed number of affected rows.
type execRecorder struct {
	affected int64
	calls    []execCall
}

func (r *execRecorder) DriverName() string { return "postgres" }
func (r *execRecorder) Rebind(query string) string { return query }
func (r *execRecorder) BindNamed(string, any) (string, []any, error) {
	return "", nil, errors.New("not supported")
}

func (r *execRecorder) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, errors.New("not supported")
}

func (r *execRecorder) QueryxContext(context.Context, string, ...any) (*sqlx.Rows, error) {
	return nil, errors.New("not supported")
}

func (r *execRecorder) QueryRowxContext(context.Context, string, ...any) *sqlx.Row {
	return nil
}

func (r *execRecorder) ExecContext(_ context.Context, query string, args ...any) (sql.Result, error) {
	r.calls = append(r.calls, execCall{query: query, args: args})
	return affectedRows(r.affected), nil
}

type affectedRows int64

func (n affectedRows) LastInsertId() (int64, error) { return 0, nil }
func (n affectedRows) RowsAffected() (int64, error) { return int64(n), nil }

func quarantineRow() leaderboard.BestRecord {
	return leaderboard.BestRecord{
		FilterID:    3,
		PlayerID:    7,
		Variant:     filter.VariantPro,
		RecordID:    42,
		Time:        31.5,
		SubmittedAt: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		Points:      1200,
	}
}

func TestQuarantine_DeletesOnlyTheReferencedRecord(t *testing.T) {
	db := &execRecorder{affected: 1}
	repo := NewBestRecordRepository(db)

	if err := repo.Quarantine(context.Background(), quarantineRow(), "record status suspicious"); err != nil {
		t.Fatalf("quarantine: %v", err)
	}
	if len(db.calls) != 2 {
		t.Fatalf("expected delete and insert, got %d statements", len(db.calls))
	}
	del := db.calls[0]
	if !strings.HasPrefix(del.query, "DELETE FROM best_records") || !strings.Contains(del.query, "record_id = ") {
		t.Fatalf("unexpected delete statement: %q", del.query)
	}
	if del.args[len(del.args)-1] != int64(42) {
		t.Fatalf("expected record id bound last, got %v", del.args)
	}
	ins := db.calls[1]
	if !strings.HasPrefix(ins.query, "INSERT INTO best_record_quarantine") {
		t.Fatalf("unexpected insert statement: %q", ins.query)
	}
	if strings.Contains(ins.query, "quarantined_at") || len(ins.args) != 8 {
		t.Fatalf("quarantined_at should come from the column default: %q %v", ins.query, ins.args)
	}
}

func TestQuarantine_ReplacedRowIsLeftAlone(t *testing.T) {
	db := &execRecorder{affected: 0}
	repo := NewBestRecordRepository(db)

	if err := repo.Quarantine(context.Background(), quarantineRow(), "record status suspicious"); err != nil {
		t.Fatalf("quarantine: %v", err)
	}
	if len(db.calls) != 1 {
		t.Fatalf("expected only the guarded delete, got %d statements", len(db.calls))
	}
}

func TestUpdatePoints_MatchesOnRecordID(t *testing.T) {
	db := &execRecorder{affected: 1}
	repo := NewBestRecordRepository(db)

	err := repo.UpdatePoints(context.Background(), []leaderboard.PointsUpdate{
		{FilterID: 3, PlayerID: 7, Variant: filter.VariantPro, RecordID: 42, Points: 900},
		{FilterID: 3, PlayerID: 8, Variant: filter.VariantPro, RecordID: 43, Points: 800},
		{FilterID: 3, PlayerID: 7, Variant: filter.VariantNub, RecordID: 42, Points: 950},
	})
	if err != nil {
		t.Fatalf("update points: %v", err)
	}
	if len(db.calls) != 2 {
		t.Fatalf("expected one statement per variant, got %d", len(db.calls))
	}
	for _, call := range db.calls {
		if !strings.Contains(call.query, "br.record_id = v.record_id") {
			t.Fatalf("update does not guard on record id: %q", call.query)
		}
		if len(call.args) != 5 {
			t.Fatalf("expected 5 args, got %d", len(call.args))
		}
	}
}
