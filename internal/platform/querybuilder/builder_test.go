package querybuilder

import (
	"reflect"
	"testing"
	"time"
)

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("player_id", "points").
		From("best_records").
		Where(Eq("filter_id", int64(7)), Eq("variant", "pro")).
		OrderBy("time ASC", "record_id ASC").
		Limit(20).
		Offset(40).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT player_id, points FROM best_records WHERE filter_id = $1 AND variant = $2 ORDER BY time ASC, record_id ASC LIMIT 20 OFFSET 40"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if !reflect.DeepEqual(args, []any{int64(7), "pro"}) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_ForUpdateAndExpr(t *testing.T) {
	query, args, err := Select("COUNT(*)").
		From("best_records").
		Where(
			Eq("filter_id", int64(1)),
			Ne("player_id", int64(3)),
			Expr("(time, submitted_at) < (?, ?)", 12.5, "ts"),
		).
		ForUpdate().
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT COUNT(*) FROM best_records WHERE filter_id = $1 AND player_id <> $2 AND (time, submitted_at) < ($3, $4) FOR UPDATE"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[2] != 12.5 || args[3] != "ts" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_EmptyInNeverMatches(t *testing.T) {
	query, args, err := Select("id").From("records").Where(In("id", nil)).ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}
	if query != "SELECT id FROM records WHERE 1=0" || len(args) != 0 {
		t.Fatalf("unexpected query %q args %+v", query, args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("filters").
		Columns("id", "nub_tier").
		Values(int64(1), 3).
		Suffix("ON CONFLICT (id) DO UPDATE SET nub_tier = EXCLUDED.nub_tier").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO filters (id, nub_tier) VALUES ($1, $2) ON CONFLICT (id) DO UPDATE SET nub_tier = EXCLUDED.nub_tier"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != int64(1) || args[1] != 3 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder_RowWidthMismatch(t *testing.T) {
	_, _, err := InsertInto("filters").Columns("id", "mode").Values(int64(1)).ToSQL()
	if err == nil {
		t.Fatalf("expected error for short row")
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("records").
		Set("status", "cheated").
		SetExpr("updated_at", "NOW()").
		Where(Eq("id", int64(9))).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE records SET status = $1, updated_at = NOW() WHERE id = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "cheated" || args[1] != int64(9) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("best_records").
		Where(Eq("filter_id", int64(1)), Eq("player_id", int64(2))).
		ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}
	if query != "DELETE FROM best_records WHERE filter_id = $1 AND player_id = $2" || len(args) != 2 {
		t.Fatalf("unexpected query %q args %+v", query, args)
	}

	if _, _, err := DeleteFrom("best_records").ToSQL(); err == nil {
		t.Fatalf("expected unconditional delete to be rejected")
	}
}

func TestInsertModel(t *testing.T) {
	type row struct {
		ID     int64   `db:"id"`
		Points float64 `db:"points"`
		Skip   string  `db:"-"`
		hidden int
	}

	query, args, err := InsertModel("best_records", row{ID: 1, Points: 42.5, Skip: "x"}, "")
	if err != nil {
		t.Fatalf("insert model: %v", err)
	}
	if query != "INSERT INTO best_records (id, points) VALUES ($1, $2)" {
		t.Fatalf("unexpected query %q", query)
	}
	if len(args) != 2 || args[1] != 42.5 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModel_DefaultOption(t *testing.T) {
	type row struct {
		ID            int64     `db:"id"`
		Reason        string    `db:"reason"`
		QuarantinedAt time.Time `db:"quarantined_at,default"`
	}

	t.Run("zero value falls back to column default", func(t *testing.T) {
		query, args, err := InsertModel("best_record_quarantine", row{ID: 1, Reason: "cheated"}, "")
		if err != nil {
			t.Fatalf("insert model: %v", err)
		}
		if query != "INSERT INTO best_record_quarantine (id, reason) VALUES ($1, $2)" {
			t.Fatalf("unexpected query %q", query)
		}
		if len(args) != 2 {
			t.Fatalf("unexpected args: %+v", args)
		}
	})

	t.Run("explicit value is written", func(t *testing.T) {
		at := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
		query, args, err := InsertModel("best_record_quarantine", &row{ID: 1, Reason: "cheated", QuarantinedAt: at}, "RETURNING id")
		if err != nil {
			t.Fatalf("insert model: %v", err)
		}
		if query != "INSERT INTO best_record_quarantine (id, reason, quarantined_at) VALUES ($1, $2, $3) RETURNING id" {
			t.Fatalf("unexpected query %q", query)
		}
		if args[2] != at {
			t.Fatalf("unexpected args: %+v", args)
		}
	})
}

func TestInsertModel_RejectsUnusableModels(t *testing.T) {
	type onlyDefaults struct {
		At time.Time `db:"at,default"`
	}
	var nilRow *onlyDefaults

	for name, model := range map[string]any{
		"nil pointer":   nilRow,
		"not a struct":  42,
		"all defaulted": onlyDefaults{},
		"no columns":    struct{ Name string }{Name: "x"},
	} {
		if _, _, err := InsertModel("t", model, ""); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
