package app

import (
	"strconv"
	"strings"
	"testing"
)

func TestFormatTracedQuery(t *testing.T) {
	t.Run("collapses whitespace", func(t *testing.T) {
		got := formatTracedQuery(" SELECT   *\nFROM records \t WHERE filter_id = $1 ")
		want := "SELECT * FROM records WHERE filter_id = $1"
		if got != want {
			t.Fatalf("unexpected formatted query: %q", got)
		}
	})

	t.Run("folds long placeholder lists", func(t *testing.T) {
		params := make([]string, 0, 40)
		for i := 2; i <= 41; i++ {
			params = append(params, "$"+strconv.Itoa(i))
		}
		query := "SELECT id FROM records WHERE filter_id = $1 AND player_id IN (" + strings.Join(params, ", ") + ")"
		got := formatTracedQuery(query)
		want := "SELECT id FROM records WHERE filter_id = $1 AND player_id IN ($2, ..., $41)"
		if got != want {
			t.Fatalf("unexpected formatted query: %q", got)
		}
	})

	t.Run("short lists stay intact", func(t *testing.T) {
		query := "SELECT id FROM filters WHERE id IN ($1, $2, $3)"
		if got := formatTracedQuery(query); got != query {
			t.Fatalf("unexpected formatted query: %q", got)
		}
	})
}

func TestDBTraceOptions(t *testing.T) {
	if got := len(dbTraceOptions("postgres://u@h/kz_leaderboard", "kz-leaderboard")); got != 3 {
		t.Fatalf("expected attribute, db name and formatter options, got %d", got)
	}
}
