package postgres

import (
	"database/sql"
	"fmt"
	"testing"

	crerr "github.com/cockroachdb/errors"
	"github.com/lib/pq"
)

func TestIsTransient(t *testing.T) {
	t.Run("serialization failure", func(t *testing.T) {
		err := fmt.Errorf("upsert best record: %w", &pq.Error{Code: "40001"})
		if !IsTransient(err) {
			t.Fatalf("expected 40001 to be transient")
		}
	})

	t.Run("deadlock through crerr wrap", func(t *testing.T) {
		err := crerr.Wrap(&pq.Error{Code: "40P01"}, "commit")
		if !IsTransient(err) {
			t.Fatalf("expected 40P01 to be transient")
		}
	})

	t.Run("unique violation", func(t *testing.T) {
		if IsTransient(&pq.Error{Code: "23505"}) {
			t.Fatalf("expected 23505 to be permanent")
		}
	})

	t.Run("non pq error", func(t *testing.T) {
		if IsTransient(fakeErr("pq: connection reset")) {
			t.Fatalf("expected plain error to be permanent")
		}
	})
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(fmt.Errorf("get record: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped ErrNoRows to match")
	}
	if isNotFound(fakeErr("boom")) {
		t.Fatalf("expected unrelated error not to match")
	}
}

func TestAdvisoryKey(t *testing.T) {
	if got := advisoryKey(12, 345); got != "best_record:12:345" {
		t.Fatalf("unexpected advisory key %q", got)
	}
}

type fakeErr string

func (e fakeErr) Error() string { return string(e) }
