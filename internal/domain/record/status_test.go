package record

import (
	"errors"
	"testing"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/filter"
)

func TestTransition_LegalEdges(t *testing.T) {
	t.Parallel()

	legal := []struct {
		from, to Status
		source   Source
	}{
		{StatusSuspicious, StatusCheated, SourceAdmin},
		{StatusSuspicious, StatusNormal, SourceAdmin},
		{StatusCheated, StatusSuspicious, SourceAdmin},
		{StatusNormal, StatusSuspicious, SourceDetector},
		{StatusNormal, StatusSuspicious, SourceAdmin},
	}
	for _, tc := range legal {
		if err := Transition(tc.from, tc.to, tc.source); err != nil {
			t.Fatalf("%s -> %s by %s: unexpected error %v", tc.from, tc.to, tc.source, err)
		}
	}
}

func TestTransition_RejectsIllegalEdges(t *testing.T) {
	t.Parallel()

	illegal := []struct {
		from, to Status
		source   Source
	}{
		{StatusNormal, StatusCheated, SourceAdmin},
		{StatusNormal, StatusHidden, SourceAdmin},
		{StatusHidden, StatusNormal, SourceAdmin},
		{StatusCheated, StatusNormal, SourceAdmin},
		{StatusNormal, StatusNormal, SourceAdmin},
		{StatusSuspicious, StatusNormal, SourceDetector},
	}
	for _, tc := range illegal {
		err := Transition(tc.from, tc.to, tc.source)
		if !errors.Is(err, ErrIllegalTransition) {
			t.Fatalf("%s -> %s by %s: expected ErrIllegalTransition, got %v", tc.from, tc.to, tc.source, err)
		}
	}
}

func TestChangesRanking(t *testing.T) {
	t.Parallel()

	if !ChangesRanking(StatusNormal, StatusSuspicious) {
		t.Fatalf("leaving normal must change ranking")
	}
	if !ChangesRanking(StatusSuspicious, StatusNormal) {
		t.Fatalf("entering normal must change ranking")
	}
	if ChangesRanking(StatusSuspicious, StatusCheated) {
		t.Fatalf("moving between excluded states must not change ranking")
	}
}

func TestRecord_Qualifies(t *testing.T) {
	t.Parallel()

	r := Record{Status: StatusNormal, Teleports: 2}
	if !r.Qualifies(filter.VariantNub) {
		t.Fatalf("normal teleport run should qualify for nub")
	}
	if r.Qualifies(filter.VariantPro) {
		t.Fatalf("teleport run should not qualify for pro")
	}
	r.Status = StatusHidden
	if r.Qualifies(filter.VariantNub) {
		t.Fatalf("hidden run should not qualify")
	}
}

func TestStyles_Valid(t *testing.T) {
	t.Parallel()

	if !(StyleAutoBhop | StyleCrouchBoost).Valid() {
		t.Fatalf("known styles should be valid")
	}
	if Styles(1 << 10).Valid() {
		t.Fatalf("unknown style bit should be invalid")
	}
}
