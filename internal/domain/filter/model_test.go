package filter

import "testing"

func TestTier_HumanlyPossible(t *testing.T) {
	t.Parallel()

	cases := []struct {
		tier Tier
		want bool
	}{
		{TierVeryEasy, true},
		{TierDeath, true},
		{TierUnfeasible, false},
		{TierImpossible, false},
		{Tier(0), false},
		{Tier(11), false},
	}
	for _, tc := range cases {
		if got := tc.tier.HumanlyPossible(); got != tc.want {
			t.Fatalf("tier %d: got %v want %v", tc.tier, got, tc.want)
		}
	}
}

func TestVariant_Accepts(t *testing.T) {
	t.Parallel()

	if !VariantNub.Accepts(3) || !VariantNub.Accepts(0) {
		t.Fatalf("nub must accept every run")
	}
	if VariantPro.Accepts(1) {
		t.Fatalf("pro must reject teleport runs")
	}
	if !VariantPro.Accepts(0) {
		t.Fatalf("pro must accept no-teleport runs")
	}
}

func TestFilter_ScoringChanged(t *testing.T) {
	t.Parallel()

	base := Filter{ID: 1, NubTier: TierEasy, ProTier: TierHard, NubRanked: true, ProRanked: true}
	moved := base
	moved.CourseID = 99
	if base.ScoringChanged(moved) {
		t.Fatalf("course change must not count as scoring change")
	}
	moved.ProRanked = false
	if !base.ScoringChanged(moved) {
		t.Fatalf("ranked flag change must count as scoring change")
	}
}
