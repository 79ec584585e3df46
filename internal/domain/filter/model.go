package filter

import (
	"errors"
	"time"
)

var ErrInvalidTier = errors.New("invalid tier")

type Mode string

const (
	ModeVanilla Mode = "vanilla"
	ModeClassic Mode = "classic"
)

func (m Mode) Valid() bool {
	return m == ModeVanilla || m == ModeClassic
}

// Tier is the ordinal difficulty class of a leaderboard.
type Tier int

const (
	TierVeryEasy Tier = iota + 1
	TierEasy
	TierMedium
	TierAdvanced
	TierHard
	TierVeryHard
	TierExtreme
	TierDeath
	TierUnfeasible
	TierImpossible
)

func (t Tier) Valid() bool {
	return t >= TierVeryEasy && t <= TierImpossible
}

// HumanlyPossible reports whether runs on this tier can award points.
func (t Tier) HumanlyPossible() bool {
	return t.Valid() && t < TierUnfeasible
}

func (t Tier) String() string {
	switch t {
	case TierVeryEasy:
		return "very_easy"
	case TierEasy:
		return "easy"
	case TierMedium:
		return "medium"
	case TierAdvanced:
		return "advanced"
	case TierHard:
		return "hard"
	case TierVeryHard:
		return "very_hard"
	case TierExtreme:
		return "extreme"
	case TierDeath:
		return "death"
	case TierUnfeasible:
		return "unfeasible"
	case TierImpossible:
		return "impossible"
	default:
		return "unknown"
	}
}

// Variant selects one of the two sub-leaderboards of a filter.
type Variant string

const (
	VariantNub Variant = "nub"
	VariantPro Variant = "pro"
)

var Variants = []Variant{VariantNub, VariantPro}

func (v Variant) Valid() bool {
	return v == VariantNub || v == VariantPro
}

func (v Variant) IsPro() bool {
	return v == VariantPro
}

// Accepts reports whether a run with the given teleport count qualifies.
func (v Variant) Accepts(teleports int) bool {
	if v == VariantPro {
		return teleports == 0
	}
	return true
}

type Filter struct {
	ID        int64
	CourseID  int64
	Mode      Mode
	NubTier   Tier
	ProTier   Tier
	NubRanked bool
	ProRanked bool
	UpdatedAt time.Time
}

func (f Filter) Tier(v Variant) Tier {
	if v == VariantPro {
		return f.ProTier
	}
	return f.NubTier
}

func (f Filter) Ranked(v Variant) bool {
	if v == VariantPro {
		return f.ProRanked
	}
	return f.NubRanked
}

// ScoringChanged reports whether tier or ranked status differs between two revisions.
func (f Filter) ScoringChanged(other Filter) bool {
	return f.NubTier != other.NubTier ||
		f.ProTier != other.ProTier ||
		f.NubRanked != other.NubRanked ||
		f.ProRanked != other.ProRanked
}
