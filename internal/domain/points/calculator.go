package points

import (
	"errors"
	"fmt"
	"math"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/filter"
)

const (
	MaxPoints = 10000.0

	// LowCompletionThreshold is the leaderboard size at or below which the
	// fitted curve is not trusted and a logistic approximation is used instead.
	LowCompletionThreshold = 50
)

var ErrInvalidPoints = errors.New("invalid points value")

var tierMinimum = map[filter.Tier]float64{
	filter.TierVeryEasy: 0,
	filter.TierEasy:     500,
	filter.TierMedium:   2000,
	filter.TierAdvanced: 3500,
	filter.TierHard:     5000,
	filter.TierVeryHard: 6500,
	filter.TierExtreme:  8000,
	filter.TierDeath:    9500,
}

var topRankBonus = [...]float64{0.1, 0.06, 0.045, 0.03, 0.01}

type Input struct {
	Tier   filter.Tier
	Pro    bool
	Ranked bool
	// Rank is zero based.
	Rank            int
	LeaderboardSize int
	Distribution    *Distribution
	Time            float64
}

// Calculate returns the points for a run. The result is always within [0, MaxPoints].
func Calculate(in Input) float64 {
	if in.Distribution == nil || !in.Ranked || !in.Tier.HumanlyPossible() {
		return 0
	}
	if in.Time <= 0 || math.IsNaN(in.Time) || math.IsInf(in.Time, 0) || in.Rank < 0 {
		return 0
	}

	minimum := MinimumPoints(in.Tier, in.Pro)
	remaining := MaxPoints - minimum

	size := in.LeaderboardSize
	if size <= in.Rank {
		size = in.Rank + 1
	}

	var dist float64
	if size <= LowCompletionThreshold {
		dist = lowCompletion(in.Tier, in.Distribution.TopTime, in.Time)
	} else {
		dist = in.Distribution.Fraction(in.Time)
	}

	total := minimum + 0.25*remaining*RankFraction(size, in.Rank) + 0.75*remaining*dist
	if math.IsNaN(total) {
		return 0
	}
	return clamp(total, 0, MaxPoints)
}

// MinimumPoints is the floor awarded for completing a filter of the given tier.
func MinimumPoints(tier filter.Tier, pro bool) float64 {
	minimum, ok := tierMinimum[tier]
	if !ok {
		return 0
	}
	if pro {
		minimum += (MaxPoints - minimum) * 0.1
	}
	return minimum
}

// RankFraction rewards leaderboard position with a bonus that shrinks quickly past the top twenty.
func RankFraction(size, rank int) float64 {
	if size <= 0 || rank < 0 {
		return 0
	}
	r := float64(rank)
	out := 0.5 * (1 - r/float64(size))
	if rank < 100 {
		out += (100 - r) * 0.002
	}
	if rank < 20 {
		out += (20 - r) * 0.01
	}
	if rank < len(topRankBonus) {
		out += topRankBonus[rank]
	}
	return clamp(out, 0, 1)
}

func lowCompletion(tier filter.Tier, topTime, t float64) float64 {
	if topTime <= 0 {
		return 0
	}
	if t <= topTime {
		return 1
	}
	x := 2.1 - 0.25*float64(tier)
	y := 1 + math.Exp(-0.5*x)
	z := 1 + math.Exp(x*(t/topTime-1.5))
	return clamp(y/z, 0, 1)
}

// ValidatePoints rejects values that must never be persisted.
func ValidatePoints(p float64) error {
	switch {
	case math.IsNaN(p):
		return fmt.Errorf("%w: NaN", ErrInvalidPoints)
	case math.IsInf(p, 0):
		return fmt.Errorf("%w: infinite", ErrInvalidPoints)
	case p < 0:
		return fmt.Errorf("%w: negative %v", ErrInvalidPoints, p)
	case p > MaxPoints:
		return fmt.Errorf("%w: %v exceeds %v", ErrInvalidPoints, p, MaxPoints)
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
