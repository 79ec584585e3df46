package usecase

import (
	"math"
	"sort"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/filter"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/leaderboard"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/points"
)

// placement is where a run sits on one leaderboard. Rank is 1-based.
type placement struct {
	rank int
	size int
}

// scoreRun prices a run on a variant. A pro run also earns at least what the
// same run would earn on the nub board, once both boards have been fitted.
func scoreRun(f filter.Filter, variant filter.Variant, dist *points.Distribution, at placement, nubDist *points.Distribution, nubAt placement, t float64) float64 {
	p := points.Calculate(points.Input{
		Tier:            f.Tier(variant),
		Pro:             variant.IsPro(),
		Ranked:          f.Ranked(variant),
		Rank:            at.rank - 1,
		LeaderboardSize: at.size,
		Distribution:    dist,
		Time:            t,
	})
	if !variant.IsPro() || !f.Ranked(variant) || dist == nil || nubDist == nil {
		return p
	}

	nub := points.Calculate(points.Input{
		Tier:            f.Tier(filter.VariantNub),
		Pro:             false,
		Ranked:          f.Ranked(filter.VariantNub),
		Rank:            nubAt.rank - 1,
		LeaderboardSize: nubAt.size,
		Distribution:    nubDist,
		Time:            t,
	})
	return math.Max(p, nub)
}

// placeAmong returns where candidate would sit on a ranked board if it replaced
// the player's own row.
func placeAmong(board []leaderboard.Entry, playerID int64, candidate leaderboard.BestRecord) placement {
	ahead := sort.Search(len(board), func(i int) bool {
		return !leaderboard.Less(board[i].BestRecord, candidate)
	})
	size := len(board) + 1
	for i := range board {
		if board[i].PlayerID != playerID {
			continue
		}
		size--
		if i < ahead {
			ahead--
		}
		break
	}
	return placement{rank: ahead + 1, size: size}
}

// playerPriority grows with how far a player's points moved.
func playerPriority(delta float64) int64 {
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return 1
	}
	return 1 + int64(math.Ceil(math.Abs(delta)))
}
