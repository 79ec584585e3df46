package rating

import (
	"math"
	"sort"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/filter"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/leaderboard"
)

// DecayFactor is applied once per position of a player's sorted points.
const DecayFactor = 0.975

// Aggregate sums points sorted descending, weighting the n-th value by DecayFactor^n.
func Aggregate(points []float64) float64 {
	if len(points) == 0 {
		return 0
	}
	sorted := append([]float64(nil), points...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	total := 0.0
	weight := 1.0
	for _, p := range sorted {
		total += p * weight
		weight *= DecayFactor
	}
	return total
}

// Compute builds both ratings of a player; nub and pro each decay over their own rows.
func Compute(playerID int64, rows []leaderboard.BestRecord) PlayerRating {
	nub := make([]float64, 0, len(rows))
	pro := make([]float64, 0, len(rows))
	for _, row := range rows {
		if row.PlayerID != playerID {
			continue
		}
		switch row.Variant {
		case filter.VariantPro:
			pro = append(pro, row.Points)
		case filter.VariantNub:
			nub = append(nub, row.Points)
		}
	}
	return PlayerRating{
		PlayerID: playerID,
		Nub:      Aggregate(nub),
		Pro:      Aggregate(pro),
	}
}

// Pooled orders a player's rows across both variants as their most valuable
// records: points descending, pro ahead of nub on equal points.
func Pooled(rows []leaderboard.BestRecord) []leaderboard.BestRecord {
	out := append([]leaderboard.BestRecord(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Variant != b.Variant {
			return a.Variant == filter.VariantPro
		}
		return a.FilterID < b.FilterID
	})
	return out
}

// WeightedRecord is a pooled row with its decayed contribution.
type WeightedRecord struct {
	leaderboard.BestRecord
	Weighted float64
}

// Weighted pools rows and attaches the decayed contribution of each, in Pooled order.
func Weighted(rows []leaderboard.BestRecord) []WeightedRecord {
	pooled := Pooled(rows)
	out := make([]WeightedRecord, len(pooled))
	for i, row := range pooled {
		out[i] = WeightedRecord{BestRecord: row, Weighted: row.Points * math.Pow(DecayFactor, float64(i))}
	}
	return out
}
