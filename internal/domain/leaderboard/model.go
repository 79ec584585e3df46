package leaderboard

import (
	"time"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/filter"
)

// BestRecord caches a player's fastest normal run on one filter variant.
type BestRecord struct {
	FilterID    int64
	PlayerID    int64
	Variant     filter.Variant
	RecordID    int64
	Time        float64
	SubmittedAt time.Time
	Points      float64
	UpdatedAt   time.Time
}

// Entry is a best record with its 1-based position on the leaderboard.
type Entry struct {
	BestRecord
	Rank int
}

// PointsUpdate rewrites the points of a single row after a refit. It only
// applies while the row still references RecordID.
type PointsUpdate struct {
	FilterID int64
	PlayerID int64
	Variant  filter.Variant
	RecordID int64
	Points   float64
}

// Quarantined is a row pulled out of ranking after an integrity check failed.
type Quarantined struct {
	BestRecord
	Reason        string
	QuarantinedAt time.Time
}

// Less orders rows by time, then by earliest submission, then by record id.
func Less(a, b BestRecord) bool {
	if a.Time != b.Time {
		return a.Time < b.Time
	}
	if !a.SubmittedAt.Equal(b.SubmittedAt) {
		return a.SubmittedAt.Before(b.SubmittedAt)
	}
	return a.RecordID < b.RecordID
}
