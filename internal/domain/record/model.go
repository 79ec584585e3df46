package record

import (
	"time"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/filter"
)

// Styles is a bit set of movement styles a run was played with.
type Styles uint32

const (
	StyleAutoBhop Styles = 1 << iota
	StyleLegacyJump
	StyleCrouchBoost
)

const knownStyles = StyleAutoBhop | StyleLegacyJump | StyleCrouchBoost

func (s Styles) Valid() bool {
	return s&^knownStyles == 0
}

func (s Styles) Has(style Styles) bool {
	return s&style != 0
}

// Record is a single submitted run. Only Status ever changes after insert.
type Record struct {
	ID          int64
	PlayerID    int64
	FilterID    int64
	Time        float64
	Teleports   int
	Styles      Styles
	Status      Status
	SubmittedAt time.Time
}

// Qualifies reports whether the record counts towards the variant's leaderboard.
func (r Record) Qualifies(v filter.Variant) bool {
	return r.Status.Ranked() && v.Accepts(r.Teleports)
}

type NewRecord struct {
	PlayerID    int64
	FilterID    int64
	Time        float64
	Teleports   int
	Styles      Styles
	Status      Status
	SubmittedAt time.Time
}
