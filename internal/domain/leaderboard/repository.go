package leaderboard

import (
	"context"
	"time"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/filter"
)

type Repository interface {
	Get(ctx context.Context, filterID, playerID int64, variant filter.Variant) (BestRecord, bool, error)
	// Lock serializes best-record updates for a (filter, player) pair until the transaction ends.
	Lock(ctx context.Context, filterID, playerID int64) error
	Upsert(ctx context.Context, row BestRecord) error
	Delete(ctx context.Context, filterID, playerID int64, variant filter.Variant) error
	ListRanked(ctx context.Context, filterID int64, variant filter.Variant, offset, limit int) ([]Entry, error)
	ListAllRanked(ctx context.Context, filterID int64, variant filter.Variant) ([]Entry, error)
	Size(ctx context.Context, filterID int64, variant filter.Variant) (int, error)
	// RankOf returns the 1-based rank a run would hold among the current rows of other players.
	RankOf(ctx context.Context, filterID int64, variant filter.Variant, playerID int64, t float64, submittedAt time.Time, recordID int64) (int, error)
	UpdatePoints(ctx context.Context, updates []PointsUpdate) error
	ListByPlayer(ctx context.Context, playerID int64) ([]BestRecord, error)
	// Quarantine is a no-op when the slot no longer references row.RecordID.
	Quarantine(ctx context.Context, row BestRecord, reason string) error
}
