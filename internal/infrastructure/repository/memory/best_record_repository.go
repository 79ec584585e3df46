package memory

import (
	"context"
	"sort"
	"time"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/filter"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/leaderboard"
)

type BestRecordRepository struct {
	scope
}

func (r *BestRecordRepository) Get(_ context.Context, filterID, playerID int64, variant filter.Variant) (leaderboard.BestRecord, bool, error) {
	var (
		out leaderboard.BestRecord
		ok  bool
	)
	_ = r.read(func(st *state) error {
		out, ok = st.best[bestKey{filterID: filterID, playerID: playerID, variant: variant}]
		return nil
	})
	return out, ok, nil
}

// Lock is a no-op: transactions already hold the store exclusively.
func (r *BestRecordRepository) Lock(context.Context, int64, int64) error {
	return nil
}

func (r *BestRecordRepository) Upsert(_ context.Context, row leaderboard.BestRecord) error {
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = r.now()
	}
	return r.write(func(st *state) error {
		st.best[bestKey{filterID: row.FilterID, playerID: row.PlayerID, variant: row.Variant}] = row
		return nil
	})
}

func (r *BestRecordRepository) Delete(_ context.Context, filterID, playerID int64, variant filter.Variant) error {
	return r.write(func(st *state) error {
		delete(st.best, bestKey{filterID: filterID, playerID: playerID, variant: variant})
		return nil
	})
}

func (r *BestRecordRepository) ListRanked(ctx context.Context, filterID int64, variant filter.Variant, offset, limit int) ([]leaderboard.Entry, error) {
	all, err := r.ListAllRanked(ctx, filterID, variant)
	if err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []leaderboard.Entry{}, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}

func (r *BestRecordRepository) ListAllRanked(_ context.Context, filterID int64, variant filter.Variant) ([]leaderboard.Entry, error) {
	var rows []leaderboard.BestRecord
	_ = r.read(func(st *state) error {
		rows = collectBoard(st, filterID, variant)
		return nil
	})
	sort.Slice(rows, func(i, j int) bool { return leaderboard.Less(rows[i], rows[j]) })

	out := make([]leaderboard.Entry, len(rows))
	for i, row := range rows {
		out[i] = leaderboard.Entry{BestRecord: row, Rank: i + 1}
	}
	return out, nil
}

func (r *BestRecordRepository) Size(_ context.Context, filterID int64, variant filter.Variant) (int, error) {
	n := 0
	_ = r.read(func(st *state) error {
		n = len(collectBoard(st, filterID, variant))
		return nil
	})
	return n, nil
}

func (r *BestRecordRepository) RankOf(_ context.Context, filterID int64, variant filter.Variant, playerID int64, t float64, submittedAt time.Time, recordID int64) (int, error) {
	candidate := leaderboard.BestRecord{Time: t, SubmittedAt: submittedAt, RecordID: recordID}
	rank := 1
	_ = r.read(func(st *state) error {
		for _, row := range collectBoard(st, filterID, variant) {
			if row.PlayerID != playerID && leaderboard.Less(row, candidate) {
				rank++
			}
		}
		return nil
	})
	return rank, nil
}

func (r *BestRecordRepository) UpdatePoints(_ context.Context, updates []leaderboard.PointsUpdate) error {
	now := r.now()
	return r.write(func(st *state) error {
		for _, u := range updates {
			key := bestKey{filterID: u.FilterID, playerID: u.PlayerID, variant: u.Variant}
			row, ok := st.best[key]
			if !ok || row.RecordID != u.RecordID {
				continue
			}
			row.Points = u.Points
			row.UpdatedAt = now
			st.best[key] = row
		}
		return nil
	})
}

func (r *BestRecordRepository) ListByPlayer(_ context.Context, playerID int64) ([]leaderboard.BestRecord, error) {
	var out []leaderboard.BestRecord
	_ = r.read(func(st *state) error {
		for key, row := range st.best {
			if key.playerID == playerID {
				out = append(out, row)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].FilterID != out[j].FilterID {
			return out[i].FilterID < out[j].FilterID
		}
		return out[i].Variant < out[j].Variant
	})
	return out, nil
}

func (r *BestRecordRepository) Quarantine(_ context.Context, row leaderboard.BestRecord, reason string) error {
	now := r.now()
	return r.write(func(st *state) error {
		key := bestKey{filterID: row.FilterID, playerID: row.PlayerID, variant: row.Variant}
		if current, ok := st.best[key]; !ok || current.RecordID != row.RecordID {
			return nil
		}
		delete(st.best, key)
		st.quarantine = append(st.quarantine, leaderboard.Quarantined{
			BestRecord:    row,
			Reason:        reason,
			QuarantinedAt: now,
		})
		return nil
	})
}

func collectBoard(st *state, filterID int64, variant filter.Variant) []leaderboard.BestRecord {
	var rows []leaderboard.BestRecord
	for key, row := range st.best {
		if key.filterID == filterID && key.variant == variant {
			rows = append(rows, row)
		}
	}
	return rows
}
