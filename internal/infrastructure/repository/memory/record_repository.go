package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/filter"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/record"
)

type RecordRepository struct {
	scope
}

func (r *RecordRepository) Insert(_ context.Context, in record.NewRecord) (record.Record, error) {
	var out record.Record
	err := r.write(func(st *state) error {
		st.nextRecordID++
		out = record.Record{
			ID:          st.nextRecordID,
			PlayerID:    in.PlayerID,
			FilterID:    in.FilterID,
			Time:        in.Time,
			Teleports:   in.Teleports,
			Styles:      in.Styles,
			Status:      in.Status,
			SubmittedAt: in.SubmittedAt,
		}
		if out.SubmittedAt.IsZero() {
			out.SubmittedAt = r.now()
		}
		st.records[out.ID] = out
		return nil
	})
	return out, err
}

func (r *RecordRepository) GetByID(_ context.Context, id int64) (record.Record, bool, error) {
	var (
		out record.Record
		ok  bool
	)
	_ = r.read(func(st *state) error {
		out, ok = st.records[id]
		return nil
	})
	return out, ok, nil
}

// GetByIDForUpdate is GetByID: transactions already hold the store exclusively.
func (r *RecordRepository) GetByIDForUpdate(ctx context.Context, id int64) (record.Record, bool, error) {
	return r.GetByID(ctx, id)
}

func (r *RecordRepository) UpdateStatus(_ context.Context, id int64, status record.Status) error {
	return r.write(func(st *state) error {
		rec, ok := st.records[id]
		if !ok {
			return fmt.Errorf("record %d not found", id)
		}
		rec.Status = status
		st.records[id] = rec
		return nil
	})
}

func (r *RecordRepository) BestNormal(_ context.Context, filterID, playerID int64, variant filter.Variant) (record.Record, bool, error) {
	var (
		best  record.Record
		found bool
	)
	_ = r.read(func(st *state) error {
		for _, rec := range st.records {
			if rec.FilterID != filterID || rec.PlayerID != playerID || !rec.Qualifies(variant) {
				continue
			}
			if !found || fasterRecord(rec, best) {
				best, found = rec, true
			}
		}
		return nil
	})
	return best, found, nil
}

func (r *RecordRepository) ListByPlayer(_ context.Context, playerID int64) ([]record.Record, error) {
	var out []record.Record
	_ = r.read(func(st *state) error {
		for _, rec := range st.records {
			if rec.PlayerID == playerID {
				out = append(out, rec)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func fasterRecord(a, b record.Record) bool {
	if a.Time != b.Time {
		return a.Time < b.Time
	}
	if !a.SubmittedAt.Equal(b.SubmittedAt) {
		return a.SubmittedAt.Before(b.SubmittedAt)
	}
	return a.ID < b.ID
}
