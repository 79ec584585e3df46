package memory

import (
	"context"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/filter"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/points"
)

type DistributionRepository struct {
	scope
}

func (r *DistributionRepository) Get(_ context.Context, filterID int64, variant filter.Variant) (points.Distribution, bool, error) {
	var (
		out points.Distribution
		ok  bool
	)
	_ = r.read(func(st *state) error {
		out, ok = st.dists[distKey{filterID: filterID, variant: variant}]
		return nil
	})
	return out, ok, nil
}

func (r *DistributionRepository) Upsert(_ context.Context, d points.Distribution) error {
	if d.FittedAt.IsZero() {
		d.FittedAt = r.now()
	}
	return r.write(func(st *state) error {
		st.dists[distKey{filterID: d.FilterID, variant: d.Variant}] = d
		return nil
	})
}

func (r *DistributionRepository) IncrementPending(_ context.Context, filterID int64, variant filter.Variant) (int64, error) {
	var n int64
	err := r.write(func(st *state) error {
		key := distKey{filterID: filterID, variant: variant}
		st.pending[key]++
		n = st.pending[key]
		return nil
	})
	return n, err
}

func (r *DistributionRepository) ResetPending(_ context.Context, filterID int64, variant filter.Variant) error {
	return r.write(func(st *state) error {
		delete(st.pending, distKey{filterID: filterID, variant: variant})
		return nil
	})
}
