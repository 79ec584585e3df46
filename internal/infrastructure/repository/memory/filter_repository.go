package memory

import (
	"context"
	"sort"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/filter"
)

type FilterRepository struct {
	scope
}

func (r *FilterRepository) GetByID(_ context.Context, id int64) (filter.Filter, bool, error) {
	var (
		out filter.Filter
		ok  bool
	)
	_ = r.read(func(st *state) error {
		out, ok = st.filters[id]
		return nil
	})
	return out, ok, nil
}

func (r *FilterRepository) List(_ context.Context) ([]filter.Filter, error) {
	var out []filter.Filter
	_ = r.read(func(st *state) error {
		out = make([]filter.Filter, 0, len(st.filters))
		for _, f := range st.filters {
			out = append(out, f)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *FilterRepository) Upsert(_ context.Context, f filter.Filter) error {
	if f.UpdatedAt.IsZero() {
		f.UpdatedAt = r.now()
	}
	return r.write(func(st *state) error {
		st.filters[f.ID] = f
		return nil
	})
}
