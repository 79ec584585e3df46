package filter

import "context"

type Repository interface {
	GetByID(ctx context.Context, id int64) (Filter, bool, error)
	List(ctx context.Context) ([]Filter, error)
	Upsert(ctx context.Context, f Filter) error
}
