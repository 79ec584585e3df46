package recalc

import "context"

type Kind string

const (
	KindFilter Kind = "filter"
	KindPlayer Kind = "player"
)

func (k Kind) Valid() bool {
	return k == KindFilter || k == KindPlayer
}

// Item is a pending unit of work. Higher priority pops first.
type Item struct {
	Key      int64
	Priority int64
}

// Queue is a max-priority set with unique keys. Pushing a pending key keeps
// the higher of the two priorities instead of adding a second entry.
type Queue interface {
	Push(ctx context.Context, key, priority int64) error
	Pop(ctx context.Context) (Item, bool, error)
	Len(ctx context.Context) (int, error)
}
