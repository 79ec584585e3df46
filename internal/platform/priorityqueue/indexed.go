// Package priorityqueue provides a max-priority queue with unique keys and
// in-place reprioritisation.
package priorityqueue

import "container/heap"

type entry[K comparable] struct {
	key      K
	priority int64
	seq      uint64
}

// Indexed keeps entries in a binary heap and tracks the heap slot of every key,
// so raising a pending key's priority costs O(log n). It is not safe for
// concurrent use.
type Indexed[K comparable] struct {
	h   entryHeap[K]
	seq uint64
}

func New[K comparable]() *Indexed[K] {
	return &Indexed[K]{h: entryHeap[K]{slots: make(map[K]int)}}
}

// Push adds key or, if it is already queued, raises its priority to the higher
// of the two values. It reports whether a new entry was created.
func (q *Indexed[K]) Push(key K, priority int64) bool {
	if slot, ok := q.h.slots[key]; ok {
		e := q.h.items[slot]
		if priority > e.priority {
			e.priority = priority
			heap.Fix(&q.h, slot)
		}
		return false
	}
	q.seq++
	heap.Push(&q.h, &entry[K]{key: key, priority: priority, seq: q.seq})
	return true
}

// Pop removes the highest priority entry. Equal priorities pop in insertion order.
func (q *Indexed[K]) Pop() (K, int64, bool) {
	if len(q.h.items) == 0 {
		var zero K
		return zero, 0, false
	}
	e := heap.Pop(&q.h).(*entry[K])
	return e.key, e.priority, true
}

func (q *Indexed[K]) Len() int {
	return len(q.h.items)
}

type entryHeap[K comparable] struct {
	items []*entry[K]
	slots map[K]int
}

func (h entryHeap[K]) Len() int { return len(h.items) }

func (h entryHeap[K]) Less(i, j int) bool {
	a, b := h.items[i], h.items[j]
	if a.priority != b.priority {
		return a.priority > b.priority
	}
	return a.seq < b.seq
}

func (h entryHeap[K]) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.slots[h.items[i].key] = i
	h.slots[h.items[j].key] = j
}

func (h *entryHeap[K]) Push(x any) {
	e := x.(*entry[K])
	h.slots[e.key] = len(h.items)
	h.items = append(h.items, e)
}

func (h *entryHeap[K]) Pop() any {
	last := len(h.items) - 1
	e := h.items[last]
	h.items[last] = nil
	h.items = h.items[:last]
	delete(h.slots, e.key)
	return e
}
