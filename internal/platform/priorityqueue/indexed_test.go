package priorityqueue

import "testing"

func TestIndexed_KeepsMaxPriorityOnRepush(t *testing.T) {
	t.Parallel()

	q := New[int64]()
	if !q.Push(42, 1) {
		t.Fatalf("expected first push to create an entry")
	}
	if q.Push(42, 5) || q.Push(42, 2) {
		t.Fatalf("expected repush to update in place")
	}
	if q.Len() != 1 {
		t.Fatalf("expected exactly one entry, got %d", q.Len())
	}

	key, priority, ok := q.Pop()
	if !ok || key != 42 || priority != 5 {
		t.Fatalf("unexpected pop: key=%d priority=%d ok=%v", key, priority, ok)
	}
	if _, _, ok := q.Pop(); ok {
		t.Fatalf("expected empty queue")
	}
}

func TestIndexed_PopsByPriorityThenInsertion(t *testing.T) {
	t.Parallel()

	q := New[string]()
	q.Push("a", 3)
	q.Push("b", 7)
	q.Push("c", 3)
	q.Push("d", 1)
	q.Push("d", 9)

	want := []string{"d", "b", "a", "c"}
	for i, w := range want {
		key, _, ok := q.Pop()
		if !ok || key != w {
			t.Fatalf("pop %d: got %q want %q", i, key, w)
		}
	}
}

func TestIndexed_ReprioritisedEntriesKeepHeapOrder(t *testing.T) {
	t.Parallel()

	q := New[int]()
	for i := 0; i < 50; i++ {
		q.Push(i, int64(i%7))
	}
	// raise every third key past the rest
	for i := 0; i < 50; i += 3 {
		q.Push(i, int64(100+i))
	}
	if q.Len() != 50 {
		t.Fatalf("expected 50 entries, got %d", q.Len())
	}

	key, p, ok := q.Pop()
	if !ok || key != 48 || p != 148 {
		t.Fatalf("unexpected first pop: key=%d priority=%d", key, p)
	}

	prev := p
	count := 1
	for q.Len() > 0 {
		_, p, _ := q.Pop()
		if p > prev {
			t.Fatalf("heap order violated: %d after %d", p, prev)
		}
		prev = p
		count++
	}
	if count != 50 {
		t.Fatalf("expected 50 entries, got %d", count)
	}
}
