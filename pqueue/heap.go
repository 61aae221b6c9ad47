// Package pqueue implements a binary min-heap keyed by an integer key, with
// O(log n) decrease-priority via an auxiliary key->index map. Grounded in
// the nodeHeap type in systems/astar.go, generalized from grid coordinates
// to an arbitrary non-negative integer key so the same heap serves both
// the construction-time portal-distance search and the game-time
// low-level A* search.
package pqueue

import "container/heap"

// entry is one (key, priority) pair tracked by the heap.
type entry struct {
	key      int
	priority float64
	seq      int // insertion order, for stable tie-breaking
	index    int // position in the backing slice; -1 once popped
}

// innerHeap implements container/heap.Interface.
type innerHeap []*entry

func (h innerHeap) Len() int { return len(h) }

func (h innerHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].seq < h[j].seq
}

func (h innerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *innerHeap) Push(x any) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *innerHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// Heap is a min-heap of (key, priority) pairs with no-op push-if-present
// semantics and O(log n) DecreasePriority.3.
type Heap struct {
	h       innerHeap
	byKey   map[int]*entry
	nextSeq int
}

// New creates an empty heap.
func New() *Heap {
	return &Heap{
		byKey: make(map[int]*entry),
	}
}

// Len returns the number of entries currently in the heap.
func (q *Heap) Len() int {
	return len(q.h)
}

// Contains reports whether key is currently in the heap.
func (q *Heap) Contains(key int) bool {
	_, ok := q.byKey[key]
	return ok
}

// Push inserts key with the given priority. A no-op if key is already
// present (use DecreasePriority to update it).
func (q *Heap) Push(key int, priority float64) {
	if _, ok := q.byKey[key]; ok {
		return
	}
	e := &entry{key: key, priority: priority, seq: q.nextSeq}
	q.nextSeq++
	q.byKey[key] = e
	heap.Push(&q.h, e)
}

// Pop removes and returns the key with the smallest priority. Ties break
// by insertion order. ok is false if the heap is empty.
func (q *Heap) Pop() (key int, priority float64, ok bool) {
	if len(q.h) == 0 {
		return 0, 0, false
	}
	e := heap.Pop(&q.h).(*entry)
	delete(q.byKey, e.key)
	return e.key, e.priority, true
}

// DecreasePriority lowers key's priority to newPriority. If key is absent
// it behaves like Push. If key is present but newPriority is not smaller
// than the current priority, it is a no-op.
func (q *Heap) DecreasePriority(key int, newPriority float64) {
	e, ok := q.byKey[key]
	if !ok {
		q.Push(key, newPriority)
		return
	}
	if newPriority >= e.priority {
		return
	}
	e.priority = newPriority
	heap.Fix(&q.h, e.index)
}
