package timer

import (
	"container/heap"

	"github.com/google/uuid"

	"github.com/oshokin/focus-alarm/internal/domain/alarm"
)

// entry is one armed trigger.
type entry struct {
	// req is the request the trigger was armed with.
	req alarm.Request
	// token correlates arm and fire log lines of the same trigger.
	token uuid.UUID
	// index is the position in the heap, maintained by Swap.
	index int
}

// pendingHeap is a min-heap of entries ordered by FireAt.
type pendingHeap []*entry

func (h pendingHeap) Len() int { return len(h) }

func (h pendingHeap) Less(i, j int) bool {
	return h[i].req.FireAt.Before(h[j].req.FireAt)
}

func (h pendingHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *pendingHeap) Push(x any) {
	e, _ := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *pendingHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]

	return e
}

// push adds e keeping the heap invariant.
func (h *pendingHeap) push(e *entry) {
	heap.Push(h, e)
}

// pop removes the earliest entry. The heap must not be empty.
func (h *pendingHeap) pop() *entry {
	e, _ := heap.Pop(h).(*entry)

	return e
}

// remove deletes e from the heap.
func (h *pendingHeap) remove(e *entry) {
	if e.index < 0 || e.index >= h.Len() {
		return
	}

	heap.Remove(h, e.index)
}

// peek returns the earliest entry without removing it.
func (h pendingHeap) peek() (*entry, bool) {
	if len(h) == 0 {
		return nil, false
	}

	return h[0], true
}
