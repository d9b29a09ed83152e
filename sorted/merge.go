// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package sorted

import (
	"container/heap"
	"errors"
	"fmt"
	"iter"
)

// ErrNotAscending reports a source that yielded a value smaller than its
// previous one.
var ErrNotAscending = errors.New("sorted: source is not ascending")

// cursor is the head of one pulled source.
type cursor struct {
	value  uint32
	source int
	next   func() (uint32, bool)
}

// cursorHeap orders cursors by value, then by source index.
type cursorHeap []*cursor

func (h cursorHeap) Len() int { return len(h) }
func (h cursorHeap) Less(i, j int) bool {
	if h[i].value != h[j].value {
		return h[i].value < h[j].value
	}
	return h[i].source < h[j].source
}
func (h cursorHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *cursorHeap) Push(x any)   { *h = append(*h, x.(*cursor)) }
func (h *cursorHeap) Pop() any {
	old := *h
	n := len(old)
	c := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return c
}

// Merge returns the ascending union of seqs, yielding each value together
// with the index of the source that produced it. Equal values from several
// sources are all yielded, lowest source index first.
//
// Only the source whose value was yielded is advanced. Exhausted sources
// drop out; stopping the iteration early releases every source.
func Merge(seqs ...iter.Seq[uint32]) iter.Seq2[uint32, int] {
	return func(yield func(uint32, int) bool) {
		merge(seqs, nil, yield)
	}
}

// MergeStrict is Merge with the strictly ascending precondition checked.
// When a source repeats a value or goes backwards the iteration stops and *errp is set to an error
// wrapping ErrNotAscending. errp must not be nil.
func MergeStrict(errp *error, seqs ...iter.Seq[uint32]) iter.Seq2[uint32, int] {
	return func(yield func(uint32, int) bool) {
		*errp = nil
		merge(seqs, errp, yield)
	}
}

func merge(seqs []iter.Seq[uint32], errp *error, yield func(uint32, int) bool) {
	h := make(cursorHeap, 0, len(seqs))
	stops := make([]func(), 0, len(seqs))
	defer func() {
		for _, stop := range stops {
			stop()
		}
	}()

	for i, seq := range seqs {
		next, stop := iter.Pull(seq)
		stops = append(stops, stop)
		if v, ok := next(); ok {
			h = append(h, &cursor{value: v, source: i, next: next})
		}
	}
	heap.Init(&h)

	for h.Len() > 0 {
		c := h[0]
		if !yield(c.value, c.source) {
			return
		}
		prev := c.value
		v, ok := c.next()
		if !ok {
			heap.Pop(&h)
			continue
		}
		if errp != nil && v <= prev {
			*errp = fmt.Errorf("%w: source %d yielded %d after %d", ErrNotAscending, c.source, v, prev)
			return
		}
		c.value = v
		heap.Fix(&h, 0)
	}
}
