// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package octree

import (
	"iter"

	"github.com/gogpu/pcview/sorted"
)

// UnionObjectIDs merges the object ids of several payloads into one
// ascending stream. Each id is yielded with the index of the payload it came
// from; an id shared by several payloads is yielded once per payload.
func UnionObjectIDs(payloads ...*Payload) iter.Seq2[uint32, int] {
	seqs := make([]iter.Seq[uint32], len(payloads))
	for i, p := range payloads {
		seqs[i] = sorted.Values(p.ObjectIDs)
	}
	return sorted.Merge(seqs...)
}

// HighlightedIDs yields the object ids of p that appear in highlight, which
// must be ascending.
func HighlightedIDs(p *Payload, highlight []uint32) iter.Seq[uint32] {
	return sorted.Include(sorted.Values(p.ObjectIDs), sorted.Values(highlight))
}

// VisibleIDs yields the object ids of p that do not appear in hidden, which
// must be ascending.
func VisibleIDs(p *Payload, hidden []uint32) iter.Seq[uint32] {
	return sorted.Exclude(sorted.Values(p.ObjectIDs), sorted.Values(hidden))
}
