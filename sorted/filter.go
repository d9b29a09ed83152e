// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package sorted

import (
	"iter"
	"slices"
)

// Include yields the values of source that also appear in filter.
// Both sequences must be ascending.
func Include(source, filter iter.Seq[uint32]) iter.Seq[uint32] {
	return partition(source, filter, true)
}

// Exclude yields the values of source that do not appear in filter.
// Both sequences must be ascending.
func Exclude(source, filter iter.Seq[uint32]) iter.Seq[uint32] {
	return partition(source, filter, false)
}

// partition walks source once, keeping a forward-only cursor into filter.
func partition(source, filter iter.Seq[uint32], keep bool) iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		next, stop := iter.Pull(filter)
		defer stop()

		f, more := next()
		for v := range source {
			for more && f < v {
				f, more = next()
			}
			if (more && f == v) != keep {
				continue
			}
			if !yield(v) {
				return
			}
		}
	}
}

// Values returns an iterator over s. It is slices.Values specialised for
// id lists.
func Values(s []uint32) iter.Seq[uint32] {
	return slices.Values(s)
}

// IsAscending reports whether s is strictly ascending, i.e. sorted and free
// of duplicates.
func IsAscending(s []uint32) bool {
	for i := 1; i < len(s); i++ {
		if s[i] <= s[i-1] {
			return false
		}
	}
	return true
}

// Dedup sorts s in place, removes duplicates and returns the shortened
// slice.
func Dedup(s []uint32) []uint32 {
	slices.Sort(s)
	return slices.Compact(s)
}
