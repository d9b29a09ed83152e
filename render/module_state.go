// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

// ModuleState remembers the last application state a module reacted to.
//
// T is usually a small struct of the State fields a module depends on. The
// comparison is shallow: pointer fields compare by identity, so callers
// signal a change by replacing a sub-state rather than mutating it.
//
// The zero value is ready to use and reports a change on the first call.
type ModuleState[T comparable] struct {
	last T
	set  bool
}

// HasChanged reports whether candidate differs from the stored baseline and
// stores it. The first call always reports true.
func (s *ModuleState[T]) HasChanged(candidate T) bool {
	if s.set && s.last == candidate {
		return false
	}
	s.last = candidate
	s.set = true
	return true
}

// Reset forgets the baseline so the next HasChanged reports true.
func (s *ModuleState[T]) Reset() {
	var zero T
	s.last = zero
	s.set = false
}
