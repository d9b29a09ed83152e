// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package uniform

// DirtyRange is the smallest contiguous byte span modified since the last
// upload. Begin is inclusive, End exclusive; the range is empty when
// Begin >= End.
type DirtyRange struct {
	Begin int
	End   int
}

// IsEmpty reports whether nothing is pending.
func (d DirtyRange) IsEmpty() bool { return d.Begin >= d.End }

// Len returns the number of dirty bytes.
func (d DirtyRange) Len() int {
	if d.IsEmpty() {
		return 0
	}
	return d.End - d.Begin
}

// Expand grows the range to cover [begin, end). It never shrinks.
func (d *DirtyRange) Expand(begin, end int) {
	if begin >= end {
		return
	}
	if d.IsEmpty() {
		d.Begin, d.End = begin, end
		return
	}
	d.Begin = min(d.Begin, begin)
	d.End = max(d.End, end)
}

// Clear empties the range, leaving the zero DirtyRange. Call it after a
// successful upload.
func (d *DirtyRange) Clear() {
	d.Begin, d.End = 0, 0
}

// MarkAll covers the whole buffer of the given size.
func (d *DirtyRange) MarkAll(size int) {
	d.Begin, d.End = 0, size
}
