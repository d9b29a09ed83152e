// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package sorted provides lazy iterators over ascending uint32 sequences.
//
// Octree nodes carry their object ids as ascending, duplicate-free lists.
// Merge combines several such lists into one ascending stream and reports
// which source each value came from; Include and Exclude filter a stream
// against another ascending list in a single forward pass.
//
// All functions assume ascending input. MergeStrict checks the
// precondition and reports ErrNotAscending instead of producing
// out-of-order output.
package sorted
