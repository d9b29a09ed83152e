// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package octree

import (
	"errors"
	"fmt"
)

// Loader errors.
var (
	// ErrLoaderClosed is returned for requests issued after Dispose.
	ErrLoaderClosed = errors.New("octree: loader closed")

	// ErrAlreadyPending is returned when a node id already has a load in
	// flight. The earlier request is left untouched.
	ErrAlreadyPending = errors.New("octree: node load already pending")

	// ErrLoadTimeout resolves a request that did not finish within the
	// loader's load timeout.
	ErrLoadTimeout = errors.New("octree: load timed out")

	// ErrInvalidNode is returned for a nil node or a node without an id.
	ErrInvalidNode = errors.New("octree: invalid node")

	// ErrInvalidBaseURL is returned by NewLoader for an unusable base URL.
	ErrInvalidBaseURL = errors.New("octree: invalid base url")
)

// Payload codec errors.
var (
	ErrBadMagic  = errors.New("octree: bad payload magic")
	ErrTruncated = errors.New("octree: truncated payload")
	ErrCorrupt   = errors.New("octree: corrupt payload")
)

// Fetch errors.
var (
	ErrHTTPStatus   = errors.New("octree: unexpected http status")
	ErrSizeMismatch = errors.New("octree: payload size mismatch")
)

// LoadError is the rejection of a single load. Reason is the worker's
// error message; the underlying error does not cross the worker boundary.
type LoadError struct {
	ID     string
	Reason string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("octree: load %s: %s", e.ID, e.Reason)
}
