// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package octree

// RequestKind is the instruction a Request carries to the worker.
type RequestKind uint8

// Request kinds.
const (
	KindLoad RequestKind = iota + 1
	KindAbort
	KindAbortAll
	KindClose
)

// String returns the wire name of the request kind.
func (k RequestKind) String() string {
	switch k {
	case KindLoad:
		return "load"
	case KindAbort:
		return "abort"
	case KindAbortAll:
		return "abort_all"
	case KindClose:
		return "close"
	default:
		return "unknown"
	}
}

// Request is a message from the loader to its worker.
type Request struct {
	Kind RequestKind

	// ID is set for KindLoad and KindAbort.
	ID string

	// The remaining fields are set for KindLoad only.
	Version                 string
	URL                     string
	ByteSize                int
	SeparatePositionsBuffer bool
}

// ResponseKind is the terminal state a Response reports.
type ResponseKind uint8

// Response kinds.
const (
	KindLoaded ResponseKind = iota + 1
	KindAborted
	KindError
)

// String returns the wire name of the response kind.
func (k ResponseKind) String() string {
	switch k {
	case KindLoaded:
		return "loaded"
	case KindAborted:
		return "aborted"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Response is the worker's terminal answer to one load.
type Response struct {
	Kind ResponseKind
	ID   string

	// Payload is set for KindLoaded.
	Payload *Payload

	// Err is the failure reason for KindError.
	Err string
}
