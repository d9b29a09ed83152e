// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package octree

import "sync"

// Node is one octree cell that can be streamed by a Loader.
//
// A Node must not be copied after its first load request.
type Node struct {
	// ID uniquely identifies the node within its octree.
	ID string

	// Path is the node's location relative to the loader base URL.
	Path string

	// ByteSize is the expected payload size in bytes, or 0 if unknown.
	ByteSize int

	// Level is the node depth; the root is level 0.
	Level int

	mu    sync.Mutex
	abort func()
}

// Abort cancels the node's in-flight download, if any. The pending request
// resolves as aborted once the worker acknowledges.
func (n *Node) Abort() {
	n.mu.Lock()
	f := n.abort
	n.mu.Unlock()
	if f != nil {
		f()
	}
}

// Pending reports whether the node has a download in flight.
func (n *Node) Pending() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.abort != nil
}

func (n *Node) setAbort(f func()) {
	n.mu.Lock()
	n.abort = f
	n.mu.Unlock()
}
