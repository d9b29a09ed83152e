// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package octree streams point-cloud octree nodes from a remote store.
//
// A Loader owns one background worker goroutine. Callers issue loads keyed by
// node id; the worker downloads and decodes each node concurrently and
// answers with exactly one terminal response per load: loaded, aborted or
// error. Responses may arrive in any order and are routed back by id.
//
//	loader, err := octree.NewLoader("https://example.com/cloud/",
//	    octree.WithConcurrency(8),
//	    octree.WithCache(256<<20),
//	)
//	if err != nil {
//	    return err
//	}
//	defer loader.Dispose()
//
//	payload, err := loader.Load(ctx, node, "3")
//	switch {
//	case err != nil:
//	    // transport or decode failure, skip or retry later
//	case payload == nil:
//	    // aborted, do not retry automatically
//	default:
//	    // upload payload.Vertices to the GPU
//	}
//
// Cancellation is cooperative. Node.Abort and Loader.AbortAll ask the worker
// to stop; the pending request resolves once the worker acknowledges.
//
// Decoded payloads carry their object ids as ascending, duplicate-free
// lists, so cross-node queries (UnionObjectIDs, HighlightedIDs, VisibleIDs)
// stream through package sorted without building a global id set.
package octree
