// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package pcview renders streamed point cloud octrees on a host-provided GPU
// device.
//
// # Overview
//
// pcview is built from small packages:
//
//   - octree: the NodeLoader that streams and decodes octree nodes
//   - uniform: std140 uniform block proxies with dirty range tracking
//   - sorted: merge and filter iterators over ascending id streams
//   - render: the GPU context and the render module lifecycle protocol
//   - modules: camera, clipping, cube, octree, tonemap and watermark modules
//
// A View ties them together: it owns the modules built on a render.Context
// and runs one frame at a time.
//
// # Quick Start
//
//	ctx, err := render.NewContextFromProvider(provider)
//	if err != nil {
//	    return err
//	}
//	view, err := pcview.NewView(ctx)
//	if err != nil {
//	    return err
//	}
//	defer view.Dispose()
//
//	// per frame, inside a render pass
//	if err := view.Frame(pass, state); err != nil {
//	    return err
//	}
//
// # Frame Ordering
//
// Frame calls Update on every module before calling Render on any of them,
// so uniform buffers shared between modules are uploaded before the first
// draw that reads them.
//
// # Context Loss
//
// After the device is lost, call LoseContext, create a new render.Context
// and pass it to Restore. Module state is reset, so the first frame after
// restore uploads every uniform buffer in full.
package pcview

// Version is the current version of the library.
const Version = "0.1.0"
