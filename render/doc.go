// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render defines the lifecycle protocol shared by pcview render
// modules and the GPU context they are built on.
//
// # Key Principle
//
// pcview RECEIVES a GPU device from the host application, it does NOT create
// its own. A [Context] wraps the host's hal.Device and hal.Queue, either
// directly via [NewContext] or from a gpucontext.DeviceProvider via
// [NewContextFromProvider].
//
// # Module Lifecycle
//
// Every [Module] follows the same protocol:
//
//   - Construction allocates static resources only (pipelines, geometry).
//   - Update gates on a [ModuleState], writes uniform proxies only when the
//     relevant application state changed, then uploads the dirty byte range.
//   - Render records draw commands. It never writes uniform buffers.
//   - ContextLost drops GPU handles without issuing GPU calls.
//   - Dispose destroys resources. It is idempotent and safe after ContextLost.
//
// Resources are tracked per module in a [Bin], which destroys them in reverse
// creation order.
//
// # Draw Variants
//
// [DrawParams] is a closed set: [DrawArrays], [DrawArraysInstanced],
// [DrawElements] and [DrawElementsInstanced]. [Draw] dispatches through the
// variant's own method, so there is no unknown-variant path.
package render
