// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package modules implements the pcview render modules.
//
// Camera, Clipping and Tonemap own the shared uniform buffers of the frame
// bind group and draw nothing themselves, except Clipping when plane
// visualisation is enabled. Cube, Octree and Watermark draw geometry.
//
// All modules follow the render.Module protocol: constructors allocate
// static resources, Update writes uniforms only when the state they depend
// on changed, and Render never writes uniforms.
package modules
