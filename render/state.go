// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "github.com/go-gl/mathgl/mgl32"

// State is the application state a frame is rendered from.
//
// Sub-states are held by pointer. Modules detect changes by pointer identity
// (see ModuleState), so the application replaces a sub-state to signal a
// change instead of mutating it in place. A nil sub-state disables the
// modules that depend on it.
type State struct {
	Camera      *CameraState
	Output      *OutputState
	Clipping    *ClippingState
	Tonemapping *TonemapState
	Cube        *CubeState
	Watermark   *WatermarkState
	Octree      *OctreeState
}

// CameraState is a perspective camera.
type CameraState struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3

	// FovY is the vertical field of view in degrees.
	FovY float32

	Near float32
	Far  float32
}

// OutputState describes the render target.
type OutputState struct {
	Width  uint32
	Height uint32
}

// Aspect returns width / height, or 1 for an empty target.
func (o *OutputState) Aspect() float32 {
	if o == nil || o.Width == 0 || o.Height == 0 {
		return 1
	}
	return float32(o.Width) / float32(o.Height)
}

// ClipMode selects which side of the clipping planes is kept.
type ClipMode uint32

// Clip modes.
const (
	ClipDisabled ClipMode = iota
	// ClipInside keeps fragments on the positive side of every plane.
	ClipInside
	// ClipOutside keeps fragments on the negative side of any plane.
	ClipOutside
)

// MaxClipPlanes is the number of planes the clipping uniform block holds.
const MaxClipPlanes = 6

// ClippingState is a set of clipping planes. Each plane is (normal, d) with
// dot(normal, p) + d >= 0 on the positive side.
type ClippingState struct {
	Mode   ClipMode
	Planes []mgl32.Vec4

	// ShowPlanes draws the planes as translucent quads.
	ShowPlanes bool
	PlaneColor mgl32.Vec4
}

// TonemapMode selects the tonemapping operator.
type TonemapMode uint32

// Tonemapping operators.
const (
	TonemapNone TonemapMode = iota
	TonemapReinhard
	TonemapACES
	// TonemapLinearDepth visualises depth scaled by MaxLinearDepth.
	TonemapLinearDepth
)

// TonemapState configures the tonemapping module.
type TonemapState struct {
	Exposure       float32
	Mode           TonemapMode
	MaxLinearDepth float32
}

// CubeState is an axis aligned wireframe cube, usually the bounds of the
// loaded point cloud.
type CubeState struct {
	Center mgl32.Vec3
	Size   mgl32.Vec3
	Color  mgl32.Vec4
}

// WatermarkState places the watermark in the bottom right corner.
type WatermarkState struct {
	Color mgl32.Vec4

	// Scale is the watermark height as a fraction of the viewport height.
	Scale float32

	// Margin is the distance to the viewport edges in pixels.
	Margin float32
}

// HighlightMode selects how highlighted objects are drawn.
type HighlightMode uint32

// Highlight modes.
const (
	HighlightNone HighlightMode = iota
	// HighlightTint blends highlighted objects with HighlightColor.
	HighlightTint
	// HighlightOnly hides everything that is not highlighted.
	HighlightOnly
)

// OctreeState configures drawing of loaded octree nodes.
type OctreeState struct {
	// PointSize is the point diameter in pixels.
	PointSize float32

	// Highlight is the ascending set of highlighted object ids.
	Highlight      []uint32
	HighlightMode  HighlightMode
	HighlightColor mgl32.Vec4
}
