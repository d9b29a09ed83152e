// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "github.com/gogpu/pcview/uniform"

// CameraSchema is the shared camera block, bound at group 0 binding 0.
//
//	struct Camera {
//	    view: mat4x4<f32>,
//	    projection: mat4x4<f32>,
//	    viewProjection: mat4x4<f32>,
//	    position: vec3<f32>,
//	    near: f32,
//	    viewportSize: vec2<f32>,
//	    far: f32,
//	}
var CameraSchema = uniform.Schema{
	{Name: "view", Type: uniform.Mat4},
	{Name: "projection", Type: uniform.Mat4},
	{Name: "viewProjection", Type: uniform.Mat4},
	{Name: "position", Type: uniform.Vec3},
	{Name: "near", Type: uniform.Float},
	{Name: "viewportSize", Type: uniform.Vec2},
	{Name: "far", Type: uniform.Float},
}

// Field indices into CameraSchema.
const (
	CameraView = iota
	CameraProjection
	CameraViewProjection
	CameraPosition
	CameraNear
	CameraViewportSize
	CameraFar
)

// ClippingSchema is the shared clipping block, bound at group 0 binding 1.
// The six planes match array<vec4<f32>, 6> in WGSL.
//
//	struct Clipping {
//	    planes: array<vec4<f32>, 6>,
//	    count: u32,
//	    mode: u32,
//	}
var ClippingSchema = uniform.Schema{
	{Name: "plane0", Type: uniform.Vec4},
	{Name: "plane1", Type: uniform.Vec4},
	{Name: "plane2", Type: uniform.Vec4},
	{Name: "plane3", Type: uniform.Vec4},
	{Name: "plane4", Type: uniform.Vec4},
	{Name: "plane5", Type: uniform.Vec4},
	{Name: "count", Type: uniform.Uint},
	{Name: "mode", Type: uniform.Uint},
}

// Field indices into ClippingSchema.
const (
	ClippingPlane0 = iota
	ClippingCount  = ClippingPlane0 + MaxClipPlanes
	ClippingMode   = ClippingCount + 1
)

// TonemapSchema is the shared tonemapping block, bound at group 0 binding 2.
//
//	struct Tonemap {
//	    exposure: f32,
//	    mode: u32,
//	    maxLinearDepth: f32,
//	}
var TonemapSchema = uniform.Schema{
	{Name: "exposure", Type: uniform.Float},
	{Name: "mode", Type: uniform.Uint},
	{Name: "maxLinearDepth", Type: uniform.Float},
}

// Field indices into TonemapSchema.
const (
	TonemapFieldExposure = iota
	TonemapFieldMode
	TonemapFieldMaxLinearDepth
)
