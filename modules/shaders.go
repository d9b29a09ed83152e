// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package modules

import _ "embed"

//go:embed shaders/frame.wgsl
var frameShader string

//go:embed shaders/cube.wgsl
var cubeShaderBody string

//go:embed shaders/planes.wgsl
var planesShaderBody string

//go:embed shaders/watermark.wgsl
var watermarkShaderBody string

//go:embed shaders/octree.wgsl
var octreeShaderBody string

// Complete shaders: the frame prelude followed by the module body.
var (
	cubeShader      = frameShader + cubeShaderBody
	planesShader    = frameShader + planesShaderBody
	watermarkShader = frameShader + watermarkShaderBody
	octreeShader    = frameShader + octreeShaderBody
)
