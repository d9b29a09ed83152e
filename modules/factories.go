// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package modules

import "github.com/gogpu/pcview/render"

// Factories for every module, for use with pcview.NewView.
var (
	CameraFactory    render.ModuleFactory = func(c *render.Context) (render.Module, error) { return NewCamera(c) }
	ClippingFactory  render.ModuleFactory = func(c *render.Context) (render.Module, error) { return NewClipping(c) }
	TonemapFactory   render.ModuleFactory = func(c *render.Context) (render.Module, error) { return NewTonemap(c) }
	CubeFactory      render.ModuleFactory = func(c *render.Context) (render.Module, error) { return NewCube(c) }
	OctreeFactory    render.ModuleFactory = func(c *render.Context) (render.Module, error) { return NewOctree(c) }
	WatermarkFactory render.ModuleFactory = func(c *render.Context) (render.Module, error) { return NewWatermark(c) }
)

// Default returns the standard module list. The uniform-only modules come
// first; the watermark draws last, on top.
func Default() []render.ModuleFactory {
	return []render.ModuleFactory{
		CameraFactory,
		ClippingFactory,
		TonemapFactory,
		CubeFactory,
		OctreeFactory,
		WatermarkFactory,
	}
}
