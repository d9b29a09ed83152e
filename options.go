// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pcview

import (
	"github.com/gogpu/pcview/modules"
	"github.com/gogpu/pcview/render"
)

// ViewOption configures a View during creation.
//
// Example:
//
//	// Default module list
//	view, err := pcview.NewView(ctx)
//
//	// Only the camera and the octree
//	view, err := pcview.NewView(ctx, pcview.WithModules(
//	    modules.CameraFactory,
//	    modules.TonemapFactory,
//	    modules.OctreeFactory,
//	))
type ViewOption func(*viewOptions)

// viewOptions holds optional configuration for View creation.
type viewOptions struct {
	factories []render.ModuleFactory
}

// defaultViewOptions returns the default view options.
func defaultViewOptions() viewOptions {
	return viewOptions{
		factories: modules.Default(),
	}
}

// WithModules replaces the module list. Modules update and render in the
// given order. Nil factories are skipped.
func WithModules(factories ...render.ModuleFactory) ViewOption {
	return func(o *viewOptions) {
		o.factories = o.factories[:0:0]
		for _, f := range factories {
			if f != nil {
				o.factories = append(o.factories, f)
			}
		}
	}
}
