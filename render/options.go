// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "github.com/gogpu/gputypes"

// ContextOption configures a Context.
type ContextOption func(*contextOptions)

type contextOptions struct {
	surfaceFormat gputypes.TextureFormat
	depthFormat   gputypes.TextureFormat
	sampleCount   uint32
	spirv         bool
}

func defaultContextOptions() contextOptions {
	return contextOptions{
		surfaceFormat: gputypes.TextureFormatBGRA8Unorm,
		depthFormat:   gputypes.TextureFormatDepth24Plus,
		sampleCount:   1,
	}
}

// WithSurfaceFormat sets the color target format of every pipeline.
func WithSurfaceFormat(f gputypes.TextureFormat) ContextOption {
	return func(o *contextOptions) {
		if f != gputypes.TextureFormatUndefined {
			o.surfaceFormat = f
		}
	}
}

// WithDepthFormat sets the depth attachment format. Undefined disables depth
// testing.
func WithDepthFormat(f gputypes.TextureFormat) ContextOption {
	return func(o *contextOptions) { o.depthFormat = f }
}

// WithSampleCount sets the MSAA sample count. Values below 1 are ignored.
func WithSampleCount(n uint32) ContextOption {
	return func(o *contextOptions) {
		if n >= 1 {
			o.sampleCount = n
		}
	}
}

// WithSPIRV compiles WGSL to SPIR-V with naga before creating shader
// modules, for backends without a WGSL front end.
func WithSPIRV(enabled bool) ContextOption {
	return func(o *contextOptions) { o.spirv = enabled }
}
