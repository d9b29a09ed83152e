// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// PipelineDesc describes a module pipeline. Bind group 0 is always the
// frame group; Layouts lists the groups that follow it.
type PipelineDesc struct {
	Label string

	// Shader is the WGSL source. It is cached in the context under Program,
	// or under Label when Program is empty.
	Shader  string
	Program string

	// VertexEntry and FragmentEntry default to vs_main and fs_main.
	VertexEntry   string
	FragmentEntry string

	Buffers  []gputypes.VertexBufferLayout
	Topology gputypes.PrimitiveTopology
	CullMode gputypes.CullMode

	// Blend is nil for opaque output.
	Blend *gputypes.BlendState

	// DepthWrite and DepthCompare apply when the context has a depth
	// format. DepthCompare defaults to LessEqual.
	DepthWrite   bool
	DepthCompare gputypes.CompareFunction

	Layouts []hal.BindGroupLayout
}

// NewPipeline creates a render pipeline and its layout in bin.
func (c *Context) NewPipeline(bin *Bin, d PipelineDesc) (hal.RenderPipeline, error) {
	program := d.Program
	if program == "" {
		program = d.Label
	}
	shader, err := c.Program(program, d.Shader)
	if err != nil {
		return nil, fmt.Errorf("create %s pipeline: %w", d.Label, err)
	}
	layouts := append([]hal.BindGroupLayout{c.frameLayout}, d.Layouts...)
	layout, err := bin.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            d.Label,
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s pipeline: %w", d.Label, err)
	}

	vs, fs := d.VertexEntry, d.FragmentEntry
	if vs == "" {
		vs = "vs_main"
	}
	if fs == "" {
		fs = "fs_main"
	}

	desc := &hal.RenderPipelineDescriptor{
		Label:  d.Label,
		Layout: layout,
		Vertex: hal.VertexState{
			Module:     shader,
			EntryPoint: vs,
			Buffers:    d.Buffers,
		},
		Primitive: gputypes.PrimitiveState{
			Topology:  d.Topology,
			FrontFace: gputypes.FrontFaceCCW,
			CullMode:  d.CullMode,
		},
		Multisample: gputypes.MultisampleState{
			Count: c.opts.sampleCount,
			Mask:  0xFFFFFFFF,
		},
		Fragment: &hal.FragmentState{
			Module:     shader,
			EntryPoint: fs,
			Targets: []gputypes.ColorTargetState{{
				Format:    c.opts.surfaceFormat,
				Blend:     d.Blend,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
	}
	if c.opts.depthFormat != gputypes.TextureFormatUndefined {
		compare := d.DepthCompare
		if compare == gputypes.CompareFunctionUndefined {
			compare = gputypes.CompareFunctionLessEqual
		}
		desc.DepthStencil = &hal.DepthStencilState{
			Format:            c.opts.depthFormat,
			DepthWriteEnabled: d.DepthWrite,
			DepthCompare:      compare,
		}
	}
	pipeline, err := bin.CreateRenderPipeline(desc)
	if err != nil {
		return nil, fmt.Errorf("create %s pipeline: %w", d.Label, err)
	}
	return pipeline, nil
}
