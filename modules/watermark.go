// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package modules

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/pcview/render"
	"github.com/gogpu/pcview/uniform"
	"github.com/gogpu/wgpu/hal"
)

var watermarkSchema = uniform.Schema{
	{Name: "color", Type: uniform.Vec4},
	{Name: "rect", Type: uniform.Vec4},
}

const (
	watermarkColor = iota
	watermarkRect
)

// watermarkLogo is three dots in the unit square, as a triangle list.
var watermarkLogo = func() []float32 {
	const s = 0.3
	var v []float32
	for _, o := range [][2]float32{{0.1, 0.1}, {0.6, 0.1}, {0.35, 0.55}} {
		x0, y0, x1, y1 := o[0], o[1], o[0]+s, o[1]+s
		v = append(v, x0, y0, x1, y0, x1, y1, x0, y0, x1, y1, x0, y1)
	}
	return v
}()

type watermarkDeps struct {
	watermark *render.WatermarkState
	output    *render.OutputState
}

// Watermark draws a small logo in the bottom right corner of the viewport.
type Watermark struct {
	ctx      *render.Context
	bin      *render.Bin
	ubo      *render.UniformBuffer
	group    hal.BindGroup
	pipeline hal.RenderPipeline
	vertices hal.Buffer
	state    render.ModuleState[watermarkDeps]
	lost     bool
}

// NewWatermark creates the watermark geometry on ctx.
func NewWatermark(ctx *render.Context) (*Watermark, error) {
	m := &Watermark{ctx: ctx, bin: ctx.NewBin("watermark")}
	if err := m.init(); err != nil {
		m.bin.Dispose()
		return nil, fmt.Errorf("watermark: %w", err)
	}
	return m, nil
}

func (m *Watermark) init() error {
	var err error
	vb := make([]byte, 0, 4*len(watermarkLogo))
	for _, f := range watermarkLogo {
		vb = binary.LittleEndian.AppendUint32(vb, math.Float32bits(f))
	}
	if m.vertices, err = m.bin.CreateBufferInit("watermark vertices", gputypes.BufferUsageVertex, vb); err != nil {
		return err
	}
	if m.ubo, err = m.ctx.NewUniformBuffer(m.bin, "watermark", watermarkSchema); err != nil {
		return err
	}
	if m.group, err = m.ctx.NewUniformBindGroup(m.bin, "watermark", m.ubo); err != nil {
		return err
	}
	blend := gputypes.BlendStateAlpha()
	m.pipeline, err = m.ctx.NewPipeline(m.bin, render.PipelineDesc{
		Label:  "watermark",
		Shader: watermarkShader,
		Buffers: []gputypes.VertexBufferLayout{{
			ArrayStride: 8,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			},
		}},
		Topology:     gputypes.PrimitiveTopologyTriangleList,
		Blend:        &blend,
		DepthCompare: gputypes.CompareFunctionAlways,
		Layouts:      []hal.BindGroupLayout{m.ctx.UniformLayout()},
	})
	return err
}

// Name implements render.Module.
func (m *Watermark) Name() string { return "watermark" }

// Update places the watermark for the current output size.
func (m *Watermark) Update(state *render.State) error {
	if m.lost || state.Watermark == nil {
		return nil
	}
	if !m.state.HasChanged(watermarkDeps{state.Watermark, state.Output}) {
		return nil
	}
	if err := m.write(state); err != nil {
		m.state.Reset()
		return err
	}
	return nil
}

func (m *Watermark) write(state *render.State) error {
	p := m.ubo.Proxy()
	if err := p.SetVec4(watermarkColor, state.Watermark.Color); err != nil {
		return fmt.Errorf("watermark: %w", err)
	}
	if err := p.SetVec4(watermarkRect, WatermarkRect(state.Watermark, state.Output)); err != nil {
		return fmt.Errorf("watermark: %w", err)
	}
	_, err := m.ubo.Upload()
	return err
}

// Render draws the logo on top of the frame.
func (m *Watermark) Render(pass hal.RenderPassEncoder, state *render.State) render.DrawStats {
	if m.lost || state.Watermark == nil {
		return render.DrawStats{}
	}
	pass.SetPipeline(m.pipeline)
	pass.SetBindGroup(0, m.ctx.FrameBindGroup(), nil)
	pass.SetBindGroup(1, m.group, nil)
	pass.SetVertexBuffer(0, m.vertices, 0)
	return render.Draw(pass, render.DrawArrays{
		Topology: gputypes.PrimitiveTopologyTriangleList,
		Count:    uint32(len(watermarkLogo) / 2),
	})
}

// ContextLost drops the watermark's GPU handles.
func (m *Watermark) ContextLost() {
	m.lost = true
	m.bin.Forget()
	m.state.Reset()
}

// Dispose destroys the logo geometry and pipeline.
func (m *Watermark) Dispose() { m.bin.Dispose() }

// WatermarkRect returns the watermark rectangle (x, y, width, height) in
// normalized device coordinates. The logo is square in pixels.
func WatermarkRect(w *render.WatermarkState, out *render.OutputState) mgl32.Vec4 {
	vp := viewport(out)
	h := 2 * w.Scale
	width := h * vp.Y() / vp.X()
	mx := 2 * w.Margin / vp.X()
	my := 2 * w.Margin / vp.Y()
	return mgl32.Vec4{1 - mx - width, -1 + my, width, h}
}
