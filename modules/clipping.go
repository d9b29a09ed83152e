// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package modules

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/pcview/render"
	"github.com/gogpu/pcview/uniform"
	"github.com/gogpu/wgpu/hal"
)

var planesSchema = uniform.Schema{
	{Name: "color", Type: uniform.Vec4},
	{Name: "center", Type: uniform.Vec3},
	{Name: "extent", Type: uniform.Float},
}

const (
	planesColor = iota
	planesCenter
	planesExtent
)

// defaultPlaneExtent is the plane quad half-size without a cube state.
const defaultPlaneExtent = 10

type clippingDeps struct {
	clipping *render.ClippingState
	cube     *render.CubeState
}

// Clipping writes the shared clipping uniform buffer and optionally draws
// the clip planes as translucent quads.
type Clipping struct {
	ctx      *render.Context
	ubo      *render.UniformBuffer
	bin      *render.Bin
	planes   *render.UniformBuffer
	group    hal.BindGroup
	pipeline hal.RenderPipeline
	state    render.ModuleState[clippingDeps]
	count    uint32
	lost     bool
}

// NewClipping returns the clipping module of ctx.
func NewClipping(ctx *render.Context) (*Clipping, error) {
	m := &Clipping{ctx: ctx, ubo: ctx.Clipping(), bin: ctx.NewBin("clipping")}
	if err := m.init(); err != nil {
		m.bin.Dispose()
		return nil, fmt.Errorf("clipping: %w", err)
	}
	return m, nil
}

func (m *Clipping) init() error {
	var err error
	if m.planes, err = m.ctx.NewUniformBuffer(m.bin, "clip planes", planesSchema); err != nil {
		return err
	}
	if m.group, err = m.ctx.NewUniformBindGroup(m.bin, "clip planes", m.planes); err != nil {
		return err
	}
	blend := gputypes.BlendStateAlpha()
	m.pipeline, err = m.ctx.NewPipeline(m.bin, render.PipelineDesc{
		Label:    "clip planes",
		Shader:   planesShader,
		Topology: gputypes.PrimitiveTopologyTriangleList,
		Blend:    &blend,
		Layouts:  []hal.BindGroupLayout{m.ctx.UniformLayout()},
	})
	return err
}

// Name implements render.Module.
func (m *Clipping) Name() string { return "clipping" }

// Update writes the clipping planes and, when they are shown, the plane
// quad uniforms.
func (m *Clipping) Update(state *render.State) error {
	if m.lost || !m.state.HasChanged(clippingDeps{state.Clipping, state.Cube}) {
		return nil
	}
	if err := m.write(state); err != nil {
		m.state.Reset()
		return err
	}
	return nil
}

func (m *Clipping) write(state *render.State) error {
	planes, mode := NormalizePlanes(state.Clipping)
	m.count = uint32(len(planes))

	p := m.ubo.Proxy()
	for i := range render.MaxClipPlanes {
		var v mgl32.Vec4
		if i < len(planes) {
			v = planes[i]
		}
		if err := p.SetVec4(render.ClippingPlane0+i, v); err != nil {
			return fmt.Errorf("clipping: %w", err)
		}
	}
	if err := p.SetUint(render.ClippingCount, m.count); err != nil {
		return fmt.Errorf("clipping: %w", err)
	}
	if err := p.SetUint(render.ClippingMode, uint32(mode)); err != nil {
		return fmt.Errorf("clipping: %w", err)
	}
	if _, err := m.ubo.Upload(); err != nil {
		return err
	}

	if state.Clipping == nil || !state.Clipping.ShowPlanes {
		return nil
	}
	center, extent := mgl32.Vec3{}, float32(defaultPlaneExtent)
	if c := state.Cube; c != nil {
		center = c.Center
		extent = math32.Max(math32.Max(c.Size.X(), c.Size.Y()), c.Size.Z())
	}
	q := m.planes.Proxy()
	if err := q.SetVec4(planesColor, state.Clipping.PlaneColor); err != nil {
		return fmt.Errorf("clipping: %w", err)
	}
	if err := q.SetVec3(planesCenter, center); err != nil {
		return fmt.Errorf("clipping: %w", err)
	}
	if err := q.SetFloat(planesExtent, extent); err != nil {
		return fmt.Errorf("clipping: %w", err)
	}
	_, err := m.planes.Upload()
	return err
}

// Render draws the planes as translucent quads when ShowPlanes is set.
func (m *Clipping) Render(pass hal.RenderPassEncoder, state *render.State) render.DrawStats {
	if m.lost || m.count == 0 || state.Clipping == nil || !state.Clipping.ShowPlanes {
		return render.DrawStats{}
	}
	pass.SetPipeline(m.pipeline)
	pass.SetBindGroup(0, m.ctx.FrameBindGroup(), nil)
	pass.SetBindGroup(1, m.group, nil)
	return render.Draw(pass, render.DrawArraysInstanced{
		Topology:  gputypes.PrimitiveTopologyTriangleList,
		Count:     6,
		Instances: m.count,
	})
}

// ContextLost drops the plane pipeline and forces a full upload.
func (m *Clipping) ContextLost() {
	m.lost = true
	m.bin.Forget()
	m.state.Reset()
	m.group, m.pipeline = nil, nil
}

// Dispose destroys the plane resources.
func (m *Clipping) Dispose() {
	m.bin.Dispose()
	m.group, m.pipeline = nil, nil
}

// NormalizePlanes returns at most MaxClipPlanes planes with unit normals and
// the effective mode. Planes with a zero normal are dropped. A nil state, or
// one without planes, disables clipping.
func NormalizePlanes(s *render.ClippingState) ([]mgl32.Vec4, render.ClipMode) {
	if s == nil || s.Mode == render.ClipDisabled {
		return nil, render.ClipDisabled
	}
	out := make([]mgl32.Vec4, 0, render.MaxClipPlanes)
	for _, pl := range s.Planes {
		if len(out) == render.MaxClipPlanes {
			break
		}
		n := math32.Sqrt(pl[0]*pl[0] + pl[1]*pl[1] + pl[2]*pl[2])
		if n == 0 || math32.IsNaN(n) || math32.IsInf(n, 0) {
			continue
		}
		out = append(out, pl.Mul(1/n))
	}
	if len(out) == 0 {
		return nil, render.ClipDisabled
	}
	return out, s.Mode
}
