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

var cubeSchema = uniform.Schema{
	{Name: "model", Type: uniform.Mat4},
	{Name: "color", Type: uniform.Vec4},
}

const (
	cubeModel = iota
	cubeColor
)

// cubeCorners are the corners of the unit cube centered on the origin.
var cubeCorners = [8][3]float32{
	{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {-0.5, 0.5, -0.5},
	{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5},
}

// cubeEdges indexes the twelve edges as a line list.
var cubeEdges = [24]uint32{
	0, 1, 1, 2, 2, 3, 3, 0,
	4, 5, 5, 6, 6, 7, 7, 4,
	0, 4, 1, 5, 2, 6, 3, 7,
}

// Cube draws an axis aligned wireframe box.
type Cube struct {
	ctx      *render.Context
	bin      *render.Bin
	ubo      *render.UniformBuffer
	group    hal.BindGroup
	pipeline hal.RenderPipeline
	vertices hal.Buffer
	indices  hal.Buffer
	state    render.ModuleState[*render.CubeState]
	lost     bool
}

// NewCube creates the static cube geometry on ctx.
func NewCube(ctx *render.Context) (*Cube, error) {
	m := &Cube{ctx: ctx, bin: ctx.NewBin("cube")}
	if err := m.init(); err != nil {
		m.bin.Dispose()
		return nil, fmt.Errorf("cube: %w", err)
	}
	return m, nil
}

func (m *Cube) init() error {
	var err error
	vb := make([]byte, 0, len(cubeCorners)*12)
	for _, c := range cubeCorners {
		for _, f := range c {
			vb = binary.LittleEndian.AppendUint32(vb, math.Float32bits(f))
		}
	}
	if m.vertices, err = m.bin.CreateBufferInit("cube vertices", gputypes.BufferUsageVertex, vb); err != nil {
		return err
	}
	ib := make([]byte, 0, len(cubeEdges)*4)
	for _, i := range cubeEdges {
		ib = binary.LittleEndian.AppendUint32(ib, i)
	}
	if m.indices, err = m.bin.CreateBufferInit("cube indices", gputypes.BufferUsageIndex, ib); err != nil {
		return err
	}
	if m.ubo, err = m.ctx.NewUniformBuffer(m.bin, "cube", cubeSchema); err != nil {
		return err
	}
	if m.group, err = m.ctx.NewUniformBindGroup(m.bin, "cube", m.ubo); err != nil {
		return err
	}
	m.pipeline, err = m.ctx.NewPipeline(m.bin, render.PipelineDesc{
		Label:  "cube",
		Shader: cubeShader,
		Buffers: []gputypes.VertexBufferLayout{{
			ArrayStride: 12,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			},
		}},
		Topology:   gputypes.PrimitiveTopologyLineList,
		DepthWrite: true,
		Layouts:    []hal.BindGroupLayout{m.ctx.UniformLayout()},
	})
	return err
}

// Name implements render.Module.
func (m *Cube) Name() string { return "cube" }

// Update writes the cube model matrix and color.
func (m *Cube) Update(state *render.State) error {
	if m.lost || state.Cube == nil || !m.state.HasChanged(state.Cube) {
		return nil
	}
	if err := m.write(state.Cube); err != nil {
		m.state.Reset()
		return err
	}
	return nil
}

func (m *Cube) write(c *render.CubeState) error {
	model := mgl32.Translate3D(c.Center.X(), c.Center.Y(), c.Center.Z()).
		Mul4(mgl32.Scale3D(c.Size.X(), c.Size.Y(), c.Size.Z()))
	p := m.ubo.Proxy()
	if err := p.SetMat4(cubeModel, model); err != nil {
		return fmt.Errorf("cube: %w", err)
	}
	if err := p.SetVec4(cubeColor, c.Color); err != nil {
		return fmt.Errorf("cube: %w", err)
	}
	_, err := m.ubo.Upload()
	return err
}

// Render draws the cube edges as a line list.
func (m *Cube) Render(pass hal.RenderPassEncoder, state *render.State) render.DrawStats {
	if m.lost || state.Cube == nil {
		return render.DrawStats{}
	}
	pass.SetPipeline(m.pipeline)
	pass.SetBindGroup(0, m.ctx.FrameBindGroup(), nil)
	pass.SetBindGroup(1, m.group, nil)
	pass.SetVertexBuffer(0, m.vertices, 0)
	return render.Draw(pass, render.DrawElements{
		Topology: gputypes.PrimitiveTopologyLineList,
		Index:    m.indices,
		Count:    uint32(len(cubeEdges)),
	})
}

// ContextLost drops the cube's GPU handles.
func (m *Cube) ContextLost() {
	m.lost = true
	m.bin.Forget()
	m.state.Reset()
}

// Dispose destroys the cube geometry and pipeline.
func (m *Cube) Dispose() { m.bin.Dispose() }
