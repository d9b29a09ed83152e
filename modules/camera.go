// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package modules

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/pcview/render"
	"github.com/gogpu/wgpu/hal"
)

// depthRemap maps OpenGL clip depth [-1, 1] to the WebGPU range [0, 1].
var depthRemap = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

type cameraDeps struct {
	camera *render.CameraState
	output *render.OutputState
}

// Camera writes the shared camera uniform buffer from the camera and output
// state.
type Camera struct {
	ctx   *render.Context
	ubo   *render.UniformBuffer
	state render.ModuleState[cameraDeps]
	lost  bool
}

// NewCamera returns the camera module of ctx.
func NewCamera(ctx *render.Context) (*Camera, error) {
	return &Camera{ctx: ctx, ubo: ctx.Camera()}, nil
}

// Name implements render.Module.
func (m *Camera) Name() string { return "camera" }

// Update writes the view and projection matrices when the camera or the
// output size changed. A failed upload is retried on the next call.
func (m *Camera) Update(state *render.State) error {
	if m.lost || state.Camera == nil {
		return nil
	}
	if !m.state.HasChanged(cameraDeps{state.Camera, state.Output}) {
		return nil
	}
	if err := m.write(state); err != nil {
		m.state.Reset()
		return err
	}
	return nil
}

func (m *Camera) write(state *render.State) error {
	mats := CameraMatrices(state.Camera, state.Output)
	p := m.ubo.Proxy()
	for _, err := range []error{
		p.SetMat4(render.CameraView, mats.View),
		p.SetMat4(render.CameraProjection, mats.Projection),
		p.SetMat4(render.CameraViewProjection, mats.ViewProjection),
		p.SetVec3(render.CameraPosition, state.Camera.Position),
		p.SetFloat(render.CameraNear, mats.Near),
		p.SetVec2(render.CameraViewportSize, viewport(state.Output)),
		p.SetFloat(render.CameraFar, mats.Far),
	} {
		if err != nil {
			return fmt.Errorf("camera: %w", err)
		}
	}
	_, err := m.ubo.Upload()
	return err
}

// Render draws nothing; the camera only feeds the frame uniforms.
func (m *Camera) Render(hal.RenderPassEncoder, *render.State) render.DrawStats {
	return render.DrawStats{}
}

// ContextLost forgets the uploaded state so the next context gets a full
// upload.
func (m *Camera) ContextLost() {
	m.lost = true
	m.state.Reset()
}

// Dispose does nothing: the camera buffer belongs to the context.
func (m *Camera) Dispose() {}

// Matrices are the transforms derived from a camera state.
type Matrices struct {
	View           mgl32.Mat4
	Projection     mgl32.Mat4
	ViewProjection mgl32.Mat4
	Near, Far      float32
}

// CameraMatrices builds a look-at view and a perspective projection with
// WebGPU depth range. Degenerate input is clamped: the field of view to
// [1, 179] degrees, near to a positive value, far beyond near, and a zero up
// vector to +Y.
func CameraMatrices(c *render.CameraState, out *render.OutputState) Matrices {
	fov := math32.Min(math32.Max(c.FovY, 1), 179)
	near := c.Near
	if near <= 0 {
		near = 0.1
	}
	far := c.Far
	if far <= near {
		far = near * 1000
	}
	up := c.Up
	if up.Len() == 0 {
		up = mgl32.Vec3{0, 1, 0}
	}
	view := mgl32.LookAtV(c.Position, c.Target, up)
	proj := depthRemap.Mul4(mgl32.Perspective(mgl32.DegToRad(fov), out.Aspect(), near, far))
	return Matrices{
		View:           view,
		Projection:     proj,
		ViewProjection: proj.Mul4(view),
		Near:           near,
		Far:            far,
	}
}

func viewport(out *render.OutputState) mgl32.Vec2 {
	if out == nil {
		return mgl32.Vec2{1, 1}
	}
	return mgl32.Vec2{float32(max(out.Width, 1)), float32(max(out.Height, 1))}
}
