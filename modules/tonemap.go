// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package modules

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/gogpu/pcview/render"
	"github.com/gogpu/wgpu/hal"
)

// defaultTonemap applies when the state has no tonemapping.
var defaultTonemap = render.TonemapState{Exposure: 1, Mode: render.TonemapNone, MaxLinearDepth: 1000}

// Tonemap writes the shared tonemapping uniform buffer. Shaders apply it in
// their fragment stage, so the module draws nothing.
type Tonemap struct {
	ubo   *render.UniformBuffer
	state render.ModuleState[*render.TonemapState]
	lost  bool
}

// NewTonemap returns the tonemapping module of ctx.
func NewTonemap(ctx *render.Context) (*Tonemap, error) {
	return &Tonemap{ubo: ctx.Tonemap()}, nil
}

// Name implements render.Module.
func (m *Tonemap) Name() string { return "tonemap" }

// Update writes the tonemap uniforms, using defaults when the state has
// no tonemapping.
func (m *Tonemap) Update(state *render.State) error {
	if m.lost || !m.state.HasChanged(state.Tonemapping) {
		return nil
	}
	if err := m.write(state); err != nil {
		m.state.Reset()
		return err
	}
	return nil
}

func (m *Tonemap) write(state *render.State) error {
	t := defaultTonemap
	if state.Tonemapping != nil {
		t = *state.Tonemapping
	}
	p := m.ubo.Proxy()
	if err := p.SetFloat(render.TonemapFieldExposure, math32.Max(t.Exposure, 0)); err != nil {
		return fmt.Errorf("tonemap: %w", err)
	}
	if err := p.SetUint(render.TonemapFieldMode, uint32(t.Mode)); err != nil {
		return fmt.Errorf("tonemap: %w", err)
	}
	if err := p.SetFloat(render.TonemapFieldMaxLinearDepth, math32.Max(t.MaxLinearDepth, 0)); err != nil {
		return fmt.Errorf("tonemap: %w", err)
	}
	_, err := m.ubo.Upload()
	return err
}

// Render draws nothing. Tonemapping runs in the other modules' fragment
// shaders.
func (m *Tonemap) Render(hal.RenderPassEncoder, *render.State) render.DrawStats {
	return render.DrawStats{}
}

// ContextLost forces a full upload on the next Update.
func (m *Tonemap) ContextLost() {
	m.lost = true
	m.state.Reset()
}

// Dispose does nothing: the tonemap buffer belongs to the context.
func (m *Tonemap) Dispose() {}
