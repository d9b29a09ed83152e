// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// binEntry is one tracked resource and the device call that destroys it.
type binEntry struct {
	kind    string
	handle  hal.Resource
	destroy func()
}

// Bin is a resource scope. Every resource created through a Bin is recorded
// and destroyed by Dispose in reverse creation order, so dependents go
// before the resources they reference.
//
// Bin is not safe for concurrent use.
type Bin struct {
	ctx      *Context
	label    string
	entries  []binEntry
	disposed bool
}

// NewBin returns an empty resource scope on c.
func (c *Context) NewBin(label string) *Bin {
	b := &Bin{ctx: c, label: label}
	c.bins = append(c.bins, b)
	return b
}

// Label returns the bin label.
func (b *Bin) Label() string { return b.label }

// Len returns the number of live resources in the bin.
func (b *Bin) Len() int { return len(b.entries) }

func (b *Bin) check() error {
	switch {
	case b.disposed || b.ctx.disposed:
		return fmt.Errorf("bin %q: %w", b.label, ErrDisposed)
	case b.ctx.lost:
		return fmt.Errorf("bin %q: %w", b.label, ErrContextLost)
	}
	return nil
}

func (b *Bin) track(kind string, h hal.Resource, destroy func()) {
	b.entries = append(b.entries, binEntry{kind: kind, handle: h, destroy: destroy})
	slogger().Debug("render: created", "bin", b.label, "kind", kind, "live", len(b.entries))
}

// CreateBuffer creates a buffer owned by the bin.
func (b *Bin) CreateBuffer(desc *hal.BufferDescriptor) (hal.Buffer, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	buf, err := b.ctx.device.CreateBuffer(desc)
	if err != nil {
		return nil, fmt.Errorf("create buffer %q: %w", desc.Label, err)
	}
	dev := b.ctx.device
	b.track("buffer", buf, func() { dev.DestroyBuffer(buf) })
	return buf, nil
}

// CreateBufferInit creates a buffer of usage|CopyDst sized for data and
// uploads data into it.
func (b *Bin) CreateBufferInit(label string, usage gputypes.BufferUsage, data []byte) (hal.Buffer, error) {
	size := alignUp4(uint64(len(data)))
	if size == 0 {
		size = 4
	}
	buf, err := b.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return buf, nil
	}
	if len(data)%4 != 0 {
		padded := make([]byte, size)
		copy(padded, data)
		data = padded
	}
	if err := b.ctx.queue.WriteBuffer(buf, 0, data); err != nil {
		return nil, fmt.Errorf("write buffer %q: %w", label, err)
	}
	return buf, nil
}

// CreateBindGroupLayout creates a bind group layout owned by the bin.
func (b *Bin) CreateBindGroupLayout(desc *hal.BindGroupLayoutDescriptor) (hal.BindGroupLayout, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	l, err := b.ctx.device.CreateBindGroupLayout(desc)
	if err != nil {
		return nil, fmt.Errorf("create bind group layout %q: %w", desc.Label, err)
	}
	dev := b.ctx.device
	b.track("bind group layout", l, func() { dev.DestroyBindGroupLayout(l) })
	return l, nil
}

// CreateBindGroup creates a bind group owned by the bin.
func (b *Bin) CreateBindGroup(desc *hal.BindGroupDescriptor) (hal.BindGroup, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	g, err := b.ctx.device.CreateBindGroup(desc)
	if err != nil {
		return nil, fmt.Errorf("create bind group %q: %w", desc.Label, err)
	}
	dev := b.ctx.device
	b.track("bind group", g, func() { dev.DestroyBindGroup(g) })
	return g, nil
}

// CreatePipelineLayout creates a pipeline layout owned by the bin.
func (b *Bin) CreatePipelineLayout(desc *hal.PipelineLayoutDescriptor) (hal.PipelineLayout, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	l, err := b.ctx.device.CreatePipelineLayout(desc)
	if err != nil {
		return nil, fmt.Errorf("create pipeline layout %q: %w", desc.Label, err)
	}
	dev := b.ctx.device
	b.track("pipeline layout", l, func() { dev.DestroyPipelineLayout(l) })
	return l, nil
}

// CreateShaderModule creates a shader module owned by the bin.
func (b *Bin) CreateShaderModule(desc *hal.ShaderModuleDescriptor) (hal.ShaderModule, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	m, err := b.ctx.device.CreateShaderModule(desc)
	if err != nil {
		return nil, fmt.Errorf("create shader module %q: %w", desc.Label, err)
	}
	dev := b.ctx.device
	b.track("shader module", m, func() { dev.DestroyShaderModule(m) })
	return m, nil
}

// CreateRenderPipeline creates a render pipeline owned by the bin.
func (b *Bin) CreateRenderPipeline(desc *hal.RenderPipelineDescriptor) (hal.RenderPipeline, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	p, err := b.ctx.device.CreateRenderPipeline(desc)
	if err != nil {
		return nil, fmt.Errorf("create render pipeline %q: %w", desc.Label, err)
	}
	dev := b.ctx.device
	b.track("render pipeline", p, func() { dev.DestroyRenderPipeline(p) })
	return p, nil
}

// Release destroys a single resource created by the bin ahead of Dispose.
// It reports whether h was found.
func (b *Bin) Release(h hal.Resource) bool {
	for i := len(b.entries) - 1; i >= 0; i-- {
		if b.entries[i].handle != h {
			continue
		}
		e := b.entries[i]
		b.entries = append(b.entries[:i], b.entries[i+1:]...)
		if !b.ctx.lost {
			e.destroy()
		}
		return true
	}
	return false
}

// Dispose destroys every resource in reverse creation order. Calling it
// again, or after Forget, does nothing.
func (b *Bin) Dispose() {
	if b.disposed {
		return
	}
	b.disposed = true
	b.ctx.dropBin(b)
	if b.ctx.lost {
		b.entries = nil
		return
	}
	for i := len(b.entries) - 1; i >= 0; i-- {
		b.entries[i].destroy()
	}
	if n := len(b.entries); n > 0 {
		slogger().Debug("render: bin disposed", "bin", b.label, "resources", n)
	}
	b.entries = nil
}

// Forget drops every handle without calling the device. Used after context
// loss, when the handles are already invalid.
func (b *Bin) Forget() {
	b.entries = nil
}

func alignUp4(n uint64) uint64 { return (n + 3) &^ 3 }
