// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package rendertest provides HAL fakes for testing render modules without
// a GPU.
//
// Device and Queue wrap the noop backend and record every resource creation,
// destruction and buffer write. Pass records draw commands.
package rendertest

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// ErrInjected is returned by Device when a creation is set to fail.
var ErrInjected = errors.New("rendertest: injected failure")

// NewNoopDevice opens a device on the noop backend. The device is destroyed
// when the test ends.
func NewNoopDevice(t testing.TB) (hal.Device, hal.Queue) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return openDev.Device, openDev.Queue
}

// Handle is a distinguishable resource handle. The noop backend returns
// zero-sized resources whose pointers may compare equal.
type Handle struct {
	ID    int
	Kind  string
	Label string
}

// Destroy implements hal.Resource. The fake device records destruction, not
// the handle.
func (h *Handle) Destroy() {}

// NativeHandle implements hal.NativeHandle.
func (h *Handle) NativeHandle() uintptr { return uintptr(h.ID) }

func (h *Handle) String() string { return fmt.Sprintf("%s#%d(%s)", h.Kind, h.ID, h.Label) }

// Resource kinds recorded by Device.
const (
	KindBuffer          = "buffer"
	KindBindGroupLayout = "bind group layout"
	KindBindGroup       = "bind group"
	KindPipelineLayout  = "pipeline layout"
	KindShaderModule    = "shader module"
	KindRenderPipeline  = "render pipeline"
)

// Device is a hal.Device that hands out Handles and records their
// lifecycle. Methods it does not override go to the embedded device.
type Device struct {
	hal.Device

	// Fail makes the next creation of this kind return ErrInjected.
	Fail string

	// Shaders records shader sources by label.
	Shaders map[string]hal.ShaderSource

	// Pipelines records render pipeline descriptors in creation order.
	Pipelines []*hal.RenderPipelineDescriptor

	next      int
	created   []*Handle
	destroyed []*Handle
}

// NewDevice wraps a noop device.
func NewDevice(t testing.TB) (*Device, *Queue) {
	t.Helper()
	d, q := NewNoopDevice(t)
	return &Device{Device: d, Shaders: make(map[string]hal.ShaderSource)}, &Queue{Queue: q}
}

func (d *Device) create(kind, label string) (*Handle, error) {
	if d.Fail == kind {
		d.Fail = ""
		return nil, ErrInjected
	}
	d.next++
	h := &Handle{ID: d.next, Kind: kind, Label: label}
	d.created = append(d.created, h)
	return h, nil
}

func (d *Device) destroy(r hal.Resource) {
	d.destroyed = append(d.destroyed, r.(*Handle))
}

// Created returns every handle created so far.
func (d *Device) Created() []*Handle { return slices.Clone(d.created) }

// Destroyed returns every destroyed handle in destruction order.
func (d *Device) Destroyed() []*Handle { return slices.Clone(d.destroyed) }

// Live returns the number of created but not destroyed handles.
func (d *Device) Live() int { return len(d.created) - len(d.destroyed) }

// Count returns the number of live handles of kind.
func (d *Device) Count(kind string) int {
	n := 0
	for _, h := range d.created {
		if h.Kind == kind && !slices.Contains(d.destroyed, h) {
			n++
		}
	}
	return n
}

func (d *Device) CreateBuffer(desc *hal.BufferDescriptor) (hal.Buffer, error) {
	h, err := d.create(KindBuffer, desc.Label)
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (d *Device) DestroyBuffer(b hal.Buffer) { d.destroy(b) }

func (d *Device) CreateBindGroupLayout(desc *hal.BindGroupLayoutDescriptor) (hal.BindGroupLayout, error) {
	h, err := d.create(KindBindGroupLayout, desc.Label)
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (d *Device) DestroyBindGroupLayout(l hal.BindGroupLayout) { d.destroy(l) }

func (d *Device) CreateBindGroup(desc *hal.BindGroupDescriptor) (hal.BindGroup, error) {
	h, err := d.create(KindBindGroup, desc.Label)
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (d *Device) DestroyBindGroup(g hal.BindGroup) { d.destroy(g) }

func (d *Device) CreatePipelineLayout(desc *hal.PipelineLayoutDescriptor) (hal.PipelineLayout, error) {
	h, err := d.create(KindPipelineLayout, desc.Label)
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (d *Device) DestroyPipelineLayout(l hal.PipelineLayout) { d.destroy(l) }

func (d *Device) CreateShaderModule(desc *hal.ShaderModuleDescriptor) (hal.ShaderModule, error) {
	h, err := d.create(KindShaderModule, desc.Label)
	if err != nil {
		return nil, err
	}
	d.Shaders[desc.Label] = desc.Source
	return h, nil
}

func (d *Device) DestroyShaderModule(m hal.ShaderModule) { d.destroy(m) }

func (d *Device) CreateRenderPipeline(desc *hal.RenderPipelineDescriptor) (hal.RenderPipeline, error) {
	h, err := d.create(KindRenderPipeline, desc.Label)
	if err != nil {
		return nil, err
	}
	d.Pipelines = append(d.Pipelines, desc)
	return h, nil
}

func (d *Device) DestroyRenderPipeline(p hal.RenderPipeline) { d.destroy(p) }

// Write is one recorded Queue.WriteBuffer call.
type Write struct {
	Buffer hal.Buffer
	Offset uint64
	Data   []byte
}

// Queue is a hal.Queue that records buffer writes.
type Queue struct {
	hal.Queue

	Writes []Write

	// FailWrites makes that many of the next writes return ErrInjected
	// without recording them. When FailBuffer is set only writes to it
	// fail.
	FailWrites int
	FailBuffer hal.Buffer
}

func (q *Queue) WriteBuffer(buf hal.Buffer, offset uint64, data []byte) error {
	if q.FailWrites > 0 && (q.FailBuffer == nil || q.FailBuffer == buf) {
		q.FailWrites--
		return ErrInjected
	}
	q.Writes = append(q.Writes, Write{Buffer: buf, Offset: offset, Data: slices.Clone(data)})
	return nil
}

// WritesTo returns the writes that targeted buf.
func (q *Queue) WritesTo(buf hal.Buffer) []Write {
	var out []Write
	for _, w := range q.Writes {
		if w.Buffer == buf {
			out = append(out, w)
		}
	}
	return out
}

// Reset forgets recorded writes.
func (q *Queue) Reset() { q.Writes = nil }

// Pass is a hal.RenderPassEncoder that records commands as strings, e.g.
// "draw 6 100 0 0". Unrecorded methods panic through the nil embedded
// encoder.
type Pass struct {
	hal.RenderPassEncoder

	Commands []string
}

func (p *Pass) record(format string, args ...any) {
	p.Commands = append(p.Commands, fmt.Sprintf(format, args...))
}

func (p *Pass) SetPipeline(pipeline hal.RenderPipeline) { p.record("pipeline %v", pipeline) }

func (p *Pass) SetBindGroup(index uint32, group hal.BindGroup, _ []uint32) {
	p.record("bind %d %v", index, group)
}

func (p *Pass) SetVertexBuffer(slot uint32, buf hal.Buffer, offset uint64) {
	p.record("vertex %d %v %d", slot, buf, offset)
}

func (p *Pass) SetIndexBuffer(buf hal.Buffer, format gputypes.IndexFormat, offset uint64) {
	p.record("index %v %s %d", buf, format, offset)
}

func (p *Pass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.record("draw %d %d %d %d", vertexCount, instanceCount, firstVertex, firstInstance)
}

func (p *Pass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.record("drawIndexed %d %d %d %d %d", indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

// Draws returns the recorded draw and drawIndexed commands.
func (p *Pass) Draws() []string {
	var out []string
	for _, c := range p.Commands {
		if len(c) >= 4 && c[:4] == "draw" {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets recorded commands.
func (p *Pass) Reset() { p.Commands = nil }
