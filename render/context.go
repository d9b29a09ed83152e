// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"slices"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Context owns the GPU device shared by all modules of a view, together
// with the resources modules share: the camera, clipping and tonemap uniform
// buffers, the frame bind group holding them, and the shader program cache.
//
// Context is not safe for concurrent use. All calls happen on the render
// goroutine.
type Context struct {
	device hal.Device
	queue  hal.Queue
	opts   contextOptions

	// bins lists live bins in creation order.
	bins []*Bin
	bin  *Bin

	camera   *UniformBuffer
	clipping *UniformBuffer
	tonemap  *UniformBuffer

	frameLayout   hal.BindGroupLayout
	frameGroup    hal.BindGroup
	uniformLayout hal.BindGroupLayout

	programs map[string]hal.ShaderModule

	lost     bool
	disposed bool
}

// NewContext builds a context on a device and queue owned by the caller.
// Disposing the context does not destroy the device.
func NewContext(device hal.Device, queue hal.Queue, opts ...ContextOption) (*Context, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	o := defaultContextOptions()
	for _, opt := range opts {
		opt(&o)
	}
	c := &Context{
		device:   device,
		queue:    queue,
		opts:     o,
		programs: make(map[string]hal.ShaderModule),
	}
	c.bin = c.NewBin("context")
	if err := c.createShared(); err != nil {
		c.Dispose()
		return nil, fmt.Errorf("render: create context: %w", err)
	}
	slogger().Info("render: context created",
		"format", o.surfaceFormat.String(),
		"depth", o.depthFormat.String(),
		"samples", o.sampleCount,
		"spirv", o.spirv)
	return c, nil
}

// NewContextFromProvider builds a context on the device of a host
// application. The provider must implement HalDevice() any and HalQueue() any
// returning hal.Device and hal.Queue. The provider's surface format is used
// unless overridden by WithSurfaceFormat.
func NewContextFromProvider(provider gpucontext.DeviceProvider, opts ...ContextOption) (*Context, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHALProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHALProvider)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHALProvider)
	}
	info := provider.AdapterInfo()
	slogger().Info("render: using host device", "adapter", info.Name)
	opts = append([]ContextOption{WithSurfaceFormat(provider.SurfaceFormat())}, opts...)
	return NewContext(device, queue, opts...)
}

// createShared creates the frame bind group and the shared uniform buffers.
func (c *Context) createShared() error {
	var err error
	if c.camera, err = c.NewUniformBuffer(c.bin, "camera", CameraSchema); err != nil {
		return err
	}
	if c.clipping, err = c.NewUniformBuffer(c.bin, "clipping", ClippingSchema); err != nil {
		return err
	}
	if c.tonemap, err = c.NewUniformBuffer(c.bin, "tonemap", TonemapSchema); err != nil {
		return err
	}
	uniformEntry := func(binding uint32) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStagesVertexFragment,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
		}
	}
	c.frameLayout, err = c.bin.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "frame",
		Entries: []gputypes.BindGroupLayoutEntry{uniformEntry(0), uniformEntry(1), uniformEntry(2)},
	})
	if err != nil {
		return err
	}
	c.frameGroup, err = c.bin.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "frame",
		Layout: c.frameLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: c.camera.Binding()},
			{Binding: 1, Resource: c.clipping.Binding()},
			{Binding: 2, Resource: c.tonemap.Binding()},
		},
	})
	if err != nil {
		return err
	}
	c.uniformLayout, err = c.bin.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "module uniforms",
		Entries: []gputypes.BindGroupLayoutEntry{uniformEntry(0)},
	})
	return err
}

// Device returns the HAL device.
func (c *Context) Device() hal.Device { return c.device }

// Queue returns the HAL queue.
func (c *Context) Queue() hal.Queue { return c.queue }

// SurfaceFormat returns the color target format.
func (c *Context) SurfaceFormat() gputypes.TextureFormat { return c.opts.surfaceFormat }

// DepthFormat returns the depth attachment format, or Undefined when depth
// testing is off.
func (c *Context) DepthFormat() gputypes.TextureFormat { return c.opts.depthFormat }

// SampleCount returns the MSAA sample count.
func (c *Context) SampleCount() uint32 { return c.opts.sampleCount }

// Camera returns the shared camera uniform buffer.
func (c *Context) Camera() *UniformBuffer { return c.camera }

// Clipping returns the shared clipping uniform buffer.
func (c *Context) Clipping() *UniformBuffer { return c.clipping }

// Tonemap returns the shared tonemapping uniform buffer.
func (c *Context) Tonemap() *UniformBuffer { return c.tonemap }

// FrameLayout returns the layout of bind group 0.
func (c *Context) FrameLayout() hal.BindGroupLayout { return c.frameLayout }

// FrameBindGroup returns bind group 0, holding the shared uniform buffers.
func (c *Context) FrameBindGroup() hal.BindGroup { return c.frameGroup }

// UniformLayout returns a layout with a single uniform buffer at binding 0,
// for per-module uniform blocks.
func (c *Context) UniformLayout() hal.BindGroupLayout { return c.uniformLayout }

// NewUniformBindGroup binds u with UniformLayout.
func (c *Context) NewUniformBindGroup(bin *Bin, label string, u *UniformBuffer) (hal.BindGroup, error) {
	return bin.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   label,
		Layout:  c.uniformLayout,
		Entries: []gputypes.BindGroupEntry{{Binding: 0, Resource: u.Binding()}},
	})
}

// Lost reports whether the context was lost.
func (c *Context) Lost() bool { return c.lost }

// Disposed reports whether Dispose was called.
func (c *Context) Disposed() bool { return c.disposed }

// LoseContext marks the device as lost. Every bin drops its handles without
// GPU calls. A lost context cannot create resources; build a new one and
// restore the modules on it.
func (c *Context) LoseContext() {
	if c.lost || c.disposed {
		return
	}
	c.lost = true
	for _, b := range c.bins {
		b.Forget()
	}
	c.camera.contextLost()
	c.clipping.contextLost()
	c.tonemap.contextLost()
	c.frameLayout, c.frameGroup, c.uniformLayout = nil, nil, nil
	clear(c.programs)
	slogger().Warn("render: context lost", "bins", len(c.bins))
}

// Dispose destroys every remaining bin, newest first. The device and queue
// are not destroyed. Dispose is idempotent.
func (c *Context) Dispose() {
	if c.disposed {
		return
	}
	bins := slices.Clone(c.bins)
	for i := len(bins) - 1; i >= 0; i-- {
		bins[i].Dispose()
	}
	c.disposed = true
	c.bins = nil
	c.programs = nil
	slogger().Info("render: context disposed")
}

// dropBin removes a disposed bin from the live list.
func (c *Context) dropBin(b *Bin) {
	if i := slices.Index(c.bins, b); i >= 0 {
		c.bins = slices.Delete(c.bins, i, i+1)
	}
}
