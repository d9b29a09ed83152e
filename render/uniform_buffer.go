// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/pcview/uniform"
	"github.com/gogpu/wgpu/hal"
)

// UniformBuffer pairs a CPU-side uniform.Proxy with the GPU buffer it is
// uploaded to.
type UniformBuffer struct {
	ctx    *Context
	label  string
	proxy  *uniform.Proxy
	buffer hal.Buffer
}

// NewUniformBuffer creates a uniform buffer for schema in bin. The proxy
// starts fully dirty, so the first Upload writes the whole block.
func (c *Context) NewUniformBuffer(bin *Bin, label string, schema uniform.Schema) (*UniformBuffer, error) {
	layout, err := uniform.NewLayout(schema)
	if err != nil {
		return nil, fmt.Errorf("uniform buffer %q: %w", label, err)
	}
	buf, err := bin.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(layout.ByteSize()),
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	return &UniformBuffer{
		ctx:    c,
		label:  label,
		proxy:  uniform.New(layout),
		buffer: buf,
	}, nil
}

// Proxy returns the CPU-side block.
func (u *UniformBuffer) Proxy() *uniform.Proxy { return u.proxy }

// Buffer returns the GPU buffer.
func (u *UniformBuffer) Buffer() hal.Buffer { return u.buffer }

// Size returns the block size in bytes.
func (u *UniformBuffer) Size() uint64 { return uint64(u.proxy.Layout().ByteSize()) }

// Binding returns the bind group resource for the whole buffer.
func (u *UniformBuffer) Binding() gputypes.BufferBinding {
	return gputypes.BufferBinding{Buffer: u.buffer.NativeHandle(), Size: u.Size()}
}

// Upload writes the dirty byte range to the GPU and clears it. It returns
// the number of bytes written: zero when nothing is dirty or the context is
// lost.
func (u *UniformBuffer) Upload() (int, error) {
	if u.ctx.lost || u.buffer == nil {
		return 0, nil
	}
	off, data := u.proxy.DirtyBytes()
	if len(data) == 0 {
		return 0, nil
	}
	if err := u.ctx.queue.WriteBuffer(u.buffer, uint64(off), data); err != nil {
		return 0, fmt.Errorf("upload %q: %w", u.label, err)
	}
	u.proxy.ClearDirty()
	slogger().Debug("render: uniform upload", "buffer", u.label, "offset", off, "bytes", len(data))
	return len(data), nil
}

// contextLost drops the GPU buffer. The proxy is marked fully dirty so a
// buffer recreated from it starts with a full upload.
func (u *UniformBuffer) contextLost() {
	u.buffer = nil
	u.proxy.MarkAllDirty()
}
