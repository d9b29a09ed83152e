// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// DrawStats counts the work recorded by draw calls.
type DrawStats struct {
	DrawCalls  int
	Vertices   int
	Instances  int
	Primitives int
}

// Add returns the sum of s and o.
func (s DrawStats) Add(o DrawStats) DrawStats {
	return DrawStats{
		DrawCalls:  s.DrawCalls + o.DrawCalls,
		Vertices:   s.Vertices + o.Vertices,
		Instances:  s.Instances + o.Instances,
		Primitives: s.Primitives + o.Primitives,
	}
}

// DrawParams is one of DrawArrays, DrawArraysInstanced, DrawElements or
// DrawElementsInstanced. The set is closed by an unexported method.
type DrawParams interface {
	draw(pass hal.RenderPassEncoder) DrawStats
}

// DrawArrays draws Count vertices starting at First.
type DrawArrays struct {
	Topology gputypes.PrimitiveTopology
	First    uint32
	Count    uint32
}

// DrawArraysInstanced draws Count vertices Instances times.
type DrawArraysInstanced struct {
	Topology      gputypes.PrimitiveTopology
	First         uint32
	Count         uint32
	FirstInstance uint32
	Instances     uint32
}

// DrawElements draws Count indices from Index starting at First.
type DrawElements struct {
	Topology   gputypes.PrimitiveTopology
	Index      hal.Buffer
	Format     gputypes.IndexFormat
	First      uint32
	Count      uint32
	BaseVertex int32
}

// DrawElementsInstanced draws Count indices Instances times.
type DrawElementsInstanced struct {
	Topology      gputypes.PrimitiveTopology
	Index         hal.Buffer
	Format        gputypes.IndexFormat
	First         uint32
	Count         uint32
	BaseVertex    int32
	FirstInstance uint32
	Instances     uint32
}

// Draw records p into pass. A nil p or an empty draw records nothing.
func Draw(pass hal.RenderPassEncoder, p DrawParams) DrawStats {
	if p == nil {
		return DrawStats{}
	}
	return p.draw(pass)
}

func (d DrawArrays) draw(pass hal.RenderPassEncoder) DrawStats {
	if d.Count == 0 {
		return DrawStats{}
	}
	pass.Draw(d.Count, 1, d.First, 0)
	return stats(d.Topology, d.Count, 1)
}

func (d DrawArraysInstanced) draw(pass hal.RenderPassEncoder) DrawStats {
	if d.Count == 0 || d.Instances == 0 {
		return DrawStats{}
	}
	pass.Draw(d.Count, d.Instances, d.First, d.FirstInstance)
	return stats(d.Topology, d.Count, d.Instances)
}

func (d DrawElements) draw(pass hal.RenderPassEncoder) DrawStats {
	if d.Count == 0 || d.Index == nil {
		return DrawStats{}
	}
	pass.SetIndexBuffer(d.Index, indexFormat(d.Format), 0)
	pass.DrawIndexed(d.Count, 1, d.First, d.BaseVertex, 0)
	return stats(d.Topology, d.Count, 1)
}

func (d DrawElementsInstanced) draw(pass hal.RenderPassEncoder) DrawStats {
	if d.Count == 0 || d.Instances == 0 || d.Index == nil {
		return DrawStats{}
	}
	pass.SetIndexBuffer(d.Index, indexFormat(d.Format), 0)
	pass.DrawIndexed(d.Count, d.Instances, d.First, d.BaseVertex, d.FirstInstance)
	return stats(d.Topology, d.Count, d.Instances)
}

// indexFormat defaults an unset format to uint32.
func indexFormat(f gputypes.IndexFormat) gputypes.IndexFormat {
	if f == gputypes.IndexFormatUndefined {
		return gputypes.IndexFormatUint32
	}
	return f
}

func stats(topology gputypes.PrimitiveTopology, count, instances uint32) DrawStats {
	return DrawStats{
		DrawCalls:  1,
		Vertices:   int(count) * int(instances),
		Instances:  int(instances),
		Primitives: PrimitiveCount(topology, int(count)) * int(instances),
	}
}

// PrimitiveCount returns the number of primitives formed by n vertices.
func PrimitiveCount(topology gputypes.PrimitiveTopology, n int) int {
	switch topology {
	case gputypes.PrimitiveTopologyPointList:
		return n
	case gputypes.PrimitiveTopologyLineList:
		return n / 2
	case gputypes.PrimitiveTopologyLineStrip:
		return max(n-1, 0)
	case gputypes.PrimitiveTopologyTriangleStrip:
		return max(n-2, 0)
	default:
		return n / 3
	}
}
