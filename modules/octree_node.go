// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package modules

import (
	"encoding/binary"
	"slices"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/pcview/octree"
	"github.com/gogpu/pcview/render"
	"github.com/gogpu/wgpu/hal"
)

// node is the GPU copy of one payload.
type node struct {
	payload *octree.Payload
	bin     *render.Bin

	positions hal.Buffer
	colors    hal.Buffer
	flags     hal.Buffer
	indices   hal.Buffer

	// objectIDs holds one id per vertex, nil when the payload has none.
	objectIDs   []uint32
	highlighted int
}

func newNode(ctx *render.Context, id string, p *octree.Payload, highlight []uint32) (*node, error) {
	n := &node{
		payload:   p,
		bin:       ctx.NewBin("octree node " + id),
		objectIDs: vertexObjectIDs(p),
	}
	if err := n.upload(p, highlight); err != nil {
		n.bin.Dispose()
		return nil, err
	}
	return n, nil
}

func (n *node) upload(p *octree.Payload, highlight []uint32) error {
	var err error
	if n.positions, err = n.bin.CreateBufferInit("positions", gputypes.BufferUsageVertex, vertexPositions(p)); err != nil {
		return err
	}
	if n.colors, err = n.bin.CreateBufferInit("colors", gputypes.BufferUsageVertex, vertexColors(p)); err != nil {
		return err
	}
	flags := n.highlightFlags(highlight)
	if n.flags, err = n.bin.CreateBufferInit("highlight", gputypes.BufferUsageVertex, flags); err != nil {
		return err
	}
	if p.Primitive != octree.PrimitivePoints && len(p.Indices) > 0 {
		if n.indices, err = n.bin.CreateBufferInit("indices", gputypes.BufferUsageIndex, p.IndexBytes()); err != nil {
			return err
		}
	}
	return nil
}

// highlightFlags returns one uint32 per vertex, 1 where the vertex belongs
// to a highlighted object.
func (n *node) highlightFlags(highlight []uint32) []byte {
	flags := make([]byte, 4*n.payload.VertexCount)
	n.highlighted = 0
	if len(n.objectIDs) == 0 || len(highlight) == 0 {
		return flags
	}
	hit := slices.Collect(octree.HighlightedIDs(n.payload, highlight))
	if len(hit) == 0 {
		return flags
	}
	for i, id := range n.objectIDs {
		if _, ok := slices.BinarySearch(hit, id); ok {
			flags[4*i] = 1
			n.highlighted++
		}
	}
	return flags
}

func (n *node) writeHighlight(q hal.Queue, highlight []uint32) error {
	before := n.highlighted
	flags := n.highlightFlags(highlight)
	if len(flags) == 0 || (before == 0 && n.highlighted == 0) {
		return nil
	}
	if err := q.WriteBuffer(n.flags, 0, flags); err != nil {
		n.highlighted = before
		return err
	}
	return nil
}

func (n *node) drawParams() render.DrawParams {
	p := n.payload
	switch p.Primitive {
	case octree.PrimitivePoints:
		return render.DrawArraysInstanced{
			Topology:  gputypes.PrimitiveTopologyTriangleList,
			Count:     6,
			Instances: uint32(p.VertexCount),
		}
	case octree.PrimitiveLines:
		return meshDraw(gputypes.PrimitiveTopologyLineList, n.indices, p)
	default:
		return meshDraw(gputypes.PrimitiveTopologyTriangleList, n.indices, p)
	}
}

func meshDraw(topology gputypes.PrimitiveTopology, indices hal.Buffer, p *octree.Payload) render.DrawParams {
	if indices != nil {
		return render.DrawElements{Topology: topology, Index: indices, Count: uint32(len(p.Indices))}
	}
	return render.DrawArrays{Topology: topology, Count: uint32(p.VertexCount)}
}

func (n *node) gpuBytes() int {
	// positions + colors + flags + indices
	return n.payload.VertexCount*(12+4+4) + 4*len(n.payload.Indices)
}

// vertexPositions returns tightly packed float32x3 positions.
func vertexPositions(p *octree.Payload) []byte {
	if p.Format.SeparatePositions {
		return p.Positions
	}
	return gather(p.Vertices, p.Format.Stride(), 0, 12, p.VertexCount)
}

// vertexColors returns unorm8x4 colors, opaque white when absent.
func vertexColors(p *octree.Payload) []byte {
	if off := p.Format.Offset(octree.AttrColor); off >= 0 {
		return gather(p.Vertices, p.Format.Stride(), off, 4, p.VertexCount)
	}
	c := make([]byte, 4*p.VertexCount)
	for i := range c {
		c[i] = 0xFF
	}
	return c
}

func vertexObjectIDs(p *octree.Payload) []uint32 {
	off := p.Format.Offset(octree.AttrObjectID)
	if off < 0 {
		return nil
	}
	stride := p.Format.Stride()
	ids := make([]uint32, p.VertexCount)
	for i := range ids {
		ids[i] = binary.LittleEndian.Uint32(p.Vertices[i*stride+off:])
	}
	return ids
}

// gather copies size bytes at offset from each of n interleaved records.
func gather(src []byte, stride, offset, size, n int) []byte {
	dst := make([]byte, 0, size*n)
	for i := range n {
		at := i*stride + offset
		dst = append(dst, src[at:at+size]...)
	}
	return dst
}
