// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package octree

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/pcview/sorted"
)

// Primitive is the topology of a node's geometry.
type Primitive uint8

// Primitives.
const (
	PrimitivePoints Primitive = iota
	PrimitiveLines
	PrimitiveTriangles
)

func (p Primitive) String() string {
	switch p {
	case PrimitivePoints:
		return "points"
	case PrimitiveLines:
		return "lines"
	case PrimitiveTriangles:
		return "triangles"
	default:
		return fmt.Sprintf("Primitive(%d)", uint8(p))
	}
}

// verticesPer returns the number of vertices per primitive.
func (p Primitive) verticesPer() int {
	switch p {
	case PrimitiveLines:
		return 2
	case PrimitiveTriangles:
		return 3
	default:
		return 1
	}
}

// Attribute is a bit set of optional per-vertex attributes. Positions are
// always present.
type Attribute uint8

// Optional vertex attributes, in interleaved order.
const (
	AttrColor    Attribute = 1 << iota // unorm8x4
	AttrNormal                         // snorm8x4
	AttrObjectID                       // uint32

	attrAll = AttrColor | AttrNormal | AttrObjectID
)

// Has reports whether all attributes in b are set.
func (a Attribute) Has(b Attribute) bool { return a&b == b }

// Per-attribute sizes in bytes.
const (
	positionSize = 12
	colorSize    = 4
	normalSize   = 4
	objectIDSize = 4
)

// VertexFormat describes the interleaved vertex buffer of a payload.
type VertexFormat struct {
	Attributes Attribute

	// SeparatePositions moves positions out of the interleaved buffer.
	SeparatePositions bool
}

// Stride returns the interleaved vertex size in bytes.
func (f VertexFormat) Stride() int {
	n := 0
	if !f.SeparatePositions {
		n += positionSize
	}
	if f.Attributes.Has(AttrColor) {
		n += colorSize
	}
	if f.Attributes.Has(AttrNormal) {
		n += normalSize
	}
	if f.Attributes.Has(AttrObjectID) {
		n += objectIDSize
	}
	return n
}

// Offset returns the byte offset of attr inside an interleaved vertex, or
// -1 if the attribute is not part of the buffer. Pass 0 for positions.
func (f VertexFormat) Offset(attr Attribute) int {
	off := 0
	if attr == 0 {
		if f.SeparatePositions {
			return -1
		}
		return 0
	}
	if !f.SeparatePositions {
		off += positionSize
	}
	for _, a := range [...]struct {
		attr Attribute
		size int
	}{{AttrColor, colorSize}, {AttrNormal, normalSize}, {AttrObjectID, objectIDSize}} {
		if !f.Attributes.Has(a.attr) {
			if a.attr == attr {
				return -1
			}
			continue
		}
		if a.attr == attr {
			return off
		}
		off += a.size
	}
	return -1
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min, Max mgl32.Vec3
}

// Center returns the middle of the box.
func (b Bounds) Center() mgl32.Vec3 { return b.Min.Add(b.Max).Mul(0.5) }

// Payload is a decoded node ready for GPU upload.
type Payload struct {
	ID      string
	Version string

	Primitive   Primitive
	Format      VertexFormat
	VertexCount int

	// Vertices is the interleaved vertex buffer, Format.Stride() bytes per
	// vertex.
	Vertices []byte

	// Positions holds tightly packed float32x3 positions when
	// Format.SeparatePositions is set.
	Positions []byte

	// Indices is nil for non-indexed geometry.
	Indices []uint32

	// ObjectIDs is the ascending, duplicate-free set of object ids
	// referenced by the node's vertices.
	ObjectIDs []uint32

	Bounds Bounds
}

// ByteSize returns the GPU memory footprint of the payload.
func (p *Payload) ByteSize() int {
	return len(p.Vertices) + len(p.Positions) + 4*len(p.Indices)
}

// IndexBytes returns the indices encoded as little-endian uint32.
func (p *Payload) IndexBytes() []byte {
	if len(p.Indices) == 0 {
		return nil
	}
	b := make([]byte, 4*len(p.Indices))
	for i, v := range p.Indices {
		binary.LittleEndian.PutUint32(b[4*i:], v)
	}
	return b
}

// Geometry is the raw attribute data of a node, as stored on the wire.
type Geometry struct {
	Primitive Primitive

	// Positions holds xyz triples.
	Positions []float32
	// Colors holds rgba quadruples, or nil.
	Colors []uint8
	// Normals holds xyzw quadruples, or nil.
	Normals []int8
	// ObjectIDs holds one id per vertex, or nil.
	ObjectIDs []uint32
	// Indices is nil for non-indexed geometry.
	Indices []uint32
}

// Wire format constants.
const (
	payloadMagic = "PCN1"
	headerSize   = 16
)

// EncodePayload serializes g in the node wire format.
//
// Layout (little-endian): magic "PCN1", primitive u8, attribute flags u8,
// reserved u16, vertex count u32, index count u32, then positions
// f32x3, colors u8x4, normals i8x4, object ids u32 and indices u32, each
// section present only when its attribute is.
func EncodePayload(g *Geometry) ([]byte, error) {
	if len(g.Positions)%3 != 0 {
		return nil, fmt.Errorf("%w: %d position floats", ErrCorrupt, len(g.Positions))
	}
	n := len(g.Positions) / 3

	var attrs Attribute
	size := headerSize + n*positionSize + 4*len(g.Indices)
	if g.Colors != nil {
		if len(g.Colors) != 4*n {
			return nil, fmt.Errorf("%w: %d color bytes for %d vertices", ErrCorrupt, len(g.Colors), n)
		}
		attrs |= AttrColor
		size += n * colorSize
	}
	if g.Normals != nil {
		if len(g.Normals) != 4*n {
			return nil, fmt.Errorf("%w: %d normal bytes for %d vertices", ErrCorrupt, len(g.Normals), n)
		}
		attrs |= AttrNormal
		size += n * normalSize
	}
	if g.ObjectIDs != nil {
		if len(g.ObjectIDs) != n {
			return nil, fmt.Errorf("%w: %d object ids for %d vertices", ErrCorrupt, len(g.ObjectIDs), n)
		}
		attrs |= AttrObjectID
		size += n * objectIDSize
	}

	b := make([]byte, 0, size)
	b = append(b, payloadMagic...)
	b = append(b, byte(g.Primitive), byte(attrs), 0, 0)
	b = binary.LittleEndian.AppendUint32(b, uint32(n))
	b = binary.LittleEndian.AppendUint32(b, uint32(len(g.Indices)))
	for _, f := range g.Positions {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(f))
	}
	b = append(b, g.Colors...)
	for _, v := range g.Normals {
		b = append(b, byte(v))
	}
	for _, id := range g.ObjectIDs {
		b = binary.LittleEndian.AppendUint32(b, id)
	}
	for _, i := range g.Indices {
		b = binary.LittleEndian.AppendUint32(b, i)
	}
	return b, nil
}

// DecodePayload parses a node in the wire format written by EncodePayload
// and interleaves it for GPU upload.
func DecodePayload(data []byte, separatePositions bool) (*Payload, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d byte header", ErrTruncated, len(data))
	}
	if string(data[:4]) != payloadMagic {
		return nil, fmt.Errorf("%w: %q", ErrBadMagic, data[:4])
	}

	prim := Primitive(data[4])
	if prim > PrimitiveTriangles {
		return nil, fmt.Errorf("%w: primitive %d", ErrCorrupt, data[4])
	}
	attrs := Attribute(data[5])
	if attrs&^attrAll != 0 {
		return nil, fmt.Errorf("%w: attribute flags %#x", ErrCorrupt, data[5])
	}
	n := int(binary.LittleEndian.Uint32(data[8:]))
	nIdx := int(binary.LittleEndian.Uint32(data[12:]))

	want := headerSize + n*positionSize + 4*nIdx
	if attrs.Has(AttrColor) {
		want += n * colorSize
	}
	if attrs.Has(AttrNormal) {
		want += n * normalSize
	}
	if attrs.Has(AttrObjectID) {
		want += n * objectIDSize
	}
	if len(data) < want {
		return nil, fmt.Errorf("%w: have %d bytes, want %d", ErrTruncated, len(data), want)
	}
	if len(data) > want {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, len(data)-want)
	}

	count := n
	if nIdx > 0 {
		count = nIdx
	}
	if count%prim.verticesPer() != 0 {
		return nil, fmt.Errorf("%w: %d vertices do not form whole %v", ErrCorrupt, count, prim)
	}

	format := VertexFormat{Attributes: attrs, SeparatePositions: separatePositions}
	stride := format.Stride()
	p := &Payload{
		Primitive:   prim,
		Format:      format,
		VertexCount: n,
		Vertices:    make([]byte, n*stride),
	}
	if separatePositions {
		p.Positions = make([]byte, n*positionSize)
	}

	off := headerSize
	positions := data[off : off+n*positionSize]
	off += n * positionSize
	bounds, err := computeBounds(positions)
	if err != nil {
		return nil, err
	}
	p.Bounds = bounds
	if separatePositions {
		copy(p.Positions, positions)
	} else {
		scatter(p.Vertices, positions, positionSize, stride, 0)
	}

	if attrs.Has(AttrColor) {
		scatter(p.Vertices, data[off:off+n*colorSize], colorSize, stride, format.Offset(AttrColor))
		off += n * colorSize
	}
	if attrs.Has(AttrNormal) {
		scatter(p.Vertices, data[off:off+n*normalSize], normalSize, stride, format.Offset(AttrNormal))
		off += n * normalSize
	}
	if attrs.Has(AttrObjectID) {
		section := data[off : off+n*objectIDSize]
		scatter(p.Vertices, section, objectIDSize, stride, format.Offset(AttrObjectID))
		ids := make([]uint32, n)
		for i := range ids {
			ids[i] = binary.LittleEndian.Uint32(section[4*i:])
		}
		p.ObjectIDs = sorted.Dedup(ids)
		off += n * objectIDSize
	}

	if nIdx > 0 {
		p.Indices = make([]uint32, nIdx)
		for i := range p.Indices {
			idx := binary.LittleEndian.Uint32(data[off+4*i:])
			if int(idx) >= n {
				return nil, fmt.Errorf("%w: index %d out of range [0, %d)", ErrCorrupt, idx, n)
			}
			p.Indices[i] = idx
		}
	}
	return p, nil
}

// scatter copies fixed-size elements from src into every stride-th slot of
// dst starting at offset.
func scatter(dst, src []byte, size, stride, offset int) {
	for i, j := 0, offset; i < len(src); i, j = i+size, j+stride {
		copy(dst[j:j+size], src[i:i+size])
	}
}

func computeBounds(positions []byte) (Bounds, error) {
	if len(positions) == 0 {
		return Bounds{}, nil
	}
	inf := math32.Inf(1)
	b := Bounds{Min: mgl32.Vec3{inf, inf, inf}, Max: mgl32.Vec3{-inf, -inf, -inf}}
	for i := 0; i < len(positions); i += positionSize {
		for c := 0; c < 3; c++ {
			v := math.Float32frombits(binary.LittleEndian.Uint32(positions[i+4*c:]))
			if math32.IsNaN(v) || math32.IsInf(v, 0) {
				return Bounds{}, fmt.Errorf("%w: non-finite position at vertex %d", ErrCorrupt, i/positionSize)
			}
			b.Min[c] = math32.Min(b.Min[c], v)
			b.Max[c] = math32.Max(b.Max[c], v)
		}
	}
	return b, nil
}
