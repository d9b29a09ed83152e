// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package uniform

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// maxComponents is the largest Type.Len (mat4).
const maxComponents = 16

// Proxy is a typed read/write view over the packed byte block of a Layout.
//
// Proxy is not safe for concurrent use; it belongs to the render module
// that owns the uniform buffer.
type Proxy struct {
	layout *Layout
	buf    []byte
	dirty  DirtyRange
}

// New creates a zeroed proxy for layout. The whole block starts dirty so
// the first upload is a full copy.
func New(layout *Layout) *Proxy {
	p := &Proxy{
		layout: layout,
		buf:    make([]byte, layout.ByteSize()),
	}
	p.dirty.MarkAll(len(p.buf))
	return p
}

// NewFromSchema computes the layout of schema and creates a proxy for it.
func NewFromSchema(schema Schema) (*Proxy, error) {
	l, err := NewLayout(schema)
	if err != nil {
		return nil, err
	}
	return New(l), nil
}

// Layout returns the proxy's layout.
func (p *Proxy) Layout() *Layout { return p.layout }

// Buffer returns the backing byte block. The slice aliases the proxy's
// storage; writing to it bypasses dirty tracking.
func (p *Proxy) Buffer() []byte { return p.buf }

// Dirty returns the pending byte range.
func (p *Proxy) Dirty() DirtyRange { return p.dirty }

// DirtyBytes returns the byte offset and the slice that must be uploaded.
// data is nil when nothing is pending.
func (p *Proxy) DirtyBytes() (offset int, data []byte) {
	if p.dirty.IsEmpty() {
		return 0, nil
	}
	return p.dirty.Begin, p.buf[p.dirty.Begin:p.dirty.End]
}

// ClearDirty empties the dirty range after an upload.
func (p *Proxy) ClearDirty() { p.dirty.Clear() }

// MarkAllDirty forces the next upload to copy the whole block.
func (p *Proxy) MarkAllDirty() { p.dirty.MarkAll(len(p.buf)) }

// Set writes v into the named field.
//
// Accepted values: bool for Bool fields; any Go integer or float for
// scalar fields; []float32, []float64, []int, []int32, []uint32 and the
// mgl32 vector and matrix types for vector and matrix fields. Matrix
// components follow mgl32 storage order (column-major); each column
// occupies one 16-byte slot.
func (p *Proxy) Set(name string, v any) error {
	i, ok := p.layout.Index(name)
	if !ok {
		return &FieldError{Field: name, Err: ErrUnknownField}
	}
	return p.SetAt(i, v)
}

// SetAt writes v into field i. See Set for accepted values.
func (p *Proxy) SetAt(i int, v any) error {
	if i < 0 || i >= p.layout.Len() {
		return &FieldError{Field: fmt.Sprint(i), Err: ErrUnknownField}
	}
	f := p.layout.fields[i]

	var vals [maxComponents]float64
	n, isBool, ok := components(v, vals[:])
	if !ok || isBool != (f.Type.Kind() == KindBool) {
		return &FieldError{Field: f.Name, Type: f.Type, Err: fmt.Errorf("%w: got %T", ErrTypeMismatch, v)}
	}
	return p.write(f, vals[:n])
}

// SetBool writes a Bool field.
func (p *Proxy) SetBool(i int, v bool) error {
	var x float64
	if v {
		x = 1
	}
	return p.writeChecked(i, KindBool, x)
}

// SetInt writes an Int field.
func (p *Proxy) SetInt(i int, v int32) error {
	return p.writeChecked(i, KindInt, float64(v))
}

// SetUint writes a Uint field.
func (p *Proxy) SetUint(i int, v uint32) error {
	return p.writeChecked(i, KindUint, float64(v))
}

// SetFloat writes a Float field.
func (p *Proxy) SetFloat(i int, v float32) error {
	return p.writeChecked(i, KindFloat, float64(v))
}

// SetVector writes a float vector or matrix field in column-major order.
func (p *Proxy) SetVector(i int, vs ...float32) error {
	if i < 0 || i >= p.layout.Len() {
		return &FieldError{Field: fmt.Sprint(i), Err: ErrUnknownField}
	}
	f := p.layout.fields[i]
	if f.Type.Kind() != KindFloat {
		return &FieldError{Field: f.Name, Type: f.Type, Err: ErrTypeMismatch}
	}
	if len(vs) > maxComponents {
		return &FieldError{Field: f.Name, Type: f.Type, Err: ErrComponentCount}
	}
	var vals [maxComponents]float64
	for k, v := range vs {
		vals[k] = float64(v)
	}
	return p.write(f, vals[:len(vs)])
}

// SetVec2 writes a two-component vector field.
func (p *Proxy) SetVec2(i int, v mgl32.Vec2) error { return p.SetVector(i, v[:]...) }

// SetVec3 writes a three-component vector field.
func (p *Proxy) SetVec3(i int, v mgl32.Vec3) error { return p.SetVector(i, v[:]...) }

// SetVec4 writes a four-component vector field.
func (p *Proxy) SetVec4(i int, v mgl32.Vec4) error { return p.SetVector(i, v[:]...) }

// SetMat3 writes a Mat3 field from an mgl32 matrix.
func (p *Proxy) SetMat3(i int, m mgl32.Mat3) error { return p.SetVector(i, m[:]...) }

// SetMat4 writes a Mat4 field from an mgl32 matrix.
func (p *Proxy) SetMat4(i int, m mgl32.Mat4) error { return p.SetVector(i, m[:]...) }

func (p *Proxy) writeChecked(i int, kind Kind, x float64) error {
	if i < 0 || i >= p.layout.Len() {
		return &FieldError{Field: fmt.Sprint(i), Err: ErrUnknownField}
	}
	f := p.layout.fields[i]
	if f.Type.Kind() != kind || f.Type.Len() != 1 {
		return &FieldError{Field: f.Name, Type: f.Type, Err: ErrTypeMismatch}
	}
	return p.write(f, []float64{x})
}

// write validates all values before touching the buffer, so a failed
// write leaves both the block and the dirty range unchanged.
func (p *Proxy) write(f FieldLayout, vals []float64) error {
	if len(vals) != f.Type.Len() {
		return &FieldError{Field: f.Name, Type: f.Type,
			Err: fmt.Errorf("%w: got %d, want %d", ErrComponentCount, len(vals), f.Type.Len())}
	}

	kind := f.Type.Kind()
	var words [maxComponents]uint32
	for k, v := range vals {
		w, err := encode(kind, v)
		if err != nil {
			return &FieldError{Field: f.Name, Type: f.Type, Err: err}
		}
		words[k] = w
	}

	cols := f.Type.Components()
	for k := range vals {
		off := f.componentOffset(k/cols, k%cols)
		binary.LittleEndian.PutUint32(p.buf[off:off+4], words[k])
	}
	p.dirty.Expand(f.ByteOffset(), f.ByteEnd())
	return nil
}

// Get reads the named field. Bool fields read as bool, scalars as int32,
// uint32 or float32, vectors and matrices as []int32, []uint32 or
// []float32 without padding, matrices column-major.
func (p *Proxy) Get(name string) (any, error) {
	i, ok := p.layout.Index(name)
	if !ok {
		return nil, &FieldError{Field: name, Err: ErrUnknownField}
	}
	return p.GetAt(i)
}

// GetAt reads field i. See Get.
func (p *Proxy) GetAt(i int) (any, error) {
	if i < 0 || i >= p.layout.Len() {
		return nil, &FieldError{Field: fmt.Sprint(i), Err: ErrUnknownField}
	}
	f := p.layout.fields[i]
	n := f.Type.Len()
	cols := f.Type.Components()
	word := func(k int) uint32 {
		off := f.componentOffset(k/cols, k%cols)
		return binary.LittleEndian.Uint32(p.buf[off : off+4])
	}

	switch f.Type.Kind() {
	case KindBool:
		return word(0) != 0, nil
	case KindInt:
		if n == 1 {
			return int32(word(0)), nil
		}
		out := make([]int32, n)
		for k := range out {
			out[k] = int32(word(k))
		}
		return out, nil
	case KindUint:
		if n == 1 {
			return word(0), nil
		}
		out := make([]uint32, n)
		for k := range out {
			out[k] = word(k)
		}
		return out, nil
	default:
		if n == 1 {
			return math.Float32frombits(word(0)), nil
		}
		out := make([]float32, n)
		for k := range out {
			out[k] = math.Float32frombits(word(k))
		}
		return out, nil
	}
}

// encode converts one component to its 32-bit representation.
func encode(kind Kind, v float64) (uint32, error) {
	switch kind {
	case KindFloat:
		return math.Float32bits(float32(v)), nil
	case KindBool:
		if v != 0 {
			return 1, nil
		}
		return 0, nil
	}

	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, fmt.Errorf("%w: %v", ErrNotInteger, v)
	}
	if kind == KindUint {
		if v < 0 {
			return 0, fmt.Errorf("%w: %v", ErrNegative, v)
		}
		if v > math.MaxUint32 {
			return 0, fmt.Errorf("%w: %v", ErrOutOfRange, v)
		}
		return uint32(v), nil
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %v", ErrOutOfRange, v)
	}
	return uint32(int32(v)), nil
}

// components flattens v into dst. It reports the number of values, whether
// v was a bool, and whether v had a supported type.
func components(v any, dst []float64) (n int, isBool, ok bool) {
	switch x := v.(type) {
	case bool:
		if x {
			dst[0] = 1
		} else {
			dst[0] = 0
		}
		return 1, true, true
	case int:
		dst[0] = float64(x)
	case int8:
		dst[0] = float64(x)
	case int16:
		dst[0] = float64(x)
	case int32:
		dst[0] = float64(x)
	case int64:
		dst[0] = float64(x)
	case uint:
		dst[0] = float64(x)
	case uint8:
		dst[0] = float64(x)
	case uint16:
		dst[0] = float64(x)
	case uint32:
		dst[0] = float64(x)
	case uint64:
		dst[0] = float64(x)
	case float32:
		dst[0] = float64(x)
	case float64:
		dst[0] = x
	case mgl32.Vec2:
		return fill(dst, x[:]), false, true
	case mgl32.Vec3:
		return fill(dst, x[:]), false, true
	case mgl32.Vec4:
		return fill(dst, x[:]), false, true
	case mgl32.Mat3:
		return fill(dst, x[:]), false, true
	case mgl32.Mat4:
		return fill(dst, x[:]), false, true
	case []float32:
		return fill(dst, x), false, len(x) <= len(dst)
	case []float64:
		return fill(dst, x), false, len(x) <= len(dst)
	case []int:
		return fill(dst, x), false, len(x) <= len(dst)
	case []int32:
		return fill(dst, x), false, len(x) <= len(dst)
	case []uint32:
		return fill(dst, x), false, len(x) <= len(dst)
	default:
		return 0, false, false
	}
	return 1, false, true
}

func fill[T int | int32 | uint32 | float32 | float64](dst []float64, src []T) int {
	n := min(len(src), len(dst))
	for k := 0; k < n; k++ {
		dst[k] = float64(src[k])
	}
	return n
}

// Bool reads field i as a bool. It returns false for other kinds.
func (p *Proxy) Bool(i int) bool {
	v, _ := p.GetAt(i)
	b, _ := v.(bool)
	return b
}

// Int reads scalar field i as an int32.
func (p *Proxy) Int(i int) int32 {
	v, _ := p.GetAt(i)
	n, _ := v.(int32)
	return n
}

// Uint reads scalar field i as a uint32.
func (p *Proxy) Uint(i int) uint32 {
	v, _ := p.GetAt(i)
	n, _ := v.(uint32)
	return n
}

// Float reads scalar field i as a float32.
func (p *Proxy) Float(i int) float32 {
	v, _ := p.GetAt(i)
	f, _ := v.(float32)
	return f
}

// Vector reads float vector or matrix field i. It returns nil for other
// kinds.
func (p *Proxy) Vector(i int) []float32 {
	v, _ := p.GetAt(i)
	f, _ := v.([]float32)
	return f
}
