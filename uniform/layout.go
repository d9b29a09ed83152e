// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package uniform

import "fmt"

// unitSize is the size of one layout unit in bytes.
const unitSize = 4

// blockUnits is the alignment of the whole block in units (16 bytes).
const blockUnits = 4

// Field is one named entry of a Schema.
type Field struct {
	Name string
	Type Type
}

// Schema is an ordered list of fields. Order determines packing order.
type Schema []Field

// FieldLayout describes where a field lives inside the block.
type FieldLayout struct {
	Name string
	Type Type

	// Offset is the field start in 4-byte units.
	Offset int
}

// ByteOffset returns the field start in bytes.
func (f FieldLayout) ByteOffset() int { return f.Offset * unitSize }

// ByteSize returns the number of bytes the field spans, including matrix
// row padding.
func (f FieldLayout) ByteSize() int { return f.Type.Units() * unitSize }

// ByteEnd returns the exclusive end of the field in bytes.
func (f FieldLayout) ByteEnd() int { return f.ByteOffset() + f.ByteSize() }

// componentOffset returns the byte offset of component c of row r.
func (f FieldLayout) componentOffset(r, c int) int {
	return (f.Offset + r*4 + c) * unitSize
}

// Layout is the packed placement of a Schema. It is immutable.
type Layout struct {
	fields []FieldLayout
	index  map[string]int
	units  int
}

// NewLayout computes the packed layout of schema.
func NewLayout(schema Schema) (*Layout, error) {
	if len(schema) == 0 {
		return nil, ErrEmptySchema
	}

	l := &Layout{
		fields: make([]FieldLayout, 0, len(schema)),
		index:  make(map[string]int, len(schema)),
	}

	offset := 0
	for _, f := range schema {
		if !f.Type.Valid() {
			return nil, fmt.Errorf("%w: %q has %v", ErrInvalidType, f.Name, f.Type)
		}
		if _, dup := l.index[f.Name]; dup || f.Name == "" {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateField, f.Name)
		}
		offset = alignUp(offset, f.Type.Alignment())
		l.index[f.Name] = len(l.fields)
		l.fields = append(l.fields, FieldLayout{Name: f.Name, Type: f.Type, Offset: offset})
		offset += f.Type.Units()
	}
	l.units = alignUp(offset, blockUnits)

	return l, nil
}

// MustLayout is like NewLayout but panics on error. It is intended for
// package-level schemas known at compile time.
func MustLayout(schema Schema) *Layout {
	l, err := NewLayout(schema)
	if err != nil {
		panic(err)
	}
	return l
}

// ByteSize returns the block size in bytes, a multiple of 16.
func (l *Layout) ByteSize() int { return l.units * unitSize }

// Len returns the number of fields.
func (l *Layout) Len() int { return len(l.fields) }

// Field returns the layout of field i.
func (l *Layout) Field(i int) FieldLayout { return l.fields[i] }

// Fields returns a copy of all field layouts in schema order.
func (l *Layout) Fields() []FieldLayout {
	out := make([]FieldLayout, len(l.fields))
	copy(out, l.fields)
	return out
}

// Index returns the index of the named field.
func (l *Layout) Index(name string) (int, bool) {
	i, ok := l.index[name]
	return i, ok
}

// Offsets returns the unit offset of each field in schema order.
func (l *Layout) Offsets() []int {
	out := make([]int, len(l.fields))
	for i, f := range l.fields {
		out[i] = f.Offset
	}
	return out
}

// alignUp rounds n up to a multiple of align.
func alignUp(n, align int) int {
	return (n + align - 1) / align * align
}
