// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package uniform

import "fmt"

// Type is the closed set of uniform value types.
type Type uint8

// Uniform types.
const (
	Bool Type = iota + 1
	Int
	Uint
	Float
	Vec2
	Vec3
	Vec4
	IVec2
	IVec3
	IVec4
	UVec2
	UVec3
	UVec4
	Mat3
	Mat4
)

// Kind is the scalar kind stored in each component of a Type.
type Kind uint8

// Scalar kinds.
const (
	KindBool Kind = iota + 1
	KindInt
	KindUint
	KindFloat
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

type typeInfo struct {
	name       string
	kind       Kind
	components int
	rows       int
	alignment  int
}

var typeInfos = [...]typeInfo{
	Bool:  {"bool", KindBool, 1, 1, 1},
	Int:   {"i32", KindInt, 1, 1, 1},
	Uint:  {"u32", KindUint, 1, 1, 1},
	Float: {"f32", KindFloat, 1, 1, 1},
	Vec2:  {"vec2<f32>", KindFloat, 2, 1, 2},
	Vec3:  {"vec3<f32>", KindFloat, 3, 1, 4},
	Vec4:  {"vec4<f32>", KindFloat, 4, 1, 4},
	IVec2: {"vec2<i32>", KindInt, 2, 1, 2},
	IVec3: {"vec3<i32>", KindInt, 3, 1, 4},
	IVec4: {"vec4<i32>", KindInt, 4, 1, 4},
	UVec2: {"vec2<u32>", KindUint, 2, 1, 2},
	UVec3: {"vec3<u32>", KindUint, 3, 1, 4},
	UVec4: {"vec4<u32>", KindUint, 4, 1, 4},
	Mat3:  {"mat3x3<f32>", KindFloat, 3, 3, 4},
	Mat4:  {"mat4x4<f32>", KindFloat, 4, 4, 4},
}

// Valid reports whether t is one of the defined types.
func (t Type) Valid() bool {
	return t >= Bool && t <= Mat4
}

func (t Type) info() typeInfo {
	if !t.Valid() {
		return typeInfo{}
	}
	return typeInfos[t]
}

// String returns the WGSL spelling of the type.
func (t Type) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeInfos[t].name
}

// Kind returns the scalar kind of each component.
func (t Type) Kind() Kind { return t.info().kind }

// Components returns the number of components per row.
func (t Type) Components() int { return t.info().components }

// Rows returns the number of rows; 1 for scalars and vectors.
func (t Type) Rows() int { return t.info().rows }

// Alignment returns the base alignment in 4-byte units.
func (t Type) Alignment() int { return t.info().alignment }

// IsMatrix reports whether t has more than one row.
func (t Type) IsMatrix() bool { return t.Rows() > 1 }

// Len returns the number of values a caller reads or writes for t.
func (t Type) Len() int { return t.Components() * t.Rows() }

// Units returns the number of 4-byte units the type occupies, including
// the padding after each matrix row.
func (t Type) Units() int {
	if t.IsMatrix() {
		return t.Rows() * 4
	}
	return t.Components()
}
