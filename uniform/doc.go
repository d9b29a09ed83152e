// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package uniform packs named, typed shader uniforms into a GPU-compatible
// byte block and tracks which bytes changed since the last upload.
//
// A Schema is an ordered list of fields. NewLayout places the fields in
// schema order using std140-style rules (4-byte units):
//
//   - scalars align to 1 unit, vec2 to 2 units
//   - vec3, vec4 and matrices align to 4 units (16 bytes)
//   - every matrix row starts on a 4-unit boundary, and a matrix
//     occupies Rows()*4 units (mat3x3<f32> is 48 bytes)
//   - the block size is rounded up to a multiple of 16 bytes
//
// Fields are never reordered, so the schema is the bit-exact contract with
// the uniform block declared in the shader.
//
// A Proxy owns the byte block for one layout. Every write expands its
// DirtyRange; callers upload DirtyBytes and then ClearDirty:
//
//	p, _ := uniform.NewFromSchema(uniform.Schema{
//	    {Name: "exposure", Type: uniform.Float},
//	    {Name: "mode", Type: uniform.Uint},
//	    {Name: "maxLinearDepth", Type: uniform.Float},
//	})
//	_ = p.Set("exposure", 2.5)
//	offset, data := p.DirtyBytes()
//	queue.WriteBuffer(buf, uint64(offset), data)
//	p.ClearDirty()
//
// A new Proxy starts fully dirty so the first upload copies the whole block.
//
// Writes are validated: int and uint fields reject non-integral values
// (ErrNotInteger), uint fields reject negative values (ErrNegative). These
// are programmer errors and are returned synchronously.
package uniform
