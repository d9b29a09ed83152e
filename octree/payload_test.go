package octree

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func sampleGeometry() *Geometry {
	return &Geometry{
		Primitive: PrimitiveTriangles,
		Positions: []float32{
			0, 0, 0,
			1, 0, 0,
			0, 2, -1,
		},
		Colors:    []uint8{255, 0, 0, 255, 0, 255, 0, 255, 0, 0, 255, 255},
		Normals:   []int8{0, 0, 127, 0, 0, 0, 127, 0, 0, 0, 127, 0},
		ObjectIDs: []uint32{9, 3, 9},
		Indices:   []uint32{0, 1, 2},
	}
}

func TestDecodePayload_Interleaved(t *testing.T) {
	data, err := EncodePayload(sampleGeometry())
	if err != nil {
		t.Fatalf("EncodePayload() error = %v", err)
	}
	p, err := DecodePayload(data, false)
	if err != nil {
		t.Fatalf("DecodePayload() error = %v", err)
	}

	if p.Primitive != PrimitiveTriangles || p.VertexCount != 3 {
		t.Errorf("primitive/count = %v/%d, want triangles/3", p.Primitive, p.VertexCount)
	}
	if got := p.Format.Stride(); got != 24 {
		t.Fatalf("Stride() = %d, want 24", got)
	}
	if len(p.Vertices) != 72 {
		t.Fatalf("len(Vertices) = %d, want 72", len(p.Vertices))
	}
	if p.Positions != nil {
		t.Errorf("Positions = %d bytes, want nil", len(p.Positions))
	}

	// Vertex 2: position, color, normal, object id.
	v := p.Vertices[48:72]
	if y := math.Float32frombits(binary.LittleEndian.Uint32(v[4:])); y != 2 {
		t.Errorf("vertex 2 y = %v, want 2", y)
	}
	if !bytes.Equal(v[12:16], []byte{0, 0, 255, 255}) {
		t.Errorf("vertex 2 color = %v", v[12:16])
	}
	if v[18] != 127 {
		t.Errorf("vertex 2 normal z = %d, want 127", v[18])
	}
	if id := binary.LittleEndian.Uint32(v[20:]); id != 9 {
		t.Errorf("vertex 2 object id = %d, want 9", id)
	}

	if !slices.Equal(p.ObjectIDs, []uint32{3, 9}) {
		t.Errorf("ObjectIDs = %v, want [3 9]", p.ObjectIDs)
	}
	if !slices.Equal(p.Indices, []uint32{0, 1, 2}) {
		t.Errorf("Indices = %v", p.Indices)
	}
	want := Bounds{Min: mgl32.Vec3{0, 0, -1}, Max: mgl32.Vec3{1, 2, 0}}
	if p.Bounds != want {
		t.Errorf("Bounds = %v, want %v", p.Bounds, want)
	}
	if p.ByteSize() != 72+12 {
		t.Errorf("ByteSize() = %d, want 84", p.ByteSize())
	}
	if len(p.IndexBytes()) != 12 {
		t.Errorf("len(IndexBytes()) = %d, want 12", len(p.IndexBytes()))
	}
}

func TestDecodePayload_SeparatePositions(t *testing.T) {
	data, err := EncodePayload(sampleGeometry())
	if err != nil {
		t.Fatal(err)
	}
	p, err := DecodePayload(data, true)
	if err != nil {
		t.Fatal(err)
	}
	if p.Format.Stride() != 12 {
		t.Errorf("Stride() = %d, want 12", p.Format.Stride())
	}
	if len(p.Positions) != 36 {
		t.Errorf("len(Positions) = %d, want 36", len(p.Positions))
	}
	if off := p.Format.Offset(0); off != -1 {
		t.Errorf("Offset(position) = %d, want -1", off)
	}
	if off := p.Format.Offset(AttrObjectID); off != 8 {
		t.Errorf("Offset(AttrObjectID) = %d, want 8", off)
	}
}

func TestVertexFormat_Offset(t *testing.T) {
	f := VertexFormat{Attributes: AttrColor | AttrObjectID}
	tests := []struct {
		attr Attribute
		want int
	}{
		{0, 0},
		{AttrColor, 12},
		{AttrNormal, -1},
		{AttrObjectID, 16},
	}
	for _, tt := range tests {
		if got := f.Offset(tt.attr); got != tt.want {
			t.Errorf("Offset(%d) = %d, want %d", tt.attr, got, tt.want)
		}
	}
	if f.Stride() != 20 {
		t.Errorf("Stride() = %d, want 20", f.Stride())
	}
}

func TestDecodePayload_Errors(t *testing.T) {
	good, err := EncodePayload(sampleGeometry())
	if err != nil {
		t.Fatal(err)
	}
	mutate := func(f func(b []byte) []byte) []byte {
		return f(slices.Clone(good))
	}

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrTruncated},
		{"bad magic", mutate(func(b []byte) []byte { b[0] = 'X'; return b }), ErrBadMagic},
		{"bad primitive", mutate(func(b []byte) []byte { b[4] = 7; return b }), ErrCorrupt},
		{"unknown attribute", mutate(func(b []byte) []byte { b[5] |= 0x80; return b }), ErrCorrupt},
		{"truncated body", good[:len(good)-1], ErrTruncated},
		{"trailing bytes", append(slices.Clone(good), 0), ErrCorrupt},
		{"index out of range", mutate(func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[len(b)-4:], 3)
			return b
		}), ErrCorrupt},
		{"nan position", mutate(func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[headerSize:], math.Float32bits(float32(math.NaN())))
			return b
		}), ErrCorrupt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodePayload(tt.data, false); !errors.Is(err, tt.want) {
				t.Errorf("DecodePayload() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEncodePayload_Validation(t *testing.T) {
	tests := []struct {
		name string
		g    Geometry
	}{
		{"partial position", Geometry{Positions: []float32{1, 2}}},
		{"short colors", Geometry{Positions: []float32{1, 2, 3}, Colors: []uint8{1}}},
		{"short normals", Geometry{Positions: []float32{1, 2, 3}, Normals: []int8{1, 2}}},
		{"extra ids", Geometry{Positions: []float32{1, 2, 3}, ObjectIDs: []uint32{1, 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := EncodePayload(&tt.g); !errors.Is(err, ErrCorrupt) {
				t.Errorf("EncodePayload() error = %v, want ErrCorrupt", err)
			}
		})
	}
}

func TestDecodePayload_LinesNeedPairs(t *testing.T) {
	data, err := EncodePayload(&Geometry{
		Primitive: PrimitiveLines,
		Positions: []float32{0, 0, 0, 1, 1, 1, 2, 2, 2},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DecodePayload(data, false); !errors.Is(err, ErrCorrupt) {
		t.Errorf("DecodePayload() error = %v, want ErrCorrupt", err)
	}
}
