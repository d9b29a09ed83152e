package render

import (
	"slices"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/pcview/render/rendertest"
)

func TestDraw(t *testing.T) {
	index := &rendertest.Handle{ID: 7, Kind: rendertest.KindBuffer, Label: "idx"}
	tests := []struct {
		name   string
		params DrawParams
		want   []string
		stats  DrawStats
	}{
		{
			name:   "nil",
			params: nil,
		},
		{
			name:   "arrays",
			params: DrawArrays{Topology: gputypes.PrimitiveTopologyTriangleList, First: 3, Count: 36},
			want:   []string{"draw 36 1 3 0"},
			stats:  DrawStats{DrawCalls: 1, Vertices: 36, Instances: 1, Primitives: 12},
		},
		{
			name:   "empty arrays",
			params: DrawArrays{Count: 0},
		},
		{
			name:   "arrays instanced",
			params: DrawArraysInstanced{Topology: gputypes.PrimitiveTopologyTriangleList, Count: 6, Instances: 100},
			want:   []string{"draw 6 100 0 0"},
			stats:  DrawStats{DrawCalls: 1, Vertices: 600, Instances: 100, Primitives: 200},
		},
		{
			name:   "zero instances",
			params: DrawArraysInstanced{Count: 6},
		},
		{
			name:   "elements",
			params: DrawElements{Topology: gputypes.PrimitiveTopologyLineList, Index: index, Count: 24, BaseVertex: 2},
			want:   []string{"index buffer#7(idx) Uint32 0", "drawIndexed 24 1 0 2 0"},
			stats:  DrawStats{DrawCalls: 1, Vertices: 24, Instances: 1, Primitives: 12},
		},
		{
			name:   "elements without index buffer",
			params: DrawElements{Count: 24},
		},
		{
			name: "elements instanced",
			params: DrawElementsInstanced{
				Topology: gputypes.PrimitiveTopologyTriangleList, Index: index,
				Format: gputypes.IndexFormatUint16, Count: 6, Instances: 4, FirstInstance: 1,
			},
			want:  []string{"index buffer#7(idx) Uint16 0", "drawIndexed 6 4 0 0 1"},
			stats: DrawStats{DrawCalls: 1, Vertices: 24, Instances: 4, Primitives: 8},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pass := &rendertest.Pass{}
			got := Draw(pass, tt.params)
			if got != tt.stats {
				t.Errorf("stats = %+v, want %+v", got, tt.stats)
			}
			if !slices.Equal(pass.Commands, tt.want) {
				t.Errorf("commands = %q, want %q", pass.Commands, tt.want)
			}
		})
	}
}

func TestPrimitiveCount(t *testing.T) {
	tests := []struct {
		topology gputypes.PrimitiveTopology
		n, want  int
	}{
		{gputypes.PrimitiveTopologyPointList, 5, 5},
		{gputypes.PrimitiveTopologyLineList, 5, 2},
		{gputypes.PrimitiveTopologyLineStrip, 5, 4},
		{gputypes.PrimitiveTopologyLineStrip, 0, 0},
		{gputypes.PrimitiveTopologyTriangleList, 7, 2},
		{gputypes.PrimitiveTopologyTriangleStrip, 5, 3},
		{gputypes.PrimitiveTopologyTriangleStrip, 1, 0},
	}
	for _, tt := range tests {
		if got := PrimitiveCount(tt.topology, tt.n); got != tt.want {
			t.Errorf("PrimitiveCount(%v, %d) = %d, want %d", tt.topology, tt.n, got, tt.want)
		}
	}
}

func TestDrawStats_Add(t *testing.T) {
	a := DrawStats{DrawCalls: 1, Vertices: 3, Instances: 1, Primitives: 1}
	b := DrawStats{DrawCalls: 2, Vertices: 12, Instances: 5, Primitives: 4}
	want := DrawStats{DrawCalls: 3, Vertices: 15, Instances: 6, Primitives: 5}
	if got := a.Add(b); got != want {
		t.Errorf("Add = %+v, want %+v", got, want)
	}
}
