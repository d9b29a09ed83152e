// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package modules

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"maps"
	"slices"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/pcview/octree"
	"github.com/gogpu/pcview/render"
	"github.com/gogpu/pcview/sorted"
	"github.com/gogpu/pcview/uniform"
	"github.com/gogpu/wgpu/hal"
)

var octreeSchema = uniform.Schema{
	{Name: "highlightColor", Type: uniform.Vec4},
	{Name: "pointSize", Type: uniform.Float},
	{Name: "highlightMode", Type: uniform.Uint},
}

const (
	octreeHighlightColor = iota
	octreePointSize
	octreeHighlightMode
)

// DefaultPointSize is the point diameter in pixels when the state leaves it
// unset.
const DefaultPointSize = 2

// ErrNilPayload is returned by AddNode for a nil payload.
var ErrNilPayload = errors.New("modules: nil payload")

// Octree draws the loaded nodes of an octree. Each node keeps its payload
// CPU-side and owns a bin with its vertex buffers, so removing a node frees
// exactly its GPU memory and the module can be restored after context loss.
type Octree struct {
	ctx       *render.Context
	bin       *render.Bin
	ubo       *render.UniformBuffer
	group     hal.BindGroup
	pipelines [3]hal.RenderPipeline

	nodes     map[string]*node
	highlight []uint32

	state render.ModuleState[*render.OctreeState]
	lost  bool
}

// NewOctree creates the octree pipelines on ctx. It starts without nodes.
func NewOctree(ctx *render.Context) (*Octree, error) {
	m := &Octree{nodes: make(map[string]*node)}
	if err := m.init(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Octree) init(ctx *render.Context) error {
	m.ctx = ctx
	m.bin = ctx.NewBin("octree")
	err := m.createPipelines()
	if err != nil {
		m.bin.Dispose()
		return fmt.Errorf("octree: %w", err)
	}
	return nil
}

func (m *Octree) createPipelines() error {
	var err error
	if m.ubo, err = m.ctx.NewUniformBuffer(m.bin, "octree", octreeSchema); err != nil {
		return err
	}
	if m.group, err = m.ctx.NewUniformBindGroup(m.bin, "octree", m.ubo); err != nil {
		return err
	}
	descs := [...]struct {
		prim     octree.Primitive
		label    string
		entry    string
		step     gputypes.VertexStepMode
		topology gputypes.PrimitiveTopology
	}{
		{octree.PrimitivePoints, "octree points", "vs_points", gputypes.VertexStepModeInstance, gputypes.PrimitiveTopologyTriangleList},
		{octree.PrimitiveLines, "octree lines", "vs_mesh", gputypes.VertexStepModeVertex, gputypes.PrimitiveTopologyLineList},
		{octree.PrimitiveTriangles, "octree triangles", "vs_mesh", gputypes.VertexStepModeVertex, gputypes.PrimitiveTopologyTriangleList},
	}
	for _, d := range descs {
		m.pipelines[d.prim], err = m.ctx.NewPipeline(m.bin, render.PipelineDesc{
			Label:       d.label,
			Shader:      octreeShader,
			Program:     "octree",
			VertexEntry: d.entry,
			Buffers:     nodeBufferLayouts(d.step),
			Topology:    d.topology,
			DepthWrite:  true,
			Layouts:     []hal.BindGroupLayout{m.ctx.UniformLayout()},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// nodeBufferLayouts describes the three per-node vertex buffers: positions,
// colors and highlight flags.
func nodeBufferLayouts(step gputypes.VertexStepMode) []gputypes.VertexBufferLayout {
	attr := func(f gputypes.VertexFormat, loc uint32) []gputypes.VertexAttribute {
		return []gputypes.VertexAttribute{{Format: f, Offset: 0, ShaderLocation: loc}}
	}
	return []gputypes.VertexBufferLayout{
		{ArrayStride: 12, StepMode: step, Attributes: attr(gputypes.VertexFormatFloat32x3, 0)},
		{ArrayStride: 4, StepMode: step, Attributes: attr(gputypes.VertexFormatUnorm8x4, 1)},
		{ArrayStride: 4, StepMode: step, Attributes: attr(gputypes.VertexFormatUint32, 2)},
	}
}

// Name implements render.Module.
func (m *Octree) Name() string { return "octree" }

// AddNode uploads p as node id, replacing a node with the same id.
func (m *Octree) AddNode(id string, p *octree.Payload) error {
	if p == nil {
		return ErrNilPayload
	}
	if m.lost {
		return fmt.Errorf("octree: add node %s: %w", id, render.ErrContextLost)
	}
	n, err := newNode(m.ctx, id, p, m.highlight)
	if err != nil {
		return fmt.Errorf("octree: add node %s: %w", id, err)
	}
	if old, ok := m.nodes[id]; ok {
		old.bin.Dispose()
	}
	m.nodes[id] = n
	return nil
}

// Load fetches n through l and adds it. It blocks until the load finishes
// and must be called from the goroutine that renders.
func (m *Octree) Load(ctx context.Context, l *octree.Loader, n *octree.Node, version string) error {
	p, err := l.Load(ctx, n, version)
	if err != nil {
		return err
	}
	return m.AddNode(n.ID, p)
}

// RemoveNode frees the GPU buffers of node id. It reports whether the node
// existed.
func (m *Octree) RemoveNode(id string) bool {
	n, ok := m.nodes[id]
	if !ok {
		return false
	}
	n.bin.Dispose()
	delete(m.nodes, id)
	return true
}

// Nodes returns the ids of the loaded nodes in ascending order.
func (m *Octree) Nodes() []string {
	return slices.Sorted(maps.Keys(m.nodes))
}

// Payload returns the payload of node id.
func (m *Octree) Payload(id string) (*octree.Payload, bool) {
	n, ok := m.nodes[id]
	if !ok {
		return nil, false
	}
	return n.payload, true
}

// GPUBytes returns the vertex and index memory of all nodes.
func (m *Octree) GPUBytes() int {
	total := 0
	for _, n := range m.nodes {
		total += n.gpuBytes()
	}
	return total
}

// Highlighted returns the number of highlighted vertices across all nodes.
func (m *Octree) Highlighted() int {
	total := 0
	for _, n := range m.nodes {
		total += n.highlighted
	}
	return total
}

// ObjectIDs yields every object id referenced by a loaded node, ascending
// and without duplicates.
func (m *Octree) ObjectIDs() iter.Seq[uint32] {
	payloads := make([]*octree.Payload, 0, len(m.nodes))
	for _, id := range m.Nodes() {
		payloads = append(payloads, m.nodes[id].payload)
	}
	return func(yield func(uint32) bool) {
		first, last := true, uint32(0)
		for id := range octree.UnionObjectIDs(payloads...) {
			if !first && id == last {
				continue
			}
			first, last = false, id
			if !yield(id) {
				return
			}
		}
	}
}

// Update writes the point size and highlight uniforms and, when the
// highlight set changed, every node's highlight flags.
func (m *Octree) Update(state *render.State) error {
	if m.lost || state.Octree == nil || !m.state.HasChanged(state.Octree) {
		return nil
	}
	if err := m.write(state.Octree); err != nil {
		m.state.Reset()
		return err
	}
	return nil
}

// write uploads the uniforms and, when the highlight set changed, every
// node's flags. The highlight baseline moves only once all nodes succeed.
func (m *Octree) write(o *render.OctreeState) error {
	size := o.PointSize
	if size <= 0 {
		size = DefaultPointSize
	}
	p := m.ubo.Proxy()
	if err := p.SetVec4(octreeHighlightColor, o.HighlightColor); err != nil {
		return fmt.Errorf("octree: %w", err)
	}
	if err := p.SetFloat(octreePointSize, size); err != nil {
		return fmt.Errorf("octree: %w", err)
	}
	if err := p.SetUint(octreeHighlightMode, uint32(o.HighlightMode)); err != nil {
		return fmt.Errorf("octree: %w", err)
	}
	if _, err := m.ubo.Upload(); err != nil {
		return err
	}

	highlight := o.Highlight
	if !sorted.IsAscending(highlight) {
		highlight = sorted.Dedup(slices.Clone(highlight))
	}
	if slices.Equal(highlight, m.highlight) {
		return nil
	}
	next := slices.Clone(highlight)
	for _, id := range m.Nodes() {
		if err := m.nodes[id].writeHighlight(m.ctx.Queue(), next); err != nil {
			return fmt.Errorf("octree: node %s: %w", id, err)
		}
	}
	m.highlight = next
	return nil
}

// Render draws every loaded node, switching pipelines only between
// primitive kinds.
func (m *Octree) Render(pass hal.RenderPassEncoder, state *render.State) render.DrawStats {
	var stats render.DrawStats
	if m.lost || state.Octree == nil || len(m.nodes) == 0 {
		return stats
	}
	pass.SetBindGroup(0, m.ctx.FrameBindGroup(), nil)
	pass.SetBindGroup(1, m.group, nil)
	var current hal.RenderPipeline
	for _, id := range m.Nodes() {
		n := m.nodes[id]
		if n.payload.VertexCount == 0 {
			continue
		}
		if pl := m.pipelines[n.payload.Primitive]; pl != current {
			pass.SetPipeline(pl)
			current = pl
		}
		pass.SetVertexBuffer(0, n.positions, 0)
		pass.SetVertexBuffer(1, n.colors, 0)
		pass.SetVertexBuffer(2, n.flags, 0)
		stats = stats.Add(render.Draw(pass, n.drawParams()))
	}
	return stats
}

// ContextLost drops all GPU handles but keeps the node payloads for
// Restore.
func (m *Octree) ContextLost() {
	m.lost = true
	m.bin.Forget()
	for _, n := range m.nodes {
		n.bin.Forget()
	}
	m.state.Reset()
}

// Restore rebuilds the pipelines and every node's buffers on ctx from the
// retained payloads.
func (m *Octree) Restore(ctx *render.Context) error {
	if err := m.init(ctx); err != nil {
		return err
	}
	m.lost = false
	m.state.Reset()
	for _, id := range m.Nodes() {
		n, err := newNode(ctx, id, m.nodes[id].payload, m.highlight)
		if err != nil {
			return fmt.Errorf("octree: restore node %s: %w", id, err)
		}
		m.nodes[id] = n
	}
	return nil
}

// Dispose destroys every node's buffers and the module pipelines.
func (m *Octree) Dispose() {
	for _, id := range m.Nodes() {
		m.nodes[id].bin.Dispose()
	}
	clear(m.nodes)
	m.bin.Dispose()
}
