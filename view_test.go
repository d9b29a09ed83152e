package pcview

import (
	"errors"
	"slices"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/pcview/modules"
	"github.com/gogpu/pcview/octree"
	"github.com/gogpu/pcview/render"
	"github.com/gogpu/pcview/render/rendertest"
	"github.com/gogpu/wgpu/hal"
)

// recorder is a module that appends its lifecycle calls to a shared log.
type recorder struct {
	name      string
	log       *[]string
	updateErr error
	stats     render.DrawStats
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) Update(*render.State) error {
	*r.log = append(*r.log, "update "+r.name)
	return r.updateErr
}

func (r *recorder) Render(hal.RenderPassEncoder, *render.State) render.DrawStats {
	*r.log = append(*r.log, "render "+r.name)
	return r.stats
}

func (r *recorder) ContextLost() { *r.log = append(*r.log, "lost "+r.name) }
func (r *recorder) Dispose()     { *r.log = append(*r.log, "dispose "+r.name) }

// restorable keeps its identity across Restore.
type restorable struct {
	recorder
	ctx *render.Context
}

func (r *restorable) Restore(ctx *render.Context) error {
	*r.log = append(*r.log, "restore "+r.name)
	r.ctx = ctx
	return nil
}

func factory(m render.Module) render.ModuleFactory {
	return func(*render.Context) (render.Module, error) { return m, nil }
}

func newContext(t *testing.T) (*render.Context, *rendertest.Device, *rendertest.Queue) {
	t.Helper()
	dev, queue := rendertest.NewDevice(t)
	ctx, err := render.NewContext(dev, queue)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	t.Cleanup(ctx.Dispose)
	return ctx, dev, queue
}

func TestView_FrameOrdering(t *testing.T) {
	ctx, _, _ := newContext(t)
	var log []string
	a := &recorder{name: "a", log: &log, stats: render.DrawStats{DrawCalls: 1, Vertices: 3, Instances: 1, Primitives: 1}}
	b := &recorder{name: "b", log: &log, stats: render.DrawStats{DrawCalls: 2, Vertices: 6, Instances: 2, Primitives: 2}}

	v, err := NewView(ctx, WithModules(factory(a), nil, factory(b)))
	if err != nil {
		t.Fatal(err)
	}
	if got := v.Modules(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Modules = %v", got)
	}

	total, err := v.Frame(&rendertest.Pass{}, &render.State{})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"update a", "update b", "render a", "render b"}
	if !slices.Equal(log, want) {
		t.Errorf("calls = %v, want %v", log, want)
	}
	if total.DrawCalls != 3 || total.Primitives != 3 {
		t.Errorf("total = %+v", total)
	}
	st := v.Stats()
	if st.Frame != 1 || len(st.Modules) != 2 || st.Modules[1].Name != "b" || st.Modules[1].DrawCalls != 2 {
		t.Errorf("stats = %+v", st)
	}

	v.Dispose()
	v.Dispose()
	if got := log[len(log)-2:]; !slices.Equal(got, []string{"dispose b", "dispose a"}) {
		t.Errorf("dispose order = %v", got)
	}
	if _, err := v.Frame(&rendertest.Pass{}, nil); !errors.Is(err, ErrDisposed) {
		t.Errorf("Frame after Dispose = %v", err)
	}
}

func TestView_UpdateErrorSkipsRender(t *testing.T) {
	ctx, _, _ := newContext(t)
	var log []string
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	a := &recorder{name: "a", log: &log, updateErr: errA}
	b := &recorder{name: "b", log: &log, updateErr: errB}
	v, err := NewView(ctx, WithModules(factory(a), factory(b)))
	if err != nil {
		t.Fatal(err)
	}
	defer v.Dispose()

	_, err = v.Frame(&rendertest.Pass{}, nil)
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("Frame error = %v, want both module errors", err)
	}
	if slices.Contains(log, "render a") || slices.Contains(log, "render b") {
		t.Errorf("rendered after failed update: %v", log)
	}
	if v.Stats().Frame != 0 {
		t.Error("failed frame counted")
	}
}

func TestNewView_FactoryError(t *testing.T) {
	ctx, _, _ := newContext(t)
	var log []string
	a := &recorder{name: "a", log: &log}
	boom := func(*render.Context) (render.Module, error) { return nil, rendertest.ErrInjected }

	v, err := NewView(ctx, WithModules(factory(a), boom))
	if !errors.Is(err, rendertest.ErrInjected) || v != nil {
		t.Fatalf("NewView = %v, %v", v, err)
	}
	if !slices.Equal(log, []string{"dispose a"}) {
		t.Errorf("built modules not disposed: %v", log)
	}

	if _, err := NewView(nil); !errors.Is(err, ErrNilContext) {
		t.Errorf("NewView(nil) = %v", err)
	}
}

func TestView_LoseAndRestore(t *testing.T) {
	ctx, _, _ := newContext(t)
	var log []string
	plain := &recorder{name: "plain", log: &log}
	keep := &restorable{recorder: recorder{name: "keep", log: &log}}
	builds := 0
	rebuild := func(*render.Context) (render.Module, error) {
		builds++
		return plain, nil
	}
	v, err := NewView(ctx, WithModules(rebuild, factory(keep)))
	if err != nil {
		t.Fatal(err)
	}
	defer v.Dispose()

	v.LoseContext()
	if !ctx.Lost() {
		t.Error("context not lost")
	}
	if _, err := v.Frame(&rendertest.Pass{}, nil); !errors.Is(err, render.ErrContextLost) {
		t.Errorf("Frame on lost context = %v", err)
	}

	fresh, _, _ := newContext(t)
	log = nil
	if err := v.Restore(fresh); err != nil {
		t.Fatal(err)
	}
	want := []string{"dispose plain", "restore keep"}
	if !slices.Equal(log, want) {
		t.Errorf("restore calls = %v, want %v", log, want)
	}
	if builds != 2 {
		t.Errorf("factory calls = %d, want 2", builds)
	}
	if keep.ctx != fresh || v.Context() != fresh {
		t.Error("view not moved to the new context")
	}
	if _, err := v.Frame(&rendertest.Pass{}, nil); err != nil {
		t.Errorf("Frame after restore: %v", err)
	}
}

func points(t *testing.T, n int) *octree.Payload {
	t.Helper()
	g := &octree.Geometry{Primitive: octree.PrimitivePoints}
	for i := range n {
		g.Positions = append(g.Positions, float32(i), 0, 0)
	}
	data, err := octree.EncodePayload(g)
	if err != nil {
		t.Fatal(err)
	}
	p, err := octree.DecodePayload(data, false)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func fullState() *render.State {
	return &render.State{
		Camera: &render.CameraState{
			Position: mgl32.Vec3{0, 0, 5},
			Up:       mgl32.Vec3{0, 1, 0},
			FovY:     60,
			Near:     0.1,
			Far:      100,
		},
		Output:      &render.OutputState{Width: 640, Height: 480},
		Clipping:    &render.ClippingState{},
		Tonemapping: &render.TonemapState{Exposure: 1},
		Cube:        &render.CubeState{Size: mgl32.Vec3{1, 1, 1}, Color: mgl32.Vec4{1, 1, 1, 1}},
		Watermark:   &render.WatermarkState{Color: mgl32.Vec4{1, 1, 1, 0.5}, Scale: 0.1, Margin: 8},
		Octree:      &render.OctreeState{PointSize: 2},
	}
}

func TestView_DefaultModules(t *testing.T) {
	ctx, _, queue := newContext(t)
	v, err := NewView(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer v.Dispose()

	names := v.Modules()
	want := []string{"camera", "clipping", "tonemap", "cube", "octree", "watermark"}
	if !slices.Equal(names, want) {
		t.Fatalf("Modules = %v, want %v", names, want)
	}
	oct := v.Octree()
	if oct == nil {
		t.Fatal("no octree module")
	}
	if err := oct.AddNode("r", points(t, 10)); err != nil {
		t.Fatal(err)
	}

	state := fullState()
	pass := &rendertest.Pass{}
	total, err := v.Frame(pass, state)
	if err != nil {
		t.Fatal(err)
	}
	// cube 12 lines, octree 10 quads, watermark 6 triangles
	if total.DrawCalls != 3 {
		t.Errorf("draw calls = %d, want 3", total.DrawCalls)
	}
	if wantPrims := 12 + 20 + 6; total.Primitives != wantPrims {
		t.Errorf("primitives = %d, want %d", total.Primitives, wantPrims)
	}
	if got := len(queue.WritesTo(ctx.Camera().Buffer())); got != 1 {
		t.Errorf("camera writes = %d, want 1", got)
	}

	// unchanged state uploads nothing
	queue.Reset()
	if _, err := v.Frame(pass, state); err != nil {
		t.Fatal(err)
	}
	if len(queue.Writes) != 0 {
		t.Errorf("unchanged frame wrote %d times", len(queue.Writes))
	}
	if v.Stats().Frame != 2 {
		t.Errorf("frame = %d", v.Stats().Frame)
	}

	m, ok := v.Module("octree")
	if !ok || m != render.Module(oct) {
		t.Error("Module(octree) mismatch")
	}
	if _, ok := v.Module("missing"); ok {
		t.Error("Module(missing) found")
	}
}

func TestView_RestoreDefaultModules(t *testing.T) {
	ctx, _, _ := newContext(t)
	v, err := NewView(ctx, WithModules(modules.CameraFactory, modules.OctreeFactory))
	if err != nil {
		t.Fatal(err)
	}
	defer v.Dispose()
	if err := v.Octree().AddNode("r", points(t, 3)); err != nil {
		t.Fatal(err)
	}
	state := fullState()
	if _, err := v.Frame(&rendertest.Pass{}, state); err != nil {
		t.Fatal(err)
	}

	v.LoseContext()
	fresh, _, queue := newContext(t)
	if err := v.Restore(fresh); err != nil {
		t.Fatal(err)
	}
	if got := v.Octree().Nodes(); !slices.Equal(got, []string{"r"}) {
		t.Errorf("nodes after restore = %v", got)
	}

	pass := &rendertest.Pass{}
	queue.Reset()
	total, err := v.Frame(pass, state)
	if err != nil {
		t.Fatal(err)
	}
	if total.DrawCalls != 1 {
		t.Errorf("draw calls = %d, want 1", total.DrawCalls)
	}
	// same state, but the rebuilt camera uploads its full block
	w := queue.WritesTo(fresh.Camera().Buffer())
	if len(w) != 1 || len(w[0].Data) != int(fresh.Camera().Size()) {
		t.Errorf("camera writes after restore = %+v", w)
	}
}
