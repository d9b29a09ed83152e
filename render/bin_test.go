package render

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/pcview/render/rendertest"
	"github.com/gogpu/wgpu/hal"
)

func TestBin_DisposeReverseOrder(t *testing.T) {
	ctx, dev, _ := newTestContext(t)
	bin := ctx.NewBin("test")

	buf, err := bin.CreateBuffer(&hal.BufferDescriptor{Label: "vb", Size: 16, Usage: gputypes.BufferUsageVertex})
	if err != nil {
		t.Fatal(err)
	}
	layout, err := bin.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{Label: "layout"})
	if err != nil {
		t.Fatal(err)
	}
	group, err := bin.CreateBindGroup(&hal.BindGroupDescriptor{Label: "group", Layout: layout})
	if err != nil {
		t.Fatal(err)
	}
	if bin.Len() != 3 {
		t.Fatalf("Len = %d, want 3", bin.Len())
	}

	before := len(dev.Destroyed())
	bin.Dispose()
	got := dev.Destroyed()[before:]
	want := []hal.Resource{group, layout, buf}
	if len(got) != len(want) {
		t.Fatalf("destroyed %d resources, want %d", len(got), len(want))
	}
	for i := range want {
		if hal.Resource(got[i]) != want[i] {
			t.Errorf("destroyed[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if bin.Len() != 0 {
		t.Errorf("Len after Dispose = %d", bin.Len())
	}

	bin.Dispose()
	if n := len(dev.Destroyed()) - before; n != 3 {
		t.Errorf("second Dispose destroyed more resources: total %d", n)
	}
}

func TestBin_CreateAfterDispose(t *testing.T) {
	ctx, _, _ := newTestContext(t)
	bin := ctx.NewBin("test")
	bin.Dispose()
	_, err := bin.CreateBuffer(&hal.BufferDescriptor{Label: "late", Size: 4})
	if !errors.Is(err, ErrDisposed) {
		t.Errorf("err = %v, want ErrDisposed", err)
	}
}

func TestBin_Release(t *testing.T) {
	ctx, dev, _ := newTestContext(t)
	bin := ctx.NewBin("test")
	a, _ := bin.CreateBuffer(&hal.BufferDescriptor{Label: "a", Size: 4})
	b, _ := bin.CreateBuffer(&hal.BufferDescriptor{Label: "b", Size: 4})

	if !bin.Release(a) {
		t.Fatal("Release(a) = false")
	}
	if bin.Release(a) {
		t.Error("second Release(a) = true")
	}
	destroyed := dev.Destroyed()
	if last := destroyed[len(destroyed)-1]; hal.Resource(last) != a {
		t.Errorf("released %v, want %v", last, a)
	}
	if bin.Len() != 1 {
		t.Errorf("Len = %d, want 1", bin.Len())
	}
	bin.Dispose()
	destroyed = dev.Destroyed()
	if last := destroyed[len(destroyed)-1]; hal.Resource(last) != b {
		t.Errorf("Dispose destroyed %v, want %v", last, b)
	}
}

func TestBin_ForgetMakesNoGPUCalls(t *testing.T) {
	ctx, dev, _ := newTestContext(t)
	bin := ctx.NewBin("test")
	for range 4 {
		if _, err := bin.CreateBuffer(&hal.BufferDescriptor{Size: 4}); err != nil {
			t.Fatal(err)
		}
	}
	before := len(dev.Destroyed())
	bin.Forget()
	bin.Dispose()
	if n := len(dev.Destroyed()) - before; n != 0 {
		t.Errorf("Forget then Dispose destroyed %d resources, want 0", n)
	}
}

func TestBin_CreateBufferInit(t *testing.T) {
	ctx, _, queue := newTestContext(t)
	bin := ctx.NewBin("test")
	queue.Reset()

	buf, err := bin.CreateBufferInit("data", gputypes.BufferUsageVertex, []byte{1, 2, 3, 4, 5})
	if err != nil {
		t.Fatal(err)
	}
	writes := queue.WritesTo(buf)
	if len(writes) != 1 {
		t.Fatalf("writes = %d, want 1", len(writes))
	}
	if want := []byte{1, 2, 3, 4, 5, 0, 0, 0}; !slices.Equal(writes[0].Data, want) {
		t.Errorf("data = %v, want padded %v", writes[0].Data, want)
	}
}

func TestBin_CreateError(t *testing.T) {
	ctx, dev, _ := newTestContext(t)
	bin := ctx.NewBin("test")
	dev.Fail = rendertest.KindRenderPipeline
	_, err := bin.CreateRenderPipeline(&hal.RenderPipelineDescriptor{Label: "broken"})
	if !errors.Is(err, rendertest.ErrInjected) {
		t.Errorf("err = %v, want ErrInjected", err)
	}
	if bin.Len() != 0 {
		t.Errorf("failed creation was tracked")
	}
}
