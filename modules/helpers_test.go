package modules

import (
	"testing"

	"github.com/gogpu/pcview/octree"
	"github.com/gogpu/pcview/render"
	"github.com/gogpu/pcview/render/rendertest"
)

func newTestContext(t *testing.T) (*render.Context, *rendertest.Device, *rendertest.Queue) {
	t.Helper()
	dev, queue := rendertest.NewDevice(t)
	ctx, err := render.NewContext(dev, queue)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	t.Cleanup(ctx.Dispose)
	return ctx, dev, queue
}

// decode builds a payload through the wire codec.
func decode(t *testing.T, g *octree.Geometry, separate bool) *octree.Payload {
	t.Helper()
	data, err := octree.EncodePayload(g)
	if err != nil {
		t.Fatalf("EncodePayload: %v", err)
	}
	p, err := octree.DecodePayload(data, separate)
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	return p
}

// points returns n points on the x axis with object ids ids[i%len(ids)].
func points(t *testing.T, n int, ids ...uint32) *octree.Payload {
	t.Helper()
	g := &octree.Geometry{Primitive: octree.PrimitivePoints}
	for i := range n {
		g.Positions = append(g.Positions, float32(i), 0, 0)
		g.Colors = append(g.Colors, uint8(i), 0, 0, 255)
		if len(ids) > 0 {
			g.ObjectIDs = append(g.ObjectIDs, ids[i%len(ids)])
		}
	}
	return decode(t, g, false)
}
