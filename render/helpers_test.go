package render

import (
	"testing"

	"github.com/gogpu/pcview/render/rendertest"
)

// newTestContext builds a context over recording fakes.
func newTestContext(t *testing.T, opts ...ContextOption) (*Context, *rendertest.Device, *rendertest.Queue) {
	t.Helper()
	dev, queue := rendertest.NewDevice(t)
	ctx, err := NewContext(dev, queue, opts...)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	t.Cleanup(ctx.Dispose)
	return ctx, dev, queue
}
