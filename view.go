// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pcview

import (
	"errors"
	"fmt"

	"github.com/gogpu/pcview/modules"
	"github.com/gogpu/pcview/render"
	"github.com/gogpu/wgpu/hal"
)

// Errors returned by View.
var (
	ErrDisposed   = errors.New("pcview: view disposed")
	ErrNilContext = errors.New("pcview: nil context")
)

// ModuleStats is the draw statistics of one module for the last frame.
type ModuleStats struct {
	Name string
	render.DrawStats
}

// FrameStats describes the last rendered frame.
type FrameStats struct {
	// Frame counts the frames rendered since the view was created.
	Frame uint64

	// Total is the sum over all modules.
	Total render.DrawStats

	Modules []ModuleStats
}

// View owns a list of render modules built on one render.Context and drives
// their lifecycle.
//
// View is not safe for concurrent use. All methods must be called from the
// goroutine that owns the device.
type View struct {
	ctx       *render.Context
	factories []render.ModuleFactory
	modules   []render.Module
	stats     FrameStats
	disposed  bool
}

// NewView builds every module on ctx in order. If a module fails, the
// modules already built are disposed and the error is returned.
//
// The context is not owned by the view: Dispose leaves it alive.
func NewView(ctx *render.Context, opts ...ViewOption) (*View, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	o := defaultViewOptions()
	for _, opt := range opts {
		opt(&o)
	}
	v := &View{
		ctx:       ctx,
		factories: o.factories,
	}
	if err := v.build(ctx); err != nil {
		return nil, err
	}
	Logger().Info("pcview: view created", "modules", len(v.modules))
	return v, nil
}

func (v *View) build(ctx *render.Context) error {
	mods := make([]render.Module, 0, len(v.factories))
	for i, f := range v.factories {
		m, err := f(ctx)
		if err != nil {
			disposeAll(mods)
			return fmt.Errorf("pcview: module %d: %w", i, err)
		}
		mods = append(mods, m)
	}
	v.modules = mods
	return nil
}

// disposeAll disposes modules newest first.
func disposeAll(mods []render.Module) {
	for i := len(mods) - 1; i >= 0; i-- {
		mods[i].Dispose()
	}
}

// Context returns the context the modules are currently built on.
func (v *View) Context() *render.Context { return v.ctx }

// Modules returns the module names in update order.
func (v *View) Modules() []string {
	names := make([]string, len(v.modules))
	for i, m := range v.modules {
		names[i] = m.Name()
	}
	return names
}

// Module returns the first module with the given name.
func (v *View) Module(name string) (render.Module, bool) {
	for _, m := range v.modules {
		if m.Name() == name {
			return m, true
		}
	}
	return nil, false
}

// Octree returns the octree module, or nil if the view has none.
func (v *View) Octree() *modules.Octree {
	for _, m := range v.modules {
		if o, ok := m.(*modules.Octree); ok {
			return o
		}
	}
	return nil
}

// Frame updates every module from state and then records their draws into
// pass. No module renders if any Update fails; the returned error joins
// every failure.
func (v *View) Frame(pass hal.RenderPassEncoder, state *render.State) (render.DrawStats, error) {
	switch {
	case v.disposed:
		return render.DrawStats{}, ErrDisposed
	case v.ctx.Lost():
		return render.DrawStats{}, render.ErrContextLost
	}
	if state == nil {
		state = &render.State{}
	}

	var errs []error
	for _, m := range v.modules {
		if err := m.Update(state); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", m.Name(), err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return render.DrawStats{}, err
	}

	stats := FrameStats{
		Frame:   v.stats.Frame + 1,
		Modules: make([]ModuleStats, 0, len(v.modules)),
	}
	for _, m := range v.modules {
		s := m.Render(pass, state)
		stats.Total = stats.Total.Add(s)
		stats.Modules = append(stats.Modules, ModuleStats{Name: m.Name(), DrawStats: s})
	}
	v.stats = stats
	return stats.Total, nil
}

// Stats returns the statistics of the last successful frame.
func (v *View) Stats() FrameStats { return v.stats }

// LoseContext marks the context lost and tells every module to drop its GPU
// handles. Frame returns render.ErrContextLost until Restore succeeds.
func (v *View) LoseContext() {
	if v.disposed {
		return
	}
	v.ctx.LoseContext()
	for _, m := range v.modules {
		m.ContextLost()
	}
}

// Restore moves every module onto ctx. Modules implementing
// render.Restorer keep their data; the others are rebuilt from their
// factory. The caller remains responsible for disposing the old context.
// If Restore fails the view is unusable and should be disposed.
func (v *View) Restore(ctx *render.Context) error {
	if v.disposed {
		return ErrDisposed
	}
	if ctx == nil {
		return ErrNilContext
	}
	if !v.ctx.Lost() {
		v.LoseContext()
	}
	for i, m := range v.modules {
		if r, ok := m.(render.Restorer); ok {
			if err := r.Restore(ctx); err != nil {
				return fmt.Errorf("pcview: restore %s: %w", m.Name(), err)
			}
			continue
		}
		m.Dispose()
		nm, err := v.factories[i](ctx)
		if err != nil {
			return fmt.Errorf("pcview: rebuild %s: %w", m.Name(), err)
		}
		v.modules[i] = nm
	}
	v.ctx = ctx
	Logger().Info("pcview: view restored", "modules", len(v.modules))
	return nil
}

// Dispose disposes every module, newest first. It is idempotent. The
// context is left alive.
func (v *View) Dispose() {
	if v.disposed {
		return
	}
	v.disposed = true
	disposeAll(v.modules)
	v.modules = nil
}
