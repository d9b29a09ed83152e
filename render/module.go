// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "github.com/gogpu/wgpu/hal"

// Module is a unit of rendering with a fixed lifecycle.
//
// Update is called for every module before any module renders, so shared
// uniform buffers written by one module are uploaded before another module
// draws with them.
type Module interface {
	// Name identifies the module in logs and statistics.
	Name() string

	// Update reacts to state changes. It writes uniform proxies only when
	// the state the module depends on changed, then uploads the dirty range.
	Update(state *State) error

	// Render records draw commands into pass. It must not write uniform
	// buffers.
	Render(pass hal.RenderPassEncoder, state *State) DrawStats

	// ContextLost drops all GPU handles without issuing GPU calls.
	ContextLost()

	// Dispose destroys the module's GPU resources. It is idempotent and safe
	// to call after ContextLost.
	Dispose()
}

// ModuleFactory builds a module on a context.
type ModuleFactory func(ctx *Context) (Module, error)

// Restorer is implemented by modules that can rebuild their GPU resources on
// a new context after context loss, keeping their CPU-side data. Modules
// without it are rebuilt from their ModuleFactory.
type Restorer interface {
	Restore(ctx *Context) error
}
