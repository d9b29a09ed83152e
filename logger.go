// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pcview

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/pcview/octree"
	"github.com/gogpu/pcview/render"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for pcview and its sub-packages octree
// and render. By default, pcview produces no log output.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by pcview:
//   - [slog.LevelDebug]: per-node and per-buffer diagnostics
//   - [slog.LevelInfo]: lifecycle events (loader started, context created)
//   - [slog.LevelWarn]: non-fatal issues (context lost, failed loads)
//
// Example:
//
//	pcview.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	octree.SetLogger(l)
	render.SetLogger(l)
}

// Logger returns the current logger used by pcview.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
