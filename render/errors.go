// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "errors"

// Sentinel errors returned by the render package.
var (
	// ErrContextLost is returned when creating resources on a lost context.
	ErrContextLost = errors.New("render: context lost")

	// ErrDisposed is returned when using a disposed context or bin.
	ErrDisposed = errors.New("render: disposed")

	// ErrNoHALProvider is returned by NewContextFromProvider when the
	// provider does not expose HAL device and queue.
	ErrNoHALProvider = errors.New("render: provider does not expose HAL types")

	// ErrNilDevice is returned when a context is built without a device or
	// queue.
	ErrNilDevice = errors.New("render: nil device or queue")
)
