// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package octree

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultConcurrency is the default number of loads the worker runs at once.
const DefaultConcurrency = 4

// LoaderOption configures a Loader during creation.
type LoaderOption func(*loaderOptions)

// loaderOptions holds optional configuration for Loader creation.
type loaderOptions struct {
	fetcher           Fetcher
	client            *http.Client
	concurrency       int64
	timeout           time.Duration
	separatePositions bool
	cacheBudget       int64
	metrics           *Metrics
	registerer        prometheus.Registerer
}

func defaultLoaderOptions() loaderOptions {
	return loaderOptions{
		concurrency: DefaultConcurrency,
	}
}

// WithFetcher replaces the default HTTP fetcher.
func WithFetcher(f Fetcher) LoaderOption {
	return func(o *loaderOptions) {
		o.fetcher = f
	}
}

// WithHTTPClient sets the client used by the default HTTP fetcher.
// It has no effect together with WithFetcher.
func WithHTTPClient(c *http.Client) LoaderOption {
	return func(o *loaderOptions) {
		o.client = c
	}
}

// WithConcurrency bounds the number of loads fetched and decoded at once.
// Values below 1 are ignored.
func WithConcurrency(n int) LoaderOption {
	return func(o *loaderOptions) {
		if n > 0 {
			o.concurrency = int64(n)
		}
	}
}

// WithLoadTimeout aborts loads that have not finished after d. A timed out
// request resolves with ErrLoadTimeout. Zero disables the timeout, which is
// the default.
func WithLoadTimeout(d time.Duration) LoaderOption {
	return func(o *loaderOptions) {
		o.timeout = d
	}
}

// WithSeparatePositions asks the worker to decode positions into their own
// buffer instead of the interleaved vertex buffer.
func WithSeparatePositions(separate bool) LoaderOption {
	return func(o *loaderOptions) {
		o.separatePositions = separate
	}
}

// WithCache keeps up to budget bytes of raw payloads in memory so repeated
// loads of the same node skip the network.
func WithCache(budget int64) LoaderOption {
	return func(o *loaderOptions) {
		o.cacheBudget = budget
	}
}

// WithMetrics records loader statistics into m.
func WithMetrics(m *Metrics) LoaderOption {
	return func(o *loaderOptions) {
		o.metrics = m
	}
}

// WithRegisterer creates loader metrics and registers them with reg.
// It has no effect together with WithMetrics.
func WithRegisterer(reg prometheus.Registerer) LoaderOption {
	return func(o *loaderOptions) {
		o.registerer = reg
	}
}
