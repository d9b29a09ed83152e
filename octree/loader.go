// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package octree

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Loader streams octree nodes through a background worker.
//
// Every request resolves exactly once: with a payload, as aborted (nil
// payload and nil error) or with an error. Loader is safe for concurrent
// use.
type Loader struct {
	base    *url.URL
	opts    loaderOptions
	fetcher Fetcher

	requests     chan Request
	responses    chan Response
	workerDone   chan struct{}
	dispatchDone chan struct{}

	mu      sync.Mutex
	pending map[string]*Pending
	closed  bool

	disposeOnce sync.Once
}

// NewLoader starts a loader resolving node paths against baseURL, which
// must be absolute.
func NewLoader(baseURL string, opts ...LoaderOption) (*Loader, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if !base.IsAbs() {
		return nil, fmt.Errorf("%w: %q is not absolute", ErrInvalidBaseURL, baseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	o := defaultLoaderOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.metrics == nil && o.registerer != nil {
		o.metrics = NewMetrics(o.registerer)
	}

	fetcher := o.fetcher
	if fetcher == nil {
		fetcher = &HTTPFetcher{Client: o.client}
	}
	if o.cacheBudget > 0 {
		fetcher = NewCachingFetcher(fetcher, o.cacheBudget)
	}

	l := &Loader{
		base:         base,
		opts:         o,
		fetcher:      fetcher,
		requests:     make(chan Request),
		responses:    make(chan Response),
		dispatchDone: make(chan struct{}),
		pending:      make(map[string]*Pending),
	}

	w := newWorker(fetcher, o.concurrency, o.metrics, l.requests, l.responses)
	l.workerDone = w.done
	go w.run()
	go l.dispatch()

	slogger().Info("octree: loader started", "base", base.String(), "concurrency", o.concurrency)
	return l, nil
}

// Fetcher returns the fetcher used by the worker, including any cache layer.
func (l *Loader) Fetcher() Fetcher { return l.fetcher }

// Metrics returns the loader metrics, or nil if none were configured.
func (l *Loader) Metrics() *Metrics { return l.opts.metrics }

// URL returns the absolute URL a node is fetched from.
func (l *Loader) URL(node *Node, version string) (string, error) {
	ref, err := url.Parse(node.Path)
	if err != nil {
		return "", fmt.Errorf("%w: path %q: %w", ErrInvalidNode, node.Path, err)
	}
	u := l.base.ResolveReference(ref)
	if version != "" {
		q := u.Query()
		q.Set("v", version)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// Request posts a load for node and returns immediately. The node's Abort
// method cancels the request until it resolves.
func (l *Loader) Request(node *Node, version string) (*Pending, error) {
	if node == nil || node.ID == "" {
		return nil, ErrInvalidNode
	}
	u, err := l.URL(node, version)
	if err != nil {
		return nil, err
	}

	p := &Pending{ID: node.ID, node: node, loader: l, done: make(chan struct{})}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil, ErrLoaderClosed
	}
	if _, busy := l.pending[node.ID]; busy {
		l.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrAlreadyPending, node.ID)
	}
	l.pending[node.ID] = p
	node.setAbort(p.Abort)
	if l.opts.timeout > 0 {
		p.timer = time.AfterFunc(l.opts.timeout, func() {
			p.timedOut.Store(true)
			l.abort(p)
		})
	}
	l.mu.Unlock()

	err = l.post(Request{
		Kind:                    KindLoad,
		ID:                      node.ID,
		Version:                 version,
		URL:                     u,
		ByteSize:                node.ByteSize,
		SeparatePositionsBuffer: l.opts.separatePositions,
	})
	if err != nil {
		l.mu.Lock()
		if l.pending[node.ID] == p {
			delete(l.pending, node.ID)
			node.setAbort(nil)
		}
		l.mu.Unlock()
		p.resolve(nil, err)
		return nil, err
	}

	slogger().Debug("octree: load requested", "id", node.ID, "url", u)
	return p, nil
}

// Load requests node and waits for its terminal response. A nil payload
// with a nil error means the load was aborted.
//
// If ctx is canceled first, Load aborts the request, waits for the
// worker's acknowledgement and returns ctx.Err() unless the load finished
// anyway.
func (l *Loader) Load(ctx context.Context, node *Node, version string) (*Payload, error) {
	p, err := l.Request(node, version)
	if err != nil {
		return nil, err
	}
	select {
	case <-p.Done():
		return p.Result()
	case <-ctx.Done():
	}

	p.Abort()
	payload, err := p.Result()
	if payload == nil && err == nil {
		return nil, ctx.Err()
	}
	return payload, err
}

// AbortAll cancels every outstanding request. Each one resolves as aborted
// once the worker acknowledges it.
func (l *Loader) AbortAll() {
	if err := l.post(Request{Kind: KindAbortAll}); err != nil {
		slogger().Debug("octree: abort all after close", "err", err)
	}
}

// Pending returns the number of unresolved requests.
func (l *Loader) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// Dispose stops the worker. Outstanding requests resolve before Dispose
// returns; later requests fail with ErrLoaderClosed. Dispose is idempotent.
func (l *Loader) Dispose() {
	l.disposeOnce.Do(func() {
		l.mu.Lock()
		l.closed = true
		l.mu.Unlock()

		_ = l.post(Request{Kind: KindClose})
		<-l.dispatchDone

		l.mu.Lock()
		rest := l.pending
		l.pending = make(map[string]*Pending)
		l.mu.Unlock()
		for _, p := range rest {
			p.node.setAbort(nil)
			p.resolve(nil, ErrLoaderClosed)
		}
		slogger().Info("octree: loader closed", "base", l.base.String())
	})
}

// post delivers req to the worker, failing once the worker has exited.
func (l *Loader) post(req Request) error {
	select {
	case l.requests <- req:
		return nil
	case <-l.workerDone:
		return ErrLoaderClosed
	}
}

// abort posts an abort for p if it is still the pending request of its id.
func (l *Loader) abort(p *Pending) {
	l.mu.Lock()
	current := l.pending[p.ID] == p
	l.mu.Unlock()
	if !current {
		return
	}
	_ = l.post(Request{Kind: KindAbort, ID: p.ID})
}

// dispatch routes worker responses to pending requests by id.
func (l *Loader) dispatch() {
	defer close(l.dispatchDone)
	for resp := range l.responses {
		l.route(resp)
	}
}

func (l *Loader) route(resp Response) {
	l.mu.Lock()
	p, ok := l.pending[resp.ID]
	if ok {
		delete(l.pending, resp.ID)
		p.node.setAbort(nil)
	}
	l.mu.Unlock()

	if !ok {
		slogger().Warn("octree: response for unknown node", "id", resp.ID, "kind", resp.Kind)
		return
	}

	switch resp.Kind {
	case KindLoaded:
		slogger().Debug("octree: loaded", "id", resp.ID, "vertices", resp.Payload.VertexCount)
		p.resolve(resp.Payload, nil)
	case KindAborted:
		if p.timedOut.Load() {
			slogger().Warn("octree: load timed out", "id", resp.ID)
			p.resolve(nil, fmt.Errorf("%w: %s", ErrLoadTimeout, resp.ID))
			return
		}
		slogger().Debug("octree: aborted", "id", resp.ID)
		p.resolve(nil, nil)
	default:
		slogger().Warn("octree: load failed", "id", resp.ID, "err", resp.Err)
		p.resolve(nil, &LoadError{ID: resp.ID, Reason: resp.Err})
	}
}

// Pending is an unresolved load request.
type Pending struct {
	// ID is the node id the request is keyed by.
	ID string

	node   *Node
	loader *Loader
	done   chan struct{}
	once   sync.Once

	payload *Payload
	err     error

	timer    *time.Timer
	timedOut atomic.Bool
}

// Done is closed when the request resolves.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Result waits for the request to resolve and returns its outcome. A nil
// payload with a nil error means the load was aborted.
func (p *Pending) Result() (*Payload, error) {
	<-p.done
	return p.payload, p.err
}

// Abort cancels the request. It is a no-op once the request resolved.
func (p *Pending) Abort() { p.loader.abort(p) }

func (p *Pending) resolve(payload *Payload, err error) {
	p.once.Do(func() {
		if p.timer != nil {
			p.timer.Stop()
		}
		p.payload = payload
		p.err = err
		close(p.done)
	})
}
