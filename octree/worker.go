// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package octree

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// job is one load owned by the worker.
type job struct {
	seq    uint64
	cancel context.CancelFunc
}

// result is a finished load reported back to the worker loop.
type result struct {
	seq  uint64
	resp Response
}

// worker executes loader requests. Its run loop is the only goroutine that
// touches jobs; each load runs in its own goroutine gated by sem.
type worker struct {
	fetcher Fetcher
	sem     *semaphore.Weighted
	metrics *Metrics

	requests  <-chan Request
	responses chan<- Response
	done      chan struct{}

	jobs    map[string]*job
	results chan result
	seq     uint64
	wg      sync.WaitGroup
}

func newWorker(fetcher Fetcher, concurrency int64, metrics *Metrics, requests <-chan Request, responses chan<- Response) *worker {
	return &worker{
		fetcher:   fetcher,
		sem:       semaphore.NewWeighted(concurrency),
		metrics:   metrics,
		requests:  requests,
		responses: responses,
		done:      make(chan struct{}),
		jobs:      make(map[string]*job),
		results:   make(chan result),
	}
}

// run processes requests until KindClose. On close every in-flight load is
// canceled and its terminal response forwarded before responses is closed.
func (w *worker) run() {
	defer close(w.done)
	defer close(w.responses)

	for {
		select {
		case req := <-w.requests:
			switch req.Kind {
			case KindLoad:
				w.start(req)
			case KindAbort:
				if j := w.jobs[req.ID]; j != nil {
					slogger().Debug("octree: abort", "id", req.ID)
					j.cancel()
				}
			case KindAbortAll:
				slogger().Debug("octree: abort all", "jobs", len(w.jobs))
				w.cancelAll()
			case KindClose:
				w.shutdown()
				return
			default:
				slogger().Warn("octree: ignoring request", "kind", req.Kind)
			}
		case r := <-w.results:
			w.finish(r)
		}
	}
}

func (w *worker) start(req Request) {
	if _, busy := w.jobs[req.ID]; busy {
		slogger().Warn("octree: duplicate load ignored", "id", req.ID)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.seq++
	w.jobs[req.ID] = &job{seq: w.seq, cancel: cancel}
	w.metrics.started()

	w.wg.Add(1)
	go func(seq uint64) {
		defer w.wg.Done()
		defer cancel()
		begin := time.Now()
		resp := w.load(ctx, req)
		w.metrics.finished(resp.Kind, time.Since(begin).Seconds())
		w.results <- result{seq: seq, resp: resp}
	}(w.seq)
}

// load fetches and decodes one node. Cancellation at any stage yields
// KindAborted.
func (w *worker) load(ctx context.Context, req Request) Response {
	aborted := Response{Kind: KindAborted, ID: req.ID}

	if err := w.sem.Acquire(ctx, 1); err != nil {
		return aborted
	}
	defer w.sem.Release(1)

	body, err := w.fetcher.Fetch(ctx, req.URL, req.ByteSize)
	if ctx.Err() != nil {
		return aborted
	}
	if err != nil {
		return Response{Kind: KindError, ID: req.ID, Err: err.Error()}
	}
	w.metrics.fetched(len(body))

	payload, err := DecodePayload(body, req.SeparatePositionsBuffer)
	if err != nil {
		return Response{Kind: KindError, ID: req.ID, Err: err.Error()}
	}
	if ctx.Err() != nil {
		return aborted
	}
	payload.ID = req.ID
	payload.Version = req.Version
	return Response{Kind: KindLoaded, ID: req.ID, Payload: payload}
}

func (w *worker) finish(r result) {
	if j := w.jobs[r.resp.ID]; j != nil && j.seq == r.seq {
		delete(w.jobs, r.resp.ID)
	}
	w.responses <- r.resp
}

func (w *worker) cancelAll() {
	for _, j := range w.jobs {
		j.cancel()
	}
}

func (w *worker) shutdown() {
	w.cancelAll()
	for len(w.jobs) > 0 {
		w.finish(<-w.results)
	}
	w.wg.Wait()
}
