// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package octree

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/gogpu/pcview/internal/cache"
)

// Fetcher downloads raw node payloads.
type Fetcher interface {
	// Fetch returns the body at url. byteSize is the expected length, or 0
	// if unknown. Fetch must return promptly once ctx is canceled.
	Fetch(ctx context.Context, url string, byteSize int) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string, byteSize int) ([]byte, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, url string, byteSize int) ([]byte, error) {
	return f(ctx, url, byteSize)
}

// HTTPFetcher fetches payloads over HTTP.
type HTTPFetcher struct {
	// Client is the HTTP client; nil means http.DefaultClient.
	Client *http.Client

	// Header is added to every request.
	Header http.Header
}

// Fetch implements Fetcher. Non-2xx statuses and bodies whose length
// differs from a known byteSize are errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string, byteSize int) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, vs := range f.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrHTTPStatus, resp.Status)
	}

	var body []byte
	if byteSize > 0 {
		// Read one extra byte so an oversized body is detected.
		body, err = io.ReadAll(io.LimitReader(resp.Body, int64(byteSize)+1))
	} else {
		body, err = io.ReadAll(resp.Body)
	}
	if err != nil {
		return nil, err
	}
	if byteSize > 0 && len(body) != byteSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrSizeMismatch, len(body), byteSize)
	}
	return body, nil
}

// CachingFetcher keeps recently fetched bodies in a byte-budgeted LRU
// cache and collapses concurrent fetches of the same URL.
//
// A shared fetch runs on its own context, canceled only when every caller
// waiting on it has gone. One caller aborting never fails the others.
type CachingFetcher struct {
	next  Fetcher
	cache *cache.Cache[string, []byte]
	group singleflight.Group

	mu      sync.Mutex
	flights map[string]*flight
}

// flight is the context of one shared fetch and the number of callers
// waiting on it.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// NewCachingFetcher wraps next with a cache holding at most budget bytes.
func NewCachingFetcher(next Fetcher, budget int64) *CachingFetcher {
	return &CachingFetcher{
		next:    next,
		cache:   cache.New[string, []byte](budget, func(b []byte) int64 { return int64(len(b)) }),
		flights: make(map[string]*flight),
	}
}

// Fetch implements Fetcher.
func (f *CachingFetcher) Fetch(ctx context.Context, url string, byteSize int) ([]byte, error) {
	for {
		if body, ok := f.cache.Get(url); ok {
			slogger().Debug("octree: cache hit", "url", url, "bytes", len(body))
			return body, nil
		}
		body, err := f.shared(ctx, url, byteSize)
		if err != nil && ctx.Err() == nil && isCanceled(err) {
			// joined a fetch abandoned by all of its earlier callers
			slogger().Debug("octree: retrying abandoned fetch", "url", url)
			continue
		}
		return body, err
	}
}

func (f *CachingFetcher) shared(ctx context.Context, url string, byteSize int) ([]byte, error) {
	f.mu.Lock()
	fl := f.flights[url]
	if fl == nil {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		fl = &flight{ctx: fctx, cancel: cancel}
		f.flights[url] = fl
	}
	fl.waiters++
	ch := f.group.DoChan(url, func() (any, error) {
		body, err := f.next.Fetch(fl.ctx, url, byteSize)
		if err != nil {
			return nil, err
		}
		f.cache.Put(url, body)
		return body, nil
	})
	f.mu.Unlock()
	defer f.leave(url, fl)

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// leave drops one waiter and cancels the shared fetch once nobody waits.
func (f *CachingFetcher) leave(url string, fl *flight) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fl.waiters--
	if fl.waiters > 0 {
		return
	}
	fl.cancel()
	if f.flights[url] == fl {
		delete(f.flights, url)
	}
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Stats returns the cache statistics.
func (f *CachingFetcher) Stats() cache.Stats {
	return f.cache.Stats()
}

// Forget drops url from the cache.
func (f *CachingFetcher) Forget(url string) {
	f.cache.Delete(url)
	f.group.Forget(url)
}
