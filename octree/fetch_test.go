package octree

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync/atomic"
	"testing"
	"time"
)

func TestHTTPFetcher(t *testing.T) {
	body := []byte("payload-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			if r.Header.Get("X-Token") != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Write(body)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := &HTTPFetcher{Client: srv.Client(), Header: http.Header{"X-Token": {"secret"}}}
	ctx := context.Background()

	got, err := f.Fetch(ctx, srv.URL+"/ok", len(body))
	if err != nil || string(got) != string(body) {
		t.Fatalf("Fetch(ok) = %q, %v", got, err)
	}
	if _, err := f.Fetch(ctx, srv.URL+"/ok", 0); err != nil {
		t.Errorf("Fetch(ok, unknown size) error = %v", err)
	}
	if _, err := f.Fetch(ctx, srv.URL+"/ok", len(body)-1); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("Fetch(short size) error = %v, want ErrSizeMismatch", err)
	}
	if _, err := f.Fetch(ctx, srv.URL+"/ok", len(body)+5); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("Fetch(long size) error = %v, want ErrSizeMismatch", err)
	}
	if _, err := f.Fetch(ctx, srv.URL+"/missing", 0); !errors.Is(err, ErrHTTPStatus) {
		t.Errorf("Fetch(missing) error = %v, want ErrHTTPStatus", err)
	}
}

func TestCachingFetcher(t *testing.T) {
	var calls atomic.Int32
	next := FetcherFunc(func(_ context.Context, url string, _ int) ([]byte, error) {
		calls.Add(1)
		if url == "bad" {
			return nil, errors.New("boom")
		}
		return []byte(url), nil
	})
	f := NewCachingFetcher(next, 1<<10)
	ctx := context.Background()

	for range 3 {
		got, err := f.Fetch(ctx, "node-a", 0)
		if err != nil || string(got) != "node-a" {
			t.Fatalf("Fetch() = %q, %v", got, err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("underlying fetches = %d, want 1", calls.Load())
	}
	if s := f.Stats(); s.Hits != 2 || s.Len != 1 {
		t.Errorf("Stats() = %+v, want 2 hits, 1 entry", s)
	}

	if _, err := f.Fetch(ctx, "bad", 0); err == nil {
		t.Error("error not propagated")
	}
	if f.Stats().Len != 1 {
		t.Error("failed fetch was cached")
	}

	f.Forget("node-a")
	f.Fetch(ctx, "node-a", 0)
	if calls.Load() != 3 {
		t.Errorf("underlying fetches after Forget = %d, want 3", calls.Load())
	}
}

func TestLoader_OverHTTPWithCache(t *testing.T) {
	var hits atomic.Int32
	body, err := EncodePayload(&Geometry{
		Positions: []float32{0, 0, 0, 1, 1, 1},
		ObjectIDs: []uint32{5, 4},
	})
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Query().Get("v") != "2" {
			http.Error(w, "stale version", http.StatusGone)
			return
		}
		w.Write(body)
	}))
	defer srv.Close()

	l, err := NewLoader(srv.URL+"/cloud", WithHTTPClient(srv.Client()), WithCache(1<<20), WithSeparatePositions(true))
	if err != nil {
		t.Fatal(err)
	}
	defer l.Dispose()

	n := &Node{ID: "r0", Path: "r0.bin", ByteSize: len(body)}
	for range 2 {
		p, err := l.Load(context.Background(), n, "2")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if !slices.Equal(p.ObjectIDs, []uint32{4, 5}) || len(p.Positions) != 24 || p.Version != "2" {
			t.Errorf("payload = ids %v, %d position bytes, version %q", p.ObjectIDs, len(p.Positions), p.Version)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("server hits = %d, want 1", hits.Load())
	}

	_, err = l.Load(context.Background(), n, "1")
	var le *LoadError
	if !errors.As(err, &le) {
		t.Errorf("stale version error = %v, want *LoadError", err)
	}
	if _, ok := l.Fetcher().(*CachingFetcher); !ok {
		t.Errorf("Fetcher() = %T, want *CachingFetcher", l.Fetcher())
	}
}

// heldFetcher blocks every fetch until release is closed. With honorCancel
// unset it keeps blocking after its context is canceled.
type heldFetcher struct {
	body        []byte
	honorCancel bool
	calls       atomic.Int32
	started     chan struct{}
	release     chan struct{}
}

func newHeldFetcher(body []byte, honorCancel bool) *heldFetcher {
	return &heldFetcher{
		body:        body,
		honorCancel: honorCancel,
		started:     make(chan struct{}, 8),
		release:     make(chan struct{}),
	}
}

func (f *heldFetcher) Fetch(ctx context.Context, _ string, _ int) ([]byte, error) {
	f.calls.Add(1)
	f.started <- struct{}{}
	if !f.honorCancel {
		<-f.release
		return f.body, nil
	}
	select {
	case <-f.release:
		return f.body, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *heldFetcher) waitStarted(t *testing.T) {
	t.Helper()
	select {
	case <-f.started:
	case <-time.After(5 * time.Second):
		t.Fatal("fetch never started")
	}
}

// waitWaiters polls until n callers share the fetch of url.
func waitWaiters(t *testing.T, f *CachingFetcher, url string, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		f.mu.Lock()
		got := 0
		if fl := f.flights[url]; fl != nil {
			got = fl.waiters
		}
		f.mu.Unlock()
		if got == n {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("waiters on %s = %d, want %d", url, got, n)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestCachingFetcher_ReRequestAfterAbort(t *testing.T) {
	tests := []struct {
		name        string
		honorCancel bool
		wantCalls   int32
	}{
		// the abandoned fetch fails with context.Canceled; the new request
		// must start its own
		{"fetch honors cancel", true, 2},
		// the abandoned fetch is still running; the new request joins it
		{"fetch ignores cancel", false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			held := newHeldFetcher(encodeIDs(t, 1, 2), tt.honorCancel)
			l := newTestLoader(t, WithFetcher(held), WithCache(1<<20))
			cf := l.Fetcher().(*CachingFetcher)
			n := &Node{ID: "a", Path: "a.bin"}
			url := nodeURL(t, l, n)

			first, err := l.Request(n, "")
			if err != nil {
				t.Fatal(err)
			}
			held.waitStarted(t)
			n.Abort()
			if p, err := waitResult(t, first); p != nil || err != nil {
				t.Fatalf("aborted request = %v, %v, want nil, nil", p, err)
			}

			second, err := l.Request(n, "")
			if err != nil {
				t.Fatal(err)
			}
			if tt.honorCancel {
				held.waitStarted(t)
			}
			waitWaiters(t, cf, url, 1)
			close(held.release)

			p, err := waitResult(t, second)
			if err != nil {
				t.Fatalf("re-request error = %v", err)
			}
			if p == nil || !slices.Equal(p.ObjectIDs, []uint32{1, 2}) {
				t.Errorf("re-request payload = %+v", p)
			}
			if got := held.calls.Load(); got != tt.wantCalls {
				t.Errorf("underlying fetches = %d, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestCachingFetcher_AbortKeepsSharedFetch(t *testing.T) {
	held := newHeldFetcher(encodeIDs(t, 9), true)
	l := newTestLoader(t, WithFetcher(held), WithCache(1<<20))
	cf := l.Fetcher().(*CachingFetcher)

	// two nodes resolving to one URL
	a := &Node{ID: "a", Path: "shared.bin"}
	b := &Node{ID: "b", Path: "shared.bin"}
	url := nodeURL(t, l, a)

	pa, err := l.Request(a, "")
	if err != nil {
		t.Fatal(err)
	}
	held.waitStarted(t)
	pb, err := l.Request(b, "")
	if err != nil {
		t.Fatal(err)
	}
	waitWaiters(t, cf, url, 2)

	a.Abort()
	if p, err := waitResult(t, pa); p != nil || err != nil {
		t.Fatalf("aborted request = %v, %v, want nil, nil", p, err)
	}
	waitWaiters(t, cf, url, 1)
	close(held.release)

	p, err := waitResult(t, pb)
	if err != nil || p == nil || p.ID != "b" {
		t.Fatalf("shared request = %+v, %v", p, err)
	}
	if got := held.calls.Load(); got != 1 {
		t.Errorf("underlying fetches = %d, want 1", got)
	}
}

func TestCachingFetcher_LastWaiterCancels(t *testing.T) {
	held := newHeldFetcher([]byte("body"), true)
	f := NewCachingFetcher(held, 1<<10)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := f.Fetch(ctx, "u", 0)
		done <- err
	}()
	held.waitStarted(t)
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Fetch() error = %v, want context.Canceled", err)
	}

	// the abandoned fetch is canceled, so a new caller starts a fresh one
	got := make(chan []byte, 1)
	go func() {
		b, _ := f.Fetch(context.Background(), "u", 0)
		got <- b
	}()
	held.waitStarted(t)
	close(held.release)
	if b := <-got; string(b) != "body" {
		t.Errorf("Fetch() = %q, want body", b)
	}
	if f.Stats().Len != 1 {
		t.Error("body not cached")
	}
}
