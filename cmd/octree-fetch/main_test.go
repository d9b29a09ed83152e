package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/gogpu/pcview/octree"
	"github.com/prometheus/client_golang/prometheus"
)

const sample = `
base_url = "http://pc.test/cloud"
version = "7"
concurrency = 2
timeout = "5s"
cache_mb = 1

[[nodes]]
id = "r"
byte_size = 0

[[nodes]]
id = "r0"
path = "data/r0.bin"
level = 1

[[nodes]]
id = "bad"
`

func TestParseConfig(t *testing.T) {
	c, err := parseConfig([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	if c.BaseURL != "http://pc.test/cloud" || c.Version != "7" || c.Concurrency != 2 || c.CacheMB != 1 {
		t.Errorf("config = %+v", c)
	}
	nodes := c.nodes()
	if len(nodes) != 3 || nodes[0].Path != "r.bin" || nodes[1].Path != "data/r0.bin" || nodes[1].Level != 1 {
		t.Errorf("nodes = %+v", nodes)
	}
	if got := len(c.loaderOptions()); got != 4 {
		t.Errorf("loader options = %d, want 4", got)
	}
	tests := []struct {
		configured, want int
	}{
		{1, 1},
		{2, 2},
		{16, 16},
		{0, octree.DefaultConcurrency},
		{-3, octree.DefaultConcurrency},
	}
	for _, tt := range tests {
		c := &config{Concurrency: tt.configured}
		if got := c.concurrency(); got != tt.want {
			t.Errorf("concurrency(%d) = %d, want %d", tt.configured, got, tt.want)
		}
	}
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"syntax", "base_url = "},
		{"no base", "[[nodes]]\nid = \"r\""},
		{"no nodes", `base_url = "http://x/"`},
		{"no id", "base_url = \"http://x/\"\n[[nodes]]\npath = \"a\""},
		{"duplicate", "base_url = \"http://x/\"\n[[nodes]]\nid = \"r\"\n[[nodes]]\nid = \"r\""},
		{"timeout", "base_url = \"http://x/\"\ntimeout = \"soon\"\n[[nodes]]\nid = \"r\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseConfig([]byte(tt.in)); err == nil {
				t.Error("parseConfig succeeded")
			}
		})
	}
	if _, err := parseConfig([]byte(`base_url = "http://x/"`)); !errors.Is(err, errNoNodes) {
		t.Errorf("no nodes error = %v", err)
	}
}

func TestFetchAll(t *testing.T) {
	c, err := parseConfig([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	fetch := octree.FetcherFunc(func(_ context.Context, url string, _ int) ([]byte, error) {
		if strings.Contains(url, "bad") {
			return nil, fmt.Errorf("no such node: %s", url)
		}
		return octree.EncodePayload(&octree.Geometry{
			Primitive: octree.PrimitivePoints,
			Positions: []float32{0, 0, 0, 1, 1, 1},
			ObjectIDs: []uint32{4, 2},
		})
	})

	reg := prometheus.NewRegistry()
	results, err := fetchAll(context.Background(), c, reg, octree.WithFetcher(fetch))
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	// sorted by id
	if results[0].ID != "bad" || results[0].Err == nil {
		t.Errorf("bad node = %+v", results[0])
	}
	if r := results[2]; r.ID != "r0" || r.Vertices != 2 || r.Objects != 2 || r.Err != nil {
		t.Errorf("r0 = %+v", r)
	}

	var out bytes.Buffer
	printResults(&out, results)
	if !strings.Contains(out.String(), "loaded 2/3 nodes, 4 vertices") {
		t.Errorf("summary = %q", out.String())
	}

	out.Reset()
	if err := printMetrics(&out, reg); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`pcview_octree_loads_total{result="loaded"} 2`,
		`pcview_octree_load_duration_seconds{result="loaded"} count=2`,
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("metrics missing %q:\n%s", want, out.String())
		}
	}
}

func TestFetchAll_Canceled(t *testing.T) {
	c, err := parseConfig([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	block := octree.FetcherFunc(func(ctx context.Context, _ string, _ int) ([]byte, error) {
		cancel()
		<-ctx.Done()
		return nil, ctx.Err()
	})
	_, err = fetchAll(ctx, c, prometheus.NewRegistry(), octree.WithFetcher(block))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("fetchAll = %v, want context.Canceled", err)
	}
}
