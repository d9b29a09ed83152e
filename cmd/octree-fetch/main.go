// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command octree-fetch streams the octree nodes listed in a TOML config
// through an octree.Loader and prints a per-node summary.
//
// Usage:
//
//	octree-fetch -config cloud.toml [-metrics] [-v]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"
	"sync"

	"github.com/gogpu/pcview"
	"github.com/gogpu/pcview/octree"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

func main() {
	var (
		configPath = flag.String("config", "octree.toml", "config file")
		metrics    = flag.Bool("metrics", false, "print loader metrics")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	pcview.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "octree-fetch:", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reg := prometheus.NewRegistry()
	results, err := fetchAll(ctx, cfg, reg)
	printResults(os.Stdout, results)
	if *metrics {
		if err := printMetrics(os.Stdout, reg); err != nil {
			fmt.Fprintln(os.Stderr, "octree-fetch:", err)
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "octree-fetch:", err)
		os.Exit(1)
	}
}

// result is the outcome of one node load.
type result struct {
	ID       string
	Vertices int
	Indices  int
	Bytes    int
	Objects  int
	Err      error
}

// fetchAll loads every configured node. Individual load failures are
// collected into results; only setup errors and cancellation are returned.
func fetchAll(ctx context.Context, cfg *config, reg prometheus.Registerer, extra ...octree.LoaderOption) ([]result, error) {
	opts := append(cfg.loaderOptions(), octree.WithRegisterer(reg))
	opts = append(opts, extra...)
	loader, err := octree.NewLoader(cfg.BaseURL, opts...)
	if err != nil {
		return nil, err
	}
	defer loader.Dispose()

	nodes := cfg.nodes()
	var (
		mu      sync.Mutex
		results = make([]result, 0, len(nodes))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.concurrency())
	for _, n := range nodes {
		g.Go(func() error {
			p, err := loader.Load(gctx, n, cfg.Version)
			r := result{ID: n.ID, Err: err}
			switch {
			case errors.Is(err, context.Canceled):
				return err
			case err == nil && p == nil:
				r.Err = errors.New("aborted")
			case p != nil:
				r.Vertices = p.VertexCount
				r.Indices = len(p.Indices)
				r.Bytes = p.ByteSize()
				r.Objects = len(p.ObjectIDs)
			}
			mu.Lock()
			results = append(results, r)
			mu.Unlock()
			return nil
		})
	}
	err = g.Wait()
	slices.SortFunc(results, func(a, b result) int { return strings.Compare(a.ID, b.ID) })
	return results, err
}

func printResults(w io.Writer, results []result) {
	var ok, vertices int
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%-16s error: %v\n", r.ID, r.Err)
			continue
		}
		ok++
		vertices += r.Vertices
		fmt.Fprintf(w, "%-16s %9d vertices %9d indices %6d objects %10d bytes\n",
			r.ID, r.Vertices, r.Indices, r.Objects, r.Bytes)
	}
	fmt.Fprintf(w, "loaded %d/%d nodes, %d vertices\n", ok, len(results), vertices)
}

// printMetrics writes counters, gauges and histogram totals in a compact
// "name{labels} value" form.
func printMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(w, "%s %g\n", name, m.GetCounter().GetValue())
			case m.GetGauge() != nil:
				fmt.Fprintf(w, "%s %g\n", name, m.GetGauge().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				fmt.Fprintf(w, "%s count=%d sum=%g\n", name, h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}
	return nil
}
