// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gogpu/pcview/octree"
	"github.com/pelletier/go-toml/v2"
)

// config is the TOML file layout.
//
//	base_url = "https://example.com/cloud/"
//	version = "3"
//	concurrency = 8
//	timeout = "30s"
//	cache_mb = 64
//
//	[[nodes]]
//	id = "r"
//	path = "r.bin"
//	byte_size = 40960
type config struct {
	BaseURL           string       `toml:"base_url"`
	Version           string       `toml:"version"`
	Concurrency       int          `toml:"concurrency"`
	Timeout           string       `toml:"timeout"`
	CacheMB           int64        `toml:"cache_mb"`
	SeparatePositions bool         `toml:"separate_positions"`
	Nodes             []nodeConfig `toml:"nodes"`
}

type nodeConfig struct {
	ID       string `toml:"id"`
	Path     string `toml:"path"`
	ByteSize int    `toml:"byte_size"`
	Level    int    `toml:"level"`
}

var errNoNodes = errors.New("config: no nodes")

func loadConfig(path string) (*config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseConfig(data)
}

func parseConfig(data []byte) (*config, error) {
	var c config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if c.BaseURL == "" {
		return nil, errors.New("config: base_url is required")
	}
	if len(c.Nodes) == 0 {
		return nil, errNoNodes
	}
	seen := make(map[string]bool, len(c.Nodes))
	for i, n := range c.Nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("config: node %d has no id", i)
		}
		if seen[n.ID] {
			return nil, fmt.Errorf("config: duplicate node id %q", n.ID)
		}
		seen[n.ID] = true
	}
	if _, err := c.timeout(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *config) timeout() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("config: timeout: %w", err)
	}
	return d, nil
}

// concurrency returns the configured number of parallel loads, or the
// loader default when unset.
func (c *config) concurrency() int {
	if c.Concurrency > 0 {
		return c.Concurrency
	}
	return octree.DefaultConcurrency
}

// loaderOptions maps the file onto loader options.
func (c *config) loaderOptions() []octree.LoaderOption {
	opts := []octree.LoaderOption{
		octree.WithSeparatePositions(c.SeparatePositions),
	}
	opts = append(opts, octree.WithConcurrency(c.concurrency()))
	if d, _ := c.timeout(); d > 0 {
		opts = append(opts, octree.WithLoadTimeout(d))
	}
	if c.CacheMB > 0 {
		opts = append(opts, octree.WithCache(c.CacheMB<<20))
	}
	return opts
}

func (c *config) nodes() []*octree.Node {
	out := make([]*octree.Node, len(c.Nodes))
	for i, n := range c.Nodes {
		path := n.Path
		if path == "" {
			path = n.ID + ".bin"
		}
		out[i] = &octree.Node{ID: n.ID, Path: path, ByteSize: n.ByteSize, Level: n.Level}
	}
	return out
}
