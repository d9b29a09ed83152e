// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// Program returns the shader module for label, creating it from wgsl on
// first use. Programs are shared by all modules of the context and live
// until the context is disposed.
func (c *Context) Program(label, wgsl string) (hal.ShaderModule, error) {
	if m, ok := c.programs[label]; ok {
		return m, nil
	}
	src := hal.ShaderSource{WGSL: wgsl}
	if c.opts.spirv {
		words, err := compileSPIRV(wgsl)
		if err != nil {
			return nil, fmt.Errorf("program %q: %w", label, err)
		}
		src = hal.ShaderSource{SPIRV: words}
	}
	m, err := c.bin.CreateShaderModule(&hal.ShaderModuleDescriptor{Label: label, Source: src})
	if err != nil {
		return nil, err
	}
	c.programs[label] = m
	return m, nil
}

// compileSPIRV compiles WGSL with naga and returns little-endian SPIR-V
// words.
func compileSPIRV(wgsl string) ([]uint32, error) {
	b, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = uint32(b[i*4]) |
			uint32(b[i*4+1])<<8 |
			uint32(b[i*4+2])<<16 |
			uint32(b[i*4+3])<<24
	}
	return words, nil
}
