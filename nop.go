// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

// NopEncoder is a CommandEncoder that discards every command. It lets a
// graph compile and execute without a GPU, which is what tests,
// benchmarks, and headless scheduling want. Pass callbacks still run;
// their pass encoders accept End and nothing else.
type NopEncoder struct{}

// TextureBarrier discards the barrier.
func (NopEncoder) TextureBarrier(Texture, TextureLayout, TextureLayout) {}

// BeginRenderPass returns a render pass encoder that ignores everything.
func (NopEncoder) BeginRenderPass(*RenderPassDescriptor) RenderPassEncoder { return nopPass{} }

// BeginComputePass returns a compute pass encoder that ignores everything.
func (NopEncoder) BeginComputePass() ComputePassEncoder { return nopPass{} }

type nopPass struct{}

func (nopPass) End() {}

var _ CommandEncoder = NopEncoder{}
