// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import "github.com/gogpu/gputypes"

// PassBuilder declares the inputs, outputs, and behavior of a pass
// before Compile runs. All methods return the builder for chaining.
//
// Builders are only meaningful between the AddXxxPass call that created
// them and the frame's Compile; declarations made after Compile are
// ignored for the current frame.
type PassBuilder struct {
	pass *RenderPass
}

// Read declares that the pass reads handle in the given layout.
func (b *PassBuilder) Read(handle ResourceHandle, layout TextureLayout) *PassBuilder {
	b.pass.reads = append(b.pass.reads, ResourceDependency{
		Handle:         handle,
		RequiredLayout: layout,
	})
	return b
}

// Write declares that the pass writes handle in the given layout.
func (b *PassBuilder) Write(handle ResourceHandle, layout TextureLayout) *PassBuilder {
	b.pass.writes = append(b.pass.writes, ResourceDependency{
		Handle:         handle,
		RequiredLayout: layout,
	})
	return b
}

// SetColorAttachment binds a texture as color attachment index for a
// graphics pass. Gaps between indices are legal; unset slots are skipped
// when the render pass descriptor is built.
func (b *PassBuilder) SetColorAttachment(index int, target ResourceHandle, loadOp gputypes.LoadOp, storeOp gputypes.StoreOp, clearValue gputypes.Color) *PassBuilder {
	if index < 0 {
		return b
	}
	for len(b.pass.colorAttachments) <= index {
		b.pass.colorAttachments = append(b.pass.colorAttachments, colorAttachment{})
	}
	b.pass.colorAttachments[index] = colorAttachment{
		target:     target,
		loadOp:     loadOp,
		storeOp:    storeOp,
		clearValue: clearValue,
		set:        true,
	}
	return b
}

// SetDepthAttachment binds a texture as the depth attachment of a
// graphics pass. Stencil ops default to load/store with clear value 0;
// use SetDepthStencilAttachment for full control.
func (b *PassBuilder) SetDepthAttachment(target ResourceHandle, loadOp gputypes.LoadOp, storeOp gputypes.StoreOp, clearValue float32) *PassBuilder {
	return b.SetDepthStencilAttachment(target, loadOp, storeOp, clearValue, gputypes.LoadOpLoad, gputypes.StoreOpStore, 0)
}

// SetDepthStencilAttachment binds a texture as the depth/stencil
// attachment of a graphics pass with explicit ops for both aspects.
func (b *PassBuilder) SetDepthStencilAttachment(target ResourceHandle, depthLoadOp gputypes.LoadOp, depthStoreOp gputypes.StoreOp, depthClearValue float32, stencilLoadOp gputypes.LoadOp, stencilStoreOp gputypes.StoreOp, stencilClearValue uint32) *PassBuilder {
	b.pass.depth = depthAttachment{
		target:            target,
		depthLoadOp:       depthLoadOp,
		depthStoreOp:      depthStoreOp,
		depthClearValue:   depthClearValue,
		stencilLoadOp:     stencilLoadOp,
		stencilStoreOp:    stencilStoreOp,
		stencilClearValue: stencilClearValue,
		set:               true,
	}
	return b
}

// DependsOn declares an explicit ordering dependency on a pass by name.
// Names that resolve to no pass are silently ignored, so optional
// sub-renderers can be referenced without registration checks.
func (b *PassBuilder) DependsOn(passName string) *PassBuilder {
	b.pass.explicitDeps = append(b.pass.explicitDeps, passName)
	return b
}

// SetExecute sets the pass execution callback. A pass without a callback
// is legal: it issues its barriers (and, for graphics passes, its
// attachment load/store ops) and does no other work.
func (b *PassBuilder) SetExecute(fn ExecuteFunc) *PassBuilder {
	b.pass.execute = fn
	return b
}
