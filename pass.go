// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// PassType identifies the kind of work a pass performs.
type PassType uint8

const (
	// PassGraphics is a rasterization pass with attachments.
	PassGraphics PassType = iota

	// PassCompute is a compute dispatch pass.
	PassCompute

	// PassTransfer is a copy/transfer pass issued directly on the encoder.
	PassTransfer
)

// String returns the string representation of PassType.
func (t PassType) String() string {
	switch t {
	case PassGraphics:
		return "Graphics"
	case PassCompute:
		return "Compute"
	case PassTransfer:
		return "Transfer"
	default:
		return fmt.Sprintf("Unknown(%d)", int(t))
	}
}

// ResourceDependency is one entry in a pass's read or write list: the
// resource and the layout the pass requires it in.
type ResourceDependency struct {
	// Handle refers to the resource.
	Handle ResourceHandle

	// RequiredLayout is the layout the pass needs. Ignored for buffers.
	RequiredLayout TextureLayout
}

// Barrier is a required layout transition, issued immediately before
// the pass that owns it executes.
type Barrier struct {
	// Handle refers to the texture being transitioned.
	Handle ResourceHandle

	// OldLayout is the layout the texture is currently in.
	OldLayout TextureLayout

	// NewLayout is the layout the texture must be in.
	NewLayout TextureLayout
}

// String returns a debug representation of the barrier.
func (b Barrier) String() string {
	return fmt.Sprintf("%s: %s -> %s", b.Handle, b.OldLayout, b.NewLayout)
}

// colorAttachment is a declared (unresolved) color attachment binding.
type colorAttachment struct {
	target     ResourceHandle
	loadOp     gputypes.LoadOp
	storeOp    gputypes.StoreOp
	clearValue gputypes.Color
	set        bool
}

// depthAttachment is a declared (unresolved) depth/stencil binding.
type depthAttachment struct {
	target            ResourceHandle
	depthLoadOp       gputypes.LoadOp
	depthStoreOp      gputypes.StoreOp
	depthClearValue   float32
	stencilLoadOp     gputypes.LoadOp
	stencilStoreOp    gputypes.StoreOp
	stencilClearValue uint32
	set               bool
}

// PassContext is handed to a pass's execute callback. Callbacks must not
// mutate graph-owned state; they record GPU commands and read frame
// timing.
type PassContext struct {
	// Graph is the owning render graph, for resource lookups.
	Graph *RenderGraph

	// Encoder is the frame command encoder.
	Encoder CommandEncoder

	// Pass is the pass being executed.
	Pass *RenderPass

	// RenderPass is the begun render pass encoder. Set for graphics
	// passes only.
	RenderPass RenderPassEncoder

	// ComputePass is the begun compute pass encoder. Set for compute
	// passes only.
	ComputePass ComputePassEncoder

	// FrameIndex is the index passed to BeginFrame.
	FrameIndex uint64

	// DeltaTime is the frame delta time in seconds.
	DeltaTime float64

	// TotalTime is the accumulated time in seconds.
	TotalTime float64
}

// ExecuteFunc is a pass execution callback. It is called at most once
// per pass per frame, and never when the underlying GPU pass failed to
// begin.
type ExecuteFunc func(ctx *PassContext)

// RenderPass is one unit of GPU work in the frame: its declared resource
// accesses, attachments, explicit dependencies, and execute callback.
//
// Lifecycle: created by AddGraphicsPass/AddComputePass/AddTransferPass,
// mutated only during Compile (dependsOn and preBarriers are filled in),
// read-only during Execute, discarded at the next BeginFrame.
type RenderPass struct {
	index    uint32
	name     string
	passType PassType

	reads  []ResourceDependency
	writes []ResourceDependency

	explicitDeps []string

	colorAttachments []colorAttachment
	depth            depthAttachment

	execute ExecuteFunc

	// Computed during Compile.
	dependsOn   []int
	preBarriers []Barrier
}

// Index returns the pass's declaration index, stable for the frame.
func (p *RenderPass) Index() uint32 { return p.index }

// Name returns the pass name.
func (p *RenderPass) Name() string { return p.name }

// Type returns the pass type.
func (p *RenderPass) Type() PassType { return p.passType }

// Reads returns the declared read dependencies.
func (p *RenderPass) Reads() []ResourceDependency { return p.reads }

// Writes returns the declared write dependencies.
func (p *RenderPass) Writes() []ResourceDependency { return p.writes }

// DependsOn returns the computed dependency pass indices. Empty until
// Compile runs.
func (p *RenderPass) DependsOn() []int { return p.dependsOn }

// PreBarriers returns the layout transitions issued before the pass.
// Empty until Compile runs.
func (p *RenderPass) PreBarriers() []Barrier { return p.preBarriers }

// dependsOnPass reports whether idx is already a computed dependency.
func (p *RenderPass) dependsOnPass(idx int) bool {
	for _, d := range p.dependsOn {
		if d == idx {
			return true
		}
	}
	return false
}
