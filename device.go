// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import "github.com/gogpu/gputypes"

// Texture represents a GPU texture resource.
//
// The graph treats textures as opaque: it resolves them from handles,
// passes them to barriers, and returns transient ones to the pool.
// Backends wrap their native texture type and callers type-assert back
// to it inside pass callbacks.
type Texture interface {
	// Destroy releases GPU resources associated with this texture.
	Destroy()
}

// TextureView represents a view into a texture.
// Views are what render pass attachments bind to.
type TextureView interface {
	// Destroy releases resources associated with this view.
	Destroy()
}

// Buffer represents a GPU buffer resource.
type Buffer interface {
	// Size returns the buffer size in bytes.
	Size() uint64

	// Destroy releases GPU resources associated with this buffer.
	Destroy()
}

// RenderPassColorAttachment is one resolved color attachment of a
// graphics pass, ready for the encoder.
type RenderPassColorAttachment struct {
	// View is the texture view rendered into.
	View TextureView

	// LoadOp determines how the attachment is initialized.
	LoadOp gputypes.LoadOp

	// StoreOp determines whether results are written back.
	StoreOp gputypes.StoreOp

	// ClearValue is used when LoadOp is LoadOpClear.
	ClearValue gputypes.Color
}

// RenderPassDepthStencilAttachment is the resolved depth/stencil
// attachment of a graphics pass.
type RenderPassDepthStencilAttachment struct {
	// View is the depth/stencil texture view.
	View TextureView

	// DepthLoadOp determines how the depth aspect is initialized.
	DepthLoadOp gputypes.LoadOp

	// DepthStoreOp determines whether depth results are written back.
	DepthStoreOp gputypes.StoreOp

	// DepthClearValue is used when DepthLoadOp is LoadOpClear.
	DepthClearValue float32

	// StencilLoadOp determines how the stencil aspect is initialized.
	StencilLoadOp gputypes.LoadOp

	// StencilStoreOp determines whether stencil results are written back.
	StencilStoreOp gputypes.StoreOp

	// StencilClearValue is used when StencilLoadOp is LoadOpClear.
	StencilClearValue uint32
}

// RenderPassDescriptor describes a begun render pass: the pass label and
// its resolved attachments.
type RenderPassDescriptor struct {
	// Label is the pass name, used for GPU debug markers.
	Label string

	// ColorAttachments are the color targets, in attachment-index order.
	ColorAttachments []RenderPassColorAttachment

	// DepthStencilAttachment is the optional depth/stencil target.
	DepthStencilAttachment *RenderPassDepthStencilAttachment
}

// RenderPassEncoder records draw commands within a begun render pass.
// Backends return richer concrete types; callbacks type-assert to reach
// backend-specific draw APIs.
type RenderPassEncoder interface {
	// End completes the render pass.
	End()
}

// ComputePassEncoder records dispatches within a begun compute pass.
type ComputePassEncoder interface {
	// End completes the compute pass.
	End()
}

// CommandEncoder is the command recording interface the graph executes
// against. A backend adapter (for example backend/wgpu) implements it
// over the native encoding API.
//
// BeginRenderPass and BeginComputePass may return nil when the device
// cannot begin a pass; the graph then skips the pass callback and keeps
// going. This keeps a starved device from failing the frame.
type CommandEncoder interface {
	// TextureBarrier transitions a texture between layouts. Issued by the
	// graph immediately before the pass that requires the new layout.
	TextureBarrier(texture Texture, oldLayout, newLayout TextureLayout)

	// BeginRenderPass begins a render pass with resolved attachments.
	BeginRenderPass(desc *RenderPassDescriptor) RenderPassEncoder

	// BeginComputePass begins a compute pass.
	BeginComputePass() ComputePassEncoder
}

// TransientPool satisfies requests for transient textures and buffers,
// reusing previously returned resources across passes and frames.
//
// The pool must treat identical descriptors as interchangeable; whether
// it reuses by exact match or by size class is the pool's choice. The
// graph acquires during Compile and returns everything at EndFrame.
type TransientPool interface {
	// AcquireTexture returns a texture and view matching the descriptor.
	AcquireTexture(desc TextureDescriptor) (Texture, TextureView)

	// ReturnTexture gives a texture and its view back for reuse.
	ReturnTexture(tex Texture, view TextureView, desc TextureDescriptor)

	// AcquireBuffer returns a buffer matching the descriptor.
	AcquireBuffer(desc BufferDescriptor) Buffer

	// ReturnBuffer gives a buffer back for reuse.
	ReturnBuffer(buf Buffer, desc BufferDescriptor)
}
