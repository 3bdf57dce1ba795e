// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// ResourceKind identifies the class of a graph resource.
type ResourceKind uint8

const (
	// KindInvalid is the zero value; a zero ResourceHandle refers to nothing.
	KindInvalid ResourceKind = iota

	// KindTexture is a texture resource.
	KindTexture

	// KindBuffer is a buffer resource.
	KindBuffer
)

// String returns the string representation of ResourceKind.
func (k ResourceKind) String() string {
	switch k {
	case KindInvalid:
		return "Invalid"
	case KindTexture:
		return "Texture"
	case KindBuffer:
		return "Buffer"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// TextureLayout describes the access layout a texture is in, or must be
// transitioned to, at a given point in the frame. Only textures are
// layout-tracked; buffers never participate in barriers.
type TextureLayout uint8

const (
	// LayoutUndefined is the layout of a freshly allocated transient
	// texture. Contents are undefined.
	LayoutUndefined TextureLayout = iota

	// LayoutGeneral permits any access. Rarely optimal; used for storage
	// images written and read in the same pass.
	LayoutGeneral

	// LayoutColorAttachment is required for color render targets.
	LayoutColorAttachment

	// LayoutDepthAttachment is required for depth/stencil render targets.
	LayoutDepthAttachment

	// LayoutShaderReadOnly is required for sampled textures.
	LayoutShaderReadOnly

	// LayoutTransferSrc is required for copy sources.
	LayoutTransferSrc

	// LayoutTransferDst is required for copy destinations.
	LayoutTransferDst

	// LayoutPresent is required before presenting a swapchain texture.
	LayoutPresent
)

// String returns the string representation of TextureLayout.
func (l TextureLayout) String() string {
	switch l {
	case LayoutUndefined:
		return "Undefined"
	case LayoutGeneral:
		return "General"
	case LayoutColorAttachment:
		return "ColorAttachment"
	case LayoutDepthAttachment:
		return "DepthAttachment"
	case LayoutShaderReadOnly:
		return "ShaderReadOnly"
	case LayoutTransferSrc:
		return "TransferSrc"
	case LayoutTransferDst:
		return "TransferDst"
	case LayoutPresent:
		return "Present"
	default:
		return fmt.Sprintf("Unknown(%d)", int(l))
	}
}

// ResourceHandle is an opaque reference to a resource declared in the
// current frame. Handles are only valid between the BeginFrame that
// produced them and the next BeginFrame; the zero value refers to
// nothing. Handles carry no generation counter because the whole
// resource list is discarded every frame.
type ResourceHandle struct {
	index uint32
	kind  ResourceKind
}

// IsValid reports whether the handle refers to a declared resource.
func (h ResourceHandle) IsValid() bool { return h.kind != KindInvalid }

// Kind returns the resource kind the handle refers to.
func (h ResourceHandle) Kind() ResourceKind { return h.kind }

// String returns a debug representation of the handle.
func (h ResourceHandle) String() string {
	return fmt.Sprintf("%s#%d", h.kind, h.index)
}

// TextureDescriptor describes parameters for creating a texture.
// This mirrors the WebGPU GPUTextureDescriptor specification.
//
// TextureDescriptor is comparable; the transient pool treats identical
// descriptors as interchangeable.
type TextureDescriptor struct {
	// Label is an optional debug label for the texture.
	Label string

	// Width is the texture width in pixels.
	Width uint32

	// Height is the texture height in pixels.
	Height uint32

	// Depth is the texture depth for 3D textures, or array layer count.
	// Use 1 for regular 2D textures.
	Depth uint32

	// MipLevelCount is the number of mipmap levels. Use 1 for no mipmaps.
	MipLevelCount uint32

	// SampleCount is the number of samples for multisampling.
	// Use 1 for no multisampling.
	SampleCount uint32

	// Dimension is the texture dimensionality.
	Dimension gputypes.TextureDimension

	// Format is the texture pixel format.
	Format gputypes.TextureFormat

	// Usage specifies how the texture will be used.
	Usage gputypes.TextureUsage
}

// DefaultTextureDescriptor returns a TextureDescriptor with sensible
// defaults for a 2D render target. Only Width, Height, and Format need
// to be set.
func DefaultTextureDescriptor(width, height uint32, format gputypes.TextureFormat) TextureDescriptor {
	return TextureDescriptor{
		Width:         width,
		Height:        height,
		Depth:         1,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageRenderAttachment,
	}
}

// BufferDescriptor describes parameters for creating a buffer.
//
// BufferDescriptor is comparable; the transient pool treats identical
// descriptors as interchangeable.
type BufferDescriptor struct {
	// Label is an optional debug label for the buffer.
	Label string

	// Size is the buffer size in bytes.
	Size uint64

	// Usage specifies how the buffer will be used.
	Usage gputypes.BufferUsage
}

// ResourceNode is one resource in the current frame's graph: either a
// transient resource whose GPU backing is borrowed from the pool during
// Compile, or an imported resource owned by the caller.
//
// Exactly one of IsImported and IsTransient is true. For transient
// resources the underlying GPU object is nil until Compile allocates it
// and is returned to the pool at EndFrame. The graph never destroys
// imported resources.
type ResourceNode struct {
	name   string
	handle ResourceHandle

	imported  bool
	transient bool

	textureDesc TextureDescriptor
	bufferDesc  BufferDescriptor

	// currentLayout is meaningful only for textures. It tracks the layout
	// the texture will be in after the last pass scheduled so far and is
	// mutated only by the barrier computation during Compile.
	currentLayout TextureLayout

	texture     Texture
	textureView TextureView
	buffer      Buffer
}

// Name returns the resource name given at declaration.
func (n *ResourceNode) Name() string { return n.name }

// Handle returns the handle referring to this node.
func (n *ResourceNode) Handle() ResourceHandle { return n.handle }

// Kind returns the resource kind.
func (n *ResourceNode) Kind() ResourceKind { return n.handle.kind }

// IsImported reports whether the resource is externally owned.
func (n *ResourceNode) IsImported() bool { return n.imported }

// IsTransient reports whether the resource is pool-allocated per frame.
func (n *ResourceNode) IsTransient() bool { return n.transient }

// TextureDesc returns the texture descriptor for texture nodes.
func (n *ResourceNode) TextureDesc() TextureDescriptor { return n.textureDesc }

// BufferDesc returns the buffer descriptor for buffer nodes.
func (n *ResourceNode) BufferDesc() BufferDescriptor { return n.bufferDesc }

// CurrentLayout returns the layout the texture is tracked in.
func (n *ResourceNode) CurrentLayout() TextureLayout { return n.currentLayout }

// Texture returns the GPU texture, or nil if not resolved.
func (n *ResourceNode) Texture() Texture { return n.texture }

// TextureView returns the GPU texture view, or nil if not resolved.
func (n *ResourceNode) TextureView() TextureView { return n.textureView }

// Buffer returns the GPU buffer, or nil if not resolved.
func (n *ResourceNode) Buffer() Buffer { return n.buffer }
