// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"github.com/gogpu/framegraph"
	"github.com/gogpu/wgpu/hal"
)

// Encoder implements framegraph.CommandEncoder over a HAL command
// encoder. Create one per frame with Device.NewEncoder and hand it to
// RenderGraph.Execute; finish with Device.Submit.
type Encoder struct {
	device  *Device
	encoder hal.CommandEncoder
}

// HAL returns the underlying HAL command encoder, for transfer pass
// callbacks that record copies directly.
func (e *Encoder) HAL() hal.CommandEncoder { return e.encoder }

// TextureBarrier issues a HAL usage transition for the texture.
// Textures from other backends are ignored.
func (e *Encoder) TextureBarrier(texture framegraph.Texture, oldLayout, newLayout framegraph.TextureLayout) {
	t, ok := texture.(*Texture)
	if !ok || t.tex == nil {
		return
	}
	e.encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: layoutUsage(oldLayout),
			NewUsage: layoutUsage(newLayout),
		},
	}})
}

// BeginRenderPass begins a HAL render pass with the resolved
// attachments. Attachments whose views did not resolve are dropped;
// a pass left with no attachments returns nil and is skipped by the
// graph.
func (e *Encoder) BeginRenderPass(desc *framegraph.RenderPassDescriptor) framegraph.RenderPassEncoder {
	halDesc := &hal.RenderPassDescriptor{Label: desc.Label}

	for _, att := range desc.ColorAttachments {
		view, ok := att.View.(*TextureView)
		if !ok || view.view == nil {
			continue
		}
		halDesc.ColorAttachments = append(halDesc.ColorAttachments, hal.RenderPassColorAttachment{
			View:       view.view,
			LoadOp:     att.LoadOp,
			StoreOp:    att.StoreOp,
			ClearValue: att.ClearValue,
		})
	}

	if d := desc.DepthStencilAttachment; d != nil {
		if view, ok := d.View.(*TextureView); ok && view.view != nil {
			halDesc.DepthStencilAttachment = &hal.RenderPassDepthStencilAttachment{
				View:              view.view,
				DepthLoadOp:       d.DepthLoadOp,
				DepthStoreOp:      d.DepthStoreOp,
				DepthClearValue:   d.DepthClearValue,
				StencilLoadOp:     d.StencilLoadOp,
				StencilStoreOp:    d.StencilStoreOp,
				StencilClearValue: d.StencilClearValue,
			}
		}
	}

	if len(halDesc.ColorAttachments) == 0 && halDesc.DepthStencilAttachment == nil {
		return nil
	}

	rp := e.encoder.BeginRenderPass(halDesc)
	if rp == nil {
		return nil
	}
	return &RenderPass{pass: rp}
}

// BeginComputePass begins a HAL compute pass.
func (e *Encoder) BeginComputePass() framegraph.ComputePassEncoder {
	cp := e.encoder.BeginComputePass(&hal.ComputePassDescriptor{
		Label: "framegraph_compute",
	})
	if cp == nil {
		return nil
	}
	return &ComputePass{pass: cp}
}

// RenderPass wraps a HAL render pass encoder. Graphics callbacks
// type-assert framegraph.RenderPassEncoder back to *RenderPass to reach
// the HAL draw API.
type RenderPass struct {
	pass hal.RenderPassEncoder
}

// HAL returns the underlying HAL render pass encoder.
func (p *RenderPass) HAL() hal.RenderPassEncoder { return p.pass }

// End completes the render pass.
func (p *RenderPass) End() {
	if p.pass != nil {
		p.pass.End()
		p.pass = nil
	}
}

// ComputePass wraps a HAL compute pass encoder.
type ComputePass struct {
	pass hal.ComputePassEncoder
}

// HAL returns the underlying HAL compute pass encoder.
func (p *ComputePass) HAL() hal.ComputePassEncoder { return p.pass }

// End completes the compute pass.
func (p *ComputePass) End() {
	if p.pass != nil {
		p.pass.End()
		p.pass = nil
	}
}

var _ framegraph.CommandEncoder = (*Encoder)(nil)
