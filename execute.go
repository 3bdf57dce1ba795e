// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

// executePass issues the pass's accumulated barriers, then dispatches by
// pass type. Nothing here returns an error: a pass that cannot begin on
// the device skips its callback and the frame continues with whatever
// work could be scheduled.
func (g *RenderGraph) executePass(encoder CommandEncoder, pass *RenderPass) {
	for _, barrier := range pass.preBarriers {
		texture := g.ResourceTexture(barrier.Handle)
		if texture == nil {
			continue
		}
		encoder.TextureBarrier(texture, barrier.OldLayout, barrier.NewLayout)
	}

	ctx := &PassContext{
		Graph:      g,
		Encoder:    encoder,
		Pass:       pass,
		FrameIndex: g.frameIndex,
		DeltaTime:  g.deltaTime,
		TotalTime:  g.totalTime,
	}

	switch pass.passType {
	case PassGraphics:
		rp := encoder.BeginRenderPass(g.renderPassDescriptor(pass))
		if rp == nil {
			return
		}
		if pass.execute != nil {
			ctx.RenderPass = rp
			pass.execute(ctx)
		}
		rp.End()

	case PassCompute:
		cp := encoder.BeginComputePass()
		if cp == nil {
			return
		}
		if pass.execute != nil {
			ctx.ComputePass = cp
			pass.execute(ctx)
		}
		cp.End()

	case PassTransfer:
		// Transfer work records straight onto the encoder; there is no
		// pass object to open.
		if pass.execute != nil {
			pass.execute(ctx)
		}
	}
}

// renderPassDescriptor resolves a graphics pass's declared attachments
// into encoder-ready form. Attachment slots bound to handles that no
// longer resolve to a node are dropped; views may still be nil when the
// graph runs without a pool, and backends must tolerate that.
func (g *RenderGraph) renderPassDescriptor(pass *RenderPass) *RenderPassDescriptor {
	desc := &RenderPassDescriptor{Label: pass.name}

	for _, att := range pass.colorAttachments {
		if !att.set {
			continue
		}
		node := g.Resource(att.target)
		if node == nil {
			continue
		}
		desc.ColorAttachments = append(desc.ColorAttachments, RenderPassColorAttachment{
			View:       node.textureView,
			LoadOp:     att.loadOp,
			StoreOp:    att.storeOp,
			ClearValue: att.clearValue,
		})
	}

	if pass.depth.set {
		if node := g.Resource(pass.depth.target); node != nil {
			desc.DepthStencilAttachment = &RenderPassDepthStencilAttachment{
				View:              node.textureView,
				DepthLoadOp:       pass.depth.depthLoadOp,
				DepthStoreOp:      pass.depth.depthStoreOp,
				DepthClearValue:   pass.depth.depthClearValue,
				StencilLoadOp:     pass.depth.stencilLoadOp,
				StencilStoreOp:    pass.depth.stencilStoreOp,
				StencilClearValue: pass.depth.stencilClearValue,
			}
		}
	}

	return desc
}
