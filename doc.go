// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package framegraph implements a per-frame render graph scheduler.
//
// Rendering subsystems declare GPU passes together with the resources
// those passes read and write. The graph then orders the passes,
// allocates transient resources from a pool, computes the texture layout
// barriers required between passes, and executes everything against a
// command encoder.
//
// The graph is rebuilt from scratch every frame:
//
//	graph := framegraph.New(pool)
//
//	graph.BeginFrame(frameIndex, dt, total)
//
//	depth := graph.CreateTransientTexture("shadow_depth", depthDesc)
//	color := graph.ImportTexture("swapchain", tex, view, framegraph.LayoutColorAttachment)
//
//	graph.AddGraphicsPass("shadow").
//		Write(depth, framegraph.LayoutDepthAttachment).
//		SetDepthAttachment(depth, gputypes.LoadOpClear, gputypes.StoreOpStore, 1.0).
//		SetExecute(drawShadows)
//
//	graph.AddGraphicsPass("scene").
//		Read(depth, framegraph.LayoutShaderReadOnly).
//		Write(color, framegraph.LayoutColorAttachment).
//		SetColorAttachment(0, color, gputypes.LoadOpClear, gputypes.StoreOpStore, gputypes.Color{}).
//		SetExecute(drawScene)
//
//	graph.Execute(encoder)
//	graph.EndFrame()
//
// Pass ordering is derived from explicit dependencies (DependsOn) and
// from resource overlap: a pass that reads a resource runs after the
// pass that last wrote it, in declaration order. Scheduling uses Kahn's
// algorithm with a lowest-declaration-index tie-break, so the same
// declaration sequence always produces the same execution order.
//
// The graph never fails a frame. Unresolved dependency names are
// ignored, dependency cycles degrade to declaration order, and passes
// whose underlying GPU pass cannot begin simply skip their callback.
//
// framegraph is not safe for concurrent use; a graph belongs to the
// thread that records the frame.
package framegraph
