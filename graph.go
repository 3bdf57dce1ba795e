// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import "fmt"

// RenderGraph owns the passes and resources of one frame and schedules
// them: it builds the dependency graph, topologically sorts the passes,
// allocates transient resources from the pool, computes layout barriers,
// and drives execution against a CommandEncoder.
//
// A RenderGraph is reused across frames but holds only one frame of
// state at a time; BeginFrame discards everything from the previous
// frame. It is not safe for concurrent use.
type RenderGraph struct {
	pool TransientPool

	passes    []*RenderPass
	resources []*ResourceNode
	sorted    []*RenderPass

	compiled bool

	frameIndex uint64
	deltaTime  float64
	totalTime  float64
}

// New creates a render graph drawing transient resources from pool.
// A nil pool is legal: transient resources then never resolve to GPU
// objects, which is useful for headless scheduling and tests.
func New(pool TransientPool) *RenderGraph {
	return &RenderGraph{pool: pool}
}

// BeginFrame starts a new frame, discarding all passes and resources
// declared in the previous one. It must be called exactly once before
// any declaration call for the frame.
//
// Transient resources still held from the previous frame are returned
// to the pool first, so a caller that skips EndFrame leaks nothing.
func (g *RenderGraph) BeginFrame(frameIndex uint64, deltaTime, totalTime float64) {
	g.releaseTransients()

	g.passes = g.passes[:0]
	g.resources = g.resources[:0]
	g.sorted = g.sorted[:0]
	g.compiled = false

	g.frameIndex = frameIndex
	g.deltaTime = deltaTime
	g.totalTime = totalTime
}

// FrameIndex returns the index of the current frame.
func (g *RenderGraph) FrameIndex() uint64 { return g.frameIndex }

// CreateTransientTexture registers a transient texture for this frame.
// No GPU allocation happens until Compile.
func (g *RenderGraph) CreateTransientTexture(name string, desc TextureDescriptor) ResourceHandle {
	node := &ResourceNode{
		name:        name,
		transient:   true,
		textureDesc: desc,
	}
	return g.addResource(node, KindTexture)
}

// CreateTransientBuffer registers a transient buffer for this frame.
// No GPU allocation happens until Compile.
func (g *RenderGraph) CreateTransientBuffer(name string, desc BufferDescriptor) ResourceHandle {
	node := &ResourceNode{
		name:       name,
		transient:  true,
		bufferDesc: desc,
	}
	return g.addResource(node, KindBuffer)
}

// ImportTexture registers an externally owned texture. The graph tracks
// its layout starting from initialLayout but never destroys it.
func (g *RenderGraph) ImportTexture(name string, texture Texture, view TextureView, initialLayout TextureLayout) ResourceHandle {
	node := &ResourceNode{
		name:          name,
		imported:      true,
		texture:       texture,
		textureView:   view,
		currentLayout: initialLayout,
	}
	return g.addResource(node, KindTexture)
}

// ImportBuffer registers an externally owned buffer.
func (g *RenderGraph) ImportBuffer(name string, buffer Buffer) ResourceHandle {
	node := &ResourceNode{
		name:     name,
		imported: true,
		buffer:   buffer,
	}
	return g.addResource(node, KindBuffer)
}

func (g *RenderGraph) addResource(node *ResourceNode, kind ResourceKind) ResourceHandle {
	//nolint:gosec // G115: per-frame resource counts never approach uint32 range
	handle := ResourceHandle{index: uint32(len(g.resources)), kind: kind}
	node.handle = handle
	g.resources = append(g.resources, node)
	return handle
}

// AddGraphicsPass declares a rasterization pass and returns its builder.
// The pass index is the count of passes declared so far this frame.
func (g *RenderGraph) AddGraphicsPass(name string) *PassBuilder {
	return g.addPass(name, PassGraphics)
}

// AddComputePass declares a compute pass and returns its builder.
func (g *RenderGraph) AddComputePass(name string) *PassBuilder {
	return g.addPass(name, PassCompute)
}

// AddTransferPass declares a transfer pass and returns its builder.
// Transfer passes open no GPU pass object; their callback records copy
// commands directly on the encoder.
func (g *RenderGraph) AddTransferPass(name string) *PassBuilder {
	return g.addPass(name, PassTransfer)
}

func (g *RenderGraph) addPass(name string, passType PassType) *PassBuilder {
	pass := &RenderPass{
		//nolint:gosec // G115: per-frame pass counts never approach uint32 range
		index:    uint32(len(g.passes)),
		name:     name,
		passType: passType,
	}
	g.passes = append(g.passes, pass)
	return &PassBuilder{pass: pass}
}

// Compile builds the dependency graph, sorts the passes, allocates
// transient resources, and computes barriers. It is idempotent within a
// frame: the second and later calls are no-ops until BeginFrame resets
// the compiled flag.
func (g *RenderGraph) Compile() {
	if g.compiled {
		return
	}

	g.buildDependencyGraph()
	g.topologicalSort()
	g.allocateTransientResources()
	g.computeBarriers()

	g.compiled = true
}

// Execute compiles the graph if needed, then executes every pass in
// sorted order against encoder. Pass failures never propagate; a pass
// whose GPU pass cannot begin simply skips its callback.
func (g *RenderGraph) Execute(encoder CommandEncoder) {
	g.Compile()

	for _, pass := range g.sorted {
		g.executePass(encoder, pass)
	}
}

// EndFrame returns all transient resources still held to the pool and
// clears the nodes' GPU references. Imported resources are untouched.
func (g *RenderGraph) EndFrame() {
	g.releaseTransients()
}

func (g *RenderGraph) releaseTransients() {
	for _, node := range g.resources {
		if !node.transient {
			continue
		}
		switch node.handle.kind {
		case KindTexture:
			if node.texture != nil && g.pool != nil {
				g.pool.ReturnTexture(node.texture, node.textureView, node.textureDesc)
			}
			node.texture = nil
			node.textureView = nil
		case KindBuffer:
			if node.buffer != nil && g.pool != nil {
				g.pool.ReturnBuffer(node.buffer, node.bufferDesc)
			}
			node.buffer = nil
		}
	}
}

// Resource resolves a handle to its node. Returns nil for handles that
// are out of range, of the wrong kind, or from another frame.
func (g *RenderGraph) Resource(handle ResourceHandle) *ResourceNode {
	if !handle.IsValid() || int(handle.index) >= len(g.resources) {
		return nil
	}
	node := g.resources[handle.index]
	if node.handle.kind != handle.kind {
		return nil
	}
	return node
}

// ResourceTexture resolves a handle to its GPU texture, or nil.
func (g *RenderGraph) ResourceTexture(handle ResourceHandle) Texture {
	if node := g.Resource(handle); node != nil {
		return node.texture
	}
	return nil
}

// ResourceTextureView resolves a handle to its texture view, or nil.
func (g *RenderGraph) ResourceTextureView(handle ResourceHandle) TextureView {
	if node := g.Resource(handle); node != nil {
		return node.textureView
	}
	return nil
}

// ResourceBuffer resolves a handle to its GPU buffer, or nil.
func (g *RenderGraph) ResourceBuffer(handle ResourceHandle) Buffer {
	if node := g.Resource(handle); node != nil {
		return node.buffer
	}
	return nil
}

// PassCount returns the number of passes declared this frame.
func (g *RenderGraph) PassCount() int { return len(g.passes) }

// ResourceCount returns the number of resources declared this frame.
func (g *RenderGraph) ResourceCount() int { return len(g.resources) }

// SortedPasses returns the passes in execution order. Empty before
// Compile. The returned slice is owned by the graph.
func (g *RenderGraph) SortedPasses() []*RenderPass { return g.sorted }

// ExecutionOrder returns the pass names in execution order. Empty
// before Compile.
func (g *RenderGraph) ExecutionOrder() []string {
	names := make([]string, len(g.sorted))
	for i, p := range g.sorted {
		names[i] = p.name
	}
	return names
}

// Stats summarizes the compiled frame for debugging.
type Stats struct {
	// PassCount is the number of declared passes.
	PassCount int

	// ResourceCount is the number of declared resources.
	ResourceCount int

	// BarrierCount is the total number of pre-pass barriers.
	BarrierCount int

	// Compiled reports whether Compile has run this frame.
	Compiled bool
}

// String returns a human-readable form of the stats.
func (s Stats) String() string {
	return fmt.Sprintf("Frame[%d passes, %d resources, %d barriers, compiled=%t]",
		s.PassCount, s.ResourceCount, s.BarrierCount, s.Compiled)
}

// Stats returns scheduling statistics for the current frame.
func (g *RenderGraph) Stats() Stats {
	barriers := 0
	for _, p := range g.passes {
		barriers += len(p.preBarriers)
	}
	return Stats{
		PassCount:     len(g.passes),
		ResourceCount: len(g.resources),
		BarrierCount:  barriers,
		Compiled:      g.compiled,
	}
}
