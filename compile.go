// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import "container/heap"

// buildDependencyGraph fills in every pass's dependsOn list as the union
// of its explicit named dependencies and the implicit dependencies
// derived from resource overlap.
//
// Implicit edges come from a last-writer map built while walking passes
// in declaration order: a reader depends on the most recent earlier
// declaration that wrote the same resource. A writer declared after a
// reader is never seen by it, so declaration order, not scheduled order,
// decides implicit edges. Sub-renderers rely on this; do not replace it
// with a post-sort analysis.
func (g *RenderGraph) buildDependencyGraph() {
	nameToIndex := make(map[string]int, len(g.passes))
	for i, pass := range g.passes {
		nameToIndex[pass.name] = i
	}

	lastWriter := make(map[ResourceHandle]int)

	for i, pass := range g.passes {
		pass.dependsOn = pass.dependsOn[:0]

		// Explicit dependencies. Unresolved names are ignored so optional
		// sub-renderers can be referenced without registration checks.
		for _, name := range pass.explicitDeps {
			dep, ok := nameToIndex[name]
			if !ok || dep == i || pass.dependsOnPass(dep) {
				continue
			}
			pass.dependsOn = append(pass.dependsOn, dep)
		}

		// Implicit dependencies: read-after-write against earlier
		// declarations.
		for _, read := range pass.reads {
			writer, ok := lastWriter[read.Handle]
			if !ok || writer == i || pass.dependsOnPass(writer) {
				continue
			}
			pass.dependsOn = append(pass.dependsOn, writer)
		}

		// Record this pass's writes only after its reads were resolved, so
		// a pass reading and writing the same resource does not depend on
		// itself.
		for _, write := range pass.writes {
			lastWriter[write.Handle] = i
		}
	}
}

// passHeap is a min-heap of pass indices, used as the ready set of
// Kahn's algorithm. Popping the lowest declaration index makes the
// schedule deterministic for a given declaration sequence.
type passHeap []int

func (h passHeap) Len() int           { return len(h) }
func (h passHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h passHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *passHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *passHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// topologicalSort orders the passes with Kahn's algorithm, breaking ties
// toward the lowest declaration index.
//
// A cycle is non-fatal: the sorted prefix runs in dependency order and
// the cyclic remainder is appended in declaration order. The frame still
// executes; correctness within the cycle is the caller's problem.
func (g *RenderGraph) topologicalSort() {
	n := len(g.passes)
	g.sorted = g.sorted[:0]
	if n == 0 {
		return
	}

	inDegree := make([]int, n)
	dependents := make([][]int, n)
	for i, pass := range g.passes {
		inDegree[i] = len(pass.dependsOn)
		for _, dep := range pass.dependsOn {
			dependents[dep] = append(dependents[dep], i)
		}
	}

	ready := &passHeap{}
	for i := 0; i < n; i++ {
		if inDegree[i] == 0 {
			heap.Push(ready, i)
		}
	}

	scheduled := make([]bool, n)
	for ready.Len() > 0 {
		i := heap.Pop(ready).(int)
		scheduled[i] = true
		g.sorted = append(g.sorted, g.passes[i])

		for _, j := range dependents[i] {
			inDegree[j]--
			if inDegree[j] == 0 {
				heap.Push(ready, j)
			}
		}
	}

	if len(g.sorted) < n {
		Logger().Warn("framegraph: dependency cycle detected, falling back to declaration order",
			"unscheduled", n-len(g.sorted))
		for i := 0; i < n; i++ {
			if !scheduled[i] {
				g.sorted = append(g.sorted, g.passes[i])
			}
		}
	}
}

// allocateTransientResources acquires GPU backing for every transient
// node from the pool and resets transient texture layouts to Undefined,
// establishing the starting state for barrier computation. Imported
// nodes keep the layout given at import.
func (g *RenderGraph) allocateTransientResources() {
	for _, node := range g.resources {
		if !node.transient {
			continue
		}
		switch node.handle.kind {
		case KindTexture:
			if g.pool != nil && node.texture == nil {
				node.texture, node.textureView = g.pool.AcquireTexture(node.textureDesc)
			}
			node.currentLayout = LayoutUndefined
		case KindBuffer:
			if g.pool != nil && node.buffer == nil {
				node.buffer = g.pool.AcquireBuffer(node.bufferDesc)
			}
		}
	}
}

// computeBarriers walks the sorted passes once, forward-simulating each
// texture's layout and recording the transition each pass must issue
// before it runs. Only textures participate; buffers are not
// layout-tracked.
//
// Per pass, three checks in order:
//
//  1. Implicit sampling: if a dependency of the pass was the last pass
//     to write a texture as a color attachment and the texture is still
//     in ColorAttachment layout, transition it to ShaderReadOnly. This
//     lets a pass sample its dependency's render target (UI compositing
//     over the scene, for example) without declaring the read.
//  2. Declared reads, in declaration order.
//  3. Declared writes, in declaration order.
//
// A barrier is emitted only when the required layout differs from the
// simulated one, so a resource used repeatedly in one layout gets a
// single transition at its first use.
func (g *RenderGraph) computeBarriers() {
	// Last pass (by declaration) writing each texture as a color
	// attachment, and the reverse mapping to that writer's textures.
	lastColorWriter := make(map[ResourceHandle]int)
	for i, pass := range g.passes {
		for _, write := range pass.writes {
			if write.Handle.kind == KindTexture && write.RequiredLayout == LayoutColorAttachment {
				lastColorWriter[write.Handle] = i
			}
		}
	}
	writerTargets := make(map[int][]ResourceHandle)
	for handle, writer := range lastColorWriter {
		writerTargets[writer] = append(writerTargets[writer], handle)
	}
	for _, targets := range writerTargets {
		sortHandles(targets)
	}

	for _, pass := range g.sorted {
		pass.preBarriers = pass.preBarriers[:0]

		for _, dep := range pass.dependsOn {
			for _, handle := range writerTargets[dep] {
				node := g.Resource(handle)
				if node == nil || node.currentLayout != LayoutColorAttachment {
					continue
				}
				pass.preBarriers = append(pass.preBarriers, Barrier{
					Handle:    handle,
					OldLayout: LayoutColorAttachment,
					NewLayout: LayoutShaderReadOnly,
				})
				node.currentLayout = LayoutShaderReadOnly
			}
		}

		for _, read := range pass.reads {
			g.transition(pass, read)
		}
		for _, write := range pass.writes {
			g.transition(pass, write)
		}
	}
}

// transition records a barrier on pass if dep requires a layout change,
// and advances the simulated layout.
func (g *RenderGraph) transition(pass *RenderPass, dep ResourceDependency) {
	if dep.Handle.kind != KindTexture {
		return
	}
	node := g.Resource(dep.Handle)
	if node == nil || node.currentLayout == dep.RequiredLayout {
		return
	}
	pass.preBarriers = append(pass.preBarriers, Barrier{
		Handle:    dep.Handle,
		OldLayout: node.currentLayout,
		NewLayout: dep.RequiredLayout,
	})
	node.currentLayout = dep.RequiredLayout
}

// sortHandles orders handles by index. Insertion sort; the per-writer
// target lists are tiny.
func sortHandles(handles []ResourceHandle) {
	for i := 1; i < len(handles); i++ {
		for j := i; j > 0 && handles[j].index < handles[j-1].index; j-- {
			handles[j], handles[j-1] = handles[j-1], handles[j]
		}
	}
}
