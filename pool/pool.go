// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package pool provides the default transient resource pool for
// framegraph. It reuses textures and buffers across passes and frames,
// keyed by descriptor, and evicts idle resources when a byte budget is
// exceeded.
package pool

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/gputypes"
)

// Pool errors.
var (
	// ErrNilDevice is returned when creating a pool without a device.
	ErrNilDevice = errors.New("pool: device is nil")

	// ErrClosed is returned when operating on a closed pool.
	ErrClosed = errors.New("pool: closed")
)

// Default limits.
const (
	// DefaultMaxMemoryMB is the default budget for idle pooled resources (128 MB).
	DefaultMaxMemoryMB = 128

	// MinMemoryMB is the minimum allowed budget (16 MB).
	MinMemoryMB = 16
)

// Device creates the GPU objects the pool hands out. backend/wgpu
// provides an implementation over a HAL device.
type Device interface {
	// CreateTexture creates a texture and a default view for it.
	CreateTexture(desc framegraph.TextureDescriptor) (framegraph.Texture, framegraph.TextureView, error)

	// CreateBuffer creates a buffer.
	CreateBuffer(desc framegraph.BufferDescriptor) (framegraph.Buffer, error)
}

// Config holds configuration for creating a Pool.
type Config struct {
	// MaxMemoryMB is the byte budget for idle pooled resources, in
	// megabytes. Defaults to DefaultMaxMemoryMB if <= 0.
	MaxMemoryMB int
}

// Stats contains pool usage counters.
type Stats struct {
	// Creates is the number of resources created on the device.
	Creates uint64

	// Reuses is the number of acquisitions served from the free lists.
	Reuses uint64

	// Returns is the number of resources given back to the pool.
	Returns uint64

	// Evictions is the number of idle resources destroyed for budget.
	Evictions uint64

	// IdleBytes is the memory held by idle pooled resources.
	IdleBytes uint64

	// IdleCount is the number of idle pooled resources.
	IdleCount int
}

// String returns a human-readable string of pool stats.
func (s Stats) String() string {
	return fmt.Sprintf("Pool[%d created, %d reused, %d evicted, %d idle, %d MB idle]",
		s.Creates, s.Reuses, s.Evictions, s.IdleCount, s.IdleBytes/(1024*1024))
}

// texEntry is an idle texture with its view and last-use time.
type texEntry struct {
	texture  framegraph.Texture
	view     framegraph.TextureView
	bytes    uint64
	lastUsed time.Time
}

// bufEntry is an idle buffer with its last-use time.
type bufEntry struct {
	buffer   framegraph.Buffer
	bytes    uint64
	lastUsed time.Time
}

// Pool is a transient resource pool backed by a Device. Identical
// descriptors (ignoring labels) are interchangeable: an acquire is
// served from the matching free list when possible and from the device
// otherwise. Returned resources stay idle until reused or evicted.
//
// Pool is safe for concurrent use.
type Pool struct {
	mu sync.Mutex

	device Device

	freeTextures map[framegraph.TextureDescriptor][]texEntry
	freeBuffers  map[framegraph.BufferDescriptor][]bufEntry

	budgetBytes uint64
	idleBytes   uint64

	creates   uint64
	reuses    uint64
	returns   uint64
	evictions uint64

	closed bool
}

// New creates a pool that allocates from device.
func New(device Device, config Config) (*Pool, error) {
	if device == nil {
		return nil, ErrNilDevice
	}

	maxMB := config.MaxMemoryMB
	if maxMB < MinMemoryMB {
		maxMB = DefaultMaxMemoryMB
	}

	return &Pool{
		device:       device,
		freeTextures: make(map[framegraph.TextureDescriptor][]texEntry),
		freeBuffers:  make(map[framegraph.BufferDescriptor][]bufEntry),
		//nolint:gosec // G115: maxMB is bounded by MinMemoryMB minimum
		budgetBytes: uint64(maxMB) * 1024 * 1024,
	}, nil
}

// AcquireTexture returns a texture and view matching desc, reusing an
// idle one when available. Returns nil, nil if the device cannot create
// the texture; the graph treats that as "resource not found" and the
// frame degrades instead of failing.
func (p *Pool) AcquireTexture(desc framegraph.TextureDescriptor) (framegraph.Texture, framegraph.TextureView) {
	key := textureKey(desc)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, nil
	}
	if entries := p.freeTextures[key]; len(entries) > 0 {
		entry := entries[len(entries)-1]
		p.freeTextures[key] = entries[:len(entries)-1]
		p.idleBytes -= entry.bytes
		p.reuses++
		p.mu.Unlock()
		return entry.texture, entry.view
	}
	p.mu.Unlock()

	// Device creation happens outside the lock; it can be slow.
	tex, view, err := p.device.CreateTexture(desc)
	if err != nil {
		framegraph.Logger().Warn("pool: texture creation failed",
			"label", desc.Label, "width", desc.Width, "height", desc.Height, "err", err)
		return nil, nil
	}

	p.mu.Lock()
	p.creates++
	p.mu.Unlock()
	return tex, view
}

// ReturnTexture gives a texture and its view back for reuse. Resources
// beyond the idle budget are destroyed, oldest first.
func (p *Pool) ReturnTexture(tex framegraph.Texture, view framegraph.TextureView, desc framegraph.TextureDescriptor) {
	if tex == nil {
		return
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		destroyTexture(tex, view)
		return
	}

	key := textureKey(desc)
	entry := texEntry{texture: tex, view: view, bytes: textureBytes(desc), lastUsed: time.Now()}
	p.freeTextures[key] = append(p.freeTextures[key], entry)
	p.idleBytes += entry.bytes
	p.returns++

	evict := p.collectEvictionsLocked()
	p.mu.Unlock()

	for _, e := range evict {
		e.destroy()
	}
}

// AcquireBuffer returns a buffer matching desc, reusing an idle one when
// available. Returns nil if the device cannot create the buffer.
func (p *Pool) AcquireBuffer(desc framegraph.BufferDescriptor) framegraph.Buffer {
	key := bufferKey(desc)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	if entries := p.freeBuffers[key]; len(entries) > 0 {
		entry := entries[len(entries)-1]
		p.freeBuffers[key] = entries[:len(entries)-1]
		p.idleBytes -= entry.bytes
		p.reuses++
		p.mu.Unlock()
		return entry.buffer
	}
	p.mu.Unlock()

	buf, err := p.device.CreateBuffer(desc)
	if err != nil {
		framegraph.Logger().Warn("pool: buffer creation failed",
			"label", desc.Label, "size", desc.Size, "err", err)
		return nil
	}

	p.mu.Lock()
	p.creates++
	p.mu.Unlock()
	return buf
}

// ReturnBuffer gives a buffer back for reuse.
func (p *Pool) ReturnBuffer(buf framegraph.Buffer, desc framegraph.BufferDescriptor) {
	if buf == nil {
		return
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		buf.Destroy()
		return
	}

	key := bufferKey(desc)
	entry := bufEntry{buffer: buf, bytes: desc.Size, lastUsed: time.Now()}
	p.freeBuffers[key] = append(p.freeBuffers[key], entry)
	p.idleBytes += entry.bytes
	p.returns++

	evict := p.collectEvictionsLocked()
	p.mu.Unlock()

	for _, e := range evict {
		e.destroy()
	}
}

// Stats returns current pool counters.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	idle := 0
	for _, entries := range p.freeTextures {
		idle += len(entries)
	}
	for _, entries := range p.freeBuffers {
		idle += len(entries)
	}

	return Stats{
		Creates:   p.creates,
		Reuses:    p.reuses,
		Returns:   p.returns,
		Evictions: p.evictions,
		IdleBytes: p.idleBytes,
		IdleCount: idle,
	}
}

// Close destroys all idle resources. Acquires after Close return nil.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true

	var all []evictable
	for _, entries := range p.freeTextures {
		for _, e := range entries {
			all = append(all, evictable{tex: e.texture, view: e.view})
		}
	}
	for _, entries := range p.freeBuffers {
		for _, e := range entries {
			all = append(all, evictable{buf: e.buffer})
		}
	}
	p.freeTextures = nil
	p.freeBuffers = nil
	p.idleBytes = 0
	p.mu.Unlock()

	for _, e := range all {
		e.destroy()
	}
}

// evictable defers resource destruction until after the lock is
// released; Destroy may call back into arbitrary backend code.
type evictable struct {
	tex  framegraph.Texture
	view framegraph.TextureView
	buf  framegraph.Buffer
}

func (e evictable) destroy() {
	if e.buf != nil {
		e.buf.Destroy()
	}
	destroyTexture(e.tex, e.view)
}

func destroyTexture(tex framegraph.Texture, view framegraph.TextureView) {
	if view != nil {
		view.Destroy()
	}
	if tex != nil {
		tex.Destroy()
	}
}

// collectEvictionsLocked removes oldest idle entries until the idle set
// fits the budget. Caller must hold mu; destruction happens later,
// outside the lock.
func (p *Pool) collectEvictionsLocked() []evictable {
	var evict []evictable

	for p.idleBytes > p.budgetBytes {
		var (
			oldestTime time.Time
			oldestTex  *framegraph.TextureDescriptor
			oldestBuf  *framegraph.BufferDescriptor
			found      bool
		)

		for key, entries := range p.freeTextures {
			if len(entries) == 0 {
				continue
			}
			if !found || entries[0].lastUsed.Before(oldestTime) {
				oldestTime = entries[0].lastUsed
				k := key
				oldestTex, oldestBuf = &k, nil
				found = true
			}
		}
		for key, entries := range p.freeBuffers {
			if len(entries) == 0 {
				continue
			}
			if !found || entries[0].lastUsed.Before(oldestTime) {
				oldestTime = entries[0].lastUsed
				k := key
				oldestTex, oldestBuf = nil, &k
				found = true
			}
		}
		if !found {
			break
		}

		if oldestTex != nil {
			entries := p.freeTextures[*oldestTex]
			entry := entries[0]
			p.freeTextures[*oldestTex] = entries[1:]
			p.idleBytes -= entry.bytes
			evict = append(evict, evictable{tex: entry.texture, view: entry.view})
		} else {
			entries := p.freeBuffers[*oldestBuf]
			entry := entries[0]
			p.freeBuffers[*oldestBuf] = entries[1:]
			p.idleBytes -= entry.bytes
			evict = append(evict, evictable{buf: entry.buffer})
		}
		p.evictions++
	}

	if len(evict) > 0 {
		framegraph.Logger().Debug("pool: evicted idle resources",
			"count", len(evict), "idleBytes", p.idleBytes)
	}
	return evict
}

// textureKey strips the debug label so labels do not defeat reuse.
func textureKey(desc framegraph.TextureDescriptor) framegraph.TextureDescriptor {
	desc.Label = ""
	return desc
}

// bufferKey strips the debug label so labels do not defeat reuse.
func bufferKey(desc framegraph.BufferDescriptor) framegraph.BufferDescriptor {
	desc.Label = ""
	return desc
}

// textureBytes estimates the GPU memory of a texture for budgeting.
func textureBytes(desc framegraph.TextureDescriptor) uint64 {
	depth := desc.Depth
	if depth == 0 {
		depth = 1
	}
	samples := desc.SampleCount
	if samples == 0 {
		samples = 1
	}
	return uint64(desc.Width) * uint64(desc.Height) * uint64(depth) *
		uint64(samples) * uint64(formatBytes(desc.Format))
}

// formatBytes returns bytes per pixel for budgeting purposes. Unknown
// formats assume 4.
func formatBytes(format gputypes.TextureFormat) uint32 {
	switch format {
	case gputypes.TextureFormatR8Unorm:
		return 1
	case gputypes.TextureFormatR32Float, gputypes.TextureFormatRGBA8Unorm,
		gputypes.TextureFormatRGBA8UnormSrgb, gputypes.TextureFormatBGRA8Unorm,
		gputypes.TextureFormatBGRA8UnormSrgb, gputypes.TextureFormatDepth24PlusStencil8:
		return 4
	case gputypes.TextureFormatRG32Float:
		return 8
	case gputypes.TextureFormatRGBA32Float:
		return 16
	default:
		return 4
	}
}
