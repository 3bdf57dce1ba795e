// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/pool"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Device errors.
var (
	// ErrNilProvider is returned when creating a device without a provider.
	ErrNilProvider = errors.New("wgpu: device provider is nil")

	// ErrNoHALAccess is returned when the provider does not expose HAL
	// device access.
	ErrNoHALAccess = errors.New("wgpu: provider does not expose HAL device access")
)

// submitTimeout bounds the completion wait after a frame submit.
const submitTimeout = 5 * time.Second

// pollInterval is the sleep between completion polls while waiting for
// a submission.
const pollInterval = 100 * time.Microsecond

// halProvider is the HAL access surface of a device provider, exposing
// HalDevice() any and HalQueue() any returning hal.Device and hal.Queue.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// Device wraps a HAL device and queue for framegraph use: it creates
// the GPU objects the transient pool hands out and submits frame
// command buffers.
type Device struct {
	device hal.Device
	queue  hal.Queue
}

// NewDevice creates a Device from a shared device provider. The
// provider must also implement HAL access (gpucontext.HalProvider); a
// provider without it cannot drive the graph.
func NewDevice(provider gpucontext.DeviceProvider) (*Device, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}

	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHALAccess
	}

	device, ok := hp.HalDevice().(hal.Device)
	if !ok {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHALAccess)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHALAccess)
	}

	return &Device{device: device, queue: queue}, nil
}

// NewDeviceFromHAL creates a Device from raw HAL handles. Intended for
// hosts that manage HAL objects directly.
func NewDeviceFromHAL(device hal.Device, queue hal.Queue) (*Device, error) {
	if device == nil || queue == nil {
		return nil, ErrNilProvider
	}
	return &Device{device: device, queue: queue}, nil
}

// HAL returns the underlying HAL device and queue.
func (d *Device) HAL() (hal.Device, hal.Queue) { return d.device, d.queue }

// CreateTexture creates a texture and a default view matching desc.
func (d *Device) CreateTexture(desc framegraph.TextureDescriptor) (framegraph.Texture, framegraph.TextureView, error) {
	depth := desc.Depth
	if depth == 0 {
		depth = 1
	}

	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          hal.Extent3D{Width: desc.Width, Height: desc.Height, DepthOrArrayLayers: depth},
		MipLevelCount: max(desc.MipLevelCount, 1),
		SampleCount:   max(desc.SampleCount, 1),
		Dimension:     desc.Dimension,
		Format:        desc.Format,
		Usage:         desc.Usage,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create texture: %w", err)
	}

	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: desc.Label + "_view",
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return nil, nil, fmt.Errorf("create texture view: %w", err)
	}

	return &Texture{device: d, tex: tex}, &TextureView{device: d, view: view}, nil
}

// CreateBuffer creates a buffer matching desc.
func (d *Device) CreateBuffer(desc framegraph.BufferDescriptor) (framegraph.Buffer, error) {
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size,
		Usage: desc.Usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create buffer: %w", err)
	}
	return &Buffer{device: d, buf: buf, size: desc.Size}, nil
}

// NewEncoder creates a command encoder recording one frame.
func (d *Device) NewEncoder(label string) (*Encoder, error) {
	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: label,
	})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}
	return &Encoder{device: d, encoder: encoder}, nil
}

// Submit finishes the encoder, submits its commands, and blocks until
// the GPU reports the submission complete. The HAL queue manages its own
// fences; completion is observed by polling the submission index.
func (d *Device) Submit(enc *Encoder) error {
	cmdBuf, err := enc.encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	index, err := d.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}

	deadline := time.Now().Add(submitTimeout)
	for d.queue.PollCompleted() < index {
		if time.Now().After(deadline) {
			return fmt.Errorf("wait for GPU: submission %d not completed after %v", index, submitTimeout)
		}
		time.Sleep(pollInterval)
	}
	return nil
}

// Texture wraps a HAL texture. Pass callbacks that need the native
// handle type-assert framegraph.Texture back to *Texture.
type Texture struct {
	device *Device
	tex    hal.Texture
}

// HAL returns the underlying HAL texture.
func (t *Texture) HAL() hal.Texture { return t.tex }

// Destroy releases the HAL texture.
func (t *Texture) Destroy() {
	if t.tex != nil {
		t.device.device.DestroyTexture(t.tex)
		t.tex = nil
	}
}

// TextureView wraps a HAL texture view.
type TextureView struct {
	device *Device
	view   hal.TextureView
}

// HAL returns the underlying HAL texture view.
func (v *TextureView) HAL() hal.TextureView { return v.view }

// Destroy releases the HAL texture view.
func (v *TextureView) Destroy() {
	if v.view != nil {
		v.device.device.DestroyTextureView(v.view)
		v.view = nil
	}
}

// Buffer wraps a HAL buffer.
type Buffer struct {
	device *Device
	buf    hal.Buffer
	size   uint64
}

// HAL returns the underlying HAL buffer.
func (b *Buffer) HAL() hal.Buffer { return b.buf }

// Size returns the buffer size in bytes.
func (b *Buffer) Size() uint64 { return b.size }

// Destroy releases the HAL buffer.
func (b *Buffer) Destroy() {
	if b.buf != nil {
		b.device.device.DestroyBuffer(b.buf)
		b.buf = nil
	}
}

// layoutUsage maps a graph layout to the HAL texture usage that
// represents the same access. HAL models Vulkan image layouts as usage
// transitions; this is the same mapping the session renderer uses for
// its resolve/copy barriers.
func layoutUsage(layout framegraph.TextureLayout) gputypes.TextureUsage {
	switch layout {
	case framegraph.LayoutColorAttachment, framegraph.LayoutDepthAttachment, framegraph.LayoutPresent:
		return gputypes.TextureUsageRenderAttachment
	case framegraph.LayoutShaderReadOnly:
		return gputypes.TextureUsageTextureBinding
	case framegraph.LayoutTransferSrc:
		return gputypes.TextureUsageCopySrc
	case framegraph.LayoutTransferDst:
		return gputypes.TextureUsageCopyDst
	case framegraph.LayoutGeneral:
		return gputypes.TextureUsageStorageBinding
	default:
		// Undefined: no prior access.
		return 0
	}
}

var _ pool.Device = (*Device)(nil)
