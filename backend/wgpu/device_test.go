// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// mockHALTexture is a test double for hal.Texture.
type mockHALTexture struct{ destroyed bool }

func (t *mockHALTexture) Destroy()                            { t.destroyed = true }
func (t *mockHALTexture) NativeHandle() uintptr               { return 0 }
func (t *mockHALTexture) CurrentUsage() gputypes.TextureUsage { return 0 }
func (t *mockHALTexture) AddPendingRef()                      {}
func (t *mockHALTexture) DecPendingRef()                      {}

// mockHALTextureView is a test double for hal.TextureView.
type mockHALTextureView struct{ destroyed bool }

func (v *mockHALTextureView) Destroy()              { v.destroyed = true }
func (v *mockHALTextureView) NativeHandle() uintptr { return 0 }

// mockHALCommandBuffer is a test double for hal.CommandBuffer.
type mockHALCommandBuffer struct{}

func (b *mockHALCommandBuffer) Destroy() {}

// mockHALEncoder is a test double for hal.CommandEncoder. It records
// texture transitions and hands back a fixed command buffer.
type mockHALEncoder struct {
	began       bool
	ended       bool
	cmdBuf      hal.CommandBuffer
	endErr      error
	transitions []hal.TextureBarrier
	renderDesc  *hal.RenderPassDescriptor
}

func (e *mockHALEncoder) BeginEncoding(_ string) error { e.began = true; return nil }

func (e *mockHALEncoder) EndEncoding() (hal.CommandBuffer, error) {
	e.ended = true
	if e.endErr != nil {
		return nil, e.endErr
	}
	return e.cmdBuf, nil
}

func (e *mockHALEncoder) DiscardEncoding()                  {}
func (e *mockHALEncoder) ResetAll(_ []hal.CommandBuffer)    {}
func (e *mockHALEncoder) Destroy()                          {}
func (e *mockHALEncoder) TransitionBuffers(_ []hal.BufferBarrier) {}

func (e *mockHALEncoder) TransitionTextures(barriers []hal.TextureBarrier) {
	e.transitions = append(e.transitions, barriers...)
}

func (e *mockHALEncoder) ClearBuffer(_ hal.Buffer, _, _ uint64)                       {}
func (e *mockHALEncoder) CopyBufferToBuffer(_, _ hal.Buffer, _ []hal.BufferCopy)      {}
func (e *mockHALEncoder) CopyBufferToTexture(_ hal.Buffer, _ hal.Texture, _ []hal.BufferTextureCopy) {
}
func (e *mockHALEncoder) CopyTextureToBuffer(_ hal.Texture, _ hal.Buffer, _ []hal.BufferTextureCopy) {
}
func (e *mockHALEncoder) CopyTextureToTexture(_, _ hal.Texture, _ []hal.TextureCopy) {}
func (e *mockHALEncoder) ResolveQuerySet(_ hal.QuerySet, _, _ uint32, _ hal.Buffer, _ uint64) {
}

func (e *mockHALEncoder) BeginRenderPass(desc *hal.RenderPassDescriptor) hal.RenderPassEncoder {
	e.renderDesc = desc
	return nil
}

func (e *mockHALEncoder) BeginComputePass(_ *hal.ComputePassDescriptor) hal.ComputePassEncoder {
	return nil
}

// mockHALQueue is a test double for hal.Queue following the published
// submission-index contract: Submit returns an index and PollCompleted
// advances toward it.
type mockHALQueue struct {
	submitted   [][]hal.CommandBuffer
	submitErr   error
	nextIndex   uint64
	polls       int
	pollsBefore int // polls reporting "not done" before completion
}

func (q *mockHALQueue) Submit(cmdBufs []hal.CommandBuffer) (uint64, error) {
	if q.submitErr != nil {
		return 0, q.submitErr
	}
	q.submitted = append(q.submitted, cmdBufs)
	q.nextIndex++
	return q.nextIndex, nil
}

func (q *mockHALQueue) PollCompleted() uint64 {
	q.polls++
	if q.polls <= q.pollsBefore {
		return 0
	}
	return q.nextIndex
}

func (q *mockHALQueue) WriteBuffer(_ hal.Buffer, _ uint64, _ []byte) error { return nil }
func (q *mockHALQueue) WriteTexture(_ *hal.ImageCopyTexture, _ []byte, _ *hal.ImageDataLayout, _ *hal.Extent3D) error {
	return nil
}
func (q *mockHALQueue) Present(_ hal.Surface, _ hal.SurfaceTexture, _ []image.Rectangle) error {
	return nil
}
func (q *mockHALQueue) GetTimestampPeriod() float32         { return 1 }
func (q *mockHALQueue) SupportsCommandBufferCopies() bool   { return true }
func (q *mockHALQueue) SetSwapchainSuppressed(_ bool)       {}

// mockHALDevice is a test double for hal.Device. Unused interface
// methods are no-ops.
type mockHALDevice struct {
	encoder *mockHALEncoder

	createTextureErr error
	createViewErr    error

	lastTextureDesc   *hal.TextureDescriptor
	freedCmdBufs      int
	destroyedTextures int
}

//nolint:nilnil // Mock: unused interface methods.
func (d *mockHALDevice) CreateBuffer(_ *hal.BufferDescriptor) (hal.Buffer, error) { return nil, nil }
func (d *mockHALDevice) DestroyBuffer(_ hal.Buffer)                               {}
func (d *mockHALDevice) MapBuffer(_ hal.Buffer, _, _ uint64) (hal.BufferMapping, error) {
	return hal.BufferMapping{}, nil
}
func (d *mockHALDevice) UnmapBuffer(_ hal.Buffer) error { return nil }

func (d *mockHALDevice) CreateTexture(desc *hal.TextureDescriptor) (hal.Texture, error) {
	if d.createTextureErr != nil {
		return nil, d.createTextureErr
	}
	d.lastTextureDesc = desc
	return &mockHALTexture{}, nil
}

func (d *mockHALDevice) DestroyTexture(tex hal.Texture) {
	d.destroyedTextures++
	if t, ok := tex.(*mockHALTexture); ok {
		t.destroyed = true
	}
}

func (d *mockHALDevice) CreateTextureView(_ hal.Texture, _ *hal.TextureViewDescriptor) (hal.TextureView, error) {
	if d.createViewErr != nil {
		return nil, d.createViewErr
	}
	return &mockHALTextureView{}, nil
}

func (d *mockHALDevice) DestroyTextureView(view hal.TextureView) {
	if v, ok := view.(*mockHALTextureView); ok {
		v.destroyed = true
	}
}

//nolint:nilnil // Mock: unused interface methods.
func (d *mockHALDevice) CreateSampler(_ *hal.SamplerDescriptor) (hal.Sampler, error) {
	return nil, nil
}
func (d *mockHALDevice) DestroySampler(_ hal.Sampler) {}

//nolint:nilnil // Mock: unused interface methods.
func (d *mockHALDevice) CreateBindGroupLayout(_ *hal.BindGroupLayoutDescriptor) (hal.BindGroupLayout, error) {
	return nil, nil
}
func (d *mockHALDevice) DestroyBindGroupLayout(_ hal.BindGroupLayout) {}

//nolint:nilnil // Mock: unused interface methods.
func (d *mockHALDevice) CreateBindGroup(_ *hal.BindGroupDescriptor) (hal.BindGroup, error) {
	return nil, nil
}
func (d *mockHALDevice) DestroyBindGroup(_ hal.BindGroup) {}

//nolint:nilnil // Mock: unused interface methods.
func (d *mockHALDevice) CreatePipelineLayout(_ *hal.PipelineLayoutDescriptor) (hal.PipelineLayout, error) {
	return nil, nil
}
func (d *mockHALDevice) DestroyPipelineLayout(_ hal.PipelineLayout) {}

//nolint:nilnil // Mock: unused interface methods.
func (d *mockHALDevice) CreateShaderModule(_ *hal.ShaderModuleDescriptor) (hal.ShaderModule, error) {
	return nil, nil
}
func (d *mockHALDevice) DestroyShaderModule(_ hal.ShaderModule) {}

//nolint:nilnil // Mock: unused interface methods.
func (d *mockHALDevice) CreateRenderPipeline(_ *hal.RenderPipelineDescriptor) (hal.RenderPipeline, error) {
	return nil, nil
}
func (d *mockHALDevice) DestroyRenderPipeline(_ hal.RenderPipeline) {}

//nolint:nilnil // Mock: unused interface methods.
func (d *mockHALDevice) CreateComputePipeline(_ *hal.ComputePipelineDescriptor) (hal.ComputePipeline, error) {
	return nil, nil
}
func (d *mockHALDevice) DestroyComputePipeline(_ hal.ComputePipeline) {}

//nolint:nilnil // Mock: unused interface methods.
func (d *mockHALDevice) CreateQuerySet(_ *hal.QuerySetDescriptor) (hal.QuerySet, error) {
	return nil, nil
}
func (d *mockHALDevice) DestroyQuerySet(_ hal.QuerySet) {}

func (d *mockHALDevice) CreateCommandEncoder(_ *hal.CommandEncoderDescriptor) (hal.CommandEncoder, error) {
	if d.encoder != nil {
		return d.encoder, nil
	}
	return &mockHALEncoder{cmdBuf: &mockHALCommandBuffer{}}, nil
}

//nolint:nilnil // Mock: unused interface methods.
func (d *mockHALDevice) CreateRenderBundleEncoder(_ *hal.RenderBundleEncoderDescriptor) (hal.RenderBundleEncoder, error) {
	return nil, nil
}
func (d *mockHALDevice) DestroyRenderBundle(_ hal.RenderBundle) {}

func (d *mockHALDevice) FreeCommandBuffer(_ hal.CommandBuffer) { d.freedCmdBufs++ }

//nolint:nilnil // Mock: unused interface methods.
func (d *mockHALDevice) CreateFence() (hal.Fence, error) { return nil, nil }
func (d *mockHALDevice) DestroyFence(_ hal.Fence)        {}
func (d *mockHALDevice) Wait(_ hal.Fence, _ uint64, _ time.Duration) (bool, error) {
	return true, nil
}
func (d *mockHALDevice) ResetFence(_ hal.Fence) error             { return nil }
func (d *mockHALDevice) GetFenceStatus(_ hal.Fence) (bool, error) { return true, nil }
func (d *mockHALDevice) WaitIdle() error                          { return nil }
func (d *mockHALDevice) Destroy()                                 {}

func newMockDevice() (*Device, *mockHALDevice, *mockHALQueue) {
	halDev := &mockHALDevice{}
	queue := &mockHALQueue{}
	dev, err := NewDeviceFromHAL(halDev, queue)
	if err != nil {
		panic(err)
	}
	return dev, halDev, queue
}

func TestNewDeviceFromHAL(t *testing.T) {
	if _, err := NewDeviceFromHAL(nil, &mockHALQueue{}); !errors.Is(err, ErrNilProvider) {
		t.Errorf("nil device: error = %v, want ErrNilProvider", err)
	}
	if _, err := NewDeviceFromHAL(&mockHALDevice{}, nil); !errors.Is(err, ErrNilProvider) {
		t.Errorf("nil queue: error = %v, want ErrNilProvider", err)
	}
	if _, err := NewDeviceFromHAL(&mockHALDevice{}, &mockHALQueue{}); err != nil {
		t.Errorf("valid handles: error = %v", err)
	}
}

// TestSubmitPollsSubmissionIndex: Submit waits by polling the queue's
// completed submission index, then frees the command buffer.
func TestSubmitPollsSubmissionIndex(t *testing.T) {
	dev, halDev, queue := newMockDevice()
	queue.pollsBefore = 3

	enc, err := dev.NewEncoder("frame")
	if err != nil {
		t.Fatal(err)
	}

	if err := dev.Submit(enc); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if len(queue.submitted) != 1 || len(queue.submitted[0]) != 1 {
		t.Errorf("submitted = %v, want one batch of one buffer", queue.submitted)
	}
	if queue.polls <= queue.pollsBefore {
		t.Errorf("polls = %d, want > %d: Submit returned before completion", queue.polls, queue.pollsBefore)
	}
	if halDev.freedCmdBufs != 1 {
		t.Errorf("freed command buffers = %d, want 1", halDev.freedCmdBufs)
	}
}

func TestSubmitErrors(t *testing.T) {
	t.Run("end encoding fails", func(t *testing.T) {
		dev, halDev, queue := newMockDevice()
		halDev.encoder = &mockHALEncoder{endErr: errors.New("device lost")}

		enc, err := dev.NewEncoder("frame")
		if err != nil {
			t.Fatal(err)
		}
		if err := dev.Submit(enc); err == nil {
			t.Error("Submit() succeeded although EndEncoding failed")
		}
		if len(queue.submitted) != 0 {
			t.Error("command buffer submitted after EndEncoding failure")
		}
	})

	t.Run("queue submit fails", func(t *testing.T) {
		dev, halDev, queue := newMockDevice()
		queue.submitErr = errors.New("queue full")

		enc, err := dev.NewEncoder("frame")
		if err != nil {
			t.Fatal(err)
		}
		if err := dev.Submit(enc); err == nil {
			t.Error("Submit() succeeded although queue.Submit failed")
		}
		if halDev.freedCmdBufs != 1 {
			t.Error("command buffer not freed after submit failure")
		}
	})
}

// TestCreateTextureDefaults: zero mip/sample/depth counts are clamped
// to 1 before reaching the HAL.
func TestCreateTextureDefaults(t *testing.T) {
	dev, halDev, _ := newMockDevice()

	desc := framegraph.DefaultTextureDescriptor(640, 480, gputypes.TextureFormatRGBA8Unorm)
	desc.MipLevelCount = 0
	desc.SampleCount = 0
	desc.Depth = 0

	tex, view, err := dev.CreateTexture(desc)
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	if tex == nil || view == nil {
		t.Fatal("CreateTexture() returned nil handles")
	}

	got := halDev.lastTextureDesc
	if got.MipLevelCount != 1 || got.SampleCount != 1 || got.Size.DepthOrArrayLayers != 1 {
		t.Errorf("hal descriptor = %+v, want mip/sample/depth clamped to 1", got)
	}
	if got.Size.Width != 640 || got.Size.Height != 480 {
		t.Errorf("hal size = %v, want 640x480", got.Size)
	}
}

// TestCreateTextureViewFailure: a failed view creation destroys the
// texture instead of leaking it.
func TestCreateTextureViewFailure(t *testing.T) {
	dev, halDev, _ := newMockDevice()
	halDev.createViewErr = errors.New("no memory")

	desc := framegraph.DefaultTextureDescriptor(64, 64, gputypes.TextureFormatRGBA8Unorm)
	if _, _, err := dev.CreateTexture(desc); err == nil {
		t.Fatal("CreateTexture() succeeded although view creation failed")
	}
	if halDev.destroyedTextures != 1 {
		t.Errorf("destroyed textures = %d, want 1", halDev.destroyedTextures)
	}
}

// TestEncoderTextureBarrier: layout transitions map onto HAL usage
// transitions; textures from other backends are ignored.
func TestEncoderTextureBarrier(t *testing.T) {
	halEnc := &mockHALEncoder{cmdBuf: &mockHALCommandBuffer{}}
	dev, halDev, _ := newMockDevice()
	halDev.encoder = halEnc

	enc, err := dev.NewEncoder("frame")
	if err != nil {
		t.Fatal(err)
	}

	tex := &Texture{device: dev, tex: &mockHALTexture{}}
	enc.TextureBarrier(tex, framegraph.LayoutColorAttachment, framegraph.LayoutShaderReadOnly)

	if len(halEnc.transitions) != 1 {
		t.Fatalf("transitions = %d, want 1", len(halEnc.transitions))
	}
	got := halEnc.transitions[0].Usage
	if got.OldUsage != gputypes.TextureUsageRenderAttachment || got.NewUsage != gputypes.TextureUsageTextureBinding {
		t.Errorf("usage transition = %+v", got)
	}

	// A texture the backend does not own is skipped.
	enc.TextureBarrier(foreignTexture{}, framegraph.LayoutUndefined, framegraph.LayoutGeneral)
	if len(halEnc.transitions) != 1 {
		t.Error("foreign texture produced a transition")
	}
}

type foreignTexture struct{}

func (foreignTexture) Destroy() {}

// TestEncoderBeginRenderPassEmpty: a pass whose attachments all fail to
// resolve returns nil so the graph skips it.
func TestEncoderBeginRenderPassEmpty(t *testing.T) {
	halEnc := &mockHALEncoder{cmdBuf: &mockHALCommandBuffer{}}
	dev, halDev, _ := newMockDevice()
	halDev.encoder = halEnc

	enc, err := dev.NewEncoder("frame")
	if err != nil {
		t.Fatal(err)
	}

	rp := enc.BeginRenderPass(&framegraph.RenderPassDescriptor{
		Label:            "draw",
		ColorAttachments: []framegraph.RenderPassColorAttachment{{View: nil}},
	})
	if rp != nil {
		t.Error("BeginRenderPass() returned a pass with no resolvable attachments")
	}
	if halEnc.renderDesc != nil {
		t.Error("HAL render pass begun despite empty attachments")
	}
}

func TestLayoutUsage(t *testing.T) {
	tests := []struct {
		layout framegraph.TextureLayout
		want   gputypes.TextureUsage
	}{
		{framegraph.LayoutUndefined, 0},
		{framegraph.LayoutGeneral, gputypes.TextureUsageStorageBinding},
		{framegraph.LayoutColorAttachment, gputypes.TextureUsageRenderAttachment},
		{framegraph.LayoutDepthAttachment, gputypes.TextureUsageRenderAttachment},
		{framegraph.LayoutShaderReadOnly, gputypes.TextureUsageTextureBinding},
		{framegraph.LayoutTransferSrc, gputypes.TextureUsageCopySrc},
		{framegraph.LayoutTransferDst, gputypes.TextureUsageCopyDst},
		{framegraph.LayoutPresent, gputypes.TextureUsageRenderAttachment},
	}

	for _, tt := range tests {
		t.Run(tt.layout.String(), func(t *testing.T) {
			if got := layoutUsage(tt.layout); got != tt.want {
				t.Errorf("layoutUsage(%v) = %v, want %v", tt.layout, got, tt.want)
			}
		})
	}
}
