// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpu adapts framegraph to gogpu/wgpu HAL devices.
//
// It provides three pieces:
//
//   - Device: wraps hal.Device/hal.Queue, creates and destroys the
//     textures and buffers the transient pool hands out, and owns
//     command encoder submission. Device satisfies pool.Device.
//   - Encoder: implements framegraph.CommandEncoder over a HAL command
//     encoder, mapping graph layouts to hal texture usage transitions.
//   - CompileWGSL: compiles WGSL shader source to SPIR-V words via naga
//     for pass callbacks that build pipelines.
//
// The device is obtained from the host application through
// gpucontext.DeviceProvider; the provider must expose HAL access via
// HalDevice()/HalQueue(). framegraph receives the device from the host,
// it does not create one.
package wgpu
