// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpu implements [sprite.Backend] on top of the gogpu/wgpu HAL.
//
// A [Renderer] owns one vertex buffer sized to the batch capacity, a static
// index buffer describing two triangles per quad, and a uniform buffer holding
// the view-projection matrix. Render pipelines are created lazily, one per
// (shader, blend mode, target format) combination, and texture bind groups
// are cached per texture ID.
//
// Textures are uploaded from decoded images with [Renderer.NewTexture],
// [Renderer.LoadTexture] or [Renderer.NewTextureFromBytes]. Point lights
// (package lights) draw with [NewLightShader] over [Renderer.NewLightTexture].
// Offscreen rendering goes through a [FrameBuffer],
// which can be read back with [FrameBuffer.Pixels] and drawn as a sprite
// itself.
//
// Logging follows [sprite.SetLogger]: the logger reaches this package
// through every batch drawing with a Renderer, whichever is created first.
// Code that logs before any batch exists, such as [OpenDevice], needs
// [SetLogger] called directly.
//
// Basic usage:
//
//	dev, err := gpu.OpenDevice(gputypes.BackendVulkan)
//	if err != nil {
//	    return err
//	}
//	defer dev.Close()
//
//	r, err := gpu.NewRenderer(dev.Device, dev.Queue)
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//	b, err := sprite.New(r, sprite.WithCapacity(sprite.Medium))
package gpu
