// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package sprite batches textured, colored 2D quads into as few GPU draw
// calls as possible.
//
// # Overview
//
// A Batch accumulates sprites for one frame, then sorts them by depth and
// flushes them through a Backend, issuing one draw call for every maximal
// run of sprites that share a texture, shader and blend mode. The gpu
// sub-package provides the Backend for gogpu/wgpu.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/sprite"
//	    "github.com/gogpu/sprite/gpu"
//	)
//
//	r := gpu.NewRenderer(device, queue)
//	b, err := sprite.New(r, sprite.WithCapacity(sprite.Medium), sprite.WithViewport(800, 600))
//	if err != nil {
//	    return err
//	}
//	defer b.Free()
//
//	tex, _ := r.LoadTexture("player.png")
//	b.Add(tex, sprite.R(10, 20, 32, 32))
//	b.RenderAll()
//
// # Coordinate System
//
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
//   - Rotation in degrees, positive is clockwise on screen
//
// # Concurrency
//
// A Batch is not safe for concurrent use. All calls must come from the
// goroutine that owns the frame.
package sprite

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
