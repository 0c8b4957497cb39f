// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package sprite

import "github.com/go-gl/mathgl/mgl32"

// Texture is an image a sprite samples from.
//
// ID must be stable for the lifetime of the texture and should be a small
// integer: the batch keeps per-texture bookkeeping in storage indexed by it.
type Texture interface {
	ID() uint32
	Width() int
	Height() int

	// Resident reports whether the pixels are uploaded and drawable.
	Resident() bool

	// HasTransparency reports whether any pixel has alpha below 1.
	HasTransparency() bool
}

// Shader is a compiled sprite program. A nil Shader selects the batch's
// default shader.
type Shader interface {
	ID() uint32
}

// Target is an offscreen surface a batch can render into.
type Target interface {
	Width() int
	Height() int
}

// Backend executes a flushed batch on a GPU.
//
// A frame is driven as Upload, Begin, then any number of Set* and DrawQuads
// calls, then End. State is only set when it changes from the previous run;
// SetShader is always called before the first draw of a frame.
type Backend interface {
	// Allocate creates the vertex storage for maxQuads quads, replacing any
	// previous allocation.
	Allocate(maxQuads int) error

	// Release frees the vertex storage. It must be safe to call when
	// nothing is allocated.
	Release()

	// Upload copies encoded vertices to the start of the vertex storage.
	Upload(vertices []byte) error

	// Begin starts a frame on target, or on the default surface when
	// target is nil.
	Begin(target Target) error

	// SetShader activates shader with the combined view-projection matrix.
	SetShader(shader Shader, viewProj mgl32.Mat4) error

	// SetBlend selects the blend mode for subsequent draws.
	SetBlend(mode BlendMode) error

	// SetTexture binds the texture for subsequent draws.
	SetTexture(tex Texture) error

	// DrawQuads draws count quads starting at quad index first of the
	// uploaded vertices.
	DrawQuads(first, count int) error

	// End submits the frame.
	End() error
}
