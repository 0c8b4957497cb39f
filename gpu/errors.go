//go:build !nogpu

package gpu

import "errors"

// Backend errors.
var (
	// ErrNilDevice is returned when a renderer is created without a device
	// or queue.
	ErrNilDevice = errors.New("sprite/gpu: nil device or queue")

	// ErrNotAllocated is returned when drawing before Allocate succeeded.
	ErrNotAllocated = errors.New("sprite/gpu: buffers not allocated")

	// ErrNoTarget is returned by Begin when no frame buffer was given and no
	// surface view is set.
	ErrNoTarget = errors.New("sprite/gpu: no render target")

	// ErrForeignTarget is returned when a target was not created by this
	// package.
	ErrForeignTarget = errors.New("sprite/gpu: target is not a FrameBuffer")

	// ErrForeignTexture is returned when a texture was not created by this
	// package.
	ErrForeignTexture = errors.New("sprite/gpu: texture is not a gpu texture")

	// ErrForeignShader is returned when a shader was not created by NewShader.
	ErrForeignShader = errors.New("sprite/gpu: shader is not a gpu shader")

	// ErrNoTexture is returned when drawing before a texture was bound.
	ErrNoTexture = errors.New("sprite/gpu: no texture bound")

	// ErrNoPass is returned when a draw call is issued outside Begin/End.
	ErrNoPass = errors.New("sprite/gpu: no render pass in progress")

	// ErrUploadTooLarge is returned when vertex data exceeds the buffer.
	ErrUploadTooLarge = errors.New("sprite/gpu: vertex upload exceeds buffer")

	// ErrNoAdapter is returned by OpenDevice when the backend exposes no
	// adapter.
	ErrNoAdapter = errors.New("sprite/gpu: no GPU adapter found")

	// ErrBackendUnavailable is returned by OpenDevice for a backend that is
	// not registered.
	ErrBackendUnavailable = errors.New("sprite/gpu: backend not available")

	// ErrInvalidSize is returned for zero or negative texture dimensions.
	ErrInvalidSize = errors.New("sprite/gpu: invalid size")

	// ErrReleased is returned when using a freed texture or frame buffer.
	ErrReleased = errors.New("sprite/gpu: resource released")
)
