package sprite

import "errors"

// Batch errors.
var (
	// ErrBatchFull is returned by Add when the batch already holds its
	// maximum number of quads. The sprite is dropped; quads added earlier
	// are kept.
	ErrBatchFull = errors.New("sprite: batch full")

	// ErrNotCreated is returned when the batch has no GPU storage, either
	// because it was freed or because allocation failed.
	ErrNotCreated = errors.New("sprite: batch not created")

	// ErrResourceCreation is returned when the backend cannot allocate
	// the batch's GPU resources.
	ErrResourceCreation = errors.New("sprite: GPU resource creation failed")

	// ErrInvalidCapacity is returned for a non-positive capacity.
	ErrInvalidCapacity = errors.New("sprite: invalid capacity")

	// ErrNilBackend is returned by New when no backend is given.
	ErrNilBackend = errors.New("sprite: nil backend")

	// ErrNilTexture is returned by Add for a nil texture.
	ErrNilTexture = errors.New("sprite: nil texture")
)
