// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package sprite

import (
	"fmt"

	"github.com/gogpu/sprite/internal/freq"
	"github.com/gogpu/sprite/internal/quad"
)

// Quad describes one sprite draw request.
type Quad struct {
	// Texture is sampled by the sprite. Required.
	Texture Texture

	// Dst is the destination rectangle in pixels.
	Dst Rect

	// Src is the texture region in pixels. Nil selects the whole texture.
	Src *Rect

	// Rotation is in degrees, clockwise on screen.
	Rotation float32

	// Origin is the rotation pivot relative to the top-left of Dst.
	// Nil selects the top-left corner.
	Origin *Vec2

	// Flip mirrors the sprite. The origin is mirrored with it.
	Flip Flip

	// Color tints the sprite. The zero value is fully transparent; Add
	// uses White.
	Color Color

	// Shader draws the sprite. Nil selects the batch's default shader.
	Shader Shader

	// Blend selects compositing. The zero value is BlendAuto.
	Blend BlendMode

	// Depth orders sprites within a frame: higher depths draw later, on
	// top. Sprites with equal depth keep their buffer order.
	Depth float32
}

// Batch accumulates sprites for a frame and flushes them in as few draw
// calls as possible.
//
// A Batch is not safe for concurrent use.
type Batch struct {
	backend       Backend
	config        Config
	defaultShader Shader

	created  bool
	maxQuads int
	count    int
	frame    uint64

	quads []quad.Quad
	descs []descriptor
	index *freq.Index

	// used lists the occupied slots this frame; reordered during flush.
	used     []int
	staging  []byte
	occupied func(slot int) bool

	target Target

	stats      Stats
	last       Stats
	warnedFull bool
}

// New creates a batch that draws through backend and allocates storage for
// the configured capacity.
//
// If the backend cannot allocate, New returns the batch together with an
// error wrapping ErrResourceCreation. The batch stays usable but degraded:
// Add returns ErrNotCreated and RenderAll does nothing until a later Create
// succeeds.
func New(backend Backend, opts ...Option) (*Batch, error) {
	if backend == nil {
		return nil, ErrNilBackend
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.config.Validate(); err != nil {
		return nil, err
	}

	b := &Batch{
		backend:       backend,
		config:        o.config,
		defaultShader: o.defaultShader,
		frame:         1,
	}
	b.occupied = b.slotOccupied
	track(b)

	if err := b.Create(o.config.Capacity); err != nil {
		return b, err
	}
	return b, nil
}

// Create (re)allocates the batch for capacity quads. A created batch
// releases its old storage first; sprites added but not yet rendered are
// discarded.
func (b *Batch) Create(capacity Capacity) error {
	if capacity <= 0 {
		return fmt.Errorf("create batch: capacity %d: %w", int(capacity), ErrInvalidCapacity)
	}
	if b.created {
		b.Free()
	}

	n := int(capacity)
	b.maxQuads = n
	b.quads = make([]quad.Quad, n)
	b.descs = make([]descriptor, n)
	b.index = freq.New(n, b.config.Reserve)
	b.used = make([]int, 0, n)
	b.staging = make([]byte, 0, n*quad.Size)
	b.resetFrame()

	if err := b.backend.Allocate(n); err != nil {
		Logger().Error("sprite: allocate batch", "capacity", n, "err", err)
		return fmt.Errorf("%w: allocate %d quads: %w", ErrResourceCreation, n, err)
	}
	b.created = true
	Logger().Debug("sprite: batch created", "capacity", n, "reserve", b.config.Reserve)
	return nil
}

// Free releases the batch's GPU storage. Calling Free more than once, or
// on a batch whose allocation failed, is a no-op.
func (b *Batch) Free() {
	if !b.created {
		return
	}
	b.backend.Release()
	b.created = false
	b.index.Reset()
	b.resetFrame()
}

// Created reports whether the batch holds GPU storage.
func (b *Batch) Created() bool { return b.created }

// MaxQuads returns the batch capacity.
func (b *Batch) MaxQuads() int { return b.maxQuads }

// Count returns the number of quads added since the last flush or clear.
func (b *Batch) Count() int { return b.count }

// SetTarget directs subsequent frames into t. Nil selects the default
// surface. While a target is set its size replaces the configured viewport.
func (b *Batch) SetTarget(t Target) { b.target = t }

// Target returns the current render target, or nil for the default surface.
func (b *Batch) Target() Target { return b.target }

// SetViewport sets the size of the default surface.
func (b *Batch) SetViewport(width, height int) {
	b.config.ViewportWidth = width
	b.config.ViewportHeight = height
}

// Viewport returns the size used for culling and projection.
func (b *Batch) Viewport() (width, height int) {
	if b.target != nil {
		return b.target.Width(), b.target.Height()
	}
	return b.config.ViewportWidth, b.config.ViewportHeight
}

// Add draws the whole texture into dst with no rotation, a white tint, the
// default shader, BlendAuto and depth 0.
func (b *Batch) Add(tex Texture, dst Rect) error {
	return b.AddQuad(Quad{Texture: tex, Dst: dst, Color: White})
}

// AddQuad adds one sprite to the current frame.
//
// Sprites whose texture is not resident, or whose destination lies
// entirely outside the viewport, are skipped and nil is returned. When the
// batch is full the sprite is dropped and ErrBatchFull is returned.
func (b *Batch) AddQuad(q Quad) error {
	if !b.created {
		return ErrNotCreated
	}
	if q.Texture == nil {
		return ErrNilTexture
	}
	if !q.Texture.Resident() {
		b.stats.DroppedInvalid++
		Logger().Debug("sprite: texture not resident", "texture", q.Texture.ID())
		return nil
	}
	vw, vh := b.Viewport()
	if q.Dst.Offscreen(float32(vw), float32(vh)) {
		b.stats.Culled++
		return nil
	}
	if b.count >= b.maxQuads {
		b.stats.Rejected++
		if !b.warnedFull {
			b.warnedFull = true
			Logger().Warn("sprite: batch full, dropping sprites", "capacity", b.maxQuads)
		}
		return ErrBatchFull
	}

	tex := q.Texture
	id := tex.ID()
	slot := b.index.Assign(id, b.occupied)
	b.used = append(b.used, slot)
	b.count++

	d := &b.descs[slot]
	d.frame = b.frame
	d.tex = tex
	d.texID = id
	d.shader = q.Shader
	if d.shader == nil {
		d.shader = b.defaultShader
	}
	d.shaderID = shaderID(d.shader)
	d.blend = q.Blend.Resolve(tex, q.Color.A)
	d.depth = q.Depth

	v := &b.quads[slot]
	b.updatePositions(d, v, &q)
	b.updateUVs(d, v, &q)
	if c := q.Color.Pack(); !d.colorValid || d.color != c {
		v.SetColor(c)
		d.color = c
		d.colorValid = true
	}
	v.SetDepth(q.Depth)
	return nil
}

func (b *Batch) updatePositions(d *descriptor, v *quad.Quad, q *Quad) {
	key := posKey{dst: q.Dst, rotation: q.Rotation, flip: q.Flip}
	if q.Origin != nil {
		key.origin = *q.Origin
	}
	if d.posValid && d.pos == key {
		return
	}
	v.SetPositions(quad.Transform{
		X: key.dst.X, Y: key.dst.Y, W: key.dst.W, H: key.dst.H,
		Rotation: key.rotation,
		OriginX:  key.origin.X,
		OriginY:  key.origin.Y,
		FlipH:    key.flip.Horizontal(),
		FlipV:    key.flip.Vertical(),
	})
	d.pos = key
	d.posValid = true
}

func (b *Batch) updateUVs(d *descriptor, v *quad.Quad, q *Quad) {
	key := uvKey{full: q.Src == nil, texW: q.Texture.Width(), texH: q.Texture.Height()}
	if q.Src != nil {
		key.src = *q.Src
	}
	if d.uvValid && d.uv == key {
		return
	}
	v.SetUVs(quad.Source{
		X: key.src.X, Y: key.src.Y, W: key.src.W, H: key.src.H,
		TexW: key.texW,
		TexH: key.texH,
		Full: key.full,
	})
	d.uv = key
	d.uvValid = true
}

// ClearAll discards the sprites added this frame and rolls the texture
// frequency bookkeeping over to the next frame.
func (b *Batch) ClearAll() {
	if b.index != nil {
		b.index.Clear()
	}
	b.resetFrame()
}

func (b *Batch) resetFrame() {
	b.frame++
	b.count = 0
	b.used = b.used[:0]
	b.stats = Stats{}
	b.warnedFull = false
}

func (b *Batch) slotOccupied(slot int) bool {
	return b.descs[slot].frame == b.frame
}
