// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package lights draws 2D point lights through a sprite batch.
//
// Each light becomes one quad covering its radius. The quad is drawn with a
// light shader that computes a radial falloff from the quad's UVs, so the
// texture only needs to be a resident white texel (see gpu.Renderer.NewLightTexture).
//
//	set, err := lights.New(tex, shader)
//	l, err := set.Add(120, 80, 64, 0.8, sprite.RGB(1, 0.9, 0.6))
//	...
//	set.Render(batch)
//	batch.RenderAll()
package lights

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/gogpu/sprite"
)

// DefaultMax is the default limit on live point lights.
const DefaultMax = 72

// DefaultDepth places lights above ordinary sprites.
const DefaultDepth = 1 << 20

var (
	// ErrTooManyLights is returned by Add when the set is full.
	ErrTooManyLights = errors.New("lights: too many point lights")

	// ErrNoTexture is returned by New without a texture.
	ErrNoTexture = errors.New("lights: nil texture")
)

// PointLight is a circular light centered at (X, Y).
type PointLight struct {
	X, Y float32

	// Radius is the distance in pixels at which the light fades out.
	Radius float32

	// Intensity scales the light's opacity. Values are clamped to [0, 1].
	Intensity float32

	// Color is the light color. Its alpha is multiplied by Intensity.
	Color sprite.Color
}

// Rect returns the destination rectangle covered by the light.
func (p *PointLight) Rect() sprite.Rect {
	return sprite.R(p.X-p.Radius, p.Y-p.Radius, 2*p.Radius, 2*p.Radius)
}

// Visible reports whether the light contributes anything.
func (p *PointLight) Visible() bool {
	return p.Radius > 0 && p.Intensity > 0 && p.Color.A > 0
}

func (p *PointLight) tint() sprite.Color {
	c := p.Color
	c.A *= min(max(p.Intensity, 0), 1)
	return c
}

// Set holds the live point lights. It is not safe for concurrent use.
type Set struct {
	texture sprite.Texture
	shader  sprite.Shader
	max     int
	depth   float32

	lights []*PointLight
}

// Option configures a Set.
type Option func(*Set)

// WithMax sets the maximum number of live lights.
func WithMax(n int) Option {
	return func(s *Set) { s.max = n }
}

// WithDepth sets the depth light quads are drawn at.
func WithDepth(d float32) Option {
	return func(s *Set) { s.depth = d }
}

// New creates an empty light set drawing with texture and shader. A nil
// shader draws with the batch's default shader, which renders the texture
// unchanged instead of a falloff.
func New(texture sprite.Texture, shader sprite.Shader, opts ...Option) (*Set, error) {
	if texture == nil {
		return nil, ErrNoTexture
	}
	s := &Set{
		texture: texture,
		shader:  shader,
		max:     DefaultMax,
		depth:   DefaultDepth,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.max <= 0 {
		return nil, fmt.Errorf("lights: invalid maximum %d", s.max)
	}
	return s, nil
}

// Add creates a light and returns it. The returned pointer stays valid until
// the light is removed; its fields may be changed between frames.
func (s *Set) Add(x, y, radius, intensity float32, c sprite.Color) (*PointLight, error) {
	if len(s.lights) >= s.max {
		return nil, fmt.Errorf("%w (max %d)", ErrTooManyLights, s.max)
	}
	p := &PointLight{X: x, Y: y, Radius: radius, Intensity: intensity, Color: c}
	s.lights = append(s.lights, p)
	return p, nil
}

// Remove deletes a light. It reports whether the light was in the set.
func (s *Set) Remove(p *PointLight) bool {
	i := slices.Index(s.lights, p)
	if i < 0 {
		return false
	}
	s.lights = slices.Delete(s.lights, i, i+1)
	return true
}

// Clear removes every light.
func (s *Set) Clear() {
	clear(s.lights)
	s.lights = s.lights[:0]
}

// Len returns the number of live lights.
func (s *Set) Len() int { return len(s.lights) }

// All iterates over the live lights in creation order.
func (s *Set) All() iter.Seq[*PointLight] {
	return slices.Values(s.lights)
}

// Render adds one quad per visible light to b and returns how many were
// added. Lights outside the viewport are culled by the batch. It stops at
// the first error, such as sprite.ErrBatchFull.
func (s *Set) Render(b *sprite.Batch) (int, error) {
	n := 0
	for _, p := range s.lights {
		if !p.Visible() {
			continue
		}
		err := b.AddQuad(sprite.Quad{
			Texture: s.texture,
			Dst:     p.Rect(),
			Color:   p.tint(),
			Shader:  s.shader,
			Blend:   sprite.BlendAlpha,
			Depth:   s.depth,
		})
		if err != nil {
			return n, fmt.Errorf("lights: %w", err)
		}
		n++
	}
	sprite.Logger().Debug("sprite/lights: rendered", "lights", n, "live", len(s.lights))
	return n, nil
}
