package sprite

import "fmt"

// BlendMode selects how a sprite is composited onto the target.
type BlendMode uint8

const (
	// BlendAuto picks BlendAlpha when the texture has transparency or the
	// sprite color is translucent, and BlendOpaque otherwise. It is the
	// zero value.
	BlendAuto BlendMode = iota

	// BlendAutoAlphaTest picks BlendAlphaTest when the texture has
	// transparency, and BlendOpaque otherwise.
	BlendAutoAlphaTest

	// BlendAlpha blends the sprite over the target using its alpha.
	BlendAlpha

	// BlendAlphaTest discards nearly transparent fragments and writes the
	// rest without blending.
	BlendAlphaTest

	// BlendOpaque writes the sprite without blending.
	BlendOpaque
)

// String returns the name of the blend mode.
func (m BlendMode) String() string {
	switch m {
	case BlendAuto:
		return "Auto"
	case BlendAutoAlphaTest:
		return "AutoAlphaTest"
	case BlendAlpha:
		return "Alpha"
	case BlendAlphaTest:
		return "AlphaTest"
	case BlendOpaque:
		return "Opaque"
	default:
		return fmt.Sprintf("BlendMode(%d)", uint8(m))
	}
}

// IsAuto reports whether the mode is resolved per sprite.
func (m BlendMode) IsAuto() bool {
	return m == BlendAuto || m == BlendAutoAlphaTest
}

// Resolve returns the concrete mode for a sprite drawn with texture tex and
// tint alpha. Concrete modes are returned unchanged.
func (m BlendMode) Resolve(tex Texture, alpha float32) BlendMode {
	if !m.IsAuto() {
		return m
	}
	switch {
	case tex.HasTransparency() && m == BlendAutoAlphaTest:
		return BlendAlphaTest
	case tex.HasTransparency():
		return BlendAlpha
	case alpha != 1 && m == BlendAuto:
		return BlendAlpha
	default:
		return BlendOpaque
	}
}

// Flip mirrors a sprite. Flags may be combined.
type Flip uint8

const (
	// FlipNone draws the sprite as is.
	FlipNone Flip = 0

	// FlipHorizontal mirrors the sprite about its vertical center line.
	FlipHorizontal Flip = 1 << 0

	// FlipVertical mirrors the sprite about its horizontal center line.
	FlipVertical Flip = 1 << 1
)

// Horizontal reports whether the horizontal flag is set.
func (f Flip) Horizontal() bool { return f&FlipHorizontal != 0 }

// Vertical reports whether the vertical flag is set.
func (f Flip) Vertical() bool { return f&FlipVertical != 0 }
