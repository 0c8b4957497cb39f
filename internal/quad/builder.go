package quad

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Transform holds the placement inputs for one quad. Rotation is in degrees
// and rotates clockwise on a y-down screen. The origin is relative to the
// top-left of the destination rect.
type Transform struct {
	X, Y, W, H       float32
	Rotation         float32
	OriginX, OriginY float32
	FlipH, FlipV     bool
}

// Source describes the texture region mapped onto a quad.
// When Full is set the whole texture is used and the rect is ignored.
type Source struct {
	X, Y, W, H float32
	TexW, TexH int
	Full       bool
}

// SetPositions computes the four corner positions for t.
//
// A horizontal flip swaps the left and right corners so the texture is
// mirrored about the quad's vertical center line; a vertical flip is the
// y analog. The rotation pivot is the flip-adjusted origin.
func (q *Quad) SetPositions(t Transform) {
	x0, x1 := t.X, t.X+t.W
	y0, y1 := t.Y, t.Y+t.H
	ox, oy := t.OriginX, t.OriginY
	if t.FlipH {
		x0, x1 = x1, x0
		ox = t.W - ox
	}
	if t.FlipV {
		y0, y1 = y1, y0
		oy = t.H - oy
	}

	q[0].X, q[0].Y = x0, y0
	q[1].X, q[1].Y = x1, y0
	q[2].X, q[2].Y = x1, y1
	q[3].X, q[3].Y = x0, y1

	if t.Rotation == 0 {
		return
	}

	sin, cos := math32.Sincos(mgl32.DegToRad(t.Rotation))
	px, py := t.X+ox, t.Y+oy
	for i := range q {
		dx, dy := q[i].X-px, q[i].Y-py
		q[i].X = px + dx*cos - dy*sin
		q[i].Y = py + dx*sin + dy*cos
	}
}

// SetUVs computes the normalized texture coordinates for s, following the
// same winding as SetPositions.
func (q *Quad) SetUVs(s Source) {
	var u0, v0, u1, v1 uint16
	if s.Full || s.TexW <= 0 || s.TexH <= 0 {
		u0, v0, u1, v1 = 0, 0, UVMax, UVMax
	} else {
		u0 = normalize(s.X, s.TexW)
		v0 = normalize(s.Y, s.TexH)
		u1 = normalize(s.X+s.W, s.TexW)
		v1 = normalize(s.Y+s.H, s.TexH)
	}

	q[0].U, q[0].V = u0, v0
	q[1].U, q[1].V = u1, v0
	q[2].U, q[2].V = u1, v1
	q[3].U, q[3].V = u0, v1
}

// SetColor writes the packed color to all four vertices.
func (q *Quad) SetColor(c [4]uint8) {
	for i := range q {
		q[i].R, q[i].G, q[i].B, q[i].A = c[0], c[1], c[2], c[3]
	}
}

// SetDepth writes depth to all four vertices.
func (q *Quad) SetDepth(d float32) {
	for i := range q {
		q[i].Depth = d
	}
}

// PackColor converts a normalized color channel to 8 bits, truncating.
func PackColor(c float32) uint8 {
	switch {
	case !(c > 0): // also catches NaN
		return 0
	case c >= 1:
		return 255
	}
	return uint8(c * 255)
}

// normalize maps a pixel offset to the 16-bit UV range, truncating and
// clamping to [0, UVMax].
func normalize(p float32, dim int) uint16 {
	f := float64(p) / float64(dim) * UVMax
	switch {
	case !(f > 0):
		return 0
	case f >= UVMax:
		return UVMax
	}
	return uint16(f)
}
