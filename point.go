package sprite

// Vec2 is a 2D point or offset in pixels.
type Vec2 struct {
	X, Y float32
}

// V is a convenience function to create a Vec2.
func V(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

// Rect is an axis-aligned rectangle in pixels with its origin at the
// top-left corner.
type Rect struct {
	X, Y, W, H float32
}

// R is a convenience function to create a Rect.
func R(x, y, w, h float32) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float32 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float32 { return r.Y + r.H }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return !(r.W > 0) || !(r.H > 0) }

// Offscreen reports whether r lies entirely outside a viewport of the
// given size anchored at (0, 0).
func (r Rect) Offscreen(width, height float32) bool {
	return r.Right() <= 0 || r.Bottom() <= 0 || r.X >= width || r.Y >= height
}
