package sprite

// posKey holds the inputs that determine a quad's corner positions.
type posKey struct {
	dst      Rect
	rotation float32
	origin   Vec2
	flip     Flip
}

// uvKey holds the inputs that determine a quad's texture coordinates.
type uvKey struct {
	src        Rect
	full       bool
	texW, texH int
}

// descriptor is the per-slot metadata kept alongside the vertex records.
// The cached keys describe what the slot's vertices currently hold, so a
// re-add with identical inputs skips recomputing that group.
type descriptor struct {
	// frame marks the slot occupied when it equals Batch.frame.
	frame uint64

	tex      Texture
	texID    uint32
	shader   Shader
	shaderID uint32
	blend    BlendMode
	depth    float32

	pos        posKey
	uv         uvKey
	color      [4]uint8
	posValid   bool
	uvValid    bool
	colorValid bool
}

// sameState reports whether two descriptors can share a draw call.
func (d *descriptor) sameState(o *descriptor) bool {
	return d.texID == o.texID && d.shaderID == o.shaderID && d.blend == o.blend
}

func shaderID(s Shader) uint32 {
	if s == nil {
		return 0
	}
	return s.ID()
}
