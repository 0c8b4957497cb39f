package sprite

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/sprite/internal/quad"
)

// Stats describes one frame of a batch.
type Stats struct {
	// Quads is the number of quads drawn.
	Quads int

	// DrawCalls is the number of DrawQuads calls issued.
	DrawCalls int

	// ShaderChanges, BlendChanges and TextureChanges count state binds.
	ShaderChanges  int
	BlendChanges   int
	TextureChanges int

	// UploadBytes is the size of the vertex upload.
	UploadBytes int

	// Culled counts sprites skipped as entirely off screen.
	Culled int

	// DroppedInvalid counts sprites skipped because their texture was not
	// resident.
	DroppedInvalid int

	// Rejected counts sprites refused with ErrBatchFull.
	Rejected int
}

// Stats returns the statistics of the last rendered frame.
func (b *Batch) Stats() Stats { return b.last }

// RenderAll draws every sprite added since the last flush and clears the
// batch. With no sprites added it only clears. On a batch without GPU
// storage it does nothing.
//
// Sprites are drawn in ascending depth; equal depths keep buffer order.
// One draw call is issued per maximal run of sprites sharing texture,
// shader and blend mode.
func (b *Batch) RenderAll() error {
	if !b.created {
		return nil
	}
	var err error
	if b.count > 0 {
		err = b.flush()
	}
	b.last = b.stats
	b.ClearAll()
	if err != nil {
		return fmt.Errorf("render batch: %w", err)
	}
	return nil
}

// ViewProjection returns the matrix handed to shaders: an identity view
// composed with an orthographic projection whose origin is the top-left
// corner of the viewport, y pointing down.
func (b *Batch) ViewProjection() mgl32.Mat4 {
	w, h := b.Viewport()
	proj := mgl32.Ortho(0, float32(w), float32(h), 0, -1, 1)
	view := mgl32.Ident4()
	return proj.Mul4(view)
}

func (b *Batch) flush() error {
	b.sortUsed()

	n := len(b.used)
	b.staging = b.staging[:n*quad.Size]
	for i, slot := range b.used {
		b.quads[slot].Put(b.staging[i*quad.Size:])
	}
	if err := b.backend.Upload(b.staging); err != nil {
		return fmt.Errorf("upload vertices: %w", err)
	}
	b.stats.UploadBytes = len(b.staging)

	if err := b.backend.Begin(b.target); err != nil {
		return fmt.Errorf("begin frame: %w", err)
	}
	err := b.drawRuns()
	if endErr := b.backend.End(); endErr != nil && err == nil {
		err = fmt.Errorf("end frame: %w", endErr)
	}
	b.stats.Quads = n
	Logger().Debug("sprite: frame",
		"quads", n,
		"draw_calls", b.stats.DrawCalls,
		"culled", b.stats.Culled,
		"dropped", b.stats.DroppedInvalid+b.stats.Rejected)
	return err
}

// sortUsed orders the occupied slots by buffer position, then stable-sorts
// them by depth.
func (b *Batch) sortUsed() {
	slices.Sort(b.used)
	slices.SortStableFunc(b.used, func(x, y int) int {
		return cmp.Compare(b.descs[x].depth, b.descs[y].depth)
	})
}

// drawRuns walks the sorted descriptors and draws each maximal run of
// equal texture, shader and blend state with one call.
func (b *Batch) drawRuns() error {
	viewProj := b.ViewProjection()
	var prev *descriptor
	start := 0
	for i, slot := range b.used {
		d := &b.descs[slot]
		if prev != nil && prev.sameState(d) {
			continue
		}
		if prev != nil {
			if err := b.draw(start, i-start); err != nil {
				return err
			}
		}
		if err := b.bind(prev, d, viewProj); err != nil {
			return err
		}
		prev = d
		start = i
	}
	return b.draw(start, len(b.used)-start)
}

// bind applies the state of d that differs from prev.
func (b *Batch) bind(prev, d *descriptor, viewProj mgl32.Mat4) error {
	if prev == nil || prev.shaderID != d.shaderID {
		if err := b.backend.SetShader(d.shader, viewProj); err != nil {
			return fmt.Errorf("set shader %d: %w", d.shaderID, err)
		}
		b.stats.ShaderChanges++
	}
	if prev == nil || prev.blend != d.blend {
		if err := b.backend.SetBlend(d.blend); err != nil {
			return fmt.Errorf("set blend %v: %w", d.blend, err)
		}
		b.stats.BlendChanges++
	}
	if prev == nil || prev.texID != d.texID {
		if err := b.backend.SetTexture(d.tex); err != nil {
			return fmt.Errorf("set texture %d: %w", d.texID, err)
		}
		b.stats.TextureChanges++
	}
	return nil
}

func (b *Batch) draw(first, count int) error {
	if count == 0 {
		return nil
	}
	if err := b.backend.DrawQuads(first, count); err != nil {
		return fmt.Errorf("draw %d quads: %w", count, err)
	}
	b.stats.DrawCalls++
	return nil
}
