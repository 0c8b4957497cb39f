//go:build !nogpu

package gpu

import (
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/gogpu/sprite"
	spriteimage "github.com/gogpu/sprite/internal/image"
)

func TestNewTexture(t *testing.T) {
	r := newTestRenderer(t, 0)

	opaque := mustTexture(t, r, opaqueRed)
	if opaque.Width() != 8 || opaque.Height() != 8 {
		t.Errorf("size = %dx%d, want 8x8", opaque.Width(), opaque.Height())
	}
	if !opaque.Resident() {
		t.Error("new texture should be resident")
	}
	if opaque.HasTransparency() {
		t.Error("opaque image reported transparency")
	}

	translucent := mustTexture(t, r, color.NRGBA{G: 255, A: 128})
	if !translucent.HasTransparency() {
		t.Error("translucent image reported no transparency")
	}
	if translucent.ID() == opaque.ID() || opaque.ID() == 0 {
		t.Errorf("texture IDs %d and %d must be distinct and non-zero", opaque.ID(), translucent.ID())
	}
}

func TestNewTextureEmpty(t *testing.T) {
	r := newTestRenderer(t, 0)
	if _, err := r.NewTexture(image.NewNRGBA(image.Rect(0, 0, 0, 4))); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("NewTexture(empty) = %v, want ErrInvalidSize", err)
	}
}

func TestTextureUpdate(t *testing.T) {
	r := newTestRenderer(t, 0)
	tex := mustTexture(t, r, opaqueRed)

	if err := tex.Update(solidImage(8, 8, color.NRGBA{A: 0})); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !tex.HasTransparency() {
		t.Error("transparency not recomputed on Update")
	}
	if err := tex.Update(solidImage(4, 4, opaqueRed)); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Update with other size = %v, want ErrInvalidSize", err)
	}

	tex.Free()
	if err := tex.Update(solidImage(8, 8, opaqueRed)); !errors.Is(err, ErrReleased) {
		t.Errorf("Update after Free = %v, want ErrReleased", err)
	}
}

func TestTextureFreeForgetsBindGroup(t *testing.T) {
	r := newTestRenderer(t, 4)
	fb := mustFrameBuffer(t, r, 8, 8)
	tex := mustTexture(t, r, opaqueRed)

	if err := r.Begin(fb); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := r.SetTexture(tex); err != nil {
		t.Fatalf("SetTexture: %v", err)
	}
	if err := r.SetTexture(tex); err != nil {
		t.Fatalf("SetTexture again: %v", err)
	}
	if err := r.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
	if len(r.textureGroups) != 1 {
		t.Fatalf("bind groups = %d, want 1", len(r.textureGroups))
	}

	tex.Free()
	tex.Free()
	if tex.Resident() {
		t.Error("freed texture still resident")
	}
	if len(r.textureGroups) != 0 {
		t.Errorf("bind groups after Free = %d, want 0", len(r.textureGroups))
	}
}

func TestLoadTexture(t *testing.T) {
	r := newTestRenderer(t, 0)

	path := filepath.Join(t.TempDir(), "sprite.png")
	if err := spriteimage.SavePNG(path, solidImage(3, 5, opaqueRed)); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}
	tex, err := r.LoadTexture(path)
	if err != nil {
		t.Fatalf("LoadTexture: %v", err)
	}
	defer tex.Free()
	if tex.Width() != 3 || tex.Height() != 5 {
		t.Errorf("size = %dx%d, want 3x5", tex.Width(), tex.Height())
	}

	if _, err := r.LoadTexture(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("LoadTexture(missing) should fail")
	}
}

func TestFrameBuffer(t *testing.T) {
	r := newTestRenderer(t, 0)

	if _, err := r.NewFrameBuffer(0, 8); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("NewFrameBuffer(0, 8) = %v, want ErrInvalidSize", err)
	}

	fb := mustFrameBuffer(t, r, 70, 3)
	if !fb.HasTransparency() || !fb.Resident() {
		t.Error("frame buffer should be resident and report transparency")
	}
	if err := fb.Clear(sprite.Black); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	img, err := fb.Pixels()
	if err != nil {
		t.Fatalf("Pixels: %v", err)
	}
	if got := img.Bounds(); got != image.Rect(0, 0, 70, 3) {
		t.Errorf("bounds = %v, want 70x3", got)
	}
	if img.ColorModel() != color.NRGBAModel {
		t.Error("read-back should use the straight-alpha NRGBA model")
	}
	if len(img.Pix) != 70*3*4 {
		t.Errorf("pixel bytes = %d, want %d", len(img.Pix), 70*3*4)
	}

	fb.Free()
	if _, err := fb.Pixels(); !errors.Is(err, ErrReleased) {
		t.Errorf("Pixels after Free = %v, want ErrReleased", err)
	}
	if err := fb.Clear(sprite.White); !errors.Is(err, ErrReleased) {
		t.Errorf("Clear after Free = %v, want ErrReleased", err)
	}
}

func TestFrameBufferAsSprite(t *testing.T) {
	r := newTestRenderer(t, 0)
	src := mustFrameBuffer(t, r, 16, 16)
	dst := mustFrameBuffer(t, r, 32, 32)

	b, err := sprite.New(r, sprite.WithCapacity(sprite.Tiny))
	if err != nil {
		t.Fatalf("sprite.New: %v", err)
	}
	defer b.Free()
	b.SetTarget(dst)

	if err := b.Add(src, sprite.R(0, 0, 16, 16)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := b.RenderAll(); err != nil {
		t.Fatalf("RenderAll: %v", err)
	}
	if st := b.Stats(); st.DrawCalls != 1 {
		t.Errorf("draw calls = %d, want 1", st.DrawCalls)
	}
	if _, ok := r.textureGroups[src.ID()]; !ok {
		t.Error("frame buffer was not bound as a texture")
	}
}
