//go:build !nogpu

package gpu

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	spriteimage "github.com/gogpu/sprite/internal/image"
)

// Texture is an RGBA8 sprite texture resident on the renderer's device.
// It implements sprite.Texture.
type Texture struct {
	r           *Renderer
	id          uint32
	width       int
	height      int
	transparent bool

	tex  hal.Texture
	view hal.TextureView
}

// NewTexture uploads img as a new texture. Pixels are stored
// non-premultiplied; transparency is detected from the alpha channel.
func (r *Renderer) NewTexture(img image.Image) (*Texture, error) {
	pix := spriteimage.ToNRGBA(img)
	w, h := pix.Rect.Dx(), pix.Rect.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("texture %dx%d: %w", w, h, ErrInvalidSize)
	}

	t := &Texture{r: r, id: r.newTextureID(), width: w, height: h}
	tex, err := r.device.CreateTexture(&hal.TextureDescriptor{
		Label:         fmt.Sprintf("sprite_texture_%d", t.id),
		Size:          hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		slogger().Error("sprite/gpu: create texture", "width", w, "height", h, "err", err)
		return nil, fmt.Errorf("create texture: %w", err)
	}
	t.tex = tex

	view, err := r.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         fmt.Sprintf("sprite_texture_%d_view", t.id),
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		r.device.DestroyTexture(tex)
		return nil, fmt.Errorf("create texture view: %w", err)
	}
	t.view = view

	if err := t.write(pix); err != nil {
		t.Free()
		return nil, err
	}
	slogger().Debug("sprite/gpu: texture created", "id", t.id, "width", w, "height", h, "transparent", t.transparent)
	return t, nil
}

// LoadTexture decodes the image file at path and uploads it.
func (r *Renderer) LoadTexture(path string) (*Texture, error) {
	img, err := spriteimage.Load(path)
	if err != nil {
		return nil, err
	}
	return r.NewTexture(img)
}

// NewTextureFromBytes decodes an encoded image held in memory, such as an
// embedded asset, and uploads it.
func (r *Renderer) NewTextureFromBytes(data []byte) (*Texture, error) {
	img, err := spriteimage.DecodeBytes(data)
	if err != nil {
		return nil, err
	}
	return r.NewTexture(img)
}

// NewLightTexture uploads the single opaque white texel light quads sample.
func (r *Renderer) NewLightTexture() (*Texture, error) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.Pix[0], img.Pix[1], img.Pix[2], img.Pix[3] = 0xff, 0xff, 0xff, 0xff
	return r.NewTexture(img)
}

// Update replaces the texture's pixels. img must have the texture's size.
func (t *Texture) Update(img image.Image) error {
	if t.tex == nil {
		return fmt.Errorf("texture %d: %w", t.id, ErrReleased)
	}
	pix := spriteimage.ToNRGBA(img)
	if pix.Rect.Dx() != t.width || pix.Rect.Dy() != t.height {
		return fmt.Errorf("update %dx%d texture with %dx%d image: %w",
			t.width, t.height, pix.Rect.Dx(), pix.Rect.Dy(), ErrInvalidSize)
	}
	return t.write(pix)
}

func (t *Texture) write(pix *image.NRGBA) error {
	w, h := uint32(t.width), uint32(t.height)
	err := t.r.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: t.tex, MipLevel: 0},
		pix.Pix,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: w * 4, RowsPerImage: h},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("write texture %d: %w", t.id, err)
	}
	t.transparent = spriteimage.HasTransparency(pix)
	return nil
}

// Free releases the texture. Sprites still referencing it are dropped by the
// batch because the texture is no longer resident. Calling Free twice is a
// no-op.
func (t *Texture) Free() {
	if t.tex == nil {
		return
	}
	t.r.forgetTexture(t.id)
	if t.view != nil {
		t.r.device.DestroyTextureView(t.view)
		t.view = nil
	}
	t.r.device.DestroyTexture(t.tex)
	t.tex = nil
}

// ID returns the texture's identity, unique within its renderer.
func (t *Texture) ID() uint32 { return t.id }

// Width returns the width in pixels.
func (t *Texture) Width() int { return t.width }

// Height returns the height in pixels.
func (t *Texture) Height() int { return t.height }

// Resident reports whether the texture has not been freed.
func (t *Texture) Resident() bool { return t.tex != nil }

// HasTransparency reports whether any pixel of the last upload had alpha
// below 255.
func (t *Texture) HasTransparency() bool { return t.transparent }

func (t *Texture) textureView() hal.TextureView { return t.view }
