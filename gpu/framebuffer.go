//go:build !nogpu

package gpu

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/sprite"
	spriteimage "github.com/gogpu/sprite/internal/image"
)

// copyPitchAlignment is the required BytesPerRow alignment of
// texture-to-buffer copies.
const copyPitchAlignment = 256

// FrameBuffer is an offscreen RGBA8 render target. It implements both
// sprite.Target and sprite.Texture, so a batch can render into it and another
// batch can draw the result as a sprite.
type FrameBuffer struct {
	r      *Renderer
	id     uint32
	width  int
	height int
	format gputypes.TextureFormat

	tex  hal.Texture
	view hal.TextureView
}

var (
	_ sprite.Target  = (*FrameBuffer)(nil)
	_ sprite.Texture = (*FrameBuffer)(nil)
)

// NewFrameBuffer creates a width x height render target. Its contents are
// undefined until the first Clear.
func (r *Renderer) NewFrameBuffer(width, height int) (*FrameBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("frame buffer %dx%d: %w", width, height, ErrInvalidSize)
	}
	fb := &FrameBuffer{
		r:      r,
		id:     r.newTextureID(),
		width:  width,
		height: height,
		format: gputypes.TextureFormatRGBA8Unorm,
	}

	tex, err := r.device.CreateTexture(&hal.TextureDescriptor{
		Label:         fmt.Sprintf("sprite_framebuffer_%d", fb.id),
		Size:          hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        fb.format,
		Usage: gputypes.TextureUsageRenderAttachment |
			gputypes.TextureUsageTextureBinding |
			gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("create frame buffer texture: %w", err)
	}
	fb.tex = tex

	view, err := r.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         fmt.Sprintf("sprite_framebuffer_%d_view", fb.id),
		Format:        fb.format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		r.device.DestroyTexture(tex)
		return nil, fmt.Errorf("create frame buffer view: %w", err)
	}
	fb.view = view
	slogger().Debug("sprite/gpu: frame buffer created", "id", fb.id, "width", width, "height", height)
	return fb, nil
}

// Clear fills the frame buffer with c and waits for the GPU.
func (fb *FrameBuffer) Clear(c sprite.Color) error {
	if fb.view == nil {
		return fmt.Errorf("frame buffer %d: %w", fb.id, ErrReleased)
	}
	encoder, err := fb.r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "sprite_clear_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("sprite_clear"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "sprite_clear_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    fb.view,
			LoadOp:  gputypes.LoadOpClear,
			StoreOp: gputypes.StoreOpStore,
			ClearValue: gputypes.Color{
				R: float64(c.R), G: float64(c.G), B: float64(c.B), A: float64(c.A),
			},
		}},
	})
	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer fb.r.device.FreeCommandBuffer(cmdBuf)
	return fb.r.submit(cmdBuf)
}

// Pixels copies the frame buffer to a staging buffer and returns it as an
// NRGBA image. It blocks until the copy completes.
//
// Sprites are blended with straight alpha, so the target holds
// non-premultiplied colors.
func (fb *FrameBuffer) Pixels() (*image.NRGBA, error) {
	if fb.tex == nil {
		return nil, fmt.Errorf("frame buffer %d: %w", fb.id, ErrReleased)
	}
	r := fb.r
	w, h := uint32(fb.width), uint32(fb.height)

	bytesPerRow := w * 4
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(h)

	staging, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "sprite_readback",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create staging buffer: %w", err)
	}
	defer r.device.DestroyBuffer(staging)

	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "sprite_readback_encoder",
	})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("sprite_readback"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: fb.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(fb.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: fb.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	// Back to RenderAttachment so the next batch pass starts from the
	// expected state.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: fb.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	defer r.device.FreeCommandBuffer(cmdBuf)
	if err := r.submit(cmdBuf); err != nil {
		return nil, err
	}

	mapping, err := r.device.MapBuffer(staging, 0, stagingSize)
	if err != nil {
		return nil, fmt.Errorf("map staging buffer: %w", err)
	}
	defer func() { _ = r.device.UnmapBuffer(staging) }()

	src := unsafe.Slice((*byte)(mapping.Ptr), stagingSize)
	img := image.NewNRGBA(image.Rect(0, 0, fb.width, fb.height))
	spriteimage.Unpad(img.Pix, src, fb.height, int(bytesPerRow), int(alignedBytesPerRow))
	return img, nil
}

// Free releases the frame buffer. Calling Free twice is a no-op.
func (fb *FrameBuffer) Free() {
	if fb.tex == nil {
		return
	}
	fb.r.forgetTexture(fb.id)
	if fb.view != nil {
		fb.r.device.DestroyTextureView(fb.view)
		fb.view = nil
	}
	fb.r.device.DestroyTexture(fb.tex)
	fb.tex = nil
}

// ID returns the frame buffer's texture identity.
func (fb *FrameBuffer) ID() uint32 { return fb.id }

// Width returns the width in pixels.
func (fb *FrameBuffer) Width() int { return fb.width }

// Height returns the height in pixels.
func (fb *FrameBuffer) Height() int { return fb.height }

// Resident reports whether the frame buffer has not been freed.
func (fb *FrameBuffer) Resident() bool { return fb.tex != nil }

// HasTransparency always reports true: rendered contents are not inspected.
func (fb *FrameBuffer) HasTransparency() bool { return true }

func (fb *FrameBuffer) textureView() hal.TextureView { return fb.view }
