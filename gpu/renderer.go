//go:build !nogpu

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/sprite"
	"github.com/gogpu/sprite/internal/quad"
)

// Option configures a Renderer.
type Option func(*rendererOptions)

type rendererOptions struct {
	surfaceFormat gputypes.TextureFormat
	filter        gputypes.FilterMode
}

func defaultRendererOptions() rendererOptions {
	return rendererOptions{
		surfaceFormat: gputypes.TextureFormatBGRA8Unorm,
		filter:        gputypes.FilterModeNearest,
	}
}

// WithSurfaceFormat sets the color format of surface views passed to
// SetSurfaceView. Default: BGRA8Unorm.
func WithSurfaceFormat(f gputypes.TextureFormat) Option {
	return func(o *rendererOptions) {
		if f != gputypes.TextureFormatUndefined {
			o.surfaceFormat = f
		}
	}
}

// WithLinearFiltering samples textures bilinearly instead of with nearest
// filtering.
func WithLinearFiltering() Option {
	return func(o *rendererOptions) {
		o.filter = gputypes.FilterModeLinear
	}
}

// bindable is implemented by textures this package can bind.
type bindable interface {
	sprite.Texture
	textureView() hal.TextureView
}

// Renderer draws sprite batches with a HAL device. It implements
// sprite.Backend.
//
// A Renderer is not safe for concurrent use.
type Renderer struct {
	device hal.Device
	queue  hal.Queue
	opts   rendererOptions

	// Shared by every pipeline; created on first Allocate.
	uniformLayout hal.BindGroupLayout
	textureLayout hal.BindGroupLayout
	pipeLayout    hal.PipelineLayout
	sampler       hal.Sampler

	builtin   *Shader
	modules   map[uint32]hal.ShaderModule
	pipelines map[pipelineKey]hal.RenderPipeline

	// Sized by Allocate.
	vertexBuf    hal.Buffer
	indexBuf     hal.Buffer
	uniformBuf   hal.Buffer
	uniformGroup hal.BindGroup
	maxQuads     int

	viewProj      mgl32.Mat4
	viewProjValid bool

	textureGroups map[uint32]hal.BindGroup
	nextTextureID uint32

	surfaceView        hal.TextureView
	surfaceW, surfaceH int

	// Frame state between Begin and End.
	encoder      hal.CommandEncoder
	pass         hal.RenderPassEncoder
	passFormat   gputypes.TextureFormat
	shader       *Shader
	blend        sprite.BlendMode
	boundTexture uint32
	pipeDirty    bool
}

var _ sprite.Backend = (*Renderer)(nil)

// NewRenderer creates a renderer drawing with device and queue. GPU objects
// are created by Allocate, which sprite.New calls.
func NewRenderer(device hal.Device, queue hal.Queue, opts ...Option) (*Renderer, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	o := defaultRendererOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Renderer{
		device:        device,
		queue:         queue,
		opts:          o,
		builtin:       builtinShader(),
		modules:       make(map[uint32]hal.ShaderModule),
		pipelines:     make(map[pipelineKey]hal.RenderPipeline),
		textureGroups: make(map[uint32]hal.BindGroup),
	}, nil
}

// SetLogger implements the logger propagation used by sprite.New.
func (r *Renderer) SetLogger(l *slog.Logger) { SetLogger(l) }

// SetSurfaceView sets the view drawn into when a batch has no target, along
// with its size. The view is typically the current swapchain texture and is
// replaced every frame. The renderer does not take ownership.
func (r *Renderer) SetSurfaceView(view hal.TextureView, width, height int) {
	r.surfaceView = view
	r.surfaceW, r.surfaceH = width, height
}

// Allocate creates the vertex, index and uniform buffers for maxQuads quads.
// Implements sprite.Backend.
func (r *Renderer) Allocate(maxQuads int) error {
	if maxQuads <= 0 {
		return fmt.Errorf("allocate %d quads: %w", maxQuads, sprite.ErrInvalidCapacity)
	}
	if err := r.createLayouts(); err != nil {
		slogger().Error("sprite/gpu: create layouts", "err", err)
		return err
	}
	r.Release()

	if err := r.createBuffers(maxQuads); err != nil {
		r.Release()
		slogger().Error("sprite/gpu: create buffers", "capacity", maxQuads, "err", err)
		return err
	}
	r.maxQuads = maxQuads
	slogger().Debug("sprite/gpu: buffers allocated",
		"capacity", maxQuads,
		"vertex_bytes", maxQuads*quad.Size)
	return nil
}

func (r *Renderer) createBuffers(maxQuads int) error {
	vertexBuf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "sprite_vertices",
		Size:  uint64(maxQuads) * quad.Size,
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create vertex buffer: %w", err)
	}
	r.vertexBuf = vertexBuf

	indices := quad.IndexBytes(maxQuads)
	indexBuf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "sprite_indices",
		Size:  uint64(len(indices)),
		Usage: gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create index buffer: %w", err)
	}
	r.indexBuf = indexBuf
	if err := r.queue.WriteBuffer(indexBuf, 0, indices); err != nil {
		return fmt.Errorf("write index buffer: %w", err)
	}

	uniformBuf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "sprite_uniforms",
		Size:  uniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create uniform buffer: %w", err)
	}
	r.uniformBuf = uniformBuf

	group, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "sprite_uniform_bind",
		Layout: r.uniformLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: uniformSize,
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("create uniform bind group: %w", err)
	}
	r.uniformGroup = group
	return nil
}

// Release destroys the buffers created by Allocate. Pipelines, layouts and
// texture bind groups survive until Close. Implements sprite.Backend.
func (r *Renderer) Release() {
	if r.uniformGroup != nil {
		r.device.DestroyBindGroup(r.uniformGroup)
		r.uniformGroup = nil
	}
	for _, b := range []*hal.Buffer{&r.uniformBuf, &r.indexBuf, &r.vertexBuf} {
		if *b != nil {
			r.device.DestroyBuffer(*b)
			*b = nil
		}
	}
	r.maxQuads = 0
	r.viewProjValid = false
}

// Close releases every GPU object owned by the renderer. Textures and frame
// buffers created from it must be freed separately. The device is not
// destroyed.
func (r *Renderer) Close() {
	r.abortFrame()
	r.Release()
	for id, g := range r.textureGroups {
		r.device.DestroyBindGroup(g)
		delete(r.textureGroups, id)
	}
	r.destroyPipelines()
	r.destroyLayouts()
}

// MaxQuads returns the capacity of the allocated vertex buffer.
func (r *Renderer) MaxQuads() int { return r.maxQuads }

// Upload writes vertex data at the start of the vertex buffer. Implements
// sprite.Backend.
func (r *Renderer) Upload(vertices []byte) error {
	if r.vertexBuf == nil {
		return ErrNotAllocated
	}
	if len(vertices) > r.maxQuads*quad.Size {
		return fmt.Errorf("%d bytes into %d: %w", len(vertices), r.maxQuads*quad.Size, ErrUploadTooLarge)
	}
	if err := r.queue.WriteBuffer(r.vertexBuf, 0, vertices); err != nil {
		return fmt.Errorf("write vertex buffer: %w", err)
	}
	return nil
}

// Begin opens a render pass on target. A nil target draws into the surface
// view set with SetSurfaceView. Existing target contents are kept. Implements
// sprite.Backend.
func (r *Renderer) Begin(target sprite.Target) error {
	if r.vertexBuf == nil {
		return ErrNotAllocated
	}
	if r.pass != nil {
		r.abortFrame()
	}

	view, format, w, h, err := r.resolveTarget(target)
	if err != nil {
		return err
	}

	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "sprite_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("sprite_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "sprite_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    view,
			LoadOp:  gputypes.LoadOpLoad,
			StoreOp: gputypes.StoreOpStore,
		}},
	})
	rp.SetViewport(0, 0, float32(w), float32(h), 0, 1)
	rp.SetScissorRect(0, 0, uint32(w), uint32(h))
	rp.SetBindGroup(0, r.uniformGroup, nil)
	rp.SetVertexBuffer(0, r.vertexBuf, 0)
	rp.SetIndexBuffer(r.indexBuf, gputypes.IndexFormatUint32, 0)

	r.encoder = encoder
	r.pass = rp
	r.passFormat = format
	r.shader = r.builtin
	r.blend = sprite.BlendOpaque
	r.boundTexture = 0
	r.pipeDirty = true
	return nil
}

func (r *Renderer) resolveTarget(target sprite.Target) (hal.TextureView, gputypes.TextureFormat, int, int, error) {
	if target == nil {
		if r.surfaceView == nil {
			return nil, 0, 0, 0, ErrNoTarget
		}
		return r.surfaceView, r.opts.surfaceFormat, r.surfaceW, r.surfaceH, nil
	}
	fb, ok := target.(*FrameBuffer)
	if !ok {
		return nil, 0, 0, 0, fmt.Errorf("%T: %w", target, ErrForeignTarget)
	}
	if fb.view == nil {
		return nil, 0, 0, 0, fmt.Errorf("frame buffer %d: %w", fb.id, ErrReleased)
	}
	return fb.view, fb.format, fb.width, fb.height, nil
}

// SetShader selects the shader for subsequent draws and updates the
// view-projection uniform when it changed. A nil shader selects the built-in
// one. Implements sprite.Backend.
func (r *Renderer) SetShader(s sprite.Shader, viewProj mgl32.Mat4) error {
	if r.pass == nil {
		return ErrNoPass
	}
	switch sh := s.(type) {
	case nil:
		r.shader = r.builtin
	case *Shader:
		if sh == nil {
			r.shader = r.builtin
		} else {
			r.shader = sh
		}
	default:
		return fmt.Errorf("%T: %w", s, ErrForeignShader)
	}
	r.pipeDirty = true

	if r.viewProjValid && r.viewProj == viewProj {
		return nil
	}
	if err := r.queue.WriteBuffer(r.uniformBuf, 0, matrixBytes(viewProj)); err != nil {
		return fmt.Errorf("write uniforms: %w", err)
	}
	r.viewProj = viewProj
	r.viewProjValid = true
	return nil
}

// SetBlend selects the blend mode for subsequent draws. Implements
// sprite.Backend.
func (r *Renderer) SetBlend(mode sprite.BlendMode) error {
	if r.pass == nil {
		return ErrNoPass
	}
	if mode.IsAuto() {
		return fmt.Errorf("unresolved blend mode %v", mode)
	}
	r.blend = mode
	r.pipeDirty = true
	return nil
}

// SetTexture binds tex for subsequent draws. Implements sprite.Backend.
func (r *Renderer) SetTexture(tex sprite.Texture) error {
	if r.pass == nil {
		return ErrNoPass
	}
	b, ok := tex.(bindable)
	if !ok {
		return fmt.Errorf("%T: %w", tex, ErrForeignTexture)
	}
	group, err := r.textureGroup(b)
	if err != nil {
		return err
	}
	r.pass.SetBindGroup(1, group, nil)
	r.boundTexture = b.ID()
	return nil
}

func (r *Renderer) textureGroup(b bindable) (hal.BindGroup, error) {
	id := b.ID()
	if g, ok := r.textureGroups[id]; ok {
		return g, nil
	}
	view := b.textureView()
	if view == nil {
		return nil, fmt.Errorf("texture %d: %w", id, ErrReleased)
	}
	g, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  fmt.Sprintf("sprite_texture_bind_%d", id),
		Layout: r.textureLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{TextureView: view.NativeHandle()}},
			{Binding: 1, Resource: gputypes.SamplerBinding{Sampler: r.sampler.NativeHandle()}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create texture bind group %d: %w", id, err)
	}
	r.textureGroups[id] = g
	return g, nil
}

// forgetTexture drops the cached bind group of a freed texture.
func (r *Renderer) forgetTexture(id uint32) {
	if g, ok := r.textureGroups[id]; ok {
		r.device.DestroyBindGroup(g)
		delete(r.textureGroups, id)
	}
}

// DrawQuads draws count quads starting at quad first of the uploaded
// vertices with the current state. Implements sprite.Backend.
func (r *Renderer) DrawQuads(first, count int) error {
	if r.pass == nil {
		return ErrNoPass
	}
	if r.boundTexture == 0 {
		return ErrNoTexture
	}
	if first < 0 || count < 0 || first+count > r.maxQuads {
		return fmt.Errorf("draw quads [%d, %d) beyond capacity %d: %w", first, first+count, r.maxQuads, ErrUploadTooLarge)
	}
	if r.pipeDirty {
		p, err := r.pipeline(r.shader, r.blend, r.passFormat)
		if err != nil {
			return err
		}
		r.pass.SetPipeline(p)
		r.pipeDirty = false
	}
	r.pass.DrawIndexed(uint32(count*quad.IndicesPerQuad), 1, uint32(first*quad.IndicesPerQuad), 0, 0)
	return nil
}

// End closes the render pass, submits the frame and waits for the GPU.
// Implements sprite.Backend.
func (r *Renderer) End() error {
	if r.pass == nil {
		return ErrNoPass
	}
	r.pass.End()
	r.pass = nil
	encoder := r.encoder
	r.encoder = nil

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer r.device.FreeCommandBuffer(cmdBuf)
	return r.submit(cmdBuf)
}

// submit submits one command buffer and waits until the GPU is idle.
func (r *Renderer) submit(cmdBuf hal.CommandBuffer) error {
	if _, err := r.queue.Submit([]hal.CommandBuffer{cmdBuf}); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	if err := r.device.WaitIdle(); err != nil {
		return fmt.Errorf("wait for GPU: %w", err)
	}
	return nil
}

// abortFrame discards a frame left open by a failed flush.
func (r *Renderer) abortFrame() {
	if r.pass != nil {
		r.pass.End()
		r.pass = nil
	}
	if r.encoder != nil {
		r.encoder.DiscardEncoding()
		r.encoder = nil
	}
}

// newTextureID issues IDs for textures and frame buffers. IDs start at 1.
func (r *Renderer) newTextureID() uint32 {
	r.nextTextureID++
	return r.nextTextureID
}

// matrixBytes encodes m as a column-major mat4x4<f32>.
func matrixBytes(m mgl32.Mat4) []byte {
	buf := make([]byte, uniformSize)
	for i, v := range m {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}
