//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/sprite"
	"github.com/gogpu/sprite/internal/quad"
)

// uniformSize is the byte size of the uniform buffer: one mat4x4<f32>.
const uniformSize = 64

// pipelineKey identifies one render pipeline variant.
type pipelineKey struct {
	shader uint32
	blend  sprite.BlendMode
	format gputypes.TextureFormat
}

// vertexLayout returns the vertex buffer layout matching VertexInput in
// sprite.wgsl:
//
//	location 0: position (vec2<f32>)
//	location 1: uv       (unorm16x2)
//	location 2: color    (unorm8x4)
//	location 3: depth    (f32)
func vertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: quad.VertexSize,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
				{Format: gputypes.VertexFormatUnorm16x2, Offset: 8, ShaderLocation: 1},
				{Format: gputypes.VertexFormatUnorm8x4, Offset: 12, ShaderLocation: 2},
				{Format: gputypes.VertexFormatFloat32, Offset: 16, ShaderLocation: 3},
			},
		},
	}
}

// blendState returns the color blend state and fragment entry point of s for
// a resolved blend mode. A nil blend state writes the fragment unblended.
func blendState(mode sprite.BlendMode, s *Shader) (*gputypes.BlendState, string) {
	switch mode {
	case sprite.BlendAlpha:
		b := gputypes.BlendStateAlpha()
		return &b, s.fragment
	case sprite.BlendAlphaTest:
		return nil, s.alphaTest
	default:
		return nil, s.fragment
	}
}

// createLayouts creates the bind group layouts, pipeline layout and sampler
// shared by every pipeline. Safe to call repeatedly.
func (r *Renderer) createLayouts() error {
	if r.pipeLayout != nil {
		return nil
	}

	// Group 0: view-projection uniform (vertex).
	uniformLayout, err := r.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "sprite_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create uniform layout: %w", err)
	}
	r.uniformLayout = uniformLayout

	// Group 1: sprite texture + sampler (fragment).
	textureLayout, err := r.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "sprite_texture_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		r.destroyLayouts()
		return fmt.Errorf("create texture layout: %w", err)
	}
	r.textureLayout = textureLayout

	sampler, err := r.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "sprite_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    r.opts.filter,
		MinFilter:    r.opts.filter,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		r.destroyLayouts()
		return fmt.Errorf("create sampler: %w", err)
	}
	r.sampler = sampler

	pipeLayout, err := r.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "sprite_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{r.uniformLayout, r.textureLayout},
	})
	if err != nil {
		r.destroyLayouts()
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	r.pipeLayout = pipeLayout
	return nil
}

// shaderModule returns the compiled module for s, creating it on first use.
func (r *Renderer) shaderModule(s *Shader) (hal.ShaderModule, error) {
	if m, ok := r.modules[s.id]; ok {
		return m, nil
	}
	m, err := r.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  s.label,
		Source: s.source(),
	})
	if err != nil {
		return nil, fmt.Errorf("create shader module %q: %w", s.label, err)
	}
	r.modules[s.id] = m
	return m, nil
}

// pipeline returns the render pipeline for shader s drawing with mode into
// a target of the given format, creating it on first use.
func (r *Renderer) pipeline(s *Shader, mode sprite.BlendMode, format gputypes.TextureFormat) (hal.RenderPipeline, error) {
	key := pipelineKey{shader: s.id, blend: mode, format: format}
	if p, ok := r.pipelines[key]; ok {
		return p, nil
	}

	module, err := r.shaderModule(s)
	if err != nil {
		return nil, err
	}
	blend, entry := blendState(mode, s)
	p, err := r.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("sprite_pipeline_%s_%s", s.label, mode),
		Layout: r.pipeLayout,
		Vertex: hal.VertexState{
			Module:     module,
			EntryPoint: s.vertex,
			Buffers:    vertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     module,
			EntryPoint: entry,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    format,
					Blend:     blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create pipeline %s/%s: %w", s.label, mode, err)
	}
	r.pipelines[key] = p
	slogger().Debug("sprite/gpu: pipeline created", "shader", s.label, "blend", mode.String(), "format", format)
	return p, nil
}

// destroyPipelines releases pipelines and shader modules.
func (r *Renderer) destroyPipelines() {
	for k, p := range r.pipelines {
		r.device.DestroyRenderPipeline(p)
		delete(r.pipelines, k)
	}
	for k, m := range r.modules {
		r.device.DestroyShaderModule(m)
		delete(r.modules, k)
	}
}

// destroyLayouts releases layouts and the sampler in reverse creation order.
func (r *Renderer) destroyLayouts() {
	if r.pipeLayout != nil {
		r.device.DestroyPipelineLayout(r.pipeLayout)
		r.pipeLayout = nil
	}
	if r.sampler != nil {
		r.device.DestroySampler(r.sampler)
		r.sampler = nil
	}
	if r.textureLayout != nil {
		r.device.DestroyBindGroupLayout(r.textureLayout)
		r.textureLayout = nil
	}
	if r.uniformLayout != nil {
		r.device.DestroyBindGroupLayout(r.uniformLayout)
		r.uniformLayout = nil
	}
}
