//go:build !nogpu

package gpu

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"sync/atomic"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// Built-in sprite shader source.
//
//go:embed shaders/sprite.wgsl
var spriteShaderSource string

// Point light shader source.
//
//go:embed shaders/light.wgsl
var lightShaderSource string

// Entry points of the built-in shader. Custom shaders use the same names
// unless WithEntryPoints says otherwise.
const (
	vertexEntry    = "vs_main"
	fragmentEntry  = "fs_main"
	alphaTestEntry = "fs_alpha_test"
)

// shaderIDs issues shader IDs. ID 0 is the renderer's built-in shader.
var shaderIDs atomic.Uint32

// Shader is a sprite shader program. It must declare the same vertex inputs
// and bind groups as the built-in shader: group 0 binding 0 holds the
// view-projection matrix, group 1 holds the texture (binding 0) and sampler
// (binding 1).
//
// A Shader is device independent; each Renderer compiles it into a module on
// first use.
type Shader struct {
	id    uint32
	label string
	wgsl  string
	spirv []uint32

	vertex, fragment, alphaTest string
}

// ShaderOption configures a Shader.
type ShaderOption func(*Shader)

// WithSPIRV submits the naga-compiled SPIR-V to the device instead of the
// WGSL source.
func WithSPIRV() ShaderOption {
	return func(s *Shader) {
		s.wgsl = ""
	}
}

// WithEntryPoints overrides the vertex, fragment and alpha-test entry point
// names.
func WithEntryPoints(vertex, fragment, alphaTest string) ShaderOption {
	return func(s *Shader) {
		s.vertex = vertex
		s.fragment = fragment
		s.alphaTest = alphaTest
	}
}

// NewShader validates WGSL source by compiling it with naga and returns a
// shader with a fresh ID.
func NewShader(label, source string, opts ...ShaderOption) (*Shader, error) {
	words, err := compileSPIRV(source)
	if err != nil {
		return nil, fmt.Errorf("shader %q: %w", label, err)
	}
	s := &Shader{
		id:        shaderIDs.Add(1),
		label:     label,
		wgsl:      source,
		spirv:     words,
		vertex:    vertexEntry,
		fragment:  fragmentEntry,
		alphaTest: alphaTestEntry,
	}
	for _, opt := range opts {
		opt(s)
	}
	slogger().Debug("sprite/gpu: shader compiled", "label", label, "id", s.id, "spirv_words", len(words))
	return s, nil
}

// NewLightShader compiles the radial-falloff shader used for point lights.
func NewLightShader() (*Shader, error) {
	return NewShader("light", lightShaderSource)
}

// builtinShader returns the shader used for sprites without one.
func builtinShader() *Shader {
	return &Shader{
		label:     "sprite",
		wgsl:      spriteShaderSource,
		vertex:    vertexEntry,
		fragment:  fragmentEntry,
		alphaTest: alphaTestEntry,
	}
}

// ID returns the shader's identity. Implements sprite.Shader.
func (s *Shader) ID() uint32 { return s.id }

// Label returns the debug label given at creation.
func (s *Shader) Label() string { return s.label }

func (s *Shader) source() hal.ShaderSource {
	if s.wgsl == "" {
		return hal.ShaderSource{SPIRV: s.spirv}
	}
	return hal.ShaderSource{WGSL: s.wgsl}
}

// compileSPIRV compiles WGSL to SPIR-V words.
func compileSPIRV(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("compile: SPIR-V length %d is not a multiple of 4", len(spirvBytes))
	}

	// SPIR-V is a stream of little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	return words, nil
}
