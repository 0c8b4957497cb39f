package sprite

import (
	"errors"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/sprite/internal/quad"
)

type fakeTexture struct {
	id          uint32
	w, h        int
	nonResident bool
	transparent bool
}

func (t *fakeTexture) ID() uint32            { return t.id }
func (t *fakeTexture) Width() int            { return t.w }
func (t *fakeTexture) Height() int           { return t.h }
func (t *fakeTexture) Resident() bool        { return !t.nonResident }
func (t *fakeTexture) HasTransparency() bool { return t.transparent }

func newTex(id uint32) *fakeTexture {
	return &fakeTexture{id: id, w: 64, h: 64}
}

type fakeShader struct{ id uint32 }

func (s *fakeShader) ID() uint32 { return s.id }

type fakeTarget struct{ w, h int }

func (t *fakeTarget) Width() int  { return t.w }
func (t *fakeTarget) Height() int { return t.h }

// drawCall records one DrawQuads call with the state bound at the time.
type drawCall struct {
	first, count int
	texture      uint32
	shader       uint32
	blend        BlendMode
}

// fakeBackend records every call the batch makes.
type fakeBackend struct {
	allocErr  error
	uploadErr error

	allocs   []int
	releases int
	uploads  [][]byte
	begins   []Target
	ends     int
	draws    []drawCall
	ops      []string

	shader   Shader
	viewProj mgl32.Mat4
	blend    BlendMode
	texture  Texture

	logger *slog.Logger
}

func (f *fakeBackend) Allocate(maxQuads int) error {
	f.ops = append(f.ops, "allocate")
	if f.allocErr != nil {
		return f.allocErr
	}
	f.allocs = append(f.allocs, maxQuads)
	return nil
}

func (f *fakeBackend) Release() {
	f.ops = append(f.ops, "release")
	f.releases++
}

func (f *fakeBackend) Upload(vertices []byte) error {
	f.ops = append(f.ops, "upload")
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploads = append(f.uploads, append([]byte(nil), vertices...))
	return nil
}

func (f *fakeBackend) Begin(target Target) error {
	f.ops = append(f.ops, "begin")
	f.begins = append(f.begins, target)
	return nil
}

func (f *fakeBackend) SetShader(s Shader, viewProj mgl32.Mat4) error {
	f.ops = append(f.ops, "shader")
	f.shader = s
	f.viewProj = viewProj
	return nil
}

func (f *fakeBackend) SetBlend(mode BlendMode) error {
	f.ops = append(f.ops, "blend")
	f.blend = mode
	return nil
}

func (f *fakeBackend) SetTexture(tex Texture) error {
	f.ops = append(f.ops, "texture")
	f.texture = tex
	return nil
}

func (f *fakeBackend) DrawQuads(first, count int) error {
	f.ops = append(f.ops, "draw")
	if f.texture == nil {
		return errors.New("fake: draw without texture")
	}
	f.draws = append(f.draws, drawCall{
		first:   first,
		count:   count,
		texture: f.texture.ID(),
		shader:  shaderID(f.shader),
		blend:   f.blend,
	})
	return nil
}

func (f *fakeBackend) End() error {
	f.ops = append(f.ops, "end")
	f.ends++
	return nil
}

func (f *fakeBackend) SetLogger(l *slog.Logger) { f.logger = l }

// lastVertices decodes the most recent upload.
func (f *fakeBackend) lastVertices() []quad.Vertex {
	if len(f.uploads) == 0 {
		return nil
	}
	data := f.uploads[len(f.uploads)-1]
	out := make([]quad.Vertex, len(data)/quad.VertexSize)
	for i := range out {
		out[i] = quad.Decode(data[i*quad.VertexSize:])
	}
	return out
}

// drawnTextures lists the texture of every draw call in order.
func (f *fakeBackend) drawnTextures() []uint32 {
	out := make([]uint32, len(f.draws))
	for i, d := range f.draws {
		out[i] = d.texture
	}
	return out
}
