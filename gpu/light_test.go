//go:build !nogpu

package gpu

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/gogpu/sprite"
	"github.com/gogpu/sprite/internal/quad"
	"github.com/gogpu/sprite/lights"
)

func TestLightShaderSourceContainsEntryPoints(t *testing.T) {
	for _, want := range []string{
		"@vertex",
		"@fragment",
		vertexEntry,
		fragmentEntry,
		alphaTestEntry,
		"texture_2d<f32>",
		"fn falloff",
	} {
		if !strings.Contains(lightShaderSource, want) {
			t.Errorf("light shader source missing %q", want)
		}
	}
}

func TestNewLightTexture(t *testing.T) {
	r := newTestRenderer(t, 0)
	tex, err := r.NewLightTexture()
	if err != nil {
		t.Fatalf("NewLightTexture: %v", err)
	}
	defer tex.Free()
	if tex.Width() != 1 || tex.Height() != 1 {
		t.Errorf("size = %dx%d, want 1x1", tex.Width(), tex.Height())
	}
	if tex.HasTransparency() || !tex.Resident() {
		t.Error("light texture should be an opaque resident texel")
	}
}

func TestNewTextureFromBytes(t *testing.T) {
	r := newTestRenderer(t, 0)

	var buf bytes.Buffer
	if err := png.Encode(&buf, solidImage(6, 2, opaqueRed)); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	tex, err := r.NewTextureFromBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("NewTextureFromBytes: %v", err)
	}
	defer tex.Free()
	if tex.Width() != 6 || tex.Height() != 2 {
		t.Errorf("size = %dx%d, want 6x2", tex.Width(), tex.Height())
	}

	if _, err := r.NewTextureFromBytes(nil); err == nil {
		t.Error("NewTextureFromBytes(nil) should fail")
	}
}

func TestLightsRenderIntoFrameBuffer(t *testing.T) {
	r := newTestRenderer(t, 0)
	fb := mustFrameBuffer(t, r, 64, 64)
	red := mustTexture(t, r, opaqueRed)

	lightTex, err := r.NewLightTexture()
	if err != nil {
		t.Fatalf("NewLightTexture: %v", err)
	}
	defer lightTex.Free()
	shader, err := NewLightShader()
	if err != nil {
		t.Fatalf("NewLightShader: %v", err)
	}

	set, err := lights.New(lightTex, shader)
	if err != nil {
		t.Fatalf("lights.New: %v", err)
	}
	if _, err := set.Add(32, 32, 16, 0.5, sprite.White); err != nil {
		t.Fatalf("Add light: %v", err)
	}

	b, err := sprite.New(r, sprite.WithCapacity(sprite.Tiny))
	if err != nil {
		t.Fatalf("sprite.New: %v", err)
	}
	defer b.Free()
	b.SetTarget(fb)

	if err := b.Add(red, sprite.R(0, 0, 64, 64)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if n, err := set.Render(b); err != nil || n != 1 {
		t.Fatalf("Render = %d, %v; want 1, nil", n, err)
	}
	if err := b.RenderAll(); err != nil {
		t.Fatalf("RenderAll: %v", err)
	}

	if st := b.Stats(); st.DrawCalls != 2 || st.ShaderChanges != 2 {
		t.Errorf("stats = %+v, want 2 draws and 2 shader changes", st)
	}
	if len(r.pipelines) != 2 {
		t.Errorf("pipelines = %d, want 2 (sprite opaque, light alpha)", len(r.pipelines))
	}

	// The light sorts after the background by depth.
	verts := readBuffer(t, r.device, r.vertexBuf, 2*quad.Size)
	light := quad.Decode(verts[quad.Size:])
	if light.X != 16 || light.Y != 16 {
		t.Errorf("light quad top-left = (%v, %v), want (16, 16)", light.X, light.Y)
	}
	if light.A != quad.PackColor(0.5) {
		t.Errorf("light alpha = %d, want %d", light.A, quad.PackColor(0.5))
	}
}
