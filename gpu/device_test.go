//go:build !nogpu

package gpu

import (
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

func TestOpenDeviceNoop(t *testing.T) {
	dev, err := OpenDevice(gputypes.BackendEmpty)
	if err != nil {
		t.Fatalf("OpenDevice: %v", err)
	}
	if dev.Device == nil || dev.Queue == nil {
		t.Fatal("expected device and queue")
	}
	if dev.Info.Name != "Noop Adapter" {
		t.Errorf("adapter = %q, want %q", dev.Info.Name, "Noop Adapter")
	}
	dev.Close()
	dev.Close()
	if dev.Device != nil {
		t.Error("Close should clear the device")
	}
}

func TestOpenDeviceUnavailable(t *testing.T) {
	if _, err := OpenDevice(gputypes.BackendBrowserWebGPU); !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("OpenDevice(BrowserWebGPU) = %v, want ErrBackendUnavailable", err)
	}
}

func TestParseBackend(t *testing.T) {
	tests := []struct {
		in   string
		want gputypes.Backend
	}{
		{"vulkan", gputypes.BackendVulkan},
		{"VK", gputypes.BackendVulkan},
		{"metal", gputypes.BackendMetal},
		{"dx12", gputypes.BackendDX12},
		{"gles", gputypes.BackendGL},
		{"noop", gputypes.BackendEmpty},
	}
	for _, tt := range tests {
		got, err := ParseBackend(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseBackend(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseBackend("glide"); !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("ParseBackend(glide) = %v, want ErrBackendUnavailable", err)
	}
}

// testProvider exposes a HAL device through the plain DeviceProvider
// accessors.
type testProvider struct {
	device hal.Device
	queue  hal.Queue
	format gputypes.TextureFormat
}

func (p *testProvider) Device() gpucontext.Device             { return p.device }
func (p *testProvider) Queue() gpucontext.Queue               { return p.queue }
func (p *testProvider) SurfaceFormat() gputypes.TextureFormat { return p.format }
func (p *testProvider) Adapter() gpucontext.Adapter           { return nil }
func (p *testProvider) AdapterInfo() gpucontext.AdapterInfo   { return gpucontext.AdapterInfo{Name: "test"} }

// testHalProvider hides the HAL types behind HalDevice and HalQueue.
type testHalProvider struct {
	testProvider
	halDevice hal.Device
	halQueue  hal.Queue
}

func (p *testHalProvider) HalDevice() any { return p.halDevice }
func (p *testHalProvider) HalQueue() any  { return p.halQueue }

func TestNewRendererFromProvider(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r, err := NewRendererFromProvider(&testProvider{
		device: device,
		queue:  queue,
		format: gputypes.TextureFormatRGBA8Unorm,
	})
	if err != nil {
		t.Fatalf("NewRendererFromProvider: %v", err)
	}
	if r.device != device || r.queue != queue {
		t.Error("renderer does not share the provider device")
	}
	if r.opts.surfaceFormat != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("surface format = %v, want RGBA8Unorm", r.opts.surfaceFormat)
	}

	hp := &testHalProvider{halDevice: device, halQueue: queue}
	r2, err := NewRendererFromProvider(hp)
	if err != nil {
		t.Fatalf("NewRendererFromProvider(hal): %v", err)
	}
	if r2.device != device {
		t.Error("HalDevice not preferred")
	}
	if r2.opts.surfaceFormat != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("undefined provider format should keep the default, got %v", r2.opts.surfaceFormat)
	}
}

func TestNewRendererFromProviderErrors(t *testing.T) {
	if _, err := NewRendererFromProvider(nil); !errors.Is(err, ErrNilDevice) {
		t.Errorf("nil provider = %v, want ErrNilDevice", err)
	}
	if _, err := NewRendererFromProvider(&testProvider{}); !errors.Is(err, ErrNilDevice) {
		t.Errorf("empty provider = %v, want ErrNilDevice", err)
	}
}

func TestNewShaderInvalid(t *testing.T) {
	if _, err := NewShader("broken", "fn nope( {"); err == nil {
		t.Error("NewShader accepted invalid WGSL")
	}
}

func TestBuiltinShader(t *testing.T) {
	s := builtinShader()
	if s.ID() != 0 {
		t.Errorf("builtin ID = %d, want 0", s.ID())
	}
	if s.Label() != "sprite" {
		t.Errorf("label = %q", s.Label())
	}
	src := s.source()
	if src.WGSL == "" || src.WGSL != spriteShaderSource {
		t.Error("builtin shader should submit the embedded WGSL")
	}
}

func TestShaderSourceSPIRV(t *testing.T) {
	s := &Shader{spirv: []uint32{0x07230203}}
	if got := s.source(); got.WGSL != "" || len(got.SPIRV) != 1 {
		t.Errorf("source = %+v, want SPIR-V only", got)
	}
}

func TestWithEntryPoints(t *testing.T) {
	s := &Shader{}
	WithEntryPoints("v", "f", "a")(s)
	if s.vertex != "v" || s.fragment != "f" || s.alphaTest != "a" {
		t.Errorf("entry points = %q %q %q", s.vertex, s.fragment, s.alphaTest)
	}
}
