//go:build !nogpu

package gpu

import (
	"fmt"
	"strings"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Device is a HAL device opened by OpenDevice.
type Device struct {
	Device hal.Device
	Queue  hal.Queue
	Info   gputypes.AdapterInfo

	instance hal.Instance
}

// OpenDevice opens a device on the given backend. Discrete and integrated
// GPUs are preferred over other adapters. The backend package must be
// registered, typically with a blank import such as
//
//	import _ "github.com/gogpu/wgpu/hal/vulkan"
func OpenDevice(backend gputypes.Backend) (*Device, error) {
	b, ok := hal.GetBackend(backend)
	if !ok {
		return nil, fmt.Errorf("%s: %w", backend, ErrBackendUnavailable)
	}
	instance, err := b.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("%s: %w", backend, ErrNoAdapter)
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open device: %w", err)
	}
	slogger().Info("sprite/gpu: device opened",
		"backend", backend.String(),
		"adapter", selected.Info.Name,
		"type", selected.Info.DeviceType)
	return &Device{
		Device:   openDev.Device,
		Queue:    openDev.Queue,
		Info:     selected.Info,
		instance: instance,
	}, nil
}

// Close waits for the device to go idle and destroys it.
func (d *Device) Close() {
	if d.Device != nil {
		_ = d.Device.WaitIdle()
		d.Device.Destroy()
		d.Device = nil
		d.Queue = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
}

// ParseBackend maps a backend name such as "vulkan" or "noop" to its
// gputypes value. Matching is case-insensitive.
func ParseBackend(name string) (gputypes.Backend, error) {
	switch strings.ToLower(name) {
	case "vulkan", "vk":
		return gputypes.BackendVulkan, nil
	case "metal":
		return gputypes.BackendMetal, nil
	case "dx12", "d3d12":
		return gputypes.BackendDX12, nil
	case "gl", "gles", "opengl":
		return gputypes.BackendGL, nil
	case "noop", "empty":
		return gputypes.BackendEmpty, nil
	}
	return gputypes.BackendEmpty, fmt.Errorf("backend %q: %w", name, ErrBackendUnavailable)
}

// NewRendererFromProvider creates a renderer sharing the device of an
// external provider such as a gogpu application window. The provider must
// expose HAL types, either through HalDevice/HalQueue accessors or directly
// from Device and Queue. Surface views default to the provider's surface
// format.
func NewRendererFromProvider(provider gpucontext.DeviceProvider, opts ...Option) (*Renderer, error) {
	if provider == nil {
		return nil, ErrNilDevice
	}
	device, queue, err := halFromProvider(provider)
	if err != nil {
		return nil, err
	}
	opts = append([]Option{WithSurfaceFormat(provider.SurfaceFormat())}, opts...)
	r, err := NewRenderer(device, queue, opts...)
	if err != nil {
		return nil, err
	}
	slogger().Debug("sprite/gpu: using shared device", "adapter", provider.AdapterInfo().Name)
	return r, nil
}

func halFromProvider(provider gpucontext.DeviceProvider) (hal.Device, hal.Queue, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	var rawDevice, rawQueue any = provider.Device(), provider.Queue()
	if hp, ok := provider.(halProvider); ok {
		rawDevice, rawQueue = hp.HalDevice(), hp.HalQueue()
	}
	device, ok := rawDevice.(hal.Device)
	if !ok || device == nil {
		return nil, nil, fmt.Errorf("provider device %T is not hal.Device: %w", rawDevice, ErrNilDevice)
	}
	queue, ok := rawQueue.(hal.Queue)
	if !ok || queue == nil {
		return nil, nil, fmt.Errorf("provider queue %T is not hal.Queue: %w", rawQueue, ErrNilDevice)
	}
	return device, queue, nil
}
