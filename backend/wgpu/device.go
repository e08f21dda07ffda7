package wgpu

import (
	"fmt"
	"sync"

	"github.com/gogpu/gpuproxy"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/core"

	types "github.com/gogpu/gputypes"
)

// device owns the GPU resources of one session: instance, adapter, device,
// and queue, created in that order and released in reverse.
type device struct {
	refs   gpuproxy.RefCount
	handle gpuproxy.Handle

	mu       sync.Mutex
	instance *core.Instance
	adapter  core.AdapterID
	deviceID core.DeviceID
	queue    *queue
	caps     gpuproxy.DeviceCapabilities
	bound    map[int]gpuproxy.Texture
	closed   bool
}

var _ gpuproxy.ExtendedDevice = (*device)(nil)

func openDevice(desc gpuproxy.DeviceDescriptor) (*device, error) {
	instance := core.NewInstance(&gputypes.InstanceDescriptor{
		Backends: gputypes.BackendsPrimary,
		Flags:    0,
	})

	var opts gputypes.RequestAdapterOptions
	if desc.PreferHighPerformance {
		opts.PowerPreference = gputypes.PowerPreferenceHighPerformance
	}
	adapterID, err := instance.RequestAdapter(&opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoGPU, err)
	}

	label := desc.Label
	if label == "" {
		label = "gpuproxy-device"
	}
	deviceID, err := core.RequestDevice(adapterID, &types.DeviceDescriptor{
		Label:            label,
		RequiredFeatures: nil,
		RequiredLimits:   types.DefaultLimits(),
	})
	if err != nil {
		_ = core.AdapterDrop(adapterID)
		return nil, fmt.Errorf("wgpu: create device: %w", err)
	}

	queueID, err := core.GetDeviceQueue(deviceID)
	if err != nil {
		_ = core.DeviceDrop(deviceID)
		_ = core.AdapterDrop(adapterID)
		return nil, fmt.Errorf("wgpu: get device queue: %w", err)
	}

	d := &device{
		handle:   gpuproxy.NewHandle(),
		instance: instance,
		adapter:  adapterID,
		deviceID: deviceID,
		caps:     queryCaps(adapterID, deviceID),
		bound:    make(map[int]gpuproxy.Texture),
	}
	d.refs.AddRef()
	d.queue = newQueue(queueID)

	gpuproxy.Logger().Info("wgpu device created",
		"label", label, "gpu", d.caps.DeviceName, "vendor", d.caps.VendorName)
	return d, nil
}

// queryCaps merges adapter identity and device limits into one capability
// report. Failures degrade to empty fields rather than failing the open.
func queryCaps(adapterID core.AdapterID, deviceID core.DeviceID) gpuproxy.DeviceCapabilities {
	caps := gpuproxy.DeviceCapabilities{
		// WebGPU guarantees four bind groups on every conformant device.
		MaxBindGroups: 4,
	}
	if info, err := core.GetAdapterInfo(adapterID); err == nil {
		caps.VendorName = info.Vendor
		caps.DeviceName = info.Name
		caps.DriverInfo = info.Driver
	} else {
		gpuproxy.Logger().Warn("wgpu: adapter info unavailable", "err", err)
	}
	if limits, err := core.GetDeviceLimits(deviceID); err == nil {
		caps.MaxTextureSize = limits.MaxTextureDimension2D
	} else {
		gpuproxy.Logger().Warn("wgpu: device limits unavailable", "err", err)
	}
	return caps
}

func (d *device) Handle() gpuproxy.Handle { return d.handle }
func (d *device) AddRef() uint32          { return d.refs.AddRef() }

func (d *device) Release() uint32 {
	return d.refs.DropRef(d.teardown)
}

// teardown releases GPU resources in reverse order of creation. The queue
// is released when the device is dropped.
func (d *device) teardown() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true

	if !d.deviceID.IsZero() {
		if err := core.DeviceDrop(d.deviceID); err != nil {
			gpuproxy.Logger().Warn("wgpu: device release failed", "err", err)
		}
		d.deviceID = core.DeviceID{}
	}
	if !d.adapter.IsZero() {
		if err := core.AdapterDrop(d.adapter); err != nil {
			gpuproxy.Logger().Warn("wgpu: adapter release failed", "err", err)
		}
		d.adapter = core.AdapterID{}
	}
	d.instance = nil
	d.bound = nil
	gpuproxy.Logger().Info("wgpu device released", "device", d.handle)
}

func (d *device) Caps() gpuproxy.DeviceCapabilities {
	return d.caps
}

func (d *device) Queue() gpuproxy.Queue {
	d.queue.AddRef()
	return d.queue
}

func (d *device) CreateBuffer(desc gpuproxy.BufferDescriptor) (gpuproxy.Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrDeviceClosed
	}
	return newBuffer(desc), nil
}

func (d *device) CreateTexture(desc gpuproxy.TextureDescriptor) (gpuproxy.Texture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrDeviceClosed
	}
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("wgpu: invalid texture size %dx%d", desc.Width, desc.Height)
	}
	if d.caps.MaxTextureSize > 0 &&
		(desc.Width > d.caps.MaxTextureSize || desc.Height > d.caps.MaxTextureSize) {
		return nil, fmt.Errorf("wgpu: texture size %dx%d exceeds device limit %d",
			desc.Width, desc.Height, d.caps.MaxTextureSize)
	}
	return newTexture(desc), nil
}

func (d *device) CreateSwapChain(desc gpuproxy.SwapChainDescriptor) (gpuproxy.SwapChain, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrDeviceClosed
	}
	if desc.BufferCount < 1 {
		return nil, fmt.Errorf("wgpu: invalid back buffer count %d", desc.BufferCount)
	}
	return newSwapChain(desc), nil
}

func (d *device) BindTexture(slot int, tex gpuproxy.Texture) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDeviceClosed
	}
	if tex == nil {
		delete(d.bound, slot)
		return nil
	}
	d.bound[slot] = tex
	return nil
}

func (d *device) BoundTexture(slot int) (gpuproxy.Texture, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	tex, ok := d.bound[slot]
	if !ok {
		return nil, false
	}
	tex.AddRef()
	return tex, true
}

// WaitIdle reports completion of all submitted work. Queue writes apply
// synchronously while uploads are staged host-side, so there is nothing
// to wait for on a healthy device.
func (d *device) WaitIdle() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDeviceClosed
	}
	return nil
}
