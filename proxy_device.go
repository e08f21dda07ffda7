package gpuproxy

// proxyDevice is the drop-in Device handed out by Open. It forwards every
// call to the real device and routes every created or looked-up resource
// through the context's tracker, so each real object has exactly one proxy
// for the lifetime of the session.
type proxyDevice struct {
	refs   RefCount
	handle Handle
	target Device
	ctx    *Context
}

var _ Device = (*proxyDevice)(nil)

// newDeviceOrUpgrade wraps target, preserving the extended device contract
// when the driver provides it. Callers that need [ExtendedDevice] can then
// recover it from the proxy by type assertion, exactly as they would from
// the real device.
func newDeviceOrUpgrade(target Device, ctx *Context) Device {
	if ext, ok := target.(ExtendedDevice); ok {
		return newProxyExtendedDevice(ext, ctx)
	}
	return newProxyDevice(target, ctx)
}

func newProxyDevice(target Device, ctx *Context) *proxyDevice {
	d := &proxyDevice{handle: NewHandle(), target: target, ctx: ctx}
	d.refs.AddRef()
	return d
}

func (d *proxyDevice) Handle() Handle { return d.handle }
func (d *proxyDevice) AddRef() uint32 { return d.refs.AddRef() }

func (d *proxyDevice) Release() uint32 {
	return d.refs.DropRef(d.teardown)
}

// teardown drops the owned target reference. The device proxy itself is
// never inserted into the tracker (it is created by Open, not ensured), so
// there is no mapping to remove.
func (d *proxyDevice) teardown() {
	d.target.Release()
}

func (d *proxyDevice) Caps() DeviceCapabilities {
	return d.target.Caps()
}

func (d *proxyDevice) Queue() Queue {
	target := d.target.Queue()
	return Ensure(d.ctx, target, func(target Queue) Queue {
		return newProxyQueue(target, d.ctx)
	})
}

func (d *proxyDevice) CreateBuffer(desc BufferDescriptor) (Buffer, error) {
	target, err := d.target.CreateBuffer(desc)
	if err != nil {
		return nil, err
	}
	return TryEnsure(d.ctx, target, func(target Buffer) (Buffer, error) {
		return newProxyBuffer(target, d.ctx), nil
	})
}

func (d *proxyDevice) CreateTexture(desc TextureDescriptor) (Texture, error) {
	target, err := d.target.CreateTexture(desc)
	if err != nil {
		return nil, err
	}
	return TryEnsure(d.ctx, target, func(target Texture) (Texture, error) {
		return newProxyTexture(target, d.ctx), nil
	})
}

func (d *proxyDevice) CreateSwapChain(desc SwapChainDescriptor) (SwapChain, error) {
	target, err := d.target.CreateSwapChain(desc)
	if err != nil {
		return nil, err
	}
	return TryEnsure(d.ctx, target, func(target SwapChain) (SwapChain, error) {
		return newProxySwapChain(target, d.ctx), nil
	})
}

func (d *proxyDevice) BindTexture(slot int, tex Texture) error {
	// A nil texture is a valid unbind request, so resolve through the
	// nullable lookup; only a live non-proxy object is rejected.
	target, ok := TargetForNullable(d.ctx, tex)
	if !ok {
		return ErrInvalidObject
	}
	return d.target.BindTexture(slot, target)
}

func (d *proxyDevice) BoundTexture(slot int) (Texture, bool) {
	target, ok := d.target.BoundTexture(slot)
	if !ok {
		return nil, false
	}
	// The real device handed out an owned reference; the proxy already
	// holds its own, so the surplus one is dropped either way.
	proxy, ok := ProxyFor(d.ctx, target)
	target.Release()
	if !ok {
		return nil, false
	}
	return proxy, true
}

// proxyExtendedDevice wraps drivers that support the extended contract.
// The base contract is delegated to an inner proxyDevice; identity and
// reference count are the inner proxy's, so base and extended views of the
// same device resolve to one tracked object.
type proxyExtendedDevice struct {
	*proxyDevice
	ext ExtendedDevice
}

var _ ExtendedDevice = (*proxyExtendedDevice)(nil)

func newProxyExtendedDevice(target ExtendedDevice, ctx *Context) *proxyExtendedDevice {
	return &proxyExtendedDevice{
		proxyDevice: newProxyDevice(target, ctx),
		ext:         target,
	}
}

func (d *proxyExtendedDevice) WaitIdle() error {
	return d.ext.WaitIdle()
}
