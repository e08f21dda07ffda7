package gpuproxy

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Driver is the entry point to a real GPU API implementation.
// Driver packages register themselves from an init function, mirroring the
// way an intercepted application would have resolved the real API's entry
// points once at load time:
//
//	import _ "github.com/gogpu/gpuproxy/backend/wgpu"
type Driver interface {
	// Name returns the driver identifier (e.g. "wgpu").
	Name() string

	// CreateDevice creates a real device. The returned device carries
	// one reference owned by the caller.
	CreateDevice(desc DeviceDescriptor) (Device, error)
}

// ErrNoDriver indicates Open could not resolve a driver: either none is
// registered, or the requested name is unknown.
var ErrNoDriver = errors.New("gpuproxy: no such driver")

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Driver)
)

// RegisterDriver makes a driver available to [Open] under its name.
// Registering a second driver with the same name replaces the first.
func RegisterDriver(d Driver) error {
	if d == nil {
		return errors.New("gpuproxy: driver must not be nil")
	}
	name := d.Name()
	if name == "" {
		return errors.New("gpuproxy: driver name must not be empty")
	}
	driversMu.Lock()
	drivers[name] = d
	driversMu.Unlock()
	Logger().Info("driver registered", "driver", name)
	return nil
}

// Drivers returns the names of the registered drivers, sorted.
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// lookupDriver resolves a driver by name. An empty name resolves to the
// sole registered driver, and is an error when zero or several drivers are
// registered.
func lookupDriver(name string) (Driver, error) {
	driversMu.RLock()
	defer driversMu.RUnlock()
	if name != "" {
		d, ok := drivers[name]
		if !ok {
			registered := make([]string, 0, len(drivers))
			for n := range drivers {
				registered = append(registered, n)
			}
			sort.Strings(registered)
			return nil, fmt.Errorf("%w: %q (registered: %v)", ErrNoDriver, name, registered)
		}
		return d, nil
	}
	if len(drivers) != 1 {
		return nil, fmt.Errorf("%w: %d drivers registered, name required", ErrNoDriver, len(drivers))
	}
	for _, d := range drivers {
		return d, nil
	}
	panic("unreachable")
}

// Open creates a device through the named driver and returns a proxy for
// it. This is the interception point: the application receives the proxy
// in place of the real device, and every object created through it is
// proxied and identity-tracked in one fresh [Context] per Open call.
//
// When the driver's device implements [ExtendedDevice], so does the
// returned proxy.
//
// An empty driver name is allowed when exactly one driver is registered.
func Open(driver string, desc DeviceDescriptor, opts ...Option) (Device, error) {
	d, err := lookupDriver(driver)
	if err != nil {
		return nil, err
	}
	target, err := d.CreateDevice(desc)
	if err != nil {
		return nil, fmt.Errorf("gpuproxy: create device: %w", err)
	}

	if desc.Label != "" {
		opts = append([]Option{WithLabel(desc.Label)}, opts...)
	}
	ctx := NewContext(opts...)

	proxy := newDeviceOrUpgrade(target, ctx)
	ctx.logger().Info("device opened",
		"driver", d.Name(), "label", desc.Label, "device", proxy.Handle())
	return proxy, nil
}
