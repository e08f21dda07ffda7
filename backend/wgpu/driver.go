package wgpu

import (
	"errors"

	"github.com/gogpu/gpuproxy"
)

// DriverName is the name the driver registers under.
const DriverName = "wgpu"

// ErrNoGPU indicates no compatible GPU adapter was found.
var ErrNoGPU = errors.New("wgpu: no compatible GPU found")

// ErrDeviceClosed indicates use of a device after its last release.
var ErrDeviceClosed = errors.New("wgpu: device closed")

type driver struct{}

func (driver) Name() string { return DriverName }

func (driver) CreateDevice(desc gpuproxy.DeviceDescriptor) (gpuproxy.Device, error) {
	return openDevice(desc)
}

func init() {
	if err := gpuproxy.RegisterDriver(driver{}); err != nil {
		panic(err)
	}
}
