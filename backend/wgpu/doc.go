// Package wgpu provides a gpuproxy driver backed by gogpu/wgpu.
//
// The driver uses the gogpu/wgpu Pure Go WebGPU implementation, which
// supports Vulkan, Metal, and DX12 backends depending on the platform.
// It owns the instance, adapter, device, and queue for one session and
// exposes them through the gpuproxy device contract, including the
// extended synchronization contract.
//
// The driver registers itself on import:
//
//	import _ "github.com/gogpu/gpuproxy/backend/wgpu"
//
//	dev, err := gpuproxy.Open("wgpu", gpuproxy.DeviceDescriptor{
//	    Label:                 "main",
//	    PreferHighPerformance: true,
//	})
//
// Buffer and texture contents are staged host-side; the core↔HAL bridge
// for uploads and readback follows the same path gogpu uses and is wired
// in as it lands there.
package wgpu
