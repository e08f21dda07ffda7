package gpuproxy

import "github.com/gogpu/gputypes"

// The interfaces below define the GPU resource model that gpuproxy wraps.
// Driver packages (backend/wgpu) implement them with real GPU objects; the
// proxy types in this package implement them by forwarding to a target.
// Every object follows the same shared-ownership discipline: it embeds its
// identity and reference count behind [Referenced], and is destroyed when
// its last reference is released.

// Device is the root object of one GPU session. All other resources are
// created through it.
type Device interface {
	Referenced

	// Caps returns the capabilities of the underlying adapter.
	Caps() DeviceCapabilities

	// Queue returns the device's submission queue. The queue shares the
	// device's lifetime; the returned reference is owned by the caller.
	Queue() Queue

	// CreateBuffer creates a GPU buffer.
	CreateBuffer(desc BufferDescriptor) (Buffer, error)

	// CreateTexture creates a GPU texture.
	CreateTexture(desc TextureDescriptor) (Texture, error)

	// CreateSwapChain creates a swap chain for presentation.
	CreateSwapChain(desc SwapChainDescriptor) (SwapChain, error)

	// BindTexture binds a texture to a sampler slot. A nil texture
	// unbinds the slot.
	BindTexture(slot int, tex Texture) error

	// BoundTexture returns the texture currently bound to a slot, or
	// (nil, false) when the slot is empty. The returned reference is
	// owned by the caller.
	BoundTexture(slot int) (Texture, bool)
}

// ExtendedDevice is implemented by drivers with synchronization support
// beyond the base device contract. Callers obtain it by type assertion on
// a [Device]; [Open] preserves the extended interface when the driver
// provides it.
type ExtendedDevice interface {
	Device

	// WaitIdle blocks until all submitted work has completed.
	WaitIdle() error
}

// Queue accepts work for a device.
type Queue interface {
	Referenced

	// WriteBuffer schedules a write of data into dst at offset.
	WriteBuffer(dst Buffer, offset uint64, data []byte) error

	// WriteTexture schedules a full-texture upload of data into dst.
	WriteTexture(dst Texture, data []byte) error
}

// Buffer is a linear GPU allocation.
type Buffer interface {
	Referenced

	// Label returns the debug label the buffer was created with.
	Label() string

	// Size returns the buffer size in bytes.
	Size() uint64
}

// Texture is a GPU texture resource.
type Texture interface {
	Referenced

	// Width returns the texture width in pixels.
	Width() uint32

	// Height returns the texture height in pixels.
	Height() uint32

	// Format returns the texture pixel format.
	Format() gputypes.TextureFormat

	// CreateView creates a view for this texture.
	CreateView() (TextureView, error)
}

// TextureView is a view into a texture, used to bind it to shader stages.
type TextureView interface {
	Referenced

	// Texture returns the texture the view was created from. The
	// returned reference is owned by the caller.
	Texture() Texture
}

// SwapChain owns the presentable back buffers of a surface.
type SwapChain interface {
	Referenced

	// BackBufferCount returns the number of back buffers.
	BackBufferCount() int

	// BackBuffer returns back buffer i. The returned reference is owned
	// by the caller. Repeated calls for the same index yield the same
	// underlying texture.
	BackBuffer(i int) (Texture, error)

	// Present presents the current back buffer.
	Present() error
}

// DeviceDescriptor describes parameters for opening a device.
type DeviceDescriptor struct {
	// Label is an optional debug label for the device.
	Label string

	// PreferHighPerformance requests a discrete GPU when the host has
	// more than one adapter.
	PreferHighPerformance bool
}

// DeviceCapabilities describes the capabilities of a GPU device.
type DeviceCapabilities struct {
	// MaxTextureSize is the maximum texture dimension supported.
	MaxTextureSize uint32

	// MaxBindGroups is the maximum number of bind groups.
	MaxBindGroups uint32

	// VendorName is the GPU vendor name.
	VendorName string

	// DeviceName is the GPU device name.
	DeviceName string

	// DriverInfo is the driver version string, when available.
	DriverInfo string
}

// BufferUsage specifies how a buffer can be used.
// These flags can be combined with bitwise OR.
type BufferUsage uint32

const (
	// BufferUsageCopySrc allows the buffer to be used as a copy source.
	BufferUsageCopySrc BufferUsage = 1 << iota

	// BufferUsageCopyDst allows the buffer to be used as a copy destination.
	BufferUsageCopyDst

	// BufferUsageVertex allows the buffer to hold vertex data.
	BufferUsageVertex

	// BufferUsageIndex allows the buffer to hold index data.
	BufferUsageIndex

	// BufferUsageUniform allows the buffer to back uniform bindings.
	BufferUsageUniform

	// BufferUsageStorage allows the buffer to back storage bindings.
	BufferUsageStorage
)

// BufferDescriptor describes parameters for creating a buffer.
type BufferDescriptor struct {
	// Label is an optional debug label for the buffer.
	Label string

	// Size is the buffer size in bytes.
	Size uint64

	// Usage specifies how the buffer will be used.
	Usage BufferUsage
}

// TextureUsage specifies how a texture can be used.
// These flags can be combined with bitwise OR.
type TextureUsage uint32

const (
	// TextureUsageCopySrc allows the texture to be used as a copy source.
	TextureUsageCopySrc TextureUsage = 1 << iota

	// TextureUsageCopyDst allows the texture to be used as a copy destination.
	TextureUsageCopyDst

	// TextureUsageTextureBinding allows the texture to be used in a texture binding.
	TextureUsageTextureBinding

	// TextureUsageStorageBinding allows the texture to be used in a storage binding.
	TextureUsageStorageBinding

	// TextureUsageRenderAttachment allows the texture to be used as a render attachment.
	TextureUsageRenderAttachment
)

// TextureDescriptor describes parameters for creating a texture.
// This mirrors the WebGPU GPUTextureDescriptor specification.
type TextureDescriptor struct {
	// Label is an optional debug label for the texture.
	Label string

	// Width is the texture width in pixels.
	Width uint32

	// Height is the texture height in pixels.
	Height uint32

	// MipLevelCount is the number of mipmap levels.
	// Use 1 for no mipmaps.
	MipLevelCount uint32

	// SampleCount is the number of samples for multisampling.
	// Use 1 for no multisampling.
	SampleCount uint32

	// Format is the texture pixel format.
	Format gputypes.TextureFormat

	// Usage specifies how the texture will be used.
	Usage TextureUsage
}

// DefaultTextureDescriptor returns a TextureDescriptor with sensible
// defaults. Only Width, Height, and Format need to be set.
func DefaultTextureDescriptor(width, height uint32, format gputypes.TextureFormat) TextureDescriptor {
	return TextureDescriptor{
		Width:         width,
		Height:        height,
		MipLevelCount: 1,
		SampleCount:   1,
		Format:        format,
		Usage:         TextureUsageTextureBinding | TextureUsageRenderAttachment,
	}
}

// SwapChainDescriptor describes parameters for creating a swap chain.
type SwapChainDescriptor struct {
	// Label is an optional debug label for the swap chain.
	Label string

	// Width is the back buffer width in pixels.
	Width uint32

	// Height is the back buffer height in pixels.
	Height uint32

	// Format is the back buffer pixel format.
	Format gputypes.TextureFormat

	// BufferCount is the number of back buffers. Use 2 for double
	// buffering.
	BufferCount int
}
