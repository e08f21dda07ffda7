package wgpu

import (
	"fmt"

	"github.com/gogpu/gpuproxy"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/core"
)

// queue wraps the device queue. Writes are applied to the host-side staging
// of the destination resource.
type queue struct {
	refs    gpuproxy.RefCount
	handle  gpuproxy.Handle
	queueID core.QueueID
}

var _ gpuproxy.Queue = (*queue)(nil)

func newQueue(queueID core.QueueID) *queue {
	q := &queue{handle: gpuproxy.NewHandle(), queueID: queueID}
	q.refs.AddRef()
	return q
}

func (q *queue) Handle() gpuproxy.Handle { return q.handle }
func (q *queue) AddRef() uint32          { return q.refs.AddRef() }

func (q *queue) Release() uint32 {
	// The queue belongs to the device; DeviceDrop releases it.
	return q.refs.DropRef(nil)
}

func (q *queue) WriteBuffer(dst gpuproxy.Buffer, offset uint64, data []byte) error {
	b, ok := dst.(*buffer)
	if !ok {
		return fmt.Errorf("wgpu: buffer %T does not belong to this driver", dst)
	}
	return b.write(offset, data)
}

func (q *queue) WriteTexture(dst gpuproxy.Texture, data []byte) error {
	t, ok := dst.(*texture)
	if !ok {
		return fmt.Errorf("wgpu: texture %T does not belong to this driver", dst)
	}
	return t.write(data)
}

type buffer struct {
	refs   gpuproxy.RefCount
	handle gpuproxy.Handle
	desc   gpuproxy.BufferDescriptor
	data   []byte
}

var _ gpuproxy.Buffer = (*buffer)(nil)

func newBuffer(desc gpuproxy.BufferDescriptor) *buffer {
	b := &buffer{
		handle: gpuproxy.NewHandle(),
		desc:   desc,
		data:   make([]byte, desc.Size),
	}
	b.refs.AddRef()
	return b
}

func (b *buffer) Handle() gpuproxy.Handle { return b.handle }
func (b *buffer) AddRef() uint32          { return b.refs.AddRef() }

func (b *buffer) Release() uint32 {
	return b.refs.DropRef(func() { b.data = nil })
}

func (b *buffer) Label() string { return b.desc.Label }
func (b *buffer) Size() uint64  { return b.desc.Size }

func (b *buffer) write(offset uint64, data []byte) error {
	if b.data == nil {
		return ErrDeviceClosed
	}
	if offset+uint64(len(data)) > b.desc.Size {
		return fmt.Errorf("wgpu: write of %d bytes at offset %d exceeds buffer size %d",
			len(data), offset, b.desc.Size)
	}
	copy(b.data[offset:], data)
	return nil
}

// bytesPerPixel covers the formats the staging path supports today.
func bytesPerPixel(format gputypes.TextureFormat) int {
	switch format {
	case gputypes.TextureFormatUndefined:
		return 0
	default:
		// All currently supported formats are 32-bit.
		return 4
	}
}

type texture struct {
	refs   gpuproxy.RefCount
	handle gpuproxy.Handle
	desc   gpuproxy.TextureDescriptor
	data   []byte
}

var _ gpuproxy.Texture = (*texture)(nil)

func newTexture(desc gpuproxy.TextureDescriptor) *texture {
	t := &texture{
		handle: gpuproxy.NewHandle(),
		desc:   desc,
		data:   make([]byte, int(desc.Width)*int(desc.Height)*bytesPerPixel(desc.Format)),
	}
	t.refs.AddRef()
	return t
}

func (t *texture) Handle() gpuproxy.Handle { return t.handle }
func (t *texture) AddRef() uint32          { return t.refs.AddRef() }

func (t *texture) Release() uint32 {
	return t.refs.DropRef(func() { t.data = nil })
}

func (t *texture) Width() uint32                  { return t.desc.Width }
func (t *texture) Height() uint32                 { return t.desc.Height }
func (t *texture) Format() gputypes.TextureFormat { return t.desc.Format }

func (t *texture) CreateView() (gpuproxy.TextureView, error) {
	return newTextureView(t), nil
}

func (t *texture) write(data []byte) error {
	if t.data == nil {
		return ErrDeviceClosed
	}
	if len(data) != len(t.data) {
		return fmt.Errorf("wgpu: texture upload of %d bytes, want %d", len(data), len(t.data))
	}
	copy(t.data, data)
	return nil
}

type textureView struct {
	refs   gpuproxy.RefCount
	handle gpuproxy.Handle
	of     *texture
}

var _ gpuproxy.TextureView = (*textureView)(nil)

func newTextureView(of *texture) *textureView {
	v := &textureView{handle: gpuproxy.NewHandle(), of: of}
	v.refs.AddRef()
	of.AddRef()
	return v
}

func (v *textureView) Handle() gpuproxy.Handle { return v.handle }
func (v *textureView) AddRef() uint32          { return v.refs.AddRef() }

func (v *textureView) Release() uint32 {
	return v.refs.DropRef(func() { v.of.Release() })
}

func (v *textureView) Texture() gpuproxy.Texture {
	v.of.AddRef()
	return v.of
}

// swapChain keeps one back buffer texture per slot; repeated BackBuffer
// calls for an index return the same object, as presentation APIs do.
type swapChain struct {
	refs    gpuproxy.RefCount
	handle  gpuproxy.Handle
	buffers []*texture
}

var _ gpuproxy.SwapChain = (*swapChain)(nil)

func newSwapChain(desc gpuproxy.SwapChainDescriptor) *swapChain {
	s := &swapChain{handle: gpuproxy.NewHandle()}
	for range desc.BufferCount {
		s.buffers = append(s.buffers, newTexture(gpuproxy.DefaultTextureDescriptor(
			desc.Width, desc.Height, desc.Format)))
	}
	s.refs.AddRef()
	return s
}

func (s *swapChain) Handle() gpuproxy.Handle { return s.handle }
func (s *swapChain) AddRef() uint32          { return s.refs.AddRef() }

func (s *swapChain) Release() uint32 {
	return s.refs.DropRef(func() {
		for _, b := range s.buffers {
			b.Release()
		}
		s.buffers = nil
	})
}

func (s *swapChain) BackBufferCount() int { return len(s.buffers) }

func (s *swapChain) BackBuffer(i int) (gpuproxy.Texture, error) {
	if i < 0 || i >= len(s.buffers) {
		return nil, fmt.Errorf("wgpu: back buffer %d out of range [0,%d)", i, len(s.buffers))
	}
	b := s.buffers[i]
	b.AddRef()
	return b, nil
}

func (s *swapChain) Present() error {
	if s.buffers == nil {
		return ErrDeviceClosed
	}
	gpuproxy.Logger().Debug("wgpu present", "swapchain", s.handle)
	return nil
}
