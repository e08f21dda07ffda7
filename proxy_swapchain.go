package gpuproxy

// proxySwapChain forwards presentation calls and wraps back buffers.
// Real swap chains hand out the same back buffer object on every call for
// a given index, so the ensure path makes repeated BackBuffer calls
// resolve to one proxy texture per buffer.
type proxySwapChain struct {
	refs   RefCount
	handle Handle
	target SwapChain
	ctx    *Context
}

var _ SwapChain = (*proxySwapChain)(nil)

func newProxySwapChain(target SwapChain, ctx *Context) *proxySwapChain {
	s := &proxySwapChain{handle: NewHandle(), target: target, ctx: ctx}
	s.refs.AddRef()
	return s
}

func (s *proxySwapChain) Handle() Handle { return s.handle }
func (s *proxySwapChain) AddRef() uint32 { return s.refs.AddRef() }

func (s *proxySwapChain) Release() uint32 {
	return s.refs.DropRef(s.teardown)
}

func (s *proxySwapChain) teardown() {
	s.ctx.OnProxyDestroy(s.target)
	s.target.Release()
}

func (s *proxySwapChain) BackBufferCount() int {
	return s.target.BackBufferCount()
}

func (s *proxySwapChain) BackBuffer(i int) (Texture, error) {
	target, err := s.target.BackBuffer(i)
	if err != nil {
		return nil, err
	}
	return TryEnsure(s.ctx, target, func(target Texture) (Texture, error) {
		return newProxyTexture(target, s.ctx), nil
	})
}

func (s *proxySwapChain) Present() error {
	return s.target.Present()
}
