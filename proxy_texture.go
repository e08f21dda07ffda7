package gpuproxy

import "github.com/gogpu/gputypes"

// proxyTexture forwards texture calls and wraps created views.
type proxyTexture struct {
	refs   RefCount
	handle Handle
	target Texture
	ctx    *Context
}

var _ Texture = (*proxyTexture)(nil)

func newProxyTexture(target Texture, ctx *Context) *proxyTexture {
	t := &proxyTexture{handle: NewHandle(), target: target, ctx: ctx}
	t.refs.AddRef()
	return t
}

func (t *proxyTexture) Handle() Handle { return t.handle }
func (t *proxyTexture) AddRef() uint32 { return t.refs.AddRef() }

func (t *proxyTexture) Release() uint32 {
	return t.refs.DropRef(t.teardown)
}

func (t *proxyTexture) teardown() {
	t.ctx.OnProxyDestroy(t.target)
	t.target.Release()
}

func (t *proxyTexture) Width() uint32                  { return t.target.Width() }
func (t *proxyTexture) Height() uint32                 { return t.target.Height() }
func (t *proxyTexture) Format() gputypes.TextureFormat { return t.target.Format() }

func (t *proxyTexture) CreateView() (TextureView, error) {
	target, err := t.target.CreateView()
	if err != nil {
		return nil, err
	}
	return TryEnsure(t.ctx, target, func(target TextureView) (TextureView, error) {
		return newProxyTextureView(target, t, t.ctx), nil
	})
}

// proxyTextureView holds, besides its target, an owned reference to the
// proxy texture it was created from, so Texture() answers with the proxy
// the application knows rather than the real object.
type proxyTextureView struct {
	refs      RefCount
	handle    Handle
	target    TextureView
	container *proxyTexture
	ctx       *Context
}

var _ TextureView = (*proxyTextureView)(nil)

func newProxyTextureView(target TextureView, container *proxyTexture, ctx *Context) *proxyTextureView {
	v := &proxyTextureView{handle: NewHandle(), target: target, container: container, ctx: ctx}
	v.refs.AddRef()
	container.AddRef()
	return v
}

func (v *proxyTextureView) Handle() Handle { return v.handle }
func (v *proxyTextureView) AddRef() uint32 { return v.refs.AddRef() }

func (v *proxyTextureView) Release() uint32 {
	return v.refs.DropRef(v.teardown)
}

func (v *proxyTextureView) teardown() {
	v.ctx.OnProxyDestroy(v.target)
	v.target.Release()
	v.container.Release()
}

func (v *proxyTextureView) Texture() Texture {
	v.container.AddRef()
	return v.container
}
