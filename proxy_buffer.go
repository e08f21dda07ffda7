package gpuproxy

// proxyBuffer is a pure pass-through wrapper; buffers create no child
// objects and take no object parameters, so only the lifecycle is
// interesting.
type proxyBuffer struct {
	refs   RefCount
	handle Handle
	target Buffer
	ctx    *Context
}

var _ Buffer = (*proxyBuffer)(nil)

func newProxyBuffer(target Buffer, ctx *Context) *proxyBuffer {
	b := &proxyBuffer{handle: NewHandle(), target: target, ctx: ctx}
	b.refs.AddRef()
	return b
}

func (b *proxyBuffer) Handle() Handle { return b.handle }
func (b *proxyBuffer) AddRef() uint32 { return b.refs.AddRef() }

func (b *proxyBuffer) Release() uint32 {
	return b.refs.DropRef(b.teardown)
}

func (b *proxyBuffer) teardown() {
	b.ctx.OnProxyDestroy(b.target)
	b.target.Release()
}

func (b *proxyBuffer) Label() string { return b.target.Label() }
func (b *proxyBuffer) Size() uint64  { return b.target.Size() }
