package gpuproxy

// proxyQueue forwards queue submissions, resolving proxy-typed parameters
// back to their targets before handing them to the real queue.
type proxyQueue struct {
	refs   RefCount
	handle Handle
	target Queue
	ctx    *Context
}

var _ Queue = (*proxyQueue)(nil)

func newProxyQueue(target Queue, ctx *Context) *proxyQueue {
	q := &proxyQueue{handle: NewHandle(), target: target, ctx: ctx}
	q.refs.AddRef()
	return q
}

func (q *proxyQueue) Handle() Handle { return q.handle }
func (q *proxyQueue) AddRef() uint32 { return q.refs.AddRef() }

func (q *proxyQueue) Release() uint32 {
	return q.refs.DropRef(q.teardown)
}

func (q *proxyQueue) teardown() {
	q.ctx.OnProxyDestroy(q.target)
	q.target.Release()
}

func (q *proxyQueue) WriteBuffer(dst Buffer, offset uint64, data []byte) error {
	target, ok := TargetFor(q.ctx, dst)
	if !ok {
		return ErrInvalidObject
	}
	return q.target.WriteBuffer(target, offset, data)
}

func (q *proxyQueue) WriteTexture(dst Texture, data []byte) error {
	target, ok := TargetFor(q.ctx, dst)
	if !ok {
		return ErrInvalidObject
	}
	return q.target.WriteTexture(target, data)
}
