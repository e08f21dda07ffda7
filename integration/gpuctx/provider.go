// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpuctx

import (
	"errors"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gpuproxy"
	"github.com/gogpu/gputypes"
)

// ErrNilProvider is returned when a nil DeviceProvider is passed to Wrap.
var ErrNilProvider = errors.New("gpuctx: nil DeviceProvider")

// ref adapts a plain gpucontext object to the tracking contract using its
// pointer identity. The wrapped objects are garbage collected, not
// reference counted, so AddRef and Release are no-ops.
type ref struct {
	obj any
}

func (r ref) Handle() gpuproxy.Handle { return gpuproxy.IdentityOf(r.obj) }
func (r ref) AddRef() uint32          { return 1 }
func (r ref) Release() uint32         { return 1 }

// Provider is a drop-in gpucontext.DeviceProvider whose objects are
// tracked proxies. Create one with [Wrap].
type Provider struct {
	inner gpucontext.DeviceProvider
	ctx   *gpuproxy.Context
}

var _ gpucontext.DeviceProvider = (*Provider)(nil)

// Wrap returns a provider that proxies every object inner hands out.
func Wrap(inner gpucontext.DeviceProvider, opts ...gpuproxy.Option) (*Provider, error) {
	if inner == nil {
		return nil, ErrNilProvider
	}
	return &Provider{inner: inner, ctx: gpuproxy.NewContext(opts...)}, nil
}

// Device returns a proxy for the provider's device. The same underlying
// device always resolves to the same proxy.
func (p *Provider) Device() gpucontext.Device {
	inner := p.inner.Device()
	if inner == nil {
		return nil
	}
	proxy, err := p.ctx.TryEnsureProxy(ref{obj: inner}, func(gpuproxy.Referenced) (gpuproxy.Referenced, error) {
		d := &deviceProxy{handle: gpuproxy.NewHandle(), inner: inner, ctx: p.ctx}
		d.refs.AddRef()
		return d, nil
	})
	if err != nil {
		gpuproxy.Logger().Warn("gpuctx: device tracking failed", "err", err)
		return inner
	}
	return proxy.(*deviceProxy)
}

// Queue returns a proxy for the provider's queue.
func (p *Provider) Queue() gpucontext.Queue {
	inner := p.inner.Queue()
	if inner == nil {
		return nil
	}
	proxy, err := p.ctx.TryEnsureProxy(ref{obj: inner}, func(gpuproxy.Referenced) (gpuproxy.Referenced, error) {
		q := &queueProxy{handle: gpuproxy.NewHandle(), inner: inner}
		q.refs.AddRef()
		return q, nil
	})
	if err != nil {
		gpuproxy.Logger().Warn("gpuctx: queue tracking failed", "err", err)
		return inner
	}
	return proxy.(*queueProxy)
}

// Adapter returns a proxy for the provider's adapter.
func (p *Provider) Adapter() gpucontext.Adapter {
	inner := p.inner.Adapter()
	if inner == nil {
		return nil
	}
	proxy, err := p.ctx.TryEnsureProxy(ref{obj: inner}, func(gpuproxy.Referenced) (gpuproxy.Referenced, error) {
		a := &adapterProxy{handle: gpuproxy.NewHandle(), inner: inner}
		a.refs.AddRef()
		return a, nil
	})
	if err != nil {
		gpuproxy.Logger().Warn("gpuctx: adapter tracking failed", "err", err)
		return inner
	}
	return proxy.(*adapterProxy)
}

// SurfaceFormat forwards to the wrapped provider.
func (p *Provider) SurfaceFormat() gputypes.TextureFormat {
	return p.inner.SurfaceFormat()
}

// Unwrap resolves a proxy handed out by this provider back to the real
// object. It reports false for objects this provider never produced.
func (p *Provider) Unwrap(obj any) (any, bool) {
	proxy, ok := obj.(gpuproxy.Referenced)
	if !ok {
		return nil, false
	}
	target, ok := p.ctx.GetTarget(proxy)
	if !ok {
		return nil, false
	}
	return target.(ref).obj, true
}

// Tracked returns the number of live proxies.
func (p *Provider) Tracked() int {
	return p.ctx.Len()
}

// deviceProxy forwards the gpucontext device contract and removes its
// mapping on Destroy. Like the objects it wraps it is garbage collected,
// so Release performs no teardown; Destroy is the explicit end of life.
type deviceProxy struct {
	refs   gpuproxy.RefCount
	handle gpuproxy.Handle
	inner  gpucontext.Device
	ctx    *gpuproxy.Context
}

var _ gpucontext.Device = (*deviceProxy)(nil)

func (d *deviceProxy) Handle() gpuproxy.Handle { return d.handle }
func (d *deviceProxy) AddRef() uint32          { return d.refs.AddRef() }
func (d *deviceProxy) Release() uint32         { return d.refs.DropRef(nil) }

func (d *deviceProxy) Poll(wait bool) {
	d.inner.Poll(wait)
}

func (d *deviceProxy) Destroy() {
	d.ctx.OnProxyDestroy(ref{obj: d.inner})
	d.inner.Destroy()
}

type queueProxy struct {
	refs   gpuproxy.RefCount
	handle gpuproxy.Handle
	inner  gpucontext.Queue
}

var _ gpucontext.Queue = (*queueProxy)(nil)

func (q *queueProxy) Handle() gpuproxy.Handle { return q.handle }
func (q *queueProxy) AddRef() uint32          { return q.refs.AddRef() }
func (q *queueProxy) Release() uint32         { return q.refs.DropRef(nil) }

type adapterProxy struct {
	refs   gpuproxy.RefCount
	handle gpuproxy.Handle
	inner  gpucontext.Adapter
}

var _ gpucontext.Adapter = (*adapterProxy)(nil)

func (a *adapterProxy) Handle() gpuproxy.Handle { return a.handle }
func (a *adapterProxy) AddRef() uint32          { return a.refs.AddRef() }
func (a *adapterProxy) Release() uint32         { return a.refs.DropRef(nil) }
