package gpuproxy

import (
	"log/slog"
	"sync"
)

// Context is the shared state behind every proxy belonging to one device
// session: one [Tracker] plus immutable [Config], serialized behind a
// single mutex.
//
// A Context is created once per top-level device (see [Open]) and shared by
// pointer among all proxies of that session. All methods are safe for
// concurrent use; each acquires the context lock for the duration of one
// tracker operation, so operations are atomic with respect to each other
// and no caller ever observes a partially updated mapping pair.
//
// Context must not be copied after creation.
type Context struct {
	mu      sync.Mutex
	tracker *Tracker
	cfg     Config
}

// NewContext creates a context with its own empty tracker.
func NewContext(opts ...Option) *Context {
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	tracker := NewTracker()
	tracker.log = cfg.Logger
	tracker.observe = cfg.Observer
	tracker.label = cfg.Label
	return &Context{tracker: tracker, cfg: cfg}
}

// Config returns the context configuration.
func (c *Context) Config() Config {
	return c.cfg
}

// logger returns the context logger, falling back to the package logger.
func (c *Context) logger() *slog.Logger {
	if c.cfg.Logger != nil {
		return c.cfg.Logger
	}
	return Logger()
}

// TryEnsureProxy calls [Tracker.TryEnsureProxy] under the context lock.
// The build closure runs while the lock is held, which is what makes the
// at-most-one-build guarantee hold under concurrent ensure calls; it must
// not call back into the context.
func (c *Context) TryEnsureProxy(target Referenced, build func(Referenced) (Referenced, error)) (Referenced, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracker.TryEnsureProxy(target, build)
}

// EnsureProxy calls [Tracker.EnsureProxy] under the context lock.
func (c *Context) EnsureProxy(target Referenced, build func(Referenced) Referenced) Referenced {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracker.EnsureProxy(target, build)
}

// GetProxy calls [Tracker.GetProxy] under the context lock.
func (c *Context) GetProxy(target Referenced) (Referenced, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracker.GetProxy(target)
}

// GetTarget calls [Tracker.GetTarget] under the context lock.
func (c *Context) GetTarget(proxy Referenced) (Referenced, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracker.GetTarget(proxy)
}

// GetTargetNullable calls [Tracker.GetTargetNullable] under the context lock.
func (c *Context) GetTargetNullable(proxy Referenced) (Referenced, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracker.GetTargetNullable(proxy)
}

// OnProxyDestroy calls [Tracker.OnProxyDestroy] under the context lock.
func (c *Context) OnProxyDestroy(target Referenced) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tracker.OnProxyDestroy(target)
}

// Len returns the number of tracked pairs.
func (c *Context) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracker.Len()
}

// The typed helpers below let one context serve every proxied interface
// kind without per-type tracker code: they adapt the untyped Referenced
// operations to the concrete interface of the call site.

// TryEnsure is the typed form of [Context.TryEnsureProxy].
// It returns [ErrProxyType] if the existing proxy for target does not
// implement T. A failed ensure commits nothing against the caller: the
// caller keeps its target reference and owes no proxy release.
func TryEnsure[T Referenced](c *Context, target T, build func(T) (T, error)) (T, error) {
	var zero T
	proxy, err := c.TryEnsureProxy(target, func(target Referenced) (Referenced, error) {
		return build(target.(T))
	})
	if err != nil {
		return zero, err
	}
	typed, ok := proxy.(T)
	if !ok {
		// Only the reuse path can produce a mismatch (the build closure
		// returns T). Undo its accounting: give back the proxy reference
		// taken on the caller's behalf and restore the caller's target
		// reference, which the reuse path surrendered.
		proxy.Release()
		target.AddRef()
		return zero, ErrProxyType
	}
	return typed, nil
}

// Ensure is the typed form of [Context.EnsureProxy].
func Ensure[T Referenced](c *Context, target T, build func(T) T) T {
	proxy, _ := TryEnsure(c, target, func(target T) (T, error) {
		return build(target), nil
	})
	return proxy
}

// ProxyFor is the typed form of [Context.GetProxy].
func ProxyFor[T Referenced](c *Context, target T) (T, bool) {
	var zero T
	proxy, ok := c.GetProxy(target)
	if !ok {
		return zero, false
	}
	typed, ok := proxy.(T)
	if !ok {
		Logger().Warn("proxy does not implement requested type",
			"proxy", proxy.Handle())
		proxy.Release()
		return zero, false
	}
	return typed, true
}

// TargetFor is the typed form of [Context.GetTarget].
func TargetFor[T Referenced](c *Context, proxy T) (T, bool) {
	var zero T
	target, ok := c.GetTarget(proxy)
	if !ok {
		return zero, false
	}
	typed, ok := target.(T)
	if !ok {
		Logger().Warn("target does not implement requested type",
			"target", target.Handle())
		return zero, false
	}
	return typed, true
}

// TargetForNullable is the typed form of [Context.GetTargetNullable]:
// a nil proxy yields (zero, true), a present-but-unmapped proxy yields
// (zero, false).
func TargetForNullable[T Referenced](c *Context, proxy T) (T, bool) {
	var zero T
	target, ok := c.GetTargetNullable(proxy)
	if !ok {
		return zero, false
	}
	if target == nil {
		return zero, true
	}
	typed, ok := target.(T)
	if !ok {
		Logger().Warn("target does not implement requested type",
			"target", target.Handle())
		return zero, false
	}
	return typed, true
}
