package gpuproxy

import (
	"fmt"
	"log/slog"
)

// Tracker maintains bidirectional mappings between target GPU objects and
// their proxy wrappers, keyed by [Handle] identity:
//
//   - target → proxy: find the existing proxy for a target object
//   - proxy → target: recover the target behind a proxy a caller passed in
//
// Both directions are always modified together, so for every entry (t, p)
// in one map there is exactly the entry (p, t) in the other.
//
// # Weak reference semantics
//
// The Tracker does NOT own the objects it tracks and never calls AddRef on
// what it stores. An entry implies nothing about the referenced object's
// liveness; in the reference-counting model of the proxied API the stored
// references are weak. If the tracker took references of its own it would
// close the cycle target ↔ proxy ↔ tracker and no pair could ever reach a
// zero count. This design requires the proxy lifecycle to remove mappings
// via [Tracker.OnProxyDestroy] exactly when a proxy is torn down.
//
// A Tracker has no internal synchronization; [Context] serializes access.
type Tracker struct {
	targetToProxy map[Handle]Referenced
	proxyToTarget map[Handle]Referenced

	// Diagnostics configuration, owned by the enclosing context.
	// A nil log falls back to the package logger.
	log     *slog.Logger
	observe func(Event)
	label   string
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		targetToProxy: make(map[Handle]Referenced),
		proxyToTarget: make(map[Handle]Referenced),
	}
}

// logger returns the tracker's logger, falling back to the package logger.
func (t *Tracker) logger() *slog.Logger {
	if t.log != nil {
		return t.log
	}
	return Logger()
}

// emit delivers a tracking event to the observer, if one is configured.
func (t *Tracker) emit(kind EventKind, target, proxy Handle) {
	if t.observe != nil {
		t.observe(Event{Kind: kind, Target: target, Proxy: proxy, Label: t.label})
	}
}

// TryEnsureProxy returns the proxy for target, creating one if necessary.
//
// If a proxy already exists for target's identity, the existing proxy is
// returned with its reference count incremented on the caller's behalf, and
// the caller's input reference to target is released (the caller hands its
// reference over; it must not Release target itself after this returns).
//
// Otherwise build(target) runs. The closure takes over the caller's target
// reference and must return a proxy holding it, with a reference count of
// one. On success both mapping directions are inserted and the new proxy is
// returned. If build fails, its error is returned verbatim and nothing is
// inserted; the closure remains responsible for the target reference it
// consumed.
//
// For any sequence of ensure calls with the same target identity, build runs
// at most once and every call yields a proxy with the same identity.
func (t *Tracker) TryEnsureProxy(target Referenced, build func(Referenced) (Referenced, error)) (Referenced, error) {
	if isNilRef(target) {
		return nil, ErrNilTarget
	}
	th := target.Handle()
	if proxy, ok := t.targetToProxy[th]; ok {
		// Hand out one more reference to the existing proxy and drop
		// the caller's surplus target reference.
		proxy.AddRef()
		target.Release()
		t.logger().Debug("found existing proxy",
			"type", fmt.Sprintf("%T", proxy), "target", th, "proxy", proxy.Handle())
		t.emit(EventReuse, th, proxy.Handle())
		return proxy, nil
	}

	// No proxy yet: the target reference moves into the new proxy and the
	// proxy's count stays at one.
	proxy, err := build(target)
	if err != nil {
		return nil, err
	}
	ph := proxy.Handle()
	t.targetToProxy[th] = proxy
	t.proxyToTarget[ph] = target

	t.logger().Debug("created new proxy",
		"type", fmt.Sprintf("%T", proxy), "target", th, "proxy", ph)
	t.emit(EventCreate, th, ph)
	return proxy, nil
}

// EnsureProxy is [Tracker.TryEnsureProxy] for infallible build closures.
// It returns nil only when target is nil.
func (t *Tracker) EnsureProxy(target Referenced, build func(Referenced) Referenced) Referenced {
	proxy, err := t.TryEnsureProxy(target, func(target Referenced) (Referenced, error) {
		return build(target), nil
	})
	if err != nil {
		t.logger().Warn("ensure failed", "err", err)
		return nil
	}
	return proxy
}

// GetProxy returns the existing proxy for target, or (nil, false) if no
// mapping exists. Unlike the ensure calls it never creates a proxy and the
// caller keeps its target reference. The found proxy's reference count is
// incremented: a new owned reference is being handed out.
func (t *Tracker) GetProxy(target Referenced) (Referenced, bool) {
	if isNilRef(target) {
		t.logger().Warn("proxy lookup with nil target")
		return nil, false
	}
	th := target.Handle()
	proxy, ok := t.targetToProxy[th]
	if !ok {
		t.logger().Warn("no proxy found", "target", th)
		t.emit(EventMiss, th, NilHandle)
		return nil, false
	}
	proxy.AddRef()
	t.logger().Debug("retrieved proxy",
		"type", fmt.Sprintf("%T", proxy), "target", th, "proxy", proxy.Handle())
	return proxy, true
}

// GetTarget returns the target behind proxy, or (nil, false) if proxy is
// unmapped. A nil proxy is also reported as (nil, false); callers that need
// to distinguish a legitimately-nil input use [Tracker.GetTargetNullable].
//
// No reference counts change: the returned target is borrowed and is only
// valid for the duration of the call the caller is forwarding.
func (t *Tracker) GetTarget(proxy Referenced) (Referenced, bool) {
	if isNilRef(proxy) {
		t.logger().Warn("target lookup with nil proxy, treating as not found")
		return nil, false
	}
	return t.lookupTarget(proxy.Handle())
}

// GetTargetNullable is [Tracker.GetTarget] for nullable parameters: a nil
// proxy input is valid and yields an explicit (nil, true), distinct from the
// (nil, false) of a present-but-unmapped proxy. Forwarding sites use it for
// API parameters where nil means "unbind" or "none".
func (t *Tracker) GetTargetNullable(proxy Referenced) (Referenced, bool) {
	if isNilRef(proxy) {
		t.logger().Debug("resolved nil proxy to nil target")
		return nil, true
	}
	return t.lookupTarget(proxy.Handle())
}

func (t *Tracker) lookupTarget(ph Handle) (Referenced, bool) {
	target, ok := t.proxyToTarget[ph]
	if !ok {
		t.logger().Warn("no target found", "proxy", ph)
		t.emit(EventMiss, NilHandle, ph)
		return nil, false
	}
	t.logger().Debug("retrieved target",
		"type", fmt.Sprintf("%T", target), "target", target.Handle(), "proxy", ph)
	return target, true
}

// OnProxyDestroy removes the mapping pair for a proxy that is being torn
// down. It is keyed by the target because it is called from the proxy's own
// teardown, where the proxy already holds its target reference; no lookup
// through the proxy side is needed.
//
// Must be called exactly once per inserted proxy, at the moment the proxy's
// last external reference is released: earlier would let a later ensure
// build a duplicate proxy for a live target, later would let the stale pair
// be returned by lookups. A call with no mapping is a logged no-op, so a
// double teardown or a teardown after a failed build is harmless.
func (t *Tracker) OnProxyDestroy(target Referenced) {
	if isNilRef(target) {
		t.logger().Warn("proxy destroyed with nil target")
		t.emit(EventOrphanTeardown, NilHandle, NilHandle)
		return
	}
	th := target.Handle()
	proxy, ok := t.targetToProxy[th]
	if !ok {
		t.logger().Warn("proxy destroyed, but no mapping found", "target", th)
		t.emit(EventOrphanTeardown, th, NilHandle)
		return
	}
	ph := proxy.Handle()
	delete(t.targetToProxy, th)
	delete(t.proxyToTarget, ph)
	t.logger().Debug("proxy destroyed",
		"type", fmt.Sprintf("%T", proxy), "target", th, "proxy", ph)
}

// Len returns the number of tracked pairs.
func (t *Tracker) Len() int {
	return len(t.targetToProxy)
}
