// Package gpuproxy provides transparent proxy wrappers for GPU API objects.
//
// A proxy object is a drop-in replacement for a real GPU object: it exposes
// the same interface, forwards every call to the underlying target, and lets
// the surrounding application observe, log, or intercept the traffic between
// an application and its GPU driver.
//
// The heart of the package is the identity tracking machinery:
//
//   - [Tracker] maintains a bidirectional mapping between target objects and
//     their proxies, keyed by opaque [Handle] identities. It guarantees that
//     at most one proxy exists per target, recovers the target when a caller
//     hands a proxy back into an API call, and drops both mapping directions
//     exactly once, when the proxy is torn down.
//   - [Context] wraps one Tracker behind a mutex together with immutable
//     configuration. One Context is shared by every proxy belonging to one
//     device session, and is safe for concurrent use from any goroutine.
//
// The tracker holds no references of its own: it never extends the lifetime
// of a target or a proxy. Lifetimes are governed entirely by the reference
// counting discipline of the proxied API (see [Referenced] and [RefCount]).
//
// On top of the core, the package defines a small GPU resource model
// ([Device], [Queue], [Buffer], [Texture], [TextureView], [SwapChain]) and
// proxy implementations for it. Real implementations are supplied by driver
// packages (see [RegisterDriver] and backend/wgpu); applications obtain a
// proxied device through [Open]:
//
//	import _ "github.com/gogpu/gpuproxy/backend/wgpu"
//
//	dev, err := gpuproxy.Open("wgpu", gpuproxy.DeviceDescriptor{Label: "main"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dev.Release()
//
// For proxying gogpu's device-sharing interfaces, see integration/gpuctx.
//
// By default gpuproxy produces no log output; call [SetLogger] to enable
// structured diagnostics for every create, reuse, lookup, and teardown.
package gpuproxy
