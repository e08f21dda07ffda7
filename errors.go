package gpuproxy

import "errors"

// ErrNilTarget indicates a nil target was passed to an operation that
// requires a live object, such as EnsureProxy.
var ErrNilTarget = errors.New("gpuproxy: target must not be nil")

// ErrInvalidObject indicates an object passed as a call parameter is not a
// proxy known to the device's context, so the call cannot be forwarded.
// This is what an application sees when it mixes objects from different
// devices, or smuggles in an unwrapped real object.
var ErrInvalidObject = errors.New("gpuproxy: object is not a proxy of this context")

// ErrProxyType indicates the tracker already holds a proxy for the target,
// but the existing proxy does not implement the interface type requested by
// the caller. This happens when two call sites ensure the same target
// identity under unrelated interface types.
var ErrProxyType = errors.New("gpuproxy: existing proxy has a different interface type")
