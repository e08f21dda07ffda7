package gpuproxy

import (
	"reflect"
	"sync/atomic"
)

// Handle is an opaque, stable identity for one live object.
//
// A Handle is pointer-sized and unique for the duration of the object's
// lifetime. The tracking machinery uses handles purely as map keys and never
// dereferences them; a handle on its own confers no ownership and must not
// be used to extend an object's lifetime.
type Handle uintptr

// NilHandle is the zero Handle. No live object ever has it.
const NilHandle Handle = 0

// handleCounter feeds NewHandle. Starts at 1 so NilHandle is never issued.
var handleCounter atomic.Uint64

// NewHandle returns a fresh process-unique Handle.
//
// Proxy implementations and drivers without a natural native identity
// (a pointer, a kernel handle) allocate their handles here.
// NewHandle is safe for concurrent use.
func NewHandle() Handle {
	return Handle(handleCounter.Add(1))
}

// Referenced is the contract every tracked object satisfies, target and
// proxy alike. It is the only thing the tracking core knows about the
// objects whose identities it stores.
//
// Handle must return the same value for the whole lifetime of the object.
// AddRef and Release follow the shared-ownership convention of the proxied
// API: AddRef is cheap and never fails; Release drops one reference and
// returns the new count, tearing the object down when it reaches zero.
type Referenced interface {
	Handle() Handle
	AddRef() uint32
	Release() uint32
}

// IdentityOf derives a Handle from an arbitrary pointer-shaped Go value:
// a pointer, map, channel, function, slice, or unsafe pointer.
//
// It is intended for integrations that proxy plain Go interfaces with no
// native handle of their own (see integration/gpuctx). Values that carry no
// pointer identity, including nil, yield NilHandle.
func IdentityOf(v any) Handle {
	if v == nil {
		return NilHandle
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Map, reflect.Chan, reflect.Func:
		return Handle(rv.Pointer())
	case reflect.Slice:
		if rv.Len() == 0 && rv.Cap() == 0 {
			return NilHandle
		}
		return Handle(rv.Pointer())
	default:
		return NilHandle
	}
}

// isNilRef reports whether r is absent: either a nil interface value or a
// typed nil pointer wrapped in a non-nil interface. The second case is what
// a forwarding site produces when it passes an optional proxy parameter
// through as a concrete nil.
func isNilRef(r Referenced) bool {
	if r == nil {
		return true
	}
	rv := reflect.ValueOf(r)
	switch rv.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Map, reflect.Chan, reflect.Func, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
