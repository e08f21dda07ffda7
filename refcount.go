package gpuproxy

import "sync/atomic"

// RefCount is an embeddable atomic reference count implementing the shared
// ownership convention of the proxied API: an object is destroyed when its
// last external reference is released, and the teardown runs synchronously
// on whichever goroutine dropped that last reference.
//
// The zero value has a count of zero; constructors take their initial
// reference by calling AddRef once. Embedding a RefCount provides the
// AddRef method of [Referenced]; the embedding type implements Release
// itself so it can supply its teardown:
//
//	func (t *texture) Release() uint32 {
//	    return t.refs.DropRef(t.teardown)
//	}
//
// RefCount must not be copied after first use.
type RefCount struct {
	n atomic.Int32
}

// AddRef increments the reference count and returns the new count.
// It is cheap and never fails.
func (r *RefCount) AddRef() uint32 {
	return uint32(r.n.Add(1))
}

// DropRef decrements the reference count and returns the new count.
// When the count reaches zero, onZero runs before DropRef returns.
//
// A drop below zero indicates an over-release by the caller; it is logged
// and reported as zero rather than running teardown twice.
func (r *RefCount) DropRef(onZero func()) uint32 {
	n := r.n.Add(-1)
	switch {
	case n == 0:
		if onZero != nil {
			onZero()
		}
		return 0
	case n < 0:
		Logger().Warn("reference over-released", "count", n)
		return 0
	default:
		return uint32(n)
	}
}

// Refs returns the current reference count. Diagnostic use only: the value
// may be stale by the time the caller looks at it.
func (r *RefCount) Refs() uint32 {
	n := r.n.Load()
	if n < 0 {
		return 0
	}
	return uint32(n)
}
