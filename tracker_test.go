package gpuproxy

import (
	"errors"
	"sync/atomic"
	"testing"
)

// stubObject is a minimal Referenced implementation for tracker tests.
// It counts reference operations instead of owning anything.
type stubObject struct {
	handle   Handle
	addRefs  atomic.Int32
	releases atomic.Int32
}

func newStubObject() *stubObject {
	return &stubObject{handle: NewHandle()}
}

func (s *stubObject) Handle() Handle { return s.handle }

func (s *stubObject) AddRef() uint32 {
	return uint32(s.addRefs.Add(1))
}

func (s *stubObject) Release() uint32 {
	s.releases.Add(1)
	return 0
}

// checkBijection verifies the two maps mirror each other exactly.
func checkBijection(t *testing.T, tr *Tracker) {
	t.Helper()
	if len(tr.targetToProxy) != len(tr.proxyToTarget) {
		t.Fatalf("map cardinality mismatch: %d target entries, %d proxy entries",
			len(tr.targetToProxy), len(tr.proxyToTarget))
	}
	for th, proxy := range tr.targetToProxy {
		target, ok := tr.proxyToTarget[proxy.Handle()]
		if !ok {
			t.Fatalf("target %v maps to proxy %v, but reverse entry is missing", th, proxy.Handle())
		}
		if target.Handle() != th {
			t.Fatalf("reverse entry for proxy %v is %v, want %v", proxy.Handle(), target.Handle(), th)
		}
	}
}

func TestTryEnsureProxyBuildsOnce(t *testing.T) {
	tr := NewTracker()
	target := newStubObject()
	builds := 0

	p1, err := tr.TryEnsureProxy(target, func(got Referenced) (Referenced, error) {
		builds++
		if got != Referenced(target) {
			t.Errorf("build received %v, want the ensured target", got)
		}
		return newStubObject(), nil
	})
	if err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	if builds != 1 {
		t.Fatalf("expected one build, got %d", builds)
	}

	// A second ensure for the same identity must reuse, not rebuild.
	p2, err := tr.TryEnsureProxy(target, func(Referenced) (Referenced, error) {
		builds++
		return newStubObject(), nil
	})
	if err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if builds != 1 {
		t.Errorf("expected build to run once across the sequence, got %d", builds)
	}
	if p1.Handle() != p2.Handle() {
		t.Errorf("ensure returned different proxies: %v vs %v", p1.Handle(), p2.Handle())
	}
	if tr.Len() != 1 {
		t.Errorf("expected one tracked pair, got %d", tr.Len())
	}
	checkBijection(t, tr)

	// Reuse hands out a new proxy reference and drops the caller's
	// surplus target reference.
	proxy := p1.(*stubObject)
	if got := proxy.addRefs.Load(); got != 1 {
		t.Errorf("proxy AddRef called %d times, want 1", got)
	}
	if got := target.releases.Load(); got != 1 {
		t.Errorf("target Release called %d times, want 1", got)
	}
}

func TestTryEnsureProxyNilTarget(t *testing.T) {
	tr := NewTracker()

	_, err := tr.TryEnsureProxy(nil, func(Referenced) (Referenced, error) {
		t.Error("build must not run for a nil target")
		return nil, nil
	})
	if !errors.Is(err, ErrNilTarget) {
		t.Errorf("expected ErrNilTarget, got %v", err)
	}

	// A typed nil pointer behind the interface counts as nil too.
	var typedNil *stubObject
	_, err = tr.TryEnsureProxy(typedNil, func(Referenced) (Referenced, error) {
		t.Error("build must not run for a typed nil target")
		return nil, nil
	})
	if !errors.Is(err, ErrNilTarget) {
		t.Errorf("expected ErrNilTarget for typed nil, got %v", err)
	}
}

func TestTryEnsureProxyBuildError(t *testing.T) {
	tr := NewTracker()
	target := newStubObject()
	buildErr := errors.New("out of device memory")

	_, err := tr.TryEnsureProxy(target, func(Referenced) (Referenced, error) {
		return nil, buildErr
	})
	if !errors.Is(err, buildErr) {
		t.Fatalf("expected build error to propagate verbatim, got %v", err)
	}
	if tr.Len() != 0 {
		t.Errorf("failed build must not insert a mapping, got %d entries", tr.Len())
	}

	// The identity is still free: a later ensure builds.
	builds := 0
	_, err = tr.TryEnsureProxy(target, func(Referenced) (Referenced, error) {
		builds++
		return newStubObject(), nil
	})
	if err != nil {
		t.Fatalf("ensure after failed build: %v", err)
	}
	if builds != 1 {
		t.Errorf("expected build after earlier failure, got %d builds", builds)
	}
	checkBijection(t, tr)
}

func TestGetProxy(t *testing.T) {
	tr := NewTracker()
	target := newStubObject()
	proxy := newStubObject()

	if _, ok := tr.GetProxy(target); ok {
		t.Error("lookup on empty tracker must miss")
	}

	if _, err := tr.TryEnsureProxy(target, func(Referenced) (Referenced, error) {
		return proxy, nil
	}); err != nil {
		t.Fatal(err)
	}

	got, ok := tr.GetProxy(target)
	if !ok {
		t.Fatal("expected proxy after ensure")
	}
	if got.Handle() != proxy.Handle() {
		t.Errorf("got proxy %v, want %v", got.Handle(), proxy.Handle())
	}
	if refs := proxy.addRefs.Load(); refs != 1 {
		t.Errorf("lookup must AddRef the proxy once, got %d", refs)
	}
	// Pure lookup: the caller keeps its target reference.
	if rels := target.releases.Load(); rels != 0 {
		t.Errorf("lookup must not release the target, got %d releases", rels)
	}

	if _, ok := tr.GetProxy(nil); ok {
		t.Error("nil target lookup must miss")
	}
}

func TestGetTargetStrictVersusNullable(t *testing.T) {
	tr := NewTracker()
	target := newStubObject()
	proxy := newStubObject()
	if _, err := tr.TryEnsureProxy(target, func(Referenced) (Referenced, error) {
		return proxy, nil
	}); err != nil {
		t.Fatal(err)
	}

	// Mapped proxy: both variants resolve the target, without touching
	// reference counts.
	for _, lookup := range []func(Referenced) (Referenced, bool){tr.GetTarget, tr.GetTargetNullable} {
		got, ok := lookup(proxy)
		if !ok {
			t.Fatal("expected target for mapped proxy")
		}
		if got.Handle() != target.Handle() {
			t.Errorf("got target %v, want %v", got.Handle(), target.Handle())
		}
	}
	if refs := target.addRefs.Load(); refs != 0 {
		t.Errorf("reverse lookup must not AddRef the target, got %d", refs)
	}
	if refs := proxy.addRefs.Load(); refs != 0 {
		t.Errorf("reverse lookup must not AddRef the proxy, got %d", refs)
	}

	// Unmapped proxy: both variants miss.
	stranger := newStubObject()
	if _, ok := tr.GetTarget(stranger); ok {
		t.Error("strict lookup of unmapped proxy must miss")
	}
	if _, ok := tr.GetTargetNullable(stranger); ok {
		t.Error("nullable lookup of unmapped proxy must miss")
	}

	// Nil input: this is where the variants diverge, on the same state.
	if _, ok := tr.GetTarget(nil); ok {
		t.Error("strict lookup of nil proxy must report absent")
	}
	got, ok := tr.GetTargetNullable(nil)
	if !ok {
		t.Error("nullable lookup of nil proxy must report an explicit nil target")
	}
	if got != nil {
		t.Errorf("nullable lookup of nil proxy returned %v, want nil", got)
	}
}

func TestOnProxyDestroy(t *testing.T) {
	tr := NewTracker()
	target := newStubObject()
	proxy := newStubObject()
	if _, err := tr.TryEnsureProxy(target, func(Referenced) (Referenced, error) {
		return proxy, nil
	}); err != nil {
		t.Fatal(err)
	}

	tr.OnProxyDestroy(target)
	if tr.Len() != 0 {
		t.Fatalf("expected empty tracker after destroy, got %d entries", tr.Len())
	}
	if len(tr.proxyToTarget) != 0 {
		t.Fatal("reverse map must be emptied together with the forward map")
	}

	// Both lookup directions must now miss.
	if _, ok := tr.GetProxy(target); ok {
		t.Error("forward lookup after destroy must miss")
	}
	if _, ok := tr.GetTarget(proxy); ok {
		t.Error("reverse lookup after destroy must miss")
	}

	// Destroy with no mapping is a tolerated no-op: double teardown.
	tr.OnProxyDestroy(target)
	if tr.Len() != 0 {
		t.Error("orphan destroy must not alter state")
	}
	tr.OnProxyDestroy(nil)
}

func TestEnsureDestroyEnsureScenario(t *testing.T) {
	tr := NewTracker()
	target := newStubObject()
	w1 := newStubObject()
	w2 := newStubObject()

	mkW1 := func(Referenced) (Referenced, error) { return w1, nil }
	mkW2Called := false
	mkW2 := func(Referenced) (Referenced, error) {
		mkW2Called = true
		return w2, nil
	}

	got, err := tr.TryEnsureProxy(target, mkW1)
	if err != nil {
		t.Fatal(err)
	}
	if got.Handle() != w1.Handle() {
		t.Fatalf("first ensure returned %v, want w1", got.Handle())
	}
	checkBijection(t, tr)

	got, err = tr.TryEnsureProxy(target, mkW2)
	if err != nil {
		t.Fatal(err)
	}
	if got.Handle() != w1.Handle() {
		t.Errorf("second ensure returned %v, want w1", got.Handle())
	}
	if mkW2Called {
		t.Error("mkW2 must not run while the pair exists")
	}

	tr.OnProxyDestroy(target)
	if tr.Len() != 0 {
		t.Fatal("destroy must empty both maps")
	}

	got, err = tr.TryEnsureProxy(target, mkW2)
	if err != nil {
		t.Fatal(err)
	}
	if !mkW2Called {
		t.Error("mkW2 must run after the pair was removed")
	}
	if got.Handle() != w2.Handle() {
		t.Errorf("ensure after destroy returned %v, want w2", got.Handle())
	}
	checkBijection(t, tr)
}

func TestBijectionUnderChurn(t *testing.T) {
	tr := NewTracker()

	targets := make([]*stubObject, 32)
	for i := range targets {
		targets[i] = newStubObject()
		if _, err := tr.TryEnsureProxy(targets[i], func(Referenced) (Referenced, error) {
			return newStubObject(), nil
		}); err != nil {
			t.Fatal(err)
		}
	}
	checkBijection(t, tr)

	// Remove every other pair, re-ensure a few, and re-check.
	for i := 0; i < len(targets); i += 2 {
		tr.OnProxyDestroy(targets[i])
	}
	checkBijection(t, tr)
	if tr.Len() != len(targets)/2 {
		t.Fatalf("expected %d pairs, got %d", len(targets)/2, tr.Len())
	}

	for i := 0; i < 8; i += 2 {
		if _, err := tr.TryEnsureProxy(targets[i], func(Referenced) (Referenced, error) {
			return newStubObject(), nil
		}); err != nil {
			t.Fatal(err)
		}
	}
	checkBijection(t, tr)
}
