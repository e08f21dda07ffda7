package gpuproxy

// EventKind classifies a tracking event.
type EventKind int

const (
	// EventCreate is emitted when a new proxy is built and inserted.
	EventCreate EventKind = iota

	// EventReuse is emitted when an ensure call finds an existing proxy.
	EventReuse

	// EventMiss is emitted when a pure lookup finds no mapping.
	EventMiss

	// EventOrphanTeardown is emitted when a teardown notification arrives
	// for a target with no mapping. Tolerated as a no-op: it legitimately
	// happens on double teardown, or when the proxy was never inserted
	// because its build failed.
	EventOrphanTeardown
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventCreate:
		return "create"
	case EventReuse:
		return "reuse"
	case EventMiss:
		return "miss"
	case EventOrphanTeardown:
		return "orphan-teardown"
	default:
		return "unknown"
	}
}

// Event describes one tracking event. Events are an observability hook
// only: they carry identities, never object references, and emitting them
// is best-effort. See [WithObserver].
type Event struct {
	// Kind is the event classification.
	Kind EventKind

	// Target is the identity of the target object, when known.
	Target Handle

	// Proxy is the identity of the proxy object, when known.
	Proxy Handle

	// Label is the owning context's label, if one was configured.
	Label string
}
