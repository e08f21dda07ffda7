package gpuproxy

import "log/slog"

// Config holds the immutable configuration owned by a [Context].
// Build one through [Option] values passed to [NewContext] or [Open].
type Config struct {
	// Label identifies the context in diagnostics, typically the device
	// label. Empty by default.
	Label string

	// Logger overrides the package logger for this context.
	// Nil means use [Logger].
	Logger *slog.Logger

	// Observer receives tracking events, when set. It is invoked
	// synchronously while the context lock is held, so it must be cheap
	// and must not call back into the context.
	Observer func(Event)
}

// Option configures a [Context] during creation.
//
// Example:
//
//	ctx := gpuproxy.NewContext(
//	    gpuproxy.WithLabel("main-device"),
//	    gpuproxy.WithLogger(slog.Default()),
//	)
type Option func(*Config)

// WithLabel sets the context label used in diagnostics and events.
func WithLabel(label string) Option {
	return func(c *Config) {
		c.Label = label
	}
}

// WithLogger sets a dedicated logger for the context, overriding the
// package logger configured via [SetLogger]. Passing nil restores the
// package logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithObserver registers a callback for tracking events.
// See [Config.Observer] for the constraints the callback must respect.
func WithObserver(fn func(Event)) Option {
	return func(c *Config) {
		c.Observer = fn
	}
}
