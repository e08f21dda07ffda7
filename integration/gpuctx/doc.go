// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gpuctx makes a gpucontext.DeviceProvider interceptable.
//
// Wrap takes the provider an application already uses and returns a
// drop-in replacement whose Device, Queue, and Adapter are stable proxies
// tracked in a gpuproxy context. Repeated calls hand back the same proxy
// for the same underlying object, so identity comparisons keep working on
// the wrapped side, and every access can be observed or logged through
// the usual gpuproxy options.
//
// # Usage
//
//	provider, err := gpuctx.Wrap(app.GPUContextProvider(),
//	    gpuproxy.WithLabel("main window"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Hand the wrapped provider to code expecting the real one.
//	canvas, err := ggcanvas.New(provider, 800, 600)
//
// # Thread Safety
//
// Provider is safe for concurrent use; tracking is serialized by the
// gpuproxy context.
package gpuctx
