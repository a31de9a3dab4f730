// Package dispatch runs event handlers with panic isolation.
//
// The event bus calls handlers directly by default, so a panicking handler
// unwinds into the emitter. When a bus is built with isolation enabled it
// routes every handler call through a SyncDispatcher instead: the call
// still runs synchronously on the emitter's goroutine, but a panic is
// recovered and recorded in the Result, and dispatch moves on to the next
// handler. The dispatcher also accumulates time spent in handlers, which
// the bus reports through its own statistics.
//
// # Usage
//
//	dispatcher := dispatch.NewSyncDispatcher()
//	result := dispatcher.Dispatch(func() { handler(evt) })
//	if result.IsPanic() {
//	    log.Error("handler panic", "value", result.PanicValue)
//	}
package dispatch
