package event

import (
	"sync/atomic"
	"time"
)

// Event is what a handler receives for one emission.
// It is shared by every handler of that emission.
type Event struct {
	// Topic is the topic string passed to Emit.
	Topic string

	// Names are the topic names Topic was split into.
	Names []string

	// Args are the positional arguments passed to Emit.
	Args []any

	prevented atomic.Bool
}

// PreventDefault marks the emission as cancelled.
// Emit still runs the remaining handlers but reports false.
func (e *Event) PreventDefault() {
	e.prevented.Store(true)
}

// DefaultPrevented reports whether any handler called PreventDefault.
func (e *Event) DefaultPrevented() bool {
	return e.prevented.Load()
}

// Arg returns the i-th argument, or nil if there is none.
func (e *Event) Arg(i int) any {
	if i < 0 || i >= len(e.Args) {
		return nil
	}
	return e.Args[i]
}

// Err returns the argument if the event carries exactly one error.
func (e *Event) Err() error {
	if len(e.Args) != 1 {
		return nil
	}
	err, _ := e.Args[0].(error)
	return err
}

// Handler processes an emitted event.
type Handler func(evt *Event)

// Spread adapts a function taking positional arguments into a Handler.
func Spread(fn func(args ...any)) Handler {
	return func(evt *Event) {
		fn(evt.Args...)
	}
}

// Unsubscribe removes a subscription. Calling it more than once is a no-op.
type Unsubscribe func()

// Stats contains event bus statistics.
type Stats struct {
	// Emitted is the number of Emit calls that reached dispatch.
	Emitted uint64

	// Delivered is the number of handler invocations that returned normally.
	Delivered uint64

	// Suppressed is the number of emissions skipped because their error
	// argument had already been propagated.
	Suppressed uint64

	// Prevented is the number of emissions on which a handler called
	// PreventDefault.
	Prevented uint64

	// Panics is the number of recovered handler panics.
	Panics uint64

	// Subscriptions is the current number of live subscriptions.
	Subscriptions int

	// HandlerTime is the cumulative time spent in handlers. It is only
	// tracked when handlers are isolated with WithRecover.
	HandlerTime time.Duration

	// AvgHandlerTime is HandlerTime divided by the number of handler calls.
	AvgHandlerTime time.Duration
}
