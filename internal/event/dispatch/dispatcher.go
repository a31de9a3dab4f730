package dispatch

import "time"

// Result represents the outcome of a handler execution.
type Result struct {
	// Panicked is true if the handler panicked.
	Panicked bool

	// PanicValue is the value passed to panic(), if Panicked is true.
	PanicValue any

	// PanicStack is the stack trace at the point of panic.
	PanicStack []byte

	// Duration is how long the handler took to execute.
	Duration time.Duration
}

// IsPanic returns true if the result indicates a panic.
func (r Result) IsPanic() bool {
	return r.Panicked
}
