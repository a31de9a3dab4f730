package dispatch

import (
	"runtime/debug"
	"time"
)

// execute runs fn, recovering a panic into the result and timing the call.
func execute(fn func()) (result Result) {
	start := time.Now()

	defer func() {
		result.Duration = time.Since(start)

		if r := recover(); r != nil {
			result.Panicked = true
			result.PanicValue = r
			result.PanicStack = debug.Stack()
		}
	}()

	fn()
	return result
}
