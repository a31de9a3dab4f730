// Package event provides a topic-matching event bus.
//
// Publishers emit on a topic and never see their subscribers. Subscribers
// register a pattern and receive every emission whose topic matches it.
//
// # Topics
//
// A topic string may name several topics at once, separated by '|' or ',':
//
//	bus.Emit("user.login|audit", user)   // delivered as "user.login" and "audit"
//
// Empty names are dropped, so "a,,b" is the same as "a,b".
//
// # Patterns
//
// On and Once accept a string, a *regexp.Regexp, a topic.Pattern, or a
// slice of those nested to any depth. Strings are regular expressions and
// are not anchored, so "user" matches "user.login":
//
//	bus.On("^user\\.", h)
//	bus.On([]any{topic.Literal("audit"), topic.Glob("store.**")}, h)
//
// A subscription fires at most once per emission, however many of its
// patterns match.
//
// # Errors
//
// When an error is emitted as the only argument it is marked, and emitting
// the same error again dispatches nothing. This lets an error bubble up
// through several layers that each re-emit it without every subscriber
// seeing it twice. *Error keeps the mark on itself. Other pointer errors
// are remembered by identity in a weak set, so collected errors drop out of
// it. Errors that are not pointers, such as syscall.Errno, have no identity
// and are never deduplicated.
//
// # Failure
//
// A panicking handler unwinds into the caller of Emit and later handlers
// do not run. Build the bus with WithRecover to isolate handlers instead.
//
// # Thread Safety
//
// Bus is safe for concurrent use. Each Emit works on a snapshot of the
// subscriptions, so handlers may subscribe and unsubscribe freely.
package event
