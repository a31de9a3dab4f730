package store

import "github.com/dshills/statebus/internal/value"

// Action computes the next value from a snapshot of the current one.
type Action[S any] func(current S) S

// Value lifts a literal into an Action.
func Value[S any](v S) Action[S] {
	return func(S) S { return v }
}

// Listener transforms a candidate value before it is committed.
// prev is a snapshot of the value before the write.
type Listener[S any] func(next, prev S) S

// Filter decides whether a listener runs for a candidate.
// A rejected candidate passes through the listener unchanged.
type Filter func(next, prev any) bool

// Fields accepts a candidate when at least one of the named fields differs
// from the previous value. Names may be dot paths into nested maps or
// exported struct fields.
func Fields(names ...string) Filter {
	return func(next, prev any) bool {
		for _, name := range names {
			if value.FieldChanged(next, prev, name) {
				return true
			}
		}
		return false
	}
}

// When accepts a candidate when pred returns true.
func When[S any](pred func(next, prev S) bool) Filter {
	return func(next, prev any) bool {
		n, _ := next.(S)
		p, _ := prev.(S)
		return pred(n, p)
	}
}

type listenerEntry[S any] struct {
	fn      Listener[S]
	filters []Filter
}

func (l *listenerEntry[S]) accepts(next, prev S) bool {
	for _, f := range l.filters {
		if !f(next, prev) {
			return false
		}
	}
	return true
}

func (l *listenerEntry[S]) run(next, prev S) S {
	if !l.accepts(next, prev) {
		return next
	}
	return l.fn(next, prev)
}
