package event

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"weak"
)

// Sentinel errors for the event bus.
var (
	// ErrInvalidTopic is returned when a topic pattern is empty or malformed.
	ErrInvalidTopic = errors.New("invalid topic")

	// ErrNilHandler is returned when a nil handler is provided.
	ErrNilHandler = errors.New("handler cannot be nil")

	// ErrHandlerPanic is matched by PanicError through errors.Is.
	ErrHandlerPanic = errors.New("handler panicked")
)

// PanicError wraps a recovered handler panic.
type PanicError struct {
	// SubscriptionID is the ID of the subscription whose handler panicked.
	SubscriptionID string

	// Topic is the topic being emitted.
	Topic string

	// Value is the value passed to panic().
	Value any

	// Stack is the stack trace at the time of the panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("handler panic for subscription %s on topic %q: %v", e.SubscriptionID, e.Topic, e.Value)
}

// Is allows errors.Is to match PanicError with ErrHandlerPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrHandlerPanic
}

// Error is an error value that remembers whether it has been emitted.
//
// Emitting an error as the only argument marks it, and later emissions of
// the same instance are dropped. Error keeps that mark on itself. Other
// pointer errors are tracked by identity in a process-wide weak set that
// does not keep them alive; errors that are not pointers have no identity
// and are never dropped.
type Error struct {
	msg        string
	err        error
	propagated atomic.Bool
}

// NewError returns an Error with the given message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// Wrap returns an Error wrapping err. Wrap(nil) returns nil.
func Wrap(err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.err == nil:
		return e.msg
	case e.msg == "":
		return e.err.Error()
	default:
		return e.msg + ": " + e.err.Error()
	}
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.err
}

// Propagated reports whether the error has been emitted.
func (e *Error) Propagated() bool {
	return e.propagated.Load()
}

// instance identifies a pointer error without keeping it reachable.
type instance struct {
	ptr weak.Pointer[byte]
	typ reflect.Type
}

func instanceOf(err error) (instance, bool) {
	rv := reflect.ValueOf(err)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return instance{}, false
	}
	// Zero-size values share one address.
	if rv.Type().Elem().Size() == 0 {
		return instance{}, false
	}
	return instance{ptr: weak.Make((*byte)(rv.UnsafePointer())), typ: rv.Type()}, true
}

const minSweep = 64

// instanceSet is a set of instances. Entries whose error has been
// collected are swept out as the set grows.
type instanceSet struct {
	mu      sync.Mutex
	items   map[instance]struct{}
	sweepAt int
}

func (s *instanceSet) add(i instance) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[i]; ok {
		return false
	}
	if s.items == nil {
		s.items = make(map[instance]struct{})
	}
	s.items[i] = struct{}{}
	if len(s.items) >= max(s.sweepAt, minSweep) {
		s.sweepLocked()
		s.sweepAt = 2 * len(s.items)
	}
	return true
}

func (s *instanceSet) has(i instance) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[i]
	return ok
}

func (s *instanceSet) remove(i instance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, i)
}

func (s *instanceSet) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
}

func (s *instanceSet) sweepLocked() {
	for i := range s.items {
		if i.ptr.Value() == nil {
			delete(s.items, i)
		}
	}
}

func (s *instanceSet) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

var propagated instanceSet

// MarkPropagated marks err as emitted and reports whether this call set
// the mark. It returns true for values that cannot be tracked.
func MarkPropagated(err error) bool {
	if err == nil {
		return true
	}
	if e, ok := err.(*Error); ok {
		if e == nil {
			return true
		}
		return e.propagated.CompareAndSwap(false, true)
	}
	i, ok := instanceOf(err)
	if !ok {
		return true
	}
	return propagated.add(i)
}

// IsPropagated reports whether err carries the emitted mark.
func IsPropagated(err error) bool {
	if err == nil {
		return false
	}
	if e, ok := err.(*Error); ok {
		return e != nil && e.Propagated()
	}
	i, ok := instanceOf(err)
	return ok && propagated.has(i)
}

// ForgetPropagated clears the emitted mark on err.
func ForgetPropagated(err error) {
	if err == nil {
		return
	}
	if e, ok := err.(*Error); ok {
		if e != nil {
			e.propagated.Store(false)
		}
		return
	}
	if i, ok := instanceOf(err); ok {
		propagated.remove(i)
	}
}
