package store

import (
	"log/slog"
	"reflect"
	"sync"

	"github.com/dshills/statebus/internal/event"
	"github.com/dshills/statebus/internal/event/topic"
	"github.com/dshills/statebus/internal/value"
)

// changeTopic is the topic of the store's private change bus.
const changeTopic = "change"

// Change describes one committed write.
type Change[S any] struct {
	// Value is the committed value.
	Value S

	// Prev is the value before the write.
	Prev S

	// Version is the store version after the write. Versions start at 0
	// for the initial value and grow by one per commit.
	Version uint64
}

// Unsubscribe removes a listener or subscriber. Repeated calls are no-ops.
type Unsubscribe func()

// Store is an observable container for a value of type S.
// It is safe for concurrent use.
type Store[S any] struct {
	mu        sync.Mutex
	state     S
	version   uint64
	listeners []*listenerEntry[S]

	// sliceOnly is set when S is an interface type and the initial value
	// was a slice; such a store never holds anything but a slice.
	sliceOnly bool

	changes *event.Bus
	shared  *event.Bus
	topic   string
	logger  *slog.Logger
}

// New creates a store holding a copy of initial.
func New[S any](initial S, opts ...Option) *Store[S] {
	config := defaultStoreConfig()
	for _, opt := range opts {
		opt(&config)
	}

	s := &Store[S]{
		state:   value.CloneOf(initial),
		changes: event.New(event.WithLogger(config.logger)),
		shared:  config.bus,
		topic:   config.topic,
		logger:  config.logger,
	}
	if reflect.TypeFor[S]().Kind() == reflect.Interface && value.IsSlice(any(initial)) {
		s.sliceOnly = true
	}
	return s
}

// Get returns a copy of the current value.
func (s *Store[S]) Get() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return value.CloneOf(s.state)
}

// Snapshot returns a copy of the current value together with its version.
func (s *Store[S]) Snapshot() (S, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return value.CloneOf(s.state), s.version
}

// Version returns the number of commits so far.
func (s *Store[S]) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Set writes v to the store.
func (s *Store[S]) Set(v S) {
	s.Apply(Value(v))
}

// Update writes the value fn computes from a snapshot of the current one.
func (s *Store[S]) Update(fn func(current S) S) {
	s.Apply(fn)
}

// Apply runs a against a snapshot of the current value and writes the
// result. A panic in a or in a listener leaves the store unchanged and
// propagates to the caller.
func (s *Store[S]) Apply(a Action[S]) {
	if a == nil {
		return
	}
	change, ok := s.commit(a)
	if !ok {
		return
	}
	s.broadcast(change)
}

func (s *Store[S]) commit(a Action[S]) (Change[S], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.state
	candidate := a(value.CloneOf(current))

	next, changed := s.combine(current, candidate)
	if !changed {
		s.logger.Debug("store write skipped", "version", s.version)
		return Change[S]{}, false
	}

	prev := value.CloneOf(current)
	for _, l := range s.listeners {
		next = l.run(next, value.CloneOf(prev))
	}
	next = s.normalize(next)

	s.state = value.CloneOf(next)
	s.version++
	s.logger.Debug("store committed", "version", s.version, "listeners", len(s.listeners))

	return Change[S]{
		Value:   next,
		Prev:    prev,
		Version: s.version,
	}, true
}

// combine applies the write policy and reports whether the result
// differs from current.
func (s *Store[S]) combine(current, candidate S) (S, bool) {
	candidate = s.normalize(candidate)

	cur, cand := any(current), any(candidate)
	next := candidate

	if value.IsMap(cur) && value.IsMap(cand) {
		if merged, ok := value.MergeOf(cur, cand); ok {
			if typed, ok := merged.(S); ok {
				next = typed
			}
		}
	}

	if value.Same(cur, any(next)) {
		return current, false
	}
	return next, true
}

func (s *Store[S]) normalize(v S) S {
	if !s.sliceOnly {
		return v
	}
	var wrapped any
	switch {
	case value.IsSlice(any(v)):
		return v
	case any(v) == nil:
		wrapped = []any{}
	default:
		wrapped = []any{any(v)}
	}
	out, ok := wrapped.(S)
	if !ok {
		return v
	}
	return out
}

func (s *Store[S]) broadcast(change Change[S]) {
	s.changes.Emit(changeTopic, change)
	if s.shared != nil {
		s.shared.Emit(s.topic, change)
	}
}

// OnChange appends l to the listener pipeline. With filters, l only runs
// for candidates every filter accepts.
func (s *Store[S]) OnChange(l Listener[S], filters ...Filter) Unsubscribe {
	if l == nil {
		return func() {}
	}
	entry := &listenerEntry[S]{fn: l, filters: filters}

	s.mu.Lock()
	s.listeners = append(s.listeners, entry)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { s.removeListener(entry) })
	}
}

func (s *Store[S]) removeListener(entry *listenerEntry[S]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, l := range s.listeners {
		if l == entry {
			listeners := make([]*listenerEntry[S], 0, len(s.listeners)-1)
			listeners = append(listeners, s.listeners[:i]...)
			s.listeners = append(listeners, s.listeners[i+1:]...)
			return
		}
	}
}

// Len returns the number of listeners.
func (s *Store[S]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

// Subscribe calls fn with every committed change. Each call gets its own
// copy of the values. fn runs on the writer's goroutine after the write
// completes; concurrent writers may deliver changes out of version order.
func (s *Store[S]) Subscribe(fn func(Change[S])) Unsubscribe {
	if fn == nil {
		return func() {}
	}
	unsub, err := s.changes.On(topic.Literal(changeTopic), func(evt *event.Event) {
		change, ok := evt.Arg(0).(Change[S])
		if !ok {
			return
		}
		change.Value = value.CloneOf(change.Value)
		change.Prev = value.CloneOf(change.Prev)
		fn(change)
	})
	if err != nil {
		// Literal patterns always compile.
		s.logger.Error("store subscribe failed", "error", err)
		return func() {}
	}
	return Unsubscribe(unsub)
}

// Subscribers returns the number of change subscribers.
func (s *Store[S]) Subscribers() int {
	return s.changes.Len()
}
