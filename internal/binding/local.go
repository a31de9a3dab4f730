package binding

import (
	"sync"

	"github.com/dshills/statebus/internal/store"
	"github.com/dshills/statebus/internal/value"
)

// Local is component-local object state. Writes are deep-merged into the
// current value and reads return copies. It has no listeners.
type Local struct {
	mu    sync.Mutex
	state map[string]any
}

// NewLocal creates local state holding a copy of initial.
func NewLocal(initial map[string]any) *Local {
	state := value.CloneOf(initial)
	if state == nil {
		state = make(map[string]any)
	}
	return &Local{state: state}
}

// Get returns a copy of the current value.
func (l *Local) Get() map[string]any {
	l.mu.Lock()
	defer l.mu.Unlock()
	return value.CloneOf(l.state)
}

// Set merges the result of a into the current value.
func (l *Local) Set(a store.Action[map[string]any]) {
	if a == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	next := a(value.CloneOf(l.state))
	l.state = value.Merge(value.CloneOf(l.state), next)
}

// Use returns a snapshot and a setter, like the package-level Use.
func (l *Local) Use() (map[string]any, Setter[map[string]any]) {
	return l.Get(), Setter[map[string]any](l.Set)
}
