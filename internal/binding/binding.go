// Package binding connects stores to a rendering layer.
//
// Use is the plain form: it hands out the current snapshot and a setter.
// Binding adds a mount lifecycle so a view re-renders whenever the store
// commits, and Local holds component-local state with merge-on-write.
package binding

import (
	"sync"

	"github.com/dshills/statebus/internal/store"
)

// Setter writes to a store. It accepts a literal through store.Value or
// an updater function.
type Setter[S any] func(store.Action[S])

// Use returns a snapshot of s and a setter bound to it.
func Use[S any](s *store.Store[S]) (S, Setter[S]) {
	return s.Get(), Setter[S](s.Apply)
}

// RenderFunc draws a snapshot.
type RenderFunc[S any] func(snapshot S)

// Binding keeps a renderer in sync with a store while mounted.
type Binding[S any] struct {
	store  *store.Store[S]
	render RenderFunc[S]

	mu      sync.Mutex
	unsub   store.Unsubscribe
	version uint64
	shown   bool
	mounted bool
}

// New creates an unmounted binding.
func New[S any](s *store.Store[S], render RenderFunc[S]) *Binding[S] {
	return &Binding[S]{store: s, render: render}
}

// Mount renders the current snapshot and re-renders on every commit.
// Mounting a mounted binding does nothing.
func (b *Binding[S]) Mount() {
	b.mu.Lock()
	if b.mounted {
		b.mu.Unlock()
		return
	}
	b.mounted = true
	b.unsub = b.store.Subscribe(b.onChange)
	b.mu.Unlock()

	// Read after subscribing so no commit falls in between.
	b.show(b.store.Snapshot())
}

// Unmount stops re-rendering. It is safe to call more than once.
func (b *Binding[S]) Unmount() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.mounted {
		return
	}
	b.mounted = false
	b.shown = false
	b.unsub()
	b.unsub = nil
}

// Mounted reports whether the binding is mounted.
func (b *Binding[S]) Mounted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mounted
}

// Set writes to the bound store.
func (b *Binding[S]) Set(a store.Action[S]) {
	b.store.Apply(a)
}

// Snapshot returns the bound store's current value.
func (b *Binding[S]) Snapshot() S {
	return b.store.Get()
}

func (b *Binding[S]) onChange(c store.Change[S]) {
	b.show(c.Value, c.Version)
}

// show renders snapshot unless a newer version has already been shown.
func (b *Binding[S]) show(snapshot S, version uint64) {
	b.mu.Lock()
	if !b.mounted || (b.shown && version <= b.version) {
		b.mu.Unlock()
		return
	}
	b.version = version
	b.shown = true
	b.mu.Unlock()

	b.render(snapshot)
}
