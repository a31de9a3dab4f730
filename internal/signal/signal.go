// Package signal keeps named cancellation tokens.
//
// A Registry maps keys to Signals. Each Signal hands out a context that
// stays live until the Signal is cancelled; the next call to Context after
// that starts a fresh one. Entries live until Forget is called or the
// registry's root context ends.
package signal

import (
	"context"
	"sync"
)

// Signal is a reusable cancellation token.
type Signal struct {
	root context.Context

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

func newSignal(root context.Context) *Signal {
	return &Signal{root: root}
}

// Context returns the live context, creating a new one if the previous
// context was cancelled.
func (s *Signal) Context() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx == nil || (s.ctx.Err() != nil && s.root.Err() == nil) {
		s.ctx, s.cancel = context.WithCancel(s.root)
	}
	return s.ctx
}

// Cancel cancels the live context, if any.
func (s *Signal) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
}

// Cancelled reports whether the current context has been cancelled.
// A Signal that never handed out a context is not cancelled.
func (s *Signal) Cancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx != nil && s.ctx.Err() != nil
}

// Registry maps keys to Signals.
type Registry struct {
	root context.Context

	mu      sync.Mutex
	signals map[string]*Signal
}

// NewRegistry creates a registry whose signals derive from ctx.
func NewRegistry(ctx context.Context) *Registry {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Registry{
		root:    ctx,
		signals: make(map[string]*Signal),
	}
}

// Get returns the signal for key, creating it on first use.
func (r *Registry) Get(key string) *Signal {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.signals[key]
	if !ok {
		s = newSignal(r.root)
		r.signals[key] = s
	}
	return s
}

// Forget cancels and removes the signal for key.
func (r *Registry) Forget(key string) bool {
	r.mu.Lock()
	s, ok := r.signals[key]
	delete(r.signals, key)
	r.mu.Unlock()

	if ok {
		s.Cancel()
	}
	return ok
}

// Len returns the number of signals.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.signals)
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry rooted at context.Background.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry(context.Background())
	})
	return defaultRegistry
}
