package event

import "sync"

// Registry holds subscriptions in registration order.
// It is safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	subs []*subscription
	byID map[string]*subscription
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID: make(map[string]*subscription),
	}
}

// Add appends a subscription.
func (r *Registry) Add(sub *subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.subs = append(r.subs, sub)
	r.byID[sub.id] = sub
}

// Remove removes a subscription by ID.
func (r *Registry) Remove(subID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[subID]; !exists {
		return false
	}
	delete(r.byID, subID)

	for i, s := range r.subs {
		if s.id == subID {
			// Build a new slice so snapshots handed out earlier stay intact.
			subs := make([]*subscription, 0, len(r.subs)-1)
			subs = append(subs, r.subs[:i]...)
			r.subs = append(subs, r.subs[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the subscription with the given ID.
func (r *Registry) Get(subID string) (*subscription, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, ok := r.byID[subID]
	return sub, ok
}

// Match returns the active subscriptions matching any of names,
// in registration order. The returned slice is owned by the caller.
func (r *Registry) Match(names []string) []*subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*subscription
	for _, sub := range r.subs {
		if sub.IsActive() && sub.matches(names) {
			result = append(result, sub)
		}
	}
	return result
}

// Count returns the number of subscriptions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

// Clear removes all subscriptions and returns them.
func (r *Registry) Clear() []*subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs := r.subs
	r.subs = nil
	r.byID = make(map[string]*subscription)
	return subs
}
