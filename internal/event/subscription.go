package event

import (
	"sync/atomic"

	"github.com/dshills/statebus/internal/event/topic"
)

// SubscriptionState represents the state of a subscription.
type SubscriptionState int32

const (
	// SubscriptionStateActive means the subscription is receiving events.
	SubscriptionStateActive SubscriptionState = iota

	// SubscriptionStateCancelled means the subscription has been permanently cancelled.
	SubscriptionStateCancelled
)

// String returns a human-readable state name.
func (s SubscriptionState) String() string {
	switch s {
	case SubscriptionStateActive:
		return "active"
	case SubscriptionStateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

type subscription struct {
	id      string
	matcher *topic.Matcher
	handler Handler
	once    bool
	state   atomic.Int32
}

func newSubscription(id string, m *topic.Matcher, h Handler, once bool) *subscription {
	s := &subscription{
		id:      id,
		matcher: m,
		handler: h,
		once:    once,
	}
	s.state.Store(int32(SubscriptionStateActive))
	return s
}

func (s *subscription) State() SubscriptionState {
	return SubscriptionState(s.state.Load())
}

func (s *subscription) IsActive() bool {
	return s.State() == SubscriptionStateActive
}

// cancel moves the subscription to cancelled and reports whether this call
// did it. Exactly one caller wins.
func (s *subscription) cancel() bool {
	return s.state.CompareAndSwap(int32(SubscriptionStateActive), int32(SubscriptionStateCancelled))
}

func (s *subscription) matches(names []string) bool {
	return s.matcher.Match(names)
}
