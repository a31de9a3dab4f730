package event

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/statebus/internal/event/dispatch"
	"github.com/dshills/statebus/internal/event/topic"
)

// Bus delivers emitted events to the subscriptions whose patterns match.
// Dispatch is synchronous, on the goroutine that calls Emit.
type Bus struct {
	registry   *Registry
	dispatcher *dispatch.SyncDispatcher // nil unless handlers are isolated
	logger     *slog.Logger
	onPanic    func(*PanicError)

	// Stats
	emitted    atomic.Uint64
	delivered  atomic.Uint64
	suppressed atomic.Uint64
	prevented  atomic.Uint64
	panics     atomic.Uint64
}

// New creates a new event bus with the given options.
func New(opts ...Option) *Bus {
	config := defaultBusConfig()
	for _, opt := range opts {
		opt(&config)
	}

	b := &Bus{
		registry: NewRegistry(),
		logger:   config.logger,
		onPanic:  config.panicHandler,
	}
	if config.recover {
		b.dispatcher = dispatch.NewSyncDispatcher()
	}
	return b
}

// On subscribes h to every emission whose topic matches t.
//
// t is a string (an unanchored regular expression), a *regexp.Regexp,
// a topic.Pattern, or a slice of those nested to any depth.
func (b *Bus) On(t any, h Handler) (Unsubscribe, error) {
	return b.subscribe(t, h, false)
}

// Once is like On but the handler runs at most once, even when the bus
// is emitted to concurrently or from inside the handler.
func (b *Bus) Once(t any, h Handler) (Unsubscribe, error) {
	return b.subscribe(t, h, true)
}

func (b *Bus) subscribe(t any, h Handler, once bool) (Unsubscribe, error) {
	if h == nil {
		return nil, ErrNilHandler
	}
	patterns, err := topic.Patterns(t)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTopic, err)
	}

	sub := newSubscription(uuid.NewString(), topic.NewMatcher(patterns...), h, once)
	b.registry.Add(sub)
	b.logger.Debug("subscribed", "subscription", sub.id, "patterns", sub.matcher.String(), "once", once)

	return func() {
		if sub.cancel() {
			b.registry.Remove(sub.id)
			b.logger.Debug("unsubscribed", "subscription", sub.id)
		}
	}, nil
}

// Emit dispatches args to every live subscription matching any name in t.
// t may list several names separated by '|' or ','.
//
// When the only argument is an error that has already been emitted,
// nothing is dispatched. Emit returns false if a handler called
// PreventDefault and true otherwise.
func (b *Bus) Emit(t string, args ...any) bool {
	if len(args) == 1 {
		if err, ok := args[0].(error); ok && !MarkPropagated(err) {
			b.suppressed.Add(1)
			return true
		}
	}

	names := topic.Split(t)
	b.emitted.Add(1)
	if len(names) == 0 {
		return true
	}

	evt := &Event{Topic: t, Names: names, Args: args}
	for _, sub := range b.registry.Match(names) {
		if sub.once {
			if !sub.cancel() {
				continue
			}
			b.registry.Remove(sub.id)
		} else if !sub.IsActive() {
			continue
		}
		b.deliver(sub, evt)
	}

	if evt.DefaultPrevented() {
		b.prevented.Add(1)
		return false
	}
	return true
}

func (b *Bus) deliver(sub *subscription, evt *Event) {
	if b.dispatcher == nil {
		sub.handler(evt)
		b.delivered.Add(1)
		return
	}

	result := b.dispatcher.Dispatch(func() { sub.handler(evt) })
	if !result.IsPanic() {
		b.delivered.Add(1)
		return
	}

	b.panics.Add(1)
	perr := &PanicError{
		SubscriptionID: sub.id,
		Topic:          evt.Topic,
		Value:          result.PanicValue,
		Stack:          string(result.PanicStack),
	}
	b.logger.Error("event handler panicked",
		"subscription", sub.id,
		"topic", evt.Topic,
		"panic", result.PanicValue,
	)
	b.onPanic(perr)
}

// Len returns the number of live subscriptions.
func (b *Bus) Len() int {
	return b.registry.Count()
}

// Clear cancels every subscription.
func (b *Bus) Clear() {
	for _, sub := range b.registry.Clear() {
		sub.cancel()
	}
}

// Stats returns bus statistics.
func (b *Bus) Stats() Stats {
	stats := Stats{
		Emitted:       b.emitted.Load(),
		Delivered:     b.delivered.Load(),
		Suppressed:    b.suppressed.Load(),
		Prevented:     b.prevented.Load(),
		Panics:        b.panics.Load(),
		Subscriptions: b.registry.Count(),
	}
	if b.dispatcher != nil {
		ds := b.dispatcher.Stats()
		stats.HandlerTime = ds.TotalDuration
		stats.AvgHandlerTime = ds.AvgDuration
	}
	return stats
}
