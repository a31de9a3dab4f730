package store

import (
	"log/slog"

	"github.com/dshills/statebus/internal/event"
)

// Option configures a Store.
type Option func(*storeConfig)

type storeConfig struct {
	logger *slog.Logger
	bus    *event.Bus
	topic  string
}

func defaultStoreConfig() storeConfig {
	return storeConfig{
		logger: slog.New(slog.DiscardHandler),
	}
}

// WithLogger sets the logger used by the store.
func WithLogger(l *slog.Logger) Option {
	return func(c *storeConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithBus forwards every committed Change onto b under topic.
// The Change is the only argument of the emission.
func WithBus(b *event.Bus, topic string) Option {
	return func(c *storeConfig) {
		c.bus = b
		c.topic = topic
	}
}
