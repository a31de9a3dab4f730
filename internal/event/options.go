package event

import "log/slog"

// Option configures a Bus.
type Option func(*busConfig)

type busConfig struct {
	logger       *slog.Logger
	recover      bool
	panicHandler func(*PanicError)
}

func defaultBusConfig() busConfig {
	return busConfig{
		logger:       slog.New(slog.DiscardHandler),
		panicHandler: func(*PanicError) {},
	}
}

// WithLogger sets the logger used by the bus.
func WithLogger(l *slog.Logger) Option {
	return func(c *busConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRecover isolates handlers from each other. A handler panic is
// recovered, logged and counted, and dispatch continues with the next
// subscription. Without it a panic unwinds into the caller of Emit.
func WithRecover() Option {
	return func(c *busConfig) {
		c.recover = true
	}
}

// WithPanicHandler sets a callback for recovered handler panics.
// It implies WithRecover.
func WithPanicHandler(h func(*PanicError)) Option {
	return func(c *busConfig) {
		if h != nil {
			c.recover = true
			c.panicHandler = h
		}
	}
}
