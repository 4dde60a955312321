package beacon

import (
	"log/slog"

	"github.com/dshills/beacon/dispatch"
)

// Option configures a Channel.
type Option func(*config)

// config contains configuration for a channel.
type config struct {
	// mode is the delivery mode, fixed at construction.
	mode DeliveryMode

	// executor is the execution context delivery is pinned to.
	// Nil means deliver on whichever goroutine calls Publish.
	executor dispatch.Executor

	// logger receives handler failure and drop diagnostics.
	logger *slog.Logger

	// panicHandler is called when a listener handler panics.
	panicHandler PanicHandler

	// errorHandler is called when a listener handler returns an error.
	errorHandler ErrorHandler
}

// defaultConfig returns sensible default configuration:
// synchronous delivery on the caller's goroutine.
func defaultConfig() config {
	return config{
		mode:   DeliverySync,
		logger: slog.New(slog.DiscardHandler),
	}
}

// WithDeliveryMode sets the delivery mode.
func WithDeliveryMode(m DeliveryMode) Option {
	return func(c *config) {
		c.mode = m
	}
}

// WithExecutor pins delivery to an execution context.
func WithExecutor(ex dispatch.Executor) Option {
	return func(c *config) {
		c.executor = ex
	}
}

// WithLogger sets the logger for handler failure diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithPanicHandler sets the handler called when a listener panics.
func WithPanicHandler(h PanicHandler) Option {
	return func(c *config) {
		c.panicHandler = h
	}
}

// WithErrorHandler sets the handler called when a listener returns an error.
func WithErrorHandler(h ErrorHandler) Option {
	return func(c *config) {
		c.errorHandler = h
	}
}

// SubscribeOption configures a single registration.
type SubscribeOption func(*subscribeConfig)

// subscribeConfig contains configuration for one registration.
type subscribeConfig struct {
	once bool
}

// WithOnce removes the registration after its first successful delivery.
func WithOnce() SubscribeOption {
	return func(c *subscribeConfig) {
		c.once = true
	}
}
