package beacon

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/dshills/beacon/dispatch"
)

// Channel is a typed broadcast channel: an ordered registry of listeners
// bound to weakly-held owners, through which values of type V are
// delivered to every still-live listener.
//
// Delivery order is registration order, oldest first. The registry is
// the only shared state; it is mutated and snapshotted under a
// per-channel mutex that is always released before listener code runs,
// so handlers may freely call back into the same channel.
type Channel[V any] struct {
	mode     DeliveryMode
	executor dispatch.Executor

	mu        sync.Mutex
	listeners []*listener[V]

	logger       *slog.Logger
	panicHandler PanicHandler
	errorHandler ErrorHandler

	// Stats
	published     atomic.Uint64
	delivered     atomic.Uint64
	dropped       atomic.Uint64
	handlerErrors atomic.Uint64
	handlerPanics atomic.Uint64
	pruned        atomic.Uint64
}

// New creates a channel with the given options. The default is
// synchronous delivery on the publisher's own goroutine.
//
// New panics when configured for asynchronous delivery without an
// executor: there is nowhere to dispatch to, and silently downgrading to
// synchronous delivery would hide a caller bug.
func New[V any](opts ...Option) *Channel[V] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.mode == DeliveryAsync && cfg.executor == nil {
		panic("beacon: asynchronous delivery requires an executor")
	}

	return &Channel[V]{
		mode:         cfg.mode,
		executor:     cfg.executor,
		logger:       cfg.logger,
		panicHandler: cfg.panicHandler,
		errorHandler: cfg.errorHandler,
	}
}

// NewSync creates a channel that delivers synchronously on ex: Publish
// blocks until the snapshot has run there. A publisher already running
// on ex executes the snapshot inline instead of waiting on itself.
func NewSync[V any](ex dispatch.Executor, opts ...Option) *Channel[V] {
	return New[V](append(opts, WithDeliveryMode(DeliverySync), WithExecutor(ex))...)
}

// NewAsync creates a channel that delivers asynchronously on ex:
// Publish enqueues the snapshot and returns immediately.
func NewAsync[V any](ex dispatch.Executor, opts ...Option) *Channel[V] {
	return New[V](append(opts, WithDeliveryMode(DeliveryAsync), WithExecutor(ex))...)
}

// Mode returns the channel's delivery mode.
func (c *Channel[V]) Mode() DeliveryMode {
	return c.mode
}

// Len returns the number of live listeners. Dead entries are pruned.
func (c *Channel[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruneLocked()
	return len(c.listeners)
}

// Clear removes every registration. No-op on an empty channel.
func (c *Channel[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.listeners {
		c.listeners[i] = nil
	}
	c.listeners = c.listeners[:0]
}

// Stats returns current channel statistics.
func (c *Channel[V]) Stats() Stats {
	c.mu.Lock()
	active := 0
	for _, l := range c.listeners {
		if !l.expired() {
			active++
		}
	}
	c.mu.Unlock()

	return Stats{
		Published:       c.published.Load(),
		Delivered:       c.delivered.Load(),
		Dropped:         c.dropped.Load(),
		HandlerErrors:   c.handlerErrors.Load(),
		HandlerPanics:   c.handlerPanics.Load(),
		Pruned:          c.pruned.Load(),
		ActiveListeners: active,
	}
}

// Publish broadcasts value to every live listener according to the
// channel's delivery mode. With zero listeners it returns immediately
// without touching the executor.
//
// Handler errors and panics are not returned to the publisher: they are
// counted, logged, and routed to the configured handlers, and never
// prevent later listeners in the same snapshot from running.
func (c *Channel[V]) Publish(ctx context.Context, value V) {
	c.publish(ctx, func() (V, bool) {
		return value, true
	})
}

// publish snapshots the registry and dispatches it against a value
// resolver. The resolver indirection lets PublishRef re-check its weak
// payload at delivery time.
func (c *Channel[V]) publish(ctx context.Context, resolve func() (V, bool)) {
	c.mu.Lock()
	if len(c.listeners) == 0 {
		c.mu.Unlock()
		return
	}
	c.pruneLocked()
	if len(c.listeners) == 0 {
		c.mu.Unlock()
		return
	}
	snapshot := make([]*listener[V], len(c.listeners))
	copy(snapshot, c.listeners)
	c.mu.Unlock()

	c.published.Add(1)

	run := func(ctx context.Context) {
		c.deliver(ctx, snapshot, resolve)
	}

	switch {
	case c.mode == DeliveryAsync:
		if err := c.executor.Submit(ctx, run); err != nil {
			c.dropped.Add(1)
			c.logger.Warn("broadcast dropped", "error", err)
		}
	case c.executor == nil || dispatch.On(ctx, c.executor):
		// Unpinned, or already on the target executor: run inline.
		// Waiting on an executor we currently occupy would deadlock.
		run(ctx)
	default:
		if err := c.executor.SubmitWait(ctx, run); err != nil {
			c.dropped.Add(1)
			c.logger.Warn("broadcast dropped", "error", err)
		}
	}
}

// deliver invokes the snapshot in order against the resolved value.
func (c *Channel[V]) deliver(ctx context.Context, snapshot []*listener[V], resolve func() (V, bool)) {
	value, ok := resolve()
	if !ok {
		c.dropped.Add(1)
		return
	}

	for _, l := range snapshot {
		if l.spent.Load() {
			continue
		}
		c.invokeOne(ctx, l, value)
	}
}

// invokeOne runs a single listener with panic recovery.
func (c *Channel[V]) invokeOne(ctx context.Context, l *listener[V], value V) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			c.handlerPanics.Add(1)
			c.logger.Error("listener panicked", "listener", l.id, "panic", r)

			if c.panicHandler != nil {
				// Protect the panic handler call - don't let it
				// crash the delivery loop.
				func() {
					defer func() { _ = recover() }()
					c.panicHandler(value, r, stack)
				}()
			}
			if c.errorHandler != nil {
				c.errorHandler(value, &PanicError{ListenerID: l.id, Value: r, Stack: stack})
			}
		}
	}()

	delivered, err := l.invoke(ctx, value)
	if !delivered {
		// Owner collected between snapshot and call; safe no-op.
		return
	}

	if err != nil {
		c.handlerErrors.Add(1)
		c.logger.Warn("listener handler failed", "listener", l.id, "error", err)
		if c.errorHandler != nil {
			c.errorHandler(value, &HandlerError{ListenerID: l.id, Err: err})
		}
		return
	}

	c.delivered.Add(1)
	if l.once {
		l.spent.Store(true)
	}
}

// add appends a listener, replacing any existing registration with the
// same identity so each owner holds at most one slot, always at the back
// of the delivery order.
func (c *Channel[V]) add(l *listener[V]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruneLocked()
	c.removeLocked(l.key)
	c.listeners = append(c.listeners, l)
}

// remove deletes the listener with the given identity key, if present.
func (c *Channel[V]) remove(key any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruneLocked()
	c.removeLocked(key)
}

// removeLocked deletes by identity key. Caller holds c.mu.
func (c *Channel[V]) removeLocked(key any) {
	for i, l := range c.listeners {
		if l.key == key {
			copy(c.listeners[i:], c.listeners[i+1:])
			c.listeners[len(c.listeners)-1] = nil
			c.listeners = c.listeners[:len(c.listeners)-1]
			return
		}
	}
}

// pruneLocked drops dead and spent listeners. Caller holds c.mu.
// Snapshots are independent copies, so compacting in place is safe.
func (c *Channel[V]) pruneLocked() {
	kept := c.listeners[:0]
	for _, l := range c.listeners {
		if l.expired() {
			c.pruned.Add(1)
			continue
		}
		kept = append(kept, l)
	}
	for i := len(kept); i < len(c.listeners); i++ {
		c.listeners[i] = nil
	}
	c.listeners = kept
}
