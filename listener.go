package beacon

import (
	"context"
	"reflect"
	"sync/atomic"
	"weak"
)

// listener is one registration: an identity key, a liveness probe, and a
// type-erased invoke closure that resolves the owner weakly at call time.
type listener[V any] struct {
	id  string
	key any // comparable identity of the owner

	// alive reports whether the owner is still reachable.
	alive func() bool

	// invoke runs the handler against the resolved owner. The bool is
	// false when the owner was collected between snapshot and call.
	invoke func(ctx context.Context, value V) (bool, error)

	once  bool
	spent atomic.Bool // set after a once-listener's first delivery
}

// expired reports whether the listener should be pruned.
func (l *listener[V]) expired() bool {
	return l.spent.Load() || !l.alive()
}

// Subscribe registers handler on c, bound to owner. The channel holds
// owner weakly: it never extends owner's lifetime, and once owner is
// collected the registration becomes a no-op and is pruned lazily.
//
// Each owner has at most one registration per channel; subscribing again
// replaces the previous handler and moves the registration to the end of
// the delivery order. Subscribe panics on a nil owner or handler - both
// indicate a programming error, not a runtime condition.
func Subscribe[O any, V any](c *Channel[V], owner *O, handler Handler[O, V], opts ...SubscribeOption) {
	if owner == nil {
		panic("beacon: Subscribe with nil owner")
	}
	if handler == nil {
		panic("beacon: Subscribe with nil handler")
	}

	cfg := subscribeConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	ref := weak.Make(owner)
	c.add(&listener[V]{
		id:   generateID(),
		key:  ref,
		once: cfg.once,
		alive: func() bool {
			return ref.Value() != nil
		},
		invoke: func(ctx context.Context, value V) (bool, error) {
			o := ref.Value()
			if o == nil {
				return false, nil
			}
			return true, handler(ctx, o, value)
		},
	})
}

// Unsubscribe removes owner's registration from c, if any.
// It is a no-op when owner was never registered or is already gone.
func Unsubscribe[O any, V any](c *Channel[V], owner *O) {
	if owner == nil {
		return
	}
	c.remove(weak.Make(owner))
}

// SubscribeType registers fn on c keyed by the type identity of O rather
// than an instance. Type registrations are always live; they persist
// until UnsubscribeType, Clear, or replacement by a later SubscribeType
// for the same O.
func SubscribeType[O any, V any](c *Channel[V], fn Func[V], opts ...SubscribeOption) {
	if fn == nil {
		panic("beacon: SubscribeType with nil handler")
	}

	cfg := subscribeConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	c.add(&listener[V]{
		id:   generateID(),
		key:  typeKey[O](),
		once: cfg.once,
		alive: func() bool {
			return true
		},
		invoke: func(ctx context.Context, value V) (bool, error) {
			return true, fn(ctx, value)
		},
	})
}

// UnsubscribeType removes the type-identity registration for O, if any.
func UnsubscribeType[O any, V any](c *Channel[V]) {
	c.remove(typeKey[O]())
}

// typeKey returns the comparable identity token for type O.
func typeKey[O any]() any {
	return reflect.TypeOf((*O)(nil))
}

// PublishRef broadcasts a reference-typed payload held weakly until
// delivery runs. If the value is collected before the snapshot executes
// (only possible with asynchronous or cross-executor delivery), the
// whole broadcast is dropped and counted in Stats.Dropped.
func PublishRef[V any](ctx context.Context, c *Channel[*V], value *V) {
	if value == nil {
		return
	}
	ref := weak.Make(value)
	c.publish(ctx, func() (*V, bool) {
		v := ref.Value()
		return v, v != nil
	})
}
