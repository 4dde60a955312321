package beacon

import "context"

// DeliveryMode specifies how published values are delivered to listeners.
type DeliveryMode int

const (
	// DeliverySync delivers in the publisher's call; Publish returns only
	// after every listener in the snapshot has run.
	DeliverySync DeliveryMode = iota

	// DeliveryAsync hands the snapshot to the channel's executor and
	// returns immediately. Requires an executor.
	DeliveryAsync
)

// String returns a human-readable delivery mode name.
func (m DeliveryMode) String() string {
	switch m {
	case DeliverySync:
		return "sync"
	case DeliveryAsync:
		return "async"
	default:
		return "unknown"
	}
}

// Handler is an owner-bound listener function. The owner is resolved
// weakly at delivery time and passed back in; the handler is never
// invoked once the owner has been collected.
type Handler[O any, V any] func(ctx context.Context, owner *O, value V) error

// Func is a listener function with no owner instance, used for
// type-identity (static) registrations.
type Func[V any] func(ctx context.Context, value V) error

// PanicHandler is called when a listener handler panics.
// It receives the published value, the panic value, and the stack trace.
type PanicHandler func(value any, recovered any, stack []byte)

// ErrorHandler is called when a listener handler fails. The error is a
// *HandlerError for returned errors and a *PanicError for recovered
// panics (match the latter with errors.Is(err, ErrHandlerPanic)).
type ErrorHandler func(value any, err error)

// Stats contains channel statistics.
type Stats struct {
	// Published is the total number of Publish calls that took a snapshot.
	Published uint64

	// Delivered is the total number of successful handler invocations.
	Delivered uint64

	// Dropped is the number of broadcasts abandoned before delivery:
	// weak payloads collected in flight, or executor submissions refused.
	Dropped uint64

	// HandlerErrors is the number of handlers that returned errors.
	HandlerErrors uint64

	// HandlerPanics is the number of handlers that panicked.
	HandlerPanics uint64

	// Pruned is the number of dead or spent listeners removed by lazy pruning.
	Pruned uint64

	// ActiveListeners is the current number of live listeners.
	ActiveListeners int
}
