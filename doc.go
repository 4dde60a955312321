// Package beacon provides typed in-process broadcast channels.
//
// A Channel[V] is a single event object: listeners are registered against
// it bound to an owning instance, and values of type V are later
// broadcast to every still-live listener. It replaces string-keyed,
// type-unsafe notification hubs with one compile-time-typed object per
// event.
//
// # Ownership and Liveness
//
// Every registration is bound to an owner. The channel holds the owner
// weakly: registering never extends the owner's lifetime, and once the
// owner becomes unreachable its handler is never invoked again - no
// explicit Unsubscribe required. Dead registrations are pruned lazily
// before every registry mutation and every broadcast snapshot; there is
// no background sweep.
//
// Each owner holds at most one registration per channel. Subscribing the
// same owner again replaces the handler and moves the registration to
// the back of the delivery order.
//
// # Delivery
//
// Delivery order within one Publish is registration order, oldest first.
// The mode is fixed at construction:
//
//   - Sync, unpinned (default): handlers run inline in the publisher's
//     call.
//   - Sync, pinned to an executor: Publish blocks while the snapshot runs
//     on the executor. A publisher already running on that executor runs
//     the snapshot inline instead - synchronously waiting on a context
//     you currently occupy would deadlock.
//   - Async, pinned to an executor: Publish enqueues the snapshot and
//     returns immediately. Constructing an async channel without an
//     executor panics.
//
// # Basic Usage
//
//	type counter struct{ total int }
//
//	ch := beacon.New[int]()
//
//	c := &counter{}
//	beacon.Subscribe(ch, c, func(ctx context.Context, c *counter, n int) error {
//	    c.total += n
//	    return nil
//	})
//
//	ch.Publish(ctx, 42)
//	beacon.Unsubscribe(ch, c)
//
// Pinned delivery uses an execution context from the dispatch package:
//
//	ui := dispatch.NewSerial()
//	ui.Start()
//	defer ui.Stop(context.Background())
//
//	ch := beacon.NewAsync[Resize](ui)
//	ch.Publish(ctx, Resize{80, 24}) // returns immediately, runs on ui
//
// # Failure Policy
//
// Handler errors and panics never reach the publisher and never stop the
// rest of the snapshot: they are counted in Stats, logged, and routed to
// the channel's ErrorHandler/PanicHandler. Only programmer misuse (async
// construction without an executor, nil owner or handler) fails loudly,
// by panic.
//
// # Thread Safety
//
// All operations are safe for concurrent use. The registry lock is
// released before any handler runs, so handlers may call Subscribe,
// Unsubscribe, or Publish on their own channel without deadlocking.
package beacon
