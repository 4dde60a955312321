package beacon

import (
	"context"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/dshills/beacon/dispatch"
)

// subscribeTransient registers a handler bound to an owner that becomes
// unreachable as soon as this function returns.
func subscribeTransient(ch *Channel[int], fired *bool) {
	owner := &recorder{}
	Subscribe(ch, owner, func(_ context.Context, _ *recorder, _ int) error {
		*fired = true
		return nil
	})
}

// collect runs enough GC cycles for weak pointers to dead objects to clear.
func collect() {
	runtime.GC()
	runtime.GC()
}

func TestLivenessPruning(t *testing.T) {
	ch := New[int]()

	var fired bool
	subscribeTransient(ch, &fired)
	collect()

	ch.Publish(context.Background(), 1)
	if fired {
		t.Error("handler for a collected owner must never fire")
	}
	if n := ch.Len(); n != 0 {
		t.Errorf("dead listener should be pruned, got %d listeners", n)
	}
	if stats := ch.Stats(); stats.Pruned == 0 {
		t.Error("expected pruning to be recorded in stats")
	}
}

func TestLivenessPruning_OnSubscribe(t *testing.T) {
	ch := New[int]()

	var fired bool
	subscribeTransient(ch, &fired)
	collect()

	// Registering another listener prunes the dead one first.
	live := &recorder{}
	Subscribe(ch, live, record)
	if n := ch.Len(); n != 1 {
		t.Errorf("expected only the live listener, got %d", n)
	}

	runtime.KeepAlive(live)
}

func TestLiveness_ChannelDoesNotExtendOwnerLifetime(t *testing.T) {
	ch := New[int]()

	var fired bool
	subscribeTransient(ch, &fired)

	// The only path to the owner is the channel's weak handle; if the
	// channel held it strongly this would keep the listener live forever.
	collect()

	ch.Publish(context.Background(), 1)
	if fired {
		t.Error("channel must not keep registered owners alive")
	}
}

type payload struct {
	n int
}

func TestPublishRef_Live(t *testing.T) {
	ctx := context.Background()
	ch := New[*payload]()

	owner := &recorder{}
	var got *payload
	Subscribe(ch, owner, func(_ context.Context, _ *recorder, p *payload) error {
		got = p
		return nil
	})

	v := &payload{n: 42}
	PublishRef(ctx, ch, v)

	if got == nil || got.n != 42 {
		t.Fatalf("expected live payload to be delivered, got %v", got)
	}

	runtime.KeepAlive(owner)
	runtime.KeepAlive(v)
}

func TestPublishRef_DroppedWhenCollected(t *testing.T) {
	ctx := context.Background()

	ex := dispatch.NewSerial()
	if err := ex.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	// Hold the executor's goroutine so the broadcast stays queued while
	// the payload dies.
	gate := make(chan struct{})
	if err := ex.Submit(ctx, func(context.Context) { <-gate }); err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}

	ch := NewAsync[*payload](ex)

	owner := &recorder{}
	var mu sync.Mutex
	var fired bool
	Subscribe(ch, owner, func(_ context.Context, _ *recorder, _ *payload) error {
		mu.Lock()
		fired = true
		mu.Unlock()
		return nil
	})

	func() {
		v := &payload{n: 7}
		PublishRef(ctx, ch, v)
	}()
	collect()

	close(gate)
	stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := ex.Stop(stopCtx); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if fired {
		t.Error("broadcast of a collected payload must be dropped")
	}
	if stats := ch.Stats(); stats.Dropped != 1 {
		t.Errorf("expected 1 dropped broadcast, got %d", stats.Dropped)
	}

	runtime.KeepAlive(owner)
}

func TestPublishRef_NilIsNoOp(t *testing.T) {
	ch := New[*payload]()
	owner := &recorder{}
	var fired bool
	Subscribe(ch, owner, func(_ context.Context, _ *recorder, _ *payload) error {
		fired = true
		return nil
	})

	PublishRef(context.Background(), ch, nil)
	if fired {
		t.Error("nil payload must not be broadcast")
	}

	runtime.KeepAlive(owner)
}

func TestUnsubscribe_ByRecreatedWeakHandle(t *testing.T) {
	// Unsubscribe builds a fresh weak handle for the owner; it must
	// compare equal to the one stored at registration.
	ch := New[int]()
	owner := &recorder{}
	Subscribe(ch, owner, record)

	Unsubscribe(ch, owner)
	if n := ch.Len(); n != 0 {
		t.Fatalf("expected weak-handle identity match to remove listener, got %d", n)
	}

	runtime.KeepAlive(owner)
}
