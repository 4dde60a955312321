// Package dispatch provides execution contexts for beacon channels.
//
// An Executor abstracts "where code runs". Channels hand delivery work to
// an executor as opaque jobs; the executor decides which goroutine runs
// them and in what order. Two implementations are provided:
//
//   - Serial: one dedicated goroutine with a bounded FIFO queue. Models a
//     UI/main loop. Jobs run strictly in submission order.
//   - Pool: a pond worker pool for independent fan-out work. Order across
//     jobs is only guaranteed with a single worker.
//
// # Re-entrancy
//
// Executors tag the context of every job they run. SubmitWait checks that
// tag and executes inline when the caller is already on the target
// executor, so code running on an executor can synchronously wait on its
// own executor without deadlocking:
//
//	ex := dispatch.NewSerial()
//	ex.Start()
//	defer ex.Stop(context.Background())
//
//	ex.SubmitWait(ctx, func(ctx context.Context) {
//	    // dispatch.On(ctx, ex) == true here; a nested SubmitWait
//	    // runs inline instead of blocking forever.
//	})
//
// # Lifecycle
//
// Serial executors must be started before use and stopped when done; Stop
// drains the queue and honors context cancellation. Pool executors are
// live on construction and stopped with Stop.
package dispatch
