package dispatch

import "context"

// Job is a unit of work handed to an Executor.
type Job func(ctx context.Context)

// Executor is the interface for execution contexts: an abstraction over
// "where code runs", such as a dedicated serial loop or a worker pool.
type Executor interface {
	// Submit enqueues a job for execution without waiting for it to run.
	// Jobs from a single submitter run in submission order on serial
	// executors; pooled executors only preserve order with one worker.
	Submit(ctx context.Context, job Job) error

	// SubmitWait runs a job on the executor and blocks until it completes.
	// Calling SubmitWait from a goroutine that is already running on this
	// executor executes the job inline rather than deadlocking.
	SubmitWait(ctx context.Context, job Job) error
}

// ctxKey marks a context as running on a particular executor.
type ctxKey struct{}

// WithExecutor returns a context marked as running on ex.
// Executors call this before invoking a job; application code rarely
// needs it directly.
func WithExecutor(ctx context.Context, ex Executor) context.Context {
	return context.WithValue(ctx, ctxKey{}, ex)
}

// From returns the executor the context is currently running on,
// or nil if the context is not executor-tagged.
func From(ctx context.Context) Executor {
	ex, _ := ctx.Value(ctxKey{}).(Executor)
	return ex
}

// On reports whether the context is currently running on ex.
func On(ctx context.Context, ex Executor) bool {
	return ex != nil && From(ctx) == ex
}

// PanicHandler is called when a job panics during execution.
// It receives the panic value and the stack trace at the point of panic.
type PanicHandler func(recovered any, stack []byte)

// defaultPanicHandler is a no-op panic handler.
func defaultPanicHandler(recovered any, stack []byte) {
	// Default: silently recover.
	// Callers that want visibility install their own handler.
}
