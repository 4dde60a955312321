package dispatch

import (
	"context"
	"sync/atomic"

	"github.com/alitto/pond"
)

// Pool is an executor backed by a pond worker pool. It suits fan-out
// workloads where jobs are independent; submission order is only
// preserved end to end when the pool runs a single worker.
type Pool struct {
	pool    *pond.WorkerPool
	stopped atomic.Bool
}

// NewPool creates a pool executor with up to maxWorkers goroutines and a
// task queue of maxCapacity. Additional pond options are passed through.
func NewPool(maxWorkers, maxCapacity int, opts ...pond.Option) *Pool {
	return &Pool{
		pool: pond.New(maxWorkers, maxCapacity, opts...),
	}
}

// Submit enqueues a job without waiting for it to run.
func (p *Pool) Submit(ctx context.Context, job Job) error {
	if p.stopped.Load() {
		return ErrStopped
	}
	p.pool.Submit(func() {
		job(WithExecutor(ctx, p))
	})
	return nil
}

// SubmitWait runs the job on the pool and blocks until it completes.
// When called from a goroutine already running on this pool the job
// runs inline, so jobs may safely re-enter their own executor.
func (p *Pool) SubmitWait(ctx context.Context, job Job) error {
	if On(ctx, p) {
		job(ctx)
		return nil
	}
	if p.stopped.Load() {
		return ErrStopped
	}
	p.pool.SubmitAndWait(func() {
		job(WithExecutor(ctx, p))
	})
	return nil
}

// Stop stops the pool and waits for queued jobs to finish.
func (p *Pool) Stop() {
	if p.stopped.Swap(true) {
		return
	}
	p.pool.StopAndWait()
}

// QueueDepth returns the number of jobs waiting in the pool's queue.
func (p *Pool) QueueDepth() int {
	return int(p.pool.WaitingTasks())
}
