package dispatch

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// Serial is an executor backed by a single dedicated goroutine and a
// bounded FIFO queue. It models contexts like a UI/main loop where all
// work must run on one goroutine in submission order.
type Serial struct {
	// Configuration
	queueSize    int
	panicHandler PanicHandler

	// State
	mu      sync.Mutex // protects queue creation/destruction
	queue   chan serialTask
	running atomic.Bool
	wg      sync.WaitGroup
}

// serialTask is a queued job with its submission context.
type serialTask struct {
	ctx  context.Context
	job  Job
	done chan struct{} // non-nil for SubmitWait
}

// NewSerial creates a new serial executor.
func NewSerial(opts ...SerialOption) *Serial {
	s := &Serial{
		queueSize:    1024,
		panicHandler: defaultPanicHandler,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SerialOption configures a Serial executor.
type SerialOption func(*Serial)

// WithQueueSize sets the job queue size.
func WithQueueSize(size int) SerialOption {
	return func(s *Serial) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithSerialPanicHandler sets the panic handler for escaped job panics.
func WithSerialPanicHandler(h PanicHandler) SerialOption {
	return func(s *Serial) {
		if h != nil {
			s.panicHandler = h
		}
	}
}

// Start starts the executor's goroutine.
func (s *Serial) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return ErrAlreadyRunning
	}

	s.queue = make(chan serialTask, s.queueSize)
	s.running.Store(true)

	s.wg.Add(1)
	go s.loop(s.queue)

	return nil
}

// Stop stops the executor gracefully. Jobs already queued still run;
// Stop waits for them to finish or until the context is cancelled.
func (s *Serial) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running.Load() {
		s.mu.Unlock()
		return ErrNotRunning
	}

	s.running.Store(false)
	close(s.queue)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning returns true if the executor is running.
func (s *Serial) IsRunning() bool {
	return s.running.Load()
}

// QueueDepth returns the current number of queued jobs.
// Returns 0 if the executor is not running.
func (s *Serial) QueueDepth() int {
	if !s.running.Load() {
		return 0
	}
	return len(s.queue)
}

// Submit enqueues a job without waiting for it to run. If the queue is
// full, Submit blocks until space frees up or the context is cancelled;
// accepted jobs are never dropped, so submission order is delivery order.
func (s *Serial) Submit(ctx context.Context, job Job) error {
	return s.enqueue(serialTask{ctx: ctx, job: job})
}

// SubmitWait runs the job on the executor's goroutine and blocks until
// it completes. When called from the executor's own goroutine the job
// runs inline instead, so jobs may safely re-enter their own executor.
func (s *Serial) SubmitWait(ctx context.Context, job Job) error {
	if On(ctx, s) {
		job(ctx)
		return nil
	}

	done := make(chan struct{})
	if err := s.enqueue(serialTask{ctx: ctx, job: job, done: done}); err != nil {
		return err
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		// The job is already queued and will still run; the caller
		// just stops waiting for it.
		return ctx.Err()
	}
}

// enqueue adds a task to the queue, blocking while the queue is full.
func (s *Serial) enqueue(task serialTask) error {
	if !s.running.Load() {
		return ErrNotRunning
	}

	select {
	case s.queue <- task:
		return nil
	case <-task.ctx.Done():
		return task.ctx.Err()
	}
}

// loop processes tasks until the queue is closed.
func (s *Serial) loop(queue chan serialTask) {
	defer s.wg.Done()

	for task := range queue {
		s.runTask(task)
	}
}

// runTask executes a single task with panic recovery.
// The done channel is always closed, even if the job panics.
func (s *Serial) runTask(task serialTask) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			func() {
				defer func() { _ = recover() }()
				s.panicHandler(r, stack)
			}()
		}
		if task.done != nil {
			close(task.done)
		}
	}()

	task.job(WithExecutor(task.ctx, s))
}
