package dispatch

import "errors"

// Sentinel errors for executors.
var (
	// ErrNotRunning is returned when a job is submitted to an executor
	// that has not been started or has already stopped.
	ErrNotRunning = errors.New("executor is not running")

	// ErrAlreadyRunning is returned when Start is called on a running executor.
	ErrAlreadyRunning = errors.New("executor is already running")

	// ErrStopped is returned when a job is submitted to a stopped pool.
	ErrStopped = errors.New("executor has been stopped")
)
