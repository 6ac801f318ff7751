package engine

import "github.com/pkg/errors"

var (
	// ErrSpawn marks a transfer whose process could not be started.
	ErrSpawn = errors.New("spawn failure")

	// ErrProcess marks a transfer whose process exited non-zero.
	ErrProcess = errors.New("process failure")

	// ErrCleanup marks a failed move or delete after the transfer finished.
	// Cleanup errors are reported as warnings and never change the outcome
	// of the transfer itself.
	ErrCleanup = errors.New("cleanup failure")

	// ErrQueueClosed is returned for tasks submitted after Shutdown.
	ErrQueueClosed = errors.New("queue closed")

	// ErrDuplicate is returned for a path that is already pending or active.
	ErrDuplicate = errors.New("already queued")
)
