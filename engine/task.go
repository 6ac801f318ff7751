package engine

import (
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/franksops/autotransfer/config"
)

// Status is the lifecycle position of a Task.
type Status int32

const (
	StatusQueued Status = iota
	StatusActive
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusQueued:
		return "Queued"
	case StatusActive:
		return "Active"
	case StatusSucceeded:
		return "Succeeded"
	case StatusFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Task represents one source path waiting for, or undergoing, a transfer.
type Task struct {
	// ID uniquely identifies the task in logs and the history journal.
	ID string

	// SourcePath is the file or directory inside the profile's input directory.
	SourcePath string

	// Profile is the transfer policy of the directory SourcePath arrived in.
	Profile *config.Profile

	// EnqueuedAt is when the accepted event was turned into this task.
	EnqueuedAt time.Time

	status atomic.Int32
}

// NewTask creates a queued task for path.
func NewTask(path string, profile *config.Profile) *Task {
	return &Task{
		ID:         uuid.NewString(),
		SourcePath: path,
		Profile:    profile,
		EnqueuedAt: time.Now(),
	}
}

// Status returns the current status.
func (t *Task) Status() Status { return Status(t.status.Load()) }

func (t *Task) setStatus(s Status) { t.status.Store(int32(s)) }

// Name is the base name of the source path.
func (t *Task) Name() string { return filepath.Base(t.SourcePath) }

// Key identifies the task on the dashboard: [profile][file].
func (t *Task) Key() string {
	return t.Profile.Tag() + "[" + t.Name() + "]"
}
