package engine

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/franksops/autotransfer/config"
	"github.com/franksops/autotransfer/provider"
	"github.com/franksops/autotransfer/ui"
)

// DefaultProgram is the transfer tool used when none is configured.
const DefaultProgram = "rsync"

// Config wires a Queue to its collaborators. Zero values get working
// defaults.
type Config struct {
	MaxTransfers int
	Program      string
	Launcher     Launcher
	Router       *Router
	Sink         ui.Sink
	Tracker      *Tracker
	Buffers      *BufferPool
}

func (c *Config) applyDefaults() {
	if c.MaxTransfers < 1 {
		c.MaxTransfers = 1
	}
	if c.Program == "" {
		c.Program = DefaultProgram
	}
	if c.Launcher == nil {
		c.Launcher = ExecLauncher{}
	}
	if c.Router == nil {
		c.Router = NewRouter(provider.NewLocalProvider(nil))
	}
	if c.Sink == nil {
		c.Sink = ui.NewTextSink(zerolog.Nop())
	}
	if c.Tracker == nil {
		c.Tracker = NewTracker(nil)
	}
	if c.Buffers == nil {
		c.Buffers = NewBufferPool(0)
	}
}

// Queue admits tasks in arrival order and keeps at most MaxTransfers of them
// running.
//
// Lock order is mu then activeMu. Workers leave the active set under
// activeMu alone and take mu only afterwards to dispatch the next task.
type Queue struct {
	cfg Config

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	pending []*Task
	closed  bool

	activeMu sync.Mutex
	active   []*Worker
	limit    int

	wg sync.WaitGroup
}

// NewQueue creates a Queue. Cancelling ctx has the same effect on running
// transfers as Shutdown.
func NewQueue(ctx context.Context, cfg Config) *Queue {
	cfg.applyDefaults()
	ctx, cancel := context.WithCancel(ctx)
	return &Queue{
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
		limit:  cfg.MaxTransfers,
	}
}

// Submit creates a task for path and enqueues it.
func (q *Queue) Submit(path string, profile *config.Profile) error {
	return q.Enqueue(NewTask(path, profile))
}

// Enqueue appends t to the pending list and dispatches if a slot is free.
// It never waits for a transfer.
func (q *Queue) Enqueue(t *Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	if q.tracksLocked(t.SourcePath) {
		q.cfg.Sink.Info(fmt.Sprintf("%s: already queued, ignoring", t.Key()))
		return ErrDuplicate
	}

	q.cfg.Sink.Info(fmt.Sprintf("Enqueueing(%d): %s", len(q.pending), t.SourcePath))
	t.setStatus(StatusQueued)
	q.pending = append(q.pending, t)
	if err := q.cfg.Tracker.MarkQueued(t); err != nil {
		q.cfg.Sink.Warn(fmt.Sprintf("%s: unable to record queued transfer: %v", t.Key(), err))
	}

	q.dispatchLocked()
	return nil
}

// tracksLocked reports whether path is already pending or active.
func (q *Queue) tracksLocked(path string) bool {
	for _, p := range q.pending {
		if p.SourcePath == path {
			return true
		}
	}
	q.activeMu.Lock()
	defer q.activeMu.Unlock()
	for _, w := range q.active {
		if w.task.SourcePath == path {
			return true
		}
	}
	return false
}

// dispatchLocked starts pending tasks from the head while slots are free.
func (q *Queue) dispatchLocked() {
	for len(q.pending) > 0 && !q.closed {
		w := q.admit(q.pending[0])
		if w == nil {
			return
		}
		q.pending[0] = nil
		q.pending = q.pending[1:]
		w.start()
	}
}

func (q *Queue) admit(t *Task) *Worker {
	q.activeMu.Lock()
	defer q.activeMu.Unlock()

	if len(q.active) >= q.limit {
		return nil
	}
	w := newWorker(q, t)
	q.active = append(q.active, w)
	q.wg.Add(1)
	return w
}

func (q *Queue) onWorkerDone(w *Worker) {
	defer q.wg.Done()

	q.activeMu.Lock()
	q.active = slices.DeleteFunc(q.active, func(x *Worker) bool { return x == w })
	q.activeMu.Unlock()

	q.mu.Lock()
	q.dispatchLocked()
	q.mu.Unlock()
}

// SetMaxTransfers changes the concurrency limit. Raising it dispatches
// immediately; lowering it lets running transfers finish.
func (q *Queue) SetMaxTransfers(n int) {
	if n < 1 {
		n = 1
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	q.activeMu.Lock()
	q.limit = n
	q.activeMu.Unlock()

	q.dispatchLocked()
}

// MaxTransfers returns the current concurrency limit.
func (q *Queue) MaxTransfers() int {
	q.activeMu.Lock()
	defer q.activeMu.Unlock()
	return q.limit
}

// Pending returns the waiting tasks, head first.
func (q *Queue) Pending() []*Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.pending)
}

// Len returns the number of pending tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Workers returns the active workers in dispatch order.
func (q *Queue) Workers() []*Worker {
	q.activeMu.Lock()
	defer q.activeMu.Unlock()
	return slices.Clone(q.active)
}

// Active returns the tasks of the active workers in dispatch order.
func (q *Queue) Active() []*Task {
	workers := q.Workers()
	out := make([]*Task, len(workers))
	for i, w := range workers {
		out[i] = w.task
	}
	return out
}

// ActiveCount returns the number of active workers.
func (q *Queue) ActiveCount() int {
	q.activeMu.Lock()
	defer q.activeMu.Unlock()
	return len(q.active)
}

// Snapshot returns pending and active tasks as one consistent view.
func (q *Queue) Snapshot() (pending, active []*Task) {
	q.mu.Lock()
	defer q.mu.Unlock()
	pending = slices.Clone(q.pending)
	q.activeMu.Lock()
	defer q.activeMu.Unlock()
	active = make([]*Task, len(q.active))
	for i, w := range q.active {
		active[i] = w.task
	}
	return pending, active
}

// Shutdown stops admission, drops pending tasks and kills running
// transfers. Their sources stay where they are. It does not wait; call Wait.
func (q *Queue) Shutdown() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	dropped := len(q.pending)
	q.pending = nil
	q.mu.Unlock()

	if dropped > 0 {
		q.cfg.Sink.Warn(fmt.Sprintf("Dropping %d queued transfer(s)", dropped))
	}
	q.cancel()

	for _, w := range q.Workers() {
		if err := w.kill(); err != nil {
			q.cfg.Sink.Warn(fmt.Sprintf("%s: unable to kill transfer: %v", w.task.Key(), err))
		}
	}
}

// Wait blocks until every admitted worker is Done.
func (q *Queue) Wait() {
	q.wg.Wait()
}
