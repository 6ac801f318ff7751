package engine

import (
	"bufio"
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// State is a Worker lifecycle state. Workers move strictly forward:
// Spawned, Running, Exited, Ended, Done.
type State int32

const (
	StateSpawned State = iota
	StateRunning
	StateExited
	StateEnded
	StateDone
)

func (s State) String() string {
	switch s {
	case StateSpawned:
		return "Spawned"
	case StateRunning:
		return "Running"
	case StateExited:
		return "Exited"
	case StateEnded:
		return "Ended"
	case StateDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// Snapshot is the last progress the transfer tool reported.
type Snapshot struct {
	Percent     int
	Size        string
	Rate        string
	ETA         string
	DisplayName string
}

// Worker owns the external process transferring one task.
type Worker struct {
	task *Task
	q    *Queue
	log  taskLog

	mu       sync.Mutex
	state    State
	snapshot Snapshot
	alive    bool
	exitCode int
	proc     Process
}

func newWorker(q *Queue, t *Task) *Worker {
	return &Worker{
		task:     t,
		q:        q,
		log:      newTaskLog(q.cfg.Sink, t),
		snapshot: Snapshot{DisplayName: t.Key()},
	}
}

// Task returns the task being transferred.
func (w *Worker) Task() *Task { return w.task }

// State returns the current lifecycle state.
func (w *Worker) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Snapshot returns the last observed progress.
func (w *Worker) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot
}

// Alive reports whether the process is still running.
func (w *Worker) Alive() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.alive
}

// ExitCode returns the process exit code once the worker has Exited.
func (w *Worker) ExitCode() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.exitCode
}

func (w *Worker) setState(s State) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
}

// start launches the process. It runs inside the queue's dispatch section,
// so everything after process creation happens on the worker's own
// goroutine.
func (w *Worker) start() {
	cfg := w.q.cfg
	t := w.task

	t.setStatus(StatusActive)
	if err := cfg.Tracker.MarkActive(t); err != nil {
		w.log.Warn("Unable to record transfer start: %v", err)
	}
	cfg.Sink.AddEntry(t.Key())
	w.log.Info("Sending to %s", t.Profile.Destination)

	proc, err := cfg.Launcher.Launch(w.q.ctx, TransferCommand(cfg.Program, t.SourcePath, t.Profile))
	if err != nil {
		cause := errors.Wrap(ErrSpawn, err.Error())
		w.log.Error("%v --> %s", cause, t.Profile.Destination)
		go w.finish(-1, cause)
		return
	}

	w.mu.Lock()
	w.proc = proc
	w.alive = true
	w.state = StateRunning
	w.mu.Unlock()
	w.log.Info("Connection made...")

	go w.run(proc)
}

func (w *Worker) run(proc Process) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		w.scan(proc.Stdout(), w.handleStdout)
	}()
	go func() {
		defer wg.Done()
		w.scan(proc.Stderr(), w.handleStderr)
	}()
	wg.Wait()

	code, err := proc.Wait()

	w.mu.Lock()
	w.state = StateExited
	w.alive = false
	w.exitCode = code
	w.mu.Unlock()
	w.log.Info("Process exited, status %d", code)

	var cause error
	switch {
	case err != nil:
		cause = errors.Wrap(ErrProcess, err.Error())
	case code != 0:
		cause = errors.Wrapf(ErrProcess, "exit status %d", code)
	}
	w.finish(code, cause)
}

// finish applies the completion policy and hands the slot back to the queue.
func (w *Worker) finish(code int, cause error) {
	cfg := w.q.cfg
	t := w.task

	w.setState(StateEnded)
	w.log.Info("Process ended, status %d", code)
	w.log.Info("Cleaning up...")

	if cause == nil {
		t.setStatus(StatusSucceeded)
	} else {
		t.setStatus(StatusFailed)
	}

	var cleanupErr error
	if w.q.ctx.Err() != nil {
		w.log.Warn("Shutting down, leaving %s in place", t.SourcePath)
	} else {
		routeCode := code
		if cause != nil && routeCode == 0 {
			routeCode = -1
		}
		cleanupErr = cfg.Router.Route(w.q.ctx, t, routeCode, w.log)
	}
	cfg.Sink.RemoveEntry(t.Key())

	record := cause
	if record == nil {
		record = cleanupErr
	}
	if err := cfg.Tracker.MarkFinished(t, code, record); err != nil {
		w.log.Warn("Unable to record transfer result: %v", err)
	}

	w.log.Info("Closing transfer... Done!")
	w.setState(StateDone)
	w.q.onWorkerDone(w)
}

func (w *Worker) handleStdout(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	p := ParseProgress(line)
	if p.Kind == Unrecognized {
		w.log.Info("%s: %s", filepath.Base(w.q.cfg.Program), line)
		return
	}

	w.mu.Lock()
	w.snapshot.Percent = p.Percent
	w.snapshot.Size = p.Size
	w.snapshot.Rate = p.Rate
	w.snapshot.ETA = p.ETA
	var name string
	if p.Kind == NewItemHeader {
		name = w.task.Key() + ": " + p.Name
		w.snapshot.DisplayName = name
	}
	w.mu.Unlock()

	w.q.cfg.Sink.UpdateEntry(w.task.Key(), p.Percent, p.StatusText(), name)
}

func (w *Worker) handleStderr(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	w.log.Error("%s", line)
}

// scan feeds every line of r to fn. Progress output uses carriage returns
// to redraw in place, so both \r and \n end a line.
func (w *Worker) scan(r io.Reader, fn func(string)) {
	buf := w.q.cfg.Buffers.Get()
	defer w.q.cfg.Buffers.Put(buf)

	sc := bufio.NewScanner(r)
	sc.Buffer(*buf, len(*buf))
	sc.Split(scanLines)
	for sc.Scan() {
		fn(strings.ToValidUTF8(sc.Text(), "�"))
	}
	if err := sc.Err(); err != nil {
		w.log.Warn("Unable to read process output: %v", err)
		// Keep draining so the process never blocks on a full pipe.
		_, _ = io.Copy(io.Discard, r)
	}
}

func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// kill terminates the process if it is still running.
func (w *Worker) kill() error {
	w.mu.Lock()
	proc, alive := w.proc, w.alive
	w.mu.Unlock()
	if proc == nil || !alive {
		return nil
	}
	return proc.Kill()
}
