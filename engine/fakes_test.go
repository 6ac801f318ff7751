package engine

import (
	"context"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/franksops/autotransfer/config"
)

// fakeProcess is driven by the test: it writes output lines and decides the
// exit code.
type fakeProcess struct {
	cmd Command

	stdoutR, stderrR *io.PipeReader
	stdoutW, stderrW *io.PipeWriter

	exit     chan int
	once     sync.Once
	killedMu sync.Mutex
	killed   bool
}

func newFakeProcess(cmd Command) *fakeProcess {
	p := &fakeProcess{cmd: cmd, exit: make(chan int, 1)}
	p.stdoutR, p.stdoutW = io.Pipe()
	p.stderrR, p.stderrW = io.Pipe()
	return p
}

func (p *fakeProcess) Stdout() io.Reader { return p.stdoutR }
func (p *fakeProcess) Stderr() io.Reader { return p.stderrR }

func (p *fakeProcess) Wait() (int, error) { return <-p.exit, nil }

func (p *fakeProcess) Kill() error {
	p.killedMu.Lock()
	p.killed = true
	p.killedMu.Unlock()
	p.Exit(-1)
	return nil
}

func (p *fakeProcess) Killed() bool {
	p.killedMu.Lock()
	defer p.killedMu.Unlock()
	return p.killed
}

func (p *fakeProcess) Out(s string) { _, _ = p.stdoutW.Write([]byte(s)) }
func (p *fakeProcess) Err(s string) { _, _ = p.stderrW.Write([]byte(s)) }

// Exit closes the output streams and reports code from Wait.
func (p *fakeProcess) Exit(code int) {
	p.once.Do(func() {
		_ = p.stdoutW.Close()
		_ = p.stderrW.Close()
		p.exit <- code
	})
}

type fakeLauncher struct {
	mu     sync.Mutex
	procs  []*fakeProcess
	byPath map[string]*fakeProcess
	fail   map[string]error
}

func newFakeLauncher() *fakeLauncher {
	return &fakeLauncher{
		byPath: make(map[string]*fakeProcess),
		fail:   make(map[string]error),
	}
}

func (l *fakeLauncher) Launch(_ context.Context, cmd Command) (Process, error) {
	path := cmd.Args[len(cmd.Args)-2]

	l.mu.Lock()
	defer l.mu.Unlock()
	if err, ok := l.fail[path]; ok {
		return nil, err
	}
	p := newFakeProcess(cmd)
	l.procs = append(l.procs, p)
	l.byPath[path] = p
	return p, nil
}

func (l *fakeLauncher) failOn(path string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fail[path] = err
}

func (l *fakeLauncher) proc(path string) *fakeProcess {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.byPath[path]
}

// launched returns the source paths in launch order.
func (l *fakeLauncher) launched() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.procs))
	for i, p := range l.procs {
		out[i] = p.cmd.Args[len(p.cmd.Args)-2]
	}
	return out
}

type sinkUpdate struct {
	key     string
	percent int
	status  string
	name    string
}

// recordingSink keeps everything it is told.
type recordingSink struct {
	mu      sync.Mutex
	infos   []string
	warns   []string
	errors  []string
	entries map[string]bool
	updates []sinkUpdate
	// trail interleaves info lines and entry removals in call order.
	trail []string
}

func newRecordingSink() *recordingSink {
	return &recordingSink{entries: make(map[string]bool)}
}

func (s *recordingSink) Info(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.infos = append(s.infos, msg)
	s.trail = append(s.trail, "info "+msg)
}

func (s *recordingSink) Warn(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warns = append(s.warns, msg)
}

func (s *recordingSink) Error(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, msg)
}

func (s *recordingSink) AddEntry(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = true
}

func (s *recordingSink) RemoveEntry(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	s.trail = append(s.trail, "remove "+key)
}

func (s *recordingSink) UpdateEntry(key string, percent int, status, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, sinkUpdate{key, percent, status, name})
}

func (s *recordingSink) hasEntry(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[key]
}

func (s *recordingSink) lastUpdate() (sinkUpdate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.updates) == 0 {
		return sinkUpdate{}, false
	}
	return s.updates[len(s.updates)-1], true
}

func contains(msgs []string, sub string) bool {
	for _, m := range msgs {
		if strings.Contains(m, sub) {
			return true
		}
	}
	return false
}

// position returns the index of the first trail item containing sub, or -1.
func (s *recordingSink) position(sub string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.IndexFunc(s.trail, func(m string) bool { return strings.Contains(m, sub) })
}

func (s *recordingSink) infoContains(sub string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return contains(s.infos, sub)
}

func (s *recordingSink) warnContains(sub string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return contains(s.warns, sub)
}

func (s *recordingSink) errorContains(sub string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return contains(s.errors, sub)
}

func testProfile(policy config.CompletionPolicy) *config.Profile {
	return &config.Profile{
		ID:                 "movies",
		InputDirectory:     "/in",
		ErrorDirectory:     "/err",
		CompletedDirectory: "/done",
		OnComplete:         policy,
		Destination:        config.Destination{Host: "nas", Port: 22, Path: "/media"},
	}
}
