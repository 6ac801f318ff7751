package watch

import (
	"strings"
	"sync"

	"github.com/franksops/autotransfer/config"
)

type logSink struct {
	mu    sync.Mutex
	infos []string
	warns []string
	errs  []string
}

func (s *logSink) Info(msg string)  { s.add(&s.infos, msg) }
func (s *logSink) Warn(msg string)  { s.add(&s.warns, msg) }
func (s *logSink) Error(msg string) { s.add(&s.errs, msg) }

func (s *logSink) AddEntry(string)                         {}
func (s *logSink) RemoveEntry(string)                      {}
func (s *logSink) UpdateEntry(string, int, string, string) {}

func (s *logSink) add(dst *[]string, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	*dst = append(*dst, msg)
}

func (s *logSink) snapshot() (infos, warns, errs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.infos...), append([]string(nil), s.warns...), append([]string(nil), s.errs...)
}

func anyContains(msgs []string, sub string) bool {
	for _, m := range msgs {
		if strings.Contains(m, sub) {
			return true
		}
	}
	return false
}

type submission struct {
	path    string
	profile *config.Profile
}

type fakeQueue struct {
	mu  sync.Mutex
	got []submission
	err error
}

func (q *fakeQueue) Submit(path string, p *config.Profile) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.got = append(q.got, submission{path, p})
	return nil
}

func (q *fakeQueue) paths() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, len(q.got))
	for i, s := range q.got {
		out[i] = s.path
	}
	return out
}

func watchProfile(id, dir string, policy config.CompletionPolicy) *config.Profile {
	return &config.Profile{
		ID:             id,
		InputDirectory: dir,
		ErrorDirectory: dir + "-err",
		OnComplete:     policy,
		Destination:    config.Destination{Host: "nas", Port: 22, Path: "/media"},
	}
}

type profileMap map[string]*config.Profile

func (m profileMap) ProfileFor(dir string) (*config.Profile, error) {
	if p, ok := m[dir]; ok {
		return p, nil
	}
	return nil, config.ErrConfigLookupMiss
}
