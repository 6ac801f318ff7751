package watch

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/franksops/autotransfer/config"
	"github.com/franksops/autotransfer/engine"
	"github.com/franksops/autotransfer/ui"
)

// Resolver finds the profile owning a watched directory.
type Resolver interface {
	ProfileFor(dir string) (*config.Profile, error)
}

// Enqueuer accepts transfer requests.
type Enqueuer interface {
	Submit(path string, profile *config.Profile) error
}

// Filter classifies events and forwards accepted ones to the queue.
type Filter struct {
	profiles Resolver
	queue    Enqueuer
	sink     ui.Sink
}

// NewFilter creates a Filter.
func NewFilter(profiles Resolver, queue Enqueuer, sink ui.Sink) *Filter {
	return &Filter{profiles: profiles, queue: queue, sink: sink}
}

// Handle logs ev unless it only carries ignored kinds, and enqueues its
// path when an accepted kind is present. It reports whether a transfer was
// requested.
func (f *Filter) Handle(ev Event) bool {
	if ev.Kinds == 0 || ev.Kinds&^Ignored == 0 {
		return false
	}
	f.sink.Info(fmt.Sprintf("Event [%s] on %s", ev.Kinds, ev.Path))

	if !ev.Kinds.Has(Accepted) {
		return false
	}

	profile, err := f.profiles.ProfileFor(filepath.Dir(ev.Path))
	if err != nil {
		f.sink.Error(fmt.Sprintf("%s: %v", ev.Path, err))
		return false
	}

	if err := f.queue.Submit(ev.Path, profile); err != nil {
		if !errors.Is(err, engine.ErrDuplicate) {
			f.sink.Warn(fmt.Sprintf("%s[%s]: not queued: %v", profile.Tag(), filepath.Base(ev.Path), err))
		}
		return false
	}
	return true
}
