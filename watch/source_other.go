//go:build !linux

package watch

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"

	"github.com/franksops/autotransfer/config"
	"github.com/franksops/autotransfer/ui"
)

// Source delivers notifications for the input directory of every profile.
// Directories are watched non-recursively. Outside Linux it is backed by
// fsnotify, which cannot tell a rename into the directory from a file
// created in place.
type Source struct {
	w    *fsnotify.Watcher
	sink ui.Sink
}

// NewSource starts watching every profile's input directory.
func NewSource(profiles []*config.Profile, sink ui.Sink) (*Source, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	for _, p := range profiles {
		if err := w.Add(p.InputDirectory); err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("%s watch %s: %w", p.Tag(), p.InputDirectory, err)
		}
		sink.Info(fmt.Sprintf("%s Watching: %s --> %s", p.Tag(), p.InputDirectory, p.Destination))
	}
	return &Source{w: w, sink: sink}, nil
}

// Run hands every event to handle, in delivery order, until ctx is done or
// the source is closed.
func (s *Source) Run(ctx context.Context, handle func(Event)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err, ok := <-s.w.Errors:
			if !ok {
				return nil
			}
			s.sink.Error(fmt.Sprintf("watcher: %v", err))

		case e, ok := <-s.w.Events:
			if !ok {
				return nil
			}
			k := FromFsnotify(e.Op)
			if k == 0 {
				continue
			}
			handle(Event{Path: e.Name, Kinds: k})
		}
	}
}

// Close stops the watcher. A running Run returns.
func (s *Source) Close() error {
	return s.w.Close()
}
