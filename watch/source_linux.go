package watch

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/franksops/autotransfer/config"
	"github.com/franksops/autotransfer/ui"
)

// watchMask selects the inotify events delivered for each input directory.
// IN_CREATE is reported but never accepted; only IN_MOVED_TO and IN_ATTRIB
// mean the file is complete.
const watchMask = unix.IN_ATTRIB | unix.IN_MOVED_TO | unix.IN_MODIFY |
	unix.IN_CREATE | unix.IN_DELETE | unix.IN_MOVED_FROM | unix.IN_ONLYDIR

const eventBufferSize = unix.SizeofInotifyEvent * 4096

// Source delivers notifications for the input directory of every profile.
// Directories are watched non-recursively through one inotify instance.
type Source struct {
	file *os.File
	sink ui.Sink

	// dirs maps watch descriptors to directories. Only Run touches it after
	// NewSource returns.
	dirs map[int32]string
}

// NewSource starts watching every profile's input directory.
func NewSource(profiles []*config.Profile, sink ui.Sink) (*Source, error) {
	fd, err := unix.InotifyInit1(unix.IN_CLOEXEC | unix.IN_NONBLOCK)
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// A non-blocking descriptor is registered with the runtime poller, so
	// Close and read deadlines interrupt a pending Read.
	s := &Source{
		file: os.NewFile(uintptr(fd), "inotify"),
		sink: sink,
		dirs: make(map[int32]string),
	}
	for _, p := range profiles {
		wd, err := unix.InotifyAddWatch(fd, p.InputDirectory, watchMask)
		if err != nil {
			_ = s.file.Close()
			return nil, fmt.Errorf("%s watch %s: %w", p.Tag(), p.InputDirectory, err)
		}
		s.dirs[int32(wd)] = p.InputDirectory
		sink.Info(fmt.Sprintf("%s Watching: %s --> %s", p.Tag(), p.InputDirectory, p.Destination))
	}
	return s, nil
}

// Run hands every event to handle, in delivery order, until ctx is done or
// the source is closed.
func (s *Source) Run(ctx context.Context, handle func(Event)) error {
	stop := context.AfterFunc(ctx, func() {
		_ = s.file.SetReadDeadline(time.Now())
	})
	defer stop()

	buf := make([]byte, eventBufferSize)
	for {
		n, err := s.file.Read(buf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, os.ErrClosed) {
				return nil
			}
			return fmt.Errorf("read events: %w", err)
		}
		for _, ev := range s.decode(buf[:n]) {
			handle(ev)
		}
	}
}

// decode splits a read from the inotify descriptor into events. Each record
// is a fixed header followed by a NUL padded name.
func (s *Source) decode(buf []byte) []Event {
	var events []Event
	for len(buf) >= unix.SizeofInotifyEvent {
		wd := int32(binary.NativeEndian.Uint32(buf[0:4]))
		mask := binary.NativeEndian.Uint32(buf[4:8])
		end := unix.SizeofInotifyEvent + int(binary.NativeEndian.Uint32(buf[12:16]))
		if end > len(buf) {
			break
		}
		name := strings.TrimRight(string(buf[unix.SizeofInotifyEvent:end]), "\x00")
		buf = buf[end:]

		if mask&unix.IN_Q_OVERFLOW != 0 {
			s.sink.Error("watcher: event queue overflowed, notifications were lost")
			continue
		}
		dir, ok := s.dirs[wd]
		if !ok {
			continue
		}
		if mask&unix.IN_IGNORED != 0 {
			s.sink.Warn(fmt.Sprintf("No longer watching: %s", dir))
			delete(s.dirs, wd)
			continue
		}
		if name == "" {
			continue
		}
		if k := FromInotify(mask); k != 0 {
			events = append(events, Event{Path: filepath.Join(dir, name), Kinds: k})
		}
	}
	return events
}

// FromInotify maps an inotify event mask onto kinds.
func FromInotify(mask uint32) Kind {
	var k Kind
	if mask&unix.IN_ATTRIB != 0 {
		k |= KindAttrib
	}
	if mask&unix.IN_MOVED_TO != 0 {
		k |= KindMovedTo
	}
	if mask&unix.IN_MODIFY != 0 {
		k |= KindModify
	}
	if mask&unix.IN_CREATE != 0 {
		k |= KindCreate
	}
	if mask&unix.IN_DELETE != 0 {
		k |= KindRemove
	}
	if mask&unix.IN_MOVED_FROM != 0 {
		k |= KindRename
	}
	return k
}

// Close stops the watcher. A running Run returns.
func (s *Source) Close() error {
	return s.file.Close()
}
