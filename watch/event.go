// Package watch turns filesystem notifications for the watched input
// directories into transfer requests.
package watch

import (
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Kind is a set of change kinds carried by one notification.
type Kind uint8

const (
	KindAttrib Kind = 1 << iota
	KindMovedTo
	KindModify
	KindRemove
	KindRename
	KindCreate
)

// Accepted kinds mean the file is finalized. Ignored kinds mean it may
// still be written to.
const (
	Accepted = KindAttrib | KindMovedTo
	Ignored  = KindModify
)

var kindNames = []struct {
	k    Kind
	name string
}{
	{KindAttrib, "ATTRIB"},
	{KindMovedTo, "MOVED_TO"},
	{KindModify, "MODIFY"},
	{KindRemove, "REMOVE"},
	{KindRename, "RENAME"},
	{KindCreate, "CREATE"},
}

func (k Kind) String() string {
	var names []string
	for _, n := range kindNames {
		if k&n.k != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}

// Has reports whether any kind in other is present.
func (k Kind) Has(other Kind) bool { return k&other != 0 }

// Event is one change notification.
type Event struct {
	Path  string
	Kinds Kind
}

// FromFsnotify maps fsnotify operations onto kinds. fsnotify reports a
// rename into the directory and a file created in place both as Create, so
// Create is never accepted; such files are picked up by their attribute
// change.
func FromFsnotify(op fsnotify.Op) Kind {
	var k Kind
	if op.Has(fsnotify.Chmod) {
		k |= KindAttrib
	}
	if op.Has(fsnotify.Create) {
		k |= KindCreate
	}
	if op.Has(fsnotify.Write) {
		k |= KindModify
	}
	if op.Has(fsnotify.Remove) {
		k |= KindRemove
	}
	if op.Has(fsnotify.Rename) {
		k |= KindRename
	}
	return k
}
