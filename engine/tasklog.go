package engine

import (
	"fmt"

	"github.com/franksops/autotransfer/ui"
)

// taskLog prefixes every message with the task's [profile][file] key.
type taskLog struct {
	sink   ui.Sink
	prefix string
}

func newTaskLog(sink ui.Sink, t *Task) taskLog {
	return taskLog{sink: sink, prefix: t.Key() + ": "}
}

func (l taskLog) Info(format string, args ...any) {
	l.sink.Info(l.prefix + fmt.Sprintf(format, args...))
}

func (l taskLog) Warn(format string, args ...any) {
	l.sink.Warn(l.prefix + fmt.Sprintf(format, args...))
}

func (l taskLog) Error(format string, args ...any) {
	l.sink.Error(l.prefix + fmt.Sprintf(format, args...))
}
