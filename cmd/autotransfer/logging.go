package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/franksops/autotransfer/config"
)

// newLogger builds the process logger. Console output is human readable;
// the optional log file gets JSON and is rotated.
func newLogger(s config.Settings, console io.Writer) (zerolog.Logger, func(), error) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s.LogLevel)))
	if err != nil {
		return zerolog.Nop(), func() {}, fmt.Errorf("log_level: %w", err)
	}

	var writers []io.Writer
	if console != nil {
		writers = append(writers, zerolog.ConsoleWriter{Out: console, TimeFormat: time.DateTime})
	}

	closeFn := func() {}
	if s.LogFile != "" {
		file := &lumberjack.Logger{
			Filename:   s.LogFile,
			MaxSize:    100,
			MaxAge:     14,
			MaxBackups: 10,
		}
		writers = append(writers, file)
		closeFn = func() { _ = file.Close() }
	}

	var out io.Writer
	switch len(writers) {
	case 0:
		out = io.Discard
	case 1:
		out = writers[0]
	default:
		out = zerolog.MultiLevelWriter(writers...)
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), closeFn, nil
}
