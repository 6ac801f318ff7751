package ui

import (
	"github.com/rs/zerolog"
)

// ensure interface is implemented
var _ Sink = (*TextSink)(nil)

// TextSink writes every event as a log line. It is used whenever the
// dashboard cannot be shown; progress updates become status lines.
type TextSink struct {
	log zerolog.Logger
}

func NewTextSink(log zerolog.Logger) *TextSink {
	return &TextSink{log: log}
}

func (t *TextSink) Info(msg string)  { t.log.Info().Msg(msg) }
func (t *TextSink) Warn(msg string)  { t.log.Warn().Msg(msg) }
func (t *TextSink) Error(msg string) { t.log.Error().Msg(msg) }

func (t *TextSink) AddEntry(key string) {
	t.log.Debug().Str("entry", key).Msg("progress started")
}

func (t *TextSink) RemoveEntry(key string) {
	t.log.Debug().Str("entry", key).Msg("progress finished")
}

func (t *TextSink) UpdateEntry(key string, percent int, status, displayName string) {
	ev := t.log.Info().Int("percent", clampPercent(percent))
	if displayName != "" {
		ev = ev.Str("item", displayName)
	}
	ev.Msg(key + ": " + status)
}
