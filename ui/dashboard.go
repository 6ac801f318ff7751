package ui

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// ensure interface is implemented
var _ Sink = (*Dashboard)(nil)

// Entry is one progress box on the dashboard.
type Entry struct {
	Key         string
	DisplayName string
	Status      string
	Percent     int

	seq uint64
}

// Dashboard holds the live state drawn by the terminal program: active
// progress entries plus a bounded log. All methods are safe for concurrent
// use.
type Dashboard struct {
	mu      sync.Mutex
	entries map[string]*Entry
	nextSeq uint64
	logs    *LogBuffer

	// mirror receives every log line as well, typically a rotating file.
	mirror zerolog.Logger
}

// NewDashboard creates an empty dashboard keeping logCapacity log lines.
func NewDashboard(logCapacity int, mirror zerolog.Logger) *Dashboard {
	return &Dashboard{
		entries: make(map[string]*Entry),
		logs:    NewLogBuffer(logCapacity),
		mirror:  mirror,
	}
}

func (d *Dashboard) AddEntry(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextSeq++
	d.entries[key] = &Entry{Key: key, DisplayName: key, seq: d.nextSeq}
}

func (d *Dashboard) RemoveEntry(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.entries, key)
}

func (d *Dashboard) UpdateEntry(key string, percent int, status, displayName string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.entries[key]
	if !ok {
		return
	}
	e.Percent = clampPercent(percent)
	e.Status = status
	if displayName != "" {
		e.DisplayName = displayName
	}
}

// Log appends msg to the log pane.
func (d *Dashboard) Log(msg string) {
	d.mu.Lock()
	d.logs.Add(msg)
	d.mu.Unlock()
	d.mirror.Info().Msg(msg)
}

func (d *Dashboard) Info(msg string) { d.Log(msg) }

func (d *Dashboard) Warn(msg string) {
	d.mu.Lock()
	d.logs.Add("WARNING: " + msg)
	d.mu.Unlock()
	d.mirror.Warn().Msg(msg)
}

func (d *Dashboard) Error(msg string) {
	d.mu.Lock()
	d.logs.Add("ERROR: " + msg)
	d.mu.Unlock()
	d.mirror.Error().Msg(msg)
}

// Entries returns the progress entries ordered by percent, highest first.
// Ties keep the order the entries were added in.
func (d *Dashboard) Entries() []Entry {
	d.mu.Lock()
	out := make([]Entry, 0, len(d.entries))
	for _, e := range d.entries {
		out = append(out, *e)
	}
	d.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Percent != out[j].Percent {
			return out[i].Percent > out[j].Percent
		}
		return out[i].seq < out[j].seq
	})
	return out
}

// LogLines returns the buffered log, oldest first.
func (d *Dashboard) LogLines() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.logs.Lines()
}

// Render draws the current state into a width x height frame. The left half
// holds progress boxes, the right half the most recent log lines. Every call
// recomputes the whole frame.
func (d *Dashboard) Render(width, height int) Frame {
	split := width / 2
	f := newFrame(width, height, split)
	if width < 4 || height < 2 {
		return f
	}

	f.border(0, split, cornerTopLeft, teeDown, cornerBottomLeft, teeUp)
	f.border(split, width-split, teeDown, cornerTopRight, teeUp, cornerBottomRight)

	drawProgressPane(f, d.Entries(), split)
	drawLogPane(f, d.LogLines(), split, width-split)
	return f
}

func clampPercent(p int) int {
	return min(max(p, 0), 100)
}
