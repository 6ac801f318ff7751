package engine

import (
	"sort"
	"sync"
	"time"

	"github.com/franksops/autotransfer/store"
)

// Tally counts a profile's transfers during this run.
type Tally struct {
	Profile   string
	Queued    int
	Succeeded int
	Failed    int
}

// Tracker records task transitions in the history journal and keeps
// per-profile tallies for the exit summary. The journal is optional.
type Tracker struct {
	store store.Store

	mu      sync.Mutex
	records map[string]*store.TransferRecord
	tallies map[string]*Tally
}

// NewTracker creates a Tracker. s may be nil.
func NewTracker(s store.Store) *Tracker {
	return &Tracker{
		store:   s,
		records: make(map[string]*store.TransferRecord),
		tallies: make(map[string]*Tally),
	}
}

func (tr *Tracker) tally(profile string) *Tally {
	t, ok := tr.tallies[profile]
	if !ok {
		t = &Tally{Profile: profile}
		tr.tallies[profile] = t
	}
	return t
}

// MarkQueued journals a newly accepted task.
func (tr *Tracker) MarkQueued(t *Task) error {
	tr.mu.Lock()
	rec := &store.TransferRecord{
		ID:          t.ID,
		Profile:     t.Profile.ID,
		SourcePath:  t.SourcePath,
		Destination: t.Profile.Destination.String(),
		State:       store.StateQueued,
		QueuedAt:    t.EnqueuedAt,
	}
	tr.records[t.ID] = rec
	tr.tally(t.Profile.ID).Queued++
	snapshot := *rec
	tr.mu.Unlock()

	return tr.save(&snapshot)
}

// MarkActive journals the dispatch of a task.
func (tr *Tracker) MarkActive(t *Task) error {
	tr.mu.Lock()
	rec, ok := tr.records[t.ID]
	if !ok {
		tr.mu.Unlock()
		return nil
	}
	rec.State = store.StateActive
	rec.StartedAt = time.Now()
	snapshot := *rec
	tr.mu.Unlock()

	return tr.save(&snapshot)
}

// MarkFinished journals the terminal state of a task and forgets it.
func (tr *Tracker) MarkFinished(t *Task, exitCode int, cause error) error {
	tr.mu.Lock()
	rec, ok := tr.records[t.ID]
	if !ok {
		tr.mu.Unlock()
		return nil
	}
	delete(tr.records, t.ID)

	rec.ExitCode = exitCode
	rec.FinishedAt = time.Now()
	if t.Status() == StatusSucceeded {
		rec.State = store.StateSucceeded
		tr.tally(t.Profile.ID).Succeeded++
	} else {
		rec.State = store.StateFailed
		tr.tally(t.Profile.ID).Failed++
	}
	if cause != nil {
		rec.Error = cause.Error()
	}
	tr.mu.Unlock()

	return tr.save(rec)
}

func (tr *Tracker) save(rec *store.TransferRecord) error {
	if tr.store == nil {
		return nil
	}
	return tr.store.SaveRecord(rec)
}

// Summary returns the tallies sorted by profile.
func (tr *Tracker) Summary() []Tally {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	out := make([]Tally, 0, len(tr.tallies))
	for _, t := range tr.tallies {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Profile < out[j].Profile })
	return out
}
