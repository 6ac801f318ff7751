package watch

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franksops/autotransfer/config"
	"github.com/franksops/autotransfer/provider"
)

func TestScan_SynthesizesMovedTo(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/movies/b.mkv", []byte("b"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/movies/a.mkv", []byte("a"), 0o644))
	require.NoError(t, fs.MkdirAll("/movies/extras", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/keep/c.mkv", []byte("c"), 0o644))

	profiles := []*config.Profile{
		watchProfile("movies", "/movies", config.PolicyMove),
		watchProfile("keep", "/keep", config.PolicyNothing),
	}
	sink := &logSink{}

	var events []Event
	err := Scan(context.Background(), provider.NewLocalProvider(fs), profiles, sink, func(ev Event) {
		events = append(events, ev)
	})
	require.NoError(t, err)

	assert.Equal(t, []Event{
		{Path: "/movies/a.mkv", Kinds: KindMovedTo},
		{Path: "/movies/b.mkv", Kinds: KindMovedTo},
		{Path: "/movies/extras", Kinds: KindMovedTo},
	}, events)

	infos, _, _ := sink.snapshot()
	assert.True(t, anyContains(infos, "[movies] Pre-existing file detected: a.mkv"))
	assert.False(t, anyContains(infos, "c.mkv"))
}

func TestScan_FeedsFilter(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/movies/a.mkv", []byte("a"), 0o644))

	p := watchProfile("movies", "/movies", config.PolicyDelete)
	q := &fakeQueue{}
	sink := &logSink{}
	f := NewFilter(profileMap{"/movies": p}, q, sink)

	require.NoError(t, Scan(context.Background(), provider.NewLocalProvider(fs), []*config.Profile{p}, sink, func(ev Event) {
		f.Handle(ev)
	}))
	assert.Equal(t, []string{"/movies/a.mkv"}, q.paths())
}

func TestScan_MissingDirectory(t *testing.T) {
	profiles := []*config.Profile{watchProfile("movies", "/movies", config.PolicyMove)}
	err := Scan(context.Background(), provider.NewLocalProvider(afero.NewMemMapFs()), profiles, &logSink{}, func(Event) {})
	assert.Error(t, err)
}
