package ui

import (
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDashboard() *Dashboard {
	return NewDashboard(DefaultLogCapacity, zerolog.Nop())
}

func countBoxes(f Frame) int {
	n := 0
	for y := 0; y < f.Height; y++ {
		left, _ := f.Row(y)
		if r := []rune(left); len(r) > 1 && r[1] == cornerTopLeft {
			n++
		}
	}
	return n
}

func TestLogBuffer_EvictsOldestFirst(t *testing.T) {
	b := NewLogBuffer(3)
	for i := 1; i <= 5; i++ {
		b.Add(fmt.Sprintf("line %d", i))
		assert.LessOrEqual(t, b.Len(), b.Cap())
	}
	assert.Equal(t, []string{"line 3", "line 4", "line 5"}, b.Lines())
}

func TestLogBuffer_DefaultCapacity(t *testing.T) {
	b := NewLogBuffer(0)
	assert.Equal(t, DefaultLogCapacity, b.Cap())
	for i := 0; i < DefaultLogCapacity+7; i++ {
		b.Add(fmt.Sprint(i))
	}
	lines := b.Lines()
	require.Len(t, lines, DefaultLogCapacity)
	assert.Equal(t, "7", lines[0])
	assert.Equal(t, fmt.Sprint(DefaultLogCapacity+6), lines[len(lines)-1])
}

func TestDashboard_UpdateEntry(t *testing.T) {
	d := newTestDashboard()
	d.AddEntry("[tv][show]")
	d.UpdateEntry("[tv][show]", 150, "status", "")
	d.UpdateEntry("[missing][x]", 10, "ignored", "")

	entries := d.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, 100, entries[0].Percent)
	assert.Equal(t, "[tv][show]", entries[0].DisplayName)

	d.UpdateEntry("[tv][show]", -5, "restarted", "[tv][show]: ep1.mkv")
	entries = d.Entries()
	assert.Equal(t, 0, entries[0].Percent)
	assert.Equal(t, "[tv][show]: ep1.mkv", entries[0].DisplayName)

	d.RemoveEntry("[tv][show]")
	assert.Empty(t, d.Entries())
}

func TestDashboard_EntriesSortedByPercent(t *testing.T) {
	d := newTestDashboard()
	for i, pct := range []int{10, 90, 50, 90} {
		key := fmt.Sprintf("k%d", i)
		d.AddEntry(key)
		d.UpdateEntry(key, pct, "", "")
	}

	var keys []string
	for _, e := range d.Entries() {
		keys = append(keys, e.Key)
	}
	assert.Equal(t, []string{"k1", "k3", "k2", "k0"}, keys)
}

func TestRender_BoxCountBoundedByHeight(t *testing.T) {
	d := newTestDashboard()
	for i := 0; i < 5; i++ {
		d.AddEntry(fmt.Sprintf("entry-%d", i))
	}

	for _, height := range []int{2, 4, 5, 8, 11, 20} {
		f := d.Render(60, height)
		assert.Equal(t, min(5, MaxBoxes(height)), countBoxes(f), "height %d", height)
		assert.Len(t, f.Lines(), height)
	}
	assert.Equal(t, 3, MaxBoxes(11))
}

func TestRender_ProgressBox(t *testing.T) {
	d := newTestDashboard()
	d.AddEntry("[tv][show]")
	d.UpdateEntry("[tv][show]", 45, "SIZE: 1,234 COMPLETE: 45%", "")

	f := d.Render(40, 10)
	title, _ := f.Row(1)
	status, _ := f.Row(2)
	bar, _ := f.Row(3)

	assert.Contains(t, title, "[tv][show]")
	assert.Contains(t, status, "SIZE: 1,234")
	assert.Contains(t, bar, "45%")

	// Pane is 20 wide, box 18, bar interior 10 cells.
	assert.Equal(t, BarCells(10, 45), strings.Count(bar, string(fullBlock)))
	assert.Equal(t, 4, BarCells(10, 45))
	assert.Equal(t, []rune(bar)[1], cornerBottomLeft)
	assert.Equal(t, []rune(bar)[2], '[')
}

func TestRender_BarCells(t *testing.T) {
	assert.Equal(t, 0, BarCells(10, 0))
	assert.Equal(t, 10, BarCells(10, 100))
	assert.Equal(t, 10, BarCells(10, 250))
	assert.Equal(t, 0, BarCells(0, 50))
	assert.Equal(t, 33, BarCells(67, 50))
}

func TestRender_LogPaneBottomAnchored(t *testing.T) {
	d := newTestDashboard()
	d.Log("one")
	d.Log("two")

	f := d.Render(40, 6)
	_, first := f.Row(1)
	_, third := f.Row(3)
	_, last := f.Row(4)
	assert.NotContains(t, first, "one")
	assert.Contains(t, third, "one")
	assert.Contains(t, last, "two")
}

func TestRender_LogPaneShowsNewest(t *testing.T) {
	d := newTestDashboard()
	for i := 1; i <= 10; i++ {
		d.Log(fmt.Sprintf("msg %02d", i))
	}

	f := d.Render(40, 6)
	var shown []string
	for y := 1; y <= 4; y++ {
		_, right := f.Row(y)
		shown = append(shown, strings.TrimSpace(strings.Trim(right, string(boxVertical))))
	}
	assert.Equal(t, []string{"msg 07", "msg 08", "msg 09", "msg 10"}, shown)
	assert.Len(t, d.LogLines(), 10)
}

func TestRender_LogPaneWraps(t *testing.T) {
	d := newTestDashboard()
	d.Log(strings.Repeat("x", 25))

	// Right pane is 12 wide, 10 cells of text.
	f := d.Render(24, 8)
	total := 0
	for y := 1; y < f.Height-1; y++ {
		_, right := f.Row(y)
		n := strings.Count(right, "x")
		assert.LessOrEqual(t, n, 10)
		total += n
	}
	assert.Equal(t, 25, total)
}

func TestRender_WarnAndErrorTagged(t *testing.T) {
	d := newTestDashboard()
	d.Warn("unable to delete")
	d.Error("rsync: connection refused")

	lines := d.LogLines()
	assert.Equal(t, []string{"WARNING: unable to delete", "ERROR: rsync: connection refused"}, lines)
}

func TestRender_SmallAndIdempotent(t *testing.T) {
	d := newTestDashboard()
	d.AddEntry("a")
	d.Log("hello")

	for _, size := range [][2]int{{0, 0}, {1, 1}, {3, 1}, {10, 3}, {15, 4}} {
		assert.NotPanics(t, func() { d.Render(size[0], size[1]) })
	}

	first := d.Render(50, 12).Lines()
	second := d.Render(50, 12).Lines()
	assert.Equal(t, first, second)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "a b", sanitize("a\tb"))
	assert.Equal(t, "progress", sanitize("\x1b[32mprogress\x1b[0m"))
	assert.Equal(t, "line", sanitize("line\r\n"))
}
