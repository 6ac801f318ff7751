package ui

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

const (
	boxHorizontal     = '─'
	boxVertical       = '│'
	cornerTopLeft     = '┌'
	cornerTopRight    = '┐'
	cornerBottomLeft  = '└'
	cornerBottomRight = '┘'
	teeDown           = '┬'
	teeUp             = '┴'
	fullBlock         = '█'

	// boxHeight is the number of rows one progress box occupies.
	boxHeight = 3
	// minBoxWidth leaves room for the corners, brackets and "100%".
	minBoxWidth = 10
)

// Frame is a fixed grid of single-cell runes. Writes outside the grid are
// dropped.
type Frame struct {
	Width  int
	Height int
	// Split is the first column of the right pane.
	Split int

	cells [][]rune
}

func newFrame(width, height, split int) Frame {
	width, height = max(width, 0), max(height, 0)
	cells := make([][]rune, height)
	for y := range cells {
		row := make([]rune, width)
		for x := range row {
			row[x] = ' '
		}
		cells[y] = row
	}
	return Frame{Width: width, Height: height, Split: split, cells: cells}
}

// Lines returns every row of the frame.
func (f Frame) Lines() []string {
	out := make([]string, f.Height)
	for y, row := range f.cells {
		out[y] = string(row)
	}
	return out
}

// Row returns row y split into its left and right pane.
func (f Frame) Row(y int) (left, right string) {
	if y < 0 || y >= f.Height {
		return "", ""
	}
	row := f.cells[y]
	return string(row[:f.Split]), string(row[f.Split:])
}

func (f Frame) set(x, y int, r rune) {
	if y < 0 || y >= f.Height || x < 0 || x >= f.Width {
		return
	}
	f.cells[y][x] = r
}

// text writes s starting at (x, y), using at most limit cells.
func (f Frame) text(x, y int, s string, limit int) {
	for i, r := range []rune(sanitize(s)) {
		if i >= limit {
			return
		}
		f.set(x+i, y, r)
	}
}

// border outlines the pane starting at column x0 and w columns wide.
func (f Frame) border(x0, w int, tl, tr, bl, br rune) {
	if w < 2 || f.Height < 2 {
		return
	}
	last := f.Height - 1
	for x := x0 + 1; x < x0+w-1; x++ {
		f.set(x, 0, boxHorizontal)
		f.set(x, last, boxHorizontal)
	}
	for y := 1; y < last; y++ {
		f.set(x0, y, boxVertical)
		f.set(x0+w-1, y, boxVertical)
	}
	f.set(x0, 0, tl)
	f.set(x0+w-1, 0, tr)
	f.set(x0, last, bl)
	f.set(x0+w-1, last, br)
}

// drawProgressPane stacks one box per entry inside the left pane. Entries
// that do not fit are left out.
func drawProgressPane(f Frame, entries []Entry, paneWidth int) {
	boxWidth := paneWidth - 2
	if boxWidth < minBoxWidth {
		return
	}
	limit := MaxBoxes(f.Height)
	for i, e := range entries {
		if i >= limit {
			return
		}
		drawBox(f, 1, 1+i*boxHeight, boxWidth, e)
	}
}

// MaxBoxes is the number of progress boxes a pane of the given height can
// show.
func MaxBoxes(height int) int {
	if height < 2 {
		return 0
	}
	return (height - 2) / boxHeight
}

func drawBox(f Frame, x0, y0, w int, e Entry) {
	right := x0 + w - 1

	// Title row.
	f.set(x0, y0, cornerTopLeft)
	for x := x0 + 1; x < right; x++ {
		f.set(x, y0, boxHorizontal)
	}
	f.set(right, y0, cornerTopRight)
	f.text(x0+1, y0, e.DisplayName, w-2)

	// Status row.
	f.set(x0, y0+1, boxVertical)
	f.set(right, y0+1, boxVertical)
	f.text(x0+2, y0+1, e.Status, w-4)

	// Bar row: └[█████     ] 45%┘
	bottom := y0 + 2
	f.set(x0, bottom, cornerBottomLeft)
	f.set(right, bottom, cornerBottomRight)
	f.set(x0+1, bottom, '[')
	f.set(right-5, bottom, ']')
	f.set(right-1, bottom, '%')
	pct := strconv.Itoa(clampPercent(e.Percent))
	f.text(right-1-len(pct), bottom, pct, len(pct))
	for i := range BarCells(w-8, e.Percent) {
		f.set(x0+2+i, bottom, fullBlock)
	}
}

// BarCells is the number of filled cells for a bar innerWidth cells wide.
func BarCells(innerWidth, percent int) int {
	if innerWidth <= 0 {
		return 0
	}
	return innerWidth * clampPercent(percent) / 100
}

// drawLogPane wraps the newest log lines to the right pane and anchors them
// to its bottom edge.
func drawLogPane(f Frame, logs []string, x0, paneWidth int) {
	width, height := paneWidth-2, f.Height-2
	if width < 1 || height < 1 {
		return
	}

	var lines []string
	for i := len(logs) - 1; i >= 0 && len(lines) < height; i-- {
		wrapped := wrapLine(logs[i], width)
		if room := height - len(lines); len(wrapped) > room {
			wrapped = wrapped[len(wrapped)-room:]
		}
		lines = append(wrapped, lines...)
	}

	top := 1 + height - len(lines)
	for i, line := range lines {
		f.text(x0+1, top+i, line, width)
	}
}

// wrapLine breaks msg into lines at most width cells wide, preferring word
// boundaries.
func wrapLine(msg string, width int) []string {
	msg = sanitize(msg)
	if msg == "" {
		return []string{""}
	}
	var out []string
	for _, line := range strings.Split(ansi.Wrap(msg, width, ""), "\n") {
		runes := []rune(line)
		for len(runes) > width {
			out = append(out, string(runes[:width]))
			runes = runes[width:]
		}
		out = append(out, string(runes))
	}
	return out
}

// sanitize strips escape sequences and replaces anything that does not
// occupy exactly one terminal cell.
func sanitize(s string) string {
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t':
			return ' '
		case unicode.IsControl(r):
			return -1
		case runewidth.RuneWidth(r) != 1:
			return '?'
		}
		return r
	}, s)
}
