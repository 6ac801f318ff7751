package ui

import (
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

const (
	// MinDashboardWidth and MinDashboardHeight are the smallest terminal
	// the dashboard is started on when the mode is "auto".
	MinDashboardWidth  = 40
	MinDashboardHeight = 8
)

// DashboardSupported decides whether the dashboard should replace plain
// logging. mode is "on", "off" or "auto"; auto requires f to be a terminal
// of at least the minimum size.
func DashboardSupported(mode string, f *os.File) bool {
	switch mode {
	case "on":
		return true
	case "off":
		return false
	}
	if f == nil {
		return false
	}
	fd := f.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return false
	}
	w, h, err := term.GetSize(int(fd))
	if err != nil {
		return false
	}
	return w >= MinDashboardWidth && h >= MinDashboardHeight
}
