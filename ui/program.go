package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// RedrawInterval is how often the dashboard repaints.
const RedrawInterval = time.Second

type keyMap struct {
	Quit     key.Binding
	Increase key.Binding
	Decrease key.Binding
}

var defaultKeys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+q", "ctrl+c"),
		key.WithHelp("ctrl+q", "quit"),
	),
	Increase: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "more transfers"),
	),
	Decrease: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "fewer transfers"),
	),
}

// Limiter is the transfer capacity the dashboard can adjust at runtime.
type Limiter interface {
	MaxTransfers() int
	SetMaxTransfers(n int)
}

// TickMsg triggers a periodic redraw.
type TickMsg time.Time

// LimitMsg changes the transfer limit by its value.
type LimitMsg int

// DashboardModel implements the tea.Model interface on top of a Dashboard.
type DashboardModel struct {
	dash    *Dashboard
	limiter Limiter
	keys    keyMap

	width  int
	height int

	// Styles
	progressStyle lipgloss.Style
	logStyle      lipgloss.Style
}

// NewDashboardModel builds the model. limiter may be nil, in which case the
// limit keys do nothing.
func NewDashboardModel(dash *Dashboard, limiter Limiter) DashboardModel {
	return DashboardModel{
		dash:          dash,
		limiter:       limiter,
		keys:          defaultKeys,
		progressStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("78")),
		logStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	}
}

func tick() tea.Cmd {
	return tea.Tick(RedrawInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m DashboardModel) Init() tea.Cmd {
	return tick()
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Increase):
			return m, func() tea.Msg { return LimitMsg(1) }
		case key.Matches(msg, m.keys.Decrease):
			return m, func() tea.Msg { return LimitMsg(-1) }
		}

	case LimitMsg:
		if m.limiter != nil {
			m.limiter.SetMaxTransfers(m.limiter.MaxTransfers() + int(msg))
			m.dash.Info(fmt.Sprintf("Max simultaneous transfers: %d", m.limiter.MaxTransfers()))
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case TickMsg:
		return m, tick()
	}

	return m, nil
}

func (m DashboardModel) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	frame := m.dash.Render(m.width, m.height)
	rows := make([]string, frame.Height)
	for y := range rows {
		left, right := frame.Row(y)
		rows[y] = m.progressStyle.Render(left) + m.logStyle.Render(right)
	}
	return strings.Join(rows, "\n")
}

// Program runs the dashboard full screen until ctx is done or the quit key
// is pressed.
type Program struct {
	prog *tea.Program
}

// NewProgram wraps dash in a bubbletea program on the alternate screen. The
// + and - keys adjust limiter.
func NewProgram(dash *Dashboard, limiter Limiter, opts ...tea.ProgramOption) *Program {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	return &Program{prog: tea.NewProgram(NewDashboardModel(dash, limiter), opts...)}
}

// Run blocks until the program exits. The screen is restored before it
// returns.
func (p *Program) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, p.prog.Quit)
	defer stop()

	_, err := p.prog.Run()
	return err
}
