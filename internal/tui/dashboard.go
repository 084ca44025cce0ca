package tui

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"treadlink/internal/config"
	"treadlink/internal/link"
	"treadlink/internal/telemetry"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// logMsg carries an event line for the viewport.
type logMsg struct{ line string }

// linkMsg carries a link state transition.
type linkMsg struct {
	state link.State
	addr  string
}

// telemetryMsg carries the latest machine reading.
type telemetryMsg struct{ telemetry.State }

// scenarioMsg carries scenario status and the last commanded targets.
type scenarioMsg struct {
	name    string
	running bool
	speed   float64
	incline float64
}

const (
	maxLogLines = 1000

	colorReset  = "\x1b[0m"
	colorGreen  = "\x1b[32m"
	colorYellow = "\x1b[33m"
	colorGray   = "\x1b[90m"
)

var stateColors = map[link.State]lipgloss.Color{
	link.StateConnected:    lipgloss.Color("10"),
	link.StateConnecting:   lipgloss.Color("11"),
	link.StateDisconnected: lipgloss.Color("8"),
	link.StateError:        lipgloss.Color("9"),
}

// Dashboard renders link and scenario activity in a bubbletea TUI.
type Dashboard struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewDashboard starts a bubbletea program and returns a Dashboard.
func NewDashboard(cfg *config.Scenario) *Dashboard {
	d := &Dashboard{done: make(chan struct{})}
	d.sendSignal.Store(true)
	p := tea.NewProgram(newModel(cfg), tea.WithAltScreen())
	d.program = p
	go func() {
		_ = p.Start()
		close(d.done)
		if d.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return d
}

// LinkState pushes a link state transition to the dashboard status bar. The
// transition's log line arrives separately through Write.
func (d *Dashboard) LinkState(s link.State, addr string) {
	d.program.Send(linkMsg{state: s, addr: addr})
}

// Write feeds slog output into the event log, one line per record. The
// dashboard owns the terminal, so the logger writes here instead of stdout.
func (d *Dashboard) Write(p []byte) (int, error) {
	line := strings.TrimRight(string(p), "\n")
	if line != "" {
		d.program.Send(logMsg{line: colorGray + line + colorReset})
	}
	return len(p), nil
}

// Telemetry pushes the latest machine reading to the dashboard.
func (d *Dashboard) Telemetry(st telemetry.State) {
	d.program.Send(telemetryMsg{st})
}

// Scenario pushes scenario status and targets to the dashboard.
func (d *Dashboard) Scenario(name string, running bool, speed, incline float64) {
	d.program.Send(scenarioMsg{name: name, running: running, speed: speed, incline: incline})
}

// Close shuts down the TUI program and waits for cleanup.
func (d *Dashboard) Close() error {
	d.sendSignal.Store(false)
	if d.program != nil {
		d.program.Send(tea.Quit())
	}
	if d.done != nil {
		<-d.done
	}
	return nil
}

type model struct {
	cfg   *config.Scenario
	table table.Model
	vp    viewport.Model

	logs       []string
	wrap       bool
	autoscroll bool

	height       int
	headerHeight int

	linkState     link.State
	addr          string
	telem         telemetry.State
	scenarioName  string
	running       bool
	speedTarget   float64
	inclineTarget float64
}

func newModel(cfg *config.Scenario) model {
	cols := []table.Column{
		{Title: "Setting", Width: 18},
		{Title: "Value", Width: 24},
	}
	rows := []table.Row{
		{"Scenario", cfg.Name},
		{"Speed range", fmt.Sprintf("%.1f - %.1f km/h", cfg.Speed.Min, cfg.Speed.Max)},
		{"Incline range", fmt.Sprintf("%.1f - %.1f %%", cfg.Incline.Min, cfg.Incline.Max)},
		{"Volatility", fmt.Sprintf("spd %.2f / inc %.2f", cfg.Speed.Volatility, cfg.Incline.Volatility)},
		{"Endpoint", cfg.Link.Address},
	}
	t := table.New(table.WithColumns(cols), table.WithRows(rows), table.WithHeight(len(rows)+1))
	return model{
		cfg:        cfg,
		table:      t,
		vp:         viewport.New(0, 0),
		autoscroll: true,
		linkState:  link.StateDisconnected,
		addr:       cfg.Link.Address,
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetWidth(msg.Width)
		m.vp.Width = msg.Width
		m.height = msg.Height
		m.headerHeight = lipgloss.Height(m.table.View())
		m.updateViewportHeight()
		m.refreshViewport()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "w":
			m.wrap = !m.wrap
			m.refreshViewport()
			return m, nil
		case "s":
			m.autoscroll = !m.autoscroll
			if m.autoscroll {
				m.vp.GotoBottom()
			}
			return m, nil
		}
		if !m.autoscroll {
			switch msg.String() {
			case "j", "down":
				m.vp.LineDown(1)
			case "k", "up":
				m.vp.LineUp(1)
			case "pgdown", "ctrl+n":
				m.vp.LineDown(10)
			case "pgup", "ctrl+p":
				m.vp.LineUp(10)
			default:
				var cmd tea.Cmd
				m.vp, cmd = m.vp.Update(msg)
				return m, cmd
			}
		}
		return m, nil
	case logMsg:
		m.logs = append(m.logs, msg.line)
		if len(m.logs) > maxLogLines {
			m.logs = m.logs[len(m.logs)-maxLogLines:]
		}
		m.refreshViewport()
	case linkMsg:
		m.linkState = msg.state
		m.addr = msg.addr
	case telemetryMsg:
		m.telem = msg.State
	case scenarioMsg:
		m.scenarioName = msg.name
		m.running = msg.running
		m.speedTarget = msg.speed
		m.inclineTarget = msg.incline
	}
	return m, nil
}

func (m *model) updateViewportHeight() {
	bottomHeight := lipgloss.Height(m.renderBottom())
	h := m.height - m.headerHeight - bottomHeight - 2
	if h < 0 {
		h = 0
	}
	m.vp.Height = h
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m *model) refreshViewport() {
	var lines []string
	for _, l := range m.logs {
		if m.wrap {
			lines = append(lines, wordwrap.String(l, m.vp.Width))
		} else {
			lines = append(lines, l)
		}
	}
	m.vp.SetContent(strings.Join(lines, "\n"))
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m model) View() string {
	divider := strings.Repeat("─", m.vp.Width)
	sections := []string{
		m.table.View(),
		divider,
		m.vp.View(),
		divider,
		m.renderBottom(),
	}
	return strings.Join(sections, "\n")
}

func (m model) renderBottom() string {
	stateColor, ok := stateColors[m.linkState]
	if !ok {
		stateColor = lipgloss.Color("8")
	}
	linkIndicator := lipgloss.NewStyle().Foreground(stateColor).Render("●")
	scenario := "stopped"
	if m.running {
		scenario = m.scenarioName
	}
	status := fmt.Sprintf("Link %s %s %s | Scenario %s | target spd=%.1f inc=%.1f",
		linkIndicator, m.linkState, m.addr, scenario, m.speedTarget, m.inclineTarget)

	linked := colorYellow + "stale" + colorReset
	if m.telem.Linked {
		linked = colorGreen + "live" + colorReset
	}
	reading := fmt.Sprintf("Machine %s spd=%.1fkm/h inc=%.1f%%", linked, m.telem.Speed, m.telem.Incline)

	scrollColor := lipgloss.Color("10")
	if !m.autoscroll {
		scrollColor = lipgloss.Color("9")
	}
	wrapColor := lipgloss.Color("9")
	if m.wrap {
		wrapColor = lipgloss.Color("10")
	}
	scrollIndicator := lipgloss.NewStyle().Foreground(scrollColor).Render("●")
	wrapIndicator := lipgloss.NewStyle().Foreground(wrapColor).Render("●")
	keys := fmt.Sprintf("q quit | w wrap %s | s scroll %s", wrapIndicator, scrollIndicator)

	return fmt.Sprintf("%s\n%s | %s", status, reading, keys)
}
