// ABOUTME: Bubbletea model for the transport TUI
// ABOUTME: Maps keys to transport commands and renders the position readout
package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Transport is the control surface the TUI drives. *timeline.Timeline
// satisfies it.
type Transport interface {
	Start()
	Stop()
	IsStarted() bool
	Position() int64
	SetTime(sampleTime int64)
	SetLoop(start, duration int64)
	SampleRate() float64
}

// tickMsg refreshes the position readout.
type tickMsg time.Time

const tickInterval = 100 * time.Millisecond

// Model represents the TUI state
type Model struct {
	transport Transport
	session   string

	// Readout
	position int64
	started  bool

	// Loop region
	loopStart int64
	loopDur   int64
	looping   bool

	// Dimensions
	width  int
	height int
}

// NewModel creates a TUI model driving the given transport. session is a
// short identifier shown in the header.
func NewModel(transport Transport, session string) Model {
	return Model{
		transport: transport,
		session:   session,
		loopDur:   int64(transport.SampleRate()), // default: one second
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tickMsg:
		m.position = m.transport.Position()
		m.started = m.transport.IsStarted()
		return m, tick()
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	second := int64(m.transport.SampleRate())

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case " ":
		if m.transport.IsStarted() {
			m.transport.Stop()
		} else {
			m.transport.Start()
		}

	case "left":
		pos := m.transport.Position() - second
		if pos < 0 {
			pos = 0
		}
		m.transport.SetTime(pos)

	case "right":
		m.transport.SetTime(m.transport.Position() + second)

	case "0":
		m.transport.SetTime(0)

	case "l":
		if m.looping {
			m.transport.SetLoop(0, 0)
			m.looping = false
		} else {
			m.loopStart = m.transport.Position()
			m.transport.SetLoop(m.loopStart, m.loopDur)
			m.looping = true
		}
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := ""
	s += m.renderHeader()
	s += m.renderPosition()
	s += m.renderLoop()
	s += m.renderHelp()

	return s
}

func (m Model) renderHeader() string {
	state := "stopped"
	if m.started {
		state = "playing"
	}
	return fmt.Sprintf("  Cadenza Transport [%s]  -  %s\n\n", m.session, state)
}

func (m Model) renderPosition() string {
	return fmt.Sprintf("  Position: %s  (sample %d)\n", m.formatSamples(m.position), m.position)
}

func (m Model) renderLoop() string {
	if !m.looping {
		return "  Loop: off\n\n"
	}
	return fmt.Sprintf("  Loop: %s to %s\n\n",
		m.formatSamples(m.loopStart),
		m.formatSamples(m.loopStart+m.loopDur))
}

func (m Model) renderHelp() string {
	return "  space: start/stop   left/right: seek 1s   0: rewind   l: loop   q: quit\n"
}

// formatSamples renders a sample count as mm:ss.mmm at the transport rate.
func (m Model) formatSamples(samples int64) string {
	seconds := float64(samples) / m.transport.SampleRate()
	neg := ""
	if seconds < 0 {
		neg = "-"
		seconds = -seconds
	}
	mins := int(seconds) / 60
	secs := seconds - float64(mins*60)
	return fmt.Sprintf("%s%02d:%06.3f", neg, mins, secs)
}
