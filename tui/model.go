// Package tui renders the engine's read-only state as a four-row pattern
// grid with the chord and tempo in the header. There is no hardware LED
// feedback loop here: an arpeggiator has no pad controller to light.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-sequence-arp/engine"
	"go-sequence-arp/host"
	"go-sequence-arp/midi"
	"go-sequence-arp/theme"
	"go-sequence-arp/widgets"
)

// Model is the bubbletea model driving the terminal status display.
type Model struct {
	Manager  *host.Manager
	Theme    *theme.Theme
	quitting bool

	focused int
	cursor  int // selected step within the focused pattern; space toggles it

	snapshot engineSnapshot
}

// engineSnapshot is a read-only copy of everything the view needs, taken
// through Manager.Do so rendering never races the host loop.
type engineSnapshot struct {
	cfg      engine.EngineConfig
	chord    []uint8
	patterns [engine.PatternCount]engine.PatternConfig
	states   [engine.PatternCount]engine.PatternState
	statuses [engine.PatternCount]engine.Status
	paused   bool
}

// patternNames labels the four pattern slots for display, a presentation
// convenience over the same four indices.
var patternNames = [engine.PatternCount]string{"A", "B", "C", "D"}

// patternLabel returns "pattern N (X)" for slot i.
func patternLabel(i int) string {
	name := "?"
	if i >= 0 && i < len(patternNames) {
		name = patternNames[i]
	}
	return fmt.Sprintf("pattern %d (%s)", i, name)
}

// UpdateMsg signals a redraw; it carries no data, View() re-reads the
// engine itself.
type UpdateMsg struct{}

// DeviceEventMsg wraps a midi.DeviceEvent as a tea.Msg.
type DeviceEventMsg midi.DeviceEvent

// NewModel wires a Model to a running host.Manager.
func NewModel(m *host.Manager, th *theme.Theme) Model {
	return Model{Manager: m, Theme: th}
}

// ListenForUpdates turns the manager's UpdateChan into a tea.Cmd.
func ListenForUpdates(m *host.Manager) tea.Cmd {
	return func() tea.Msg {
		<-m.UpdateChan
		return UpdateMsg{}
	}
}

// ListenForDevices turns the device manager's event channel into a tea.Cmd.
func ListenForDevices(dm *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-dm.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{ListenForUpdates(m.Manager)}
	if m.Manager.DeviceMgr != nil {
		cmds = append(cmds, ListenForDevices(m.Manager.DeviceMgr))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "p":
			m.Manager.SetPaused(!m.Manager.Paused())

		case "+", "=":
			m.Manager.Do(func(e *engine.PatternEngine) {
				cfg := e.EngineConfig()
				cfg.BPM += 5
				e.SetEngineConfig(cfg)
			})

		case "-", "_":
			m.Manager.Do(func(e *engine.PatternEngine) {
				cfg := e.EngineConfig()
				cfg.BPM -= 5
				e.SetEngineConfig(cfg)
			})

		case "1", "2", "3", "4":
			idx := int(msg.String()[0] - '1')
			m.focused = idx
			m.Manager.SetFocusedPattern(idx)

		case "h", "left":
			if m.cursor > 0 {
				m.cursor--
			}
		case "l", "right":
			m.cursor++

		case " ", "space":
			m.Manager.Do(func(e *engine.PatternEngine) {
				s := &e.Pattern(m.focused).Steps[m.cursor%engine.MaxPatternSteps]
				s.Enabled = !s.Enabled
			})
		}

	case UpdateMsg:
		m.refresh()
		return m, ListenForUpdates(m.Manager)

	case DeviceEventMsg:
		if m.Manager.DeviceMgr != nil {
			return m, ListenForDevices(m.Manager.DeviceMgr)
		}
	}

	return m, nil
}

func (m *Model) refresh() {
	m.Manager.Do(func(e *engine.PatternEngine) {
		m.snapshot.cfg = e.EngineConfig()
		m.snapshot.chord = append(m.snapshot.chord[:0], e.Chord()...)
		for i := 0; i < engine.PatternCount; i++ {
			m.snapshot.patterns[i] = *e.Pattern(i)
			m.snapshot.states[i] = e.PatternState(i)
			m.snapshot.statuses[i] = e.PatternStatus(i)
		}
	})
	m.snapshot.paused = m.Manager.Paused()
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	labelStyle := lipgloss.NewStyle().Foreground(m.Theme.FG())

	playState := "RUN"
	if m.snapshot.paused {
		playState = "PAUSED"
	}

	header := headerStyle.Render(fmt.Sprintf("go-sequence-arp  %-6s  %5.1f bpm  chord:%v",
		playState, m.snapshot.cfg.BPM, m.snapshot.chord))

	var rows strings.Builder
	for i := 0; i < engine.PatternCount; i++ {
		cfg := m.snapshot.patterns[i]
		st := m.snapshot.states[i]

		playhead := -1
		if m.snapshot.statuses[i] == engine.StatusSounding && cfg.Length > 0 {
			playhead = int(st.StepPos) - 1
			if playhead < 0 {
				playhead = cfg.Length - 1
			}
		}

		marker := "  "
		if i == m.focused {
			marker = "> "
		}
		label := labelStyle.Render(fmt.Sprintf("%s%s [%-7s] ", marker, patternLabel(i), m.snapshot.statuses[i]))
		rows.WriteString(label)
		rows.WriteString(widgets.RenderPatternRow(m.Theme, &cfg, playhead))
		rows.WriteString("\n")
	}

	help := dimStyle.Render("1-4:focus  space:toggle step  h/l:cursor  p:pause  +/-:tempo  q:quit")

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(rows.String())
	out.WriteString("\n")
	out.WriteString(help)
	return out.String()
}
