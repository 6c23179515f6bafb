package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-abcsynth/debug"
	"go-abcsynth/sequencer"
	"go-abcsynth/theme"
)

type Model struct {
	Manager  *sequencer.Manager
	Theme    *theme.Theme
	quitting bool
}

type UpdateMsg struct{}

func NewModel(manager *sequencer.Manager, th *theme.Theme) Model {
	return Model{
		Manager: manager,
		Theme:   th,
	}
}

func ListenForUpdates(manager *sequencer.Manager) tea.Cmd {
	return func() tea.Msg {
		<-manager.UpdateChan
		return UpdateMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForUpdates(m.Manager)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.Manager.HandleKey(msg.String())
		if m.Manager.Menu().Quitting() {
			m.quitting = true
			if err := m.Manager.SaveConfig(); err != nil {
				debug.Log("tui", "save config: %v", err)
			}
			return m, tea.Quit
		}

	case UpdateMsg:
		return m, ListenForUpdates(m.Manager)
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	cfg := m.Manager.Config()
	status, job := m.Manager.Status()

	// Styles
	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	statusStyle := lipgloss.NewStyle().Foreground(m.Theme.FG())
	switch {
	case strings.HasPrefix(status, "Error"):
		statusStyle = lipgloss.NewStyle().Foreground(m.Theme.Warning())
	case job != "":
		statusStyle = lipgloss.NewStyle().Foreground(m.Theme.Cursor())
	}

	state := "IDLE"
	if job != "" {
		state = "BUSY"
	}

	header := headerStyle.Render(fmt.Sprintf("go-abcsynth  %s  %s  %3dbpm  %+dst",
		state, cfg.Render.Waveform, cfg.Render.BPM, cfg.Render.PitchShift))
	meter := dimStyle.Render("vol ") + m.Theme.Meter(cfg.Render.Volume, 20)

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n")
	out.WriteString(meter)
	out.WriteString("\n\n")
	out.WriteString(m.Manager.View())

	if status != "" {
		out.WriteString("\n\n")
		out.WriteString(statusStyle.Render(status))
	}

	return out.String()
}
