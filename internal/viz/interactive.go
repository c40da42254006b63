package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var presetInfo = map[string]string{
	"default": "phone upright, soft bounce", "calm": "heavy friction, settles fast",
	"bouncy": "lively walls and pairs", "zero-g": "floating balls",
	"sideways": "jar on its side", "crowded": "small jar, many balls",
}

var sources = []string{"today", "longterm", "config"}

const (
	stateMenu = iota
	stateSource
	stateSim
)

// Builder turns a menu choice into a ready live session.
type Builder func(preset, source string) (Options, error)

type model struct {
	state, cursor int
	presets       []string
	selected      string
	build         Builder
	err           error
	liveModel     Model
}

func NewInteractiveApp(presets []string, build Builder) *model {
	return &model{state: stateMenu, presets: presets, build: build}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		if m.state == stateSim {
			newLive, cmd := m.liveModel.Update(msg)
			m.liveModel = newLive.(Model)
			return m, cmd
		}
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		switch msg.String() {
		case "enter", " ":
			m.selected = m.presets[m.cursor]
			m.state, m.cursor = stateSource, 0
			return m, nil
		}
		return m.menuKey(msg, len(m.presets))
	case stateSource:
		switch msg.String() {
		case "esc":
			m.state, m.cursor = stateMenu, 0
			return m, nil
		case "enter", " ":
			return m.start()
		}
		return m.menuKey(msg, len(sources))
	case stateSim:
		newLive, cmd := m.liveModel.Update(msg)
		m.liveModel = newLive.(Model)
		return m, cmd
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg, n int) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < n-1 {
			m.cursor++
		}
	}
	return m, nil
}

func (m model) start() (model, tea.Cmd) {
	opts, err := m.build(m.selected, sources[m.cursor])
	if err != nil {
		m.err = err
		return m, nil
	}
	m.err = nil
	m.liveModel = NewModel(opts)
	m.state = stateSim
	return m, m.liveModel.Init()
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewList("BALL JAR", "pick a preset", m.presets, presetInfo)
	case stateSource:
		return m.viewList(strings.ToUpper(m.selected), "which balls go in the jar", sources, nil)
	case stateSim:
		return m.liveModel.View()
	}
	return ""
}

func (m model) viewList(title, subtitle string, items []string, info map[string]string) string {
	var b strings.Builder
	h := lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Bold(true)
	sub := lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	b.WriteString("\n\n    " + h.Render(title) + "\n    " + sub.Render(subtitle) + "\n    " + sub.Render("─────────────────────────") + "\n\n")
	for i, name := range items {
		desc := info[name]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n",
				lipgloss.NewStyle().Foreground(CurrentTheme.Secondary).Bold(true).Render("▸"),
				lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true).Render(fmt.Sprintf("%-12s", name)),
				lipgloss.NewStyle().Foreground(CurrentTheme.Accent).Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n",
				lipgloss.NewStyle().Foreground(lipgloss.Color("#555566")).Render(fmt.Sprintf("  %-12s", name)),
				lipgloss.NewStyle().Foreground(lipgloss.Color("#444455")).Render(desc)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + lipgloss.NewStyle().Foreground(CurrentTheme.Error).Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + KeyHint.Render("j/k navigate  enter select  esc back  q quit") + "\n")
	return b.String()
}

// RunInteractive opens the preset menu and then the chosen jar.
func RunInteractive(presets []string, build Builder) error {
	_, err := tea.NewProgram(NewInteractiveApp(presets, build), tea.WithAltScreen()).Run()
	return err
}
