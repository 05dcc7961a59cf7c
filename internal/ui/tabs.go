package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	tabContainer = lipgloss.NewStyle().Padding(1, 1)
	activeTab    = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	inactiveTab  = lipgloss.NewStyle().Foreground(Secondary)
	tabDivider   = lipgloss.NewStyle().Foreground(Faded)
)

// Tabs is a row of tab titles with one selected. Info is drawn right
// aligned on the same row.
type Tabs struct {
	tabs []string
	i    int

	Width int
	Info  string
}

func NewTabs(tabs []string) Tabs {
	return Tabs{tabs: tabs}
}

func (m Tabs) Init() tea.Cmd {
	return nil
}

// Update switches tabs on tab, shift+tab and alt+1 to alt+9.
func (m Tabs) Update(msg tea.Msg) (Tabs, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch s := key.String(); {
	case s == "tab":
		m.Set((m.i + 1) % len(m.tabs))
	case s == "shift+tab":
		m.Set((m.i + len(m.tabs) - 1) % len(m.tabs))
	case len(s) == 5 && strings.HasPrefix(s, "alt+") && s[4] >= '1' && s[4] <= '9':
		if n := int(s[4] - '1'); n < len(m.tabs) {
			m.Set(n)
		}
	}
	return m, nil
}

func (m Tabs) View() string {
	tabs := make([]string, len(m.tabs))
	for i, t := range m.tabs {
		r := inactiveTab
		if i == m.i {
			r = activeTab
		}
		tabs[i] = r.Render(t)
	}
	w := lipgloss.Width
	left := strings.Join(tabs, tabDivider.Render(" | "))
	right := m.Info
	space := lipgloss.NewStyle().Width(max(m.Width-2-w(left)-w(right), 1)).Render("")
	return tabContainer.Render(lipgloss.JoinHorizontal(lipgloss.Center, left, space, right)) + "\n"
}

func (m Tabs) Value() int {
	return m.i
}

func (m *Tabs) Set(i int) {
	m.i = min(max(i, 0), len(m.tabs)-1)
}
