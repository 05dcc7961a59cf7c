package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	Icon     = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	Title    = lipgloss.NewStyle().Bold(true)
	SubTitle = lipgloss.NewStyle().Foreground(Secondary)
	Selected = lipgloss.NewStyle().Background(Faded)
	Done     = lipgloss.NewStyle().Strikethrough(true).Foreground(Secondary)

	Divider = lipgloss.NewStyle().Foreground(Faded).Padding(0, 1).Render("∙")
	Badge   = lipgloss.NewStyle().Foreground(Background).Padding(0, 1)

	Heading = lipgloss.NewStyle().Bold(true).Foreground(Primary).MarginBottom(1)
	Help    = lipgloss.NewStyle().Foreground(Faded)
	Error   = lipgloss.NewStyle().Foreground(Red)
	Success = lipgloss.NewStyle().Foreground(Green)

	Box = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Faded).
		Padding(1, 2)
)
