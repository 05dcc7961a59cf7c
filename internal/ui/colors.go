package ui

import (
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/td0m/dayplan/pkg/task"
	"github.com/td0m/dayplan/pkg/task/date"
)

const (
	Background = lipgloss.Color("#000")

	Primary   = lipgloss.Color("#fff")
	Secondary = lipgloss.Color("#888")
	Faded     = lipgloss.Color("#555")

	Blue   = lipgloss.Color("#4db7ff")
	Green  = lipgloss.Color("#00a352")
	Red    = lipgloss.Color("#c42912")
	Yellow = lipgloss.Color("#c4b810")
	Orange = lipgloss.Color("#c27510")
)

func PriorityColor(p task.Priority) lipgloss.Color {
	switch p {
	case task.High:
		return Red
	case task.Low:
		return Blue
	default:
		return Yellow
	}
}

// DueColor gets warmer as the due date gets closer.
func DueColor(due, now time.Time) lipgloss.Color {
	switch days := date.Days(now, due); {
	case days < 0:
		return Red
	case days <= 2:
		return Orange
	case days <= 14:
		return Yellow
	default:
		return Faded
	}
}
