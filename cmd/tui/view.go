package main

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/sparkline"
	"github.com/charmbracelet/lipgloss"
	"github.com/td0m/dayplan/internal/ui"
	"github.com/td0m/dayplan/pkg/goal"
	"github.com/td0m/dayplan/pkg/task"
	"github.com/td0m/dayplan/pkg/task/date"
)

const (
	sparklineDays   = 14
	sparklineHeight = 2
)

var (
	icons = map[string]rune{
		"work":     '👔',
		"personal": '🧑',
		"health":   '🏃',
		"learning": '📚',
		"finance":  '💰',
		"home":     '🧹',
	}
	sparklineStyle = lipgloss.NewStyle().Foreground(ui.Blue)
	goalBar        = lipgloss.NewStyle().Foreground(ui.Green)
)

func (m *app) render() {
	if m.screen != screenMain {
		return
	}
	var s string
	switch m.tabs.Value() {
	case tabTasks, tabToday:
		s = m.viewTasks()
	case tabReminders:
		s = m.viewReminders()
	case tabGoals:
		s = m.viewGoals()
	}
	m.viewport.SetContent(s)
}

func (m *app) View() string {
	switch m.screen {
	case screenLoading:
		return ui.Help.Render("\n  restoring session…")
	case screenLogin:
		return m.viewLogin()
	}

	st := m.store.Stats()
	m.tabs.Info = fmt.Sprintf("%d pending ∙ %d overdue ∙ %d done", st.Pending, st.Overdue, st.Completed)
	header := m.tabs.View() + m.viewWorkload()

	var status string
	switch {
	case m.mode == modeTitle:
		status = "title: " + m.input.View()
	case m.mode == modeDue:
		status = m.due.View()
	case m.err != nil:
		status = ui.Error.Render(m.err.Error())
	default:
		status = ui.Help.Render(m.help())
	}
	return header + m.viewport.View() + "\n" + status
}

func (m *app) help() string {
	switch m.tabs.Value() {
	case tabReminders:
		return "j/k move ∙ space done ∙ x delete ∙ tab switch ∙ L logout ∙ q quit"
	case tabGoals:
		return "j/k move ∙ o new ∙ +/- progress ∙ space done ∙ tab switch ∙ q quit"
	}
	return "j/k move ∙ o new ∙ space done ∙ d due ∙ x delete ∙ tab switch ∙ L logout ∙ q quit"
}

// viewWorkload draws the number of open tasks due on each of the next days.
func (m *app) viewWorkload() string {
	now := m.now()
	perDay := make([]float64, sparklineDays)
	for _, t := range m.store.Tasks() {
		if t.Completed || t.DueDate.IsZero() {
			continue
		}
		if d := date.Days(now, t.DueDate); d >= 0 && d < sparklineDays {
			perDay[d]++
		}
	}

	spark := sparkline.New(sparklineDays, sparklineHeight)
	for _, v := range perDay {
		spark.Push(v)
	}
	spark.Draw()
	label := ui.Help.Render(fmt.Sprintf(" due next %d days", sparklineDays))
	return lipgloss.JoinHorizontal(lipgloss.Bottom, " ", sparklineStyle.Render(spark.View()), label) + "\n"
}

func (m *app) viewTasks() string {
	if len(m.tasks) == 0 {
		return ui.Help.Render("\n  nothing here, press o to add a task")
	}
	now := m.now()
	var b strings.Builder
	for i, t := range m.tasks {
		title := ui.Title
		if t.Completed {
			title = ui.Done
		}
		if i == m.cursor {
			title = title.Inherit(ui.Selected)
		}

		b.WriteString(ui.Icon.Render(string(icon(t.Category))))
		b.WriteString(title.Render(t.Title))
		b.WriteString(ui.Divider)
		b.WriteString(lipgloss.NewStyle().Foreground(ui.PriorityColor(t.Priority)).Render(string(t.Priority)))
		if t.Status == task.InProgress && !t.Completed {
			b.WriteString(ui.Divider + ui.SubTitle.Render("in progress"))
		}
		if !t.DueDate.IsZero() {
			color := ui.DueColor(t.DueDate, now)
			if t.Completed {
				color = ui.Faded
			}
			b.WriteString(ui.Divider)
			b.WriteString(lipgloss.NewStyle().Foreground(color).Render(ui.FormatDue(t.DueDate, now)))
		}
		if n := len(m.store.RemindersFor(t.ID)); n > 0 {
			b.WriteString(ui.Divider + ui.SubTitle.Render(fmt.Sprintf("⏰ %d", n)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *app) viewReminders() string {
	if len(m.reminders) == 0 {
		return ui.Help.Render("\n  no reminders")
	}
	now := m.now()
	var b strings.Builder
	for i, r := range m.reminders {
		title := ui.Title
		if r.Status == task.ReminderComplete {
			title = ui.Done
		}
		if i == m.cursor {
			title = title.Inherit(ui.Selected)
		}
		b.WriteString(ui.Icon.Render("⏰"))
		b.WriteString(title.Render(r.Title))
		b.WriteString(ui.Divider)
		b.WriteString(ui.SubTitle.Render(string(r.Status)))
		if !r.ReminderTime.IsZero() {
			b.WriteString(ui.Divider)
			b.WriteString(lipgloss.NewStyle().Foreground(ui.DueColor(r.ReminderTime, now)).
				Render(ui.FormatDue(r.ReminderTime, now) + r.ReminderTime.Format(" 15:04")))
		}
		if r.TaskCompleted {
			b.WriteString(ui.Divider + ui.Success.Render("task done"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *app) viewGoals() string {
	if len(m.goals) == 0 {
		return ui.Help.Render("\n  no goals yet, press o to add one")
	}
	var b strings.Builder
	for i, g := range m.goals {
		title := ui.Title
		if g.Completed {
			title = ui.Done
		}
		if i == m.cursor {
			title = title.Inherit(ui.Selected)
		}
		b.WriteString("\n")
		b.WriteString(ui.Icon.Render(string(icon(g.Category))))
		b.WriteString(title.Render(g.Title))
		b.WriteString(ui.Divider)
		b.WriteString(ui.SubTitle.Render(g.Category))
		b.WriteString("\n   ")
		b.WriteString(progressBar(g, 24))
		b.WriteString(ui.Divider)
		b.WriteString(ui.SubTitle.Render(g.Milestone))
		b.WriteString("\n")
	}
	return b.String()
}

func progressBar(g goal.Goal, width int) string {
	filled := min(max(g.Progress, 0), 100) * width / 100
	return goalBar.Render(strings.Repeat("█", filled)) +
		ui.Help.Render(strings.Repeat("░", width-filled)) +
		fmt.Sprintf(" %3d%%", g.Progress)
}

func (m *app) viewLogin() string {
	var body string
	if m.mode == modePacing {
		body = "signing in…\n\n" + m.progress.ViewAs(m.paced)
	} else {
		body = "email: " + m.input.View() + "\n\n" +
			ui.Help.Render("enter sign in ∙ ctrl+d demo account ∙ esc quit")
	}
	if m.err != nil {
		body += "\n\n" + ui.Error.Render(m.err.Error())
	}
	box := ui.Box.Render(ui.Heading.Render("dayplan") + "\n" + body)
	if m.width == 0 {
		return box
	}
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, "\n"+box)
}

func icon(category string) rune {
	if r, ok := icons[strings.ToLower(category)]; ok {
		return r
	}
	return '∙'
}
