package main

import (
	"context"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/td0m/dayplan/internal/ui"
	"github.com/td0m/dayplan/pkg/auth"
	"github.com/td0m/dayplan/pkg/goal"
	"github.com/td0m/dayplan/pkg/task"
)

const (
	headerHeight = 6
	footerHeight = 2

	loginDelay = 1500 * time.Millisecond
)

const (
	tabTasks = iota
	tabToday
	tabReminders
	tabGoals
)

type screen int

const (
	screenLoading screen = iota
	screenLogin
	screenMain
)

type mode int

const (
	modeNormal mode = iota
	modeTitle
	modeDue
	modePacing
)

type (
	readyMsg  struct{}
	reloadMsg struct{}
	goalsMsg  []goal.Goal
	paceMsg   float64
	loginMsg  struct {
		user auth.User
		err  error
	}
)

type app struct {
	screen screen
	mode   mode
	err    error

	tabs     ui.Tabs
	viewport viewport.Model
	input    textinput.Model
	due      ui.DateInput
	progress progress.Model
	paced    float64
	width    int

	cursor    int
	tasks     []task.Task
	reminders []task.Reminder
	goals     []goal.Goal

	store *task.Store
	goalz *goal.Store
	auth  *auth.Manager

	now  func() time.Time
	pace time.Duration
	send func(tea.Msg)
}

func newApp(tasks *task.Store, goals *goal.Store, a *auth.Manager) *app {
	i := textinput.New()
	i.Prompt = ""
	i.CharLimit = 120
	i.Width = 40

	m := &app{
		tabs:     ui.NewTabs([]string{"Tasks", "Today", "Reminders", "Goals"}),
		input:    i,
		progress: progress.New(progress.WithGradient("#4db7ff", "#00a352"), progress.WithWidth(40)),
		store:    tasks,
		goalz:    goals,
		auth:     a,
		now:      time.Now,
		pace:     loginDelay,
		send:     func(tea.Msg) {},
	}
	m.due = ui.NewDateInput("due", m.clock)
	return m
}

func (m *app) clock() time.Time {
	return m.now()
}

func (m *app) Init() tea.Cmd {
	return func() tea.Msg {
		<-m.auth.Ready()
		return readyMsg{}
	}
}

func (m *app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.tabs.Width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-headerHeight-footerHeight, 1)
		m.progress.Width = min(max(msg.Width-10, 10), 60)
	case readyMsg:
		m.screen = screenLogin
		if m.auth.State() == auth.Authenticated {
			m.enterMain()
		} else {
			m.input.Placeholder = "you@example.com"
			m.input.SetValue("")
			cmd = m.input.Focus()
		}
	case reloadMsg:
		m.refresh()
	case goalsMsg:
		if m.tabs.Value() == tabGoals {
			m.goals = msg
			m.setCursor(m.cursor)
		}
	case paceMsg:
		m.paced = float64(msg)
	case loginMsg:
		m.mode = modeNormal
		if msg.err != nil {
			m.err = msg.err
			m.screen = screenLogin
			return m, m.input.Focus()
		}
		m.enterMain()
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.screen {
		case screenLogin:
			cmd = m.loginKey(msg)
		case screenMain:
			cmd = m.mainKey(msg)
		}
	}
	m.render()
	return m, cmd
}

func (m *app) enterMain() {
	m.screen = screenMain
	m.mode = modeNormal
	m.input.Blur()
	m.err = nil
	m.refresh()
}

// refresh reloads the rows of the current tab.
func (m *app) refresh() {
	switch m.tabs.Value() {
	case tabTasks:
		m.tasks = sortTasks(m.store.Tasks(), m.now())
	case tabToday:
		today := m.store.Overdue()
		for _, t := range m.store.Today() {
			if !t.IsOverdue(m.now()) {
				today = append(today, t)
			}
		}
		m.tasks = today
	case tabReminders:
		m.reminders = m.store.Reminders()
	case tabGoals:
		m.goals = m.goalz.Goals()
	}
	m.setCursor(m.cursor)
}

// sortTasks puts open tasks first, soonest due first; tasks without a due
// date go last.
func sortTasks(tasks []task.Task, now time.Time) []task.Task {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.Completed != b.Completed {
			return !a.Completed
		}
		if a.DueDate.IsZero() != b.DueDate.IsZero() {
			return !a.DueDate.IsZero()
		}
		return a.DueDate.Before(b.DueDate)
	})
	return tasks
}

func (m *app) rows() int {
	switch m.tabs.Value() {
	case tabReminders:
		return len(m.reminders)
	case tabGoals:
		return len(m.goals)
	}
	return len(m.tasks)
}

func (m *app) setCursor(value int) {
	m.cursor = min(max(value, 0), max(m.rows()-1, 0))
	if m.cursor < m.viewport.YOffset {
		m.viewport.YOffset = m.cursor
	}
	if m.viewport.Height > 0 && m.cursor >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.YOffset = m.cursor - m.viewport.Height + 1
	}
}

func (m *app) selectedTask() (task.Task, bool) {
	if m.tabs.Value() > tabToday || m.cursor >= len(m.tasks) {
		return task.Task{}, false
	}
	return m.tasks[m.cursor], true
}

func (m *app) selectedReminder() (task.Reminder, bool) {
	if m.tabs.Value() != tabReminders || m.cursor >= len(m.reminders) {
		return task.Reminder{}, false
	}
	return m.reminders[m.cursor], true
}

func (m *app) selectedGoal() (goal.Goal, bool) {
	if m.tabs.Value() != tabGoals || m.cursor >= len(m.goals) {
		return goal.Goal{}, false
	}
	return m.goals[m.cursor], true
}

func (m *app) loginKey(msg tea.KeyMsg) tea.Cmd {
	if m.mode == modePacing {
		return nil
	}
	switch msg.String() {
	case "enter":
		return m.login(false)
	case "ctrl+d":
		return m.login(true)
	case "esc":
		return tea.Quit
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// login shows the progress bar for a moment before the session starts.
func (m *app) login(demo bool) tea.Cmd {
	email := m.input.Value()
	if !demo && email == "" {
		return nil
	}
	m.mode = modePacing
	m.paced = 0
	m.err = nil
	send, delay := m.send, m.pace
	return func() tea.Msg {
		err := auth.Pace(context.Background(), delay, func(f float64) { send(paceMsg(f)) })
		if err != nil {
			return loginMsg{err: err}
		}
		var u auth.User
		if demo {
			u, err = m.auth.DemoLogin()
		} else {
			u, err = m.auth.Login(auth.User{Email: email})
		}
		return loginMsg{user: u, err: err}
	}
}

func (m *app) mainKey(msg tea.KeyMsg) tea.Cmd {
	switch m.mode {
	case modeTitle:
		return m.titleKey(msg)
	case modeDue:
		return m.dueKey(msg)
	}

	var err error
	switch msg.String() {
	case "q":
		return tea.Quit
	case "tab", "shift+tab", "alt+1", "alt+2", "alt+3", "alt+4":
		m.tabs, _ = m.tabs.Update(msg)
		m.cursor = 0
		m.viewport.YOffset = 0
		m.refresh()
	case "j", "down":
		m.setCursor(m.cursor + 1)
	case "k", "up":
		m.setCursor(m.cursor - 1)
	case "g":
		m.setCursor(0)
	case "G":
		m.setCursor(m.rows() - 1)
	case "o", "a":
		if m.tabs.Value() == tabReminders {
			return nil
		}
		m.mode = modeTitle
		m.input.Placeholder = "title"
		m.input.SetValue("")
		return m.input.Focus()
	case "d":
		if t, ok := m.selectedTask(); ok {
			m.mode = modeDue
			m.due = ui.NewDateInput("due", m.clock)
			m.due.SetValue(t.DueDate)
		}
	case " ", "t":
		err = m.toggle()
	case "+", "=":
		err = m.nudgeGoal(10)
	case "-":
		err = m.nudgeGoal(-10)
	case "x", "delete":
		err = m.delete()
	case "L":
		err = m.auth.Logout()
		if err == nil {
			m.screen = screenLogin
			m.input.SetValue("")
			return m.input.Focus()
		}
	}
	m.err = err
	return nil
}

func (m *app) titleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeNormal
		m.input.Blur()
		return nil
	case tea.KeyEnter:
		title := m.input.Value()
		m.mode = modeNormal
		m.input.Blur()
		if title == "" {
			return nil
		}
		var err error
		if m.tabs.Value() == tabGoals {
			_, err = m.goalz.Create(goal.Goal{Title: title})
		} else {
			var t task.Task
			t, err = m.store.Add(task.Task{Title: title})
			if err == nil && m.tabs.Value() == tabToday {
				due := m.now()
				err = m.store.Update(t.ID, task.TaskPatch{DueDate: &due})
			}
		}
		m.err = err
		m.refresh()
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *app) dueKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeNormal
		return nil
	case tea.KeyEnter:
		t, ok := m.selectedTask()
		due, valid := m.due.Value()
		switch {
		case !ok:
		case m.due.Empty():
			var none time.Time
			m.err = m.store.Update(t.ID, task.TaskPatch{DueDate: &none})
		case valid:
			m.err = m.store.Update(t.ID, task.TaskPatch{DueDate: &due})
		default:
			return nil
		}
		m.mode = modeNormal
		m.refresh()
		return nil
	}
	var cmd tea.Cmd
	m.due, cmd = m.due.Update(msg)
	return cmd
}

func (m *app) toggle() error {
	defer m.refresh()
	if t, ok := m.selectedTask(); ok {
		_, err := m.store.Toggle(t.ID)
		return err
	}
	if r, ok := m.selectedReminder(); ok {
		status := task.ReminderComplete
		if r.Status == task.ReminderComplete {
			status = task.Upcoming
		}
		return m.store.UpdateReminder(r.ID, task.ReminderPatch{Status: &status})
	}
	if g, ok := m.selectedGoal(); ok {
		done := !g.Completed
		p := goal.Patch{Completed: &done}
		if done {
			progress := 100
			p.Progress = &progress
		}
		_, _, err := m.goalz.Update(g.ID, p)
		return err
	}
	return nil
}

func (m *app) nudgeGoal(by int) error {
	g, ok := m.selectedGoal()
	if !ok {
		return nil
	}
	progress := g.Progress + by
	_, _, err := m.goalz.Update(g.ID, goal.Patch{Progress: &progress})
	m.refresh()
	return err
}

func (m *app) delete() error {
	defer m.refresh()
	if t, ok := m.selectedTask(); ok {
		return m.store.Delete(t.ID)
	}
	if r, ok := m.selectedReminder(); ok {
		return m.store.DeleteReminder(r.ID)
	}
	return nil
}
