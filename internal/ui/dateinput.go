package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/td0m/dayplan/pkg/task/date"
)

var (
	indicator = lipgloss.NewStyle().Padding(0, 1).Bold(true)
	checkmark = indicator.
			Foreground(lipgloss.AdaptiveColor{Light: "#00ad3b", Dark: "#73F59F"}).
			Render("✓")

	cross = indicator.
		Foreground(lipgloss.AdaptiveColor{Light: "", Dark: "#FF5047"}).
		Render("✗")

	faded = lipgloss.AdaptiveColor{Light: "#666", Dark: "#999"}
)

// DateInput is a text input that understands dates like "tomorrow",
// "fri 18:00" or "21/04/2026" and shows whether the current text parses.
type DateInput struct {
	input  textinput.Model
	Prompt string
	now    func() time.Time
	value  time.Time
	ok     bool
}

func NewDateInput(prompt string, now func() time.Time) DateInput {
	i := textinput.New()
	i.Focus()
	i.CharLimit = 32
	i.Prompt = ""
	i.Placeholder = "tomorrow at 9:00"
	i.Width = 24
	return DateInput{input: i, Prompt: prompt, now: now}
}

func (m DateInput) Init() tea.Cmd {
	return textinput.Blink
}

func (m DateInput) Update(msg tea.Msg) (DateInput, tea.Cmd) {
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if _, isKey := msg.(tea.KeyMsg); isKey {
		m.parse()
	}
	return m, cmd
}

func (m *DateInput) parse() {
	t, err := date.ParseTime(m.input.Value(), m.now())
	m.value, m.ok = t, err == nil
}

func (m DateInput) View() string {
	mark := ""
	switch {
	case m.input.Value() == "":
	case m.ok:
		mark = checkmark + " " + FormatDue(m.value, m.now())
	default:
		mark = cross
	}
	return lipgloss.NewStyle().Foreground(faded).Render(m.Prompt+": ") + m.input.View() + mark
}

// Value returns the parsed date. ok is false while the text is empty or does
// not parse.
func (m DateInput) Value() (t time.Time, ok bool) {
	return m.value, m.ok
}

func (m *DateInput) SetValue(t time.Time) {
	if t.IsZero() {
		m.input.SetValue("")
	} else {
		m.input.SetValue(t.Format("2006-01-02"))
	}
	m.parse()
}

// Empty reports whether nothing has been typed, which callers treat as
// "no date".
func (m DateInput) Empty() bool {
	return m.input.Value() == ""
}
