package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matryer/is"
)

var now = time.Date(2026, time.October, 17, 15, 4, 5, 0, time.UTC)

func TestFormatDue(t *testing.T) {
	day := 24 * time.Hour
	tests := map[string]time.Time{
		"today":       now.Add(time.Hour),
		"tomorrow":    now.Add(day),
		"yesterday":   now.Add(-day),
		"3 days":      now.Add(3 * day),
		"3 days ago":  now.Add(-3 * day),
		"2 weeks":     now.Add(20 * day),
		"1 month":     now.Add(40 * day),
		"6 months":    now.Add(200 * day),
		"2 weeks ago": now.Add(-15 * day),
	}
	for want, due := range tests {
		t.Run(want, func(t *testing.T) {
			is := is.New(t)
			is.Equal(FormatDue(due, now), want)
		})
	}
}

func TestTabs(t *testing.T) {
	is := is.New(t)
	tabs := NewTabs([]string{"Tasks", "Today", "Goals"})
	press := func(key tea.KeyMsg) {
		tabs, _ = tabs.Update(key)
	}

	press(tea.KeyMsg{Type: tea.KeyTab})
	is.Equal(tabs.Value(), 1)
	press(tea.KeyMsg{Type: tea.KeyShiftTab})
	press(tea.KeyMsg{Type: tea.KeyShiftTab})
	is.Equal(tabs.Value(), 2) // wraps around
	press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("1"), Alt: true})
	is.Equal(tabs.Value(), 0)
	press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("9"), Alt: true})
	is.Equal(tabs.Value(), 0) // no ninth tab

	tabs.Set(42)
	is.Equal(tabs.Value(), 2)
	tabs.Set(-1)
	is.Equal(tabs.Value(), 0)

	tabs.Width = 60
	tabs.Info = "3 due"
	view := tabs.View()
	is.True(strings.Contains(view, "Goals"))
	is.True(strings.Contains(view, "3 due"))
}

func TestDateInput(t *testing.T) {
	clock := func() time.Time { return now }
	typeIn := func(m DateInput, s string) DateInput {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
		return m
	}

	t.Run("empty", func(t *testing.T) {
		is := is.New(t)
		m := NewDateInput("due", clock)
		_, ok := m.Value()
		is.True(!ok)
		is.True(m.Empty())
	})

	t.Run("valid", func(t *testing.T) {
		is := is.New(t)
		m := typeIn(NewDateInput("due", clock), "tomorrow at 9:30")
		got, ok := m.Value()
		is.True(ok)
		is.Equal(got, time.Date(2026, time.October, 18, 9, 30, 0, 0, time.UTC))
		is.True(strings.Contains(m.View(), "tomorrow"))
	})

	t.Run("invalid", func(t *testing.T) {
		is := is.New(t)
		m := typeIn(NewDateInput("due", clock), "someday")
		_, ok := m.Value()
		is.True(!ok)
		is.True(strings.Contains(m.View(), "✗"))
	})

	t.Run("set value", func(t *testing.T) {
		is := is.New(t)
		m := NewDateInput("due", clock)
		m.SetValue(time.Date(2026, time.October, 20, 0, 0, 0, 0, time.UTC))
		got, ok := m.Value()
		is.True(ok)
		is.Equal(got.Day(), 20)
	})
}
