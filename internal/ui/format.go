package ui

import (
	"strconv"
	"time"

	"github.com/td0m/dayplan/pkg/task/date"
)

// FormatDue describes a due date relative to now, e.g. "today", "3 days",
// "2 weeks ago".
func FormatDue(t, now time.Time) string {
	days := date.Days(now, t)
	switch {
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	case days == -1:
		return "yesterday"
	case days < 0:
		return span(-days) + " ago"
	}
	return span(days)
}

func span(days int) string {
	switch {
	case days < 14:
		return plural(days, "day")
	// max 1 month
	case days <= 31:
		return plural(days/7, "week")
	default:
		return plural(days/31, "month")
	}
}

func plural(n int, unit string) string {
	s := strconv.Itoa(n) + " " + unit
	if n != 1 {
		s += "s"
	}
	return s
}
