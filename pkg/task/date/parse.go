package date

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

var ErrParsing = errors.New("error parsing date")

// Parse turns a human date into midnight of that day, relative to now.
// Accepted forms: today, tomorrow, yesterday, weekday names (next
// occurrence), offsets ("3", "in 2 weeks", "1 day ago", "-1"), day of the
// month ("21st"), day and month ("1st jan"), and absolute dates
// ("21/04/26", "21 April 2026", "2026-04-21").
func Parse(s string, now time.Time) (time.Time, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	today := StartOfDay(now)
	switch s {
	case "":
		return time.Time{}, ErrParsing
	case "today", "tod", "now":
		return today, nil
	case "tomorrow", "tom":
		return today.AddDate(0, 0, 1), nil
	case "yesterday", "yday":
		return today.AddDate(0, 0, -1), nil
	}
	if t, err := parseWeekday(s, today); err == nil {
		return t, nil
	}
	if days, err := parseDayOffset(s); err == nil {
		return today.AddDate(0, 0, days), nil
	}
	if t, err := parseAbsolute(s, now.Location()); err == nil {
		return t, nil
	}
	if t, err := parseDayOfMonth(s, today); err == nil {
		return t, nil
	}
	return time.Time{}, ErrParsing
}

// ParseTime is Parse with an optional time of day: "tomorrow at 9:30",
// "fri 18:00". A bare clock time means today.
func ParseTime(s string, now time.Time) (time.Time, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if clock, err := parseClock(s); err == nil {
		return StartOfDay(now).Add(clock), nil
	}
	day, clock := s, time.Duration(0)
	if i := strings.LastIndexByte(s, ' '); i >= 0 {
		if c, err := parseClock(s[i+1:]); err == nil {
			day, clock = strings.TrimSuffix(strings.TrimSpace(s[:i]), " at"), c
		}
	}
	t, err := Parse(day, now)
	if err != nil {
		return time.Time{}, err
	}
	return t.Add(clock), nil
}

func parseClock(s string) (time.Duration, error) {
	for _, layout := range []string{"15:04", "3:04pm", "3pm"} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
		}
	}
	return 0, ErrParsing
}

var absoluteFormats = []string{
	"2006-01-02",
	"_2/01/06",
	"_2/01/2006",
	"_2 Jan 2006",
	"_2 January 2006",
}

func parseAbsolute(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range absoluteFormats {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrParsing
}

type multiplier struct {
	key   string
	value int
}

var multipliers = []multiplier{
	{"days", 1},
	{"weeks", 7},
	{"months", 30},
	{"years", 365},
}

// parseDayOffset accepts an optional "in", a signed quantity and an optional
// (possibly abbreviated) unit, optionally followed by "ago".
func parseDayOffset(s string) (int, error) {
	s = strings.TrimSpace(strings.TrimPrefix(s, "in"))
	negative := false
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	} else {
		s = strings.TrimPrefix(s, "+")
	}

	rest, n, err := parseInt(s)
	if err != nil {
		return 0, err
	}
	s = strings.TrimSpace(rest)

	mult := 1
	if s != "" {
		word := s
		if i := strings.IndexByte(s, ' '); i >= 0 {
			word, s = s[:i], strings.TrimSpace(s[i:])
		} else {
			s = ""
		}
		mult = 0
		for _, m := range multipliers {
			if len(word) <= len(m.key) && m.key[:len(word)] == word {
				mult = m.value
				break
			}
		}
		if mult == 0 {
			return 0, errors.New("invalid suffix, expected 'days', 'weeks', 'months', or 'years'")
		}
		switch s {
		case "":
		case "ago":
			negative = true
		default:
			return 0, ErrParsing
		}
	}
	if negative {
		n = -n
	}
	return n * mult, nil
}

func parseWeekday(s string, today time.Time) (time.Time, error) {
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		name := strings.ToLower(wd.String())
		if s == name || s == name[:3] {
			days := int(wd - today.Weekday())
			if days <= 0 {
				days += 7
			}
			return today.AddDate(0, 0, days), nil
		}
	}
	return time.Time{}, errors.New("invalid weekday")
}

// parseDayOfMonth handles "21st" (next time that day comes round) and
// "21st april" (next time that date comes round).
func parseDayOfMonth(s string, today time.Time) (time.Time, error) {
	rest, n, err := parseInt(s)
	if err != nil {
		return time.Time{}, err
	}
	suffix, month := rest, ""
	if i := strings.IndexByte(rest, ' '); i >= 0 {
		suffix, month = rest[:i], strings.TrimSpace(rest[i+1:])
	}
	if !validOrdinal(n, suffix) {
		return time.Time{}, errors.New("invalid postfix")
	}

	if month == "" {
		t := time.Date(today.Year(), today.Month(), n, 0, 0, 0, 0, today.Location())
		if !t.After(today) {
			t = time.Date(today.Year(), today.Month()+1, n, 0, 0, 0, 0, today.Location())
		}
		return t, nil
	}
	for m := time.January; m <= time.December; m++ {
		name := strings.ToLower(m.String())
		if month == name || month == name[:3] {
			t := time.Date(today.Year(), m, n, 0, 0, 0, 0, today.Location())
			if !t.After(today) {
				t = t.AddDate(1, 0, 0)
			}
			return t, nil
		}
	}
	return time.Time{}, errors.New("invalid month")
}

func validOrdinal(n int, suffix string) bool {
	if n < 1 || n > 31 {
		return false
	}
	last := n % 10
	teen := n%100-last == 10
	switch {
	case last == 1 && !teen:
		return suffix == "st"
	case last == 2 && !teen:
		return suffix == "nd"
	case last == 3 && !teen:
		return suffix == "rd"
	default:
		return suffix == "th"
	}
}

// parseInt reads the leading decimal number of s.
func parseInt(s string) (string, int, error) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return s, 0, errors.New("failed to parse")
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return s, 0, err
	}
	return s[i:], n, nil
}
