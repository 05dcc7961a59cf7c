package date

import (
	"testing"
	"time"

	"github.com/matryer/is"
)

// a Saturday
var now = time.Date(2026, time.October, 17, 15, 4, 5, 0, time.UTC)

func TestParse(t *testing.T) {
	today := StartOfDay(now)
	tests := []struct {
		name    string
		args    []string
		want    time.Time
		wantErr bool
	}{
		{"Case Insensitive", []string{"ToDAY", " today "}, today, false},
		{"today", []string{"today", "tod", "now"}, today, false},
		{"tomorrow", []string{"tomorrow", "tom", "1", "+1", "in 1 day", "1d", "1day", "1 day"}, today.AddDate(0, 0, 1), false},
		{"yesterday", []string{"yday", "yesterday", "1 day ago", "1d ago", "-1"}, today.AddDate(0, 0, -1), false},
		{"7 days", []string{"7 day", "7 days", "1 week", "7", "in 1w"}, today.AddDate(0, 0, 7), false},
		{"1 month", []string{"1 month", "1m"}, today.AddDate(0, 0, 30), false},
		{"1 year", []string{"1y", "in 1 year"}, today.AddDate(0, 0, 365), false},

		{"absolute", []string{"20/04/27", "20/04/2027", "20 April 2027", "20 apr 2027", "2027-04-20"}, time.Date(2027, 4, 20, 0, 0, 0, 0, time.UTC), false},
		{"monday", []string{"mon", "monday"}, today.AddDate(0, 0, 2), false},
		{"friday", []string{"fri", "Friday"}, today.AddDate(0, 0, 6), false},
		{"same weekday means next week", []string{"sat", "saturday"}, today.AddDate(0, 0, 7), false},

		{"later this month", []string{"21st"}, time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC), false},
		{"earlier day rolls to next month", []string{"2nd"}, time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC), false},
		{"today rolls to next month", []string{"17th"}, time.Date(2026, 11, 17, 0, 0, 0, 0, time.UTC), false},
		{"day and month", []string{"1st jan", "1st January"}, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"day and month this year", []string{"3rd dec"}, time.Date(2026, 12, 3, 0, 0, 0, 0, time.UTC), false},

		{"invalid", []string{"", "1wek", "32nd", "11st", "2th", "someday", "3 days later"}, time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, arg := range tt.args {
				got, err := Parse(arg, now)
				if (err != nil) != tt.wantErr {
					t.Errorf("Parse(%q) error = %v, wantErr %v", arg, err, tt.wantErr)
					continue
				}
				if !got.Equal(tt.want) {
					t.Errorf("Parse(%q)\ngot:  %v\nwant: %v", arg, got, tt.want)
				}
			}
		})
	}
}

func TestParseTime(t *testing.T) {
	today := StartOfDay(now)
	tests := []struct {
		input string
		want  time.Time
	}{
		{"tomorrow at 9:30", today.AddDate(0, 0, 1).Add(9*time.Hour + 30*time.Minute)},
		{"fri 18:00", today.AddDate(0, 0, 6).Add(18 * time.Hour)},
		{"16:45", today.Add(16*time.Hour + 45*time.Minute)},
		{"3pm", today.Add(15 * time.Hour)},
		{"in 2 days", today.AddDate(0, 0, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			is := is.New(t)
			got, err := ParseTime(tt.input, now)
			is.NoErr(err)
			is.Equal(got, tt.want)
		})
	}

	t.Run("invalid", func(t *testing.T) {
		is := is.New(t)
		_, err := ParseTime("whenever at 9:30", now)
		is.Equal(err, ErrParsing)
	})
}

func TestDays(t *testing.T) {
	is := is.New(t)
	is.Equal(Days(now, now), 0)
	is.Equal(Days(now, now.Add(9*time.Hour)), 1)
	is.Equal(Days(now, now.AddDate(0, 0, -3)), -3)
	is.True(SameDay(now, StartOfDay(now)))
	is.True(!SameDay(now, StartOfDay(now).Add(-time.Nanosecond)))
}
