package task

import (
	"time"

	"github.com/td0m/dayplan/pkg/task/date"
)

// DefaultTasks is the sample set shown before anything has been saved.
func DefaultTasks(now time.Time) []Task {
	today := date.StartOfDay(now)
	return []Task{
		{
			ID:          1,
			Title:       "Finish project proposal",
			Description: "Draft the scope and timeline and send it for review",
			DueDate:     today.Add(17 * time.Hour),
			Priority:    High,
			Category:    "Work",
			Status:      InProgress,
			CreatedAt:   today.AddDate(0, 0, -3),
		},
		{
			ID:          2,
			Title:       "Grocery shopping",
			Description: "Vegetables, coffee, oat milk",
			DueDate:     today.AddDate(0, 0, 1).Add(18 * time.Hour),
			Priority:    Medium,
			Category:    "Personal",
			Status:      Pending,
			CreatedAt:   today.AddDate(0, 0, -1),
		},
		{
			ID:          3,
			Title:       "Review pull requests",
			Description: "Two open reviews from last week",
			DueDate:     today.AddDate(0, 0, -1).Add(12 * time.Hour),
			Priority:    High,
			Category:    "Work",
			Status:      Pending,
			CreatedAt:   today.AddDate(0, 0, -5),
		},
		{
			ID:          4,
			Title:       "Book dentist appointment",
			DueDate:     today.AddDate(0, 0, 3).Add(10 * time.Hour),
			Priority:    Low,
			Category:    "Health",
			Completed:   true,
			Status:      Completed,
			CreatedAt:   today.AddDate(0, 0, -7),
		},
	}
}

// DefaultReminders is the sample set linked to DefaultTasks.
func DefaultReminders(now time.Time) []Reminder {
	today := date.StartOfDay(now)
	return []Reminder{
		{
			ID:                 1,
			TaskID:             1,
			Title:              "Send proposal draft",
			DueDate:            today.Add(17 * time.Hour),
			ReminderTime:       today.Add(15 * time.Hour),
			Status:             Today,
			Category:           "Work",
			Priority:           High,
			Frequency:          Once,
			NotificationMethod: NotifyBoth,
		},
		{
			ID:                 2,
			TaskID:             2,
			Title:              "Pick up groceries",
			DueDate:            today.AddDate(0, 0, 1).Add(18 * time.Hour),
			ReminderTime:       today.AddDate(0, 0, 1).Add(17 * time.Hour),
			Status:             Upcoming,
			Category:           "Personal",
			Priority:           Medium,
			Frequency:          Once,
			NotificationMethod: NotifyApp,
			Note:               "Bring the reusable bags",
		},
		{
			ID:                 3,
			TaskID:             4,
			Title:              "Call the dentist",
			DueDate:            today.AddDate(0, 0, 3).Add(10 * time.Hour),
			ReminderTime:       today.AddDate(0, 0, -1).Add(9 * time.Hour),
			Status:             ReminderComplete,
			Category:           "Health",
			Priority:           Low,
			Frequency:          Once,
			NotificationMethod: NotifyEmail,
			TaskCompleted:      true,
		},
	}
}
