package task

import "time"

type ReminderStatus string

const (
	Upcoming         ReminderStatus = "upcoming"
	Today            ReminderStatus = "today"
	ReminderComplete ReminderStatus = "completed"
	Missed           ReminderStatus = "missed"
)

type Frequency string

const (
	Once     Frequency = "once"
	Daily    Frequency = "daily"
	Multiple Frequency = "multiple"
)

type NotificationMethod string

const (
	NotifyApp   NotificationMethod = "app"
	NotifyEmail NotificationMethod = "email"
	NotifyBoth  NotificationMethod = "both"
)

// Reminder is a notification attached to a task by id. TaskID 0 means the
// reminder stands alone.
type Reminder struct {
	ID                 int                `json:"id"`
	TaskID             int                `json:"taskId"`
	Title              string             `json:"title"`
	DueDate            time.Time          `json:"dueDate"`
	ReminderTime       time.Time          `json:"reminderTime"`
	Status             ReminderStatus     `json:"status" validate:"oneof=upcoming today completed missed"`
	Category           string             `json:"category"`
	Priority           Priority           `json:"priority" validate:"oneof=low medium high"`
	Frequency          Frequency          `json:"frequency" validate:"oneof=once daily multiple"`
	NotificationMethod NotificationMethod `json:"notificationMethod" validate:"oneof=app email both"`
	TaskCompleted      bool               `json:"taskCompleted"`
	Note               string             `json:"note"`
}

type ReminderPatch struct {
	TaskID             *int
	Title              *string
	DueDate            *time.Time
	ReminderTime       *time.Time
	Status             *ReminderStatus
	Category           *string
	Priority           *Priority
	Frequency          *Frequency
	NotificationMethod *NotificationMethod
	TaskCompleted      *bool
	Note               *string
}

func (p ReminderPatch) checked() []string {
	var fields []string
	if p.Status != nil {
		fields = append(fields, "Status")
	}
	if p.Priority != nil {
		fields = append(fields, "Priority")
	}
	if p.Frequency != nil {
		fields = append(fields, "Frequency")
	}
	if p.NotificationMethod != nil {
		fields = append(fields, "NotificationMethod")
	}
	return fields
}

func (p ReminderPatch) apply(r *Reminder) {
	if p.TaskID != nil {
		r.TaskID = *p.TaskID
	}
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.DueDate != nil {
		r.DueDate = *p.DueDate
	}
	if p.ReminderTime != nil {
		r.ReminderTime = *p.ReminderTime
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.Category != nil {
		r.Category = *p.Category
	}
	if p.Priority != nil {
		r.Priority = *p.Priority
	}
	if p.Frequency != nil {
		r.Frequency = *p.Frequency
	}
	if p.NotificationMethod != nil {
		r.NotificationMethod = *p.NotificationMethod
	}
	if p.TaskCompleted != nil {
		r.TaskCompleted = *p.TaskCompleted
	}
	if p.Note != nil {
		r.Note = *p.Note
	}
}

type ReminderStats struct {
	Total     int `json:"total"`
	Today     int `json:"today"`
	Upcoming  int `json:"upcoming"`
	Completed int `json:"completed"`
	Missed    int `json:"missed"`
}
