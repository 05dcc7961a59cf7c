package task

import "time"

type Priority string

const (
	Low    Priority = "low"
	Medium Priority = "medium"
	High   Priority = "high"
)

type Status string

const (
	Pending    Status = "pending"
	InProgress Status = "in_progress"
	Completed  Status = "completed"
)

// Task is a unit of work with a due date.
type Task struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"dueDate"`
	Priority    Priority  `json:"priority" validate:"oneof=low medium high"`
	Category    string    `json:"category"`
	Completed   bool      `json:"completed"`
	Status      Status    `json:"status" validate:"oneof=pending in_progress completed"`
	CreatedAt   time.Time `json:"createdAt"`

	// Overdue is written as false when a task is created and never read
	// again. Use IsOverdue.
	Overdue bool `json:"overdue"`
}

// IsOverdue reports whether the task is unfinished and past its due date.
// Tasks without a due date are never overdue.
func (t Task) IsOverdue(now time.Time) bool {
	return !t.Completed && !t.DueDate.IsZero() && t.DueDate.Before(now)
}

// TaskPatch holds the fields to change on a task; nil fields are left as
// they are.
type TaskPatch struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Priority    *Priority
	Category    *string
	Completed   *bool
	Status      *Status
}

// checked lists the validated fields the patch sets.
func (p TaskPatch) checked() []string {
	var fields []string
	if p.Priority != nil {
		fields = append(fields, "Priority")
	}
	if p.Status != nil {
		fields = append(fields, "Status")
	}
	return fields
}

func (p TaskPatch) apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
}

type TaskStats struct {
	Pending    int `json:"pending"`
	Completed  int `json:"completed"`
	Overdue    int `json:"overdue"`
	InProgress int `json:"inProgress"`
	Total      int `json:"total"`
}
