package goal

import "time"

type Priority string

const (
	Low    Priority = "low"
	Medium Priority = "medium"
	High   Priority = "high"
)

// Goal is a long-running objective tracked by progress.
type Goal struct {
	ID           int         `json:"id"`
	Title        string      `json:"title"`
	Category     string      `json:"category"`
	TargetDate   string      `json:"targetDate"`
	Progress     int         `json:"progress"`
	Milestone    string      `json:"milestone"`
	NextCheckin  string      `json:"nextCheckin"`
	Completed    bool        `json:"completed"`
	TargetValue  float64     `json:"targetValue"`
	CurrentValue float64     `json:"currentValue"`
	Unit         string      `json:"unit"`
	Description  string      `json:"description"`
	Priority     Priority    `json:"priority" validate:"oneof=low medium high"`
	Milestones   []Milestone `json:"milestones"`
}

type Milestone struct {
	Title      string    `json:"title"`
	AchievedAt time.Time `json:"achievedAt"`
}

// Patch holds the fields to change on a goal; nil fields are left alone.
// Milestones only grow through Store.AddMilestone.
type Patch struct {
	Title        *string
	Category     *string
	TargetDate   *string
	Progress     *int
	Milestone    *string
	NextCheckin  *string
	Completed    *bool
	TargetValue  *float64
	CurrentValue *float64
	Unit         *string
	Description  *string
	Priority     *Priority
}

func (p Patch) apply(g *Goal) {
	if p.Title != nil {
		g.Title = *p.Title
	}
	if p.Category != nil {
		g.Category = *p.Category
	}
	if p.TargetDate != nil {
		g.TargetDate = *p.TargetDate
	}
	if p.Progress != nil {
		g.Progress = clamp(*p.Progress)
	}
	if p.Milestone != nil {
		g.Milestone = *p.Milestone
	}
	if p.NextCheckin != nil {
		g.NextCheckin = *p.NextCheckin
	}
	if p.Completed != nil {
		g.Completed = *p.Completed
	}
	if p.TargetValue != nil {
		g.TargetValue = *p.TargetValue
	}
	if p.CurrentValue != nil {
		g.CurrentValue = *p.CurrentValue
	}
	if p.Unit != nil {
		g.Unit = *p.Unit
	}
	if p.Description != nil {
		g.Description = *p.Description
	}
	if p.Priority != nil {
		g.Priority = *p.Priority
	}
}

func clamp(progress int) int {
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}

const (
	defaultTitle       = "Untitled goal"
	defaultCategory    = "Personal"
	defaultMilestone   = "Just getting started"
	defaultNextCheckin = "Not scheduled"
	defaultTargetValue = 100
	defaultUnit        = "%"
)

// withDefaults fills every empty field of g.
func withDefaults(g Goal) Goal {
	if g.Title == "" {
		g.Title = defaultTitle
	}
	if g.Category == "" {
		g.Category = defaultCategory
	}
	g.Progress = clamp(g.Progress)
	if g.Milestone == "" {
		g.Milestone = defaultMilestone
	}
	if g.NextCheckin == "" {
		g.NextCheckin = defaultNextCheckin
	}
	if g.TargetValue == 0 {
		g.TargetValue = defaultTargetValue
	}
	if g.Unit == "" {
		g.Unit = defaultUnit
	}
	if g.Priority == "" {
		g.Priority = Medium
	}
	if g.Milestones == nil {
		g.Milestones = []Milestone{}
	}
	return g
}

// Defaults is the built-in goal set returned while nothing usable is stored.
func Defaults() []Goal {
	return []Goal{
		{
			ID:           1,
			Title:        "Run a half marathon",
			Category:     "Health",
			TargetDate:   "May 2027",
			Progress:     35,
			Milestone:    "Ran 10km without stopping",
			NextCheckin:  "Sunday",
			TargetValue:  21.1,
			CurrentValue: 10,
			Unit:         "km",
			Description:  "Build up weekly mileage and finish a half marathon",
			Priority:     High,
			Milestones:   []Milestone{},
		},
		{
			ID:           2,
			Title:        "Read 12 books",
			Category:     "Learning",
			TargetDate:   "December 2026",
			Progress:     58,
			Milestone:    "Finished book 7",
			NextCheckin:  "End of month",
			TargetValue:  12,
			CurrentValue: 7,
			Unit:         "books",
			Priority:     Medium,
			Milestones:   []Milestone{},
		},
		{
			ID:           3,
			Title:        "Build an emergency fund",
			Category:     "Finance",
			TargetDate:   "June 2027",
			Progress:     20,
			Milestone:    "Opened a savings account",
			NextCheckin:  "Payday",
			TargetValue:  5000,
			CurrentValue: 1000,
			Unit:         "EUR",
			Priority:     Medium,
			Milestones:   []Milestone{},
		},
	}
}
