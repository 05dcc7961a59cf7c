package task

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/td0m/dayplan/pkg/check"
	"github.com/td0m/dayplan/pkg/persist"
	"github.com/td0m/dayplan/pkg/task/date"
	"go.uber.org/zap"
)

const (
	TasksKey     = "tasks"
	RemindersKey = "reminders"
)

var ErrNotFound = errors.New("not found")

type StoreManager interface {
	Add(Task) (Task, error)
	Update(int, TaskPatch) error
	Toggle(int) (Task, error)
	Delete(int) error

	AddReminder(Reminder) (Reminder, error)
	UpdateReminder(int, ReminderPatch) error
	DeleteReminder(int) error

	Task(int) (Task, bool)
	Tasks() []Task
	Reminders() []Reminder
	RemindersFor(taskID int) []Reminder
	Overdue() []Task
	Today() []Task
	TodayReminders() []Reminder

	Stats() TaskStats
	ReminderStats() ReminderStats
}

var _ StoreManager = &Store{}

type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithDefaults replaces the sample data used when nothing (or nothing
// readable) is stored.
func WithDefaults(tasks []Task, reminders []Reminder) Option {
	return func(s *Store) {
		s.defaults = func(time.Time) ([]Task, []Reminder) { return tasks, reminders }
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// Store owns the task and reminder collections. Every mutation writes the
// whole affected collection back to the persist store before returning.
type Store struct {
	mu       sync.Mutex
	persist  *persist.Store
	now      func() time.Time
	log      *zap.Logger
	defaults func(time.Time) ([]Task, []Reminder)

	tasks     []Task
	reminders []Reminder
}

// NewStore loads both collections from p.
func NewStore(p *persist.Store, opts ...Option) *Store {
	s := &Store{
		persist: p,
		now:     time.Now,
		log:     zap.NewNop(),
		defaults: func(now time.Time) ([]Task, []Reminder) {
			return DefaultTasks(now), DefaultReminders(now)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load()
	return s
}

func (s *Store) load() {
	tasks, reminders := s.defaults(s.now())
	s.tasks = persist.Load(s.persist, TasksKey, tasks)
	s.reminders = persist.Load(s.persist, RemindersKey, reminders)
}

// Reload replaces the in-memory collections with what is currently stored.
func (s *Store) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()
}

// Follow reloads the store whenever another process changes one of its
// keys. The returned function stops following.
func (s *Store) Follow(onReload func()) (stop func()) {
	return s.persist.Subscribe(func(c persist.Change) {
		if !c.External || (c.Key != TasksKey && c.Key != RemindersKey) {
			return
		}
		s.log.Debug("reloading after external change", zap.String("key", c.Key))
		s.Reload()
		if onReload != nil {
			onReload()
		}
	})
}

func (s *Store) saveTasks() error {
	if s.tasks == nil {
		s.tasks = []Task{}
	}
	if err := s.persist.Save(TasksKey, s.tasks); err != nil {
		return fmt.Errorf("saving tasks: %w", err)
	}
	return nil
}

func (s *Store) saveReminders() error {
	if s.reminders == nil {
		s.reminders = []Reminder{}
	}
	if err := s.persist.Save(RemindersKey, s.reminders); err != nil {
		return fmt.Errorf("saving reminders: %w", err)
	}
	return nil
}

func (s *Store) taskIndex(id int) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) reminderIndex(id int) int {
	for i, r := range s.reminders {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// Add stores t under the next free id (highest id + 1, or 1).
func (s *Store) Add(t Task) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = 1
	for _, existing := range s.tasks {
		if existing.ID >= t.ID {
			t.ID = existing.ID + 1
		}
	}
	t.CreatedAt = s.now()
	t.Overdue = false
	if t.Status == "" {
		t.Status = Pending
		if t.Completed {
			t.Status = Completed
		}
	}
	if t.Priority == "" {
		t.Priority = Medium
	}
	if err := check.Struct(t); err != nil {
		return Task{}, err
	}
	s.tasks = append(s.tasks, t)
	return t, s.saveTasks()
}

// Update merges p into the task. A change of Completed is mirrored on every
// reminder of the task, and completing the task completes its reminders.
func (s *Store) Update(id int, p TaskPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.update(id, p)
}

func (s *Store) update(id int, p TaskPatch) error {
	i := s.taskIndex(id)
	if i < 0 {
		return ErrNotFound
	}
	next := s.tasks[i]
	p.apply(&next)
	if fields := p.checked(); len(fields) > 0 {
		if err := check.Struct(next, fields...); err != nil {
			return err
		}
	}
	s.tasks[i] = next
	if p.Completed == nil {
		return s.saveTasks()
	}

	// the cascade is applied before anything is written so a failed save
	// never leaves reminders disagreeing with their task
	cascaded := false
	for j := range s.reminders {
		r := &s.reminders[j]
		if r.TaskID != id {
			continue
		}
		r.TaskCompleted = *p.Completed
		if *p.Completed {
			r.Status = ReminderComplete
		}
		cascaded = true
	}
	err := s.saveTasks()
	if cascaded {
		err = errors.Join(err, s.saveReminders())
	}
	return err
}

// Toggle flips the completion of a task and moves its status along.
func (s *Store) Toggle(id int) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndex(id)
	if i < 0 {
		return Task{}, ErrNotFound
	}
	done := !s.tasks[i].Completed
	status := Pending
	if done {
		status = Completed
	}
	if err := s.update(id, TaskPatch{Completed: &done, Status: &status}); err != nil {
		return Task{}, err
	}
	return s.tasks[i], nil
}

// Delete removes the task and every reminder that points at it.
func (s *Store) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndex(id)
	if i < 0 {
		return ErrNotFound
	}
	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)

	kept := make([]Reminder, 0, len(s.reminders))
	for _, r := range s.reminders {
		if r.TaskID != id {
			kept = append(kept, r)
		}
	}
	s.reminders = kept

	if err := s.saveTasks(); err != nil {
		return err
	}
	return s.saveReminders()
}

// AddReminder stores r under the next free reminder id. A linked reminder
// starts with the completion of its task.
func (s *Store) AddReminder(r Reminder) (Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.ID = 1
	for _, existing := range s.reminders {
		if existing.ID >= r.ID {
			r.ID = existing.ID + 1
		}
	}
	if r.Status == "" {
		r.Status = Upcoming
	}
	if r.Frequency == "" {
		r.Frequency = Once
	}
	if r.NotificationMethod == "" {
		r.NotificationMethod = NotifyApp
	}
	if r.Priority == "" {
		r.Priority = Medium
	}
	if i := s.taskIndex(r.TaskID); r.TaskID != 0 && i >= 0 {
		r.TaskCompleted = s.tasks[i].Completed
	}
	if err := check.Struct(r); err != nil {
		return Reminder{}, err
	}
	s.reminders = append(s.reminders, r)
	return r, s.saveReminders()
}

func (s *Store) UpdateReminder(id int, p ReminderPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.reminderIndex(id)
	if i < 0 {
		return ErrNotFound
	}
	next := s.reminders[i]
	p.apply(&next)
	if fields := p.checked(); len(fields) > 0 {
		if err := check.Struct(next, fields...); err != nil {
			return err
		}
	}
	s.reminders[i] = next
	return s.saveReminders()
}

func (s *Store) DeleteReminder(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.reminderIndex(id)
	if i < 0 {
		return ErrNotFound
	}
	s.reminders = append(s.reminders[:i:i], s.reminders[i+1:]...)
	return s.saveReminders()
}

func (s *Store) Task(id int) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.taskIndex(id); i >= 0 {
		return s.tasks[i], true
	}
	return Task{}, false
}

func (s *Store) Reminder(id int) (Reminder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.reminderIndex(id); i >= 0 {
		return s.reminders[i], true
	}
	return Reminder{}, false
}

func (s *Store) Tasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Task{}, s.tasks...)
}

func (s *Store) Reminders() []Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Reminder{}, s.reminders...)
}

func (s *Store) RemindersFor(taskID int) []Reminder {
	return s.filterReminders(func(r Reminder) bool { return r.TaskID == taskID })
}

func (s *Store) Overdue() []Task {
	now := s.now()
	return s.filterTasks(func(t Task) bool { return t.IsOverdue(now) })
}

// Today returns the tasks due on the current calendar day.
func (s *Store) Today() []Task {
	now := s.now()
	return s.filterTasks(func(t Task) bool {
		return !t.DueDate.IsZero() && date.SameDay(t.DueDate, now)
	})
}

// TodayReminders returns the unfinished reminders set for the current
// calendar day.
func (s *Store) TodayReminders() []Reminder {
	now := s.now()
	return s.filterReminders(func(r Reminder) bool {
		return r.Status != ReminderComplete && !r.ReminderTime.IsZero() && date.SameDay(r.ReminderTime, now)
	})
}

func (s *Store) filterTasks(keep func(Task) bool) []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Task{}
	for _, t := range s.tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func (s *Store) filterReminders(keep func(Reminder) bool) []Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Reminder{}
	for _, r := range s.reminders {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// Stats counts tasks by state. Pending, Overdue and Completed partition
// Total; InProgress overlaps Pending.
func (s *Store) Stats() TaskStats {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	st := TaskStats{Total: len(s.tasks)}
	for _, t := range s.tasks {
		overdue := t.IsOverdue(now)
		switch {
		case t.Completed:
			st.Completed++
		case overdue:
			st.Overdue++
		default:
			st.Pending++
		}
		if t.Status == InProgress && !t.Completed {
			st.InProgress++
		}
	}
	return st
}

// ReminderStats counts reminders by their stored status.
func (s *Store) ReminderStats() ReminderStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := ReminderStats{Total: len(s.reminders)}
	for _, r := range s.reminders {
		switch r.Status {
		case Today:
			st.Today++
		case Upcoming:
			st.Upcoming++
		case ReminderComplete:
			st.Completed++
		case Missed:
			st.Missed++
		}
	}
	return st
}
