package task

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/td0m/dayplan/pkg/check"
	"github.com/td0m/dayplan/pkg/persist"
)

var now = time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

// newEmpty returns a store with no tasks and no reminders.
func newEmpty() (*Store, *persist.Store) {
	p := persist.New(persist.NewMemory())
	return NewStore(p, WithClock(clock), WithDefaults(nil, nil)), p
}

func ptr[T any](v T) *T { return &v }

func TestStore_Add(t *testing.T) {
	is := is.New(t)
	s, p := newEmpty()

	first, err := s.Add(Task{Title: "X", DueDate: now.Add(time.Hour)})
	is.NoErr(err)
	is.Equal(first.ID, 1)
	is.Equal(first.CreatedAt, now)
	is.Equal(first.Status, Pending)
	is.Equal(first.Priority, Medium)
	is.True(!first.Overdue)

	second, err := s.Add(Task{Title: "Y", Completed: true, Priority: High})
	is.NoErr(err)
	is.Equal(second.ID, 2)
	is.Equal(second.Status, Completed)
	is.Equal(second.Priority, High)

	// persisted
	reloaded := NewStore(p, WithClock(clock), WithDefaults(nil, nil))
	is.Equal(reloaded.Tasks(), []Task{first, second})
}

func TestStore_AddUsesHighestID(t *testing.T) {
	is := is.New(t)
	p := persist.New(persist.NewMemory())
	s := NewStore(p, WithClock(clock), WithDefaults([]Task{{ID: 7}, {ID: 3}}, nil))

	added, err := s.Add(Task{Title: "next"})
	is.NoErr(err)
	is.Equal(added.ID, 8)
}

func TestStore_Stats(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		is := is.New(t)
		s, _ := newEmpty()
		is.Equal(s.Stats(), TaskStats{})
	})

	t.Run("task due yesterday is overdue", func(t *testing.T) {
		is := is.New(t)
		s, _ := newEmpty()
		_, err := s.Add(Task{Title: "X", DueDate: now.AddDate(0, 0, -1), Completed: false})
		is.NoErr(err)
		is.Equal(s.Stats().Overdue, 1)
	})

	t.Run("mixed", func(t *testing.T) {
		is := is.New(t)
		s, _ := newEmpty()
		for _, task := range []Task{
			{Title: "overdue", DueDate: now.Add(-time.Minute)},
			{Title: "overdue and started", DueDate: now.Add(-time.Hour), Status: InProgress},
			{Title: "started", DueDate: now.Add(time.Hour), Status: InProgress},
			{Title: "no due date"},
			{Title: "done late", DueDate: now.Add(-time.Hour), Completed: true},
			{Title: "done but marked in progress", Completed: true, Status: InProgress},
		} {
			_, err := s.Add(task)
			is.NoErr(err)
		}
		st := s.Stats()
		is.Equal(st, TaskStats{Pending: 2, Completed: 2, Overdue: 2, InProgress: 2, Total: 6})
		is.Equal(st.Pending+st.Overdue+st.Completed, st.Total)
	})
}

func TestStore_UpdateCascadesCompletion(t *testing.T) {
	is := is.New(t)
	s, p := newEmpty()
	a, _ := s.Add(Task{Title: "a"})
	b, _ := s.Add(Task{Title: "b"})
	r1, _ := s.AddReminder(Reminder{TaskID: a.ID, Title: "r1", Status: Today})
	r2, _ := s.AddReminder(Reminder{TaskID: a.ID, Title: "r2"})
	other, _ := s.AddReminder(Reminder{TaskID: b.ID, Title: "other"})

	is.NoErr(s.Update(a.ID, TaskPatch{Completed: ptr(true)}))

	for _, r := range s.RemindersFor(a.ID) {
		is.True(r.TaskCompleted)
		is.Equal(r.Status, ReminderComplete)
	}
	untouched, _ := s.Reminder(other.ID)
	is.True(!untouched.TaskCompleted)
	is.Equal(untouched.Status, Upcoming)

	// the cascade is persisted too
	stored := persist.Load(p, RemindersKey, []Reminder(nil))
	is.Equal(len(stored), 3)
	is.True(stored[0].ID == r1.ID && stored[0].TaskCompleted)
	is.True(stored[1].ID == r2.ID && stored[1].TaskCompleted)

	t.Run("reopening mirrors the flag but keeps the status", func(t *testing.T) {
		is := is.New(t)
		is.NoErr(s.Update(a.ID, TaskPatch{Completed: ptr(false)}))
		for _, r := range s.RemindersFor(a.ID) {
			is.True(!r.TaskCompleted)
			is.Equal(r.Status, ReminderComplete)
		}
	})

	t.Run("other fields do not touch reminders", func(t *testing.T) {
		is := is.New(t)
		before := s.Reminders()
		is.NoErr(s.Update(b.ID, TaskPatch{Title: ptr("renamed"), Category: ptr("Work")}))
		is.Equal(s.Reminders(), before)
		got, ok := s.Task(b.ID)
		is.True(ok)
		is.Equal(got.Title, "renamed")
		is.Equal(got.Category, "Work")
	})
}

func TestStore_UpdateNotFound(t *testing.T) {
	is := is.New(t)
	s, _ := newEmpty()
	is.Equal(s.Update(42, TaskPatch{Title: ptr("nope")}), ErrNotFound)
	_, err := s.Toggle(42)
	is.Equal(err, ErrNotFound)
	is.Equal(s.Delete(42), ErrNotFound)
	is.Equal(s.UpdateReminder(42, ReminderPatch{}), ErrNotFound)
	is.Equal(s.DeleteReminder(42), ErrNotFound)
	_, ok := s.Task(42)
	is.True(!ok)
}

func TestStore_Toggle(t *testing.T) {
	is := is.New(t)
	s, _ := newEmpty()
	task, _ := s.Add(Task{Title: "a"})
	_, _ = s.AddReminder(Reminder{TaskID: task.ID})

	done, err := s.Toggle(task.ID)
	is.NoErr(err)
	is.True(done.Completed)
	is.Equal(done.Status, Completed)
	is.True(s.RemindersFor(task.ID)[0].TaskCompleted)

	undone, err := s.Toggle(task.ID)
	is.NoErr(err)
	is.True(!undone.Completed)
	is.Equal(undone.Status, Pending)
}

func TestStore_DeleteCascades(t *testing.T) {
	is := is.New(t)
	s, p := newEmpty()
	a, _ := s.Add(Task{Title: "a"})
	b, _ := s.Add(Task{Title: "b"})
	_, _ = s.AddReminder(Reminder{TaskID: a.ID})
	_, _ = s.AddReminder(Reminder{TaskID: a.ID})
	kept, _ := s.AddReminder(Reminder{TaskID: b.ID})
	loose, _ := s.AddReminder(Reminder{Title: "standalone"})

	is.NoErr(s.Delete(a.ID))

	is.Equal(len(s.RemindersFor(a.ID)), 0)
	is.Equal(s.Reminders(), []Reminder{kept, loose})
	is.Equal(len(s.Tasks()), 1)

	is.Equal(len(persist.Load(p, TasksKey, []Task(nil))), 1)
	is.Equal(persist.Load(p, RemindersKey, []Reminder(nil)), []Reminder{kept, loose})
}

func TestStore_Reminders(t *testing.T) {
	is := is.New(t)
	s, _ := newEmpty()
	task, _ := s.Add(Task{Title: "a", Completed: true})

	r, err := s.AddReminder(Reminder{TaskID: task.ID, Title: "r"})
	is.NoErr(err)
	is.Equal(r.ID, 1)
	is.Equal(r.Status, Upcoming)
	is.Equal(r.Frequency, Once)
	is.Equal(r.NotificationMethod, NotifyApp)
	is.True(r.TaskCompleted) // starts mirrored from its task

	dangling, err := s.AddReminder(Reminder{TaskID: 99})
	is.NoErr(err)
	is.Equal(dangling.ID, 2)
	is.True(!dangling.TaskCompleted)

	is.NoErr(s.UpdateReminder(r.ID, ReminderPatch{Status: ptr(Missed), Note: ptr("late")}))
	got, _ := s.Reminder(r.ID)
	is.Equal(got.Status, Missed)
	is.Equal(got.Note, "late")

	// no cascade back to tasks
	is.NoErr(s.UpdateReminder(r.ID, ReminderPatch{TaskCompleted: ptr(false)}))
	parent, _ := s.Task(task.ID)
	is.True(parent.Completed)

	is.NoErr(s.DeleteReminder(r.ID))
	is.Equal(len(s.Reminders()), 1)
	_, ok := s.Task(task.ID)
	is.True(ok)
}

func TestStore_ReminderStats(t *testing.T) {
	is := is.New(t)
	s, _ := newEmpty()
	for _, st := range []ReminderStatus{Today, Today, Upcoming, ReminderComplete, Missed} {
		_, err := s.AddReminder(Reminder{Status: st})
		is.NoErr(err)
	}
	is.Equal(s.ReminderStats(), ReminderStats{Total: 5, Today: 2, Upcoming: 1, Completed: 1, Missed: 1})
}

func TestStore_Queries(t *testing.T) {
	is := is.New(t)
	s, _ := newEmpty()
	morning, _ := s.Add(Task{Title: "morning", DueDate: time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)})
	evening, _ := s.Add(Task{Title: "evening", DueDate: time.Date(2026, 10, 17, 22, 0, 0, 0, time.UTC)})
	_, _ = s.Add(Task{Title: "tomorrow", DueDate: time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)})
	_, _ = s.Add(Task{Title: "no date"})
	doneToday, _ := s.Add(Task{Title: "done", DueDate: now.Add(-time.Hour), Completed: true})

	is.Equal(s.Today(), []Task{morning, evening, doneToday})
	is.Equal(s.Overdue(), []Task{morning})

	r1, _ := s.AddReminder(Reminder{TaskID: morning.ID, ReminderTime: now.Add(time.Hour)})
	_, _ = s.AddReminder(Reminder{TaskID: morning.ID, ReminderTime: now.Add(time.Hour), Status: ReminderComplete})
	_, _ = s.AddReminder(Reminder{TaskID: evening.ID, ReminderTime: now.AddDate(0, 0, 1)})
	_, _ = s.AddReminder(Reminder{TaskID: evening.ID})

	is.Equal(s.TodayReminders(), []Reminder{r1})
	is.Equal(len(s.RemindersFor(morning.ID)), 2)
	is.Equal(len(s.RemindersFor(404)), 0)

	// read-only
	is.Equal(s.Today(), []Task{morning, evening, doneToday})
	is.Equal(s.Stats().Total, 5)
}

func TestStore_DefaultsOnCorruptStorage(t *testing.T) {
	is := is.New(t)
	m := persist.NewMemory()
	is.NoErr(m.Set(context.Background(), TasksKey, []byte("{{{ not json")))
	p := persist.New(m)

	s := NewStore(p, WithClock(clock))
	is.Equal(s.Tasks(), DefaultTasks(now))
	is.Equal(s.Reminders(), DefaultReminders(now))
	is.Equal(s.Stats(), TaskStats{Pending: 2, Completed: 1, Overdue: 1, InProgress: 1, Total: 4})
}

func TestStore_DefaultRemindersMirrorTasks(t *testing.T) {
	is := is.New(t)
	tasks := DefaultTasks(now)
	for _, r := range DefaultReminders(now) {
		found := false
		for _, task := range tasks {
			if task.ID == r.TaskID {
				found = true
				is.Equal(r.TaskCompleted, task.Completed)
			}
		}
		is.True(found)
	}
}

func TestStore_Follow(t *testing.T) {
	is := is.New(t)
	s, p := newEmpty()
	reloads := 0
	stop := s.Follow(func() { reloads++ })
	defer stop()

	// a local save does not trigger a reload
	_, err := s.Add(Task{Title: "local"})
	is.NoErr(err)
	is.Equal(reloads, 0)

	// someone else replaced the tasks
	is.NoErr(p.Backend().Set(context.Background(), TasksKey, []byte(`[{"id":5,"title":"remote"}]`)))
	p.Notify(persist.Change{Key: TasksKey, External: true})
	is.Equal(reloads, 1)
	got, ok := s.Task(5)
	is.True(ok)
	is.Equal(got.Title, "remote")

	p.Notify(persist.Change{Key: "goals", External: true})
	is.Equal(reloads, 1)
}

// flakyBackend fails every write once failing is set.
type flakyBackend struct {
	persist.Backend
	failing bool
}

func (b *flakyBackend) Set(ctx context.Context, key string, value []byte) error {
	if b.failing {
		return errors.New("disk full")
	}
	return b.Backend.Set(ctx, key, value)
}

func TestStore_UpdateKeepsCascadeWhenSaveFails(t *testing.T) {
	is := is.New(t)
	backend := &flakyBackend{Backend: persist.NewMemory()}
	s := NewStore(persist.New(backend), WithClock(clock), WithDefaults(nil, nil))
	a, err := s.Add(Task{Title: "a"})
	is.NoErr(err)
	r, err := s.AddReminder(Reminder{TaskID: a.ID, Title: "r"})
	is.NoErr(err)

	backend.failing = true
	err = s.Update(a.ID, TaskPatch{Completed: ptr(true)})
	is.True(err != nil)
	is.True(strings.Contains(err.Error(), "disk full"))

	got, _ := s.Task(a.ID)
	is.True(got.Completed)
	reminder, _ := s.Reminder(r.ID)
	is.True(reminder.TaskCompleted)
	is.Equal(reminder.Status, ReminderComplete)
	is.Equal(s.ReminderStats().Completed, 1)
}

func TestStore_RejectsUnknownValues(t *testing.T) {
	s, _ := newEmpty()
	task, err := s.Add(Task{Title: "a"})
	if err != nil {
		t.Fatal(err)
	}
	reminder, err := s.AddReminder(Reminder{TaskID: task.ID, Title: "r"})
	if err != nil {
		t.Fatal(err)
	}

	tests := map[string]struct {
		do    func() error
		field string
	}{
		"task priority": {
			do:    func() error { _, err := s.Add(Task{Title: "x", Priority: "urgent"}); return err },
			field: "priority",
		},
		"task status": {
			do:    func() error { _, err := s.Add(Task{Title: "x", Status: "whatever"}); return err },
			field: "status",
		},
		"patched task priority": {
			do:    func() error { return s.Update(task.ID, TaskPatch{Priority: ptr(Priority("urgent"))}) },
			field: "priority",
		},
		"patched task status": {
			do:    func() error { return s.Update(task.ID, TaskPatch{Status: ptr(Status("done"))}) },
			field: "status",
		},
		"reminder method": {
			do:    func() error { _, err := s.AddReminder(Reminder{Title: "x", NotificationMethod: "sms"}); return err },
			field: "notificationMethod",
		},
		"reminder frequency": {
			do:    func() error { _, err := s.AddReminder(Reminder{Title: "x", Frequency: "hourly"}); return err },
			field: "frequency",
		},
		"reminder status": {
			do:    func() error { _, err := s.AddReminder(Reminder{Title: "x", Status: "later"}); return err },
			field: "status",
		},
		"patched reminder priority": {
			do:    func() error { return s.UpdateReminder(reminder.ID, ReminderPatch{Priority: ptr(Priority("p0"))}) },
			field: "priority",
		},
		"patched reminder method": {
			do: func() error {
				return s.UpdateReminder(reminder.ID, ReminderPatch{NotificationMethod: ptr(NotificationMethod("sms"))})
			},
			field: "notificationMethod",
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			is := is.New(t)
			err := tc.do()
			is.True(errors.Is(err, check.ErrInvalid))
			var invalid *check.Error
			is.True(errors.As(err, &invalid))
			is.Equal(invalid.Field, tc.field)
		})
	}

	is := is.New(t)
	// nothing was stored or changed
	is.Equal(len(s.Tasks()), 1)
	is.Equal(len(s.Reminders()), 1)
	got, _ := s.Task(task.ID)
	is.Equal(got, task)
	gotReminder, _ := s.Reminder(reminder.ID)
	is.Equal(gotReminder, reminder)
}
