package goal

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/td0m/dayplan/pkg/check"
	"github.com/td0m/dayplan/pkg/persist"
	"go.uber.org/zap"
)

const Key = "goals"

type Option func(*Store)

// WithDefaults replaces the built-in goals returned when nothing is stored.
func WithDefaults(goals []Goal) Option {
	return func(s *Store) { s.defaults = func() []Goal { return goals } }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// Store keeps goals in a single persisted collection and tells its
// subscribers about every write. Reads always go to the persist store, so
// several Stores over the same backend stay consistent.
type Store struct {
	persist  *persist.Store
	defaults func() []Goal
	now      func() time.Time
	log      *zap.Logger

	mu sync.Mutex // serializes read-modify-write cycles

	subMu  sync.Mutex
	nextID int
	subs   map[int]func([]Goal)
}

func NewStore(p *persist.Store, opts ...Option) *Store {
	s := &Store{
		persist:  p,
		defaults: Defaults,
		now:      time.Now,
		log:      zap.NewNop(),
		subs:     map[int]func([]Goal){},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Goals returns the stored goals, or the defaults when nothing usable is
// stored.
func (s *Store) Goals() []Goal {
	goals := persist.Load[[]Goal](s.persist, Key, nil)
	if goals == nil {
		return s.defaults()
	}
	return goals
}

// Save replaces the whole collection and notifies subscribers.
func (s *Store) Save(goals []Goal) error {
	s.mu.Lock()
	err := s.save(goals)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.broadcast(goals)
	return nil
}

func (s *Store) save(goals []Goal) error {
	if goals == nil {
		goals = []Goal{}
	}
	if err := s.persist.Save(Key, goals); err != nil {
		return fmt.Errorf("saving goals: %w", err)
	}
	return nil
}

// Create fills in defaults, gives g the next id and puts it first.
func (s *Store) Create(g Goal) (Goal, error) {
	g = withDefaults(g)
	if err := check.Struct(g); err != nil {
		return Goal{}, err
	}

	s.mu.Lock()
	goals := s.Goals()
	g.ID = 1
	for _, existing := range goals {
		if existing.ID >= g.ID {
			g.ID = existing.ID + 1
		}
	}
	goals = append([]Goal{g}, goals...)
	err := s.save(goals)
	s.mu.Unlock()
	if err != nil {
		return Goal{}, err
	}

	s.broadcast(goals)
	return g, nil
}

// Update merges p into the goal with the given id. It returns false, and
// writes nothing, when there is no such goal.
func (s *Store) Update(id int, p Patch) (Goal, bool, error) {
	if p.Priority != nil {
		if err := check.Struct(Goal{Priority: *p.Priority}, "Priority"); err != nil {
			return Goal{}, false, err
		}
	}
	return s.modify(id, p.apply)
}

// AddMilestone appends a milestone and makes it the current one.
func (s *Store) AddMilestone(id int, title string) (Goal, bool, error) {
	at := s.now()
	return s.modify(id, func(g *Goal) {
		g.Milestones = append(g.Milestones, Milestone{Title: title, AchievedAt: at})
		g.Milestone = title
	})
}

func (s *Store) modify(id int, change func(*Goal)) (Goal, bool, error) {
	s.mu.Lock()
	goals := s.Goals()
	i := -1
	for j := range goals {
		if goals[j].ID == id {
			i = j
			break
		}
	}
	if i < 0 {
		s.mu.Unlock()
		return Goal{}, false, nil
	}
	change(&goals[i])
	updated := goals[i]
	err := s.save(goals)
	s.mu.Unlock()
	if err != nil {
		return Goal{}, true, err
	}

	s.broadcast(goals)
	return updated, true, nil
}

// FindByTitle looks up a goal by title, ignoring case and surrounding
// whitespace.
func (s *Store) FindByTitle(title string) (Goal, bool) {
	want := strings.ToLower(strings.TrimSpace(title))
	for _, g := range s.Goals() {
		if strings.ToLower(strings.TrimSpace(g.Title)) == want {
			return g, true
		}
	}
	return Goal{}, false
}

// CompleteByTitle marks the goal with the given title as done.
func (s *Store) CompleteByTitle(title string) (Goal, bool, error) {
	g, ok := s.FindByTitle(title)
	if !ok {
		return Goal{}, false, nil
	}
	done, progress := true, 100
	return s.Update(g.ID, Patch{Completed: &done, Progress: &progress})
}

// Follow calls fn with the stored goals whenever another process changes
// them. The returned function stops following.
func (s *Store) Follow(fn func([]Goal)) (stop func()) {
	return s.persist.Subscribe(func(c persist.Change) {
		if !c.External || c.Key != Key {
			return
		}
		s.log.Debug("goals changed externally")
		fn(s.Goals())
	})
}

// Subscribe registers fn to receive the full collection after every write.
func (s *Store) Subscribe(fn func([]Goal)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) broadcast(goals []Goal) {
	s.subMu.Lock()
	fns := make([]func([]Goal), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	s.log.Debug("broadcasting goals", zap.Int("goals", len(goals)), zap.Int("subscribers", len(fns)))
	for _, fn := range fns {
		fn(copyGoals(goals))
	}
}

func copyGoals(goals []Goal) []Goal {
	out := make([]Goal, len(goals))
	for i, g := range goals {
		g.Milestones = append([]Milestone{}, g.Milestones...)
		out[i] = g
	}
	return out
}
