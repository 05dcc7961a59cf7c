package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/td0m/dayplan/pkg/persist"
	"go.uber.org/zap"
)

const (
	UserKey = "user"
	FlagKey = "isAuthenticated"
)

var ErrNotAuthenticated = errors.New("not authenticated")

type State int

const (
	// Pending means the stored session has not been restored yet.
	Pending State = iota
	Anonymous
	Authenticated
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithIDs replaces the generator used for users logging in without an id.
func WithIDs(next func() string) Option {
	return func(m *Manager) { m.newID = next }
}

// Manager holds the single-user session.
//
// A new Manager is Pending until it has restored the stored session, which
// happens on Start's goroutine or on the first call that needs the session,
// whichever comes first.
type Manager struct {
	persist *persist.Store
	now     func() time.Time
	newID   func() string
	log     *zap.Logger

	once  sync.Once
	ready chan struct{}

	mu   sync.RWMutex
	user *User
}

func NewManager(p *persist.Store, opts ...Option) *Manager {
	m := &Manager{
		persist: p,
		now:     time.Now,
		newID:   uuid.NewString,
		log:     zap.NewNop(),
		ready:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start restores the stored session in the background.
func (m *Manager) Start() {
	go m.restore()
}

// Ready is closed once the stored session has been restored.
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

func (m *Manager) Loading() bool {
	select {
	case <-m.ready:
		return false
	default:
		return true
	}
}

// Wait blocks until the manager is ready or ctx is done.
func (m *Manager) Wait(ctx context.Context) error {
	select {
	case <-m.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) restore() {
	m.once.Do(func() {
		defer close(m.ready)

		flag := persist.Load(m.persist, FlagKey, false)
		u := persist.Load[*User](m.persist, UserKey, nil)
		switch {
		case u == nil && !flag && !m.persist.Exists(UserKey):
			return
		case u == nil || u.ID == "":
			m.log.Warn("discarding unreadable session")
		case !flag:
			m.log.Warn("discarding session without authentication flag", zap.String("user", u.ID))
		default:
			m.mu.Lock()
			m.user = u
			m.mu.Unlock()
			m.log.Debug("session restored", zap.String("user", u.ID))
			return
		}
		if err := m.persist.Remove(UserKey, FlagKey); err != nil {
			m.log.Warn("removing session keys", zap.Error(err))
		}
	})
}

// State never blocks; it reports Pending until the session is restored.
func (m *Manager) State() State {
	if m.Loading() {
		return Pending
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return Anonymous
	}
	return Authenticated
}

func (m *Manager) Current() (User, bool) {
	m.restore()
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return User{}, false
	}
	return *m.user, true
}

// Login starts a session for u. Missing fields are filled in: a fresh id, a
// username from the email address, the username as name and the Member role.
func (m *Manager) Login(u User) (User, error) {
	m.restore()

	now := m.now()
	if u.ID == "" {
		u.ID = m.newID()
	}
	if u.Username == "" {
		u.Username = usernameFrom(u.Email)
	}
	if u.Name == "" {
		u.Name = u.Username
	}
	if u.Role == "" {
		u.Role = Member
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.LastLogin = now

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.save(u); err != nil {
		return User{}, err
	}
	m.user = &u
	m.log.Info("logged in", zap.String("user", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}

// DemoLogin logs in as the built-in administrator demo-123.
func (m *Manager) DemoLogin() (User, error) {
	return m.Login(demoUser())
}

// Logout ends the session and removes it from storage.
func (m *Manager) Logout() error {
	m.restore()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = nil
	if err := m.persist.Remove(UserKey, FlagKey); err != nil {
		return fmt.Errorf("removing session: %w", err)
	}
	m.log.Info("logged out")
	return nil
}

func (m *Manager) UpdateProfile(p ProfilePatch) (User, error) {
	m.restore()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return User{}, ErrNotAuthenticated
	}
	u := *m.user
	p.apply(&u)
	u.UpdatedAt = m.now()
	if err := m.save(u); err != nil {
		return User{}, err
	}
	m.user = &u
	return u, nil
}

func (m *Manager) save(u User) error {
	if err := m.persist.Save(UserKey, u); err != nil {
		return fmt.Errorf("saving user: %w", err)
	}
	if err := m.persist.Save(FlagKey, true); err != nil {
		return fmt.Errorf("saving authentication flag: %w", err)
	}
	return nil
}
