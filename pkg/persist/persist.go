package persist

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrNotExist is returned by a Backend when a key has never been written
// or has been removed.
var ErrNotExist = errors.New("key does not exist")

// Backend is a byte-level key-value store.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}

// Change describes a write or removal of a key.
// External is set when the change was made by another process.
type Change struct {
	Key      string
	External bool
}

type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithNamespace prefixes every key before it reaches the backend.
func WithNamespace(ns string) Option {
	return func(s *Store) { s.namespace = ns }
}

// WithTimeout bounds every backend call.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) { s.timeout = d }
}

// Store serializes values as JSON on top of a Backend.
// Writes overwrite the whole value, the last writer wins.
type Store struct {
	backend   Backend
	log       *zap.Logger
	namespace string
	timeout   time.Duration

	mu     sync.Mutex
	nextID int
	subs   map[int]func(Change)
}

func New(b Backend, opts ...Option) *Store {
	s := &Store{
		backend: b,
		log:     zap.NewNop(),
		timeout: 5 * time.Second,
		subs:    map[int]func(Change){},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backend returns the underlying backend.
func (s *Store) Backend() Backend {
	return s.backend
}

func (s *Store) key(k string) string {
	return s.namespace + k
}

// Key strips the namespace from a backend key.
// The second return value is false for keys outside the namespace.
func (s *Store) Key(backendKey string) (string, bool) {
	if len(backendKey) < len(s.namespace) || backendKey[:len(s.namespace)] != s.namespace {
		return "", false
	}
	return backendKey[len(s.namespace):], true
}

func (s *Store) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// Load decodes the value stored under key.
// Absent keys, backend failures and malformed JSON all return def; only the
// last two are logged.
func Load[T any](s *Store, key string, def T) T {
	ctx, cancel := s.ctx()
	defer cancel()

	bs, err := s.backend.Get(ctx, s.key(key))
	if errors.Is(err, ErrNotExist) {
		return def
	}
	if err != nil {
		s.log.Warn("failed to read key, using default", zap.String("key", key), zap.Error(err))
		return def
	}
	var out T
	if err := json.Unmarshal(bs, &out); err != nil {
		s.log.Warn("malformed value, using default", zap.String("key", key), zap.Error(err))
		return def
	}
	return out
}

// Exists reports whether key holds a value.
func (s *Store) Exists(key string) bool {
	ctx, cancel := s.ctx()
	defer cancel()
	_, err := s.backend.Get(ctx, s.key(key))
	return err == nil
}

// Save overwrites the value stored under key.
func (s *Store) Save(key string, v any) error {
	bs, err := json.Marshal(v)
	if err != nil {
		return err
	}
	ctx, cancel := s.ctx()
	defer cancel()
	if err := s.backend.Set(ctx, s.key(key), bs); err != nil {
		return err
	}
	s.Notify(Change{Key: key})
	return nil
}

// Remove deletes keys. Missing keys are not an error.
func (s *Store) Remove(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	ctx, cancel := s.ctx()
	defer cancel()
	if err := s.backend.Delete(ctx, full...); err != nil {
		return err
	}
	for _, k := range keys {
		s.Notify(Change{Key: k})
	}
	return nil
}

// Subscribe registers fn for every change. Callbacks run synchronously on the
// goroutine that made the change.
func (s *Store) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Notify delivers c to every subscriber.
func (s *Store) Notify(c Change) {
	s.mu.Lock()
	fns := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}
