package persist

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const fileExt = ".json"

// Files stores every key in its own JSON file inside a directory.
type Files struct {
	dir string

	mu sync.Mutex
	// last holds what this process wrote, so the watcher can tell our own
	// writes apart from another process's.
	last map[string][]byte
}

// InFiles returns a backend rooted at dir. The directory is created on the
// first write.
func InFiles(dir string) *Files {
	return &Files{dir: dir, last: map[string][]byte{}}
}

func (f *Files) Dir() string {
	return f.dir
}

func (f *Files) path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key)+fileExt)
}

func keyFromPath(p string) (string, bool) {
	base := filepath.Base(p)
	if !strings.HasSuffix(base, fileExt) || strings.HasPrefix(base, ".") {
		return "", false
	}
	k, err := url.PathUnescape(strings.TrimSuffix(base, fileExt))
	if err != nil {
		return "", false
	}
	return k, true
}

func (f *Files) Get(_ context.Context, key string) ([]byte, error) {
	bs, err := os.ReadFile(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotExist
	}
	return bs, err
}

// Set writes through a temporary file and a rename so readers never see a
// half-written value.
func (f *Files) Set(_ context.Context, key string, value []byte) error {
	if err := os.MkdirAll(f.dir, 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Rename(tmp.Name(), f.path(key)); err != nil {
		return err
	}
	f.last[key] = append([]byte(nil), value...)
	return nil
}

func (f *Files) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		if err := os.Remove(f.path(k)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		f.last[k] = nil
	}
	return nil
}

// ownWrite reports whether the current content of key is what this process
// last wrote. A missing file matches a delete.
func (f *Files) ownWrite(key string) bool {
	bs, err := os.ReadFile(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		bs = nil
	} else if err != nil {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	last, seen := f.last[key]
	if seen && bytes.Equal(last, bs) {
		return true
	}
	f.last[key] = bs
	return false
}

// Watch reports changes made to the directory by other processes as
// external changes on s. Bursts of events on the same file are collapsed
// into one notification after settle. Watch returns once the watcher is
// running; it stops when ctx is done.
func (f *Files) Watch(ctx context.Context, s *Store, settle time.Duration) error {
	if err := os.MkdirAll(f.dir, 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := w.Add(f.dir); err != nil {
		w.Close()
		return fmt.Errorf("watching %s: %w", f.dir, err)
	}

	go func() {
		defer w.Close()

		var mu sync.Mutex
		timers := map[string]*time.Timer{}
		fire := func(key string) {
			mu.Lock()
			delete(timers, key)
			mu.Unlock()
			if f.ownWrite(key) {
				return
			}
			if k, ok := s.Key(key); ok {
				s.Notify(Change{Key: k, External: true})
			}
		}

		for {
			select {
			case <-ctx.Done():
				mu.Lock()
				for _, t := range timers {
					t.Stop()
				}
				mu.Unlock()
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				key, ok := keyFromPath(ev.Name)
				if !ok {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
					!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
					continue
				}
				mu.Lock()
				if t, ok := timers[key]; ok {
					t.Reset(settle)
				} else {
					timers[key] = time.AfterFunc(settle, func() { fire(key) })
				}
				mu.Unlock()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.log.Warn("file watcher error", zap.String("dir", f.dir), zap.Error(err))
			}
		}
	}()
	return nil
}
