package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// FileMedium stores each collection as <dir>/<key>.json. Writes go through a
// temp file and a rename so readers never observe a torn payload. Other
// processes sharing the directory are observed with fsnotify.
type FileMedium struct {
	dir string

	mu      sync.Mutex
	own     map[string][]byte // last payload this medium wrote per key, nil after a delete
	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewFileMedium creates dir if needed.
func NewFileMedium(dir string) (*FileMedium, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileMedium{
		dir:  dir,
		own:  make(map[string][]byte),
		done: make(chan struct{}),
	}, nil
}

func (m *FileMedium) path(key string) string {
	return filepath.Join(m.dir, key+".json")
}

func (m *FileMedium) Get(_ context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(m.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

func (m *FileMedium) Set(_ context.Context, key string, payload []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(m.dir, "."+key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	// Record before the rename so the watcher never mistakes it for a
	// foreign write.
	m.mu.Lock()
	prev, hadPrev := m.own[key]
	m.own[key] = append([]byte(nil), payload...)
	m.mu.Unlock()

	if err := os.Rename(tmp.Name(), m.path(key)); err != nil {
		m.mu.Lock()
		if hadPrev {
			m.own[key] = prev
		} else {
			delete(m.own, key)
		}
		m.mu.Unlock()
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

func (m *FileMedium) Delete(_ context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	m.own[key] = nil
	m.mu.Unlock()

	err := os.Remove(m.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Watch starts delivering keys changed by other processes. It returns once
// the directory is being watched; delivery stops when ctx is done or the
// medium is closed.
func (m *FileMedium) Watch(ctx context.Context, notify func(key string)) error {
	m.mu.Lock()
	if m.watcher != nil {
		m.mu.Unlock()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if err := watcher.Add(m.dir); err != nil {
		m.mu.Unlock()
		_ = watcher.Close()
		return err
	}
	m.watcher = watcher
	m.mu.Unlock()

	m.wg.Add(1)
	go m.watchLoop(ctx, watcher, notify)
	return nil
}

func (m *FileMedium) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, notify func(key string)) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if key, foreign := m.foreignChange(event); foreign {
				notify(key)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("store watcher error", "dir", m.dir, "err", err)
		}
	}
}

// foreignChange reports whether event is a change to a collection file that
// this medium did not make itself.
func (m *FileMedium) foreignChange(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return "", false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || !strings.HasSuffix(base, ".json") {
		return "", false
	}
	key := strings.TrimSuffix(base, ".json")
	if validateKey(key) != nil {
		return "", false
	}

	current, err := os.ReadFile(m.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if own, ok := m.own[key]; ok && bytes.Equal(own, current) {
		return "", false
	}
	return key, true
}

func (m *FileMedium) Close() error {
	m.mu.Lock()
	watcher := m.watcher
	m.watcher = nil
	m.mu.Unlock()

	select {
	case <-m.done:
	default:
		close(m.done)
	}
	if watcher == nil {
		return nil
	}
	err := watcher.Close()
	m.wg.Wait()
	return err
}
