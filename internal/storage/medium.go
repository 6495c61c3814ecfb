// Package storage holds the durable record collections (saved jobs, applied
// jobs) and the key-value media they are persisted to.
package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrQuotaExceeded is returned by a medium that has no room for a write.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	// ErrInvalidKey is returned for keys that are not safe collection names.
	ErrInvalidKey = errors.New("invalid storage key")
	// ErrClosed is returned after a medium has been closed.
	ErrClosed = errors.New("storage medium closed")
)

// Medium is a durable string-keyed store of opaque payloads. It offers no
// transactions; callers serialise their own read-modify-write cycles.
type Medium interface {
	// Get returns the payload stored under key, or nil when there is none.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, payload []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Watcher is implemented by media that can observe writes made by other
// processes. notify receives the changed key and is never called for writes
// made through the same Medium value.
type Watcher interface {
	Watch(ctx context.Context, notify func(key string)) error
}

var keyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

func validateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
