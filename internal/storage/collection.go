package storage

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/khrees2412/jobdeck/internal/syncbus"
)

// Record is an element of a collection, identified by a stable id.
type Record interface {
	RecordID() string
}

// DuplicatePolicy decides what UpsertFront does with an id that already
// exists.
type DuplicatePolicy int

const (
	// KeepExisting leaves the stored record untouched.
	KeepExisting DuplicatePolicy = iota
	// ReplaceInPlace overwrites the stored record without moving it.
	ReplaceInPlace
)

// CollectionConfig describes one collection.
type CollectionConfig[T Record] struct {
	Key    string
	Policy DuplicatePolicy
	// Normalize validates a decoded record and fills defaults. Records it
	// rejects are dropped when reading.
	Normalize func(T) (T, bool)
}

// Collection is an ordered, id-unique list of records persisted under one
// key of a Medium. The most recently created record comes first.
//
// List never fails: a missing or malformed payload reads as an empty list, and
// so does a payload the medium could not read. A mutation whose read fails is
// dropped without writing or publishing. When the medium rejects a write, the
// mutated list is kept as a session snapshot and served until the next
// successful write or the next external change to the key.
type Collection[T Record] struct {
	cfg    CollectionConfig[T]
	topic  syncbus.Topic
	medium Medium
	bus    *syncbus.Bus

	mu          sync.Mutex
	session     []T
	hasSession  bool
	unsubscribe syncbus.Unsubscribe
}

// NewCollection binds a collection to its medium and bus. Close releases the
// bus subscription.
func NewCollection[T Record](medium Medium, bus *syncbus.Bus, cfg CollectionConfig[T]) *Collection[T] {
	c := &Collection[T]{
		cfg:    cfg,
		topic:  syncbus.TopicFor(cfg.Key),
		medium: medium,
		bus:    bus,
	}
	c.unsubscribe = bus.SubscribeExternal(func(key string) {
		if key == cfg.Key {
			c.dropSession()
		}
	})
	return c
}

// Key is the durable key of the collection.
func (c *Collection[T]) Key() string { return c.cfg.Key }

// Topic is published after every mutation.
func (c *Collection[T]) Topic() syncbus.Topic { return c.topic }

// List returns a copy of the records, most recent first.
func (c *Collection[T]) List(ctx context.Context) []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	list, err := c.load(ctx)
	if err != nil {
		slog.Warn("read collection failed", "key", c.cfg.Key, "err", err)
		return nil
	}
	return list
}

// Contains reports whether a record with id exists.
func (c *Collection[T]) Contains(ctx context.Context, id string) bool {
	_, ok := c.Get(ctx, id)
	return ok
}

// Get returns the record with id.
func (c *Collection[T]) Get(ctx context.Context, id string) (T, bool) {
	for _, r := range c.List(ctx) {
		if r.RecordID() == id {
			return r, true
		}
	}
	var zero T
	return zero, false
}

// UpsertFront inserts rec at the front when its id is new. An existing id is
// handled according to the collection's DuplicatePolicy. It reports whether
// the collection changed.
func (c *Collection[T]) UpsertFront(ctx context.Context, rec T) bool {
	return c.mutate(ctx, func(list []T) ([]T, bool) {
		if i := indexOf(list, rec.RecordID()); i >= 0 {
			if c.cfg.Policy == KeepExisting {
				return list, false
			}
			list[i] = rec
			return list, true
		}
		return prepend(list, rec), true
	})
}

// Toggle removes the record with rec's id when present and otherwise inserts
// rec at the front. It reports whether the record is present afterwards, or
// false when the toggle was dropped because the list could not be read.
func (c *Collection[T]) Toggle(ctx context.Context, rec T) bool {
	present := false
	c.mutate(ctx, func(list []T) ([]T, bool) {
		if i := indexOf(list, rec.RecordID()); i >= 0 {
			return removeAt(list, i), true
		}
		present = true
		return prepend(list, rec), true
	})
	return present
}

// Remove deletes the record with id. It reports whether one was removed.
func (c *Collection[T]) Remove(ctx context.Context, id string) bool {
	return c.mutate(ctx, func(list []T) ([]T, bool) {
		i := indexOf(list, id)
		if i < 0 {
			return list, false
		}
		return removeAt(list, i), true
	})
}

// Update replaces the record with id by fn(record), keeping its position.
// fn must not change the id.
func (c *Collection[T]) Update(ctx context.Context, id string, fn func(T) T) bool {
	return c.mutate(ctx, func(list []T) ([]T, bool) {
		i := indexOf(list, id)
		if i < 0 {
			return list, false
		}
		updated := fn(list[i])
		if updated.RecordID() != id {
			return list, false
		}
		list[i] = updated
		return list, true
	})
}

// Clear removes every record.
func (c *Collection[T]) Clear(ctx context.Context) bool {
	return c.mutate(ctx, func(list []T) ([]T, bool) {
		return nil, len(list) > 0
	})
}

// Close stops listening for external changes.
func (c *Collection[T]) Close() {
	c.unsubscribe()
}

// mutate runs one read-modify-write cycle under the lock and publishes the
// collection topic once the write has been attempted. Nothing is written when
// the current list cannot be read.
func (c *Collection[T]) mutate(ctx context.Context, fn func([]T) ([]T, bool)) bool {
	c.mu.Lock()
	current, err := c.load(ctx)
	if err != nil {
		c.mu.Unlock()
		slog.Warn("read collection failed, dropping mutation", "key", c.cfg.Key, "err", err)
		return false
	}
	list, changed := fn(current)
	if changed {
		c.store(ctx, list)
	}
	c.mu.Unlock()

	if changed {
		c.bus.Publish(c.topic)
	}
	return changed
}

func (c *Collection[T]) load(ctx context.Context) ([]T, error) {
	if c.hasSession {
		return append([]T(nil), c.session...), nil
	}
	payload, err := c.medium.Get(ctx, c.cfg.Key)
	if err != nil {
		return nil, err
	}
	return Decode(payload, c.cfg.Normalize), nil
}

func (c *Collection[T]) store(ctx context.Context, list []T) {
	var err error
	if len(list) == 0 {
		err = c.medium.Delete(ctx, c.cfg.Key)
	} else {
		var payload []byte
		payload, err = json.Marshal(list)
		if err == nil {
			err = c.medium.Set(ctx, c.cfg.Key, payload)
		}
	}
	if err != nil {
		slog.Warn("write collection failed, keeping session copy", "key", c.cfg.Key, "err", err)
		c.session = append([]T(nil), list...)
		c.hasSession = true
		return
	}
	c.session = nil
	c.hasSession = false
}

func (c *Collection[T]) dropSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = nil
	c.hasSession = false
}

// Decode parses a durable payload into a validated record list. Anything that
// is not a JSON array decodes to nil. Elements that do not decode into T or
// that normalize rejects are dropped, and only the first record for each id is
// kept.
func Decode[T Record](payload []byte, normalize func(T) (T, bool)) []T {
	if len(payload) == 0 {
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil
	}

	out := make([]T, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, item := range raw {
		var rec T
		if err := json.Unmarshal(item, &rec); err != nil {
			continue
		}
		if normalize != nil {
			var ok bool
			if rec, ok = normalize(rec); !ok {
				continue
			}
		}
		id := rec.RecordID()
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, rec)
	}
	return out
}

func indexOf[T Record](list []T, id string) int {
	for i, r := range list {
		if r.RecordID() == id {
			return i
		}
	}
	return -1
}

func prepend[T any](list []T, rec T) []T {
	out := make([]T, 0, len(list)+1)
	out = append(out, rec)
	return append(out, list...)
}

func removeAt[T any](list []T, i int) []T {
	out := make([]T, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...)
}
