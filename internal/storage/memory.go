package storage

import (
	"context"
	"sync"
)

// MemoryMedium keeps payloads in process memory. Quota, when positive, caps
// the total number of stored bytes the way a browser caps local storage.
type MemoryMedium struct {
	Quota int

	mu     sync.Mutex
	data   map[string][]byte
	closed bool
}

// NewMemoryMedium returns an empty medium with the given byte quota
// (0 means unlimited).
func NewMemoryMedium(quota int) *MemoryMedium {
	return &MemoryMedium{Quota: quota, data: make(map[string][]byte)}
}

func (m *MemoryMedium) Get(_ context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryMedium) Set(_ context.Context, key string, payload []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.Quota > 0 {
		used := len(payload)
		for k, v := range m.data {
			if k != key {
				used += len(v)
			}
		}
		if used > m.Quota {
			return ErrQuotaExceeded
		}
	}
	m.data[key] = append([]byte(nil), payload...)
	return nil
}

func (m *MemoryMedium) Delete(_ context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	delete(m.data, key)
	return nil
}

// Put writes a raw payload, bypassing the quota. Used to seed corrupt or
// foreign data.
func (m *MemoryMedium) Put(key string, payload []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = payload
}

func (m *MemoryMedium) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
