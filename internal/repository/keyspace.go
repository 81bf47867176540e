package repository

import (
	"context"
	"errors"
	"sync"
)

// ErrKeyNotFound is returned by Get when the key holds no value.
var ErrKeyNotFound = errors.New("key not found")

// KeySpace is a durable string key/value space that outlives the process.
type KeySpace interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Delete removes the keys; missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}

type memoryKeySpace struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryKeySpace returns a process-local key space. It does not survive
// restarts and backs the degraded in-memory-only mode.
func NewMemoryKeySpace() KeySpace {
	return &memoryKeySpace{values: make(map[string]string)}
}

func (m *memoryKeySpace) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.values[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return val, nil
}

func (m *memoryKeySpace) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *memoryKeySpace) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func (m *memoryKeySpace) Ping(context.Context) error {
	return nil
}
