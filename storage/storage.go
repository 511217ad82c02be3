// Package storage provides durable key/value backends for client state.
package storage

import (
	"context"
	"errors"
	"sync"
)

// Store is a synchronous string key/value store. Get reports false when the
// key has never been set or was removed.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*FileStore)(nil)
	_ Store = (*S3Store)(nil)
	_ Store = (*RedisStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)

// MemoryStore is an in-memory Store, mostly useful in tests.
type MemoryStore struct {
	mu       sync.RWMutex
	values   map[string]string
	err      error
	writeErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// NewMemoryStoreWithError returns a store whose every call fails.
func NewMemoryStoreWithError() *MemoryStore {
	return &MemoryStore{values: make(map[string]string), err: errors.New("store unavailable")}
}

func (m *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return "", false, m.err
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.writeFailure(); err != nil {
		return err
	}
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.writeFailure(); err != nil {
		return err
	}
	delete(m.values, key)
	return nil
}

// FailWrites makes subsequent Set and Remove calls fail with err while reads keep working.
func (m *MemoryStore) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

func (m *MemoryStore) writeFailure() error {
	if m.err != nil {
		return m.err
	}
	return m.writeErr
}
