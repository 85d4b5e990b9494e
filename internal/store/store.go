// Package store is the key-value boundary where encoded content records are
// persisted. Every backend is last-write-wins.
package store

import (
	"context"
	"sync"
	"time"
)

const opTimeout = 5 * time.Second

// Store is a synchronous text key-value store.
type Store interface {
	// Get returns the value under key. ok is false when nothing is stored.
	Get(key string) (value string, ok bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
	HealthCheck(ctx context.Context) error
	Close() error
}

// MemoryStore is an in-memory Store for development and tests.
type MemoryStore struct {
	values map[string]string
	mu     sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *MemoryStore) HealthCheck(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

// Len returns the number of stored keys.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
