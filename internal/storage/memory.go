// internal/storage/memory.go
package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps both tiers in process memory. It is the default
// backend and the one tests use.
type MemoryStore struct {
	mu    sync.RWMutex
	tiers map[Scope]map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		tiers: map[Scope]map[string][]byte{
			ScopeHandoff: {},
			ScopeSession: {},
		},
	}
}

func (s *MemoryStore) Peek(_ context.Context, scope Scope, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.tiers[scope][key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (s *MemoryStore) TakeOnce(ctx context.Context, scope Scope, key string) ([]byte, error) {
	if scope != ScopeHandoff {
		return s.Peek(ctx, scope, key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.tiers[scope][key]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.tiers[scope], key)
	return value, nil
}

func (s *MemoryStore) Put(_ context.Context, scope Scope, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	s.tiers[scope][key] = stored
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, scope Scope, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tiers[scope], key)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
