package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps entries for the life of the process.
type MemoryStore[T any] struct {
	mu      sync.RWMutex
	entries map[string]T
}

func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{entries: make(map[string]T)}
}

func (s *MemoryStore[T]) Get(_ context.Context, id string) (T, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[id]
	return v, ok, nil
}

func (s *MemoryStore[T]) Put(_ context.Context, id string, v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = v
	return nil
}

func (s *MemoryStore[T]) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

func (s *MemoryStore[T]) Sweep(_ context.Context, drop func(id string, v T) bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, v := range s.entries {
		if drop(id, v) {
			delete(s.entries, id)
			n++
		}
	}
	return n, nil
}

// Len reports how many entries are stored.
func (s *MemoryStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemoryStore[T]) NewID() string {
	return uuid.NewString()
}
