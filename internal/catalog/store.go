package catalog

import (
	"sync"

	"richrain/internal/game"
)

// Store holds the active catalog for a process. Matches read from it once
// at start; it may be swapped between matches.
type Store struct {
	mu  sync.RWMutex
	cat *Catalog
}

func NewStore(c *Catalog) *Store {
	return &Store{cat: c}
}

// Catalog returns the active catalog. Callers must not modify it.
func (s *Store) Catalog() *Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cat
}

// Replace swaps in a new catalog. Running matches keep their own copy.
func (s *Store) Replace(c *Catalog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cat = c
}

// Setup returns a fresh match setup from the active catalog.
func (s *Store) Setup(rounds int) game.Setup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cat.Setup(rounds)
}

// Pacing returns the active presentation pacing.
func (s *Store) Pacing() Pacing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cat.Pacing
}
