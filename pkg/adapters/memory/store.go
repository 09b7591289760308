// Package memory provides an in-memory ContextStore, useful for tests
// and embedded single-process deployments.
package memory

import (
	"context"
	"sync"

	"github.com/aretw0/parley/pkg/domain"
)

// Store implements ports.ContextStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Context
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Context),
	}
}

// Set persists a deep copy, so later mutation of the caller's context
// cannot leak into the store.
func (s *Store) Set(ctx context.Context, id string, dc *domain.Context) error {
	copied := dc.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[id] = copied
	return nil
}

// Get retrieves a deep copy of the stored context.
func (s *Store) Get(ctx context.Context, id string) (*domain.Context, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dc, ok := s.data[id]
	if !ok {
		return nil, domain.ErrContextNotFound
	}
	return dc.Clone(), nil
}

// Delete removes the context.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// Contains reports whether the id is stored.
func (s *Store) Contains(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[id]
	return ok, nil
}

// Len returns the number of stored contexts.
func (s *Store) Len(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data), nil
}

// Clear removes every stored context.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]*domain.Context)
	return nil
}
