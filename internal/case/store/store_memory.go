package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/tendai-dev/onboarding-kyb-sub006/internal/case/models"
	"github.com/tendai-dev/onboarding-kyb-sub006/pkg/domain"
	"github.com/tendai-dev/onboarding-kyb-sub006/pkg/platform/sentinel"
)

// MemoryStore is an in-memory Store for unit tests and local development.
type MemoryStore struct {
	mu    sync.RWMutex
	cases map[domain.CaseID]*models.Case
}

// NewMemory constructs an empty in-memory case store.
func NewMemory() *MemoryStore {
	return &MemoryStore{cases: make(map[domain.CaseID]*models.Case)}
}

func (s *MemoryStore) Create(_ context.Context, c *models.Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.cases[c.ID]; exists {
		return fmt.Errorf("case %s: %w", c.ID, sentinel.ErrConflict)
	}
	s.cases[c.ID] = copyCase(c)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id domain.CaseID) (*models.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cases[id]
	if !ok {
		return nil, fmt.Errorf("case %s: %w", id, sentinel.ErrNotFound)
	}
	return copyCase(c), nil
}

func (s *MemoryStore) Update(_ context.Context, c *models.Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cases[c.ID]; !ok {
		return fmt.Errorf("case %s: %w", c.ID, sentinel.ErrNotFound)
	}
	s.cases[c.ID] = copyCase(c)
	return nil
}

// Len reports the number of stored cases; test helper.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cases)
}

// copyCase shields stored state from caller mutation. Pending events are
// deliberately not copied: they belong to the in-flight aggregate, not the
// store.
func copyCase(c *models.Case) *models.Case {
	dup := *c
	dup.Metadata = append(models.Metadata(nil), c.Metadata...)
	if c.Business != nil {
		b := *c.Business
		dup.Business = &b
	}
	dup.PullEvents()
	return &dup
}
