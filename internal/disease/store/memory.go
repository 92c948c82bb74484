// Package store provides persistence for the disease lookup table.
package store

import (
	"context"
	"strings"
	"sync"

	"bloodbank/internal/disease"
	id "bloodbank/pkg/domain"
	"bloodbank/pkg/platform/sentinel"
)

type MemoryStore struct {
	mu       sync.RWMutex
	diseases map[id.DiseaseID]disease.Disease
	byName   map[string]id.DiseaseID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		diseases: make(map[id.DiseaseID]disease.Disease),
		byName:   make(map[string]id.DiseaseID),
	}
}

func (s *MemoryStore) Create(_ context.Context, d disease.Disease) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(d.Name)
	if _, exists := s.byName[key]; exists {
		return sentinel.ErrConflict
	}
	s.diseases[d.ID] = d
	s.byName[key] = d.ID
	return nil
}

func (s *MemoryStore) Get(_ context.Context, diseaseID id.DiseaseID) (*disease.Disease, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.diseases[diseaseID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &d, nil
}

func (s *MemoryStore) List(_ context.Context) ([]disease.Disease, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]disease.Disease, 0, len(s.diseases))
	for _, d := range s.diseases {
		out = append(out, d)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Name < out[j-1].Name; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}

func (s *MemoryStore) Update(_ context.Context, d disease.Disease) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.diseases[d.ID]
	if !ok {
		return sentinel.ErrNotFound
	}

	newKey := strings.ToLower(d.Name)
	oldKey := strings.ToLower(current.Name)
	if newKey != oldKey {
		if _, exists := s.byName[newKey]; exists {
			return sentinel.ErrConflict
		}
		delete(s.byName, oldKey)
		s.byName[newKey] = d.ID
	}
	s.diseases[d.ID] = d
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, diseaseID id.DiseaseID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.diseases[diseaseID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byName, strings.ToLower(d.Name))
	delete(s.diseases, diseaseID)
	return nil
}
