// Package store provides persistence for donation registrations.
package store

import (
	"context"
	"sync"
	"time"

	"bloodbank/internal/registration"
	id "bloodbank/pkg/domain"
	"bloodbank/pkg/platform/sentinel"
)

type MemoryStore struct {
	mu            sync.RWMutex
	registrations map[id.RegistrationID]registration.Registration
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{registrations: make(map[id.RegistrationID]registration.Registration)}
}

func (s *MemoryStore) Create(_ context.Context, reg registration.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registrations[reg.ID] = reg
	return nil
}

func (s *MemoryStore) Get(_ context.Context, regID id.RegistrationID) (*registration.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reg, ok := s.registrations[regID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &reg, nil
}

func (s *MemoryStore) List(_ context.Context) ([]registration.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]registration.Registration, 0, len(s.registrations))
	for _, reg := range s.registrations {
		out = append(out, reg)
	}
	sortByCreated(out)
	return out, nil
}

func (s *MemoryStore) ListByDonor(_ context.Context, donorID id.UserID) ([]registration.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []registration.Registration
	for _, reg := range s.registrations {
		if reg.DonorID == donorID {
			out = append(out, reg)
		}
	}
	sortByCreated(out)
	return out, nil
}

// UpdateStatus moves a registration from one status to another. The check and
// the write are atomic: a concurrent transition loses with ErrInvalidState.
func (s *MemoryStore) UpdateStatus(_ context.Context, regID id.RegistrationID, from, to registration.Status, by *id.UserID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, ok := s.registrations[regID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if reg.Status != from {
		return sentinel.ErrInvalidState
	}
	reg.Status = to
	reg.UpdatedAt = at
	if to == registration.StatusConfirmed {
		reg.ConfirmedBy = by
		confirmedAt := at
		reg.ConfirmedAt = &confirmedAt
	}
	s.registrations[regID] = reg
	return nil
}

func sortByCreated(regs []registration.Registration) {
	for i := 1; i < len(regs); i++ {
		for j := i; j > 0 && regs[j].CreatedAt.Before(regs[j-1].CreatedAt); j-- {
			regs[j], regs[j-1] = regs[j-1], regs[j]
		}
	}
}
