// Package store persists user accounts.
package store

import (
	"context"
	"strings"
	"sync"

	"bloodbank/internal/user"
	id "bloodbank/pkg/domain"
	"bloodbank/pkg/platform/sentinel"
)

type MemoryStore struct {
	mu      sync.RWMutex
	users   map[id.UserID]user.User
	byEmail map[string]id.UserID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[id.UserID]user.User),
		byEmail: make(map[string]id.UserID),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *MemoryStore) Create(_ context.Context, u user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := normalizeEmail(u.Email)
	if _, exists := s.byEmail[key]; exists {
		return sentinel.ErrConflict
	}
	s.users[u.ID] = u
	s.byEmail[key] = u.ID
	return nil
}

func (s *MemoryStore) Get(_ context.Context, userID id.UserID) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) GetByEmail(_ context.Context, email string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userID, ok := s.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	u := s.users[userID]
	return &u, nil
}

func (s *MemoryStore) List(_ context.Context) ([]user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]user.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}

func (s *MemoryStore) Update(_ context.Context, u user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[u.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	newKey := normalizeEmail(u.Email)
	oldKey := normalizeEmail(existing.Email)
	if newKey != oldKey {
		if _, taken := s.byEmail[newKey]; taken {
			return sentinel.ErrConflict
		}
		delete(s.byEmail, oldKey)
		s.byEmail[newKey] = u.ID
	}
	s.users[u.ID] = u
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byEmail, normalizeEmail(u.Email))
	delete(s.users, userID)
	return nil
}
