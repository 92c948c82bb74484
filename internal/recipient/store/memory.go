// Package store provides persistence for blood recipient records.
package store

import (
	"context"
	"sync"

	"bloodbank/internal/recipient"
	id "bloodbank/pkg/domain"
	"bloodbank/pkg/platform/sentinel"
)

type MemoryStore struct {
	mu         sync.RWMutex
	recipients map[id.RecipientID]recipient.Recipient
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recipients: make(map[id.RecipientID]recipient.Recipient)}
}

func (s *MemoryStore) Create(_ context.Context, rec recipient.Recipient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recipients[rec.ID] = rec
	return nil
}

func (s *MemoryStore) Get(_ context.Context, recipientID id.RecipientID) (*recipient.Recipient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.recipients[recipientID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &rec, nil
}

func (s *MemoryStore) List(_ context.Context) ([]recipient.Recipient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]recipient.Recipient, 0, len(s.recipients))
	for _, rec := range s.recipients {
		out = append(out, rec)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].CreatedAt.Before(out[j-1].CreatedAt); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}
