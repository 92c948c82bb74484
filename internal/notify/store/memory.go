// Package store persists in-app notifications.
package store

import (
	"context"
	"sync"

	"bloodbank/internal/notify"
	id "bloodbank/pkg/domain"
	"bloodbank/pkg/platform/sentinel"
)

type MemoryStore struct {
	mu            sync.RWMutex
	notifications map[id.NotificationID]notify.Notification
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{notifications: make(map[id.NotificationID]notify.Notification)}
}

func (s *MemoryStore) Create(_ context.Context, n notify.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[n.ID] = n
	return nil
}

func (s *MemoryStore) ListForUser(_ context.Context, userID id.UserID) ([]notify.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []notify.Notification
	for _, n := range s.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	// Newest first.
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreatedAt.After(out[i].CreatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

// MarkRead flips the read flag; only the owner's notifications are visible to
// the call.
func (s *MemoryStore) MarkRead(_ context.Context, notificationID id.NotificationID, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[notificationID]
	if !ok || n.UserID != userID {
		return sentinel.ErrNotFound
	}
	n.Read = true
	s.notifications[notificationID] = n
	return nil
}
