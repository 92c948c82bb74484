// Package store provides persistence for blood requests.
package store

import (
	"context"
	"sync"
	"time"

	"bloodbank/internal/request"
	id "bloodbank/pkg/domain"
	"bloodbank/pkg/platform/sentinel"
)

type MemoryStore struct {
	mu       sync.RWMutex
	requests map[id.RequestID]request.Request
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{requests: make(map[id.RequestID]request.Request)}
}

func (s *MemoryStore) Create(_ context.Context, req request.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[req.ID] = req
	return nil
}

func (s *MemoryStore) Get(_ context.Context, reqID id.RequestID) (*request.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req, ok := s.requests[reqID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &req, nil
}

func (s *MemoryStore) List(_ context.Context) ([]request.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]request.Request, 0, len(s.requests))
	for _, req := range s.requests {
		out = append(out, req)
	}
	sortByCreated(out)
	return out, nil
}

func (s *MemoryStore) ListByRequester(_ context.Context, requesterID id.UserID) ([]request.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []request.Request
	for _, req := range s.requests {
		if req.RequesterID == requesterID {
			out = append(out, req)
		}
	}
	sortByCreated(out)
	return out, nil
}

// Fulfill marks the request Confirmed and records what it was fulfilled with.
// Only Pending and Waiting requests may be fulfilled; anything else loses with
// ErrInvalidState. The check and the write are atomic.
func (s *MemoryStore) Fulfill(_ context.Context, reqID id.RequestID, fulfilledWith id.BloodType, by id.UserID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[reqID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if !req.Status.Confirmable() {
		return sentinel.ErrInvalidState
	}
	req.Status = request.StatusConfirmed
	req.FulfilledWith = &fulfilledWith
	req.ProcessedBy = &by
	processedAt := at
	req.ProcessedAt = &processedAt
	req.UpdatedAt = at
	s.requests[reqID] = req
	return nil
}

// SetStatus relabels the request unconditionally; staff use it to flag
// priorities, stock-outs, and re-reviews.
func (s *MemoryStore) SetStatus(_ context.Context, reqID id.RequestID, to request.Status, by *id.UserID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[reqID]
	if !ok {
		return sentinel.ErrNotFound
	}
	req.Status = to
	req.ProcessedBy = by
	req.UpdatedAt = at
	s.requests[reqID] = req
	return nil
}

func sortByCreated(reqs []request.Request) {
	for i := 1; i < len(reqs); i++ {
		for j := i; j > 0 && reqs[j].CreatedAt.Before(reqs[j-1].CreatedAt); j-- {
			reqs[j], reqs[j-1] = reqs[j-1], reqs[j]
		}
	}
}
