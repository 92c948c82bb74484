// Package store provides persistence for donation locations and schedules.
package store

import (
	"context"
	"sync"

	"bloodbank/internal/location"
	id "bloodbank/pkg/domain"
	"bloodbank/pkg/platform/sentinel"
)

type MemoryStore struct {
	mu        sync.RWMutex
	locations map[id.LocationID]location.Location
	schedules map[id.ScheduleID]location.Schedule
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		locations: make(map[id.LocationID]location.Location),
		schedules: make(map[id.ScheduleID]location.Schedule),
	}
}

func (s *MemoryStore) CreateLocation(_ context.Context, loc location.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations[loc.ID] = loc
	return nil
}

func (s *MemoryStore) GetLocation(_ context.Context, locID id.LocationID) (*location.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	loc, ok := s.locations[locID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &loc, nil
}

func (s *MemoryStore) ListLocations(_ context.Context) ([]location.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]location.Location, 0, len(s.locations))
	for _, loc := range s.locations {
		out = append(out, loc)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].CreatedAt.Before(out[j-1].CreatedAt); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}

func (s *MemoryStore) UpdateLocation(_ context.Context, loc location.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.locations[loc.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.locations[loc.ID] = loc
	return nil
}

func (s *MemoryStore) DeleteLocation(_ context.Context, locID id.LocationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.locations[locID]; !ok {
		return sentinel.ErrNotFound
	}
	for _, sched := range s.schedules {
		if sched.LocationID == locID {
			return sentinel.ErrConflict
		}
	}
	delete(s.locations, locID)
	return nil
}

func (s *MemoryStore) CreateSchedule(_ context.Context, sched location.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.locations[sched.LocationID]; !ok {
		return sentinel.ErrNotFound
	}
	s.schedules[sched.ID] = sched
	return nil
}

func (s *MemoryStore) GetSchedule(_ context.Context, schedID id.ScheduleID) (*location.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sched, ok := s.schedules[schedID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &sched, nil
}

func (s *MemoryStore) ListSchedules(_ context.Context) ([]location.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]location.Schedule, 0, len(s.schedules))
	for _, sched := range s.schedules {
		out = append(out, sched)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].EventDate.Before(out[j-1].EventDate); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}

func (s *MemoryStore) DeleteSchedule(_ context.Context, schedID id.ScheduleID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.schedules[schedID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.schedules, schedID)
	return nil
}
