// Package store provides the persistence backends for the inventory ledger.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"bloodbank/internal/inventory"
	id "bloodbank/pkg/domain"
	"bloodbank/pkg/platform/sentinel"
)

// ErrLockTimeout reports that a per-type lock could not be acquired before the
// bound expired. Callers may retry; the ledger itself was not touched.
var ErrLockTimeout = errors.New("inventory lock timeout")

// DefaultLockTimeout bounds how long a mutation waits for a contended blood
// type before giving up.
const DefaultLockTimeout = 2 * time.Second

// MemoryStore keeps the ledger in process memory. Mutations serialize per
// blood type through a bounded semaphore, so concurrent debits of the same
// type settle one at a time while different types proceed in parallel.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[id.BloodType]inventory.Record
	locks   map[id.BloodType]chan struct{}

	lockTimeout time.Duration
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records:     make(map[id.BloodType]inventory.Record),
		locks:       make(map[id.BloodType]chan struct{}),
		lockTimeout: DefaultLockTimeout,
	}
}

// WithLockTimeout overrides the lock acquisition bound. Useful in tests.
func (s *MemoryStore) WithLockTimeout(d time.Duration) *MemoryStore {
	s.lockTimeout = d
	return s
}

func (s *MemoryStore) Get(_ context.Context, bloodType id.BloodType) (*inventory.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[bloodType]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &rec, nil
}

func (s *MemoryStore) List(_ context.Context) ([]inventory.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]inventory.Record, 0, len(s.records))
	for _, rec := range s.records {
		records = append(records, rec)
	}
	inventory.SortRecords(records)
	return records, nil
}

// Credit adds amount units, creating the record on first sight of the type.
func (s *MemoryStore) Credit(ctx context.Context, bloodType id.BloodType, amount int, updatedBy *id.UserID, now time.Time) (*inventory.Record, error) {
	release, err := s.acquire(ctx, bloodType)
	if err != nil {
		return nil, err
	}
	defer release()

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[bloodType]
	if !ok {
		rec = inventory.Record{BloodType: bloodType}
	}
	rec.Quantity += amount
	rec.UpdatedBy = updatedBy
	rec.UpdatedAt = now
	s.records[bloodType] = rec
	return &rec, nil
}

// Debit removes amount units. The check and the write happen under the same
// per-type lock, so a debit either lands whole or not at all.
func (s *MemoryStore) Debit(ctx context.Context, bloodType id.BloodType, amount int, now time.Time) (*inventory.Record, error) {
	release, err := s.acquire(ctx, bloodType)
	if err != nil {
		return nil, err
	}
	defer release()

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[bloodType]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if rec.Quantity < amount {
		return nil, inventory.ErrInsufficientStock
	}
	rec.Quantity -= amount
	rec.UpdatedAt = now
	s.records[bloodType] = rec
	return &rec, nil
}

// acquire takes the per-type semaphore, waiting at most lockTimeout. The
// context deadline wins if it fires first.
func (s *MemoryStore) acquire(ctx context.Context, bloodType id.BloodType) (func(), error) {
	s.mu.Lock()
	lock, ok := s.locks[bloodType]
	if !ok {
		lock = make(chan struct{}, 1)
		s.locks[bloodType] = lock
	}
	s.mu.Unlock()

	timer := time.NewTimer(s.lockTimeout)
	defer timer.Stop()

	select {
	case lock <- struct{}{}:
		return func() { <-lock }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, ErrLockTimeout
	}
}
