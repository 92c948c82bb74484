package service

import (
	"context"
	"time"

	derrors "bloodbank/pkg/domain-errors"
)

// DefaultTxTimeout bounds how long an atomic confirmation may wait for the
// fulfillment lock.
const DefaultTxTimeout = 2 * time.Second

// MemoryTxRunner serializes confirmations over the in-memory stores with a
// single bounded lock. There is no rollback; callers order their writes so
// the fallible step runs first.
type MemoryTxRunner struct {
	regs Store
	inv  InventoryStore

	lock    chan struct{}
	timeout time.Duration
}

func NewMemoryTxRunner(regs Store, inv InventoryStore) *MemoryTxRunner {
	return &MemoryTxRunner{
		regs:    regs,
		inv:     inv,
		lock:    make(chan struct{}, 1),
		timeout: DefaultTxTimeout,
	}
}

func (r *MemoryTxRunner) WithTimeout(d time.Duration) *MemoryTxRunner {
	r.timeout = d
	return r
}

func (r *MemoryTxRunner) RunInTx(ctx context.Context, fn func(regs Store, inv InventoryStore) error) error {
	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case r.lock <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return derrors.New(derrors.CodeTimeout, "fulfillment lock timeout")
	}
	defer func() { <-r.lock }()

	return fn(r.regs, r.inv)
}
