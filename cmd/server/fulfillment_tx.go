package main

import (
	"context"
	"database/sql"
	"fmt"

	invstore "bloodbank/internal/inventory/store"
	regsvc "bloodbank/internal/registration/service"
	regstore "bloodbank/internal/registration/store"
	reqsvc "bloodbank/internal/request/service"
	reqstore "bloodbank/internal/request/store"
)

// registrationTxRunner runs a confirmation inside one database transaction so
// the inventory credit and the status transition commit together.
type registrationTxRunner struct {
	db *sql.DB
}

func (r *registrationTxRunner) RunInTx(ctx context.Context, fn func(regs regsvc.Store, inv regsvc.InventoryStore) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(regstore.NewPostgresStore(tx), invstore.NewPostgresStore(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// requestTxRunner is the same pattern for the request fulfillment debit.
type requestTxRunner struct {
	db *sql.DB
}

func (r *requestTxRunner) RunInTx(ctx context.Context, fn func(reqs reqsvc.Store, inv reqsvc.InventoryStore) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(reqstore.NewPostgresStore(tx), invstore.NewPostgresStore(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
