package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bloodbank/internal/inventory"
	id "bloodbank/pkg/domain"
	"bloodbank/pkg/platform/sentinel"
)

// DBTX is the database/sql surface the stores run against. Both *sql.DB and
// *sql.Tx satisfy it, so the same store works standalone and inside a
// transaction runner.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore persists the ledger in the blood_inventory table. Atomicity
// comes from single-statement writes: the upsert for credits and the
// conditional update for debits, so no read-modify-write window exists.
type PostgresStore struct {
	db DBTX
}

func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, bloodType id.BloodType) (*inventory.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT blood_type, quantity, updated_by, updated_at
		FROM blood_inventory
		WHERE blood_type = $1`,
		string(bloodType),
	)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get inventory record: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]inventory.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT blood_type, quantity, updated_by, updated_at
		FROM blood_inventory`)
	if err != nil {
		return nil, fmt.Errorf("list inventory records: %w", err)
	}
	defer rows.Close()

	var records []inventory.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory record: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inventory records: %w", err)
	}
	inventory.SortRecords(records)
	return records, nil
}

func (s *PostgresStore) Credit(ctx context.Context, bloodType id.BloodType, amount int, updatedBy *id.UserID, now time.Time) (*inventory.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO blood_inventory (blood_type, quantity, updated_by, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (blood_type) DO UPDATE SET
			quantity   = blood_inventory.quantity + EXCLUDED.quantity,
			updated_by = EXCLUDED.updated_by,
			updated_at = EXCLUDED.updated_at
		RETURNING blood_type, quantity, updated_by, updated_at`,
		string(bloodType), amount, userIDParam(updatedBy), now,
	)
	rec, err := scanRecord(row)
	if err != nil {
		return nil, fmt.Errorf("credit inventory: %w", err)
	}
	return rec, nil
}

// Debit decrements quantity only when enough stock exists. When the guarded
// update touches no row, a follow-up read disambiguates missing type from
// insufficient stock.
func (s *PostgresStore) Debit(ctx context.Context, bloodType id.BloodType, amount int, now time.Time) (*inventory.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE blood_inventory
		SET quantity = quantity - $2, updated_at = $3
		WHERE blood_type = $1 AND quantity >= $2
		RETURNING blood_type, quantity, updated_by, updated_at`,
		string(bloodType), amount, now,
	)
	rec, err := scanRecord(row)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("debit inventory: %w", err)
	}

	if _, err := s.Get(ctx, bloodType); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("debit inventory: %w", err)
	}
	return nil, inventory.ErrInsufficientStock
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*inventory.Record, error) {
	var (
		rec       inventory.Record
		bloodType string
		updatedBy sql.NullString
	)
	if err := row.Scan(&bloodType, &rec.Quantity, &updatedBy, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.BloodType = id.BloodType(bloodType)
	if updatedBy.Valid {
		uid, err := id.ParseUserID(updatedBy.String)
		if err != nil {
			return nil, fmt.Errorf("parse updated_by: %w", err)
		}
		rec.UpdatedBy = &uid
	}
	return &rec, nil
}

func userIDParam(uid *id.UserID) any {
	if uid == nil {
		return nil
	}
	return uid.String()
}
