package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bloodbank/internal/eligibility"
	"bloodbank/internal/registration"
	id "bloodbank/pkg/domain"
	"bloodbank/pkg/platform/sentinel"
)

// DBTX lets the store run against *sql.DB or *sql.Tx alike.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const regColumns = `id, donor_id, schedule_id, status, blood_type, amount,
	screening, warnings, confirmed_by, confirmed_at, created_at, updated_at`

type PostgresStore struct {
	db DBTX
}

func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, reg registration.Registration) error {
	screening, err := json.Marshal(reg.Screening)
	if err != nil {
		return fmt.Errorf("encode screening: %w", err)
	}
	warnings, err := json.Marshal(reg.Warnings)
	if err != nil {
		return fmt.Errorf("encode warnings: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO donation_registrations (`+regColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		reg.ID.String(), reg.DonorID.String(), scheduleIDParam(reg.ScheduleID),
		string(reg.Status), string(reg.BloodType), reg.Amount,
		screening, warnings, userIDParam(reg.ConfirmedBy),
		reg.ConfirmedAt, reg.CreatedAt, reg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, regID id.RegistrationID) (*registration.Registration, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+regColumns+` FROM donation_registrations WHERE id = $1`, regID.String())
	return scanRegistration(row)
}

func (s *PostgresStore) List(ctx context.Context) ([]registration.Registration, error) {
	return s.queryMany(ctx,
		`SELECT `+regColumns+` FROM donation_registrations ORDER BY created_at`)
}

func (s *PostgresStore) ListByDonor(ctx context.Context, donorID id.UserID) ([]registration.Registration, error) {
	return s.queryMany(ctx,
		`SELECT `+regColumns+` FROM donation_registrations WHERE donor_id = $1 ORDER BY created_at`,
		donorID.String())
}

// UpdateStatus is the conditional transition: zero rows affected means either
// the registration is missing or another transition won the race.
func (s *PostgresStore) UpdateStatus(ctx context.Context, regID id.RegistrationID, from, to registration.Status, by *id.UserID, at time.Time) error {
	var confirmedAt any
	if to == registration.StatusConfirmed {
		confirmedAt = at
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE donation_registrations
		SET status = $3,
		    updated_at = $4,
		    confirmed_by = COALESCE($5, confirmed_by),
		    confirmed_at = COALESCE($6, confirmed_at)
		WHERE id = $1 AND status = $2`,
		regID.String(), string(from), string(to), at, userIDParam(by), confirmedAt,
	)
	if err != nil {
		return fmt.Errorf("update registration status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update registration status: %w", err)
	}
	if affected == 1 {
		return nil
	}

	if _, err := s.Get(ctx, regID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("update registration status: %w", err)
	}
	return sentinel.ErrInvalidState
}

func (s *PostgresStore) queryMany(ctx context.Context, query string, args ...any) ([]registration.Registration, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query registrations: %w", err)
	}
	defer rows.Close()

	var out []registration.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registrations: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegistration(row rowScanner) (*registration.Registration, error) {
	var (
		reg                    registration.Registration
		rawID, rawDonor        string
		rawSchedule, confirmed sql.NullString
		status, bloodType      string
		screening, warnings    []byte
		confirmedAt            sql.NullTime
	)
	err := row.Scan(&rawID, &rawDonor, &rawSchedule, &status, &bloodType, &reg.Amount,
		&screening, &warnings, &confirmed, &confirmedAt, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan registration: %w", err)
	}

	if reg.ID, err = id.ParseRegistrationID(rawID); err != nil {
		return nil, fmt.Errorf("parse registration id: %w", err)
	}
	if reg.DonorID, err = id.ParseUserID(rawDonor); err != nil {
		return nil, fmt.Errorf("parse donor id: %w", err)
	}
	if rawSchedule.Valid {
		scheduleID, err := id.ParseScheduleID(rawSchedule.String)
		if err != nil {
			return nil, fmt.Errorf("parse schedule id: %w", err)
		}
		reg.ScheduleID = &scheduleID
	}
	if confirmed.Valid {
		approver, err := id.ParseUserID(confirmed.String)
		if err != nil {
			return nil, fmt.Errorf("parse confirmed_by: %w", err)
		}
		reg.ConfirmedBy = &approver
	}
	if confirmedAt.Valid {
		t := confirmedAt.Time
		reg.ConfirmedAt = &t
	}
	reg.Status = registration.Status(status)
	reg.BloodType = id.BloodType(bloodType)
	if len(warnings) > 0 {
		if err := json.Unmarshal(warnings, &reg.Warnings); err != nil {
			return nil, fmt.Errorf("decode warnings: %w", err)
		}
	}
	if len(reg.Warnings) == 0 {
		reg.Warnings = nil
	}
	var snapshot eligibility.Snapshot
	if err := json.Unmarshal(screening, &snapshot); err != nil {
		return nil, fmt.Errorf("decode screening: %w", err)
	}
	reg.Screening = snapshot
	return &reg, nil
}

func scheduleIDParam(scheduleID *id.ScheduleID) any {
	if scheduleID == nil {
		return nil
	}
	return scheduleID.String()
}

func userIDParam(userID *id.UserID) any {
	if userID == nil {
		return nil
	}
	return userID.String()
}
