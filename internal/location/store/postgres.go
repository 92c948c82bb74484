package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"bloodbank/internal/location"
	id "bloodbank/pkg/domain"
	"bloodbank/pkg/platform/sentinel"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateLocation(ctx context.Context, loc location.Location) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO locations (id, name, address, city, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		loc.ID.String(), loc.Name, loc.Address, loc.City, loc.Phone, loc.CreatedAt, loc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert location: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetLocation(ctx context.Context, locID id.LocationID) (*location.Location, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, address, city, phone, created_at, updated_at
		FROM locations WHERE id = $1`, locID.String())
	return scanLocation(row)
}

func (s *PostgresStore) ListLocations(ctx context.Context) ([]location.Location, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, address, city, phone, created_at, updated_at
		FROM locations ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query locations: %w", err)
	}
	defer rows.Close()

	var out []location.Location
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate locations: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) UpdateLocation(ctx context.Context, loc location.Location) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE locations
		SET name = $2, address = $3, city = $4, phone = $5, updated_at = $6
		WHERE id = $1`,
		loc.ID.String(), loc.Name, loc.Address, loc.City, loc.Phone, loc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update location: %w", err)
	}
	return checkAffected(res, "update location")
}

func (s *PostgresStore) DeleteLocation(ctx context.Context, locID id.LocationID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM locations WHERE id = $1`, locID.String())
	if err != nil {
		if isForeignKeyViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("delete location: %w", err)
	}
	return checkAffected(res, "delete location")
}

func (s *PostgresStore) CreateSchedule(ctx context.Context, sched location.Schedule) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO donation_schedules (id, location_id, event_date, capacity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		sched.ID.String(), sched.LocationID.String(), sched.EventDate, sched.Capacity,
		sched.CreatedAt, sched.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("insert schedule: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetSchedule(ctx context.Context, schedID id.ScheduleID) (*location.Schedule, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, location_id, event_date, capacity, created_at, updated_at
		FROM donation_schedules WHERE id = $1`, schedID.String())
	return scanSchedule(row)
}

func (s *PostgresStore) ListSchedules(ctx context.Context) ([]location.Schedule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, location_id, event_date, capacity, created_at, updated_at
		FROM donation_schedules ORDER BY event_date`)
	if err != nil {
		return nil, fmt.Errorf("query schedules: %w", err)
	}
	defer rows.Close()

	var out []location.Schedule
	for rows.Next() {
		sched, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sched)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schedules: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) DeleteSchedule(ctx context.Context, schedID id.ScheduleID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM donation_schedules WHERE id = $1`, schedID.String())
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	return checkAffected(res, "delete schedule")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLocation(row rowScanner) (*location.Location, error) {
	var (
		loc   location.Location
		rawID string
	)
	err := row.Scan(&rawID, &loc.Name, &loc.Address, &loc.City, &loc.Phone,
		&loc.CreatedAt, &loc.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan location: %w", err)
	}
	if loc.ID, err = id.ParseLocationID(rawID); err != nil {
		return nil, fmt.Errorf("parse location id: %w", err)
	}
	return &loc, nil
}

func scanSchedule(row rowScanner) (*location.Schedule, error) {
	var (
		sched           location.Schedule
		rawID, rawLocID string
	)
	err := row.Scan(&rawID, &rawLocID, &sched.EventDate, &sched.Capacity,
		&sched.CreatedAt, &sched.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan schedule: %w", err)
	}
	if sched.ID, err = id.ParseScheduleID(rawID); err != nil {
		return nil, fmt.Errorf("parse schedule id: %w", err)
	}
	if sched.LocationID, err = id.ParseLocationID(rawLocID); err != nil {
		return nil, fmt.Errorf("parse location id: %w", err)
	}
	return &sched, nil
}

func checkAffected(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
