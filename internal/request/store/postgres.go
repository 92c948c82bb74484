package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bloodbank/internal/request"
	id "bloodbank/pkg/domain"
	"bloodbank/pkg/platform/sentinel"
)

// DBTX lets the store run against *sql.DB or *sql.Tx alike.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const requestColumns = `id, requester_id, patient_name, blood_type, amount, urgency,
	status, fulfilled_with, note, processed_by, processed_at, created_at, updated_at`

type PostgresStore struct {
	db DBTX
}

func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, req request.Request) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blood_requests (`+requestColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		req.ID.String(), req.RequesterID.String(), req.PatientName,
		string(req.BloodType), req.Amount, string(req.Urgency),
		string(req.Status), bloodTypeParam(req.FulfilledWith), req.Note,
		userIDParam(req.ProcessedBy), req.ProcessedAt, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert blood request: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, reqID id.RequestID) (*request.Request, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM blood_requests WHERE id = $1`, reqID.String())
	return scanRequest(row)
}

func (s *PostgresStore) List(ctx context.Context) ([]request.Request, error) {
	return s.queryMany(ctx,
		`SELECT `+requestColumns+` FROM blood_requests ORDER BY created_at`)
}

func (s *PostgresStore) ListByRequester(ctx context.Context, requesterID id.UserID) ([]request.Request, error) {
	return s.queryMany(ctx,
		`SELECT `+requestColumns+` FROM blood_requests WHERE requester_id = $1 ORDER BY created_at`,
		requesterID.String())
}

// Fulfill is the conditional transition to Confirmed: zero rows affected means
// either the request is missing or it was not in a confirmable status.
func (s *PostgresStore) Fulfill(ctx context.Context, reqID id.RequestID, fulfilledWith id.BloodType, by id.UserID, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE blood_requests
		SET status = $2,
		    fulfilled_with = $3,
		    processed_by = $4,
		    processed_at = $5,
		    updated_at = $5
		WHERE id = $1 AND status IN ($6, $7)`,
		reqID.String(), string(request.StatusConfirmed), string(fulfilledWith),
		by.String(), at,
		string(request.StatusPending), string(request.StatusWaiting),
	)
	if err != nil {
		return fmt.Errorf("fulfill blood request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("fulfill blood request: %w", err)
	}
	if affected == 1 {
		return nil
	}

	if _, err := s.Get(ctx, reqID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("fulfill blood request: %w", err)
	}
	return sentinel.ErrInvalidState
}

func (s *PostgresStore) SetStatus(ctx context.Context, reqID id.RequestID, to request.Status, by *id.UserID, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE blood_requests
		SET status = $2, processed_by = $3, updated_at = $4
		WHERE id = $1`,
		reqID.String(), string(to), userIDParam(by), at,
	)
	if err != nil {
		return fmt.Errorf("set blood request status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set blood request status: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) queryMany(ctx context.Context, query string, args ...any) ([]request.Request, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query blood requests: %w", err)
	}
	defer rows.Close()

	var out []request.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blood requests: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*request.Request, error) {
	var (
		req                      request.Request
		rawID, rawRequester      string
		bloodType, urgency       string
		status                   string
		fulfilledWith, processed sql.NullString
		note                     sql.NullString
		processedAt              sql.NullTime
	)
	err := row.Scan(&rawID, &rawRequester, &req.PatientName, &bloodType, &req.Amount,
		&urgency, &status, &fulfilledWith, &note, &processed, &processedAt,
		&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan blood request: %w", err)
	}

	if req.ID, err = id.ParseRequestID(rawID); err != nil {
		return nil, fmt.Errorf("parse request id: %w", err)
	}
	if req.RequesterID, err = id.ParseUserID(rawRequester); err != nil {
		return nil, fmt.Errorf("parse requester id: %w", err)
	}
	req.BloodType = id.BloodType(bloodType)
	req.Urgency = request.Urgency(urgency)
	req.Status = request.Status(status)
	if fulfilledWith.Valid {
		t := id.BloodType(fulfilledWith.String)
		req.FulfilledWith = &t
	}
	req.Note = note.String
	if processed.Valid {
		staff, err := id.ParseUserID(processed.String)
		if err != nil {
			return nil, fmt.Errorf("parse processed_by: %w", err)
		}
		req.ProcessedBy = &staff
	}
	if processedAt.Valid {
		t := processedAt.Time
		req.ProcessedAt = &t
	}
	return &req, nil
}

func bloodTypeParam(t *id.BloodType) any {
	if t == nil {
		return nil
	}
	return string(*t)
}

func userIDParam(userID *id.UserID) any {
	if userID == nil {
		return nil
	}
	return userID.String()
}
