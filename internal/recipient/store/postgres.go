package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bloodbank/internal/recipient"
	id "bloodbank/pkg/domain"
	"bloodbank/pkg/platform/sentinel"
)

const recipientColumns = `id, name, age, blood_type, gender, height_cm, weight_kg, created_at, updated_at`

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, rec recipient.Recipient) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blood_recipients (`+recipientColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.ID.String(), rec.Name, rec.Age, string(rec.BloodType), string(rec.Gender),
		rec.HeightCm, rec.WeightKg, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert recipient: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, recipientID id.RecipientID) (*recipient.Recipient, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recipientColumns+` FROM blood_recipients WHERE id = $1`, recipientID.String())
	return scanRecipient(row)
}

func (s *PostgresStore) List(ctx context.Context) ([]recipient.Recipient, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recipientColumns+` FROM blood_recipients ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query recipients: %w", err)
	}
	defer rows.Close()

	var out []recipient.Recipient
	for rows.Next() {
		rec, err := scanRecipient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipients: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipient(row rowScanner) (*recipient.Recipient, error) {
	var (
		rec                  recipient.Recipient
		rawID, rawBT, rawGen string
	)
	err := row.Scan(&rawID, &rec.Name, &rec.Age, &rawBT, &rawGen,
		&rec.HeightCm, &rec.WeightKg, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan recipient: %w", err)
	}
	if rec.ID, err = id.ParseRecipientID(rawID); err != nil {
		return nil, fmt.Errorf("parse recipient id: %w", err)
	}
	rec.BloodType = id.BloodType(rawBT)
	rec.Gender = id.Gender(rawGen)
	return &rec, nil
}
