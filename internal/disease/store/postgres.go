package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"bloodbank/internal/disease"
	id "bloodbank/pkg/domain"
	"bloodbank/pkg/platform/sentinel"
)

const diseaseColumns = `id, name, description, blocks_donation, requires_screening, created_at, updated_at`

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, d disease.Disease) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO diseases (`+diseaseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		d.ID.String(), d.Name, d.Description, d.BlocksDonation, d.RequiresScreening,
		d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert disease: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, diseaseID id.DiseaseID) (*disease.Disease, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+diseaseColumns+` FROM diseases WHERE id = $1`, diseaseID.String())
	return scanDisease(row)
}

func (s *PostgresStore) List(ctx context.Context) ([]disease.Disease, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+diseaseColumns+` FROM diseases ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query diseases: %w", err)
	}
	defer rows.Close()

	var out []disease.Disease
	for rows.Next() {
		d, err := scanDisease(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate diseases: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Update(ctx context.Context, d disease.Disease) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE diseases
		SET name = $2, description = $3, blocks_donation = $4, requires_screening = $5, updated_at = $6
		WHERE id = $1`,
		d.ID.String(), d.Name, d.Description, d.BlocksDonation, d.RequiresScreening, d.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update disease: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update disease: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, diseaseID id.DiseaseID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM diseases WHERE id = $1`, diseaseID.String())
	if err != nil {
		return fmt.Errorf("delete disease: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete disease: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDisease(row rowScanner) (*disease.Disease, error) {
	var (
		d     disease.Disease
		rawID string
	)
	err := row.Scan(&rawID, &d.Name, &d.Description, &d.BlocksDonation,
		&d.RequiresScreening, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan disease: %w", err)
	}
	if d.ID, err = id.ParseDiseaseID(rawID); err != nil {
		return nil, fmt.Errorf("parse disease id: %w", err)
	}
	return &d, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
