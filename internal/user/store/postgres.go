package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"bloodbank/internal/user"
	id "bloodbank/pkg/domain"
	"bloodbank/pkg/platform/sentinel"
)

const userColumns = `id, email, password_hash, first_name, last_name, role,
	gender, blood_type, date_of_birth, phone, address, created_at, updated_at`

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, u user.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, lower($2), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		u.ID.String(), u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Role.String(),
		nullable(string(u.Gender)), nullable(string(u.BloodType)), u.DateOfBirth,
		nullable(u.Phone), nullable(u.Address), u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, userID id.UserID) (*user.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, userID.String())
	return scanUser(row)
}

func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = lower($1)`, email)
	return scanUser(row)
}

func (s *PostgresStore) List(ctx context.Context) ([]user.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Update(ctx context.Context, u user.User) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET
			email = lower($2), first_name = $3, last_name = $4, gender = $5,
			blood_type = $6, date_of_birth = $7, phone = $8, address = $9,
			updated_at = $10
		WHERE id = $1`,
		u.ID.String(), u.Email, u.FirstName, u.LastName,
		nullable(string(u.Gender)), nullable(string(u.BloodType)), u.DateOfBirth,
		nullable(u.Phone), nullable(u.Address), u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// Delete refuses to remove a user that other rows still reference.
func (s *PostgresStore) Delete(ctx context.Context, userID id.UserID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID.String())
	if err != nil {
		if isForeignKeyViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*user.User, error) {
	var (
		u                              user.User
		rawID, role                    string
		gender, bloodType, phone, addr sql.NullString
		dob                            sql.NullTime
	)
	err := row.Scan(&rawID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &role,
		&gender, &bloodType, &dob, &phone, &addr, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	if u.ID, err = id.ParseUserID(rawID); err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	u.Role = id.Role(role)
	u.Gender = id.Gender(gender.String)
	u.BloodType = id.BloodType(bloodType.String)
	u.Phone = phone.String
	u.Address = addr.String
	if dob.Valid {
		d := dob.Time
		u.DateOfBirth = &d
	}
	return &u, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
