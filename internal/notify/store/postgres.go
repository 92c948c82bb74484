package store

import (
	"context"
	"database/sql"
	"fmt"

	"bloodbank/internal/notify"
	id "bloodbank/pkg/domain"
	"bloodbank/pkg/platform/sentinel"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, n notify.Notification) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, subject, body, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		n.ID.String(), n.UserID.String(), n.Subject, n.Body, n.Read, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListForUser(ctx context.Context, userID id.UserID) ([]notify.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, subject, body, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC`,
		userID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []notify.Notification
	for rows.Next() {
		var (
			n      notify.Notification
			rawID  string
			rawUID string
		)
		if err := rows.Scan(&rawID, &rawUID, &n.Subject, &n.Body, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		if n.ID, err = id.ParseNotificationID(rawID); err != nil {
			return nil, fmt.Errorf("parse notification id: %w", err)
		}
		if n.UserID, err = id.ParseUserID(rawUID); err != nil {
			return nil, fmt.Errorf("parse notification user id: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) MarkRead(ctx context.Context, notificationID id.NotificationID, userID id.UserID) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET read = TRUE
		WHERE id = $1 AND user_id = $2`,
		notificationID.String(), userID.String(),
	)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
