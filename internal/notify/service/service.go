// Package service records in-app notifications and fans them out to the
// configured delivery channel.
package service

import (
	"context"
	"errors"
	"log/slog"

	"bloodbank/internal/notify"
	id "bloodbank/pkg/domain"
	derrors "bloodbank/pkg/domain-errors"
	"bloodbank/pkg/platform/sentinel"
	"bloodbank/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, n notify.Notification) error
	ListForUser(ctx context.Context, userID id.UserID) ([]notify.Notification, error)
	MarkRead(ctx context.Context, notificationID id.NotificationID, userID id.UserID) error
}

// Dispatcher is the async delivery edge; notify.Dispatcher satisfies it.
type Dispatcher interface {
	Enqueue(msg notify.Message)
}

type Service struct {
	store      Store
	dispatcher Dispatcher
	logger     *slog.Logger
}

func New(store Store, dispatcher Dispatcher, logger *slog.Logger) *Service {
	return &Service{store: store, dispatcher: dispatcher, logger: logger}
}

// Send stores an in-app notification and queues external delivery. Failures
// to store are returned; delivery is fire-and-forget.
func (s *Service) Send(ctx context.Context, userID id.UserID, subject, body string) (*notify.Notification, error) {
	if subject == "" {
		return nil, derrors.New(derrors.CodeInvalidInput, "subject is required")
	}

	n := notify.Notification{
		ID:        id.NewNotificationID(),
		UserID:    userID,
		Subject:   subject,
		Body:      body,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, n); err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "store notification")
	}

	if s.dispatcher != nil {
		s.dispatcher.Enqueue(notify.Message{UserID: userID, Subject: subject, Body: body})
	}
	return &n, nil
}

func (s *Service) ListForUser(ctx context.Context, userID id.UserID) ([]notify.Notification, error) {
	out, err := s.store.ListForUser(ctx, userID)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "list notifications")
	}
	return out, nil
}

func (s *Service) MarkRead(ctx context.Context, notificationID id.NotificationID, userID id.UserID) error {
	err := s.store.MarkRead(ctx, notificationID, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return derrors.New(derrors.CodeNotFound, "notification not found")
		}
		return derrors.Wrap(err, derrors.CodeInternal, "mark notification read")
	}
	return nil
}
