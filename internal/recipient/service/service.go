// Package service manages the recipient records medical centers register
// before requesting blood.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"bloodbank/internal/recipient"
	id "bloodbank/pkg/domain"
	derrors "bloodbank/pkg/domain-errors"
	"bloodbank/pkg/platform/sentinel"
	"bloodbank/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, rec recipient.Recipient) error
	Get(ctx context.Context, recipientID id.RecipientID) (*recipient.Recipient, error)
	List(ctx context.Context) ([]recipient.Recipient, error)
}

type Service struct {
	store  Store
	logger *slog.Logger
}

func New(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

type Input struct {
	Name      string
	Age       int
	BloodType string
	Gender    string
	HeightCm  float64
	WeightKg  float64
}

func (s *Service) Create(ctx context.Context, in Input) (*recipient.Recipient, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, derrors.New(derrors.CodeInvalidInput, "recipient name is required")
	}
	if in.Age <= 0 {
		return nil, derrors.New(derrors.CodeInvalidInput, "recipient age must be positive")
	}
	bloodType, err := id.ParseBloodType(in.BloodType)
	if err != nil {
		return nil, err
	}
	var gender id.Gender
	if strings.TrimSpace(in.Gender) != "" {
		if gender, err = id.ParseGender(in.Gender); err != nil {
			return nil, err
		}
	}

	now := requestcontext.Now(ctx)
	rec := recipient.Recipient{
		ID:        id.NewRecipientID(),
		Name:      in.Name,
		Age:       in.Age,
		BloodType: bloodType,
		Gender:    gender,
		HeightCm:  in.HeightCm,
		WeightKg:  in.WeightKg,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, rec); err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "create recipient")
	}

	s.logger.InfoContext(ctx, "recipient created",
		"recipient_id", rec.ID, "blood_type", bloodType)
	return &rec, nil
}

func (s *Service) Get(ctx context.Context, recipientID id.RecipientID) (*recipient.Recipient, error) {
	rec, err := s.store.Get(ctx, recipientID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, derrors.New(derrors.CodeNotFound, "recipient not found")
		}
		return nil, derrors.Wrap(err, derrors.CodeInternal, "get recipient")
	}
	return rec, nil
}

func (s *Service) List(ctx context.Context) ([]recipient.Recipient, error) {
	recipients, err := s.store.List(ctx)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "list recipients")
	}
	return recipients, nil
}
