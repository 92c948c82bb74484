// Package service manages the prohibited-disease lookup table.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"bloodbank/internal/disease"
	id "bloodbank/pkg/domain"
	derrors "bloodbank/pkg/domain-errors"
	"bloodbank/pkg/platform/sentinel"
	"bloodbank/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, d disease.Disease) error
	Get(ctx context.Context, diseaseID id.DiseaseID) (*disease.Disease, error)
	List(ctx context.Context) ([]disease.Disease, error)
	Update(ctx context.Context, d disease.Disease) error
	Delete(ctx context.Context, diseaseID id.DiseaseID) error
}

type Service struct {
	store  Store
	logger *slog.Logger
}

func New(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

type Input struct {
	Name              string
	Description       string
	BlocksDonation    bool
	RequiresScreening bool
}

func (s *Service) Create(ctx context.Context, in Input) (*disease.Disease, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, derrors.New(derrors.CodeInvalidInput, "disease name is required")
	}

	now := requestcontext.Now(ctx)
	d := disease.Disease{
		ID:                id.NewDiseaseID(),
		Name:              in.Name,
		Description:       in.Description,
		BlocksDonation:    in.BlocksDonation,
		RequiresScreening: in.RequiresScreening,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.store.Create(ctx, d); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, derrors.Newf(derrors.CodeConflict, "disease %q already exists", in.Name)
		}
		return nil, derrors.Wrap(err, derrors.CodeInternal, "create disease")
	}

	s.logger.InfoContext(ctx, "disease created", "disease_id", d.ID, "name", d.Name)
	return &d, nil
}

func (s *Service) Get(ctx context.Context, diseaseID id.DiseaseID) (*disease.Disease, error) {
	d, err := s.store.Get(ctx, diseaseID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, derrors.New(derrors.CodeNotFound, "disease not found")
		}
		return nil, derrors.Wrap(err, derrors.CodeInternal, "get disease")
	}
	return d, nil
}

func (s *Service) List(ctx context.Context) ([]disease.Disease, error) {
	diseases, err := s.store.List(ctx)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "list diseases")
	}
	return diseases, nil
}

func (s *Service) Update(ctx context.Context, diseaseID id.DiseaseID, in Input) (*disease.Disease, error) {
	d, err := s.Get(ctx, diseaseID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.Name) != "" {
		d.Name = in.Name
	}
	d.Description = in.Description
	d.BlocksDonation = in.BlocksDonation
	d.RequiresScreening = in.RequiresScreening
	d.UpdatedAt = requestcontext.Now(ctx)

	if err := s.store.Update(ctx, *d); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, derrors.New(derrors.CodeNotFound, "disease not found")
		case errors.Is(err, sentinel.ErrConflict):
			return nil, derrors.Newf(derrors.CodeConflict, "disease %q already exists", d.Name)
		default:
			return nil, derrors.Wrap(err, derrors.CodeInternal, "update disease")
		}
	}
	return d, nil
}

func (s *Service) Delete(ctx context.Context, diseaseID id.DiseaseID) error {
	err := s.store.Delete(ctx, diseaseID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return derrors.New(derrors.CodeNotFound, "disease not found")
		}
		return derrors.Wrap(err, derrors.CodeInternal, "delete disease")
	}
	s.logger.InfoContext(ctx, "disease deleted", "disease_id", diseaseID)
	return nil
}
