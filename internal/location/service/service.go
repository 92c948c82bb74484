// Package service manages donation locations and schedules.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"bloodbank/internal/location"
	id "bloodbank/pkg/domain"
	derrors "bloodbank/pkg/domain-errors"
	"bloodbank/pkg/platform/sentinel"
	"bloodbank/pkg/requestcontext"
)

type Store interface {
	CreateLocation(ctx context.Context, loc location.Location) error
	GetLocation(ctx context.Context, locID id.LocationID) (*location.Location, error)
	ListLocations(ctx context.Context) ([]location.Location, error)
	UpdateLocation(ctx context.Context, loc location.Location) error
	DeleteLocation(ctx context.Context, locID id.LocationID) error

	CreateSchedule(ctx context.Context, sched location.Schedule) error
	GetSchedule(ctx context.Context, schedID id.ScheduleID) (*location.Schedule, error)
	ListSchedules(ctx context.Context) ([]location.Schedule, error)
	DeleteSchedule(ctx context.Context, schedID id.ScheduleID) error
}

type Service struct {
	store  Store
	logger *slog.Logger
}

func New(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

type LocationInput struct {
	Name    string
	Address string
	City    string
	Phone   string
}

func (s *Service) CreateLocation(ctx context.Context, in LocationInput) (*location.Location, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, derrors.New(derrors.CodeInvalidInput, "location name is required")
	}
	if strings.TrimSpace(in.Address) == "" {
		return nil, derrors.New(derrors.CodeInvalidInput, "location address is required")
	}

	now := requestcontext.Now(ctx)
	loc := location.Location{
		ID:        id.NewLocationID(),
		Name:      in.Name,
		Address:   in.Address,
		City:      in.City,
		Phone:     in.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateLocation(ctx, loc); err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "create location")
	}

	s.logger.InfoContext(ctx, "location created", "location_id", loc.ID, "name", loc.Name)
	return &loc, nil
}

func (s *Service) GetLocation(ctx context.Context, locID id.LocationID) (*location.Location, error) {
	loc, err := s.store.GetLocation(ctx, locID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, derrors.New(derrors.CodeNotFound, "location not found")
		}
		return nil, derrors.Wrap(err, derrors.CodeInternal, "get location")
	}
	return loc, nil
}

func (s *Service) ListLocations(ctx context.Context) ([]location.Location, error) {
	locs, err := s.store.ListLocations(ctx)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "list locations")
	}
	return locs, nil
}

func (s *Service) UpdateLocation(ctx context.Context, locID id.LocationID, in LocationInput) (*location.Location, error) {
	loc, err := s.GetLocation(ctx, locID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.Name) != "" {
		loc.Name = in.Name
	}
	if strings.TrimSpace(in.Address) != "" {
		loc.Address = in.Address
	}
	if in.City != "" {
		loc.City = in.City
	}
	if in.Phone != "" {
		loc.Phone = in.Phone
	}
	loc.UpdatedAt = requestcontext.Now(ctx)

	if err := s.store.UpdateLocation(ctx, *loc); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, derrors.New(derrors.CodeNotFound, "location not found")
		}
		return nil, derrors.Wrap(err, derrors.CodeInternal, "update location")
	}
	return loc, nil
}

// DeleteLocation refuses to remove a location that still has schedules.
func (s *Service) DeleteLocation(ctx context.Context, locID id.LocationID) error {
	err := s.store.DeleteLocation(ctx, locID)
	switch {
	case err == nil:
		s.logger.InfoContext(ctx, "location deleted", "location_id", locID)
		return nil
	case errors.Is(err, sentinel.ErrNotFound):
		return derrors.New(derrors.CodeNotFound, "location not found")
	case errors.Is(err, sentinel.ErrConflict):
		return derrors.New(derrors.CodeConflict, "location still has schedules")
	default:
		return derrors.Wrap(err, derrors.CodeInternal, "delete location")
	}
}

type ScheduleInput struct {
	LocationID id.LocationID
	EventDate  time.Time
	Capacity   int
}

func (s *Service) CreateSchedule(ctx context.Context, in ScheduleInput) (*location.Schedule, error) {
	if in.LocationID.IsZero() {
		return nil, derrors.New(derrors.CodeInvalidInput, "location id is required")
	}
	if in.EventDate.IsZero() {
		return nil, derrors.New(derrors.CodeInvalidInput, "event date is required")
	}
	if in.Capacity < 0 {
		return nil, derrors.New(derrors.CodeInvalidInput, "capacity must not be negative")
	}

	now := requestcontext.Now(ctx)
	sched := location.Schedule{
		ID:         id.NewScheduleID(),
		LocationID: in.LocationID,
		EventDate:  in.EventDate,
		Capacity:   in.Capacity,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.CreateSchedule(ctx, sched); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, derrors.New(derrors.CodeNotFound, "location not found")
		}
		return nil, derrors.Wrap(err, derrors.CodeInternal, "create schedule")
	}

	s.logger.InfoContext(ctx, "schedule created",
		"schedule_id", sched.ID, "location_id", sched.LocationID, "event_date", sched.EventDate)
	return &sched, nil
}

func (s *Service) GetSchedule(ctx context.Context, schedID id.ScheduleID) (*location.Schedule, error) {
	sched, err := s.store.GetSchedule(ctx, schedID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, derrors.New(derrors.CodeNotFound, "schedule not found")
		}
		return nil, derrors.Wrap(err, derrors.CodeInternal, "get schedule")
	}
	return sched, nil
}

func (s *Service) ListSchedules(ctx context.Context) ([]location.Schedule, error) {
	scheds, err := s.store.ListSchedules(ctx)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "list schedules")
	}
	return scheds, nil
}

func (s *Service) DeleteSchedule(ctx context.Context, schedID id.ScheduleID) error {
	err := s.store.DeleteSchedule(ctx, schedID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return derrors.New(derrors.CodeNotFound, "schedule not found")
		}
		return derrors.Wrap(err, derrors.CodeInternal, "delete schedule")
	}
	s.logger.InfoContext(ctx, "schedule deleted", "schedule_id", schedID)
	return nil
}
