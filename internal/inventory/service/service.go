// Package service implements the inventory ledger operations: crediting
// confirmed donations, debiting fulfilled requests, and answering
// availability questions through the compatibility table.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"bloodbank/internal/compat"
	"bloodbank/internal/inventory"
	"bloodbank/internal/inventory/metrics"
	"bloodbank/internal/inventory/store"
	id "bloodbank/pkg/domain"
	derrors "bloodbank/pkg/domain-errors"
	"bloodbank/pkg/platform/sentinel"
	"bloodbank/pkg/requestcontext"
)

// Store is the ledger persistence the service depends on. Implementations
// must make Debit atomic: the stock check and the decrement land together or
// not at all.
type Store interface {
	Get(ctx context.Context, bloodType id.BloodType) (*inventory.Record, error)
	List(ctx context.Context) ([]inventory.Record, error)
	Credit(ctx context.Context, bloodType id.BloodType, amount int, updatedBy *id.UserID, now time.Time) (*inventory.Record, error)
	Debit(ctx context.Context, bloodType id.BloodType, amount int, now time.Time) (*inventory.Record, error)
}

// Cache holds availability reports between ledger mutations.
type Cache interface {
	Get(ctx context.Context, bloodType id.BloodType, amount int) (*inventory.AvailabilityReport, error)
	Set(ctx context.Context, report *inventory.AvailabilityReport) error
	Invalidate(ctx context.Context) error
}

type Service struct {
	store   Store
	cache   Cache
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func New(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// WithCache attaches an availability cache. Without one every check hits the
// ledger directly.
func (s *Service) WithCache(c Cache) *Service {
	s.cache = c
	return s
}

func (s *Service) WithMetrics(m *metrics.Metrics) *Service {
	s.metrics = m
	return s
}

func (s *Service) Get(ctx context.Context, bloodType id.BloodType) (*inventory.Record, error) {
	if err := validateBloodType(bloodType); err != nil {
		return nil, err
	}
	rec, err := s.store.Get(ctx, bloodType)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, derrors.Newf(derrors.CodeNotFound, "no inventory record for blood type %s", bloodType)
		}
		return nil, derrors.Wrap(err, derrors.CodeInternal, "get inventory record")
	}
	return rec, nil
}

func (s *Service) List(ctx context.Context) ([]inventory.Record, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "list inventory")
	}
	return records, nil
}

// Credit adds units to a blood type, creating the record if this is the first
// stock of that type.
func (s *Service) Credit(ctx context.Context, bloodType id.BloodType, amount int, updatedBy *id.UserID) (*inventory.Record, error) {
	if err := validateBloodType(bloodType); err != nil {
		return nil, err
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	rec, err := s.withRetry(ctx, func(ctx context.Context) (*inventory.Record, error) {
		return s.store.Credit(ctx, bloodType, amount, updatedBy, requestcontext.Now(ctx))
	})
	if err != nil {
		return nil, s.translateMutationErr(err, bloodType, amount, "credit inventory")
	}

	s.metrics.Credit(string(bloodType), amount, rec.Quantity)
	s.invalidateCache(ctx)
	s.logger.InfoContext(ctx, "inventory credited",
		"blood_type", bloodType, "amount", amount, "quantity", rec.Quantity)
	return rec, nil
}

// Debit removes units from a blood type. A debit that would push the quantity
// below zero is rejected whole with CodeInsufficientStock.
func (s *Service) Debit(ctx context.Context, bloodType id.BloodType, amount int) (*inventory.Record, error) {
	if err := validateBloodType(bloodType); err != nil {
		return nil, err
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	rec, err := s.withRetry(ctx, func(ctx context.Context) (*inventory.Record, error) {
		return s.store.Debit(ctx, bloodType, amount, requestcontext.Now(ctx))
	})
	if err != nil {
		if errors.Is(err, inventory.ErrInsufficientStock) {
			s.metrics.InsufficientStock(string(bloodType))
		}
		return nil, s.translateMutationErr(err, bloodType, amount, "debit inventory")
	}

	s.metrics.Debit(string(bloodType), amount, rec.Quantity)
	s.invalidateCache(ctx)
	s.logger.InfoContext(ctx, "inventory debited",
		"blood_type", bloodType, "amount", amount, "quantity", rec.Quantity)
	return rec, nil
}

// CheckAvailability reports whether a request for amount units of bloodType
// can be served directly, and which compatible types could substitute if not.
func (s *Service) CheckAvailability(ctx context.Context, bloodType id.BloodType, amount int) (*inventory.AvailabilityReport, error) {
	if err := validateBloodType(bloodType); err != nil {
		return nil, err
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if report, err := s.cache.Get(ctx, bloodType, amount); err == nil {
			s.metrics.CacheLookup(true)
			return report, nil
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "availability cache read failed", "error", err)
		}
		s.metrics.CacheLookup(false)
	}

	// The direct lookup and the full snapshot are independent reads.
	var (
		requested *inventory.Record
		records   []inventory.Record
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rec, err := s.store.Get(gctx, bloodType)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil
			}
			return fmt.Errorf("get requested type: %w", err)
		}
		requested = rec
		return nil
	})
	g.Go(func() error {
		var err error
		records, err = s.store.List(gctx)
		if err != nil {
			return fmt.Errorf("list inventory: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "check availability")
	}

	report, err := buildReport(bloodType, amount, requested, records)
	if err != nil {
		return nil, err
	}

	s.metrics.AvailabilityCheck(report.IsAvailable)
	if s.cache != nil {
		if err := s.cache.Set(ctx, report); err != nil {
			s.logger.WarnContext(ctx, "availability cache write failed", "error", err)
		}
	}
	return report, nil
}

func buildReport(bloodType id.BloodType, amount int, requested *inventory.Record, records []inventory.Record) (*inventory.AvailabilityReport, error) {
	donors, err := compat.CompatibleDonors(bloodType)
	if err != nil {
		return nil, err
	}
	substitutes, err := compat.AvailableSubstitutes(bloodType, inventory.Snapshot(records))
	if err != nil {
		return nil, err
	}

	var onHand int
	if requested != nil {
		onHand = requested.Quantity
	}

	report := &inventory.AvailabilityReport{
		BloodType:                bloodType,
		RequestedAmount:          amount,
		IsAvailable:              onHand >= amount,
		AvailableQuantity:        onHand,
		AllCompatibleTypes:       donors,
		AvailableCompatibleTypes: substitutes,
	}
	report.Message = availabilityMessage(report)
	return report, nil
}

func availabilityMessage(r *inventory.AvailabilityReport) string {
	if r.IsAvailable {
		return fmt.Sprintf("Blood type %s is available with %d units in stock", r.BloodType, r.AvailableQuantity)
	}
	if len(r.AvailableCompatibleTypes) == 0 {
		return fmt.Sprintf("Blood type %s is not available and no compatible blood types are in stock", r.BloodType)
	}
	parts := make([]string, 0, len(r.AvailableCompatibleTypes))
	for _, alt := range r.AvailableCompatibleTypes {
		parts = append(parts, fmt.Sprintf("%s (%d)", alt.BloodType, alt.Quantity))
	}
	return fmt.Sprintf("Blood type %s is not sufficiently stocked. Compatible blood types available: %s",
		r.BloodType, strings.Join(parts, ", "))
}

// withRetry runs a ledger mutation, retrying exactly once when the store
// reports a lock timeout. A second timeout surfaces as CodeTimeout.
func (s *Service) withRetry(ctx context.Context, fn func(ctx context.Context) (*inventory.Record, error)) (*inventory.Record, error) {
	rec, err := fn(ctx)
	if err == nil || !errors.Is(err, store.ErrLockTimeout) {
		return rec, err
	}
	s.logger.WarnContext(ctx, "inventory lock contended, retrying once")
	return fn(ctx)
}

func (s *Service) translateMutationErr(err error, bloodType id.BloodType, amount int, op string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return derrors.Newf(derrors.CodeNotFound, "no inventory record for blood type %s", bloodType)
	case errors.Is(err, inventory.ErrInsufficientStock):
		return derrors.Newf(derrors.CodeInsufficientStock,
			"insufficient stock of %s: requested %d units", bloodType, amount)
	case errors.Is(err, store.ErrLockTimeout):
		return derrors.Wrap(err, derrors.CodeTimeout, op)
	default:
		return derrors.Wrap(err, derrors.CodeInternal, op)
	}
}

func (s *Service) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "availability cache invalidation failed", "error", err)
	}
}

func validateBloodType(bloodType id.BloodType) error {
	if !bloodType.IsValid() {
		return derrors.Newf(derrors.CodeInvalidInput, "invalid blood type %q", string(bloodType))
	}
	return nil
}

func validateAmount(amount int) error {
	if amount <= 0 {
		return derrors.New(derrors.CodeInvalidInput, "amount must be positive")
	}
	return nil
}
