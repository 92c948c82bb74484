// Package service implements the donation registration flow: eligibility
// screening at intake, atomic confirmation crediting the inventory ledger,
// and idempotent cancellation.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"bloodbank/internal/eligibility"
	"bloodbank/internal/inventory"
	invstore "bloodbank/internal/inventory/store"
	"bloodbank/internal/notify"
	"bloodbank/internal/registration"
	"bloodbank/internal/registration/metrics"
	"bloodbank/internal/user"
	id "bloodbank/pkg/domain"
	derrors "bloodbank/pkg/domain-errors"
	"bloodbank/pkg/platform/sentinel"
	"bloodbank/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, reg registration.Registration) error
	Get(ctx context.Context, regID id.RegistrationID) (*registration.Registration, error)
	List(ctx context.Context) ([]registration.Registration, error)
	ListByDonor(ctx context.Context, donorID id.UserID) ([]registration.Registration, error)
	UpdateStatus(ctx context.Context, regID id.RegistrationID, from, to registration.Status, by *id.UserID, at time.Time) error
}

// InventoryStore is the slice of the ledger the confirmation path needs.
type InventoryStore interface {
	Credit(ctx context.Context, bloodType id.BloodType, amount int, updatedBy *id.UserID, now time.Time) (*inventory.Record, error)
}

// TxRunner executes the confirmation atomically: the status transition and the
// inventory credit land together or not at all.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(regs Store, inv InventoryStore) error) error
}

// DonorDirectory resolves the donor profile the eligibility rules need.
type DonorDirectory interface {
	Get(ctx context.Context, userID id.UserID) (*user.User, error)
}

// Notifications records and delivers user notifications.
type Notifications interface {
	Send(ctx context.Context, userID id.UserID, subject, body string) (*notify.Notification, error)
}

type Service struct {
	store         Store
	tx            TxRunner
	donors        DonorDirectory
	notifications Notifications
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

func New(store Store, tx TxRunner, donors DonorDirectory, notifications Notifications, logger *slog.Logger) *Service {
	return &Service{
		store:         store,
		tx:            tx,
		donors:        donors,
		notifications: notifications,
		logger:        logger,
	}
}

func (s *Service) WithMetrics(m *metrics.Metrics) *Service {
	s.metrics = m
	return s
}

type CreateInput struct {
	ScheduleID *id.ScheduleID
	// Amount of units pledged; defaults to 1.
	Amount    int
	Screening eligibility.Snapshot
}

// Create screens the submission and stores it as Pending. Ineligible
// submissions are rejected with every failing rule in the message; warnings
// ride along on the stored registration and trigger an advisory notification.
func (s *Service) Create(ctx context.Context, donorID id.UserID, in CreateInput) (*registration.Registration, error) {
	donor, err := s.donors.Get(ctx, donorID)
	if err != nil {
		return nil, err
	}

	snapshot := in.Screening
	if strings.TrimSpace(snapshot.BloodType) == "" && donor.BloodType != "" {
		snapshot.BloodType = string(donor.BloodType)
	}

	amount := in.Amount
	if amount == 0 {
		amount = 1
	}
	if amount < 0 {
		return nil, derrors.New(derrors.CodeInvalidInput, "amount must be positive")
	}

	now := requestcontext.Now(ctx)
	result := eligibility.Evaluate(snapshot, eligibility.DonorProfile{Gender: donor.Gender}, now)
	s.metrics.Intake(result.Eligible)
	if !result.Eligible {
		return nil, derrors.Newf(derrors.CodeValidation,
			"not eligible to donate: %s", strings.Join(result.Errors, "; "))
	}

	bloodType, err := id.ParseBloodType(snapshot.BloodType)
	if err != nil {
		return nil, err
	}

	reg := registration.Registration{
		ID:         id.NewRegistrationID(),
		DonorID:    donorID,
		ScheduleID: in.ScheduleID,
		Status:     registration.StatusPending,
		BloodType:  bloodType,
		Amount:     amount,
		Screening:  snapshot,
		Warnings:   result.Warnings,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Create(ctx, reg); err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "create registration")
	}

	if len(result.Warnings) > 0 {
		s.sendNotification(ctx, donorID, "Additional screening required",
			strings.Join(result.Warnings, "; "))
	}

	s.logger.InfoContext(ctx, "registration created",
		"registration_id", reg.ID, "donor_id", donorID, "blood_type", bloodType)
	return &reg, nil
}

// Confirm moves a Pending registration to Confirmed and credits the pledged
// units, atomically. Confirming twice is a conflict and never double-credits.
func (s *Service) Confirm(ctx context.Context, regID id.RegistrationID, approverID id.UserID) (*registration.Registration, error) {
	if _, err := s.donors.Get(ctx, approverID); err != nil {
		return nil, err
	}

	run := func() error {
		return s.tx.RunInTx(ctx, func(regs Store, inv InventoryStore) error {
			reg, err := regs.Get(ctx, regID)
			if err != nil {
				if errors.Is(err, sentinel.ErrNotFound) {
					return derrors.New(derrors.CodeNotFound, "registration not found")
				}
				return derrors.Wrap(err, derrors.CodeInternal, "get registration")
			}
			switch reg.Status {
			case registration.StatusConfirmed:
				return derrors.New(derrors.CodeConflict, "registration already confirmed")
			case registration.StatusCancelled:
				return derrors.New(derrors.CodeConflict, "cannot confirm a cancelled registration")
			}

			now := requestcontext.Now(ctx)
			if _, err := inv.Credit(ctx, reg.BloodType, reg.Amount, &approverID, now); err != nil {
				if errors.Is(err, invstore.ErrLockTimeout) {
					return derrors.Wrap(err, derrors.CodeTimeout, "credit inventory")
				}
				return derrors.Wrap(err, derrors.CodeInternal, "credit inventory")
			}
			err = regs.UpdateStatus(ctx, regID, registration.StatusPending, registration.StatusConfirmed, &approverID, now)
			if errors.Is(err, sentinel.ErrInvalidState) {
				return derrors.New(derrors.CodeConflict, "registration already confirmed")
			}
			if err != nil {
				return derrors.Wrap(err, derrors.CodeInternal, "confirm registration")
			}
			return nil
		})
	}

	if err := s.withRetry(ctx, run); err != nil {
		return nil, err
	}

	reg, err := s.Get(ctx, regID)
	if err != nil {
		return nil, err
	}

	s.metrics.Confirmed()
	s.sendNotification(ctx, reg.DonorID, "Donation confirmed",
		"Thank you for donating. Your registration has been confirmed and the units added to stock.")
	s.logger.InfoContext(ctx, "registration confirmed",
		"registration_id", regID, "approver_id", approverID)
	return reg, nil
}

// Cancel marks a Pending registration Cancelled. Cancelling an already
// cancelled registration is a no-op; a confirmed one cannot be cancelled.
func (s *Service) Cancel(ctx context.Context, regID id.RegistrationID) (*registration.Registration, error) {
	reg, err := s.Get(ctx, regID)
	if err != nil {
		return nil, err
	}
	switch reg.Status {
	case registration.StatusCancelled:
		return reg, nil
	case registration.StatusConfirmed:
		return nil, derrors.New(derrors.CodeConflict, "cannot cancel a confirmed registration")
	}

	err = s.store.UpdateStatus(ctx, regID, registration.StatusPending, registration.StatusCancelled, nil, requestcontext.Now(ctx))
	if err != nil {
		if errors.Is(err, sentinel.ErrInvalidState) {
			// Lost a race; re-read to distinguish cancel (idempotent) from confirm.
			reg, err := s.Get(ctx, regID)
			if err != nil {
				return nil, err
			}
			if reg.Status == registration.StatusCancelled {
				return reg, nil
			}
			return nil, derrors.New(derrors.CodeConflict, "cannot cancel a confirmed registration")
		}
		return nil, derrors.Wrap(err, derrors.CodeInternal, "cancel registration")
	}

	s.metrics.Cancelled()
	s.sendNotification(ctx, reg.DonorID, "Registration cancelled",
		"Your donation registration has been cancelled.")
	s.logger.InfoContext(ctx, "registration cancelled", "registration_id", regID)
	return s.Get(ctx, regID)
}

func (s *Service) Get(ctx context.Context, regID id.RegistrationID) (*registration.Registration, error) {
	reg, err := s.store.Get(ctx, regID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, derrors.New(derrors.CodeNotFound, "registration not found")
		}
		return nil, derrors.Wrap(err, derrors.CodeInternal, "get registration")
	}
	return reg, nil
}

func (s *Service) List(ctx context.Context) ([]registration.Registration, error) {
	regs, err := s.store.List(ctx)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "list registrations")
	}
	return regs, nil
}

func (s *Service) ListByDonor(ctx context.Context, donorID id.UserID) ([]registration.Registration, error) {
	regs, err := s.store.ListByDonor(ctx, donorID)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "list registrations")
	}
	return regs, nil
}

// withRetry runs the operation again exactly once when it failed on a lock
// timeout; contended confirmations usually succeed on the second attempt.
func (s *Service) withRetry(ctx context.Context, run func() error) error {
	err := run()
	if err == nil || !derrors.Retryable(err) {
		return err
	}
	s.logger.WarnContext(ctx, "confirmation contended, retrying once")
	return run()
}

func (s *Service) sendNotification(ctx context.Context, userID id.UserID, subject, body string) {
	if s.notifications == nil {
		return
	}
	if _, err := s.notifications.Send(ctx, userID, subject, body); err != nil {
		s.logger.WarnContext(ctx, "notification failed", "user_id", userID, "error", err)
	}
}
