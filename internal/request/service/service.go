// Package service implements blood request fulfillment: atomic debit of the
// inventory ledger with compatible-substitute support, and the administrative
// priority / out-of-stock relabels.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"bloodbank/internal/compat"
	"bloodbank/internal/inventory"
	invstore "bloodbank/internal/inventory/store"
	"bloodbank/internal/notify"
	"bloodbank/internal/request"
	"bloodbank/internal/request/metrics"
	id "bloodbank/pkg/domain"
	derrors "bloodbank/pkg/domain-errors"
	"bloodbank/pkg/platform/sentinel"
	"bloodbank/pkg/requestcontext"
)

const tracerName = "bloodbank/request"

type Store interface {
	Create(ctx context.Context, req request.Request) error
	Get(ctx context.Context, reqID id.RequestID) (*request.Request, error)
	List(ctx context.Context) ([]request.Request, error)
	ListByRequester(ctx context.Context, requesterID id.UserID) ([]request.Request, error)
	Fulfill(ctx context.Context, reqID id.RequestID, fulfilledWith id.BloodType, by id.UserID, at time.Time) error
	SetStatus(ctx context.Context, reqID id.RequestID, to request.Status, by *id.UserID, at time.Time) error
}

// InventoryStore is the slice of the ledger the fulfillment path needs: the
// snapshot that decides which substitutes qualify, and the debit itself.
type InventoryStore interface {
	List(ctx context.Context) ([]inventory.Record, error)
	Debit(ctx context.Context, bloodType id.BloodType, amount int, now time.Time) (*inventory.Record, error)
}

// TxRunner executes the fulfillment atomically: the debit and the status
// transition land together or not at all.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(reqs Store, inv InventoryStore) error) error
}

// Notifications records and delivers user notifications.
type Notifications interface {
	Send(ctx context.Context, userID id.UserID, subject, body string) (*notify.Notification, error)
}

type Service struct {
	store         Store
	tx            TxRunner
	notifications Notifications
	metrics       *metrics.Metrics
	tracer        trace.Tracer
	logger        *slog.Logger
}

func New(store Store, tx TxRunner, notifications Notifications, logger *slog.Logger) *Service {
	return &Service{
		store:         store,
		tx:            tx,
		notifications: notifications,
		tracer:        otel.Tracer(tracerName),
		logger:        logger,
	}
}

func (s *Service) WithMetrics(m *metrics.Metrics) *Service {
	s.metrics = m
	return s
}

type CreateInput struct {
	PatientName string
	BloodType   id.BloodType
	Amount      int
	Urgency     request.Urgency
	Note        string
}

func (s *Service) Create(ctx context.Context, requesterID id.UserID, in CreateInput) (*request.Request, error) {
	if strings.TrimSpace(in.PatientName) == "" {
		return nil, derrors.New(derrors.CodeInvalidInput, "patient name is required")
	}
	if _, err := id.ParseBloodType(string(in.BloodType)); err != nil {
		return nil, err
	}
	if in.Amount <= 0 {
		return nil, derrors.New(derrors.CodeInvalidInput, "amount must be positive")
	}
	urgency := in.Urgency
	if urgency == "" {
		urgency = request.UrgencyNormal
	}
	if !urgency.IsValid() {
		return nil, derrors.Newf(derrors.CodeInvalidInput, "unknown urgency %q", urgency)
	}

	now := requestcontext.Now(ctx)
	req := request.Request{
		ID:          id.NewRequestID(),
		RequesterID: requesterID,
		PatientName: in.PatientName,
		BloodType:   in.BloodType,
		Amount:      in.Amount,
		Urgency:     urgency,
		Status:      request.StatusPending,
		Note:        in.Note,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, req); err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "create blood request")
	}

	s.logger.InfoContext(ctx, "blood request created",
		"request_id", req.ID, "requester_id", requesterID,
		"blood_type", req.BloodType, "amount", req.Amount, "urgency", urgency)
	return &req, nil
}

// ConfirmWithCompatibility fulfills the request by debiting stock, either of
// the requested type or of a compatible substitute the approver picked. The
// debit and the transition to Confirmed are one atomic unit; confirming an
// already confirmed request is a conflict and never debits twice.
//
// A confirm that arrives while the request is flagged Priority or OutOfStock
// does not touch stock: the flag means the queue position changed under the
// approver, so the request moves to Waiting for re-review instead.
func (s *Service) ConfirmWithCompatibility(ctx context.Context, reqID id.RequestID, alternative *id.BloodType, approverID id.UserID) (*request.Request, error) {
	ctx, span := s.tracer.Start(ctx, "request.fulfill",
		trace.WithAttributes(attribute.String("request.id", reqID.String())))
	defer span.End()

	if alternative != nil {
		if _, err := id.ParseBloodType(string(*alternative)); err != nil {
			return nil, err
		}
		span.SetAttributes(attribute.String("request.substitute", string(*alternative)))
	}

	var deferred bool
	run := func() error {
		deferred = false
		return s.tx.RunInTx(ctx, func(reqs Store, inv InventoryStore) error {
			req, err := reqs.Get(ctx, reqID)
			if err != nil {
				if errors.Is(err, sentinel.ErrNotFound) {
					return derrors.New(derrors.CodeNotFound, "blood request not found")
				}
				return derrors.Wrap(err, derrors.CodeInternal, "get blood request")
			}
			if req.Status == request.StatusConfirmed {
				return derrors.New(derrors.CodeConflict, "request already confirmed")
			}

			now := requestcontext.Now(ctx)
			if !req.Status.Confirmable() {
				if err := reqs.SetStatus(ctx, reqID, request.StatusWaiting, &approverID, now); err != nil {
					return derrors.Wrap(err, derrors.CodeInternal, "queue request for review")
				}
				deferred = true
				return nil
			}

			target := req.BloodType
			if alternative != nil && *alternative != req.BloodType {
				if err := s.checkSubstitute(ctx, inv, req.BloodType, *alternative); err != nil {
					return err
				}
				target = *alternative
			}

			if _, err := inv.Debit(ctx, target, req.Amount, now); err != nil {
				switch {
				case errors.Is(err, sentinel.ErrNotFound):
					return derrors.Newf(derrors.CodeNotFound, "no stock record for blood type %s", target)
				case errors.Is(err, inventory.ErrInsufficientStock):
					return derrors.Newf(derrors.CodeInsufficientStock,
						"not enough %s stock to fulfill %d units", target, req.Amount)
				case errors.Is(err, invstore.ErrLockTimeout):
					return derrors.Wrap(err, derrors.CodeTimeout, "debit inventory")
				default:
					return derrors.Wrap(err, derrors.CodeInternal, "debit inventory")
				}
			}

			err = reqs.Fulfill(ctx, reqID, target, approverID, now)
			if errors.Is(err, sentinel.ErrInvalidState) {
				return derrors.New(derrors.CodeConflict, "request already confirmed")
			}
			if err != nil {
				return derrors.Wrap(err, derrors.CodeInternal, "fulfill blood request")
			}
			return nil
		})
	}

	if err := s.withRetry(ctx, run); err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		s.metrics.Fulfillment(fulfillmentOutcome(err))
		return nil, err
	}

	req, err := s.Get(ctx, reqID)
	if err != nil {
		return nil, err
	}

	if deferred {
		span.SetAttributes(attribute.String("request.outcome", metrics.OutcomeDeferred))
		s.metrics.Fulfillment(metrics.OutcomeDeferred)
		s.sendNotification(ctx, req.RequesterID, "Request needs re-review",
			fmt.Sprintf("Your request for patient %s was flagged while being processed and has been queued for re-review.", req.PatientName))
		s.logger.InfoContext(ctx, "blood request deferred for re-review",
			"request_id", reqID, "approver_id", approverID)
		return req, nil
	}

	outcome := metrics.OutcomeConfirmed
	body := fmt.Sprintf("Your request for patient %s has been fulfilled with %d units of %s.",
		req.PatientName, req.Amount, req.BloodType)
	if req.FulfilledWith != nil && *req.FulfilledWith != req.BloodType {
		outcome = metrics.OutcomeSubstituted
		body = fmt.Sprintf("Your request for patient %s has been fulfilled with %d units of compatible type %s.",
			req.PatientName, req.Amount, *req.FulfilledWith)
	}
	span.SetAttributes(attribute.String("request.outcome", outcome))
	s.metrics.Fulfillment(outcome)
	s.sendNotification(ctx, req.RequesterID, "Blood request fulfilled", body)
	s.logger.InfoContext(ctx, "blood request fulfilled",
		"request_id", reqID, "approver_id", approverID, "fulfilled_with", req.FulfilledWith)
	return req, nil
}

// checkSubstitute verifies the approver's pick against the current snapshot:
// it must be a compatible donor type for the recipient and have stock on hand.
func (s *Service) checkSubstitute(ctx context.Context, inv InventoryStore, recipient, substitute id.BloodType) error {
	records, err := inv.List(ctx)
	if err != nil {
		return derrors.Wrap(err, derrors.CodeInternal, "list inventory")
	}
	substitutes, err := compat.AvailableSubstitutes(recipient, inventory.Snapshot(records))
	if err != nil {
		return err
	}
	for _, candidate := range substitutes {
		if candidate.BloodType == substitute {
			return nil
		}
	}
	return derrors.Newf(derrors.CodeIncompatibleSubstitute,
		"%s is not an available substitute for %s", substitute, recipient)
}

// MarkPriority flags the request for priority handling. The label is
// administrative: it never touches inventory and applies from any status.
func (s *Service) MarkPriority(ctx context.Context, reqID id.RequestID, staffID id.UserID) (*request.Request, error) {
	return s.relabel(ctx, reqID, request.StatusPriority, staffID,
		"Request prioritized", "Your blood request has been flagged as priority.")
}

// MarkOutOfStock flags the request as unfulfillable with current stock.
func (s *Service) MarkOutOfStock(ctx context.Context, reqID id.RequestID, staffID id.UserID) (*request.Request, error) {
	return s.relabel(ctx, reqID, request.StatusOutOfStock, staffID,
		"Request out of stock", "Your blood request cannot be fulfilled with current stock. It stays in the queue and will be revisited when stock arrives.")
}

func (s *Service) relabel(ctx context.Context, reqID id.RequestID, to request.Status, staffID id.UserID, subject, body string) (*request.Request, error) {
	err := s.store.SetStatus(ctx, reqID, to, &staffID, requestcontext.Now(ctx))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, derrors.New(derrors.CodeNotFound, "blood request not found")
		}
		return nil, derrors.Wrap(err, derrors.CodeInternal, "relabel blood request")
	}

	req, err := s.Get(ctx, reqID)
	if err != nil {
		return nil, err
	}

	s.metrics.Relabel(string(to))
	s.sendNotification(ctx, req.RequesterID, subject, body)
	s.logger.InfoContext(ctx, "blood request relabelled",
		"request_id", reqID, "status", to, "staff_id", staffID)
	return req, nil
}

func (s *Service) Get(ctx context.Context, reqID id.RequestID) (*request.Request, error) {
	req, err := s.store.Get(ctx, reqID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, derrors.New(derrors.CodeNotFound, "blood request not found")
		}
		return nil, derrors.Wrap(err, derrors.CodeInternal, "get blood request")
	}
	return req, nil
}

func (s *Service) List(ctx context.Context) ([]request.Request, error) {
	reqs, err := s.store.List(ctx)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "list blood requests")
	}
	return reqs, nil
}

func (s *Service) ListByRequester(ctx context.Context, requesterID id.UserID) ([]request.Request, error) {
	reqs, err := s.store.ListByRequester(ctx, requesterID)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "list blood requests")
	}
	return reqs, nil
}

// withRetry runs the operation again exactly once when it failed on a lock
// timeout; contended fulfillments usually succeed on the second attempt.
func (s *Service) withRetry(ctx context.Context, run func() error) error {
	err := run()
	if err == nil || !derrors.Retryable(err) {
		return err
	}
	s.logger.WarnContext(ctx, "fulfillment contended, retrying once")
	return run()
}

func fulfillmentOutcome(err error) string {
	switch {
	case derrors.HasCode(err, derrors.CodeInsufficientStock):
		return metrics.OutcomeInsufficient
	case derrors.HasCode(err, derrors.CodeIncompatibleSubstitute):
		return metrics.OutcomeIncompatible
	case derrors.HasCode(err, derrors.CodeConflict):
		return metrics.OutcomeConflict
	default:
		return "error"
	}
}

func (s *Service) sendNotification(ctx context.Context, userID id.UserID, subject, body string) {
	if s.notifications == nil {
		return
	}
	if _, err := s.notifications.Send(ctx, userID, subject, body); err != nil {
		s.logger.WarnContext(ctx, "notification failed", "user_id", userID, "error", err)
	}
}
