// Package handler exposes the inventory ledger over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"bloodbank/internal/inventory"
	"bloodbank/internal/platform/middleware"
	"bloodbank/internal/transport/http/shared"
	id "bloodbank/pkg/domain"
	derrors "bloodbank/pkg/domain-errors"
	"bloodbank/pkg/requestcontext"
)

// Service defines the inventory operations the handler delegates to.
type Service interface {
	Get(ctx context.Context, bloodType id.BloodType) (*inventory.Record, error)
	List(ctx context.Context) ([]inventory.Record, error)
	Credit(ctx context.Context, bloodType id.BloodType, amount int, updatedBy *id.UserID) (*inventory.Record, error)
	Debit(ctx context.Context, bloodType id.BloodType, amount int) (*inventory.Record, error)
	CheckAvailability(ctx context.Context, bloodType id.BloodType, amount int) (*inventory.AvailabilityReport, error)
}

type Handler struct {
	inventory    Service
	logger       *slog.Logger
	jwtValidator middleware.JWTValidator
}

func New(inventory Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		inventory:    inventory,
		logger:       logger,
		jwtValidator: jwtValidator,
	}
}

// Register mounts the inventory routes. Reads are open to any staff-side
// role; mutations require staff or admin.
func (h *Handler) Register(r chi.Router) {
	r.Route("/inventory", func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(h.logger, id.RoleAdmin, id.RoleStaff, id.RoleMedicalCenter))
			r.Get("/", h.handleList)
			r.Get("/{bloodType}", h.handleGet)
			r.Get("/{bloodType}/availability", h.handleCheckAvailability)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(h.logger, id.RoleAdmin, id.RoleStaff))
			r.Post("/credit", h.handleCredit)
			r.Post("/debit", h.handleDebit)
		})
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.inventory.List(r.Context())
	if err != nil {
		h.logError(r, "list inventory failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, records)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	bloodType := id.BloodType(chi.URLParam(r, "bloodType"))
	rec, err := h.inventory.Get(r.Context(), bloodType)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, rec)
}

type mutationRequest struct {
	BloodType string `json:"bloodType"`
	Amount    int    `json:"amount"`
}

func (h *Handler) handleCredit(w http.ResponseWriter, r *http.Request) {
	var req mutationRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	actor := requestcontext.UserID(r.Context())
	rec, err := h.inventory.Credit(r.Context(), id.BloodType(req.BloodType), req.Amount, &actor)
	if err != nil {
		h.logError(r, "credit inventory failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleDebit(w http.ResponseWriter, r *http.Request) {
	var req mutationRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	rec, err := h.inventory.Debit(r.Context(), id.BloodType(req.BloodType), req.Amount)
	if err != nil {
		h.logError(r, "debit inventory failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleCheckAvailability(w http.ResponseWriter, r *http.Request) {
	bloodType := id.BloodType(chi.URLParam(r, "bloodType"))

	amount := 1
	if raw := r.URL.Query().Get("amount"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			shared.WriteError(w, derrors.New(derrors.CodeBadRequest, "amount must be an integer"))
			return
		}
		amount = parsed
	}

	report, err := h.inventory.CheckAvailability(r.Context(), bloodType, amount)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) logError(r *http.Request, msg string, err error) {
	if derrors.CodeOf(err) != derrors.CodeInternal {
		return
	}
	h.logger.ErrorContext(r.Context(), msg,
		"error", err,
		"request_id", middleware.GetRequestID(r.Context()),
	)
}
