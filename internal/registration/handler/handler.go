// Package handler exposes donation registrations over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bloodbank/internal/eligibility"
	"bloodbank/internal/platform/middleware"
	"bloodbank/internal/registration"
	"bloodbank/internal/registration/service"
	"bloodbank/internal/transport/http/shared"
	id "bloodbank/pkg/domain"
	derrors "bloodbank/pkg/domain-errors"
	"bloodbank/pkg/requestcontext"
)

type Service interface {
	Create(ctx context.Context, donorID id.UserID, in service.CreateInput) (*registration.Registration, error)
	Confirm(ctx context.Context, regID id.RegistrationID, approverID id.UserID) (*registration.Registration, error)
	Cancel(ctx context.Context, regID id.RegistrationID) (*registration.Registration, error)
	Get(ctx context.Context, regID id.RegistrationID) (*registration.Registration, error)
	List(ctx context.Context) ([]registration.Registration, error)
	ListByDonor(ctx context.Context, donorID id.UserID) ([]registration.Registration, error)
}

type Handler struct {
	registrations Service
	logger        *slog.Logger
	jwtValidator  middleware.JWTValidator
}

func New(registrations Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{registrations: registrations, logger: logger, jwtValidator: jwtValidator}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/registrations", func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

		r.Post("/", h.handleCreate)
		r.Get("/mine", h.handleListMine)
		r.Get("/{registrationID}", h.handleGet)
		r.Post("/{registrationID}/cancel", h.handleCancel)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(h.logger, id.RoleAdmin, id.RoleStaff))
			r.Get("/", h.handleList)
			r.Post("/{registrationID}/confirm", h.handleConfirm)
		})
	})
}

type createRequest struct {
	ScheduleID *string              `json:"scheduleId,omitempty"`
	Amount     int                  `json:"amount,omitempty"`
	Screening  eligibility.Snapshot `json:"screening"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	in := service.CreateInput{Amount: req.Amount, Screening: req.Screening}
	if req.ScheduleID != nil {
		scheduleID, err := id.ParseScheduleID(*req.ScheduleID)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		in.ScheduleID = &scheduleID
	}

	reg, err := h.registrations.Create(r.Context(), requestcontext.UserID(r.Context()), in)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, reg)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reg, ok := h.loadAuthorized(w, r)
	if !ok {
		return
	}
	shared.WriteJSON(w, http.StatusOK, reg)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	regs, err := h.registrations.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, regs)
}

func (h *Handler) handleListMine(w http.ResponseWriter, r *http.Request) {
	regs, err := h.registrations.ListByDonor(r.Context(), requestcontext.UserID(r.Context()))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if regs == nil {
		regs = []registration.Registration{}
	}
	shared.WriteJSON(w, http.StatusOK, regs)
}

func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	regID, err := id.ParseRegistrationID(chi.URLParam(r, "registrationID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	reg, err := h.registrations.Confirm(r.Context(), regID, requestcontext.UserID(r.Context()))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, reg)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	reg, ok := h.loadAuthorized(w, r)
	if !ok {
		return
	}

	cancelled, err := h.registrations.Cancel(r.Context(), reg.ID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, cancelled)
}

// loadAuthorized fetches the registration and enforces that donors only see
// their own; staff-side roles see everything.
func (h *Handler) loadAuthorized(w http.ResponseWriter, r *http.Request) (*registration.Registration, bool) {
	regID, err := id.ParseRegistrationID(chi.URLParam(r, "registrationID"))
	if err != nil {
		shared.WriteError(w, err)
		return nil, false
	}

	reg, err := h.registrations.Get(r.Context(), regID)
	if err != nil {
		shared.WriteError(w, err)
		return nil, false
	}

	ctx := r.Context()
	if requestcontext.Role(ctx) == id.RoleDonor && reg.DonorID != requestcontext.UserID(ctx) {
		shared.WriteError(w, derrors.New(derrors.CodeForbidden, "not your registration"))
		return nil, false
	}
	return reg, true
}
