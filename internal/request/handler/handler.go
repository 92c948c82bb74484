// Package handler exposes blood requests over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bloodbank/internal/platform/middleware"
	"bloodbank/internal/request"
	"bloodbank/internal/request/service"
	"bloodbank/internal/transport/http/shared"
	id "bloodbank/pkg/domain"
	derrors "bloodbank/pkg/domain-errors"
	"bloodbank/pkg/requestcontext"
)

type Service interface {
	Create(ctx context.Context, requesterID id.UserID, in service.CreateInput) (*request.Request, error)
	ConfirmWithCompatibility(ctx context.Context, reqID id.RequestID, alternative *id.BloodType, approverID id.UserID) (*request.Request, error)
	MarkPriority(ctx context.Context, reqID id.RequestID, staffID id.UserID) (*request.Request, error)
	MarkOutOfStock(ctx context.Context, reqID id.RequestID, staffID id.UserID) (*request.Request, error)
	Get(ctx context.Context, reqID id.RequestID) (*request.Request, error)
	List(ctx context.Context) ([]request.Request, error)
	ListByRequester(ctx context.Context, requesterID id.UserID) ([]request.Request, error)
}

type Handler struct {
	requests     Service
	logger       *slog.Logger
	jwtValidator middleware.JWTValidator
}

func New(requests Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{requests: requests, logger: logger, jwtValidator: jwtValidator}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/requests", func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

		r.Get("/mine", h.handleListMine)
		r.Get("/{requestID}", h.handleGet)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(h.logger, id.RoleMedicalCenter, id.RoleAdmin))
			r.Post("/", h.handleCreate)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(h.logger, id.RoleAdmin, id.RoleStaff))
			r.Get("/", h.handleList)
			r.Post("/{requestID}/confirm", h.handleConfirm)
			r.Post("/{requestID}/priority", h.handleMarkPriority)
			r.Post("/{requestID}/out-of-stock", h.handleMarkOutOfStock)
		})
	})
}

type createRequest struct {
	PatientName string `json:"patientName"`
	BloodType   string `json:"bloodType"`
	Amount      int    `json:"amount"`
	Urgency     string `json:"urgency,omitempty"`
	Note        string `json:"note,omitempty"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var body createRequest
	if err := shared.DecodeJSON(r, &body); err != nil {
		shared.WriteError(w, err)
		return
	}

	req, err := h.requests.Create(r.Context(), requestcontext.UserID(r.Context()), service.CreateInput{
		PatientName: body.PatientName,
		BloodType:   id.BloodType(body.BloodType),
		Amount:      body.Amount,
		Urgency:     request.Urgency(body.Urgency),
		Note:        body.Note,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, req)
}

type confirmRequest struct {
	// Substitute is the compatible blood type to debit instead of the
	// requested one; empty means fulfill with the requested type.
	Substitute string `json:"substitute,omitempty"`
}

func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	reqID, err := id.ParseRequestID(chi.URLParam(r, "requestID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var body confirmRequest
	if r.ContentLength > 0 {
		if err := shared.DecodeJSON(r, &body); err != nil {
			shared.WriteError(w, err)
			return
		}
	}
	var alternative *id.BloodType
	if body.Substitute != "" {
		t := id.BloodType(body.Substitute)
		alternative = &t
	}

	req, err := h.requests.ConfirmWithCompatibility(r.Context(), reqID, alternative, requestcontext.UserID(r.Context()))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) handleMarkPriority(w http.ResponseWriter, r *http.Request) {
	h.relabel(w, r, h.requests.MarkPriority)
}

func (h *Handler) handleMarkOutOfStock(w http.ResponseWriter, r *http.Request) {
	h.relabel(w, r, h.requests.MarkOutOfStock)
}

func (h *Handler) relabel(w http.ResponseWriter, r *http.Request, mark func(context.Context, id.RequestID, id.UserID) (*request.Request, error)) {
	reqID, err := id.ParseRequestID(chi.URLParam(r, "requestID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	req, err := mark(r.Context(), reqID, requestcontext.UserID(r.Context()))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID, err := id.ParseRequestID(chi.URLParam(r, "requestID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	req, err := h.requests.Get(r.Context(), reqID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	ctx := r.Context()
	switch requestcontext.Role(ctx) {
	case id.RoleAdmin, id.RoleStaff:
	default:
		if req.RequesterID != requestcontext.UserID(ctx) {
			shared.WriteError(w, derrors.New(derrors.CodeForbidden, "not your request"))
			return
		}
	}
	shared.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.requests.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, reqs)
}

func (h *Handler) handleListMine(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.requests.ListByRequester(r.Context(), requestcontext.UserID(r.Context()))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if reqs == nil {
		reqs = []request.Request{}
	}
	shared.WriteJSON(w, http.StatusOK, reqs)
}
