// Package handler exposes recipient records over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bloodbank/internal/platform/middleware"
	"bloodbank/internal/recipient"
	"bloodbank/internal/recipient/service"
	"bloodbank/internal/transport/http/shared"
	id "bloodbank/pkg/domain"
)

type Service interface {
	Create(ctx context.Context, in service.Input) (*recipient.Recipient, error)
	Get(ctx context.Context, recipientID id.RecipientID) (*recipient.Recipient, error)
	List(ctx context.Context) ([]recipient.Recipient, error)
}

type Handler struct {
	recipients   Service
	logger       *slog.Logger
	jwtValidator middleware.JWTValidator
}

func New(recipients Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{recipients: recipients, logger: logger, jwtValidator: jwtValidator}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/recipients", func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Use(middleware.RequireRole(h.logger, id.RoleMedicalCenter, id.RoleAdmin, id.RoleStaff))

		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Get("/{recipientID}", h.handleGet)
	})
}

type recipientRequest struct {
	Name      string  `json:"name"`
	Age       int     `json:"age"`
	BloodType string  `json:"bloodType"`
	Gender    string  `json:"gender,omitempty"`
	HeightCm  float64 `json:"heightCm,omitempty"`
	WeightKg  float64 `json:"weightKg,omitempty"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var body recipientRequest
	if err := shared.DecodeJSON(r, &body); err != nil {
		shared.WriteError(w, err)
		return
	}

	rec, err := h.recipients.Create(r.Context(), service.Input{
		Name:      body.Name,
		Age:       body.Age,
		BloodType: body.BloodType,
		Gender:    body.Gender,
		HeightCm:  body.HeightCm,
		WeightKg:  body.WeightKg,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, rec)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	recipientID, err := id.ParseRecipientID(chi.URLParam(r, "recipientID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	rec, err := h.recipients.Get(r.Context(), recipientID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	recipients, err := h.recipients.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if recipients == nil {
		recipients = []recipient.Recipient{}
	}
	shared.WriteJSON(w, http.StatusOK, recipients)
}
