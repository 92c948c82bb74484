// Package handler exposes the disease lookup table over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bloodbank/internal/disease"
	"bloodbank/internal/disease/service"
	"bloodbank/internal/platform/middleware"
	"bloodbank/internal/transport/http/shared"
	id "bloodbank/pkg/domain"
)

type Service interface {
	Create(ctx context.Context, in service.Input) (*disease.Disease, error)
	Get(ctx context.Context, diseaseID id.DiseaseID) (*disease.Disease, error)
	List(ctx context.Context) ([]disease.Disease, error)
	Update(ctx context.Context, diseaseID id.DiseaseID, in service.Input) (*disease.Disease, error)
	Delete(ctx context.Context, diseaseID id.DiseaseID) error
}

type Handler struct {
	diseases     Service
	logger       *slog.Logger
	jwtValidator middleware.JWTValidator
}

func New(diseases Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{diseases: diseases, logger: logger, jwtValidator: jwtValidator}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/diseases", func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

		r.Get("/", h.handleList)
		r.Get("/{diseaseID}", h.handleGet)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(h.logger, id.RoleAdmin, id.RoleStaff))
			r.Post("/", h.handleCreate)
			r.Put("/{diseaseID}", h.handleUpdate)
			r.Delete("/{diseaseID}", h.handleDelete)
		})
	})
}

type diseaseRequest struct {
	Name              string `json:"name"`
	Description       string `json:"description,omitempty"`
	BlocksDonation    bool   `json:"blocksDonation"`
	RequiresScreening bool   `json:"requiresScreening"`
}

func (r diseaseRequest) input() service.Input {
	return service.Input{
		Name:              r.Name,
		Description:       r.Description,
		BlocksDonation:    r.BlocksDonation,
		RequiresScreening: r.RequiresScreening,
	}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var body diseaseRequest
	if err := shared.DecodeJSON(r, &body); err != nil {
		shared.WriteError(w, err)
		return
	}

	d, err := h.diseases.Create(r.Context(), body.input())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, d)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	diseaseID, err := id.ParseDiseaseID(chi.URLParam(r, "diseaseID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	d, err := h.diseases.Get(r.Context(), diseaseID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	diseases, err := h.diseases.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if diseases == nil {
		diseases = []disease.Disease{}
	}
	shared.WriteJSON(w, http.StatusOK, diseases)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	diseaseID, err := id.ParseDiseaseID(chi.URLParam(r, "diseaseID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var body diseaseRequest
	if err := shared.DecodeJSON(r, &body); err != nil {
		shared.WriteError(w, err)
		return
	}

	d, err := h.diseases.Update(r.Context(), diseaseID, body.input())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	diseaseID, err := id.ParseDiseaseID(chi.URLParam(r, "diseaseID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.diseases.Delete(r.Context(), diseaseID); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
