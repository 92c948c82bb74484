// Package handler exposes donation locations and schedules over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"bloodbank/internal/location"
	"bloodbank/internal/location/service"
	"bloodbank/internal/platform/middleware"
	"bloodbank/internal/transport/http/shared"
	id "bloodbank/pkg/domain"
)

type Service interface {
	CreateLocation(ctx context.Context, in service.LocationInput) (*location.Location, error)
	GetLocation(ctx context.Context, locID id.LocationID) (*location.Location, error)
	ListLocations(ctx context.Context) ([]location.Location, error)
	UpdateLocation(ctx context.Context, locID id.LocationID, in service.LocationInput) (*location.Location, error)
	DeleteLocation(ctx context.Context, locID id.LocationID) error

	CreateSchedule(ctx context.Context, in service.ScheduleInput) (*location.Schedule, error)
	GetSchedule(ctx context.Context, schedID id.ScheduleID) (*location.Schedule, error)
	ListSchedules(ctx context.Context) ([]location.Schedule, error)
	DeleteSchedule(ctx context.Context, schedID id.ScheduleID) error
}

type Handler struct {
	locations    Service
	logger       *slog.Logger
	jwtValidator middleware.JWTValidator
}

func New(locations Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{locations: locations, logger: logger, jwtValidator: jwtValidator}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/locations", func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

		r.Get("/", h.handleListLocations)
		r.Get("/{locationID}", h.handleGetLocation)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(h.logger, id.RoleAdmin, id.RoleStaff))
			r.Post("/", h.handleCreateLocation)
			r.Patch("/{locationID}", h.handleUpdateLocation)
			r.Delete("/{locationID}", h.handleDeleteLocation)
		})
	})

	r.Route("/schedules", func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

		r.Get("/", h.handleListSchedules)
		r.Get("/{scheduleID}", h.handleGetSchedule)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(h.logger, id.RoleAdmin, id.RoleStaff))
			r.Post("/", h.handleCreateSchedule)
			r.Delete("/{scheduleID}", h.handleDeleteSchedule)
		})
	})
}

type locationRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

func (h *Handler) handleCreateLocation(w http.ResponseWriter, r *http.Request) {
	var body locationRequest
	if err := shared.DecodeJSON(r, &body); err != nil {
		shared.WriteError(w, err)
		return
	}

	loc, err := h.locations.CreateLocation(r.Context(), service.LocationInput{
		Name: body.Name, Address: body.Address, City: body.City, Phone: body.Phone,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, loc)
}

func (h *Handler) handleGetLocation(w http.ResponseWriter, r *http.Request) {
	locID, err := id.ParseLocationID(chi.URLParam(r, "locationID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	loc, err := h.locations.GetLocation(r.Context(), locID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, loc)
}

func (h *Handler) handleListLocations(w http.ResponseWriter, r *http.Request) {
	locs, err := h.locations.ListLocations(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if locs == nil {
		locs = []location.Location{}
	}
	shared.WriteJSON(w, http.StatusOK, locs)
}

func (h *Handler) handleUpdateLocation(w http.ResponseWriter, r *http.Request) {
	locID, err := id.ParseLocationID(chi.URLParam(r, "locationID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var body locationRequest
	if err := shared.DecodeJSON(r, &body); err != nil {
		shared.WriteError(w, err)
		return
	}

	loc, err := h.locations.UpdateLocation(r.Context(), locID, service.LocationInput{
		Name: body.Name, Address: body.Address, City: body.City, Phone: body.Phone,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, loc)
}

func (h *Handler) handleDeleteLocation(w http.ResponseWriter, r *http.Request) {
	locID, err := id.ParseLocationID(chi.URLParam(r, "locationID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.locations.DeleteLocation(r.Context(), locID); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type scheduleRequest struct {
	LocationID string    `json:"locationId"`
	EventDate  time.Time `json:"eventDate"`
	Capacity   int       `json:"capacity,omitempty"`
}

func (h *Handler) handleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	var body scheduleRequest
	if err := shared.DecodeJSON(r, &body); err != nil {
		shared.WriteError(w, err)
		return
	}

	locID, err := id.ParseLocationID(body.LocationID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	sched, err := h.locations.CreateSchedule(r.Context(), service.ScheduleInput{
		LocationID: locID, EventDate: body.EventDate, Capacity: body.Capacity,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, sched)
}

func (h *Handler) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	schedID, err := id.ParseScheduleID(chi.URLParam(r, "scheduleID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	sched, err := h.locations.GetSchedule(r.Context(), schedID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, sched)
}

func (h *Handler) handleListSchedules(w http.ResponseWriter, r *http.Request) {
	scheds, err := h.locations.ListSchedules(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if scheds == nil {
		scheds = []location.Schedule{}
	}
	shared.WriteJSON(w, http.StatusOK, scheds)
}

func (h *Handler) handleDeleteSchedule(w http.ResponseWriter, r *http.Request) {
	schedID, err := id.ParseScheduleID(chi.URLParam(r, "scheduleID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.locations.DeleteSchedule(r.Context(), schedID); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
