// Package handler exposes in-app notifications over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bloodbank/internal/notify"
	"bloodbank/internal/platform/middleware"
	"bloodbank/internal/transport/http/shared"
	id "bloodbank/pkg/domain"
	"bloodbank/pkg/requestcontext"
)

type Service interface {
	ListForUser(ctx context.Context, userID id.UserID) ([]notify.Notification, error)
	MarkRead(ctx context.Context, notificationID id.NotificationID, userID id.UserID) error
}

type Handler struct {
	notifications Service
	logger        *slog.Logger
	jwtValidator  middleware.JWTValidator
}

func New(notifications Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{notifications: notifications, logger: logger, jwtValidator: jwtValidator}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Get("/", h.handleList)
		r.Post("/{notificationID}/read", h.handleMarkRead)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	userID := requestcontext.UserID(r.Context())
	list, err := h.notifications.ListForUser(r.Context(), userID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if list == nil {
		list = []notify.Notification{}
	}
	shared.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	notificationID, err := id.ParseNotificationID(chi.URLParam(r, "notificationID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	userID := requestcontext.UserID(r.Context())
	if err := h.notifications.MarkRead(r.Context(), notificationID, userID); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
