// Package handler exposes account registration, login and profile endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"bloodbank/internal/platform/middleware"
	"bloodbank/internal/transport/http/shared"
	"bloodbank/internal/user"
	"bloodbank/internal/user/service"
	id "bloodbank/pkg/domain"
	derrors "bloodbank/pkg/domain-errors"
	"bloodbank/pkg/requestcontext"
)

type Service interface {
	Register(ctx context.Context, in service.RegisterInput) (*user.User, error)
	Login(ctx context.Context, email, password string) (string, *user.User, error)
	Get(ctx context.Context, userID id.UserID) (*user.User, error)
	List(ctx context.Context) ([]user.User, error)
	Update(ctx context.Context, userID id.UserID, in service.UpdateInput) (*user.User, error)
	Delete(ctx context.Context, userID id.UserID) error
}

type Handler struct {
	users        Service
	logger       *slog.Logger
	jwtValidator middleware.JWTValidator
}

func New(users Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{users: users, logger: logger, jwtValidator: jwtValidator}
}

func (h *Handler) Register(r chi.Router) {
	// Public endpoints.
	r.Post("/auth/register", h.handleRegister)
	r.Post("/auth/login", h.handleLogin)

	r.Route("/users", func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

		r.Get("/me", h.handleGetMe)
		r.Patch("/me", h.handleUpdateMe)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(h.logger, id.RoleAdmin, id.RoleStaff))
			r.Get("/", h.handleList)
			r.Get("/{userID}", h.handleGet)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(h.logger, id.RoleAdmin))
			r.Post("/", h.handleCreate)
			r.Delete("/{userID}", h.handleDelete)
		})
	})
}

type registerRequest struct {
	Email       string     `json:"email"`
	Password    string     `json:"password"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Role        string     `json:"role,omitempty"`
	Gender      string     `json:"gender,omitempty"`
	BloodType   string     `json:"bloodType,omitempty"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Address     string     `json:"address,omitempty"`
}

func (r registerRequest) toInput() service.RegisterInput {
	return service.RegisterInput{
		Email:       r.Email,
		Password:    r.Password,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Role:        id.Role(r.Role),
		Gender:      id.Gender(r.Gender),
		BloodType:   id.BloodType(r.BloodType),
		DateOfBirth: r.DateOfBirth,
		Phone:       r.Phone,
		Address:     r.Address,
	}
}

// handleRegister is the public self-registration endpoint. It always creates
// donor accounts; privileged roles come from handleCreate.
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	in := req.toInput()
	in.Role = id.RoleDonor

	u, err := h.users.Register(r.Context(), in)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, u)
}

// handleCreate lets admins provision staff and medical center accounts.
func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	u, err := h.users.Register(r.Context(), req.toInput())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, u)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string     `json:"accessToken"`
	User        *user.User `json:"user"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	token, u, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, loginResponse{AccessToken: token, User: u})
}

func (h *Handler) handleGetMe(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Get(r.Context(), requestcontext.UserID(r.Context()))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, u)
}

type updateRequest struct {
	FirstName   *string    `json:"firstName,omitempty"`
	LastName    *string    `json:"lastName,omitempty"`
	Gender      *string    `json:"gender,omitempty"`
	BloodType   *string    `json:"bloodType,omitempty"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	Address     *string    `json:"address,omitempty"`
}

func (h *Handler) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	in := service.UpdateInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: req.DateOfBirth,
		Phone:       req.Phone,
		Address:     req.Address,
	}
	if req.Gender != nil {
		g := id.Gender(*req.Gender)
		in.Gender = &g
	}
	if req.BloodType != nil {
		bt := id.BloodType(*req.BloodType)
		in.BloodType = &bt
	}

	u, err := h.users.Update(r.Context(), requestcontext.UserID(r.Context()), in)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		shared.WriteError(w, derrors.New(derrors.CodeBadRequest, "invalid user id"))
		return
	}
	if err := h.users.Delete(r.Context(), userID); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		shared.WriteError(w, derrors.New(derrors.CodeBadRequest, "invalid user id"))
		return
	}
	u, err := h.users.Get(r.Context(), userID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, u)
}
