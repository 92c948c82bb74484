// Package service implements account registration, login and profile
// management.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"bloodbank/internal/user"
	id "bloodbank/pkg/domain"
	derrors "bloodbank/pkg/domain-errors"
	"bloodbank/pkg/platform/sentinel"
	"bloodbank/pkg/requestcontext"
)

const minPasswordLength = 8

type Store interface {
	Create(ctx context.Context, u user.User) error
	Get(ctx context.Context, userID id.UserID) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	List(ctx context.Context) ([]user.User, error)
	Update(ctx context.Context, u user.User) error
	Delete(ctx context.Context, userID id.UserID) error
}

// TokenIssuer signs access tokens; jwttoken.JWTService satisfies it.
type TokenIssuer interface {
	GenerateAccessToken(userID id.UserID, role id.Role, now time.Time) (string, error)
}

type Service struct {
	store  Store
	tokens TokenIssuer
	logger *slog.Logger
}

func New(store Store, tokens TokenIssuer, logger *slog.Logger) *Service {
	return &Service{store: store, tokens: tokens, logger: logger}
}

type RegisterInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	Role        id.Role
	Gender      id.Gender
	BloodType   id.BloodType
	DateOfBirth *time.Time
	Phone       string
	Address     string
}

// Register creates an account with a bcrypt-hashed password. Plain passwords
// are never stored or logged.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*user.User, error) {
	if err := validateRegister(in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "hash password")
	}

	now := requestcontext.Now(ctx)
	u := user.User{
		ID:           id.NewUserID(),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         in.Role,
		Gender:       in.Gender,
		BloodType:    in.BloodType,
		DateOfBirth:  in.DateOfBirth,
		Phone:        in.Phone,
		Address:      in.Address,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, derrors.New(derrors.CodeConflict, "email already registered")
		}
		return nil, derrors.Wrap(err, derrors.CodeInternal, "create user")
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", u.ID, "role", u.Role)
	return &u, nil
}

// Login verifies credentials and issues an access token. Unknown email and
// wrong password answer identically so accounts cannot be enumerated.
func (s *Service) Login(ctx context.Context, email, password string) (string, *user.User, error) {
	invalid := derrors.New(derrors.CodeUnauthorized, "invalid email or password")

	u, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", nil, invalid
		}
		return "", nil, derrors.Wrap(err, derrors.CodeInternal, "look up user")
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", nil, invalid
	}

	token, err := s.tokens.GenerateAccessToken(u.ID, u.Role, requestcontext.Now(ctx))
	if err != nil {
		return "", nil, derrors.Wrap(err, derrors.CodeInternal, "issue token")
	}
	return token, u, nil
}

func (s *Service) Get(ctx context.Context, userID id.UserID) (*user.User, error) {
	u, err := s.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, derrors.New(derrors.CodeNotFound, "user not found")
		}
		return nil, derrors.Wrap(err, derrors.CodeInternal, "get user")
	}
	return u, nil
}

func (s *Service) List(ctx context.Context) ([]user.User, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "list users")
	}
	return users, nil
}

type UpdateInput struct {
	FirstName   *string
	LastName    *string
	Gender      *id.Gender
	BloodType   *id.BloodType
	DateOfBirth *time.Time
	Phone       *string
	Address     *string
}

// Update applies a partial profile update. Role and password are deliberately
// not updatable here.
func (s *Service) Update(ctx context.Context, userID id.UserID, in UpdateInput) (*user.User, error) {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.FirstName != nil {
		u.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		u.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Gender != nil {
		if !in.Gender.IsValid() {
			return nil, derrors.Newf(derrors.CodeInvalidInput, "invalid gender %q", string(*in.Gender))
		}
		u.Gender = *in.Gender
	}
	if in.BloodType != nil {
		if !in.BloodType.IsValid() {
			return nil, derrors.Newf(derrors.CodeInvalidInput, "invalid blood type %q", string(*in.BloodType))
		}
		u.BloodType = *in.BloodType
	}
	if in.DateOfBirth != nil {
		u.DateOfBirth = in.DateOfBirth
	}
	if in.Phone != nil {
		u.Phone = *in.Phone
	}
	if in.Address != nil {
		u.Address = *in.Address
	}
	u.UpdatedAt = requestcontext.Now(ctx)

	if err := s.store.Update(ctx, *u); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, derrors.New(derrors.CodeConflict, "email already registered")
		}
		return nil, derrors.Wrap(err, derrors.CodeInternal, "update user")
	}
	return u, nil
}

// Delete removes an account. Accounts referenced by registrations, requests or
// notifications cannot be removed.
func (s *Service) Delete(ctx context.Context, userID id.UserID) error {
	err := s.store.Delete(ctx, userID)
	switch {
	case err == nil:
		s.logger.InfoContext(ctx, "user deleted", "user_id", userID)
		return nil
	case errors.Is(err, sentinel.ErrNotFound):
		return derrors.New(derrors.CodeNotFound, "user not found")
	case errors.Is(err, sentinel.ErrConflict):
		return derrors.New(derrors.CodeConflict, "user has donation or request history")
	default:
		return derrors.Wrap(err, derrors.CodeInternal, "delete user")
	}
}

func validateRegister(in RegisterInput) error {
	email := strings.TrimSpace(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return derrors.New(derrors.CodeInvalidInput, "a valid email is required")
	}
	if len(in.Password) < minPasswordLength {
		return derrors.Newf(derrors.CodeInvalidInput, "password must be at least %d characters", minPasswordLength)
	}
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return derrors.New(derrors.CodeInvalidInput, "first and last name are required")
	}
	if !in.Role.IsValid() {
		return derrors.Newf(derrors.CodeInvalidInput, "invalid role %q", string(in.Role))
	}
	if in.Gender != "" && !in.Gender.IsValid() {
		return derrors.Newf(derrors.CodeInvalidInput, "invalid gender %q", string(in.Gender))
	}
	if in.BloodType != "" && !in.BloodType.IsValid() {
		return derrors.Newf(derrors.CodeInvalidInput, "invalid blood type %q", string(in.BloodType))
	}
	return nil
}
