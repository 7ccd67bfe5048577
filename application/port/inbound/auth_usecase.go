package inbound

import (
	"context"

	"github.com/hotellisting/hotellisting-api/domain/valueobject"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=7,max=15"`
}

// RegistrationRequest is a LoginRequest plus the profile fields.
type RegistrationRequest struct {
	LoginRequest
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
}

// RoleRegistrationRequest registers a user straight into Role.
type RoleRegistrationRequest struct {
	RegistrationRequest
	Role string `json:"role" validate:"required"`
}

// AuthResponse is returned by a successful login or refresh.
type AuthResponse struct {
	UserID       string `json:"userId"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshRequest carries the pair the client was last given.
type RefreshRequest struct {
	UserID       string `json:"userId" validate:"required"`
	Token        string `json:"token" validate:"required"`
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// AuthUseCase is the account surface exposed to transports.
//
// Login and RefreshToken return (nil, nil) when the credentials or refresh
// token do not check out. RefreshToken additionally returns ErrInvalidToken
// for an unreadable access token and ErrUserMismatch when the token belongs
// to someone other than req.UserID. Any other error is a server fault.
// Register and RegisterWithRole return identity errors as data: an empty
// slice and a nil error mean the user exists with its role.
type AuthUseCase interface {
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Register(ctx context.Context, req RegistrationRequest) ([]valueobject.IdentityError, error)
	RegisterWithRole(ctx context.Context, req RoleRegistrationRequest) ([]valueobject.IdentityError, error)
	RefreshToken(ctx context.Context, req RefreshRequest) (*AuthResponse, error)
}
