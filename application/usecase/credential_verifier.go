package usecase

import (
	"context"
	"errors"

	"github.com/hotellisting/hotellisting-api/application/port/outbound"
	"github.com/hotellisting/hotellisting-api/domain/entity"
	domainerr "github.com/hotellisting/hotellisting-api/domain/error"
)

// CredentialVerifier checks an email/password pair against the identity store.
type CredentialVerifier struct {
	users outbound.UserRepository
}

func NewCredentialVerifier(users outbound.UserRepository) *CredentialVerifier {
	return &CredentialVerifier{users: users}
}

// Verify returns the user owning email when password matches. An unknown
// email and a wrong password both yield ErrInvalidCredentials; the password
// is never checked against a user that does not exist.
func (v *CredentialVerifier) Verify(ctx context.Context, email, password string) (*entity.User, error) {
	user, err := v.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			return nil, domainerr.ErrInvalidCredentials
		}
		return nil, domainerr.ErrStore("find user by email", err)
	}
	if user == nil {
		return nil, domainerr.ErrInvalidCredentials
	}

	ok, err := v.users.CheckPassword(ctx, user, password)
	if err != nil {
		return nil, domainerr.ErrStore("check password", err)
	}
	if !ok {
		return nil, domainerr.ErrInvalidCredentials
	}
	return user, nil
}
