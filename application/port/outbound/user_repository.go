package outbound

import (
	"context"
	"errors"

	"github.com/hotellisting/hotellisting-api/domain/entity"
	"github.com/hotellisting/hotellisting-api/domain/valueobject"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrRoleNotFound      = errors.New("role not found")
)

// UserRepository is the user half of the identity store.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*entity.User, error)
	// FindByEmail returns ErrUserNotFound when no user has that email.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// Create stores user with a hash of password. Refusals (duplicate name,
	// weak password, bad email) come back as identity errors, not as err.
	Create(ctx context.Context, user *entity.User, password string) ([]valueobject.IdentityError, error)
	Delete(ctx context.Context, id string) error
	CheckPassword(ctx context.Context, user *entity.User, password string) (bool, error)
	UpdateSecurityStamp(ctx context.Context, user *entity.User) error
}

type RoleRepository interface {
	// AddToRole returns ErrRoleNotFound for a role the store does not know.
	AddToRole(ctx context.Context, user *entity.User, role string) error
	GetRoles(ctx context.Context, user *entity.User) ([]string, error)
}

type ClaimRepository interface {
	GetClaims(ctx context.Context, user *entity.User) ([]entity.Claim, error)
}

// IdentityStore is everything the account core reads from or writes to the
// identity store, apart from named tokens.
type IdentityStore interface {
	UserRepository
	RoleRepository
	ClaimRepository
}
