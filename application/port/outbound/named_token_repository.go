package outbound

import (
	"context"
	"errors"

	"github.com/hotellisting/hotellisting-api/domain/entity"
)

var ErrNamedTokenNotFound = errors.New("named token not found")

// NamedTokenRepository keeps at most one token per (user, provider, purpose).
type NamedTokenRepository interface {
	// SetToken replaces whatever is stored under token.Key in one step.
	SetToken(ctx context.Context, token *entity.NamedToken) error
	// GetToken returns ErrNamedTokenNotFound when nothing live is stored.
	GetToken(ctx context.Context, key entity.NamedTokenKey) (*entity.NamedToken, error)
	// SwapToken stores replacement only if the live value still equals
	// expected. It reports whether the swap happened.
	SwapToken(ctx context.Context, key entity.NamedTokenKey, expected string, replacement *entity.NamedToken) (bool, error)
	RemoveToken(ctx context.Context, key entity.NamedTokenKey) error
}
