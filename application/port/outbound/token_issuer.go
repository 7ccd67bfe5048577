package outbound

import (
	"time"

	"github.com/hotellisting/hotellisting-api/domain/entity"
)

// AccessToken is a signed token and the instants baked into it.
type AccessToken struct {
	Token     string
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type TokenIssuer interface {
	Issue(claims []entity.Claim) (*AccessToken, error)
	// DecodeUnverified reads claims without checking the signature or expiry.
	DecodeUnverified(token string) (*entity.ClaimSet, error)
	ValidateAccessToken(token string) (*entity.ClaimSet, error)
}

type RefreshTokenGenerator interface {
	GenerateRefreshToken() (string, error)
}
