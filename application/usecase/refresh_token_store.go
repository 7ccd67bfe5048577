package usecase

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"time"

	"github.com/hotellisting/hotellisting-api/application/port/outbound"
	"github.com/hotellisting/hotellisting-api/domain/entity"
	domainerr "github.com/hotellisting/hotellisting-api/domain/error"
)

// RefreshTokenStore hands out opaque refresh tokens and keeps only their
// salted hashes, one per user.
type RefreshTokenStore struct {
	tokens    outbound.NamedTokenRepository
	generator outbound.RefreshTokenGenerator
	salt      string
	ttl       time.Duration
}

// NewRefreshTokenStore builds a store. A ttl of zero means stored tokens
// never expire on their own.
func NewRefreshTokenStore(
	tokens outbound.NamedTokenRepository,
	generator outbound.RefreshTokenGenerator,
	salt string,
	ttl time.Duration,
) *RefreshTokenStore {
	return &RefreshTokenStore{
		tokens:    tokens,
		generator: generator,
		salt:      salt,
		ttl:       ttl,
	}
}

// Rotate replaces the user's refresh token with a fresh one and returns the
// raw value. The previous token stops verifying as soon as this returns.
func (s *RefreshTokenStore) Rotate(ctx context.Context, userID string) (string, error) {
	raw, err := s.generator.GenerateRefreshToken()
	if err != nil {
		return "", domainerr.ErrInternalServerError("generate refresh token", err)
	}

	key := entity.RefreshTokenKey(userID)
	if err := s.tokens.SetToken(ctx, entity.NewNamedToken(key, s.hashToken(raw), s.ttl)); err != nil {
		return "", domainerr.ErrStore("set refresh token", err)
	}
	return raw, nil
}

// Verify reports whether presented is the user's live refresh token.
func (s *RefreshTokenStore) Verify(ctx context.Context, userID, presented string) (bool, error) {
	if presented == "" {
		return false, nil
	}

	stored, err := s.tokens.GetToken(ctx, entity.RefreshTokenKey(userID))
	if err != nil {
		if errors.Is(err, outbound.ErrNamedTokenNotFound) {
			return false, nil
		}
		return false, domainerr.ErrStore("get refresh token", err)
	}
	if stored.IsExpired() {
		return false, nil
	}

	hashed := s.hashToken(presented)
	return subtle.ConstantTimeCompare([]byte(hashed), []byte(stored.Value)) == 1, nil
}

// Exchange rotates only if presented is still the live token. Of two callers
// exchanging the same token, exactly one gets a new value; the other gets
// ok == false.
func (s *RefreshTokenStore) Exchange(ctx context.Context, userID, presented string) (string, bool, error) {
	if presented == "" {
		return "", false, nil
	}

	raw, err := s.generator.GenerateRefreshToken()
	if err != nil {
		return "", false, domainerr.ErrInternalServerError("generate refresh token", err)
	}

	key := entity.RefreshTokenKey(userID)
	swapped, err := s.tokens.SwapToken(ctx, key, s.hashToken(presented), entity.NewNamedToken(key, s.hashToken(raw), s.ttl))
	if err != nil {
		return "", false, domainerr.ErrStore("swap refresh token", err)
	}
	if !swapped {
		return "", false, nil
	}
	return raw, true, nil
}

// Revoke drops the user's refresh token. Revoking twice is not an error.
func (s *RefreshTokenStore) Revoke(ctx context.Context, userID string) error {
	err := s.tokens.RemoveToken(ctx, entity.RefreshTokenKey(userID))
	if err != nil && !errors.Is(err, outbound.ErrNamedTokenNotFound) {
		return domainerr.ErrStore("remove refresh token", err)
	}
	return nil
}

func (s *RefreshTokenStore) hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw + s.salt))
	return hex.EncodeToString(sum[:])
}
