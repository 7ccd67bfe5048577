package entity

import (
	"time"
)

// Provider and purpose under which refresh tokens are stored.
const (
	RefreshTokenProvider = "HotelListAPI"
	RefreshTokenPurpose  = "RefreshToken"
)

// NamedTokenKey addresses the single live token a user holds for one
// provider/purpose pair.
type NamedTokenKey struct {
	UserID   string
	Provider string
	Purpose  string
}

func RefreshTokenKey(userID string) NamedTokenKey {
	return NamedTokenKey{
		UserID:   userID,
		Provider: RefreshTokenProvider,
		Purpose:  RefreshTokenPurpose,
	}
}

// NamedToken is the stored form of a named token. Value holds the token
// hash, never the raw value handed to the client.
type NamedToken struct {
	Key       NamedTokenKey
	Value     string
	CreatedAt time.Time
	ExpiresAt *time.Time
}

func NewNamedToken(key NamedTokenKey, value string, ttl time.Duration) *NamedToken {
	now := time.Now()
	token := &NamedToken{
		Key:       key,
		Value:     value,
		CreatedAt: now,
	}
	if ttl > 0 {
		expiresAt := now.Add(ttl)
		token.ExpiresAt = &expiresAt
	}
	return token
}

func (t *NamedToken) IsExpired() bool {
	return t.ExpiresAt != nil && time.Now().After(*t.ExpiresAt)
}
