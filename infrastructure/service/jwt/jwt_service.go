package jwt

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hotellisting/hotellisting-api/application/port/outbound"
	"github.com/hotellisting/hotellisting-api/domain/entity"
	domainerr "github.com/hotellisting/hotellisting-api/domain/error"
	"github.com/hotellisting/hotellisting-api/infrastructure/config"
)

const refreshTokenBytes = 32

// registered claims are always written by the issuer and never copied from
// the caller's claim set.
var registeredClaims = map[string]struct{}{
	"iss": {}, "aud": {}, "exp": {}, "nbf": {}, "iat": {},
}

// JWTService signs and reads HS256 access tokens.
type JWTService struct {
	issuer     string
	audience   string
	hmacSecret []byte
	validity   time.Duration
	now        func() time.Time
}

var (
	_ outbound.TokenIssuer           = (*JWTService)(nil)
	_ outbound.RefreshTokenGenerator = (*JWTService)(nil)
)

// NewJWTService checks the signing material once, at startup. A service that
// was constructed can always sign.
func NewJWTService(cfg *config.Config) (*JWTService, error) {
	if cfg == nil {
		return nil, domainerr.ErrConfigurationError("jwt config is nil")
	}
	if cfg.JWTIssuer == "" || cfg.JWTAudience == "" {
		return nil, domainerr.ErrConfigurationError("jwt issuer and audience are required")
	}
	if len(cfg.JWTSecret) < config.MinSigningKeyBytes {
		return nil, domainerr.ErrConfigurationError(
			fmt.Sprintf("jwt signing key must be at least %d bytes for HS256", config.MinSigningKeyBytes))
	}
	if cfg.AccessTokenMinutes <= 0 {
		return nil, domainerr.ErrConfigurationError("access token lifetime must be positive")
	}

	return &JWTService{
		issuer:     cfg.JWTIssuer,
		audience:   cfg.JWTAudience,
		hmacSecret: []byte(cfg.JWTSecret),
		validity:   cfg.AccessTokenTTL(),
		now:        time.Now,
	}, nil
}

// Issue signs claims into a compact token. Role claims become a single
// string or an array depending on how many there are.
func (s *JWTService) Issue(claims []entity.Claim) (*outbound.AccessToken, error) {
	issuedAt := s.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(s.validity)

	tokenClaims := jwt.MapClaims{}
	var roles []string
	for _, c := range claims {
		if _, reserved := registeredClaims[c.Type]; reserved {
			continue
		}
		if c.Type == entity.ClaimRole {
			roles = append(roles, c.Value)
			continue
		}
		if _, exists := tokenClaims[c.Type]; !exists {
			tokenClaims[c.Type] = c.Value
		}
	}
	switch len(roles) {
	case 0:
	case 1:
		tokenClaims[entity.ClaimRole] = roles[0]
	default:
		tokenClaims[entity.ClaimRole] = roles
	}

	tokenClaims["iss"] = s.issuer
	tokenClaims["aud"] = s.audience
	tokenClaims["iat"] = issuedAt.Unix()
	tokenClaims["nbf"] = issuedAt.Unix()
	tokenClaims["exp"] = expiresAt.Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims)
	signed, err := token.SignedString(s.hmacSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	id, _ := tokenClaims[entity.ClaimJWTID].(string)
	return &outbound.AccessToken{
		Token:     signed,
		ID:        id,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// DecodeUnverified reads a token's claims without trusting it. The result is
// only good as a lookup key.
func (s *JWTService) DecodeUnverified(tokenString string) (*entity.ClaimSet, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, domainerr.ErrInvalidTokenDetails("malformed access token", err)
	}
	return claimSetFromMap(claims), nil
}

// ValidateAccessToken checks signature, algorithm, issuer, audience and expiry.
func (s *JWTService) ValidateAccessToken(tokenString string) (*entity.ClaimSet, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.hmacSecret, nil
	})
	if err != nil {
		return nil, s.handleValidationError(err)
	}
	if !token.Valid {
		return nil, domainerr.ErrInvalidToken
	}

	return claimSetFromMap(claims), nil
}

// GenerateRefreshToken returns 32 random bytes, base64url encoded.
func (s *JWTService) GenerateRefreshToken() (string, error) {
	bytes := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

func (s *JWTService) handleValidationError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return domainerr.NewAppError(domainerr.ErrCodeTokenExpired, "Token has expired", "", err)
	}
	return domainerr.ErrInvalidTokenDetails("access token rejected", err)
}

func claimSetFromMap(claims jwt.MapClaims) *entity.ClaimSet {
	keys := make([]string, 0, len(claims))
	for k := range claims {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	set := entity.NewClaimSet()
	for _, k := range keys {
		switch v := claims[k].(type) {
		case string:
			set.Add(entity.NewClaim(k, v))
		case []interface{}:
			source := make([]entity.Claim, 0, len(v))
			for _, item := range v {
				if str, ok := item.(string); ok {
					source = append(source, entity.NewClaim(k, str))
				}
			}
			set.Add(source...)
		case float64:
			set.Add(entity.NewClaim(k, strconv.FormatFloat(v, 'f', -1, 64)))
		case bool:
			set.Add(entity.NewClaim(k, strconv.FormatBool(v)))
		}
	}
	return set
}
