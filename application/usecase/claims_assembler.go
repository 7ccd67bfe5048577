package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/hotellisting/hotellisting-api/application/port/outbound"
	"github.com/hotellisting/hotellisting-api/domain/entity"
	domainerr "github.com/hotellisting/hotellisting-api/domain/error"
)

// ClaimsAssembler builds the claims written into a user's access token.
type ClaimsAssembler struct {
	roles  outbound.RoleRepository
	claims outbound.ClaimRepository
	newID  func() string
}

func NewClaimsAssembler(roles outbound.RoleRepository, claims outbound.ClaimRepository) *ClaimsAssembler {
	return &ClaimsAssembler{
		roles:  roles,
		claims: claims,
		newID:  uuid.NewString,
	}
}

// Assemble reads roles and extension claims at call time, so role changes
// only show up in tokens issued afterwards. Every call gets a new jti.
func (a *ClaimsAssembler) Assemble(ctx context.Context, user *entity.User) ([]entity.Claim, error) {
	roles, err := a.roles.GetRoles(ctx, user)
	if err != nil {
		return nil, domainerr.ErrStore("get roles", err)
	}
	extra, err := a.claims.GetClaims(ctx, user)
	if err != nil {
		return nil, domainerr.ErrStore("get claims", err)
	}

	set := entity.NewClaimSet(
		entity.NewClaim(entity.ClaimSubject, user.Email),
		entity.NewClaim(entity.ClaimJWTID, a.newID()),
		entity.NewClaim(entity.ClaimEmail, user.Email),
		entity.NewClaim(entity.ClaimUserID, user.ID),
	)

	roleClaims := make([]entity.Claim, 0, len(roles))
	for _, role := range roles {
		roleClaims = append(roleClaims, entity.NewClaim(entity.ClaimRole, role))
	}
	set.Add(roleClaims...)
	set.Add(extra...)

	return set.Claims(), nil
}
