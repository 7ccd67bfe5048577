package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotellisting/hotellisting-api/domain/entity"
	domainerr "github.com/hotellisting/hotellisting-api/domain/error"
)

func TestClaimsAssembler_Assemble(t *testing.T) {
	ctx := context.Background()
	ann := entity.NewUser("u1", "Ann", "Lee", "ann@test.io")

	t.Run("standard claims, roles and extension claims", func(t *testing.T) {
		store := new(mockIdentityStore)
		store.On("GetRoles", ctx, ann).Return([]string{"User", "Administrator", "User"}, nil)
		store.On("GetClaims", ctx, ann).Return([]entity.Claim{
			entity.NewClaim("tier", "gold"),
			entity.NewClaim(entity.ClaimRole, "User"),
		}, nil)

		claims, err := NewClaimsAssembler(store, store).Assemble(ctx, ann)
		require.NoError(t, err)

		set := entity.NewClaimSet(claims...)
		sub, _ := set.First(entity.ClaimSubject)
		email, _ := set.First(entity.ClaimEmail)
		uid, _ := set.First(entity.ClaimUserID)
		tier, _ := set.First("tier")
		assert.Equal(t, "ann@test.io", sub)
		assert.Equal(t, "ann@test.io", email)
		assert.Equal(t, "u1", uid)
		assert.Equal(t, "gold", tier)
		assert.True(t, set.Has(entity.ClaimJWTID))

		// repeats inside the role source collapse; the extension source adds User again
		assert.Equal(t, []string{"User", "Administrator", "User"}, claimValues(claims, entity.ClaimRole))
	})

	t.Run("fresh jti per call", func(t *testing.T) {
		store := new(mockIdentityStore)
		store.On("GetRoles", ctx, ann).Return([]string{}, nil)
		store.On("GetClaims", ctx, ann).Return([]entity.Claim{}, nil)
		assembler := NewClaimsAssembler(store, store)

		first, err := assembler.Assemble(ctx, ann)
		require.NoError(t, err)
		second, err := assembler.Assemble(ctx, ann)
		require.NoError(t, err)

		firstID, _ := entity.NewClaimSet(first...).First(entity.ClaimJWTID)
		secondID, _ := entity.NewClaimSet(second...).First(entity.ClaimJWTID)
		assert.NotEqual(t, firstID, secondID)
	})

	t.Run("role lookup failure", func(t *testing.T) {
		store := new(mockIdentityStore)
		store.On("GetRoles", ctx, ann).Return(nil, errors.New("timeout"))

		_, err := NewClaimsAssembler(store, store).Assemble(ctx, ann)
		assert.ErrorIs(t, err, domainerr.ErrStoreUnavailable)
	})
}

// claimValues reads values of one type in order, without re-bagging them.
func claimValues(claims []entity.Claim, claimType string) []string {
	var out []string
	for _, c := range claims {
		if c.Type == claimType {
			out = append(out, c.Value)
		}
	}
	return out
}
