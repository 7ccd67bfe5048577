package postgres

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hotellisting/hotellisting-api/application/port/outbound"
	"github.com/hotellisting/hotellisting-api/domain/entity"
	"github.com/hotellisting/hotellisting-api/domain/valueobject"
	"github.com/hotellisting/hotellisting-api/infrastructure/service/password"
)

// setupTestDB migrates a clean schema into TEST_DATABASE_URL, or skips.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := Open(dbURL)
	require.NoError(t, err)
	if err := db.Ping(); err != nil {
		t.Skipf("test database unreachable: %v", err)
	}

	_, err = db.Exec(`
		DROP TABLE IF EXISTS user_tokens CASCADE;
		DROP TABLE IF EXISTS user_claims CASCADE;
		DROP TABLE IF EXISTS user_roles CASCADE;
		DROP TABLE IF EXISTS roles CASCADE;
		DROP TABLE IF EXISTS users CASCADE;
		DROP TABLE IF EXISTS schema_migrations CASCADE;
	`)
	require.NoError(t, err)
	require.NoError(t, RunMigrations(dbURL))
	require.NoError(t, RunMigrations(dbURL), "second run is a no-op")

	t.Cleanup(func() { db.Close() })
	return db
}

func createUser(t *testing.T, store *IdentityStoreAdapter, email string) *entity.User {
	t.Helper()
	user := entity.NewUser(uuid.NewString(), "Ann", "Lee", email)
	errs, err := store.Create(context.Background(), user, "Secret1!")
	require.NoError(t, err)
	require.Empty(t, errs)
	return user
}

func TestIdentityStoreAdapter(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	store := NewIdentityStoreAdapter(db, password.NewBcryptPasswordService(bcrypt.MinCost))

	user := createUser(t, store, "ann@test.io")

	t.Run("lookup is case insensitive", func(t *testing.T) {
		found, err := store.FindByEmail(ctx, "ANN@TEST.IO")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)

		_, err = store.FindByEmail(ctx, "ghost@test.io")
		assert.ErrorIs(t, err, outbound.ErrUserNotFound)
	})

	t.Run("duplicate user name", func(t *testing.T) {
		errs, err := store.Create(ctx, entity.NewUser(uuid.NewString(), "A", "B", "Ann@Test.io"), "Secret1!")
		require.NoError(t, err)
		require.Len(t, errs, 1)
		assert.Equal(t, valueobject.CodeDuplicateUserName, errs[0].Code)
	})

	t.Run("password check", func(t *testing.T) {
		ok, err := store.CheckPassword(ctx, user, "Secret1!")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.CheckPassword(ctx, user, "nope")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("seeded roles", func(t *testing.T) {
		require.NoError(t, store.AddToRole(ctx, user, "user"))
		require.NoError(t, store.AddToRole(ctx, user, "User"))
		assert.ErrorIs(t, store.AddToRole(ctx, user, "Owner"), outbound.ErrRoleNotFound)

		roles, err := store.GetRoles(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, []string{"User"}, roles)
	})

	t.Run("claims and stamp", func(t *testing.T) {
		require.NoError(t, store.AddClaim(ctx, user, entity.NewClaim("tier", "gold")))
		claims, err := store.GetClaims(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, []entity.Claim{{Type: "tier", Value: "gold"}}, claims)

		before := user.SecurityStamp
		require.NoError(t, store.UpdateSecurityStamp(ctx, user))
		assert.NotEqual(t, before, user.SecurityStamp)
	})

	t.Run("delete", func(t *testing.T) {
		other := createUser(t, store, "bob@test.io")
		require.NoError(t, store.Delete(ctx, other.ID))
		assert.ErrorIs(t, store.Delete(ctx, other.ID), outbound.ErrUserNotFound)
	})
}

func TestNamedTokenRepositoryAdapter(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	store := NewIdentityStoreAdapter(db, password.NewBcryptPasswordService(bcrypt.MinCost))
	tokens := NewNamedTokenRepositoryAdapter(db)

	user := createUser(t, store, "ann@test.io")
	key := entity.RefreshTokenKey(user.ID)

	_, err := tokens.GetToken(ctx, key)
	assert.ErrorIs(t, err, outbound.ErrNamedTokenNotFound)

	require.NoError(t, tokens.SetToken(ctx, entity.NewNamedToken(key, "a", time.Hour)))
	require.NoError(t, tokens.SetToken(ctx, entity.NewNamedToken(key, "b", time.Hour)))

	got, err := tokens.GetToken(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "b", got.Value)
	require.NotNil(t, got.ExpiresAt)

	swapped, err := tokens.SwapToken(ctx, key, "a", entity.NewNamedToken(key, "c", 0))
	require.NoError(t, err)
	assert.False(t, swapped)

	swapped, err = tokens.SwapToken(ctx, key, "b", entity.NewNamedToken(key, "c", 0))
	require.NoError(t, err)
	assert.True(t, swapped)

	got, err = tokens.GetToken(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "c", got.Value)
	assert.Nil(t, got.ExpiresAt)

	expired := entity.NewNamedToken(key, "d", time.Hour)
	past := time.Now().Add(-time.Minute)
	expired.ExpiresAt = &past
	require.NoError(t, tokens.SetToken(ctx, expired))
	_, err = tokens.GetToken(ctx, key)
	assert.ErrorIs(t, err, outbound.ErrNamedTokenNotFound)

	require.NoError(t, tokens.RemoveToken(ctx, key))
	assert.ErrorIs(t, tokens.RemoveToken(ctx, key), outbound.ErrNamedTokenNotFound)
}
