package redis

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotellisting/hotellisting-api/application/port/outbound"
	"github.com/hotellisting/hotellisting-api/domain/entity"
)

func newTestRepository(t *testing.T) *NamedTokenRepositoryAdapter {
	t.Helper()

	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	client, err := NewClient(context.Background(), url)
	if err != nil {
		t.Skipf("test redis unreachable: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return NewNamedTokenRepositoryAdapter(client)
}

func TestNamedTokenRepositoryAdapter(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	key := entity.RefreshTokenKey(uuid.NewString())
	t.Cleanup(func() { _ = repo.RemoveToken(ctx, key) })

	_, err := repo.GetToken(ctx, key)
	assert.ErrorIs(t, err, outbound.ErrNamedTokenNotFound)

	require.NoError(t, repo.SetToken(ctx, entity.NewNamedToken(key, "a", time.Hour)))
	require.NoError(t, repo.SetToken(ctx, entity.NewNamedToken(key, "b", 0)))

	got, err := repo.GetToken(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "b", got.Value)
	assert.Nil(t, got.ExpiresAt)

	ttl, err := repo.client.PTTL(ctx, redisKey(key)).Result()
	require.NoError(t, err)
	assert.True(t, ttl < 0, "token without expiry must not keep the old TTL")

	swapped, err := repo.SwapToken(ctx, key, "a", entity.NewNamedToken(key, "c", time.Minute))
	require.NoError(t, err)
	assert.False(t, swapped)

	swapped, err = repo.SwapToken(ctx, key, "b", entity.NewNamedToken(key, "c", time.Minute))
	require.NoError(t, err)
	assert.True(t, swapped)

	got, err = repo.GetToken(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "c", got.Value)
	require.NotNil(t, got.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Minute), *got.ExpiresAt, 2*time.Second)

	require.NoError(t, repo.RemoveToken(ctx, key))
	assert.ErrorIs(t, repo.RemoveToken(ctx, key), outbound.ErrNamedTokenNotFound)
}

func TestNamedTokenRepositoryAdapter_ConcurrentSwap(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	key := entity.RefreshTokenKey(uuid.NewString())
	t.Cleanup(func() { _ = repo.RemoveToken(ctx, key) })

	require.NoError(t, repo.SetToken(ctx, entity.NewNamedToken(key, "a", time.Minute)))

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.SwapToken(ctx, key, "a", entity.NewNamedToken(key, uuid.NewString(), time.Minute))
			if err == nil && ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins)
}
