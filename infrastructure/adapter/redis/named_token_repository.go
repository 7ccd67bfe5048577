package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/hotellisting/hotellisting-api/application/port/outbound"
	"github.com/hotellisting/hotellisting-api/domain/entity"
)

const keyPrefix = "named_token"

// swapScript replaces the hash at KEYS[1] only while its value field equals
// ARGV[1]. ARGV: expected, value, created_at, expires_at, ttl in ms (0 = none).
var swapScript = goredis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'value')
if current ~= ARGV[1] then
	return 0
end
redis.call('DEL', KEYS[1])
redis.call('HSET', KEYS[1], 'value', ARGV[2], 'created_at', ARGV[3], 'expires_at', ARGV[4])
if tonumber(ARGV[5]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[5])
end
return 1
`)

// NamedTokenRepositoryAdapter keeps each named token in a Redis hash whose
// key expires together with the token.
type NamedTokenRepositoryAdapter struct {
	client *goredis.Client
}

var _ outbound.NamedTokenRepository = (*NamedTokenRepositoryAdapter)(nil)

func NewNamedTokenRepositoryAdapter(client *goredis.Client) *NamedTokenRepositoryAdapter {
	return &NamedTokenRepositoryAdapter{client: client}
}

// NewClient parses redisURL and checks the server answers.
func NewClient(ctx context.Context, redisURL string) (*goredis.Client, error) {
	opt, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := goredis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func redisKey(key entity.NamedTokenKey) string {
	return fmt.Sprintf("%s:%s:%s:%s", keyPrefix, key.Provider, key.Purpose, key.UserID)
}

func (r *NamedTokenRepositoryAdapter) SetToken(ctx context.Context, token *entity.NamedToken) error {
	if token == nil {
		return fmt.Errorf("named token cannot be nil")
	}

	k := redisKey(token.Key)
	createdAt, expiresAt, ttl := encodeTimes(token)

	_, err := r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, k)
		pipe.HSet(ctx, k, "value", token.Value, "created_at", createdAt, "expires_at", expiresAt)
		if ttl > 0 {
			pipe.PExpire(ctx, k, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set named token: %w", err)
	}
	return nil
}

func (r *NamedTokenRepositoryAdapter) GetToken(ctx context.Context, key entity.NamedTokenKey) (*entity.NamedToken, error) {
	fields, err := r.client.HGetAll(ctx, redisKey(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get named token: %w", err)
	}
	value, ok := fields["value"]
	if !ok {
		return nil, outbound.ErrNamedTokenNotFound
	}

	token := &entity.NamedToken{Key: key, Value: value}
	if ns, err := strconv.ParseInt(fields["created_at"], 10, 64); err == nil {
		token.CreatedAt = time.Unix(0, ns)
	}
	if ns, err := strconv.ParseInt(fields["expires_at"], 10, 64); err == nil {
		expiresAt := time.Unix(0, ns)
		token.ExpiresAt = &expiresAt
	}
	if token.IsExpired() {
		return nil, outbound.ErrNamedTokenNotFound
	}
	return token, nil
}

func (r *NamedTokenRepositoryAdapter) SwapToken(ctx context.Context, key entity.NamedTokenKey, expected string, replacement *entity.NamedToken) (bool, error) {
	createdAt, expiresAt, ttl := encodeTimes(replacement)

	swapped, err := swapScript.Run(ctx, r.client,
		[]string{redisKey(key)},
		expected, replacement.Value, createdAt, expiresAt, ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to swap named token: %w", err)
	}
	return swapped == 1, nil
}

func (r *NamedTokenRepositoryAdapter) RemoveToken(ctx context.Context, key entity.NamedTokenKey) error {
	removed, err := r.client.Del(ctx, redisKey(key)).Result()
	if err != nil {
		return fmt.Errorf("failed to remove named token: %w", err)
	}
	if removed == 0 {
		return outbound.ErrNamedTokenNotFound
	}
	return nil
}

// encodeTimes returns unix-nano strings for the hash fields and the key TTL.
// A token without expiry gets an empty expires_at and no TTL.
func encodeTimes(token *entity.NamedToken) (createdAt, expiresAt string, ttl time.Duration) {
	createdAt = strconv.FormatInt(token.CreatedAt.UnixNano(), 10)
	if token.ExpiresAt == nil {
		return createdAt, "", 0
	}
	expiresAt = strconv.FormatInt(token.ExpiresAt.UnixNano(), 10)
	ttl = time.Until(*token.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Millisecond
	}
	return createdAt, expiresAt, ttl
}
