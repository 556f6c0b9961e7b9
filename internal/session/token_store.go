package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Token keys. Everything under ProviderPrefix belongs to the identity
// provider integration (refresh token, expiry bookkeeping).
const (
	KeyAccessToken  = "access_token"
	KeyIDToken      = "id_token"
	ProviderPrefix  = "@@idp@@"
	KeyRefreshToken = ProviderPrefix + "refresh_token"
)

// TokenStore caches credentials per session. It is a cache only: the
// identity provider stays the source of truth, and Clear drops every key
// of a session at once.
type TokenStore interface {
	// Get returns "" when the key is not cached.
	Get(ctx context.Context, sessionID, key string) (string, error)
	Set(ctx context.Context, sessionID, key, value string) error
	Delete(ctx context.Context, sessionID, key string) error
	Clear(ctx context.Context, sessionID string) error
}

// RedisTokenStore keeps one hash per session so a single DEL clears all
// cached keys together.
type RedisTokenStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisTokenStore(client *redis.Client, ttl time.Duration) *RedisTokenStore {
	return &RedisTokenStore{
		client: client,
		prefix: "tokens:",
		ttl:    ttl,
	}
}

func (r *RedisTokenStore) key(sessionID string) string {
	return r.prefix + sessionID
}

func (r *RedisTokenStore) Get(ctx context.Context, sessionID, key string) (string, error) {
	val, err := r.client.HGet(ctx, r.key(sessionID), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("tokens: get %s: %w", key, err)
	}
	return val, nil
}

// Set overwrites the key; concurrent writers resolve as last writer wins.
func (r *RedisTokenStore) Set(ctx context.Context, sessionID, key, value string) error {
	if sessionID == "" {
		return fmt.Errorf("tokens: missing session_id")
	}

	k := r.key(sessionID)
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, k, key, value)
	pipe.Expire(ctx, k, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("tokens: set %s: %w", key, err)
	}
	return nil
}

func (r *RedisTokenStore) Delete(ctx context.Context, sessionID, key string) error {
	return r.client.HDel(ctx, r.key(sessionID), key).Err()
}

func (r *RedisTokenStore) Clear(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, r.key(sessionID)).Err()
}
