package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps one JSON document per session under "session:<id>",
// expiring with the session.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "session:",
	}
}

func (r *RedisStore) key(sessionID string) string {
	return r.prefix + sessionID
}

// Create refuses to overwrite an existing session.
func (r *RedisStore) Create(ctx context.Context, s Session) error {
	if s.SessionID == "" || s.User.Subject == "" {
		return errors.New("session: missing session_id or subject")
	}
	err := r.write(ctx, s, "NX")
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("session: id %q already in use", s.SessionID)
	}
	return err
}

func (r *RedisStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	raw, err := r.client.Get(ctx, r.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("session: decode %s: %w", sessionID, err)
	}
	return &s, nil
}

func (r *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, r.key(sessionID)).Err()
}

// Update rewrites a live session. A session deleted in the meantime (for
// example by a logout racing enrichment) stays deleted, and an expired one
// is dropped instead of extended.
func (r *RedisStore) Update(ctx context.Context, s Session) error {
	if s.SessionID == "" {
		return errors.New("session: missing session_id")
	}
	if !s.ExpiresAt.After(time.Now()) {
		return r.Delete(ctx, s.SessionID)
	}

	err := r.write(ctx, s, "XX")
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

func (r *RedisStore) write(ctx context.Context, s Session, mode string) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session: expires_at must be in the future")
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session: encode %s: %w", s.SessionID, err)
	}

	return r.client.SetArgs(ctx, r.key(s.SessionID), data, redis.SetArgs{
		Mode: mode,
		TTL:  ttl,
	}).Err()
}
