package credstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "ravenauth:"

// RedisStore persists the credential reference in Redis under a single
// prefixed key with a TTL, so the session survives process restarts. A zero
// TTL stores the credential without expiry; backend-side session lifetime
// still applies.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisStore returns a Redis-backed credential store. The key is
// prefix+"credential"; an empty prefix falls back to "ravenauth:".
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{
		client: client,
		key:    prefix + "credential",
		ttl:    ttl,
	}
}

// Get returns the stored credential, or "" when the key is absent or expired.
func (s *RedisStore) Get(ctx context.Context) (string, error) {
	val, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return val, nil
}

// Set replaces the stored credential and resets its TTL.
func (s *RedisStore) Set(ctx context.Context, credential string) error {
	return s.client.Set(ctx, s.key, credential, s.ttl).Err()
}

// Clear deletes the stored credential. Clearing an absent key is not an
// error.
func (s *RedisStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}
