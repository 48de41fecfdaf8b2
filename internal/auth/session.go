package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore is the revocable-session authority. A token is usable iff it
// is present here; the key and value are both the token itself.
type SessionStore interface {
	Save(ctx context.Context, token string, ttl time.Duration) error
	Exists(ctx context.Context, token string) (bool, error)
	Revoke(ctx context.Context, token string) error
}

type redisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore returns a Redis-backed session store.
func NewRedisSessionStore(client *redis.Client) SessionStore {
	return &redisSessionStore{client: client}
}

func (s *redisSessionStore) Save(ctx context.Context, token string, ttl time.Duration) error {
	return s.client.Set(ctx, token, token, ttl).Err()
}

func (s *redisSessionStore) Exists(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *redisSessionStore) Revoke(ctx context.Context, token string) error {
	return s.client.Del(ctx, token).Err()
}
