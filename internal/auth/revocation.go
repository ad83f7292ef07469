package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revocationPrefix = "session:revoked:"

// RevocationStore tracks revoked session tokens until they expire naturally.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type redisRevocationStore struct {
	client *redis.Client
}

// NewRedisRevocationStore returns a Redis-backed revocation store.
func NewRedisRevocationStore(client *redis.Client) RevocationStore {
	return &redisRevocationStore{client: client}
}

func (s *redisRevocationStore) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, revocationPrefix+jti, "1", ttl).Err()
}

func (s *redisRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, revocationPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
