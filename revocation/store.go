package revocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable wraps any Redis transport failure. Callers must not treat
// it as "not revoked".
var ErrUnavailable = errors.New("revocation backend unavailable")

const defaultPrefix = "scitokens"

// Store is a revocation list backed by Redis. Safe for concurrent use.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// New creates a [Store] backed by the given Redis client. An empty prefix
// selects "scitokens"; use distinct prefixes to keep independent deployments
// apart on a shared Redis.
func New(redisClient redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Store{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *Store) key(id string) string {
	return s.prefix + ":revoked:" + id
}

// Revoke marks a token ID as revoked for ttl. Pass the time remaining until
// the token's exp; zero ttl keeps the entry until lifted.
func (s *Store) Revoke(ctx context.Context, id string, ttl time.Duration) error {
	if err := s.redis.Set(ctx, s.key(id), "1", ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// IsRevoked reports whether the token ID is on the revocation list.
func (s *Store) IsRevoked(ctx context.Context, id string) (bool, error) {
	n, err := s.redis.Exists(ctx, s.key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return n > 0, nil
}

// Lift removes a token ID from the revocation list. Reports whether an
// entry was present.
func (s *Store) Lift(ctx context.Context, id string) (bool, error) {
	n, err := s.redis.Del(ctx, s.key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return n > 0, nil
}
