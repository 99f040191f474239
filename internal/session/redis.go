package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// Store persists sessions
type Store interface {
	Create(ctx context.Context, userID int64) (string, error)
	Lookup(ctx context.Context, token string) (State, error)
	Destroy(ctx context.Context, token string) error
}

// Compile-time check to ensure RedisStore implements Store
var _ Store = (*RedisStore)(nil)

// RedisStore keeps sessions in Redis with a fixed TTL
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a session store
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Create starts a session for userID and returns its token
func (r *RedisStore) Create(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	if err := r.client.Set(ctx, keyPrefix+token, userID, r.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return token, nil
}

// Lookup resolves a token. Unknown or expired tokens are anonymous, not errors.
func (r *RedisStore) Lookup(ctx context.Context, token string) (State, error) {
	if token == "" {
		return Anonymous, nil
	}

	val, err := r.client.Get(ctx, keyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return Anonymous, nil
	}
	if err != nil {
		return Anonymous, fmt.Errorf("failed to look up session: %w", err)
	}

	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return Anonymous, fmt.Errorf("corrupt session %s: %w", token, err)
	}
	return AuthenticatedAs(token, userID), nil
}

// Destroy ends a session. Destroying an unknown token is not an error.
func (r *RedisStore) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := r.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (r *RedisStore) Close() error {
	return r.client.Close()
}
