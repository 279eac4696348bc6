// Package session provides the session token registry backing identity
// resolution. Each user holds at most one active token at a time.
package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	apperrors "huddle/api/pkg/errors"
)

const (
	tokenPrefix = "session:tok:"
	userPrefix  = "session:uid:"
)

// RedisStore implements the token registry using Redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis-backed session store
func NewRedisStore(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// NewRedisStoreWithClient creates a store from an existing Redis client
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Issue returns the user's active token, minting a fresh one only when the
// user holds none. A user logging in while already logged in therefore gets
// the token already on record.
func (s *RedisStore) Issue(ctx context.Context, userID int64) (string, error) {
	uid := strconv.FormatInt(userID, 10)

	existing, err := s.client.Get(ctx, userPrefix+uid).Result()
	if err == nil && existing != "" {
		return existing, nil
	}
	if err != nil && err != redis.Nil {
		return "", fmt.Errorf("lookup active token: %w", err)
	}

	token := uuid.NewString()
	if err := s.client.Set(ctx, tokenPrefix+token, uid, 0).Err(); err != nil {
		return "", fmt.Errorf("save token: %w", err)
	}
	if err := s.client.Set(ctx, userPrefix+uid, token, 0).Err(); err != nil {
		return "", fmt.Errorf("save token owner: %w", err)
	}
	return token, nil
}

// Resolve maps a token to the user id it was issued to. Logged-out and
// never-issued tokens fail identically.
func (s *RedisStore) Resolve(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, apperrors.Unauthorized("invalid token")
	}
	uid, err := s.client.Get(ctx, tokenPrefix+token).Result()
	if err == redis.Nil {
		return 0, apperrors.Unauthorized("invalid token")
	}
	if err != nil {
		return 0, fmt.Errorf("resolve token: %w", err)
	}
	userID, err := strconv.ParseInt(uid, 10, 64)
	if err != nil {
		return 0, apperrors.Unauthorized("invalid token")
	}
	return userID, nil
}

// Revoke invalidates a token. Reports whether the token was active.
func (s *RedisStore) Revoke(ctx context.Context, token string) (bool, error) {
	uid, err := s.client.Get(ctx, tokenPrefix+token).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup token: %w", err)
	}
	if err := s.client.Del(ctx, tokenPrefix+token, userPrefix+uid).Err(); err != nil {
		return false, fmt.Errorf("revoke token: %w", err)
	}
	return true, nil
}

// Reset discards every registered token.
func (s *RedisStore) Reset(ctx context.Context) error {
	for _, prefix := range []string{tokenPrefix, userPrefix} {
		var cursor uint64
		for {
			keys, next, err := s.client.Scan(ctx, cursor, prefix+"*", 100).Result()
			if err != nil {
				return fmt.Errorf("scan sessions: %w", err)
			}
			if len(keys) > 0 {
				if err := s.client.Del(ctx, keys...).Err(); err != nil {
					return fmt.Errorf("delete sessions: %w", err)
				}
			}
			cursor = next
			if cursor == 0 {
				break
			}
		}
	}
	return nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks if Redis is reachable
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
