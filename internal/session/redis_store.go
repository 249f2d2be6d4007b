// Package session provides Redis-backed session-cookie storage. Sessions map
// an opaque token to the authenticated user's ID.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"inkwell/internal/errs"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CookieName is the session cookie set on login.
const CookieName = "inkwell_session"

// Data holds what is stored for each session token.
type Data struct {
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// RedisStore implements session storage using Redis.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a new Redis-backed session store
func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client, prefix: "session:", ttl: ttl}, nil
}

func (s *RedisStore) key(token string) string {
	return s.prefix + token
}

// Create stores a new session for the user and returns the opaque token.
func (s *RedisStore) Create(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()

	data, err := json.Marshal(Data{UserID: userID, CreatedAt: time.Now()})
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.client.Set(ctx, s.key(token), data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}
	return token, nil
}

// Lookup resolves a token to the user ID it was issued for. Expired and
// unknown tokens report NotFound.
func (s *RedisStore) Lookup(ctx context.Context, token string) (string, error) {
	raw, err := s.client.Get(ctx, s.key(token)).Result()
	if err == redis.Nil {
		return "", errs.NotFound("session not found or expired")
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up session: %w", err)
	}

	var data Data
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return "", fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return data.UserID, nil
}

// Revoke deletes a session token. Revoking an unknown token is not an error.
func (s *RedisStore) Revoke(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.key(token)).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks if Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
