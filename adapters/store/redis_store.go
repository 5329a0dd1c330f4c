package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/guildpost/guildpost/core"
)

// RedisStore is a Redis implementation of the challenge, user and token
// stores.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "guildpost:",
	}
}

func (s *RedisStore) challengeKey(id string) string { return s.prefix + "challenge:" + id }
func (s *RedisStore) userKey(address string) string { return s.prefix + "user:" + address }
func (s *RedisStore) tokenKey(id string) string     { return s.prefix + "invalidated:" + id }

// Create persists a challenge with a TTL, so unconsumed nonces expire on
// their own.
func (s *RedisStore) Create(ctx context.Context, challenge *core.Challenge) error {
	payload, err := json.Marshal(challenge)
	if err != nil {
		return fmt.Errorf("failed to marshal challenge: %w", err)
	}

	ttl := time.Until(challenge.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("challenge already expired")
	}

	if err := s.client.Set(ctx, s.challengeKey(challenge.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store challenge: %w", err)
	}
	return nil
}

// Consume fetches and deletes a challenge in one round trip. GETDEL is
// atomic on the server, so concurrent logins presenting the same nonce see
// at most one hit.
func (s *RedisStore) Consume(ctx context.Context, id string) (*core.Challenge, error) {
	payload, err := s.client.GetDel(ctx, s.challengeKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume challenge: %w", err)
	}

	var challenge core.Challenge
	if err := json.Unmarshal([]byte(payload), &challenge); err != nil {
		return nil, fmt.Errorf("failed to unmarshal challenge: %w", err)
	}
	if challenge.Expired(time.Now()) {
		return nil, nil
	}
	return &challenge, nil
}

// FindByAddress returns the stored user or (nil, nil).
func (s *RedisStore) FindByAddress(ctx context.Context, address string) (*core.User, error) {
	payload, err := s.client.Get(ctx, s.userKey(address)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	var user core.User
	if err := json.Unmarshal([]byte(payload), &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return &user, nil
}

// FindOrCreate upserts a user by wallet address. SETNX keeps the first
// writer's record when two first logins race.
func (s *RedisStore) FindOrCreate(ctx context.Context, address string) (*core.User, error) {
	user := &core.User{
		Address:   address,
		CreatedAt: time.Now(),
	}
	payload, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal user: %w", err)
	}

	created, err := s.client.SetNX(ctx, s.userKey(address), payload, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if created {
		return user, nil
	}
	return s.FindByAddress(ctx, address)
}

// Update overwrites a user record.
func (s *RedisStore) Update(ctx context.Context, user *core.User) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	if err := s.client.Set(ctx, s.userKey(user.Address), payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// InvalidateToken marks a token as invalidated in Redis.
func (s *RedisStore) InvalidateToken(ctx context.Context, tokenID string, expiry time.Duration) error {
	if err := s.client.Set(ctx, s.tokenKey(tokenID), "1", expiry).Err(); err != nil {
		return fmt.Errorf("failed to invalidate token: %w", err)
	}
	return nil
}

// IsTokenInvalidated checks if a token is invalidated in Redis.
func (s *RedisStore) IsTokenInvalidated(ctx context.Context, tokenID string) (bool, error) {
	val, err := s.client.Exists(ctx, s.tokenKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token invalidation: %w", err)
	}
	return val > 0, nil
}
