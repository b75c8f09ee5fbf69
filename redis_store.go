package goRecovery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nforsey/goRecovery/internal"
	"github.com/nforsey/goRecovery/internal/stores"
	"github.com/redis/go-redis/v9"
)

// RedisTokenStore is the Redis-backed [TokenStore]. Plaintext secrets never
// reach Redis: secrets are reduced to a SHA-256 digest at this boundary and
// the digest doubles as the lookup index.
type RedisTokenStore struct {
	store *stores.RecoveryTokenStore
}

// NewRedisTokenStore describes the newredistokenstore operation and its observable behavior.
//
// NewRedisTokenStore may return an error when input validation, dependency calls, or security checks fail.
// NewRedisTokenStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewRedisTokenStore(redisClient redis.UniversalClient, prefix string) *RedisTokenStore {
	return &RedisTokenStore{
		store: stores.NewRecoveryTokenStore(redisClient, prefix),
	}
}

// Insert describes the insert operation and its observable behavior.
//
// Insert may return an error when input validation, dependency calls, or security checks fail.
// Insert does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisTokenStore) Insert(ctx context.Context, token RecoveryToken) (string, error) {
	id, err := s.store.Insert(ctx, stores.TokenRecord{
		UserID:     token.UserID,
		SecretHash: internal.HashSecret(token.Secret),
		IssuedAt:   token.IssuedAt.Unix(),
		ExpiresAt:  token.ExpiresAt.Unix(),
		IPAddress:  token.Request.IPAddress,
		UserAgent:  token.Request.UserAgent,
	})
	if err != nil {
		return "", mapTokenStoreError(err)
	}
	return id, nil
}

// FindBySecret describes the findbysecret operation and its observable behavior.
//
// FindBySecret may return an error when input validation, dependency calls, or security checks fail.
// FindBySecret does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisTokenStore) FindBySecret(ctx context.Context, secret string) (RecoveryToken, error) {
	record, err := s.store.FindBySecretHash(ctx, internal.HashSecret(secret))
	if err != nil {
		return RecoveryToken{}, mapTokenStoreError(err)
	}
	return recoveryTokenFromRecord(record), nil
}

// ConditionalMarkUsed describes the conditionalmarkused operation and its observable behavior.
//
// ConditionalMarkUsed may return an error when input validation, dependency calls, or security checks fail.
// ConditionalMarkUsed does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisTokenStore) ConditionalMarkUsed(ctx context.Context, id string, usedAt time.Time) (bool, error) {
	won, err := s.store.MarkUsed(ctx, id, usedAt.Unix())
	if err != nil {
		return false, mapTokenStoreError(err)
	}
	return won, nil
}

// BulkMarkUsed describes the bulkmarkused operation and its observable behavior.
//
// BulkMarkUsed may return an error when input validation, dependency calls, or security checks fail.
// BulkMarkUsed does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisTokenStore) BulkMarkUsed(ctx context.Context, userID, excludeID string, usedAt time.Time) (int, error) {
	touched, err := s.store.MarkAllUsed(ctx, userID, excludeID, usedAt.Unix())
	if err != nil {
		return touched, mapTokenStoreError(err)
	}
	return touched, nil
}

// DeleteExpiredOrStale describes the deleteexpiredorstale operation and its observable behavior.
//
// DeleteExpiredOrStale may return an error when input validation, dependency calls, or security checks fail.
// DeleteExpiredOrStale does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisTokenStore) DeleteExpiredOrStale(ctx context.Context, now time.Time, retention time.Duration) (int, error) {
	deleted, err := s.store.DeleteExpiredOrStale(ctx, now.Unix(), now.Add(-retention).Unix())
	if err != nil {
		return deleted, mapTokenStoreError(err)
	}
	return deleted, nil
}

func recoveryTokenFromRecord(record stores.TokenRecord) RecoveryToken {
	token := RecoveryToken{
		ID:        record.ID,
		UserID:    record.UserID,
		IssuedAt:  time.Unix(record.IssuedAt, 0).UTC(),
		ExpiresAt: time.Unix(record.ExpiresAt, 0).UTC(),
		Used:      record.Used,
		Request: RequestContext{
			IPAddress: record.IPAddress,
			UserAgent: record.UserAgent,
		},
	}
	if record.Used && record.UsedAt > 0 {
		token.UsedAt = time.Unix(record.UsedAt, 0).UTC()
	}
	return token
}

func mapTokenStoreError(err error) error {
	switch {
	case errors.Is(err, stores.ErrTokenNotFound):
		return ErrTokenNotFound
	case errors.Is(err, stores.ErrSecretExists):
		return fmt.Errorf("%w: secret collision", ErrRecoveryUnavailable)
	default:
		return fmt.Errorf("%w: %v", ErrRecoveryUnavailable, err)
	}
}
