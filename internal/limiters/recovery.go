package limiters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrRecoveryRateLimited      = errors.New("recovery rate limited")
	ErrRecoveryRedisUnavailable = errors.New("recovery limiter redis unavailable")
)

// Config holds the fixed-window budgets for recovery throttling.
type Config struct {
	EnableEmailThrottle bool
	EnableIPThrottle    bool
	MaxRequests         int
	Window              time.Duration
}

// RecoveryLimiter enforces per-email, per-token, and per-IP fixed windows
// using Redis counters.
type RecoveryLimiter struct {
	redis  redis.UniversalClient
	config Config
}

func NewRecoveryLimiter(redisClient redis.UniversalClient, cfg Config) *RecoveryLimiter {
	return &RecoveryLimiter{
		redis:  redisClient,
		config: cfg,
	}
}

// CheckRequest throttles token issuance by normalized email and caller IP.
func (l *RecoveryLimiter) CheckRequest(ctx context.Context, email, ip string) error {
	if l == nil {
		return nil
	}
	if l.config.EnableEmailThrottle && email != "" {
		if err := l.enforceFixedWindow(ctx, requestEmailKey(email)); err != nil {
			return err
		}
	}
	if l.config.EnableIPThrottle && ip != "" {
		if err := l.enforceFixedWindow(ctx, requestIPKey(ip)); err != nil {
			return err
		}
	}
	return nil
}

// CheckConsume throttles consumption attempts by token id and caller IP.
// The token-id window caps online guessing against a single link; the IP
// window caps sweeps across many links.
func (l *RecoveryLimiter) CheckConsume(ctx context.Context, tokenID, ip string) error {
	if l == nil {
		return nil
	}
	if tokenID != "" {
		if err := l.enforceFixedWindow(ctx, consumeTokenKey(tokenID)); err != nil {
			return err
		}
	}
	if l.config.EnableIPThrottle && ip != "" {
		if err := l.enforceFixedWindow(ctx, consumeIPKey(ip)); err != nil {
			return err
		}
	}
	return nil
}

func (l *RecoveryLimiter) enforceFixedWindow(ctx context.Context, key string) error {
	// A non-positive budget means no window at all; Incr-then-reject
	// would deny every call.
	if l.config.MaxRequests <= 0 {
		return nil
	}

	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRecoveryRedisUnavailable, err)
	}

	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.config.Window).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrRecoveryRedisUnavailable, err)
		}
	}

	if count > int64(l.config.MaxRequests) {
		return ErrRecoveryRateLimited
	}

	return nil
}

func requestEmailKey(email string) string {
	return "arl:req:em:" + email
}

func requestIPKey(ip string) string {
	return "arl:req:ip:" + ip
}

func consumeTokenKey(tokenID string) string {
	return "arl:con:tk:" + tokenID
}

func consumeIPKey(ip string) string {
	return "arl:con:ip:" + ip
}
