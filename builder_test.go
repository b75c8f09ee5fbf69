package goRecovery

import (
	"context"
	"testing"
	"time"
)

func testBuilderConfig() Config {
	cfg := DefaultConfig()
	cfg.Recovery.BaseURL = "https://accounts.example.com"
	// Keep argon2 cheap for test builds.
	cfg.Password.Memory = 8192
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Password.SaltLength = 16
	cfg.Password.KeyLength = 16
	return cfg
}

func TestBuildWithRedis(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	engine, err := New().
		WithConfig(testBuilderConfig()).
		WithRedis(rdb).
		WithDirectory(newMockDirectory()).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	if engine.tokens == nil {
		t.Fatal("expected a default redis token store")
	}
	if engine.limiter == nil {
		t.Fatal("expected a limiter when redis is configured")
	}
	if engine.dispatcher == nil {
		t.Fatal("expected a default dispatcher")
	}

	// The engine is usable end to end without a real dispatcher.
	if _, err := engine.RequestRecovery(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("RequestRecovery on a fresh engine failed: %v", err)
	}
}

func TestBuildRequiresDirectory(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	_, err := New().
		WithConfig(testBuilderConfig()).
		WithRedis(rdb).
		Build()
	if err == nil {
		t.Fatal("expected Build to fail without a directory")
	}
}

func TestBuildRequiresStoreOrRedis(t *testing.T) {
	cfg := testBuilderConfig()
	cfg.Recovery.EnableEmailThrottle = false
	cfg.Recovery.EnableIPThrottle = false

	_, err := New().
		WithConfig(cfg).
		WithDirectory(newMockDirectory()).
		Build()
	if err == nil {
		t.Fatal("expected Build to fail without a token store or redis")
	}
}

func TestBuildThrottleRequiresRedis(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	// Throttling is on by default; a custom store without redis cannot
	// back the limiter.
	_, err := New().
		WithConfig(testBuilderConfig()).
		WithDirectory(newMockDirectory()).
		WithTokenStore(NewRedisTokenStore(rdb, "art")).
		Build()
	if err == nil {
		t.Fatal("expected Build to fail when throttling has no redis")
	}

	cfg := testBuilderConfig()
	cfg.Recovery.EnableEmailThrottle = false
	cfg.Recovery.EnableIPThrottle = false
	engine, err := New().
		WithConfig(cfg).
		WithDirectory(newMockDirectory()).
		WithTokenStore(NewRedisTokenStore(rdb, "art")).
		Build()
	if err != nil {
		t.Fatalf("Build with throttling disabled failed: %v", err)
	}
	defer engine.Close()

	if engine.limiter != nil {
		t.Fatal("expected no limiter without a redis client")
	}
}

func TestBuildWithoutThrottleBudgetAllowsConsume(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	// Both throttles off with a zero budget is a valid config; the
	// limiter installed alongside the redis client must stay inert.
	cfg := testBuilderConfig()
	cfg.Recovery.EnableEmailThrottle = false
	cfg.Recovery.EnableIPThrottle = false
	cfg.Recovery.MaxRequests = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config unexpectedly invalid: %v", err)
	}

	directory := newMockDirectory()
	dispatcher := newMockDispatcher()
	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithDirectory(directory).
		WithDispatcher(dispatcher).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()
	seedActiveAccount(t, directory, engine)

	ctx := context.Background()
	if _, err := engine.RequestRecovery(ctx, "alice@example.com"); err != nil {
		t.Fatalf("RequestRecovery failed: %v", err)
	}
	secret := secretFromLink(t, dispatcher.waitLink(t))

	if err := engine.ConsumeToken(ctx, secret, "New-password-456"); err != nil {
		t.Fatalf("ConsumeToken failed: %v", err)
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	cfg := testBuilderConfig()
	cfg.Recovery.TokenTTL = 0

	_, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithDirectory(newMockDirectory()).
		Build()
	if err == nil {
		t.Fatal("expected Build to reject an invalid config")
	}
}

func TestBuilderIsSingleUse(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	b := New().
		WithConfig(testBuilderConfig()).
		WithRedis(rdb).
		WithDirectory(newMockDirectory())

	engine, err := b.Build()
	if err != nil {
		t.Fatalf("first Build failed: %v", err)
	}
	defer engine.Close()

	if _, err := b.Build(); err == nil {
		t.Fatal("expected second Build to fail")
	}
}

func TestBuildWithClock(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	engine, err := New().
		WithConfig(testBuilderConfig()).
		WithRedis(rdb).
		WithDirectory(newMockDirectory()).
		WithClock(func() time.Time { return fixed }).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	if engine.now == nil || !engine.now().Equal(fixed) {
		t.Fatal("expected the configured clock to be installed")
	}
}

func TestBuildRejectsBadArgonConfig(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	cfg := testBuilderConfig()
	cfg.Password.SaltLength = 1

	_, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithDirectory(newMockDirectory()).
		Build()
	if err == nil {
		t.Fatal("expected Build to reject unusable argon2 parameters")
	}
}
