package goRecovery

import (
	"context"
	"errors"
	"time"

	"github.com/nforsey/goRecovery/internal/limiters"
	"github.com/nforsey/goRecovery/password"
	"github.com/redis/go-redis/v9"
)

// Builder defines a public type used by goRecovery APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	directory  Directory
	tokens     TokenStore
	dispatcher NotificationDispatcher
	auditSink  AuditSink
	now        func() time.Time

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
//
// WithRedis may return an error when input validation, dependency calls, or security checks fail.
// WithRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithDirectory describes the withdirectory operation and its observable behavior.
//
// WithDirectory may return an error when input validation, dependency calls, or security checks fail.
// WithDirectory does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithDirectory(directory Directory) *Builder {
	b.directory = directory
	return b
}

// WithTokenStore describes the withtokenstore operation and its observable behavior.
//
// WithTokenStore may return an error when input validation, dependency calls, or security checks fail.
// WithTokenStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithTokenStore(store TokenStore) *Builder {
	b.tokens = store
	return b
}

// WithDispatcher describes the withdispatcher operation and its observable behavior.
//
// WithDispatcher may return an error when input validation, dependency calls, or security checks fail.
// WithDispatcher does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithDispatcher(dispatcher NotificationDispatcher) *Builder {
	b.dispatcher = dispatcher
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink may return an error when input validation, dependency calls, or security checks fail.
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled may return an error when input validation, dependency calls, or security checks fail.
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithClock overrides the engine clock. Test hook; production engines use
// time.Now.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	if b.directory == nil {
		return nil, errors.New("directory required")
	}

	if b.tokens == nil && b.redis == nil {
		return nil, errors.New("token store or redis client required")
	}

	if b.redis == nil && (cfg.Recovery.EnableEmailThrottle || cfg.Recovery.EnableIPThrottle) {
		return nil, errors.New("throttling requires redis client")
	}

	engine := &Engine{
		config:     cfg,
		directory:  b.directory,
		tokens:     b.tokens,
		dispatcher: b.dispatcher,
	}

	if engine.tokens == nil {
		engine.tokens = NewRedisTokenStore(b.redis, cfg.Recovery.StorePrefix)
	}
	if engine.dispatcher == nil {
		engine.dispatcher = noopDispatcher{}
	}
	if b.redis != nil {
		engine.limiter = limiters.NewRecoveryLimiter(b.redis, limiters.Config{
			EnableEmailThrottle: cfg.Recovery.EnableEmailThrottle,
			EnableIPThrottle:    cfg.Recovery.EnableIPThrottle,
			MaxRequests:         cfg.Recovery.MaxRequests,
			Window:              cfg.Recovery.ThrottleWindow,
		})
	}

	engine.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)
	engine.now = b.now

	ph, err := password.NewArgon2(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}
	engine.passwordHash = ph

	b.built = true

	return engine, nil
}

// noopDispatcher swallows notification sends. Installed when no dispatcher
// is configured so issuance still works in directory-only deployments.
type noopDispatcher struct{}

func (noopDispatcher) SendRecoveryLink(context.Context, string, string, string, time.Time) error {
	return nil
}

func (noopDispatcher) SendRecoveryConfirmation(context.Context, string, string, string) error {
	return nil
}
