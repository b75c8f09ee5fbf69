package goRecovery

import (
	"errors"
	"strings"
	"time"
)

// Config defines every tunable of the recovery engine.
//
// Config instances are intended to be configured during initialization and
// then treated as immutable unless documented otherwise.
type Config struct {
	Recovery RecoveryConfig
	Password PasswordConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
RECOVERY CONFIG
====================================
*/

// RecoveryConfig controls token issuance and consumption.
//
// TokenTTL is a subsystem-wide constant by contract: callers cannot vary it
// per request. Retention bounds how long consumed rows stay visible to the
// sweep for audit purposes.
type RecoveryConfig struct {
	Enabled   bool
	TokenTTL  time.Duration
	Retention time.Duration

	// BaseURL is the public origin embedded in recovery links, e.g.
	// "https://accounts.example.com". The link path is fixed.
	BaseURL string

	EnableEmailThrottle bool
	EnableIPThrottle    bool
	MaxRequests         int
	ThrottleWindow      time.Duration

	// DispatchTimeout bounds the background notification send.
	DispatchTimeout time.Duration

	// StorePrefix namespaces the Redis-backed token store's keys.
	StorePrefix string
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig holds the argon2id parameters used when hashing the new
// password before it is handed to the directory.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull sheds events instead of blocking the caller when the
	// buffer is saturated. Dropped counts are observable via
	// [Engine.AuditDropped].
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the baseline configuration the [Builder] starts
// from: one-hour tokens, seven-day retention, throttling enabled.
func DefaultConfig() Config {
	return defaultConfig()
}

// Validate reports the first configuration problem found, or nil.
func (c Config) Validate() error {
	return validateConfig(c)
}

func defaultConfig() Config {
	return Config{
		Recovery: RecoveryConfig{
			Enabled:             true,
			TokenTTL:            time.Hour,
			Retention:           7 * 24 * time.Hour,
			BaseURL:             "",
			EnableEmailThrottle: true,
			EnableIPThrottle:    true,
			MaxRequests:         5,
			ThrottleWindow:      15 * time.Minute,
			DispatchTimeout:     5 * time.Second,
			StorePrefix:         "art",
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// All fields are value types; a shallow copy is a deep copy.
	return cfg
}

func validateConfig(cfg Config) error {
	if !cfg.Recovery.Enabled {
		return nil
	}
	if cfg.Recovery.TokenTTL <= 0 {
		return errors.New("recovery token ttl must be positive")
	}
	if cfg.Recovery.Retention <= 0 {
		return errors.New("recovery retention must be positive")
	}
	if cfg.Recovery.BaseURL != "" && !strings.HasPrefix(cfg.Recovery.BaseURL, "https://") && !strings.HasPrefix(cfg.Recovery.BaseURL, "http://") {
		return errors.New("recovery base url must be an http(s) origin")
	}
	if cfg.Recovery.MaxRequests <= 0 && (cfg.Recovery.EnableEmailThrottle || cfg.Recovery.EnableIPThrottle) {
		return errors.New("recovery throttle requires a positive request budget")
	}
	if cfg.Recovery.DispatchTimeout <= 0 {
		return errors.New("recovery dispatch timeout must be positive")
	}
	if cfg.Recovery.StorePrefix == "" {
		return errors.New("recovery store prefix must not be empty")
	}
	return nil
}
