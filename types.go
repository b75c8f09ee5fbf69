package goRecovery

import (
	"context"
	"errors"
	"time"
)

// AccountStatus represents the lifecycle state of a directory account as
// far as recovery is concerned.
type AccountStatus uint8

const (
	// AccountActive accounts may request and consume recovery tokens.
	AccountActive AccountStatus = iota
	// AccountDeactivated accounts cannot be recovered.
	AccountDeactivated
)

// AccountRecord is the directory row consumed by the Engine. It carries the
// fields recovery needs and nothing else; password hashes travel through
// [Directory.GetPasswordHash] separately.
type AccountRecord struct {
	ID        string
	Email     string
	FirstName string
	Status    AccountStatus
}

// AccountSummary is the read-only view of an account returned by
// [Engine.ValidateToken] for callers that render a reset form.
type AccountSummary struct {
	ID        string
	Email     string
	FirstName string
}

// Directory is the external user-directory contract the Engine consumes.
// Implementations own account storage; the Engine never caches directory
// results across calls.
//
// FindAccountByEmail and FindAccountByID return [ErrAccountNotFound] when
// no row matches. Every method must honor ctx deadlines.
type Directory interface {
	FindAccountByEmail(ctx context.Context, email string) (AccountRecord, error)
	FindAccountByID(ctx context.Context, id string) (AccountRecord, error)
	GetPasswordHash(ctx context.Context, id string) (string, error)
	SetPasswordHash(ctx context.Context, id, hash string) error
}

// ErrAccountNotFound is the sentinel Directory implementations return for
// missing accounts. Kept separate from the Engine error set because it is
// never propagated to callers: the issue path converts it into the generic
// anti-enumeration success.
var ErrAccountNotFound = errors.New("account not found")

// RecoveryToken is a single token row. The store owns ID generation; the
// Engine owns every other field. Secret holds the base64url rendering of a
// 256-bit random value and is populated only on the issue path — stores
// persist a digest, not the plaintext.
type RecoveryToken struct {
	ID        string
	UserID    string
	Secret    string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Used      bool
	UsedAt    time.Time
	Request   RequestContext
}

// RequestContext captures where a recovery request came from. Audit and
// notification payload only; never part of a security decision.
type RequestContext struct {
	IPAddress string
	UserAgent string
}

// TokenStore is the durable persistence contract the Engine consumes.
// Implementations must provide row-level consistency: ConditionalMarkUsed
// is a compare-and-swap on Used and is the single primitive the Engine's
// concurrency correctness rests on.
type TokenStore interface {
	// Insert persists a new token row and returns the store-generated id.
	// Secret uniqueness is enforced as a defense-in-depth constraint.
	Insert(ctx context.Context, token RecoveryToken) (string, error)
	// FindBySecret resolves a token by exact secret match. Returns
	// [ErrTokenNotFound] when no row matches.
	FindBySecret(ctx context.Context, secret string) (RecoveryToken, error)
	// ConditionalMarkUsed flips Used from false to true, setting UsedAt.
	// Returns false without error when the row was already used; the
	// caller lost the race.
	ConditionalMarkUsed(ctx context.Context, id string, usedAt time.Time) (bool, error)
	// BulkMarkUsed marks every unused token for the user as used,
	// optionally excluding one id. Returns the number of rows touched.
	BulkMarkUsed(ctx context.Context, userID, excludeID string, usedAt time.Time) (int, error)
	// DeleteExpiredOrStale removes rows whose expiry has passed and used
	// rows older than the retention window. Idempotent.
	DeleteExpiredOrStale(ctx context.Context, now time.Time, retention time.Duration) (int, error)
}

// ErrTokenNotFound is the sentinel TokenStore implementations return for
// missing rows. The Engine converts it to [ErrTokenInvalid].
var ErrTokenNotFound = errors.New("token not found")

// NotificationDispatcher receives fire-and-forget notification triggers.
// Dispatch failures never fail the triggering operation; they are audited.
// Rendering and transport are entirely the implementation's concern.
type NotificationDispatcher interface {
	SendRecoveryLink(ctx context.Context, email, firstName, link string, expiresAt time.Time) error
	SendRecoveryConfirmation(ctx context.Context, email, firstName, ipAddress string) error
}

// IssueResult is returned by [Engine.RequestRecovery]. It is structurally
// identical whether or not the account exists; TokenID is populated only
// for existing active accounts and is intended for tests and operational
// tooling, never for API responses.
type IssueResult struct {
	TokenID string
}

// TokenValidation is returned by [Engine.ValidateToken] on success.
type TokenValidation struct {
	TokenID   string
	ExpiresAt time.Time
	Account   AccountSummary
}
