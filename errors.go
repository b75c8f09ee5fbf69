package goRecovery

import "errors"

var (
	// ErrEngineNotReady is returned when an Engine method is called before
	// the required collaborators were wired through [Builder.Build].
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrRecoveryDisabled is returned when the recovery subsystem is turned
	// off in [RecoveryConfig].
	ErrRecoveryDisabled = errors.New("account recovery disabled")
	// ErrEmailInvalid is returned when the supplied email is empty or not
	// plausibly an address. It never reveals whether an account exists.
	ErrEmailInvalid = errors.New("invalid email")
	// ErrAccountDisabled is returned when the account behind a token or a
	// recovery request is deactivated and cannot be recovered.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrTokenInvalid is returned when no token row matches the supplied
	// secret.
	ErrTokenInvalid = errors.New("recovery token invalid")
	// ErrTokenUsed is returned when the token was already consumed or
	// superseded by a newer issuance.
	ErrTokenUsed = errors.New("recovery token already used")
	// ErrTokenExpired is returned when the token's expiry has passed.
	ErrTokenExpired = errors.New("recovery token expired")
	// ErrPasswordPolicy is returned when the new password fails the
	// strength policy. The wrapped detail carries the policy reason.
	ErrPasswordPolicy = errors.New("password policy violation")
	// ErrPasswordReuse is returned when the new password matches the
	// account's current password.
	ErrPasswordReuse = errors.New("new password must differ from current password")
	// ErrPasswordUpdateFailed is returned when the directory rejected the
	// password update after the token was already consumed. The token is
	// not reusable; callers must surface this as retryable-with-support,
	// never as a validation failure.
	ErrPasswordUpdateFailed = errors.New("password update failed after token consumption")
	// ErrRecoveryRateLimited is returned when the request or consume
	// throttle denied the call.
	ErrRecoveryRateLimited = errors.New("recovery rate limited")
	// ErrRecoveryUnavailable is returned when the directory, token store,
	// or their backends are unreachable or timed out.
	ErrRecoveryUnavailable = errors.New("recovery backend unavailable")
)

// FailureClass partitions every error returned by the Engine into the
// propagation tiers callers are expected to act on.
type FailureClass int

const (
	// ClassUnknown covers errors not originated by this package.
	ClassUnknown FailureClass = iota
	// ClassPolicyRejection errors are safe to show to the user verbatim.
	ClassPolicyRejection
	// ClassTokenState errors must be collapsed into a generic
	// "link invalid or expired" message to avoid leaking which condition
	// applied.
	ClassTokenState
	// ClassInfrastructure errors are surfaced as a generic retry-later
	// message and logged with full detail server-side.
	ClassInfrastructure
)

// Classify maps an Engine error to its [FailureClass]. Wrapped errors are
// matched with [errors.Is].
func Classify(err error) FailureClass {
	switch {
	case err == nil:
		return ClassUnknown
	case errors.Is(err, ErrPasswordPolicy),
		errors.Is(err, ErrPasswordReuse),
		errors.Is(err, ErrEmailInvalid):
		return ClassPolicyRejection
	case errors.Is(err, ErrTokenInvalid),
		errors.Is(err, ErrTokenUsed),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrAccountDisabled):
		return ClassTokenState
	case errors.Is(err, ErrRecoveryUnavailable),
		errors.Is(err, ErrPasswordUpdateFailed),
		errors.Is(err, ErrRecoveryRateLimited),
		errors.Is(err, ErrRecoveryDisabled),
		errors.Is(err, ErrEngineNotReady):
		return ClassInfrastructure
	default:
		return ClassUnknown
	}
}
