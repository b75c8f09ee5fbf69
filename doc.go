// Package goRecovery implements the account-recovery token security subsystem:
// issuance, validation, atomic single-use consumption, and invalidation of
// password-reset credentials, plus the password-strength policy enforced at
// reset time.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// goRecovery is the public surface. It exposes [Engine], [Builder], [Config],
// the collaborator contracts ([Directory], [TokenStore],
// [NotificationDispatcher]), and value types. All internal coordination —
// flow orchestration, token record encoding, rate limiting, audit dispatch —
// lives under internal/ and is never exported.
//
// The subsystem does not own the user directory, the durable token store
// engine, or notification rendering. Callers integrate their own directory
// and dispatcher; a Redis-backed [TokenStore] reference implementation is
// wired automatically when a client is supplied via [Builder.WithRedis].
//
// # What this package must NOT do
//
//   - Expose Redis clients, internal stores, or record encoding in its
//     public API.
//   - Log or return a token secret anywhere except embedded once in the
//     recovery link handed to the dispatcher.
//   - Perform I/O outside of Engine methods (construction via Builder is
//     allocation-only until Build).
//
// # Correctness contract
//
// ConsumeToken is the critical path. Two simultaneous calls with the same
// secret must result in exactly one password change; correctness is
// delegated entirely to the store's conditional mark-used operation, never
// to in-process locking.
package goRecovery
