// Package stores provides the Redis-backed reference implementation of the
// durable recovery-token store.
//
// # Design
//
// Each token is a versioned, binary-encoded record addressed by a
// store-generated id, with three side indexes: a secret-digest key for
// exact-match lookup, a per-user set of unused token ids for cascade
// invalidation, and two sorted sets (by expiry, by used-at) that drive the
// maintenance sweep. The mark-used mutation is a WATCH/MULTI optimistic
// transaction with automatic retry on contention, so the used flag is a
// true compare-and-swap: exactly one concurrent caller wins.
//
// # Architecture boundaries
//
// This package owns persistence and concurrency control for token rows.
// It does NOT generate secrets, enforce rate limits, or make recovery
// decisions — those responsibilities belong to internal/flows.
//
// # What this package must NOT do
//
//   - Import goRecovery or any sibling internal package.
//   - Persist or log plaintext secrets; only digests are stored.
//   - Resurrect a used token: the flag is monotonic.
package stores
