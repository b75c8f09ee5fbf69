// Package password implements password hashing and verification with Argon2id defaults.
//
// # Output format
//
// Hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// The [Argon2] hasher supports transparent parameter upgrades: if a stored hash
// was produced with weaker parameters, [Argon2.NeedsUpgrade] returns true so the
// caller can re-hash after the next successful verification.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Password policy (length,
// complexity, blocklist) is enforced by the policy package before hashing.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords — callers supply plaintext and receive hashes.
//   - Import any other goRecovery package.
//   - Log plaintext passwords or hash parameters at runtime.
package password
