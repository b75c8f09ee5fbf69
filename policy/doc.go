// Package policy implements password-strength validation for account recovery.
//
// # Rules
//
// Rules run in a fixed order and the first failure wins:
//
//  1. Length: 8 to 128 characters.
//  2. Complexity: at least three of {uppercase, lowercase, digit, symbol}.
//  3. Blocklist: the lowercased password must not match a known common password.
//
// # Architecture boundaries
//
// This package is pure: no I/O at validation time, no clocks, no allocation
// of secrets. Reuse checks against the current password hash belong to the
// Engine because they need the directory.
//
// # What this package must NOT do
//
//   - Hash, store, or transmit passwords.
//   - Import any other goRecovery package.
//   - Produce output that embeds the candidate password.
package policy
