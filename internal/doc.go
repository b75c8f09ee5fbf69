// Package internal contains helper utilities that are intentionally private
// to goRecovery, including secure secret generation and the anti-enumeration
// delay.
//
// # Sub-packages
//
//   - flows — pure-function flow orchestrators for every Engine operation
//   - limiters — fixed-window throttles for recovery request and consume
//   - stores — Redis-backed reference token store
//
// # What this package must NOT do
//
//   - Export types that appear in the public goRecovery API.
//   - Be imported by any package outside the goRecovery module.
package internal
