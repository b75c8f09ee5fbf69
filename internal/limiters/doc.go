// Package limiters provides the fixed-window throttles guarding recovery
// request and consume operations.
//
// All limiters are nil-safe: calling any method on a nil receiver returns
// nil, so an Engine built without Redis simply runs unthrottled.
//
// # Architecture boundaries
//
// The limiter owns its Redis key namespace and error types. Policy
// thresholds come from the Config supplied at construction time; flow
// functions decide the consequences of a denial.
package limiters
