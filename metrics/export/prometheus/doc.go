// Package prometheus provides Prometheus collectors for goRecovery metrics.
//
// [NewPrometheusExporter] accepts a [goRecovery.Engine] and exposes an
// [net/http.Handler] that renders all goRecovery counters in Prometheus text
// exposition format. Counter names are prefixed gorecovery_*_total.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus
