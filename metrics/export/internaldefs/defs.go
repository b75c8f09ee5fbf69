package internaldefs

import (
	goRecovery "github.com/nforsey/goRecovery"
)

// CounterDef defines a public type used by goRecovery APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goRecovery.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the recovery engine.
var CounterDefs = []CounterDef{
	{ID: goRecovery.MetricRecoveryRequest, Name: "gorecovery_request_total", Help: "Recovery token issuances for existing active accounts."},
	{ID: goRecovery.MetricRecoveryRequestSuppressed, Name: "gorecovery_request_suppressed_total", Help: "Recovery requests answered with the anti-enumeration decoy path."},
	{ID: goRecovery.MetricRecoveryRequestFailure, Name: "gorecovery_request_failure_total", Help: "Recovery requests that failed before issuance."},
	{ID: goRecovery.MetricValidateSuccess, Name: "gorecovery_validate_success_total", Help: "Successful read-only token validations."},
	{ID: goRecovery.MetricValidateFailure, Name: "gorecovery_validate_failure_total", Help: "Failed token validations."},
	{ID: goRecovery.MetricConsumeSuccess, Name: "gorecovery_consume_success_total", Help: "Successful single-use token consumptions."},
	{ID: goRecovery.MetricConsumeFailure, Name: "gorecovery_consume_failure_total", Help: "Failed token consumptions."},
	{ID: goRecovery.MetricConsumeRaceLost, Name: "gorecovery_consume_race_lost_total", Help: "Consumptions lost to a concurrent winner on the same token."},
	{ID: goRecovery.MetricTokenSuperseded, Name: "gorecovery_token_superseded_total", Help: "Tokens invalidated by a newer issuance for the same user."},
	{ID: goRecovery.MetricTokenExpired, Name: "gorecovery_token_expired_total", Help: "Tokens observed past expiry and defensively retired."},
	{ID: goRecovery.MetricSweepDeleted, Name: "gorecovery_sweep_deleted_total", Help: "Token rows removed by the retention sweep."},
	{ID: goRecovery.MetricRateLimitHit, Name: "gorecovery_rate_limit_hit_total", Help: "Rate-limit checks that denied requests."},
	{ID: goRecovery.MetricDispatchFailure, Name: "gorecovery_dispatch_failure_total", Help: "Notification dispatches that reported an error."},
}
