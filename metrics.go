package goRecovery

import "sync/atomic"

// MetricID identifies a specific counter in the in-process metrics system.
type MetricID uint16

const (
	// MetricRecoveryRequest counts issue attempts that produced a token.
	MetricRecoveryRequest MetricID = iota
	// MetricRecoveryRequestSuppressed counts enumeration-safe generic
	// responses for unknown accounts.
	MetricRecoveryRequestSuppressed
	// MetricRecoveryRequestFailure counts issue attempts that failed.
	MetricRecoveryRequestFailure
	// MetricValidateSuccess counts read-only validations that passed.
	MetricValidateSuccess
	// MetricValidateFailure counts validations rejected by token state.
	MetricValidateFailure
	// MetricConsumeSuccess counts successful single-use consumptions.
	MetricConsumeSuccess
	// MetricConsumeFailure counts rejected consumption attempts.
	MetricConsumeFailure
	// MetricConsumeRaceLost counts consume calls that lost the
	// conditional mark-used race to a concurrent winner.
	MetricConsumeRaceLost
	// MetricTokenSuperseded counts tokens invalidated by a newer issuance
	// or by a sibling's successful consumption.
	MetricTokenSuperseded
	// MetricTokenExpired counts tokens rejected past their expiry.
	MetricTokenExpired
	// MetricSweepDeleted counts rows removed by the maintenance sweep.
	MetricSweepDeleted
	// MetricRateLimitHit counts throttle denials.
	MetricRateLimitHit
	// MetricDispatchFailure counts fire-and-forget notification failures.
	MetricDispatchFailure
	metricIDCount
)

const cacheLineSize = 64

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds atomic counters for every recovery outcome. A nil or
// disabled Metrics is a no-op on every method.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// MetricsSnapshot is a point-in-time deep copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// NewMetrics creates a [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled: cfg.Enabled,
	}
}

// Enabled reports whether counters are being recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc adds one to the counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Add adds n to the counter. Used by the sweep, which reports batches.
func (m *Metrics) Add(id MetricID, n uint64) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, n)
}

// Value returns the current counter value.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot returns a consistent-enough copy of all counters for export.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}

	s := MetricsSnapshot{
		Counters: make(map[MetricID]uint64, int(metricIDCount)),
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	return s
}
