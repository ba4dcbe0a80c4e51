package scitokens

import (
	"sync/atomic"
	"time"
)

// MetricID indexes one counter or histogram in the fixed metric table.
type MetricID uint16

const (
	// MetricCacheHit counts decisions served from a valid cached rule set.
	MetricCacheHit MetricID = iota
	// MetricCacheMiss counts tokens with no cache entry at lookup time.
	MetricCacheMiss
	// MetricCacheExpired counts lookups that found only an expired entry.
	MetricCacheExpired
	// MetricValidationSuccess counts validator calls that produced a grant.
	MetricValidationSuccess
	// MetricValidationNotApplicable counts tokens the validator did not
	// recognize as its format.
	MetricValidationNotApplicable
	// MetricValidationFailure counts validator errors, including recovered
	// panics.
	MetricValidationFailure
	// MetricGranted counts decisions answered with a non-empty privilege
	// mask from cached rules.
	MetricGranted
	// MetricChainDelegated counts decisions handed to the chained
	// authorizer.
	MetricChainDelegated
	// MetricDenied counts decisions that ended with no privilege and no
	// chain to consult.
	MetricDenied
	// MetricIdentityAssigned counts entity names filled in from a
	// credential's asserted identity.
	MetricIdentityAssigned
	// MetricSweepRuns counts opportunistic cache sweeps.
	MetricSweepRuns
	// MetricSweepEvicted counts entries removed by sweeps.
	MetricSweepEvicted
	// MetricConfigReloads counts successful audience reconfigurations.
	MetricConfigReloads
	// MetricConfigErrors counts rejected configuration sources.
	MetricConfigErrors
	// MetricAuthorizeLatency is the decision latency histogram.
	MetricAuthorizeLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

// paddedCounter keeps each counter on its own cache line so concurrent
// decisions do not false-share.
type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics stores the authorization layer's counters and latency histogram.
// All write paths are atomic and allocation-free.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of every counter and histogram,
// consumed by the exporters under metrics/export.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

func (m *Metrics) Add(id MetricID, n uint64) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, n)
}

// Observe records a decision latency sample. Only the Authorize histogram
// exists; other IDs are ignored.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricAuthorizeLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricAuthorizeLatency].buckets[i])
		}
		s.Histograms[MetricAuthorizeLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
