package scitokens

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Engine is the authorization decision layer: a concurrent, time-bounded
// cache of compiled rule sets keyed by raw credential token, composed with a
// validator that derives rules from tokens and an optional chained
// authorizer consulted whenever this layer has no opinion.
//
// Build one with [New]; an Engine is safe for concurrent use and is expected
// to sit on the host's request hot path.
type Engine struct {
	config    Config
	validator Validator
	chain     Authorizer
	logger    *slog.Logger
	audit     *auditDispatcher
	metrics   *Metrics
	now       Clock

	// audiences is replaced wholesale by Reconfigure; readers get the
	// current list without taking the cache lock.
	audiences atomic.Pointer[[]string]

	// mu guards only the map and the sweep gate. Validation and rule
	// application run outside it.
	mu        sync.Mutex
	cache     map[string]*RuleSet
	nextSweep uint64
}

// Close drains and stops the audit dispatcher. The Engine remains usable for
// decisions afterwards; further audit events are dropped.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were discarded because the
// dispatch buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all counters and the
// decision latency histogram.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// Audiences returns a copy of the currently configured audience list. An
// empty list means no audience restriction is configured; interpretation
// belongs to the validator.
func (e *Engine) Audiences() []string {
	if e == nil {
		return nil
	}
	p := e.audiences.Load()
	if p == nil || len(*p) == 0 {
		return nil
	}
	out := make([]string, len(*p))
	copy(out, *p)
	return out
}

// CacheSize reports the number of cached rule sets, expired entries
// included until the next sweep removes them.
func (e *Engine) CacheSize() int {
	if e == nil {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.cache)
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) metricAdd(id MetricID, n uint64) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Add(id, n)
}

func (e *Engine) metricObserve(id MetricID, d time.Duration) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Observe(id, d)
}
