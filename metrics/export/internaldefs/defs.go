package internaldefs

import (
	scitokens "github.com/djw8605/xrootd-scitokens"
)

// CounterDef binds a core metric ID to its exported name. Treated as
// immutable after initialization.
type CounterDef struct {
	ID   scitokens.MetricID
	Name string
	Help string
}

// HistogramDef binds a core histogram ID to its exported name. Treated as
// immutable after initialization.
type HistogramDef struct {
	ID   scitokens.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in render order.
var CounterDefs = []CounterDef{
	{ID: scitokens.MetricCacheHit, Name: "scitokens_cache_hit_total", Help: "Decisions served from a cached rule set."},
	{ID: scitokens.MetricCacheMiss, Name: "scitokens_cache_miss_total", Help: "Cache lookups that found no entry."},
	{ID: scitokens.MetricCacheExpired, Name: "scitokens_cache_expired_total", Help: "Cache lookups that found only an expired entry."},
	{ID: scitokens.MetricValidationSuccess, Name: "scitokens_validation_success_total", Help: "Token validations that produced a rule set."},
	{ID: scitokens.MetricValidationNotApplicable, Name: "scitokens_validation_not_applicable_total", Help: "Tokens the validator declined as not its format."},
	{ID: scitokens.MetricValidationFailure, Name: "scitokens_validation_failure_total", Help: "Token validations that failed."},
	{ID: scitokens.MetricGranted, Name: "scitokens_authorize_granted_total", Help: "Decisions granting a non-empty privilege mask."},
	{ID: scitokens.MetricChainDelegated, Name: "scitokens_authorize_delegated_total", Help: "Decisions handed to the chained authorizer."},
	{ID: scitokens.MetricDenied, Name: "scitokens_authorize_denied_total", Help: "Decisions answered with no privilege and no chain."},
	{ID: scitokens.MetricIdentityAssigned, Name: "scitokens_identity_assigned_total", Help: "Entity names assigned from token identities."},
	{ID: scitokens.MetricSweepRuns, Name: "scitokens_sweep_runs_total", Help: "Cache sweep passes."},
	{ID: scitokens.MetricSweepEvicted, Name: "scitokens_sweep_evicted_total", Help: "Expired rule sets removed by sweeps."},
	{ID: scitokens.MetricConfigReloads, Name: "scitokens_config_reloads_total", Help: "Accepted configuration reloads."},
	{ID: scitokens.MetricConfigErrors, Name: "scitokens_config_errors_total", Help: "Rejected configuration reloads."},
}

// HistogramDefs lists every exported histogram in render order.
var HistogramDefs = []HistogramDef{
	{ID: scitokens.MetricAuthorizeLatency, Name: "scitokens_authorize_latency_seconds", Help: "Authorize latency histogram."},
}

// HistogramBounds holds the upper bucket bounds, in seconds, as Prometheus
// le label values.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix holds the bounds as instrument-name-safe suffixes for
// exporters that cannot carry labels.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw snapshot slice to the fixed
// bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form
// both exposition formats expect.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
