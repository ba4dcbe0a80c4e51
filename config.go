package scitokens

import (
	"errors"
	"time"
)

// Config carries the tunable settings of the authorization layer. Configure
// once, before Build; the Engine treats its Config as immutable.
type Config struct {
	Cache   CacheConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

// CacheConfig tunes the token→rule-set cache.
type CacheConfig struct {
	// SweepInterval is the minimum spacing between opportunistic expiry
	// sweeps. A sweep is not a background task: the first decision arriving
	// after the interval has elapsed pays for a full pass over the cache.
	// Whole seconds; the default is 60 seconds.
	SweepInterval time.Duration
}

// AuditConfig tunes the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig tunes metric collection.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the baseline configuration: 60 second sweep
// interval, audit and metrics disabled.
func DefaultConfig() Config {
	return Config{
		Cache: CacheConfig{
			SweepInterval: 60 * time.Second,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

// Validate rejects configurations the Engine cannot honor.
func (c *Config) Validate() error {
	if c.Cache.SweepInterval < time.Second {
		return errors.New("Cache SweepInterval must be at least one second")
	}
	if c.Cache.SweepInterval != c.Cache.SweepInterval.Truncate(time.Second) {
		return errors.New("Cache SweepInterval must be whole seconds")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when Audit is enabled")
	}

	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}
