package scitokens

import (
	"io"
	"log/slog"
	"time"
)

// Builder assembles an [Engine]. Configure with the WithX methods, then call
// Build once; a Builder is not safe for concurrent use and cannot be reused.
type Builder struct {
	config    Config
	validator Validator
	chain     Authorizer
	logger    *slog.Logger
	auditSink AuditSink
	clock     Clock

	built bool
}

// New returns a Builder primed with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithValidator sets the credential validator. Required.
func (b *Builder) WithValidator(v Validator) *Builder {
	b.validator = v
	return b
}

// WithChain sets the fallback authorizer consulted whenever the engine has
// no opinion: no token, unrecognized token, validation failure, or rules
// that grant nothing. Optional; without one, "no opinion" answers
// [privilege.None].
func (b *Builder) WithChain(chain Authorizer) *Builder {
	b.chain = chain
	return b
}

// WithLogger sets the diagnostic logger. Optional; the default engine is
// silent.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithAuditSink sets the audit event destination and enables auditing.
// Buffer size and drop policy come from [AuditConfig]; set those through
// WithConfig before this call.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	if sink != nil {
		b.config.Audit.Enabled = true
	}
	return b
}

// WithClock replaces the engine's coarse monotonic clock. A test hook:
// expiry and sweep behavior become deterministic under an injected clock.
func (b *Builder) WithClock(clock Clock) *Builder {
	b.clock = clock
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and assembles the Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	if b.validator == nil {
		return nil, ErrValidatorRequired
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	clock := b.clock
	if clock == nil {
		clock = monotonicSeconds
	}

	engine := &Engine{
		config:    cfg,
		validator: b.validator,
		chain:     b.chain,
		logger:    logger,
		now:       clock,
		cache:     make(map[string]*RuleSet),
	}

	engine.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)

	// First sweep becomes due one interval from construction.
	engine.nextSweep = engine.now() + uint64(cfg.Cache.SweepInterval/time.Second)

	b.built = true

	return engine, nil
}
