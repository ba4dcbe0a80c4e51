package scitokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/djw8605/xrootd-scitokens/privilege"
)

// Authorize decides what privileges ent holds for op on path. It implements
// [Authorizer], so an Engine can itself serve as another Engine's chain.
//
// The credential token is taken from ctx (see [WithToken]). Decisions follow
// a fixed protocol: no token delegates to the chain; a valid cached rule set
// is reused; otherwise the validator runs (outside the cache lock) and its
// grant is cached; rule application that yields no privilege delegates to
// the chain. Without a chain, "no opinion" answers [privilege.None].
//
// Side effect, by contract: when the rule set asserts an identity and
// ent.Name is empty, Authorize assigns ent.Name in place. A non-empty Name
// is never overwritten.
//
// Authorize never fails: validator errors (and panics) are absorbed, logged,
// and degrade to chain delegation. Nothing from this layer aborts the host's
// request pipeline.
func (e *Engine) Authorize(ctx context.Context, ent *Entity, op privilege.Operation, path string) privilege.Mask {
	start := time.Now()
	defer func() {
		e.metricObserve(MetricAuthorizeLatency, time.Since(start))
	}()

	token, ok := TokenFromContext(ctx)
	if !ok {
		return e.delegate(ctx, ent, op, path, "no credential token")
	}

	now := e.now()
	e.sweepIfDue(ctx, now)

	rs, ok := e.lookup(token, now)
	if !ok {
		var err error
		rs, err = e.generate(ctx, ent, token, now)
		if err != nil {
			if errors.Is(err, ErrNotApplicable) {
				e.metricInc(MetricValidationNotApplicable)
				return e.delegate(ctx, ent, op, path, "token not applicable")
			}
			e.metricInc(MetricValidationFailure)
			e.logger.Warn("token validation failed", "host", entHost(ent), "error", err)
			e.emitValidation(ctx, ent, "", false, err)
			return e.delegate(ctx, ent, op, path, "token validation failed")
		}
	}

	if id := rs.Identity(); id != "" && ent != nil && ent.Name == "" {
		ent.Name = id
		e.metricInc(MetricIdentityAssigned)
		e.emitIdentity(ctx, ent)
	}

	mask := rs.Apply(op, path)
	if mask == privilege.None {
		return e.delegate(ctx, ent, op, path, "no matching rule")
	}

	e.metricInc(MetricGranted)
	e.emitDecision(ctx, auditEventAuthorizeGranted, ent, op, path, mask, true, "")
	return mask
}

// lookup returns the cached rule set for token when present and unexpired.
// The lock covers only the map read.
func (e *Engine) lookup(token string, now uint64) (*RuleSet, bool) {
	e.mu.Lock()
	rs, ok := e.cache[token]
	e.mu.Unlock()

	switch {
	case !ok:
		e.metricInc(MetricCacheMiss)
		return nil, false
	case rs.Expired(now):
		e.metricInc(MetricCacheExpired)
		return nil, false
	default:
		e.metricInc(MetricCacheHit)
		return rs, true
	}
}

// generate validates token and caches the resulting rule set. It runs
// outside the cache lock, so a slow validator never blocks unrelated
// requests. Concurrent misses for the same token may both land here; the
// last write wins, and both products are equivalent by the Validator
// contract, so the race is benign duplicated work.
func (e *Engine) generate(ctx context.Context, ent *Entity, token string, now uint64) (*RuleSet, error) {
	grant, err := e.validate(ctx, token)
	if err != nil {
		return nil, err
	}

	rs := NewRuleSet(now+grant.Lifetime, grant.Identity, grant.Rules)

	e.mu.Lock()
	e.cache[token] = rs
	e.mu.Unlock()

	e.metricInc(MetricValidationSuccess)
	e.emitValidation(ctx, ent, rs.Identity(), true, nil)
	return rs, nil
}

// validate is the decision boundary around the external validator: errors
// pass through, panics are recovered and reported as validation failures.
func (e *Engine) validate(ctx context.Context, token string) (grant *Grant, err error) {
	defer func() {
		if r := recover(); r != nil {
			grant = nil
			err = fmt.Errorf("%w: validator panic: %v", ErrValidation, r)
		}
	}()

	grant, err = e.validator.Validate(ctx, token)
	if err != nil {
		return nil, err
	}
	if grant == nil {
		return nil, fmt.Errorf("%w: validator returned no grant", ErrValidation)
	}
	return grant, nil
}

// sweepIfDue removes expired entries when the sweep interval has elapsed.
// Maintenance piggybacks on request traffic: no timer, no goroutine. The
// full pass holds the lock, the only cache operation whose cost scales with
// cache size, acceptable because it runs at most once per interval.
func (e *Engine) sweepIfDue(ctx context.Context, now uint64) {
	interval := uint64(e.config.Cache.SweepInterval / time.Second)

	e.mu.Lock()
	if now <= e.nextSweep {
		e.mu.Unlock()
		return
	}

	var evicted uint64
	for token, rs := range e.cache {
		if rs.Expired(now) {
			delete(e.cache, token)
			evicted++
		}
	}
	e.nextSweep = now + interval
	remaining := len(e.cache)
	e.mu.Unlock()

	e.metricInc(MetricSweepRuns)
	e.metricAdd(MetricSweepEvicted, evicted)
	e.logger.Debug("cache sweep", "evicted", evicted, "remaining", remaining)
	if evicted > 0 {
		e.emitSweep(ctx, evicted, remaining)
	}
}

// delegate hands the decision to the chained authorizer. With no chain
// configured, "no privilege" is the terminal answer.
func (e *Engine) delegate(ctx context.Context, ent *Entity, op privilege.Operation, path string, reason string) privilege.Mask {
	if e.chain == nil {
		e.metricInc(MetricDenied)
		e.emitDecision(ctx, auditEventAuthorizeDenied, ent, op, path, privilege.None, false, reason)
		return privilege.None
	}

	e.metricInc(MetricChainDelegated)
	e.emitDecision(ctx, auditEventAuthorizeDelegated, ent, op, path, privilege.None, true, reason)
	return e.chain.Authorize(ctx, ent, op, path)
}
