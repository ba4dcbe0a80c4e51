// Package scitokens provides a token-based authorization decision layer for
// storage servers: a concurrent, time-bounded cache mapping opaque credential
// tokens to compiled path-prefix permission rules, plus the chained-fallback
// protocol that composes those rules with authorization the host already has.
//
// The package is designed for concurrent server workloads: [Engine.Authorize]
// is safe to call from any number of goroutines after construction through
// [Builder.Build], and it sits directly on the request hot path.
//
// # Architecture boundaries
//
// scitokens is the public surface. It exposes [Engine], [Builder], [Config],
// the [Validator] and [Authorizer] interfaces, and value types (RuleSet,
// Grant, MetricsSnapshot, AuditEvent). The privilege model lives in the
// privilege sub-package; the bundled token validator in jwt; the revocation
// list in revocation; metric exporters under metrics/export.
//
// # What this package must NOT do
//
//   - Interpret token contents. The raw token string is a cache key and a
//     validator input, nothing more.
//   - Perform trust verification. Signature, issuer, and audience semantics
//     belong to the [Validator] implementation.
//   - Fail a host request. Validator errors and panics degrade to chain
//     delegation; configuration errors keep the previous configuration.
//   - Persist rules or coordinate caches across processes. Each process
//     owns an independent cache.
//
// # Performance contract
//
// Authorize is the hot path. A cache hit takes one mutex acquisition around
// a map read and allocates nothing (with audit disabled). Validation and
// rule application run outside the lock, so a slow validator only stalls
// requests for its own token. The opportunistic sweep is the single
// operation whose cost scales with cache size; it runs at most once per
// sweep interval.
package scitokens
