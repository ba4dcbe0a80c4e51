// Package revocation provides a Redis-backed revocation list for credential
// token IDs, shared by every authorization instance pointed at the same
// Redis.
//
// # Design
//
// Each revoked ID is a single Redis key with a TTL covering the token's
// remaining validity. Once the token itself has expired the entry is dead
// weight, so callers should pass the time left until exp. Lookups are one
// EXISTS; there is no local caching here because the rule-set cache above
// already bounds how often a given token is re-checked.
//
// # Architecture boundaries
//
// This package owns persistence only. Deciding WHEN to consult the list is
// the validator's job, and what a revoked token means for the request is the
// engine's.
//
// # What this package must NOT do
//
//   - Parse or interpret tokens; it stores opaque IDs.
//   - Swallow backend failures: an unreachable Redis is reported, never
//     treated as "not revoked".
package revocation
