// Package jwt provides the bundled credential validator: it recognizes
// JWT-shaped bearer tokens, checks their structural claims (expiry, audience,
// revocation), and compiles their scope claim into path-prefix permission
// rules for the authorization cache.
//
// This validator is deliberately NOT a trust layer. It decodes tokens without
// verifying signatures; issuer trust, key discovery, and signature checks
// belong to whatever stage sits in front of the storage server. Deployments
// that need them replace this Validator with their own implementation of the
// root interface.
package jwt
