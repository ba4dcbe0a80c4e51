// Package middleware adapts the authorization engine to net/http handler
// chains.
//
// [Authorize] reads the bearer token, maps the HTTP method onto a filesystem
// operation, asks the engine for the request's privilege mask, and rejects
// requests that lack the needed bit. The decision entity rides the request
// context so handlers can read the identity the token asserted.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into engine calls. It does NOT
// inspect tokens itself and holds no policy beyond the method-to-operation
// mapping.
//
// # What this package must NOT do
//
//   - Parse credentials (the engine's validator owns that).
//   - Cache decisions (the engine owns that).
//   - Report WHY a request was rejected to the client.
package middleware
