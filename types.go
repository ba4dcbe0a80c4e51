package scitokens

import (
	"context"

	"github.com/djw8605/xrootd-scitokens/privilege"
)

// Entity describes the client a storage request runs on behalf of. The host
// builds one per request and passes it to [Engine.Authorize].
//
// Name is both input and output: when a validated credential asserts an
// identity and Name is still empty, Authorize assigns it in place. That
// write-back is the only external state this layer mutates. A non-empty Name
// is never overwritten.
type Entity struct {
	// Name is the subject identity, filled in by Authorize when a credential
	// asserts one and the field is empty.
	Name string

	// Host is the remote endpoint the request arrived from. Informational;
	// carried into audit events.
	Host string
}

// Grant is a Validator's successful product: the compiled rules a credential
// carries, the identity it asserts, and how long the compiled set may be
// cached.
type Grant struct {
	// Lifetime is the cache lifetime in seconds. The cache stores the rules
	// until now+Lifetime on its coarse monotonic scale.
	Lifetime uint64

	// Rules in generation order.
	Rules []Rule

	// Identity the credential asserts; empty means not asserted.
	Identity string
}

// Validator turns a raw credential token into a Grant. Implementations own
// all trust decisions (format, expiry, audience, revocation); the cache
// treats the token purely as an opaque key.
//
// Error contract: return [ErrNotApplicable] (possibly wrapped) for tokens
// that are not in a format the validator understands; any other error is
// treated as a validation failure. Both fall through to the chained
// authorizer. A Validator must be safe for concurrent use: cache misses for
// distinct tokens validate in parallel, and concurrent misses for the same
// token may validate it twice.
type Validator interface {
	Validate(ctx context.Context, token string) (*Grant, error)
}

// Authorizer is the decision capability: the privileges ent holds for op on
// path. The Engine both implements it and optionally delegates to another
// one (the chain), composing with authorization the host already has.
type Authorizer interface {
	Authorize(ctx context.Context, ent *Entity, op privilege.Operation, path string) privilege.Mask
}

// AuthorizerFunc adapts a plain function to the [Authorizer] interface.
type AuthorizerFunc func(ctx context.Context, ent *Entity, op privilege.Operation, path string) privilege.Mask

// Authorize calls f.
func (f AuthorizerFunc) Authorize(ctx context.Context, ent *Entity, op privilege.Operation, path string) privilege.Mask {
	return f(ctx, ent, op, path)
}
