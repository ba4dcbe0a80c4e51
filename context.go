package scitokens

import "context"

type tokenContextKey struct{}

// WithToken attaches the raw credential token to ctx. The Engine reads it in
// [Engine.Authorize]; a request without one delegates straight to the chain.
// The token string is used exactly as given — it is the cache key and the
// validator input, never parsed by the cache itself.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey{}, token)
}

// TokenFromContext returns the raw credential token attached by [WithToken].
func TokenFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}

	token, ok := ctx.Value(tokenContextKey{}).(string)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}
