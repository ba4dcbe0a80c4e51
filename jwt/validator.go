package jwt

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	scitokens "github.com/djw8605/xrootd-scitokens"
)

// DefaultMaxCacheLifetime bounds how long a compiled rule set may be cached,
// regardless of how far away the token's own expiry is.
const DefaultMaxCacheLifetime = 60 * time.Second

// AudienceSource supplies the accepted audience list at validation time. The
// root Engine implements it, so reconfiguration reaches the validator without
// restarting anything. An empty list means no audience restriction.
type AudienceSource interface {
	Audiences() []string
}

// AudienceSourceFunc adapts a function to the [AudienceSource] interface.
type AudienceSourceFunc func() []string

func (f AudienceSourceFunc) Audiences() []string { return f() }

// RevocationChecker answers whether a token ID has been revoked.
// Implemented by revocation.Store; optional.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, id string) (bool, error)
}

// Config tunes the bundled validator. The zero value is usable: no audience
// restriction, no revocation checking, default cache lifetime cap.
type Config struct {
	// MaxCacheLifetime caps the Grant lifetime. Zero selects
	// DefaultMaxCacheLifetime.
	MaxCacheLifetime time.Duration

	// Leeway tolerates clock skew when checking exp and nbf. At most two
	// minutes.
	Leeway time.Duration

	// Audiences, when set and non-empty, requires the token's aud claim to
	// intersect the accepted list.
	Audiences AudienceSource

	// Revocations, when set, rejects tokens whose ID is revoked. The ID is
	// the jti claim, or the hex SHA-256 of the whole token when jti is
	// absent.
	Revocations RevocationChecker
}

// Validator recognizes JWT-shaped tokens and compiles their scope claim into
// permission rules. Implements the root Validator interface. Safe for
// concurrent use.
type Validator struct {
	config Config
	parser *jwt.Parser
}

// claims is the SciToken-profile claim set: the registered claims plus the
// space-separated scope claim.
type claims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

func NewValidator(cfg Config) (*Validator, error) {
	if cfg.MaxCacheLifetime == 0 {
		cfg.MaxCacheLifetime = DefaultMaxCacheLifetime
	}
	if cfg.MaxCacheLifetime < time.Second {
		return nil, errors.New("MaxCacheLifetime must be at least one second")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}

	return &Validator{
		config: cfg,
		parser: jwt.NewParser(),
	}, nil
}

// Validate implements the root Validator interface.
//
// Tokens that are not JWT-shaped return ErrNotApplicable so the decision
// falls through to the chain silently. JWT-shaped tokens that fail any check
// return a wrapped ErrValidation.
func (v *Validator) Validate(ctx context.Context, token string) (*scitokens.Grant, error) {
	if !looksLikeJWT(token) {
		return nil, scitokens.ErrNotApplicable
	}

	cl := &claims{}
	if _, _, err := v.parser.ParseUnverified(token, cl); err != nil {
		return nil, fmt.Errorf("%w: %v", scitokens.ErrValidation, err)
	}

	now := time.Now()

	if cl.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing exp claim", scitokens.ErrValidation)
	}
	if !now.Before(cl.ExpiresAt.Time.Add(v.config.Leeway)) {
		return nil, fmt.Errorf("%w: token expired", scitokens.ErrValidation)
	}
	if cl.NotBefore != nil && now.Add(v.config.Leeway).Before(cl.NotBefore.Time) {
		return nil, fmt.Errorf("%w: token not yet valid", scitokens.ErrValidation)
	}

	if err := v.checkAudience(cl); err != nil {
		return nil, err
	}
	if err := v.checkRevocation(ctx, token, cl); err != nil {
		return nil, err
	}

	return &scitokens.Grant{
		Lifetime: v.cacheLifetime(now, cl.ExpiresAt.Time),
		Rules:    CompileScope(cl.Scope),
		Identity: cl.Subject,
	}, nil
}

// looksLikeJWT is the applicability test: three non-empty dot-separated
// segments. Anything else is some other credential format and not ours to
// judge.
func looksLikeJWT(token string) bool {
	first := strings.IndexByte(token, '.')
	if first <= 0 {
		return false
	}
	rest := token[first+1:]
	second := strings.IndexByte(rest, '.')
	if second <= 0 {
		return false
	}
	return strings.IndexByte(rest[second+1:], '.') < 0
}

func (v *Validator) checkAudience(cl *claims) error {
	if v.config.Audiences == nil {
		return nil
	}
	accepted := v.config.Audiences.Audiences()
	if len(accepted) == 0 {
		return nil
	}

	for _, aud := range cl.Audience {
		for _, want := range accepted {
			if aud == want {
				return nil
			}
		}
	}
	return fmt.Errorf("%w: audience not accepted", scitokens.ErrValidation)
}

func (v *Validator) checkRevocation(ctx context.Context, token string, cl *claims) error {
	if v.config.Revocations == nil {
		return nil
	}

	id := cl.ID
	if id == "" {
		id = tokenDigest(token)
	}

	revoked, err := v.config.Revocations.IsRevoked(ctx, id)
	if err != nil {
		// Fail closed toward the chain: an unreachable revocation backend
		// must not let possibly-revoked tokens grant privileges.
		return fmt.Errorf("%w: revocation check: %v", scitokens.ErrValidation, err)
	}
	if revoked {
		return fmt.Errorf("%w: token revoked", scitokens.ErrValidation)
	}
	return nil
}

// cacheLifetime converts the token expiry into a Grant lifetime: whole
// seconds until exp, capped by MaxCacheLifetime, at least one second for a
// token that is still valid. Tokens admitted only by leeway have a negative
// remaining lifetime and land on the one-second floor.
func (v *Validator) cacheLifetime(now, exp time.Time) uint64 {
	until := exp.Sub(now)
	if until > v.config.MaxCacheLifetime {
		until = v.config.MaxCacheLifetime
	}
	if until < time.Second {
		return 1
	}
	return uint64(until / time.Second)
}

func tokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
