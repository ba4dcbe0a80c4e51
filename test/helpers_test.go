//go:build integration
// +build integration

package test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	gjwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	scitokens "github.com/djw8605/xrootd-scitokens"
	tokenval "github.com/djw8605/xrootd-scitokens/jwt"
	"github.com/djw8605/xrootd-scitokens/revocation"
)

// integrationClock drives the engine's coarse second counter so cache-expiry
// scenarios advance instantly instead of sleeping through real time. The
// validator's own exp checks still use the wall clock; tokens minted with an
// hour of life stay valid for the whole test.
type integrationClock struct {
	now atomic.Uint64
}

func (c *integrationClock) Now() uint64 { return c.now.Load() }

func (c *integrationClock) Advance(secs uint64) { c.now.Add(secs) }

// newIntegrationEngine wires the full production stack against an in-process
// Redis: the JWT validator with revocation checking, and the engine itself
// serving as the validator's audience source so Reconfigure flows through.
func newIntegrationEngine(t *testing.T) (*scitokens.Engine, *revocation.Store, *integrationClock, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := revocation.New(rdb, "it")

	var engine *scitokens.Engine
	validator, err := tokenval.NewValidator(tokenval.Config{
		Audiences: tokenval.AudienceSourceFunc(func() []string {
			return engine.Audiences()
		}),
		Revocations: store,
	})
	if err != nil {
		t.Fatalf("NewValidator failed: %v", err)
	}

	clk := &integrationClock{}
	engine, err = scitokens.New().
		WithValidator(validator).
		WithClock(clk.Now).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	return engine, store, clk, func() {
		engine.Close()
		_ = rdb.Close()
		mr.Close()
	}
}

type mintedClaims struct {
	Scope string `json:"scope"`
	gjwt.RegisteredClaims
}

// mintToken signs a SciToken-profile test token. The structural validator
// never verifies signatures, so a throwaway HMAC key suffices.
func mintToken(t *testing.T, scope, subject, audience string, ttl time.Duration) (token, jti string) {
	t.Helper()

	now := time.Now()
	jti = uuid.NewString()

	cl := mintedClaims{
		Scope: scope,
		RegisteredClaims: gjwt.RegisteredClaims{
			Subject:   subject,
			ID:        jti,
			IssuedAt:  gjwt.NewNumericDate(now),
			ExpiresAt: gjwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if audience != "" {
		cl.Audience = gjwt.ClaimStrings{audience}
	}

	token, err := gjwt.NewWithClaims(gjwt.SigningMethodHS256, cl).SignedString([]byte("integration-secret"))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}
	return token, jti
}
