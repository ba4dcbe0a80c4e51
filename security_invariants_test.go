package scitokens

import (
	"context"
	"testing"

	"github.com/djw8605/xrootd-scitokens/privilege"
)

func TestSecurityInvariantDenyByDefault(t *testing.T) {
	v := &stubValidator{err: ErrValidation}
	engine := newDecisionEngine(t, v, nil, nil)

	// No token, no chain.
	if mask := engine.Authorize(context.Background(), &Entity{}, privilege.OpRead, "/data/f"); mask != privilege.None {
		t.Fatalf("tokenless request granted %v", mask)
	}

	// Failing token, no chain.
	if mask := engine.Authorize(tokenCtx("tok-bad"), &Entity{}, privilege.OpRead, "/data/f"); mask != privilege.None {
		t.Fatalf("failed validation granted %v", mask)
	}
}

// A decision mask can never exceed the union of the privileges the cached
// rules carry, whatever operation or path is asked about.
func TestSecurityInvariantMaskBoundedByRules(t *testing.T) {
	rules := []Rule{
		{Op: privilege.OpRead, Prefix: "/data/"},
		{Op: privilege.OpStat, Prefix: "/data/"},
		{Op: privilege.OpCreate, Prefix: "/scratch/"},
	}
	union := privilege.None
	for _, r := range rules {
		union = union.Union(privilege.Of(r.Op))
	}

	v := &stubValidator{grant: &Grant{Lifetime: 100, Rules: rules}}
	engine := newDecisionEngine(t, v, nil, nil)

	paths := []string{"/data/f", "/scratch/f", "/data/", "/", "/elsewhere", ""}
	for _, op := range privilege.Operations() {
		for _, path := range paths {
			mask := engine.Authorize(tokenCtx("tok-a"), &Entity{}, op, path)
			if mask&^union != privilege.None {
				t.Fatalf("op=%v path=%q granted %v beyond rule union %v", op, path, mask, union)
			}
		}
	}
}

// Once past expiry a credential grants nothing on its own: the stale rules
// must not leak into decisions even though the entry may still be in the map.
func TestSecurityInvariantExpiredNeverGrants(t *testing.T) {
	clk := &testClock{}
	v := &stubValidator{grant: &Grant{Lifetime: 5, Rules: []Rule{
		{Op: privilege.OpRead, Prefix: "/data/"},
	}}}
	engine := newDecisionEngine(t, v, nil, clk)

	if mask := engine.Authorize(tokenCtx("tok-a"), &Entity{}, privilege.OpRead, "/data/f"); !mask.Has(privilege.Read) {
		t.Fatalf("expected initial grant, got %v", mask)
	}

	// The token itself now fails revalidation.
	v.err = ErrValidation
	v.grant = nil
	clk.Advance(6)

	if mask := engine.Authorize(tokenCtx("tok-a"), &Entity{}, privilege.OpRead, "/data/f"); mask != privilege.None {
		t.Fatalf("expired credential granted %v", mask)
	}
}

// Authorize absorbs validator panics; the decision degrades to the chain
// and later calls keep working.
func TestSecurityInvariantValidatorPanicContained(t *testing.T) {
	v := &stubValidator{panicMsg: "validator exploded"}
	chain := &recordingChain{mask: privilege.Read}
	engine := newDecisionEngine(t, v, chain, nil)

	mask := engine.Authorize(tokenCtx("tok-a"), &Entity{}, privilege.OpRead, "/data/f")
	if !mask.Has(privilege.Read) {
		t.Fatalf("expected the chain's answer after a panic, got %v", mask)
	}
	if chain.calls.Load() != 1 {
		t.Fatalf("expected one chain consultation, got %d", chain.calls.Load())
	}

	v.panicMsg = ""
	v.grant = readGrant()
	if mask := engine.Authorize(tokenCtx("tok-b"), &Entity{}, privilege.OpRead, "/data/f"); !mask.Has(privilege.Read) {
		t.Fatalf("engine unusable after recovered panic: %v", mask)
	}
}

// An identity established by the host is never overwritten by a token's
// asserted identity.
func TestSecurityInvariantEstablishedIdentityPreserved(t *testing.T) {
	v := &stubValidator{grant: readGrant()}
	engine := newDecisionEngine(t, v, nil, nil)

	ent := &Entity{Name: "host-set-identity", Host: "worker01"}
	engine.Authorize(tokenCtx("tok-a"), ent, privilege.OpRead, "/data/f")

	if ent.Name != "host-set-identity" {
		t.Fatalf("established identity overwritten: %q", ent.Name)
	}
}

// The chain's answer passes through unmodified: this layer never adds
// privileges to a delegated decision.
func TestSecurityInvariantChainAnswerUnmodified(t *testing.T) {
	chain := &recordingChain{mask: privilege.Lookup}
	v := &stubValidator{err: ErrNotApplicable}
	engine := newDecisionEngine(t, v, chain, nil)

	mask := engine.Authorize(tokenCtx("opaque"), &Entity{}, privilege.OpRead, "/data/f")
	if mask != privilege.Lookup {
		t.Fatalf("delegated answer altered: %v", mask)
	}
	if chain.lastOp != privilege.OpRead || chain.lastPath != "/data/f" {
		t.Fatalf("chain consulted with wrong request: op=%v path=%q", chain.lastOp, chain.lastPath)
	}
}
