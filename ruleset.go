package scitokens

import (
	"strings"

	"github.com/djw8605/xrootd-scitokens/privilege"
)

// Rule grants the privilege of one operation beneath a path prefix. Prefix
// matching is byte-for-byte with no normalization: no case folding, no
// trailing-slash handling.
type Rule struct {
	Op     privilege.Operation
	Prefix string
}

// RuleSet is the compiled permission set held by one credential token: an
// ordered rule list, the identity the token asserts (may be empty), and an
// absolute expiry on the coarse monotonic scale.
//
// A RuleSet is immutable after construction. The cache hands the same
// *RuleSet to every request carrying the same token until expiry; eviction
// never invalidates a reference an in-flight request already holds.
type RuleSet struct {
	expiresAt uint64
	identity  string
	rules     []Rule
}

// NewRuleSet builds a frozen RuleSet. The rule slice is copied; callers keep
// ownership of theirs. Construction is the only mutation point.
func NewRuleSet(expiresAt uint64, identity string, rules []Rule) *RuleSet {
	rs := &RuleSet{
		expiresAt: expiresAt,
		identity:  identity,
	}
	if len(rules) > 0 {
		rs.rules = make([]Rule, len(rules))
		copy(rs.rules, rules)
	}
	return rs
}

// Apply accumulates the privileges granted to path. Every rule whose prefix
// is a literal prefix of path contributes the privilege of its own recorded
// operation; the requested op does not narrow matching. An empty result
// means "no opinion", not deny.
func (rs *RuleSet) Apply(op privilege.Operation, path string) privilege.Mask {
	mask := privilege.None
	for _, r := range rs.rules {
		if strings.HasPrefix(path, r.Prefix) {
			mask |= privilege.Of(r.Op)
		}
	}
	return mask
}

// Expired reports whether the set is past its expiry at the given coarse
// monotonic reading. A reading equal to the expiry is still valid.
func (rs *RuleSet) Expired(now uint64) bool {
	return now > rs.expiresAt
}

// Identity returns the subject identity the credential asserted at
// validation time; empty means unknown.
func (rs *RuleSet) Identity() string {
	return rs.identity
}

// ExpiresAt returns the absolute expiry on the coarse monotonic scale.
func (rs *RuleSet) ExpiresAt() uint64 {
	return rs.expiresAt
}

// Rules returns a copy of the rule list in generation order.
func (rs *RuleSet) Rules() []Rule {
	if len(rs.rules) == 0 {
		return nil
	}
	out := make([]Rule, len(rs.rules))
	copy(out, rs.rules)
	return out
}
