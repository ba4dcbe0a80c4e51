package scitokens

// CredentialInfo is the safe introspection view for a cached credential.
// It intentionally excludes the raw token and the internal *RuleSet pointer;
// the rule list is a copy.
type CredentialInfo struct {
	Identity  string
	ExpiresAt uint64
	Expired   bool
	Rules     []Rule
}

// Inspect reports the cached state of a credential token without making a
// decision. It never validates, never evicts, and never moves counters or
// the sweep schedule; expired entries remain visible until a decision-path
// sweep collects them.
//
// The boolean result is false when the token has no cache entry.
func (e *Engine) Inspect(token string) (*CredentialInfo, bool) {
	if e == nil || token == "" {
		return nil, false
	}

	e.mu.Lock()
	rs := e.cache[token]
	e.mu.Unlock()
	if rs == nil {
		return nil, false
	}

	return &CredentialInfo{
		Identity:  rs.Identity(),
		ExpiresAt: rs.ExpiresAt(),
		Expired:   rs.Expired(e.now()),
		Rules:     rs.Rules(),
	}, true
}
