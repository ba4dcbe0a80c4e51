package jwt

import (
	"strings"

	scitokens "github.com/djw8605/xrootd-scitokens"
	"github.com/djw8605/xrootd-scitokens/privilege"
)

// scopeVerbs maps scope authorization verbs to the operations they grant.
// read covers data access plus the path resolution it needs; write covers
// the namespace-mutating operations. The storage.* names are the WLCG
// profile aliases.
var scopeVerbs = map[string][]privilege.Operation{
	"read": {privilege.OpRead, privilege.OpStat},
	"write": {
		privilege.OpCreate,
		privilege.OpUpdate,
		privilege.OpDelete,
		privilege.OpMkdir,
		privilege.OpRename,
	},
	"storage.read": {privilege.OpRead, privilege.OpStat},
	"storage.create": {
		privilege.OpCreate,
		privilege.OpMkdir,
	},
	"storage.modify": {
		privilege.OpCreate,
		privilege.OpUpdate,
		privilege.OpDelete,
		privilege.OpMkdir,
		privilege.OpRename,
	},
}

// CompileScope turns a space-separated scope claim into permission rules.
// Each entry is verb or verb:prefix; a missing prefix means the whole
// namespace ("/"). Verbs resolve through the alias table first, then as bare
// operation names (e.g. "stat:/data"); unknown verbs are skipped, not
// errors — a token may carry scopes meant for other services.
//
// Prefixes are used exactly as given. Rule matching downstream is
// byte-for-byte, so no normalization happens here either.
func CompileScope(scope string) []scitokens.Rule {
	var rules []scitokens.Rule

	for _, entry := range strings.Fields(scope) {
		verb, prefix := entry, "/"
		if i := strings.IndexByte(entry, ':'); i >= 0 {
			verb, prefix = entry[:i], entry[i+1:]
			if prefix == "" {
				prefix = "/"
			}
		}

		if ops, ok := scopeVerbs[verb]; ok {
			for _, op := range ops {
				rules = append(rules, scitokens.Rule{Op: op, Prefix: prefix})
			}
			continue
		}

		if op, ok := privilege.Parse(verb); ok && op != privilege.OpAny {
			rules = append(rules, scitokens.Rule{Op: op, Prefix: prefix})
		}
	}

	return rules
}
