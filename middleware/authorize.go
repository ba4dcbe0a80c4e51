package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	scitokens "github.com/djw8605/xrootd-scitokens"
	"github.com/djw8605/xrootd-scitokens/privilege"
)

type entityContextKey struct{}

// EntityFromContext returns the request entity seen by the authorization
// layer, including any identity assigned from the credential token.
func EntityFromContext(ctx context.Context) (*scitokens.Entity, bool) {
	ent, ok := ctx.Value(entityContextKey{}).(*scitokens.Entity)
	return ent, ok
}

// methodOperations maps HTTP methods onto filesystem operations the way a
// WebDAV-style data endpoint uses them.
var methodOperations = map[string]privilege.Operation{
	http.MethodGet:    privilege.OpRead,
	http.MethodHead:   privilege.OpStat,
	http.MethodPut:    privilege.OpCreate,
	http.MethodPost:   privilege.OpUpdate,
	http.MethodDelete: privilege.OpDelete,
	"MKCOL":           privilege.OpMkdir,
	"MOVE":            privilege.OpRename,
	"PROPFIND":        privilege.OpReaddir,
}

// Authorize returns middleware that guards the wrapped handler with engine
// decisions. A missing bearer token is not rejected here: the engine's chain
// may still grant access. Requests whose privilege mask lacks the bit for
// the mapped operation get 403; methods outside the mapping get 405.
func Authorize(engine *scitokens.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			op, ok := methodOperations[r.Method]
			if !ok {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}

			ctx := r.Context()
			if token, ok := bearerToken(r.Header.Get("Authorization")); ok {
				ctx = scitokens.WithToken(ctx, token)
			}

			ent := &scitokens.Entity{Host: remoteHost(r)}
			mask := engine.Authorize(ctx, ent, op, r.URL.Path)
			if !mask.Has(privilege.Of(op)) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			ctx = context.WithValue(ctx, entityContextKey{}, ent)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}

func remoteHost(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
