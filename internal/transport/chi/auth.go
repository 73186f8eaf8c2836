package chi

import (
	"context"
	"net/http"
	"strings"
)

type ownerKey struct{}

// ContextWithOwner stores the authenticated owner key in the context.
func ContextWithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, ownerKey{}, owner)
}

// OwnerFromContext returns the authenticated owner key, or "".
func OwnerFromContext(ctx context.Context) string {
	owner, _ := ctx.Value(ownerKey{}).(string)
	return owner
}

// AuthConfig configures bearer token owner resolution.
type AuthConfig struct {
	// Tokens maps a bearer token to the owner key it acts as.
	Tokens map[string]string
	// ExemptPaths bypass authentication (health, metrics).
	ExemptPaths []string
	// AnonymousOwner, when set and Tokens is empty, is used for every request.
	AnonymousOwner string
}

// BearerAuthMiddleware resolves the request owner from an Authorization
// bearer token. Requests without a known token get 401 before reaching a handler.
func BearerAuthMiddleware(cfg AuthConfig) func(http.Handler) http.Handler {
	owners := make(map[string]string, len(cfg.Tokens))
	for token, owner := range cfg.Tokens {
		if token != "" && owner != "" {
			owners[token] = owner
		}
	}
	exempt := make(map[string]struct{}, len(cfg.ExemptPaths))
	for _, p := range cfg.ExemptPaths {
		exempt[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exempt[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			// Auth disabled: act as the anonymous owner.
			if len(owners) == 0 && cfg.AnonymousOwner != "" {
				serveAs(next, w, r, cfg.AnonymousOwner)
				return
			}

			auth := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized, "unauthenticated")
				return
			}

			owner, ok := owners[strings.TrimSpace(auth[len(bearerPrefix):])]
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthenticated")
				return
			}

			serveAs(next, w, r, owner)
		})
	}
}

func serveAs(next http.Handler, w http.ResponseWriter, r *http.Request, owner string) {
	if ev := eventFrom(r.Context()); ev != nil {
		ev.owner = owner
	}
	next.ServeHTTP(w, r.WithContext(ContextWithOwner(r.Context(), owner)))
}
