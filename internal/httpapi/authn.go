package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/unitedhq/partner-api/internal/auth"
)

const bearerScheme = "Bearer "

// publicPath reports whether the route is reachable without credentials.
func publicPath(path string) bool {
	switch path {
	case "/v1/auth/login", "/healthz", "/readyz", "/metrics", "/":
		return true
	}
	return false
}

// withAuth authenticates every non-public request. Two credential forms are
// accepted on the Authorization header: a durable "Token key:secret" pair and
// a short-lived "Bearer <jwt>" session. On success the principal id is placed
// on the request context.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if publicPath(r.URL.Path) || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		header := strings.TrimSpace(r.Header.Get("Authorization"))
		switch {
		case strings.HasPrefix(header, auth.TokenScheme):
			account, err := a.auth.VerifyAPIToken(r.Context(), strings.TrimPrefix(header, auth.TokenScheme))
			if err != nil {
				if errors.Is(err, auth.ErrInvalidToken) {
					a.respond(w, r, http.StatusUnauthorized, "Invalid or missing credentials", nil)
					return
				}
				a.respond(w, r, http.StatusInternalServerError, "Authentication failed", nil)
				return
			}
			ctx := auth.ContextWithPrincipal(r.Context(), account.ID)
			next.ServeHTTP(w, r.WithContext(ctx))

		case strings.HasPrefix(header, bearerScheme):
			principalID, err := a.auth.VerifySession(strings.TrimPrefix(header, bearerScheme))
			if err != nil {
				if errors.Is(err, auth.ErrSessionExpired) {
					r = r.WithContext(contextWithSessionExpired(r.Context()))
					a.respond(w, r, http.StatusForbidden, sessionExpiredMessage, nil)
					return
				}
				a.respond(w, r, http.StatusUnauthorized, "Invalid or missing credentials", nil)
				return
			}
			ctx := auth.ContextWithPrincipal(r.Context(), principalID)
			next.ServeHTTP(w, r.WithContext(ctx))

		default:
			a.respond(w, r, http.StatusUnauthorized, "Invalid or missing credentials", nil)
		}
	})
}
