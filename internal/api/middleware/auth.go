package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/darmiel/gatekey/internal/api/presenter"
	"github.com/darmiel/gatekey/internal/core"
	"github.com/darmiel/gatekey/internal/verifiers"
)

const userKey = "auth_user"

// UserCtx retrieves the authenticated caller from the context. It is only
// set on routes behind BearerAuth.
func UserCtx(ctx context.Context) *core.AuthUser {
	user, ok := ctx.Value(userKey).(*core.AuthUser)
	if !ok {
		return nil
	}
	return user
}

// BearerAuth verifies the Authorization bearer token against the configured
// verifiers and stores the resulting caller identity in the request context.
func BearerAuth(registry *verifiers.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			tokenStr := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer"))
			if tokenStr == "" {
				presenter.Error(w, r, "missing Authorization header", http.StatusUnauthorized)
				return
			}

			verifier, err := registry.Identify(tokenStr)
			if err != nil {
				log.Ctx(r.Context()).Warn().Err(err).Msg("verifier auto-discovery failed")
				presenter.Error(w, r, "could not identify token issuer", http.StatusUnauthorized)
				return
			}

			user, err := verifier.Verify(r.Context(), tokenStr)
			if err != nil {
				log.Ctx(r.Context()).Warn().Err(err).
					Str("verifier", verifier.Name()).
					Msg("caller token verification failed")
				presenter.Error(w, r, "token verification failed", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminAuth restricts a route to callers carrying the admin role. It must be
// stacked behind BearerAuth.
func AdminAuth(adminRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserCtx(r.Context())
			if user == nil {
				presenter.Error(w, r, "login required", http.StatusUnauthorized)
				return
			}
			if !user.HasRole(adminRole) {
				presenter.Error(w, r, "insufficient privileges", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
