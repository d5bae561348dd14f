package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/iota-uz/mailstock/modules/core/domain/aggregates/user"
	"github.com/iota-uz/mailstock/modules/core/domain/entities/session"
	"github.com/iota-uz/mailstock/pkg/composables"
	"github.com/iota-uz/mailstock/pkg/configuration"
)

// Authenticator resolves a session token to its session and user.
type Authenticator interface {
	Authorize(ctx context.Context, token string) (*user.User, *session.Session, error)
}

// Authorize resolves the session token (cookie or bearer) to a user and
// session in the context. Requests without a valid token continue
// unauthenticated; RequireAuthenticated rejects them at the subrouter.
func Authorize(auth Authenticator) mux.MiddlewareFunc {
	conf := configuration.Use()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessionToken(r, conf.SidCookieKey)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			u, sess, err := auth.Authorize(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := composables.WithUser(r.Context(), u)
			ctx = composables.WithSession(ctx, sess)
			if params, ok := composables.UseParams(ctx); ok {
				params.Authenticated = true
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionToken(r *http.Request, cookieKey string) string {
	if cookie, err := r.Cookie(cookieKey); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
