package middleware

import (
	"net/http"
	"strings"

	"membership-api/internal/auth"

	"github.com/google/uuid"
)

// AuthMiddleware reads the identity headers set by the auth proxy and
// stores them in the request context. Requests without the headers stay
// anonymous, which disables per-user vista persistence but nothing else.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if raw := r.Header.Get("X-User-Id"); raw != "" {
			if id, err := uuid.Parse(raw); err == nil {
				ctx = auth.ContextWithUserID(ctx, id)
			}
		}
		if raw := r.Header.Get("X-User-Permissions"); raw != "" {
			perms := strings.Split(raw, ",")
			for i := range perms {
				perms[i] = strings.TrimSpace(perms[i])
			}
			ctx = auth.ContextWithPermissions(ctx, perms)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
