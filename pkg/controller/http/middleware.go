package http

import (
	"context"
	"net/http"

	"github.com/crrankyy/research-agent/pkg/domain/types"
)

type ctxUserIDKey struct{}

// userIDFrom returns the request's resolved identity, or "" if none was set
func userIDFrom(ctx context.Context) types.UserID {
	userID, _ := ctx.Value(ctxUserIDKey{}).(types.UserID)
	return userID
}

// identityMiddleware resolves the caller's identity from the X-User-ID
// header. Requests without the header fall back to defaultUser; if no
// default is configured they are rejected with 401.
func identityMiddleware(defaultUser string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get("X-User-ID")
			if userID == "" {
				userID = defaultUser
			}
			if userID == "" {
				http.Error(w, "X-User-ID header is required", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ctxUserIDKey{}, types.UserID(userID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
