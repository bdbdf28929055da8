package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/iho/gofinance/internal/infrastructure/logging"
)

// UserIDHeader carries the caller identity set by the upstream authenticating proxy.
const UserIDHeader = "X-User-ID"

// ContextWithUserID stores the caller id in ctx.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return logging.WithUserID(ctx, userID)
}

// UserIDFromContext returns the caller id stored by RequireUserID.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(logging.UserIDKey).(string)
	return userID, ok && userID != ""
}

// RequireUserID rejects requests without a caller identity.
func RequireUserID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
		if userID == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"missing user identity"}`))
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), userID)))
	})
}
