package auth

import (
	"context"
	"net/http"
)

// SessionCookieName is the cookie carrying the opaque session token.
const SessionCookieName = "session_token"

type contextKey string

const userIDKey contextKey = "userID"

// RequireSession guards protected handlers. A missing, unknown, or
// expired session token fails with 403 before the wrapped handler can
// run; on success the resolved user id is placed in the request
// context.
func RequireSession(svc *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil {
				denyAccess(w)
				return
			}

			userID, err := svc.ValidateSession(cookie.Value)
			if err != nil {
				denyAccess(w)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext retrieves the user id stored by RequireSession.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}

func denyAccess(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	w.Write([]byte(`{"error":"Not authenticated"}`))
}
