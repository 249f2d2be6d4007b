package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"inkwell/internal/session"
)

const userIDKey contextKey = "user_id"

// SessionLookup resolves a session token to a user ID.
type SessionLookup interface {
	Lookup(ctx context.Context, token string) (string, error)
}

// AuthMiddleware resolves the session cookie to a user ID and stores it in
// the request context. Requests without a valid session get a 401.
func AuthMiddleware(sessions SessionLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(session.CookieName)
			if err != nil || cookie.Value == "" {
				unauthorized(w)
				return
			}

			userID, err := sessions.Lookup(r.Context(), cookie.Value)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
}

// UserFrom returns the authenticated user's ID from the request context.
func UserFrom(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}
